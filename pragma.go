// Package pragma expands declarations annotated with an embedded boolean
// condition language into variants guarded by conditional-inclusion
// directives.
//
// An input block like:
//
//	pub (if target_pointer_width = "64") fn wide_pointer_fn() { ... }
//
// expands into a guarded public declaration plus an inverse-guarded private
// fallback:
//
//	#[cfg(target_pointer_width = "64")]
//	pub fn wide_pointer_fn() { ... }
//
//	#[cfg(not(target_pointer_width = "64"))]
//	fn wide_pointer_fn() { ... }
//
// Conditions combine predicates with "and", "or" and "not(...)", with "and"
// binding tighter than "or". Declarations may nest inside `mod name { ... }`
// blocks, which expand recursively. See the parser and expand packages for
// the grammar and emission rules.
package pragma

import (
	"context"

	"github.com/cloudcmds/pragma/expand"
	"github.com/cloudcmds/pragma/parser"
)

// Option configures an expansion.
type Option func(*options)

type options struct {
	filename string
	maxDepth int
}

// WithFilename sets the filename reported in error positions.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithMaxDepth bounds the nesting depth of modules and parenthesized
// conditions. The default is parser.DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(o *options) {
		o.maxDepth = depth
	}
}

// Expand parses the given pragma source text and returns the expanded
// declarations. The returned error, if any, is a *parser.SyntaxError
// pinpointing the first offending position, or the context's error.
func Expand(ctx context.Context, source string, opts ...Option) (string, error) {
	o := &options{}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	var popts []parser.Option
	if o.filename != "" {
		popts = append(popts, parser.WithFilename(o.filename))
	}
	if o.maxDepth > 0 {
		popts = append(popts, parser.WithMaxDepth(o.maxDepth))
	}
	block, err := parser.Parse(ctx, source, popts...)
	if err != nil {
		return "", err
	}
	return expand.Block(block), nil
}
