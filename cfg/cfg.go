// Package cfg translates condition trees into the compiler's native cfg
// predicate syntax.
package cfg

import (
	"strings"

	"github.com/cloudcmds/pragma/ast"
)

// Translate maps a condition tree onto cfg predicate syntax: all(...) for
// conjunctions, any(...) for disjunctions, not(...) for negations,
// `key = "value"` for valued predicates and the bare key otherwise. The
// mapping is purely structural and total: it never fails for any tree the
// parser produces.
func Translate(c ast.Cond) string {
	switch c := c.(type) {
	case *ast.All:
		return group("all", c.Exprs)
	case *ast.Any:
		return group("any", c.Exprs)
	case *ast.Not:
		return "not(" + Translate(c.X) + ")"
	case *ast.KeyVal:
		return c.Name + " = " + c.Value
	case *ast.Key:
		return c.Name
	}
	return ""
}

// Negate returns the predicate selecting exactly the configurations where
// the condition does not hold.
func Negate(c ast.Cond) string {
	return "not(" + Translate(c) + ")"
}

// Directive wraps a predicate in the conditional-inclusion attribute form
// understood by the downstream compiler.
func Directive(pred string) string {
	return "#[cfg(" + pred + ")]"
}

func group(name string, exprs []ast.Cond) string {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, Translate(e))
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
