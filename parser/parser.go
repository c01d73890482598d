// Package parser parses pragma input - a sequence of declarations annotated
// with attributes, a visibility qualifier, and an optional guarding condition
// - into the syntax tree defined in the ast package.
//
// A parser is created by calling New() with a lexer as input. The parser
// should then be used only once, by calling parser.Parse() to produce the
// syntax tree. There is no error recovery: the first syntax error anywhere in
// the input aborts the parse, since the expansion output is spliced source
// and a partial splice is never useful.
package parser

import (
	"context"
	"fmt"

	"github.com/cloudcmds/pragma/ast"
	"github.com/cloudcmds/pragma/lexer"
	"github.com/cloudcmds/pragma/token"
)

// DefaultMaxDepth is the default maximum nesting depth for parsing. It bounds
// both nested modules and parenthesized condition nesting, preventing stack
// overflow on pathological input.
const DefaultMaxDepth = 500

// Parse the provided input as a pragma declaration block and return the
// syntax tree. This is a shorthand way to create a Lexer and a Parser and
// then call Parse on that.
func Parse(ctx context.Context, input string, options ...Option) (*ast.Block, error) {
	l := lexer.New(input)
	p := New(l, options...)
	return p.Parse(ctx)
}

// Option is a configuration function for a Parser.
type Option func(*Parser)

// WithFilename sets the file name used in error positions.
func WithFilename(filename string) Option {
	return func(p *Parser) {
		p.filename = filename
	}
}

// WithMaxDepth sets the maximum nesting depth for the parser.
// The default is 500.
func WithMaxDepth(depth int) Option {
	return func(p *Parser) {
		p.maxDepth = depth
	}
}

// Parser object
type Parser struct {
	// the Context supplied in the Parse() call
	ctx context.Context

	// l is our lexer
	l *lexer.Lexer

	// curToken holds the current token from the lexer.
	curToken token.Token

	// peekToken holds the next token from the lexer.
	peekToken token.Token

	// The filename of the input
	filename string

	// Current recursion depth
	depth int

	// Maximum allowed recursion depth
	maxDepth int
}

// New returns a Parser for the input provided by the given Lexer.
func New(l *lexer.Lexer, options ...Option) *Parser {
	p := &Parser{
		l:        l,
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range options {
		opt(p)
	}
	if p.filename != "" {
		l.SetFilename(p.filename)
	}
	return p
}

// Parse the input provided via the lexer. The returned error, if any, is
// either a *SyntaxError or the context's error.
func (p *Parser) Parse(ctx context.Context) (*ast.Block, error) {
	p.ctx = ctx
	// Prime the token pump
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return p.parseBlock(token.EOF)
}

// nextToken advances to the next token from the lexer. Lexer errors are
// considered syntax errors and abort the parse.
func (p *Parser) nextToken() error {
	tok, err := p.l.Next()
	p.curToken = p.peekToken
	p.peekToken = tok
	if err != nil {
		return NewSyntaxError(ErrorOpts{
			Cause:         err,
			File:          p.l.Filename(),
			StartPosition: tok.StartPosition,
			EndPosition:   tok.EndPosition,
			SourceCode:    p.l.GetLineText(tok),
		})
	}
	return nil
}

func (p *Parser) curTokenIs(t token.Type) bool {
	return p.curToken.Type == t
}

func (p *Parser) peekTokenIs(t token.Type) bool {
	return p.peekToken.Type == t
}

// cancelled checks whether the parsing context has been cancelled.
func (p *Parser) cancelled() error {
	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	default:
		return nil
	}
}

// enter increments the recursion depth, failing once the maximum is reached.
func (p *Parser) enter(tok token.Token) error {
	p.depth++
	if p.depth > p.maxDepth {
		return p.errorf(tok, "maximum nesting depth exceeded")
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// errorf builds a SyntaxError pointing at the given token.
func (p *Parser) errorf(tok token.Token, format string, args ...interface{}) *SyntaxError {
	return NewSyntaxError(ErrorOpts{
		Message:       fmt.Sprintf(format, args...),
		File:          p.l.Filename(),
		StartPosition: tok.StartPosition,
		EndPosition:   tok.EndPosition,
		SourceCode:    p.l.GetLineText(tok),
	})
}

// parseBlock parses items until the given end token is reached. The end token
// itself is not consumed.
func (p *Parser) parseBlock(end token.Type) (*ast.Block, error) {
	block := &ast.Block{}
	for !p.curTokenIs(end) {
		if err := p.cancelled(); err != nil {
			return nil, err
		}
		if p.curTokenIs(token.EOF) {
			return nil, p.errorf(p.curToken, `unexpected end of input (missing closing "}")`)
		}
		item, err := p.parseItem()
		if err != nil {
			return nil, err
		}
		block.Items = append(block.Items, item)
		// Items are separated by optional semicolons; a trailing semicolon on
		// the final item is permitted but not required.
		for p.curTokenIs(token.SEMICOLON) {
			if err := p.nextToken(); err != nil {
				return nil, err
			}
		}
	}
	return block, nil
}

// parseItem parses one declaration: attributes, a visibility qualifier, an
// optional parenthesized condition clause, then either a nested module or a
// single opaque item.
func (p *Parser) parseItem() (*ast.Item, error) {
	item := &ast.Item{ItemPos: p.curToken.StartPosition}

	for p.curTokenIs(token.ATTR) {
		item.Attrs = append(item.Attrs, &ast.Attr{
			TextPos: p.curToken.StartPosition,
			Text:    p.curToken.Literal,
		})
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	}

	if p.curTokenIs(token.PUB) {
		item.Visibility = ast.VisPublic
		if err := p.nextToken(); err != nil {
			return nil, err
		}
	}

	// A parenthesized group in item head position must be a condition clause.
	if p.curTokenIs(token.LPAREN) {
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if !p.curTokenIs(token.IF) {
			return nil, p.errorf(p.curToken, `expected "if" to begin a condition clause`)
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if !p.curTokenIs(token.RPAREN) {
			return nil, p.errorf(p.curToken, `expected ")" to close the condition clause`)
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		item.Cond = cond
	}

	if p.curTokenIs(token.MOD) {
		mod, err := p.parseMod()
		if err != nil {
			return nil, err
		}
		item.Content = mod
	} else {
		raw, err := p.parseRawItem()
		if err != nil {
			return nil, err
		}
		item.Content = raw
	}
	return item, nil
}

// parseMod parses `mod <name> { ... }`, recursing into the body.
func (p *Parser) parseMod() (*ast.Mod, error) {
	mod := &ast.Mod{ModPos: p.curToken.StartPosition}
	modTok := p.curToken
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if !p.curTokenIs(token.IDENT) {
		return nil, p.errorf(p.curToken, `expected module name after "mod"`)
	}
	mod.Name = p.curToken.Literal
	mod.NamePos = p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if !p.curTokenIs(token.LBRACE) {
		return nil, p.errorf(p.curToken, `expected "{" after module name`)
	}
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	if err := p.enter(modTok); err != nil {
		return nil, err
	}
	body, err := p.parseBlock(token.RBRACE)
	if err != nil {
		return nil, err
	}
	p.leave()
	mod.Body = body
	mod.Rbrace = p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return mod, nil
}

// parseRawItem captures one opaque host-language item verbatim. The item's
// source span extends to the first semicolon at delimiter depth zero, or
// through the first balanced brace block at depth zero, or up to (but not
// including) the brace that closes the enclosing module.
func (p *Parser) parseRawItem() (*ast.Raw, error) {
	switch p.curToken.Type {
	case token.EOF, token.SEMICOLON, token.RBRACE, token.RPAREN, token.RBRACKET:
		return nil, p.errorf(p.curToken, "expected an item declaration")
	}
	from := p.curToken.StartPosition
	to := p.curToken.EndPosition
	var stack []token.Type
	for {
		tok := p.curToken
		switch tok.Type {
		case token.EOF:
			if len(stack) > 0 {
				return nil, p.errorf(tok, "unexpected end of input (missing closing %q)",
					string(closerFor(stack[len(stack)-1])))
			}
			return p.raw(from, to), nil
		case token.SEMICOLON:
			if len(stack) == 0 {
				// The separator is left for the caller.
				return p.raw(from, to), nil
			}
		case token.RBRACE:
			if len(stack) == 0 {
				// Closes the enclosing module; not part of the item.
				return p.raw(from, to), nil
			}
		}

		to = tok.EndPosition
		closedBody := false
		switch tok.Type {
		case token.LPAREN, token.LBRACKET, token.LBRACE:
			stack = append(stack, tok.Type)
		case token.RPAREN, token.RBRACKET, token.RBRACE:
			if len(stack) == 0 {
				return nil, p.errorf(tok, "unexpected %q in item", tok.Literal)
			}
			open := stack[len(stack)-1]
			if closerFor(open) != tok.Type {
				return nil, p.errorf(tok, "mismatched delimiter %q (expected %q)",
					tok.Literal, string(closerFor(open)))
			}
			stack = stack[:len(stack)-1]
			closedBody = tok.Type == token.RBRACE && len(stack) == 0
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if closedBody {
			// A brace block at depth zero is an item body; the item is
			// complete once it closes.
			return p.raw(from, to), nil
		}
	}
}

func (p *Parser) raw(from, to token.Position) *ast.Raw {
	return &ast.Raw{From: from, To: to, Text: p.l.Slice(from, to)}
}

func closerFor(open token.Type) token.Type {
	switch open {
	case token.LPAREN:
		return token.RPAREN
	case token.LBRACKET:
		return token.RBRACKET
	default:
		return token.RBRACE
	}
}
