package parser

import (
	"github.com/cloudcmds/pragma/ast"
	"github.com/cloudcmds/pragma/token"
)

// Condition grammar, lowest to highest precedence binding, with the binary
// operators left-associative:
//
//	Condition := OrExpr
//	OrExpr    := AndExpr ('or' AndExpr)*
//	AndExpr   := Primary ('and' Primary)*
//	Primary   := KeyVal | Key | '(' Condition ')' | 'not' '(' Condition ')'
//	KeyVal    := Ident '=' StringLit
//	Key       := Ident
//
// "and", "or" and "not" are contextual operators: they reach the parser as
// ordinary identifiers and only act as operators in the positions shown
// above. A predicate literally named "and", "or" or "not" therefore still
// parses as a plain Key. The operator check compares the identifier text
// without consuming it, so a non-matching identifier is left in place.

// parseCondition parses a full condition expression. On return the current
// token is the first token following the condition.
func (p *Parser) parseCondition() (ast.Cond, error) {
	return p.parseOrExpr()
}

func (p *Parser) parseOrExpr() (ast.Cond, error) {
	expr, err := p.parseAndExpr()
	if err != nil {
		return nil, err
	}
	for p.curIsOperator("or") {
		if err := p.nextToken(); err != nil { // consume "or"
			return nil, err
		}
		rhs, err := p.parseAndExpr()
		if err != nil {
			return nil, err
		}
		// Chains flatten: `a or b or c` is one Any with three operands.
		if any, ok := expr.(*ast.Any); ok {
			any.Exprs = append(any.Exprs, rhs)
		} else {
			expr = &ast.Any{Exprs: []ast.Cond{expr, rhs}}
		}
	}
	return expr, nil
}

func (p *Parser) parseAndExpr() (ast.Cond, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.curIsOperator("and") {
		if err := p.nextToken(); err != nil { // consume "and"
			return nil, err
		}
		rhs, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		if all, ok := expr.(*ast.All); ok {
			all.Exprs = append(all.Exprs, rhs)
		} else {
			expr = &ast.All{Exprs: []ast.Cond{expr, rhs}}
		}
	}
	return expr, nil
}

func (p *Parser) parsePrimary() (ast.Cond, error) {
	switch {
	case p.curTokenIs(token.IDENT):
		// `not` is only an operator when immediately followed by "(";
		// otherwise it is an ordinary predicate key.
		if p.curToken.Literal == "not" && p.peekTokenIs(token.LPAREN) {
			return p.parseNot()
		}
		ident := p.curToken
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		if p.curTokenIs(token.ASSIGN) {
			return p.parseKeyVal(ident)
		}
		return &ast.Key{NamePos: ident.StartPosition, Name: ident.Literal}, nil

	case p.curTokenIs(token.LPAREN):
		lparen := p.curToken
		if err := p.enter(lparen); err != nil {
			return nil, err
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		inner, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		if !p.curTokenIs(token.RPAREN) {
			return nil, p.errorf(p.curToken, `expected ")" to close the parenthesized condition`)
		}
		if err := p.nextToken(); err != nil {
			return nil, err
		}
		p.leave()
		return inner, nil

	default:
		return nil, p.errorf(p.curToken,
			"expected condition (key, key = \"value\", not(...), or (...))")
	}
}

// parseKeyVal parses the remainder of `key = "value"` given the already
// consumed key identifier. The current token is the "=".
func (p *Parser) parseKeyVal(ident token.Token) (ast.Cond, error) {
	if err := p.nextToken(); err != nil { // consume "="
		return nil, err
	}
	if !p.curTokenIs(token.STRING) {
		return nil, NewSyntaxError(ErrorOpts{
			Message:       `expected string literal after "="`,
			File:          p.l.Filename(),
			StartPosition: p.curToken.StartPosition,
			EndPosition:   p.curToken.EndPosition,
			SourceCode:    p.l.GetLineText(p.curToken),
			Hint:          `condition values are written as quoted strings, e.g. key = "value"`,
		})
	}
	val := p.curToken
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	return &ast.KeyVal{
		NamePos:  ident.StartPosition,
		Name:     ident.Literal,
		ValuePos: val.StartPosition,
		Value:    val.Literal,
	}, nil
}

// parseNot parses `not ( Condition )`. The caller has verified that the
// current token is the identifier "not" and the next token is "(".
func (p *Parser) parseNot() (*ast.Not, error) {
	notPos := p.curToken.StartPosition
	if err := p.nextToken(); err != nil { // consume "not"
		return nil, err
	}
	lparen := p.curToken
	if err := p.enter(lparen); err != nil {
		return nil, err
	}
	if err := p.nextToken(); err != nil { // consume "("
		return nil, err
	}
	inner, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if !p.curTokenIs(token.RPAREN) {
		return nil, p.errorf(p.curToken, `expected ")" to close not(...)`)
	}
	rparen := p.curToken.StartPosition
	if err := p.nextToken(); err != nil {
		return nil, err
	}
	p.leave()
	return &ast.Not{NotPos: notPos, X: inner, Rparen: rparen}, nil
}

// curIsOperator reports whether the current token is the given contextual
// operator identifier.
func (p *Parser) curIsOperator(op string) bool {
	return p.curToken.Type == token.IDENT && p.curToken.Literal == op
}
