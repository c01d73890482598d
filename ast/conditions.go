package ast

import (
	"bytes"
	"strings"

	"github.com/cloudcmds/pragma/token"
)

// Key is a condition node naming a bare configuration predicate, e.g. "test".
type Key struct {
	NamePos token.Position // position of identifier
	Name    string         // predicate name
}

func (c *Key) condNode() {}

func (c *Key) Pos() token.Position { return c.NamePos }
func (c *Key) End() token.Position { return c.NamePos.Advance(len(c.Name)) }

func (c *Key) String() string { return c.Name }

// KeyVal is a condition node comparing a predicate to a string literal,
// e.g. `target_pointer_width = "64"`. Value holds the literal exactly as
// written in the source, including the surrounding quotes.
type KeyVal struct {
	NamePos  token.Position // position of identifier
	Name     string         // predicate name
	ValuePos token.Position // position of string literal
	Value    string         // string literal, verbatim
}

func (c *KeyVal) condNode() {}

func (c *KeyVal) Pos() token.Position { return c.NamePos }
func (c *KeyVal) End() token.Position { return c.ValuePos.Advance(len(c.Value)) }

func (c *KeyVal) String() string { return c.Name + " = " + c.Value }

// All is the conjunction of two or more conditions. Operands are stored in
// source order. Chains of "and" flatten into a single All node rather than
// nesting, so `a and b and c` has three operands at one level.
type All struct {
	Exprs []Cond // operands, at least two
}

func (c *All) condNode() {}

func (c *All) Pos() token.Position { return c.Exprs[0].Pos() }
func (c *All) End() token.Position { return c.Exprs[len(c.Exprs)-1].End() }

func (c *All) String() string { return joinConds(c.Exprs, " and ") }

// Any is the disjunction of two or more conditions. The same flattening
// applies as for All: `a or b or c` has three operands at one level.
type Any struct {
	Exprs []Cond // operands, at least two
}

func (c *Any) condNode() {}

func (c *Any) Pos() token.Position { return c.Exprs[0].Pos() }
func (c *Any) End() token.Position { return c.Exprs[len(c.Exprs)-1].End() }

func (c *Any) String() string { return joinConds(c.Exprs, " or ") }

// Not negates exactly one sub-condition, written `not(...)`.
type Not struct {
	NotPos token.Position // position of "not"
	X      Cond           // negated condition
	Rparen token.Position // position of ")"
}

func (c *Not) condNode() {}

func (c *Not) Pos() token.Position { return c.NotPos }
func (c *Not) End() token.Position { return c.Rparen.Advance(1) }

func (c *Not) String() string { return "not(" + c.X.String() + ")" }

func joinConds(exprs []Cond, sep string) string {
	var out bytes.Buffer
	out.WriteString("(")
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		parts = append(parts, e.String())
	}
	out.WriteString(strings.Join(parts, sep))
	out.WriteString(")")
	return out.String()
}
