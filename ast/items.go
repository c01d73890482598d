package ast

import (
	"bytes"
	"strings"

	"github.com/cloudcmds/pragma/token"
)

// Visibility is the closed set of visibility qualifiers a declaration may
// carry. The zero value is the inherited (default) visibility.
type Visibility int

const (
	// VisInherited is the default visibility: the declaration is as visible
	// as its enclosing scope makes it.
	VisInherited Visibility = iota

	// VisPublic is the explicit "pub" qualifier.
	VisPublic
)

func (v Visibility) String() string {
	if v == VisPublic {
		return "pub"
	}
	return ""
}

// Attr is one attribute token attached to a declaration, e.g. "#[inline]".
// Attributes are opaque: the text is carried through to the output verbatim.
type Attr struct {
	TextPos token.Position // position of "#"
	Text    string         // full attribute source text
}

func (a *Attr) Pos() token.Position { return a.TextPos }
func (a *Attr) End() token.Position { return a.TextPos.Advance(len(a.Text)) }

func (a *Attr) String() string { return a.Text }

// Raw is an opaque host-language item body. The parser captures the source
// span verbatim; nothing inside it is interpreted.
type Raw struct {
	From token.Position // start of the item
	To   token.Position // first character after the item
	Text string         // item source text, verbatim
}

func (r *Raw) contentNode() {}

func (r *Raw) Pos() token.Position { return r.From }
func (r *Raw) End() token.Position { return r.To }

func (r *Raw) String() string { return r.Text }

// Mod is a nested module declaration holding its own block of items.
type Mod struct {
	ModPos  token.Position // position of "mod"
	NamePos token.Position // position of the module name
	Name    string         // module name
	Body    *Block         // module contents
	Rbrace  token.Position // position of "}"
}

func (m *Mod) contentNode() {}

func (m *Mod) Pos() token.Position { return m.ModPos }
func (m *Mod) End() token.Position { return m.Rbrace.Advance(1) }

func (m *Mod) String() string {
	var out bytes.Buffer
	out.WriteString("mod ")
	out.WriteString(m.Name)
	out.WriteString(" { ")
	out.WriteString(m.Body.String())
	out.WriteString(" }")
	return out.String()
}

// Item is one annotated declaration: attributes, a visibility qualifier, an
// optional guarding condition, and the declaration content itself.
type Item struct {
	ItemPos    token.Position // start of the declaration
	Attrs      []*Attr        // attributes, in source order
	Visibility Visibility
	Cond       Cond    // nil when the item is unconditional
	Content    Content // *Raw or *Mod
}

func (i *Item) Pos() token.Position { return i.ItemPos }
func (i *Item) End() token.Position { return i.Content.End() }

func (i *Item) String() string {
	var out bytes.Buffer
	for _, a := range i.Attrs {
		out.WriteString(a.String())
		out.WriteString(" ")
	}
	if i.Visibility != VisInherited {
		out.WriteString(i.Visibility.String())
		out.WriteString(" ")
	}
	if i.Cond != nil {
		out.WriteString("(if ")
		out.WriteString(i.Cond.String())
		out.WriteString(") ")
	}
	out.WriteString(i.Content.String())
	return out.String()
}

// Block is an ordered sequence of items: the whole input, or the body of a
// nested module. Order governs emission order only.
type Block struct {
	Items []*Item
}

func (b *Block) Pos() token.Position {
	if len(b.Items) == 0 {
		return token.NoPos
	}
	return b.Items[0].Pos()
}

func (b *Block) End() token.Position {
	if len(b.Items) == 0 {
		return token.NoPos
	}
	return b.Items[len(b.Items)-1].End()
}

func (b *Block) String() string {
	parts := make([]string, 0, len(b.Items))
	for _, item := range b.Items {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, "; ")
}
