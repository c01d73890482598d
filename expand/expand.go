// Package expand rewrites a parsed pragma block into declarations guarded by
// conditional-inclusion directives.
//
// The expansion policy per item:
//
//   - No condition: the item is emitted once, unchanged and unguarded.
//   - Condition with inherited visibility: one copy, guarded by the
//     translated condition.
//   - Condition with explicit visibility: two adjacent copies - the first
//     guarded by the condition and keeping the visibility, the second guarded
//     by the negated condition with the visibility stripped. The item is
//     public exactly when the condition holds, and otherwise still present
//     but private.
//
// Modules follow the same policy at the module level, with their bodies fully
// expanded first; each emitted copy of a conditional module contains the
// complete expanded body.
package expand

import (
	"strings"

	"github.com/cloudcmds/pragma/ast"
	"github.com/cloudcmds/pragma/cfg"
)

const indentUnit = "    "

// Block expands the given block and returns the generated source text.
// Items are emitted in input order, separated by blank lines, with the two
// copies of a duplicated item adjacent (positive guard first).
func Block(b *ast.Block) string {
	var sb strings.Builder
	writeBlock(&sb, b, 0)
	return sb.String()
}

func writeBlock(sb *strings.Builder, b *ast.Block, depth int) {
	first := true
	for _, item := range b.Items {
		writeItem(sb, item, depth, &first)
	}
}

func writeItem(sb *strings.Builder, item *ast.Item, depth int, first *bool) {
	var body string
	var semi bool
	switch content := item.Content.(type) {
	case *ast.Raw:
		body = content.Text
		semi = !strings.HasSuffix(strings.TrimSpace(body), "}")
	case *ast.Mod:
		body = renderMod(content, depth)
	}

	if item.Cond == nil {
		writeDecl(sb, first, depth, "", item.Attrs, item.Visibility, body, semi)
		return
	}
	guard := cfg.Translate(item.Cond)
	if item.Visibility == ast.VisInherited {
		writeDecl(sb, first, depth, guard, item.Attrs, ast.VisInherited, body, semi)
		return
	}
	writeDecl(sb, first, depth, guard, item.Attrs, item.Visibility, body, semi)
	writeDecl(sb, first, depth, cfg.Negate(item.Cond), item.Attrs, ast.VisInherited, body, semi)
}

// renderMod renders a module declaration with its fully expanded body. The
// returned text is reused verbatim for each emitted copy of a conditional
// module.
func renderMod(mod *ast.Mod, depth int) string {
	if len(mod.Body.Items) == 0 {
		return "mod " + mod.Name + " {}"
	}
	var inner strings.Builder
	writeBlock(&inner, mod.Body, depth+1)
	var sb strings.Builder
	sb.WriteString("mod ")
	sb.WriteString(mod.Name)
	sb.WriteString(" {\n")
	sb.WriteString(inner.String())
	sb.WriteString(strings.Repeat(indentUnit, depth))
	sb.WriteString("}")
	return sb.String()
}

// writeDecl emits one guarded declaration: the cfg directive (when a guard is
// present), the attribute lines, then the declaration itself. Only the lines
// generated here are indented; continuation lines of a verbatim item body
// keep their original layout.
func writeDecl(sb *strings.Builder, first *bool, depth int, guard string,
	attrs []*ast.Attr, vis ast.Visibility, body string, semi bool) {

	if !*first {
		sb.WriteString("\n")
	}
	*first = false

	indent := strings.Repeat(indentUnit, depth)
	if guard != "" {
		sb.WriteString(indent)
		sb.WriteString(cfg.Directive(guard))
		sb.WriteString("\n")
	}
	for _, a := range attrs {
		sb.WriteString(indent)
		sb.WriteString(a.Text)
		sb.WriteString("\n")
	}
	sb.WriteString(indent)
	if vis == ast.VisPublic {
		sb.WriteString("pub ")
	}
	sb.WriteString(body)
	if semi {
		sb.WriteString(";")
	}
	sb.WriteString("\n")
}
