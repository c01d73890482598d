package cfg

import (
	"context"
	"testing"

	"github.com/cloudcmds/pragma/ast"
	"github.com/cloudcmds/pragma/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	a := &ast.Key{Name: "a"}
	b := &ast.Key{Name: "b"}
	c := &ast.Key{Name: "c"}
	kv := &ast.KeyVal{Name: "target_pointer_width", Value: `"64"`}

	tests := []struct {
		cond     ast.Cond
		expected string
	}{
		{a, "a"},
		{kv, `target_pointer_width = "64"`},
		{&ast.All{Exprs: []ast.Cond{a, b}}, "all(a, b)"},
		{&ast.All{Exprs: []ast.Cond{a, b, c}}, "all(a, b, c)"},
		{&ast.Any{Exprs: []ast.Cond{a, kv}}, `any(a, target_pointer_width = "64")`},
		{&ast.Not{X: a}, "not(a)"},
		{&ast.Not{X: &ast.All{Exprs: []ast.Cond{a, b}}}, "not(all(a, b))"},
		{
			&ast.Any{Exprs: []ast.Cond{
				&ast.All{Exprs: []ast.Cond{a, b}},
				&ast.Not{X: c},
			}},
			"any(all(a, b), not(c))",
		},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Translate(tt.cond))
	}
}

func TestNegate(t *testing.T) {
	a := &ast.Key{Name: "a"}
	assert.Equal(t, "not(a)", Negate(a))
	assert.Equal(t, "not(all(a, a))", Negate(&ast.All{Exprs: []ast.Cond{a, a}}))
}

func TestDirective(t *testing.T) {
	assert.Equal(t, "#[cfg(test)]", Directive("test"))
}

// Translation is structural: the all/any/not nesting of the output exactly
// follows the parsed tree, for any condition the grammar accepts.
func TestTranslateMatchesParse(t *testing.T) {
	tests := []struct {
		condition string
		expected  string
	}{
		{"a", "a"},
		{"a and b and c", "all(a, b, c)"},
		{"a or b or c", "any(a, b, c)"},
		{"a and b or c and d", "any(all(a, b), all(c, d))"},
		{"not(a or b)", "not(any(a, b))"},
		{"(a)", "a"},
		{`k = "v"`, `k = "v"`},
		{`a and not(b) and c = "1"`, `all(a, not(b), c = "1")`},
	}
	for _, tt := range tests {
		block, err := parser.Parse(context.Background(), "(if "+tt.condition+") item x")
		require.NoError(t, err, "condition: %s", tt.condition)
		require.Len(t, block.Items, 1)
		assert.Equal(t, tt.expected, Translate(block.Items[0].Cond), "condition: %s", tt.condition)
	}
}

// The string literal is carried through exactly as written, escapes included.
func TestValueVerbatim(t *testing.T) {
	block, err := parser.Parse(context.Background(), `(if path = "C:\\bin") item x`)
	require.NoError(t, err)
	assert.Equal(t, `path = "C:\\bin"`, Translate(block.Items[0].Cond))
}
