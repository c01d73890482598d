package parser

import (
	"context"
	"testing"

	"github.com/cloudcmds/pragma/ast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseCond parses a single condition by wrapping it in a minimal item.
func parseCond(t *testing.T, condition string) ast.Cond {
	t.Helper()
	block, err := Parse(context.Background(), "(if "+condition+") item x")
	require.NoError(t, err)
	require.Len(t, block.Items, 1)
	require.NotNil(t, block.Items[0].Cond)
	return block.Items[0].Cond
}

func TestParseKey(t *testing.T) {
	cond := parseCond(t, "test")
	key, ok := cond.(*ast.Key)
	require.True(t, ok)
	assert.Equal(t, "test", key.Name)
}

func TestParseKeyVal(t *testing.T) {
	cond := parseCond(t, `target_pointer_width = "64"`)
	kv, ok := cond.(*ast.KeyVal)
	require.True(t, ok)
	assert.Equal(t, "target_pointer_width", kv.Name)
	assert.Equal(t, `"64"`, kv.Value)
}

func TestAndFlattens(t *testing.T) {
	// Left-associative chains collapse into a single node: three operands,
	// not two nested pairs.
	cond := parseCond(t, "a and b and c")
	all, ok := cond.(*ast.All)
	require.True(t, ok)
	require.Len(t, all.Exprs, 3)
	for i, name := range []string{"a", "b", "c"} {
		key, ok := all.Exprs[i].(*ast.Key)
		require.True(t, ok)
		assert.Equal(t, name, key.Name)
	}
}

func TestOrFlattens(t *testing.T) {
	cond := parseCond(t, "a or b or c or d")
	any, ok := cond.(*ast.Any)
	require.True(t, ok)
	require.Len(t, any.Exprs, 4)
}

func TestPrecedence(t *testing.T) {
	// "and" binds tighter than "or".
	cond := parseCond(t, "a and b or c and d")
	any, ok := cond.(*ast.Any)
	require.True(t, ok)
	require.Len(t, any.Exprs, 2)

	left, ok := any.Exprs[0].(*ast.All)
	require.True(t, ok)
	require.Len(t, left.Exprs, 2)
	assert.Equal(t, "a", left.Exprs[0].(*ast.Key).Name)
	assert.Equal(t, "b", left.Exprs[1].(*ast.Key).Name)

	right, ok := any.Exprs[1].(*ast.All)
	require.True(t, ok)
	require.Len(t, right.Exprs, 2)
	assert.Equal(t, "c", right.Exprs[0].(*ast.Key).Name)
	assert.Equal(t, "d", right.Exprs[1].(*ast.Key).Name)
}

func TestParenthesesOverridePrecedence(t *testing.T) {
	cond := parseCond(t, "a and (b or c)")
	all, ok := cond.(*ast.All)
	require.True(t, ok)
	require.Len(t, all.Exprs, 2)
	_, ok = all.Exprs[1].(*ast.Any)
	assert.True(t, ok)
}

func TestNot(t *testing.T) {
	cond := parseCond(t, "not(a)")
	not, ok := cond.(*ast.Not)
	require.True(t, ok)
	key, ok := not.X.(*ast.Key)
	require.True(t, ok)
	assert.Equal(t, "a", key.Name)
}

func TestNotOfCompound(t *testing.T) {
	cond := parseCond(t, "not(a and b)")
	not, ok := cond.(*ast.Not)
	require.True(t, ok)
	all, ok := not.X.(*ast.All)
	require.True(t, ok)
	assert.Len(t, all.Exprs, 2)
}

func TestOperatorNamesAsKeys(t *testing.T) {
	// A predicate literally named "and", "or" or "not" is a plain key when it
	// appears in key position: the operator check peeks at the identifier text
	// and only commits on a match in operator position.
	tests := []struct {
		input    string
		expected string
	}{
		{"and", "and"},
		{"or", "or"},
		{"not", "not"}, // no following "(", so not the operator
	}
	for _, tt := range tests {
		cond := parseCond(t, tt.input)
		key, ok := cond.(*ast.Key)
		require.True(t, ok, "input: %s", tt.input)
		assert.Equal(t, tt.expected, key.Name)
	}
}

func TestOperatorNamesInExpressions(t *testing.T) {
	// `not and and` reads as Key("not") AND Key("and"): the first "not" is
	// not followed by "(", the "and" in the middle is the operator, and the
	// trailing "and" sits in key position.
	cond := parseCond(t, "not and and")
	all, ok := cond.(*ast.All)
	require.True(t, ok)
	require.Len(t, all.Exprs, 2)
	assert.Equal(t, "not", all.Exprs[0].(*ast.Key).Name)
	assert.Equal(t, "and", all.Exprs[1].(*ast.Key).Name)
}

func TestNotKeyWithValue(t *testing.T) {
	// "not" followed by "=" rather than "(" is an ordinary valued predicate.
	cond := parseCond(t, `not = "x"`)
	kv, ok := cond.(*ast.KeyVal)
	require.True(t, ok)
	assert.Equal(t, "not", kv.Name)
	assert.Equal(t, `"x"`, kv.Value)
}

func TestComplexCondition(t *testing.T) {
	cond := parseCond(t, `target_pointer_width = "64" and (target_pointer_width = "16" or not(debug_assertions))`)
	all, ok := cond.(*ast.All)
	require.True(t, ok)
	require.Len(t, all.Exprs, 2)
	_, ok = all.Exprs[0].(*ast.KeyVal)
	require.True(t, ok)
	any, ok := all.Exprs[1].(*ast.Any)
	require.True(t, ok)
	require.Len(t, any.Exprs, 2)
	_, ok = any.Exprs[1].(*ast.Not)
	assert.True(t, ok)
}

func TestConditionErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unterminated paren", "(if (a or b) item x"},
		{"missing value", `(if key = ) item x`},
		{"missing value at end", `(if key = `},
		{"unquoted value", `(if key = bare) item x`},
		{"empty condition", "(if ) item x"},
		{"dangling and", "(if a and ) item x"},
		{"dangling or", "(if a or ) item x"},
		{"unclosed not", "(if not(a ) item x"},
		{"missing if", "(a) item x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block, err := Parse(context.Background(), tt.input)
			require.Error(t, err)
			assert.Nil(t, block)
			_, ok := err.(*SyntaxError)
			assert.True(t, ok, "expected *SyntaxError, got %T", err)
		})
	}
}

func TestConditionErrorPosition(t *testing.T) {
	_, err := Parse(context.Background(), `(if key = ) item x`, WithFilename("input.pragma"))
	require.Error(t, err)
	se, ok := err.(*SyntaxError)
	require.True(t, ok)
	assert.Equal(t, "input.pragma", se.File())
	assert.Equal(t, 1, se.StartPosition().LineNumber())
	assert.Equal(t, 11, se.StartPosition().ColumnNumber())
	assert.Contains(t, se.Error(), "expected string literal")
	assert.Equal(t, `(if key = ) item x`, se.SourceCode())
}

func TestDeepConditionNesting(t *testing.T) {
	var sb []byte
	for i := 0; i < 600; i++ {
		sb = append(sb, '(')
	}
	sb = append(sb, 'a')
	for i := 0; i < 600; i++ {
		sb = append(sb, ')')
	}
	input := "(if " + string(sb) + ") item x"

	_, err := Parse(context.Background(), input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "maximum nesting depth")

	// A generous limit accepts the same input.
	_, err = Parse(context.Background(), input, WithMaxDepth(1000))
	assert.NoError(t, err)
}
