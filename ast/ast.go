// Package ast defines the abstract syntax tree for pragma input: condition
// expressions and the annotated declarations they guard.
package ast

import "github.com/cloudcmds/pragma/token"

// Node represents a portion of the syntax tree. All nodes have position
// information indicating where they appear in the source code.
type Node interface {
	// Pos returns the position of the first character belonging to the node.
	Pos() token.Position

	// End returns the position of the first character immediately after the node.
	End() token.Position

	// String returns a human friendly representation of the Node. This should
	// be similar to the original source code, but not necessarily identical.
	String() string
}

// Cond represents a condition expression node. Conditions form an immutable
// tree built once by the parser and consumed once during expansion.
type Cond interface {
	Node
	condNode()
}

// Content represents the body of a declaration: either an opaque
// host-language item or a nested module.
type Content interface {
	Node
	contentNode()
}
