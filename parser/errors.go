package parser

import (
	"fmt"

	"github.com/cloudcmds/pragma/errors"
	"github.com/cloudcmds/pragma/token"
)

// ErrorOpts holds the data used to construct a SyntaxError. All fields are
// optional, although one of `Cause` or `Message` is recommended. If `Cause`
// is set, `Message` is ignored.
type ErrorOpts struct {
	Message       string
	Cause         error
	File          string
	StartPosition token.Position
	EndPosition   token.Position
	SourceCode    string
	Hint          string
}

// NewSyntaxError returns a new SyntaxError populated with the given data.
func NewSyntaxError(opts ErrorOpts) *SyntaxError {
	return &SyntaxError{
		message:       opts.Message,
		cause:         opts.Cause,
		file:          opts.File,
		startPosition: opts.StartPosition,
		endPosition:   opts.EndPosition,
		sourceCode:    opts.SourceCode,
		hint:          opts.Hint,
	}
}

// SyntaxError describes input that does not match the pragma grammar. It is
// the only error kind the parser produces: the first one encountered anywhere
// in the parse aborts the whole expansion.
type SyntaxError struct {
	// The error message
	message string
	// The wrapped error, e.g. a lexing failure
	cause error
	// File where the error occurred
	file string
	// Start position of the error in the input string
	startPosition token.Position
	// End position of the error in the input string
	endPosition token.Position
	// Relevant line of source code text
	sourceCode string
	// Optional suggestion shown below the source context
	hint string
}

func (e *SyntaxError) Error() string {
	msg := e.message
	if e.cause != nil {
		msg = e.cause.Error()
	}
	return fmt.Sprintf("syntax error: %s", msg)
}

func (e *SyntaxError) Unwrap() error {
	return e.cause
}

func (e *SyntaxError) Message() string {
	return e.message
}

func (e *SyntaxError) Cause() error {
	return e.cause
}

func (e *SyntaxError) File() string {
	return e.file
}

func (e *SyntaxError) StartPosition() token.Position {
	return e.startPosition
}

func (e *SyntaxError) EndPosition() token.Position {
	return e.endPosition
}

func (e *SyntaxError) SourceCode() string {
	return e.sourceCode
}

func (e *SyntaxError) FriendlyErrorMessage() string {
	formatter := errors.NewFormatter(false)
	return formatter.Format(e.ToFormatted())
}

// ToFormatted converts the error to a FormattedError for display.
func (e *SyntaxError) ToFormatted() *errors.FormattedError {
	message := e.message
	if e.cause != nil {
		message = e.cause.Error()
	}
	return &errors.FormattedError{
		Kind:      "syntax error",
		Message:   message,
		Filename:  e.file,
		Line:      e.startPosition.LineNumber(),
		Column:    e.startPosition.ColumnNumber(),
		EndColumn: e.endPosition.ColumnNumber(),
		SourceLines: []errors.SourceLineEntry{
			{Number: e.startPosition.LineNumber(), Text: e.sourceCode, IsMain: true},
		},
		Hint: e.hint,
	}
}
