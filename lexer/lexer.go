// Package lexer turns pragma source text into a stream of tokens.
//
// The lexer is deliberately permissive: apart from a handful of structural
// tokens (delimiters, "=", ";", attributes, string literals) every other
// rune is passed through as a PUNCT token, so that arbitrary host-language
// item bodies survive tokenization unchanged. The parser reassembles item
// bodies from the original source text using token positions.
package lexer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cloudcmds/pragma/token"
)

// Lexer tokenizes a pragma input string. Create one with New and call Next
// repeatedly until an EOF token is returned.
type Lexer struct {
	// input being tokenized
	input string

	// pos is the byte offset of the next rune to read
	pos int

	// line is the 0-indexed current line number
	line int

	// lineStart is the byte offset of the start of the current line
	lineStart int

	// filename of the input, used in token positions
	filename string
}

// New returns a Lexer for the given input string.
func New(input string) *Lexer {
	return &Lexer{input: input}
}

// SetFilename sets the filename associated with the input.
func (l *Lexer) SetFilename(filename string) {
	l.filename = filename
}

// Filename returns the filename associated with the input.
func (l *Lexer) Filename() string {
	return l.filename
}

// GetLineText returns the full line of input containing the given token.
func (l *Lexer) GetLineText(tok token.Token) string {
	start := tok.StartPosition.LineStart
	if start < 0 || start > len(l.input) {
		return ""
	}
	if end := strings.IndexByte(l.input[start:], '\n'); end >= 0 {
		return l.input[start : start+end]
	}
	return l.input[start:]
}

// Slice returns the verbatim source text between two positions.
func (l *Lexer) Slice(from, to token.Position) string {
	if from.Char < 0 || to.Char > len(l.input) || from.Char > to.Char {
		return ""
	}
	return l.input[from.Char:to.Char]
}

// Next returns the next token from the input. After the input is exhausted,
// every call returns an EOF token. Lexing errors (unterminated string
// literals or attributes) are returned along with an ILLEGAL token marking
// the offending position.
func (l *Lexer) Next() (token.Token, error) {
	l.skipTrivia()

	start := l.position()
	if l.pos >= len(l.input) {
		return token.Token{Type: token.EOF, StartPosition: start, EndPosition: start}, nil
	}

	ch := l.input[l.pos]
	switch ch {
	case '(':
		return l.single(token.LPAREN, start), nil
	case ')':
		return l.single(token.RPAREN, start), nil
	case '{':
		return l.single(token.LBRACE, start), nil
	case '}':
		return l.single(token.RBRACE, start), nil
	case '[':
		return l.single(token.LBRACKET, start), nil
	case ']':
		return l.single(token.RBRACKET, start), nil
	case ';':
		return l.single(token.SEMICOLON, start), nil
	case '=':
		return l.single(token.ASSIGN, start), nil
	case '"':
		return l.readString(start)
	case '\'':
		return l.readCharOrPunct(start), nil
	case '#':
		if l.pos+1 < len(l.input) && l.input[l.pos+1] == '[' {
			return l.readAttribute(start)
		}
	}

	if isIdentStart(ch) {
		lit := l.readIdentifier()
		return token.Token{
			Type:          token.LookupIdentifier(lit),
			Literal:       lit,
			StartPosition: start,
			EndPosition:   l.position(),
		}, nil
	}

	if isDigit(ch) {
		lit := l.readNumber()
		return token.Token{
			Type:          token.INT,
			Literal:       lit,
			StartPosition: start,
			EndPosition:   l.position(),
		}, nil
	}

	// Anything else is passed through as punctuation.
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	return token.Token{
		Type:          token.PUNCT,
		Literal:       string(r),
		StartPosition: start,
		EndPosition:   l.position(),
	}, nil
}

func (l *Lexer) position() token.Position {
	return token.Position{
		Char:      l.pos,
		LineStart: l.lineStart,
		Line:      l.line,
		Column:    l.pos - l.lineStart,
		File:      l.filename,
	}
}

func (l *Lexer) single(t token.Type, start token.Position) token.Token {
	lit := l.input[l.pos : l.pos+1]
	l.pos++
	return token.Token{
		Type:          t,
		Literal:       lit,
		StartPosition: start,
		EndPosition:   l.position(),
	}
}

// skipTrivia advances past whitespace and comments, tracking line numbers.
func (l *Lexer) skipTrivia() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\n' {
			l.pos++
			l.line++
			l.lineStart = l.pos
			continue
		}
		if unicode.IsSpace(rune(ch)) {
			l.pos++
			continue
		}
		if ch == '/' && l.pos+1 < len(l.input) {
			if l.input[l.pos+1] == '/' {
				for l.pos < len(l.input) && l.input[l.pos] != '\n' {
					l.pos++
				}
				continue
			}
			if l.input[l.pos+1] == '*' {
				l.skipBlockComment()
				continue
			}
		}
		return
	}
}

func (l *Lexer) skipBlockComment() {
	l.pos += 2
	for l.pos < len(l.input) {
		if l.input[l.pos] == '\n' {
			l.pos++
			l.line++
			l.lineStart = l.pos
			continue
		}
		if l.input[l.pos] == '*' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '/' {
			l.pos += 2
			return
		}
		l.pos++
	}
}

// readString reads a double-quoted string literal. The returned token's
// Literal is the source text exactly as written, including the quotes: no
// escape processing is performed so that values pass through unchanged.
func (l *Lexer) readString(start token.Position) (token.Token, error) {
	begin := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == '\\' && l.pos+1 < len(l.input) {
			l.pos += 2
			continue
		}
		if ch == '\n' {
			break
		}
		if ch == '"' {
			l.pos++
			return token.Token{
				Type:          token.STRING,
				Literal:       l.input[begin:l.pos],
				StartPosition: start,
				EndPosition:   l.position(),
			}, nil
		}
		l.pos++
	}
	tok := token.Token{
		Type:          token.ILLEGAL,
		Literal:       l.input[begin:l.pos],
		StartPosition: start,
		EndPosition:   l.position(),
	}
	return tok, fmt.Errorf("unterminated string literal")
}

// readCharOrPunct distinguishes a character literal like 'x' or '\n' from a
// bare apostrophe (e.g. a lifetime marker), which is passed through as
// punctuation. Character literals must be recognized so that a brace or
// bracket inside one does not confuse item delimiter tracking.
func (l *Lexer) readCharOrPunct(start token.Position) token.Token {
	begin := l.pos
	i := l.pos + 1
	if i < len(l.input) && l.input[i] == '\\' {
		i += 2
	} else if i < len(l.input) && l.input[i] != '\'' && l.input[i] != '\n' {
		_, size := utf8.DecodeRuneInString(l.input[i:])
		i += size
	}
	if i < len(l.input) && l.input[i] == '\'' {
		l.pos = i + 1
		return token.Token{
			Type:          token.CHAR,
			Literal:       l.input[begin:l.pos],
			StartPosition: start,
			EndPosition:   l.position(),
		}
	}
	l.pos++
	return token.Token{
		Type:          token.PUNCT,
		Literal:       "'",
		StartPosition: start,
		EndPosition:   l.position(),
	}
}

// readAttribute reads an attribute token "#[...]" with balanced brackets.
// String literals inside the attribute are skipped so that brackets within
// them do not affect balancing.
func (l *Lexer) readAttribute(start token.Position) (token.Token, error) {
	begin := l.pos
	l.pos += 2 // "#["
	depth := 1
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case '\n':
			l.pos++
			l.line++
			l.lineStart = l.pos
			continue
		case '"':
			// Scan past the literal; an unterminated string stops at the
			// newline or end of input, which the outer loop then handles.
			_, _ = l.readString(l.position())
			continue
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				l.pos++
				return token.Token{
					Type:          token.ATTR,
					Literal:       l.input[begin:l.pos],
					StartPosition: start,
					EndPosition:   l.position(),
				}, nil
			}
		}
		l.pos++
	}
	tok := token.Token{
		Type:          token.ILLEGAL,
		Literal:       l.input[begin:l.pos],
		StartPosition: start,
		EndPosition:   l.position(),
	}
	return tok, fmt.Errorf("unterminated attribute")
}

func (l *Lexer) readIdentifier() string {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return l.input[start:l.pos]
}

func (l *Lexer) readNumber() string {
	start := l.pos
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '_' ||
		isAlpha(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	return l.input[start:l.pos]
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return isAlpha(c) || c == '_'
}

func isIdentPart(c byte) bool {
	return isAlpha(c) || isDigit(c) || c == '_'
}
