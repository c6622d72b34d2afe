package query

import (
	"strconv"
	"strings"
	"unicode"
)

// TokenKind is the type of token
type TokenKind int

const (
	TokIdent TokenKind = iota
	TokString
	TokNumber
	TokColon
	TokComma
	TokDotDot
	TokLParen
	TokRParen
	TokStar
	TokAnd
	TokOr
	TokNot
	TokSortBy
	TokAsc
	TokDesc
	TokEOF
)

func (k TokenKind) String() string {
	switch k {
	case TokIdent:
		return "Ident"
	case TokString:
		return "String"
	case TokNumber:
		return "Number"
	case TokColon:
		return "Colon"
	case TokComma:
		return "Comma"
	case TokDotDot:
		return "DotDot"
	case TokLParen:
		return "LParen"
	case TokRParen:
		return "RParen"
	case TokStar:
		return "Star"
	case TokAnd:
		return "And"
	case TokOr:
		return "Or"
	case TokNot:
		return "Not"
	case TokSortBy:
		return "SortBy"
	case TokAsc:
		return "Asc"
	case TokDesc:
		return "Desc"
	case TokEOF:
		return "EOF"
	default:
		return "Unknown"
	}
}

// Token represents a lexical token. Text is the raw source slice, Offset
// the rune offset of its first rune. Str carries the decoded interior of
// string tokens, Num the decoded value of number tokens.
type Token struct {
	Kind   TokenKind
	Text   string
	Offset int
	Str    string
	Num    int64
}

// Lexer tokenizes a query string
type Lexer struct {
	input []rune
	pos   int
}

// NewLexer creates a new lexer for the input string
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: []rune(input),
		pos:   0,
	}
}

// Lex tokenizes the entire input. The returned slice always ends with a
// single EOF token whose offset is the input length; the first lexical
// error aborts the whole scan.
func Lex(input string) ([]Token, error) {
	lexer := NewLexer(input)
	var tokens []Token

	for {
		tok, err := lexer.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespace()

	if l.pos >= len(l.input) {
		return Token{Kind: TokEOF, Offset: len(l.input)}, nil
	}

	start := l.pos
	ch := l.input[l.pos]

	// Single-character tokens
	switch ch {
	case ':':
		l.pos++
		return l.token(TokColon, start), nil
	case ',':
		l.pos++
		return l.token(TokComma, start), nil
	case '(':
		l.pos++
		return l.token(TokLParen, start), nil
	case ')':
		l.pos++
		return l.token(TokRParen, start), nil
	case '*':
		l.pos++
		return l.token(TokStar, start), nil
	}

	// ".." is the range operator; a lone "." is an error
	if ch == '.' {
		if l.peek(1) == '.' {
			l.pos += 2
			return l.token(TokDotDot, start), nil
		}
		return Token{}, newError(ErrUnexpectedChar, start, "unexpected character %q", ch)
	}

	// "-" starts a number when followed by a digit and folds into a
	// hyphenated identifier when followed by a letter or underscore
	if ch == '-' {
		next := l.peek(1)
		switch {
		case unicode.IsDigit(next):
			return l.scanNumber()
		case unicode.IsLetter(next) || next == '_':
			return l.scanIdent()
		default:
			return Token{}, newError(ErrUnexpectedChar, start, "unexpected character %q", ch)
		}
	}

	if ch == '"' {
		return l.scanString('"', ErrUnterminatedString)
	}
	if ch == '{' {
		return l.scanString('}', ErrUnterminatedBracedString)
	}

	if unicode.IsDigit(ch) {
		return l.scanNumber()
	}

	if isIdentStart(ch) {
		return l.scanIdent()
	}

	return Token{}, newError(ErrUnexpectedChar, start, "unexpected character %q", ch)
}

func (l *Lexer) token(kind TokenKind, start int) Token {
	return Token{Kind: kind, Text: string(l.input[start:l.pos]), Offset: start}
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) && unicode.IsSpace(l.input[l.pos]) {
		l.pos++
	}
}

func (l *Lexer) peek(offset int) rune {
	pos := l.pos + offset
	if pos < len(l.input) {
		return l.input[pos]
	}
	return 0
}

// scanString consumes a delimited string and decodes its exact interior
// text; there is no escape processing.
func (l *Lexer) scanString(close rune, unterminated ErrorKind) (Token, error) {
	start := l.pos
	l.pos++ // consume opening delimiter

	for l.pos < len(l.input) {
		if l.input[l.pos] == close {
			lit := string(l.input[start+1 : l.pos])
			l.pos++ // consume closing delimiter
			tok := l.token(TokString, start)
			tok.Str = lit
			return tok, nil
		}
		l.pos++
	}

	return Token{}, newError(unterminated, start, "string starting at offset %d is never closed", start)
}

func (l *Lexer) scanNumber() (Token, error) {
	start := l.pos

	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && unicode.IsDigit(l.input[l.pos]) {
		l.pos++
	}

	text := string(l.input[start:l.pos])
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Token{}, newError(ErrInvalidNumber, start, "invalid number: %s", text)
	}

	tok := l.token(TokNumber, start)
	tok.Num = n
	return tok, nil
}

func (l *Lexer) scanIdent() (Token, error) {
	start := l.pos

	l.pos++ // first rune already vetted by Next
	for l.pos < len(l.input) && isIdentChar(l.input[l.pos]) {
		l.pos++
	}

	tok := l.token(TokIdent, start)
	switch strings.ToLower(tok.Text) {
	case "and":
		tok.Kind = TokAnd
	case "or":
		tok.Kind = TokOr
	case "not":
		tok.Kind = TokNot
	case "asc":
		tok.Kind = TokAsc
	case "desc":
		tok.Kind = TokDesc
	case "sort":
		// Two-word keyword "sort by": speculatively match the next word
		// and restore the cursor when it is not "by".
		save := l.pos
		if l.matchWord("by") {
			tok = l.token(TokSortBy, start)
		} else {
			l.pos = save
		}
	}
	return tok, nil
}

// matchWord skips whitespace and consumes the given lowercase word when
// it appears next with a word boundary after it.
func (l *Lexer) matchWord(word string) bool {
	l.skipWhitespace()
	for i, w := range word {
		ch := l.peek(i)
		if unicode.ToLower(ch) != w {
			return false
		}
	}
	if isIdentChar(l.peek(len(word))) {
		return false
	}
	l.pos += len(word)
	return true
}

func isIdentStart(ch rune) bool {
	return unicode.IsLetter(ch) || ch == '_'
}

func isIdentChar(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '-'
}
