package sql

import (
	"fmt"
	"strings"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenLParen
	tokenRParen
	tokenComma
	tokenStar
	tokenEquals
	tokenSemicolon
)

type token struct {
	typ  tokenType
	text string
}

func (t token) is(keyword string) bool {
	return t.typ == tokenIdent && strings.EqualFold(t.text, keyword)
}

type lexer struct {
	input string
	pos   int
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) && isSpace(l.input[l.pos]) {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF}, nil
	}

	c := l.input[l.pos]
	switch {
	case c == '(':
		l.pos++
		return token{typ: tokenLParen, text: "("}, nil
	case c == ')':
		l.pos++
		return token{typ: tokenRParen, text: ")"}, nil
	case c == ',':
		l.pos++
		return token{typ: tokenComma, text: ","}, nil
	case c == '*':
		l.pos++
		return token{typ: tokenStar, text: "*"}, nil
	case c == '=':
		l.pos++
		return token{typ: tokenEquals, text: "="}, nil
	case c == ';':
		l.pos++
		return token{typ: tokenSemicolon, text: ";"}, nil
	case c == '\'':
		return l.stringLiteral()
	case isDigit(c) || c == '-':
		return l.number()
	case isIdentStart(c):
		return l.identifier()
	default:
		return token{}, fmt.Errorf("unexpected character %q at position %d", c, l.pos)
	}
}

func (l *lexer) stringLiteral() (token, error) {
	start := l.pos
	l.pos++ // opening quote
	for l.pos < len(l.input) && l.input[l.pos] != '\'' {
		l.pos++
	}
	if l.pos >= len(l.input) {
		return token{}, fmt.Errorf("unterminated string literal at position %d", start)
	}
	text := l.input[start+1 : l.pos]
	l.pos++ // closing quote
	return token{typ: tokenString, text: text}, nil
}

func (l *lexer) number() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' {
		l.pos++
		if l.pos >= len(l.input) || !isDigit(l.input[l.pos]) {
			return token{}, fmt.Errorf("malformed number at position %d", start)
		}
	}
	for l.pos < len(l.input) && (isDigit(l.input[l.pos]) || l.input[l.pos] == '.') {
		l.pos++
	}
	return token{typ: tokenNumber, text: l.input[start:l.pos]}, nil
}

func (l *lexer) identifier() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	return token{typ: tokenIdent, text: l.input[start:l.pos]}, nil
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}
