package formats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var errNotListLiteral = errors.New("not a JSON array or list literal of strings")

// parseListLiteral reads a bracketed, comma-separated list of single- or
// double-quoted strings such as ['a', "b",]. Only string elements are
// accepted; nothing is evaluated.
func parseListLiteral(s string) ([]string, error) {
	p := &literalParser{src: s}
	p.skipSpace()
	if !p.consume('[') {
		return nil, errNotListLiteral
	}
	var out []string
	for {
		p.skipSpace()
		if p.consume(']') {
			break
		}
		value, err := p.quoted()
		if err != nil {
			return nil, err
		}
		out = append(out, value)
		p.skipSpace()
		if p.consume(',') {
			continue
		}
		if p.consume(']') {
			break
		}
		return nil, fmt.Errorf("%w: expected ',' or ']' at offset %d", errNotListLiteral, p.pos)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w: trailing data at offset %d", errNotListLiteral, p.pos)
	}
	return out, nil
}

type literalParser struct {
	src string
	pos int
}

func (p *literalParser) skipSpace() {
	for p.pos < len(p.src) && strings.ContainsRune(" \t\r\n", rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *literalParser) consume(b byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *literalParser) quoted() (string, error) {
	if p.pos >= len(p.src) || (p.src[p.pos] != '\'' && p.src[p.pos] != '"') {
		return "", fmt.Errorf("%w: expected quoted string at offset %d", errNotListLiteral, p.pos)
	}
	quote := p.src[p.pos]
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return b.String(), nil
		case c == '\\':
			if err := p.escape(&b); err != nil {
				return "", err
			}
		case c == '\n':
			return "", fmt.Errorf("%w: newline inside string at offset %d", errNotListLiteral, p.pos)
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			b.WriteRune(r)
			p.pos += size
		}
	}
	return "", fmt.Errorf("%w: unterminated string", errNotListLiteral)
}

var simpleEscapes = map[byte]string{
	'\\': "\\", '\'': "'", '"': "\"", 'n': "\n", 't': "\t", 'r': "\r", '0': "\x00",
}

func (p *literalParser) escape(b *strings.Builder) error {
	p.pos++ // backslash
	if p.pos >= len(p.src) {
		return fmt.Errorf("%w: dangling escape", errNotListLiteral)
	}
	c := p.src[p.pos]
	if s, ok := simpleEscapes[c]; ok {
		b.WriteString(s)
		p.pos++
		return nil
	}
	var width int
	switch c {
	case 'x':
		width = 2
	case 'u':
		width = 4
	case 'U':
		width = 8
	default:
		// Unknown escapes keep the backslash.
		b.WriteByte('\\')
		return nil
	}
	start := p.pos + 1
	if start+width > len(p.src) {
		return fmt.Errorf("%w: short \\%c escape", errNotListLiteral, c)
	}
	code, err := strconv.ParseUint(p.src[start:start+width], 16, 32)
	if err != nil {
		return fmt.Errorf("%w: bad \\%c escape", errNotListLiteral, c)
	}
	b.WriteRune(rune(code))
	p.pos = start + width
	return nil
}
