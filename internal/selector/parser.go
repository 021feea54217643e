package selector

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// ParseError reports malformed selector syntax.
type ParseError struct {
	Input  string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid selector %q: %s at offset %d", e.Input, e.Msg, e.Offset)
}

type parser struct {
	src string
	pos int
}

// Parse parses a comma-separated selector list. An input made only of
// whitespace yields an empty list.
func Parse(input string) (List, error) {
	p := &parser{src: input}
	p.skipWhitespace()
	if p.eof() {
		return List{}, nil
	}
	list, err := p.parseList()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, p.errorf(p.pos, "unexpected %q", p.src[p.pos])
	}
	return list, nil
}

func (p *parser) errorf(offset int, format string, args ...interface{}) *ParseError {
	return &ParseError{Input: p.src, Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.src)
}

func (p *parser) peekIs(c byte) bool {
	return p.pos < len(p.src) && p.src[p.pos] == c
}

func (p *parser) skipWhitespace() bool {
	start := p.pos
	for !p.eof() && isWhitespace(p.src[p.pos]) {
		p.pos++
	}
	return p.pos > start
}

// parseList stops at the end of input or at an unmatched ')'.
func (p *parser) parseList() (List, error) {
	var list List
	for {
		p.skipWhitespace()
		start := p.pos
		complex, err := p.parseComplex()
		if err != nil {
			return nil, err
		}
		if len(complex) == 0 {
			return nil, p.errorf(start, "empty selector")
		}
		list = append(list, complex)
		if !p.peekIs(',') {
			return list, nil
		}
		p.pos++
	}
}

func (p *parser) parseComplex() (Complex, error) {
	var tokens Complex
	var pending *Combinator
	pendingAt := 0
	for {
		p.skipWhitespace()
		if p.eof() || p.peekIs(',') || p.peekIs(')') {
			break
		}
		if kind, ok := combinatorKind(p.src[p.pos]); ok {
			if pending != nil {
				return nil, p.errorf(p.pos, "unexpected combinator %q", p.src[p.pos])
			}
			pending, pendingAt = &Combinator{Kind: kind}, p.pos
			p.pos++
			continue
		}
		if pending != nil {
			tokens = append(tokens, pending)
			pending = nil
		} else if len(tokens) > 0 {
			tokens = append(tokens, &Combinator{Kind: Descendant})
		}
		compound, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, compound...)
	}
	if pending != nil {
		return nil, p.errorf(pendingAt, "trailing combinator %q", pending.String())
	}
	return tokens, nil
}

// parseCompound returns more than one token when a bare marker is chained
// inside the compound (`div:global.a`); the marker is then split out and
// separated from its neighbours by descendant combinators.
func (p *parser) parseCompound() ([]Token, error) {
	var tokens []Token
	var parts []Simple
	push := func(token Token) {
		if len(tokens) > 0 {
			tokens = append(tokens, &Combinator{Kind: Descendant})
		}
		tokens = append(tokens, token)
	}
	flush := func() {
		switch {
		case len(parts) == 0:
			return
		case len(parts) == 1 && parts[0].Marker != nil:
			push(parts[0].Marker)
		default:
			push(&Compound{Parts: parts})
		}
		parts = nil
	}
	for !p.eof() && !isBoundary(p.src[p.pos]) {
		simple, err := p.parseSimple()
		if err != nil {
			return nil, err
		}
		if simple.Marker != nil && simple.Marker.Bare() {
			flush()
			push(simple.Marker)
			continue
		}
		parts = append(parts, simple)
	}
	flush()
	return tokens, nil
}

func (p *parser) parseSimple() (Simple, error) {
	start := p.pos
	switch c := p.src[p.pos]; c {
	case '.', '#':
		p.pos++
		ok, err := p.consumeName()
		if err != nil {
			return Simple{}, err
		}
		if !ok {
			return Simple{}, p.errorf(start, "expected name after %q", c)
		}
	case '[':
		if err := p.consumeBlock(); err != nil {
			return Simple{}, err
		}
	case ':':
		p.pos++
		isElement := false
		if p.peekIs(':') {
			p.pos++
			isElement = true
		}
		nameStart := p.pos
		ok, err := p.consumeName()
		if err != nil {
			return Simple{}, err
		}
		if !ok {
			return Simple{}, p.errorf(start, "expected pseudo-class name")
		}
		if !isElement {
			if scope, ok := scopeFromName(p.src[nameStart:p.pos]); ok {
				return p.parseMarker(start, scope)
			}
		}
		if p.peekIs('(') {
			if err := p.consumeBlock(); err != nil {
				return Simple{}, err
			}
		}
	case '&':
		p.pos++
	case '*':
		p.pos++
		if err := p.consumeNamespacedName(); err != nil {
			return Simple{}, err
		}
	case '|':
		p.pos++
		if err := p.consumeTypeName(start); err != nil {
			return Simple{}, err
		}
	case '"', '\'':
		return Simple{}, p.errorf(p.pos, "unexpected string")
	case '(', ']':
		return Simple{}, p.errorf(p.pos, "unexpected %q", c)
	default:
		ok, err := p.consumeName()
		if err != nil {
			return Simple{}, err
		}
		if !ok {
			return Simple{}, p.errorf(p.pos, "unexpected %q", c)
		}
		if err := p.consumeNamespacedName(); err != nil {
			return Simple{}, err
		}
	}
	return Simple{Text: p.src[start:p.pos]}, nil
}

func (p *parser) parseMarker(start int, scope Scope) (Simple, error) {
	if !p.peekIs('(') {
		return Simple{Text: p.src[start:p.pos], Marker: &Marker{Scope: scope}}, nil
	}
	open := p.pos
	p.pos++
	p.skipWhitespace()
	if p.peekIs(')') {
		return Simple{}, p.errorf(open, "empty :%s()", scope)
	}
	args, err := p.parseList()
	if err != nil {
		return Simple{}, err
	}
	if !p.peekIs(')') {
		return Simple{}, p.errorf(open, "unclosed '('")
	}
	p.pos++
	return Simple{Text: p.src[start:p.pos], Marker: &Marker{Scope: scope, Args: args}}, nil
}

// consumeNamespacedName handles the `ns|name` form after a prefix.
func (p *parser) consumeNamespacedName() error {
	if !p.peekIs('|') || p.pos+1 >= len(p.src) || p.src[p.pos+1] == '=' {
		return nil
	}
	start := p.pos
	p.pos++
	return p.consumeTypeName(start)
}

func (p *parser) consumeTypeName(start int) error {
	if p.peekIs('*') {
		p.pos++
		return nil
	}
	ok, err := p.consumeName()
	if err != nil {
		return err
	}
	if !ok {
		return p.errorf(start, "expected name after '|'")
	}
	return nil
}

func (p *parser) consumeName() (bool, error) {
	start := p.pos
	for !p.eof() {
		c := p.src[p.pos]
		switch {
		case c == '\\':
			if err := p.consumeEscape(); err != nil {
				return false, err
			}
		case isNameChar(c):
			p.pos++
		default:
			return p.pos > start, nil
		}
	}
	return p.pos > start, nil
}

// consumeEscape consumes `\` and the escaped code point. A hex escape may
// be followed by one whitespace character which belongs to the escape.
func (p *parser) consumeEscape() error {
	start := p.pos
	p.pos++
	if p.eof() {
		return p.errorf(start, "dangling escape")
	}
	c := p.src[p.pos]
	if c == '\n' || c == '\r' || c == '\f' {
		return p.errorf(start, "invalid escape")
	}
	if !isHexDigit(c) {
		_, size := utf8.DecodeRuneInString(p.src[p.pos:])
		p.pos += size
		return nil
	}
	for i := 0; i < 6 && !p.eof() && isHexDigit(p.src[p.pos]); i++ {
		p.pos++
	}
	if strings.HasPrefix(p.src[p.pos:], "\r\n") {
		p.pos += 2
	} else if !p.eof() && isWhitespace(p.src[p.pos]) {
		p.pos++
	}
	return nil
}

// consumeBlock consumes a bracketed or parenthesized run verbatim, honouring
// nesting, strings and escapes.
func (p *parser) consumeBlock() error {
	start := p.pos
	stack := []byte{closerOf(p.src[p.pos])}
	p.pos++
	for !p.eof() {
		switch c := p.src[p.pos]; c {
		case '\\':
			if p.pos+1 >= len(p.src) {
				return p.errorf(p.pos, "dangling escape")
			}
			_, size := utf8.DecodeRuneInString(p.src[p.pos+1:])
			p.pos += 1 + size
			continue
		case '"', '\'':
			if err := p.consumeString(); err != nil {
				return err
			}
			continue
		case '(', '[':
			stack = append(stack, closerOf(c))
		case ')', ']':
			if c != stack[len(stack)-1] {
				return p.errorf(p.pos, "unexpected %q", c)
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				p.pos++
				return nil
			}
		}
		p.pos++
	}
	return p.errorf(start, "unclosed %q", p.src[start])
}

func (p *parser) consumeString() error {
	start := p.pos
	quote := p.src[p.pos]
	p.pos++
	for !p.eof() {
		switch c := p.src[p.pos]; c {
		case quote:
			p.pos++
			return nil
		case '\\':
			if p.pos+1 >= len(p.src) {
				return p.errorf(p.pos, "dangling escape")
			}
			_, size := utf8.DecodeRuneInString(p.src[p.pos+1:])
			p.pos += 1 + size
			continue
		case '\n':
			return p.errorf(start, "unterminated string")
		}
		p.pos++
	}
	return p.errorf(start, "unterminated string")
}

func scopeFromName(name string) (Scope, bool) {
	switch {
	case strings.EqualFold(name, "global"):
		return Global, true
	case strings.EqualFold(name, "local"):
		return Local, true
	}
	return Local, false
}

func combinatorKind(c byte) (CombinatorKind, bool) {
	switch c {
	case '>':
		return Child, true
	case '+':
		return NextSibling, true
	case '~':
		return SubsequentSibling, true
	}
	return Descendant, false
}

func closerOf(c byte) byte {
	if c == '[' {
		return ']'
	}
	return ')'
}

func isWhitespace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func isBoundary(c byte) bool {
	if isWhitespace(c) {
		return true
	}
	switch c {
	case '>', '+', '~', ',', ')':
		return true
	}
	return false
}

func isNameChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
		c == '-' || c == '_' || c >= 0x80
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
