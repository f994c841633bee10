package board

import (
	"fmt"
	"strconv"
	"strings"
)

type tokenKind int

const (
	tokName tokenKind = iota
	tokLBrace
	tokRBrace
	tokEq
	tokSemi
	tokArrow
	tokNumber
	tokLBracket
	tokRBracket
)

var tokenNames = [...]string{"NAME", "'{'", "'}'", "'='", "';'", "'->'", "NUMBER", "'['", "']'"}

func (k tokenKind) String() string { return tokenNames[k] }

type token struct {
	kind  tokenKind
	value string
	line  int
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isWordChar(ch byte) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z':
		return true
	}
	return strings.IndexByte("&_. '", ch) >= 0
}

// lex splits board source into tokens. Names may contain spaces; surrounding blanks
// are trimmed. A '#' starts a comment that runs to the end of the line.
func lex(src string) ([]token, error) {
	var toks []token
	line := 1
	for i := 0; i < len(src); i++ {
		ch := src[i]
		switch {
		case ch == '\n':
			line++
		case ch == ' ' || ch == '\t' || ch == '\r':
		case ch == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			i--
		case ch == '{':
			toks = append(toks, token{tokLBrace, "{", line})
		case ch == '}':
			toks = append(toks, token{tokRBrace, "}", line})
		case ch == '[':
			toks = append(toks, token{tokLBracket, "[", line})
		case ch == ']':
			toks = append(toks, token{tokRBracket, "]", line})
		case ch == '=':
			toks = append(toks, token{tokEq, "=", line})
		case ch == ';':
			toks = append(toks, token{tokSemi, ";", line})
		case ch == '-':
			if i+1 < len(src) && src[i+1] == '>' {
				toks = append(toks, token{tokArrow, "->", line})
				i++
				continue
			}
			if i+1 < len(src) && isDigit(src[i+1]) {
				j := i + 1
				for j < len(src) && isDigit(src[j]) {
					j++
				}
				toks = append(toks, token{tokNumber, src[i:j], line})
				i = j - 1
				continue
			}
			return nil, fmt.Errorf("line %d: stray '-'", line)
		case isDigit(ch):
			j := i
			for j < len(src) && isDigit(src[j]) {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j], line})
			i = j - 1
		case isWordChar(ch):
			j := i
			for j < len(src) && isWordChar(src[j]) {
				j++
			}
			toks = append(toks, token{tokName, strings.TrimSpace(src[i:j]), line})
			i = j - 1
		default:
			return nil, fmt.Errorf("line %d: unexpected character %q", line, ch)
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) next() (token, bool) {
	t, ok := p.peek()
	if ok {
		p.pos++
	}
	return t, ok
}

func (p *parser) expect(k tokenKind) (token, error) {
	t, ok := p.next()
	if !ok {
		return t, fmt.Errorf("expected %s, got end of file", k)
	}
	if t.kind != k {
		return t, fmt.Errorf("line %d: expected %s, got %s %q", t.line, k, t.kind, t.value)
	}
	return t, nil
}

// ParseDSL reads the textual board format:
//
//	mediterranean avenue { type = property; cost = 60; rent = [2 10 30 90 160 250]; color = brown; }
//	start = go -> mediterranean avenue -> community chest;
//
// Space blocks become templates; the four side statements place copies of them.
func ParseDSL(name, src string) (*Definition, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, fmt.Errorf("board %s: %w", name, err)
	}
	def := newDefinition(name)
	p := &parser{toks: toks}
	for {
		t, ok := p.next()
		if !ok {
			break
		}
		if t.kind == tokSemi {
			continue
		}
		if t.kind != tokName {
			return nil, fmt.Errorf("board %s: line %d: expected a name, got %s", name, t.line, t.kind)
		}
		op, ok := p.next()
		if !ok {
			return nil, fmt.Errorf("board %s: line %d: expected '{' or '=' after %q", name, t.line, t.value)
		}
		switch op.kind {
		case tokLBrace:
			attrs, err := p.attrs()
			if err != nil {
				return nil, fmt.Errorf("board %s: space %q: %w", name, t.value, err)
			}
			if err := def.AddSpace(t.value, attrs); err != nil {
				return nil, fmt.Errorf("board %s: %w", name, err)
			}
		case tokEq:
			order, err := p.order()
			if err != nil {
				return nil, fmt.Errorf("board %s: side %q: %w", name, t.value, err)
			}
			def.Sides[strings.ToLower(t.value)] = order
		default:
			return nil, fmt.Errorf("board %s: line %d: expected '{' or '=' after %q, got %s", name, op.line, t.value, op.kind)
		}
	}
	return def, nil
}

// attrs reads "key = value;" and bare "flag;" entries up to the closing brace.
func (p *parser) attrs() (map[string]string, error) {
	attrs := make(map[string]string)
	for {
		t, ok := p.next()
		if !ok {
			return nil, fmt.Errorf("unterminated block")
		}
		switch t.kind {
		case tokRBrace:
			return attrs, nil
		case tokSemi:
			continue
		case tokName:
		default:
			return nil, fmt.Errorf("line %d: expected attribute name, got %s", t.line, t.kind)
		}
		key := strings.ToLower(t.value)
		nt, ok := p.next()
		if !ok {
			return nil, fmt.Errorf("unterminated block")
		}
		switch nt.kind {
		case tokSemi:
			attrs[key] = ""
			continue
		case tokRBrace:
			attrs[key] = ""
			return attrs, nil
		case tokEq:
		default:
			return nil, fmt.Errorf("line %d: expected '=' after %q", nt.line, key)
		}
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		attrs[key] = val
		if t, ok := p.peek(); ok && t.kind == tokSemi {
			p.pos++
		}
	}
}

// value reads a NAME, a NUMBER or a bracketed list, returned comma-separated.
func (p *parser) value() (string, error) {
	t, ok := p.next()
	if !ok {
		return "", fmt.Errorf("expected a value, got end of file")
	}
	switch t.kind {
	case tokName, tokNumber:
		return t.value, nil
	case tokLBracket:
		var items []string
		for {
			it, ok := p.next()
			if !ok {
				return "", fmt.Errorf("unterminated list")
			}
			if it.kind == tokRBracket {
				return strings.Join(items, ","), nil
			}
			if it.kind != tokNumber && it.kind != tokName {
				return "", fmt.Errorf("line %d: unexpected %s in list", it.line, it.kind)
			}
			items = append(items, it.value)
		}
	}
	return "", fmt.Errorf("line %d: expected a value, got %s", t.line, t.kind)
}

// order reads "a -> b -> c".
func (p *parser) order() ([]string, error) {
	first, err := p.expect(tokName)
	if err != nil {
		return nil, err
	}
	names := []string{first.value}
	for {
		t, ok := p.peek()
		if !ok || t.kind != tokArrow {
			return names, nil
		}
		p.pos++
		n, err := p.expect(tokName)
		if err != nil {
			return nil, err
		}
		names = append(names, n.value)
	}
}

// SplitOrder parses the "a -> b -> c" string used by the JSON and TOML formats.
func SplitOrder(s string) []string {
	var out []string
	for _, part := range strings.Split(s, "->") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func atoiAttr(attrs map[string]string, key string) (int, error) {
	v, ok := attrs[key]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("attribute %s: %q is not a number", key, v)
	}
	return n, nil
}
