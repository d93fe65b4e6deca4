package reader

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// parseLiteralDict parses one line of pseudo-JSON: a language-literal
// dictionary using single-quoted strings, True/False/None, tuples, and
// nested lists/dicts. Only literals are accepted, never expressions.
func parseLiteralDict(line string) (map[string]any, error) {
	p := &litParser{src: line}
	p.skipSpace()
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, eris.Errorf("literal: trailing content at offset %d", p.pos)
	}
	dict, ok := v.(map[string]any)
	if !ok {
		return nil, eris.Errorf("literal: expected a dictionary, got %T", v)
	}
	return dict, nil
}

type litParser struct {
	src string
	pos int
}

func (p *litParser) errf(format string, args ...any) error {
	return eris.Errorf("literal: "+format+" at offset %d", append(args, p.pos)...)
}

func (p *litParser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\r', '\n':
			p.pos++
		default:
			return
		}
	}
}

func (p *litParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *litParser) value() (any, error) {
	p.skipSpace()
	switch c := p.peek(); {
	case c == '{':
		return p.dict()
	case c == '[':
		return p.seq('[', ']')
	case c == '(':
		return p.seq('(', ')')
	case c == '\'' || c == '"':
		return p.str()
	case c == 'u' || c == 'b' || c == 'r':
		// String prefix (u'...', b"...").
		if p.pos+1 < len(p.src) && (p.src[p.pos+1] == '\'' || p.src[p.pos+1] == '"') {
			p.pos++
			return p.str()
		}
		return p.keyword()
	case c == 'T' || c == 'F' || c == 'N':
		return p.keyword()
	case c == '-' || c == '+' || (c >= '0' && c <= '9') || c == '.':
		return p.number()
	default:
		return nil, p.errf("unexpected character %q", c)
	}
}

func (p *litParser) keyword() (any, error) {
	rest := p.src[p.pos:]
	for kw, v := range map[string]any{"True": true, "False": false, "None": nil} {
		if strings.HasPrefix(rest, kw) {
			p.pos += len(kw)
			return v, nil
		}
	}
	return nil, p.errf("unknown keyword")
}

func (p *litParser) dict() (any, error) {
	p.pos++ // '{'
	out := make(map[string]any)
	p.skipSpace()
	if p.peek() == '}' {
		p.pos++
		return out, nil
	}
	for {
		p.skipSpace()
		key, err := p.value()
		if err != nil {
			return nil, err
		}
		ks, ok := key.(string)
		if !ok {
			return nil, p.errf("non-string dictionary key %v", key)
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errf("expected ':'")
		}
		p.pos++
		val, err := p.value()
		if err != nil {
			return nil, err
		}
		out[ks] = val
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == '}' { // trailing comma
				p.pos++
				return out, nil
			}
		case '}':
			p.pos++
			return out, nil
		default:
			return nil, p.errf("expected ',' or '}'")
		}
	}
}

func (p *litParser) seq(open, close byte) (any, error) {
	p.pos++ // open
	out := []any{}
	p.skipSpace()
	if p.peek() == close {
		p.pos++
		return out, nil
	}
	for {
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		out = append(out, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
			p.skipSpace()
			if p.peek() == close { // trailing comma
				p.pos++
				return out, nil
			}
		case close:
			p.pos++
			return out, nil
		default:
			return nil, p.errf("expected ',' or %q", string(close))
		}
	}
}

func (p *litParser) str() (any, error) {
	quote := p.src[p.pos]
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case quote:
			p.pos++
			return sb.String(), nil
		case '\\':
			p.pos++
			if p.pos >= len(p.src) {
				return nil, p.errf("unterminated escape")
			}
			if err := p.escape(&sb); err != nil {
				return nil, err
			}
		default:
			sb.WriteByte(c)
			p.pos++
		}
	}
	return nil, p.errf("unterminated string")
}

func (p *litParser) escape(sb *strings.Builder) error {
	c := p.src[p.pos]
	p.pos++
	switch c {
	case '\'', '"', '\\':
		sb.WriteByte(c)
	case 'n':
		sb.WriteByte('\n')
	case 't':
		sb.WriteByte('\t')
	case 'r':
		sb.WriteByte('\r')
	case '0':
		sb.WriteByte(0)
	case 'x':
		if p.pos+2 > len(p.src) {
			return p.errf("short \\x escape")
		}
		n, err := strconv.ParseUint(p.src[p.pos:p.pos+2], 16, 8)
		if err != nil {
			return p.errf("bad \\x escape")
		}
		sb.WriteByte(byte(n))
		p.pos += 2
	case 'u':
		if p.pos+4 > len(p.src) {
			return p.errf("short \\u escape")
		}
		n, err := strconv.ParseUint(p.src[p.pos:p.pos+4], 16, 32)
		if err != nil {
			return p.errf("bad \\u escape")
		}
		sb.WriteRune(rune(n))
		p.pos += 4
	default:
		// Unknown escapes pass through verbatim, matching lenient
		// literal evaluation of raw strings.
		sb.WriteByte('\\')
		sb.WriteByte(c)
	}
	return nil
}

func (p *litParser) number() (any, error) {
	start := p.pos
	if c := p.peek(); c == '-' || c == '+' {
		p.pos++
	}
	isFloat := false
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c >= '0' && c <= '9' {
			p.pos++
			continue
		}
		if c == '.' || c == 'e' || c == 'E' {
			isFloat = true
			p.pos++
			if c != '.' && p.pos < len(p.src) && (p.src[p.pos] == '-' || p.src[p.pos] == '+') {
				p.pos++
			}
			continue
		}
		break
	}
	text := p.src[start:p.pos]
	if text == "" || text == "-" || text == "+" {
		return nil, p.errf("malformed number")
	}
	if !isFloat {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return n, nil
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.errf("malformed number %q", text)
	}
	return f, nil
}

// validLiteralStart reports whether a line can possibly hold a literal
// dictionary, used to shortcut obvious garbage.
func validLiteralStart(line string) bool {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(line))
	return r == '{'
}
