// Package literal parses the python-style literal cells found in the scraped tables.
//
// Cells hold things like `[101, 102]` or `{'UFRJ': 3, 'USP': 1}`. Parse returns a
// small tree of Go values:
//
//	string, int64, float64, bool, nil  scalars
//	[]any                              lists and tuples
//	*Mapping                           dicts (insertion order kept)
package literal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   any
	Value any
}

// Mapping is an ordered dict literal.
type Mapping struct {
	Entries []Entry
}

// Len returns the number of entries.
func (m *Mapping) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Entries)
}

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty literal")

// SyntaxError reports where parsing stopped.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("literal syntax error at offset %d: %s", e.Offset, e.Msg)
}

// Parse parses a single literal. Trailing content other than whitespace is an error.
func Parse(s string) (any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmpty
	}
	p := &parser{src: s}
	v, err := p.value()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, p.errorf("unexpected trailing %q", p.src[p.pos:])
	}
	return v, nil
}

// ParseIntList parses a list (or tuple) of integers. Float elements with no
// fractional part are accepted since pandas writes ints as 101.0 after a NaN.
func ParseIntList(s string) ([]int, error) {
	v, err := Parse(s)
	if err != nil {
		return nil, err
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected list, got %T", v)
	}
	out := make([]int, 0, len(items))
	for i, item := range items {
		n, ok := AsInt(item)
		if !ok {
			return nil, fmt.Errorf("element %d: expected integer, got %v", i, item)
		}
		out = append(out, n)
	}
	return out, nil
}

// AsInt converts an integral scalar node to int.
func AsInt(v any) (int, bool) {
	switch n := v.(type) {
	case int64:
		return int(n), true
	case float64:
		if n == float64(int64(n)) {
			return int(n), true
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(n)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// MaxDepth bounds container nesting; real cells nest at most two levels.
const MaxDepth = 64

type parser struct {
	src   string
	pos   int
	depth int
}

// enter tracks one more level of nesting and fails past MaxDepth.
func (p *parser) enter() error {
	p.depth++
	if p.depth > MaxDepth {
		return p.errorf("nesting deeper than %d", MaxDepth)
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) value() (any, error) {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return nil, p.errorf("unexpected end of input")
	}
	switch c := p.peek(); {
	case c == '[':
		return p.sequence('[', ']')
	case c == '(':
		return p.sequence('(', ')')
	case c == '{':
		return p.mapping()
	case c == '\'' || c == '"':
		return p.str()
	case c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9'):
		return p.number()
	default:
		return p.word()
	}
}

func (p *parser) sequence(open, close byte) (any, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	p.pos++ // open
	items := []any{}
	for {
		p.skipSpace()
		if p.peek() == close {
			p.pos++
			return items, nil
		}
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		items = append(items, v)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case close:
			p.pos++
			return items, nil
		default:
			return nil, p.errorf("expected ',' or %q", close)
		}
	}
}

func (p *parser) mapping() (any, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()
	p.pos++ // {
	m := &Mapping{}
	for {
		p.skipSpace()
		if p.peek() == '}' {
			p.pos++
			return m, nil
		}
		k, err := p.value()
		if err != nil {
			return nil, err
		}
		if _, isList := k.([]any); isList {
			return nil, p.errorf("unhashable key")
		}
		p.skipSpace()
		if p.peek() != ':' {
			return nil, p.errorf("expected ':'")
		}
		p.pos++
		v, err := p.value()
		if err != nil {
			return nil, err
		}
		m.Entries = append(m.Entries, Entry{Key: k, Value: v})
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case '}':
			p.pos++
			return m, nil
		default:
			return nil, p.errorf("expected ',' or '}'")
		}
	}
}

func (p *parser) str() (any, error) {
	quote := p.src[p.pos]
	p.pos++
	var sb strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch {
		case c == quote:
			p.pos++
			return sb.String(), nil
		case c == '\\':
			if p.pos+1 >= len(p.src) {
				return nil, p.errorf("unterminated escape")
			}
			esc := p.src[p.pos+1]
			p.pos += 2
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '\\', '\'', '"':
				sb.WriteByte(esc)
			case 'x', 'u':
				width := 2
				if esc == 'u' {
					width = 4
				}
				if p.pos+width > len(p.src) {
					return nil, p.errorf("short \\%c escape", esc)
				}
				code, err := strconv.ParseUint(p.src[p.pos:p.pos+width], 16, 32)
				if err != nil {
					return nil, p.errorf("bad \\%c escape", esc)
				}
				sb.WriteRune(rune(code))
				p.pos += width
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
		default:
			r, size := utf8.DecodeRuneInString(p.src[p.pos:])
			sb.WriteRune(r)
			p.pos += size
		}
	}
	return nil, p.errorf("unterminated string")
}

func (p *parser) number() (any, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.' || c == 'e' || c == 'E' || c == '_' {
			p.pos++
			continue
		}
		break
	}
	text := strings.ReplaceAll(p.src[start:p.pos], "_", "")
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return i, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		p.pos = start
		return nil, p.errorf("bad number %q", text)
	}
	return f, nil
}

func (p *parser) word() (any, error) {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' {
			p.pos++
			continue
		}
		break
	}
	switch w := p.src[start:p.pos]; w {
	case "None":
		return nil, nil
	case "True":
		return true, nil
	case "False":
		return false, nil
	case "":
		return nil, p.errorf("unexpected %q", p.src[p.pos])
	default:
		p.pos = start
		return nil, p.errorf("unknown name %q", w)
	}
}
