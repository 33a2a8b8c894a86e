package parser

import (
	"strconv"

	"github.com/coregx/coregex/charset"
)

// parseEscapeAtom handles a backslash escape at atom position (outside a
// bracket expression): literal-byte escapes, predefined class escapes,
// and anchor/meta escapes (spec §4.1's escape vocabulary).
func (ps *parserState) parseEscapeAtom() (*node, error) {
	start := ps.pos
	ps.advance() // '\\'
	if ps.eof() {
		return nil, ps.errAt(start, ErrInvalidEscape)
	}
	c := ps.advance()
	loc := uint32(ps.locBase + start)

	switch c {
	case 'b':
		var s charset.Set
		s.AddMeta(charset.MetaWBB)
		return leaf(s, loc), nil
	case 'B':
		var s charset.Set
		s.AddMeta(charset.MetaNWB)
		return leaf(s, loc), nil
	case '<':
		var s charset.Set
		s.AddMeta(charset.MetaBWB)
		return leaf(s, loc), nil
	case '>':
		var s charset.Set
		s.AddMeta(charset.MetaEWB)
		return leaf(s, loc), nil
	case 'A':
		var s charset.Set
		s.AddMeta(charset.MetaBOB)
		return leaf(s, loc), nil
	case 'Z', 'z':
		var s charset.Set
		s.AddMeta(charset.MetaEOB)
		return leaf(s, loc), nil
	case '`':
		var s charset.Set
		s.AddMeta(charset.MetaBOB)
		return leaf(s, loc), nil
	case 'i':
		if !ps.dialect.AllowIndentMetas {
			return nil, ps.errAt(start, ErrInvalidEscape)
		}
		var s charset.Set
		s.AddMeta(charset.MetaIND)
		return leaf(s, loc), nil
	case 'j':
		if !ps.dialect.AllowIndentMetas {
			return nil, ps.errAt(start, ErrInvalidEscape)
		}
		var s charset.Set
		s.AddMeta(charset.MetaDED)
		return leaf(s, loc), nil
	case 'k':
		if !ps.dialect.AllowIndentMetas {
			return nil, ps.errAt(start, ErrInvalidEscape)
		}
		var s charset.Set
		s.AddMeta(charset.MetaUND)
		return leaf(s, loc), nil
	}

	if set, ok, err := ps.predefinedClass(c, start); ok || err != nil {
		if err != nil {
			return nil, err
		}
		return leaf(set, loc), nil
	}

	b, err := ps.literalEscapeByte(c, start)
	if err != nil {
		return nil, err
	}
	return leaf(charset.FromByte(b), loc), nil
}

// parseEscapeInClass handles a backslash escape inside a bracket
// expression: only byte-literal and predefined-class forms are valid
// there; anchors have no meaning inside a character class.
func (ps *parserState) parseEscapeInClass(start int) (charset.Set, error) {
	if ps.eof() {
		return charset.Set{}, ps.errAt(start, ErrInvalidEscape)
	}
	c := ps.advance()
	if set, ok, err := ps.predefinedClass(c, start); ok || err != nil {
		return set, err
	}
	b, err := ps.literalEscapeByte(c, start)
	if err != nil {
		return charset.Set{}, err
	}
	return charset.FromByte(b), nil
}

// predefinedClass handles \d \D \w \W \s \S \l \u.
func (ps *parserState) predefinedClass(c byte, start int) (charset.Set, bool, error) {
	var set charset.Set
	switch c {
	case 'd':
		set.AddRange('0', '9')
	case 'D':
		set.AddRange(0, 255)
		set = set.Difference(charset.FromRange('0', '9'))
	case 's':
		for _, b := range []byte(" \t\n\r\f\v") {
			set.Add(b)
		}
	case 'S':
		set.AddRange(0, 255)
		var ws charset.Set
		for _, b := range []byte(" \t\n\r\f\v") {
			ws.Add(b)
		}
		set = set.Difference(ws)
	case 'w':
		addWordBytes(&set)
	case 'W':
		set.AddRange(0, 255)
		var w charset.Set
		addWordBytes(&w)
		set = set.Difference(w)
	case 'l':
		set.AddRange('a', 'z')
	case 'u':
		set.AddRange('A', 'Z')
	default:
		return charset.Set{}, false, nil
	}
	return set, true, nil
}

func addWordBytes(set *charset.Set) {
	set.AddRange('a', 'z')
	set.AddRange('A', 'Z')
	set.AddRange('0', '9')
	set.Add('_')
}

// literalEscapeByte handles escapes denoting exactly one byte: \n \t \r
// \f \v \a \e \cX \0NNN \xHH \x{HHHH} and escaped metacharacters.
func (ps *parserState) literalEscapeByte(c byte, start int) (byte, error) {
	switch c {
	case 'n':
		return '\n', nil
	case 't':
		return '\t', nil
	case 'r':
		return '\r', nil
	case 'f':
		return '\f', nil
	case 'v':
		return '\v', nil
	case 'a':
		return '\a', nil
	case 'e':
		return 0x1b, nil
	case '0':
		digits := ps.scanOctalDigits(3)
		v, _ := strconv.ParseInt(digits, 8, 32)
		return byte(v), nil
	case 'c':
		if ps.eof() {
			return 0, ps.errAt(start, ErrInvalidEscape)
		}
		ctrl := ps.advance()
		return ctrl & 0x1f, nil
	case 'x':
		if !ps.eof() && ps.peek() == '{' {
			if !ps.dialect.AllowUnicodeEscapes {
				return 0, ps.errAt(start, ErrInvalidEscape)
			}
			ps.advance()
			digits := ps.scanHexDigits(6)
			if ps.eof() || ps.peek() != '}' {
				return 0, ps.errAt(start, ErrInvalidEscape)
			}
			ps.advance()
			v, err := strconv.ParseInt(digits, 16, 32)
			if err != nil || v > 255 {
				return 0, ps.errAt(start, ErrInvalidEscape)
			}
			return byte(v), nil
		}
		digits := ps.scanHexDigits(2)
		if len(digits) == 0 {
			return 0, ps.errAt(start, ErrInvalidEscape)
		}
		v, _ := strconv.ParseInt(digits, 16, 32)
		return byte(v), nil
	case 'u':
		if !ps.dialect.AllowUnicodeEscapes {
			return 0, ps.errAt(start, ErrInvalidEscape)
		}
		digits := ps.scanHexDigits(4)
		if len(digits) != 4 {
			return 0, ps.errAt(start, ErrInvalidEscape)
		}
		v, _ := strconv.ParseInt(digits, 16, 32)
		if v > 255 {
			// Non-Latin-1 code points fold to their low byte: full UTF-8
			// byte-range expansion for \uHHHH is out of scope here (see
			// DESIGN.md), matching the "explicit ranges" fallback of
			// spec §4.1 when the permissive-Unicode flag is off.
			return byte(v), nil
		}
		return byte(v), nil
	}
	// Any other escaped byte is the byte itself (escaped metacharacter:
	// \. \* \+ \? \( \) \[ \] \{ \} \| \\ \^ \$ etc.)
	if isASCIILetterOrDigit(c) {
		return 0, ps.errAt(start, ErrInvalidEscape)
	}
	return c, nil
}

func isASCIILetterOrDigit(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func (ps *parserState) scanHexDigits(max int) string {
	start := ps.pos
	for ps.pos-start < max && !ps.eof() && isHexDigit(ps.peek()) {
		ps.advance()
	}
	return ps.pattern[start:ps.pos]
}

func (ps *parserState) scanOctalDigits(max int) string {
	start := ps.pos
	for ps.pos-start < max && !ps.eof() && ps.peek() >= '0' && ps.peek() <= '7' {
		ps.advance()
	}
	return ps.pattern[start:ps.pos]
}

func isHexDigit(c byte) bool {
	return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
}
