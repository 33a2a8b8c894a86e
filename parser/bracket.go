package parser

import "github.com/coregx/coregex/charset"

// parseBracketClass parses a "[...]" bracket expression: negation, POSIX
// [:class:] names, and byte ranges, combined by union (spec §4.1:
// "bracket-list union ... and (optionally) {macro} substitution"; this
// implementation supports union only -- see DESIGN.md for the scope cut
// on intersection/subtraction operators).
func (ps *parserState) parseBracketClass() (*node, error) {
	start := ps.pos
	loc := ps.loc()
	ps.advance() // '['

	negate := false
	if !ps.eof() && ps.peek() == '^' {
		negate = true
		ps.advance()
	}

	var set charset.Set
	count := 0
	first := true
	for {
		if ps.eof() {
			return nil, ps.errAt(start, ErrMismatchedBrackets)
		}
		c := ps.peek()
		if c == ']' && !first {
			ps.advance()
			break
		}
		first = false

		if c == '[' {
			if posix, ok, err := ps.tryParsePosixClass(); ok {
				if err != nil {
					return nil, err
				}
				set = set.Union(posix)
				count++
				continue
			}
		}

		lo, err := ps.readClassByte()
		if err != nil {
			return nil, err
		}
		if !ps.eof() && ps.peek() == '-' {
			if next, ok := ps.peekAt(1); ok && next != ']' {
				ps.advance() // '-'
				hi, err := ps.readClassByte()
				if err != nil {
					return nil, err
				}
				if hi < lo {
					return nil, ps.errAt(start, ErrInvalidClassRange)
				}
				set.AddRange(lo, hi)
				count++
				continue
			}
		}
		set.Add(lo)
		count++
	}

	if count == 0 {
		return nil, ps.errAt(start, ErrEmptyClass)
	}
	if negate {
		set = set.Complement()
	}
	return leaf(set, loc), nil
}

// readClassByte reads one class member: an escape or a literal byte.
func (ps *parserState) readClassByte() (byte, error) {
	start := ps.pos
	c := ps.advance()
	if c != '\\' {
		return c, nil
	}
	set, err := ps.parseEscapeInClass(start)
	if err != nil {
		return 0, err
	}
	b, ok := set.Single()
	if !ok {
		return 0, ps.errAt(start, ErrInvalidClassRange)
	}
	return b, nil
}

var posixClasses = map[string]func(*charset.Set){
	"alpha": func(s *charset.Set) { s.AddRange('a', 'z'); s.AddRange('A', 'Z') },
	"digit": func(s *charset.Set) { s.AddRange('0', '9') },
	"alnum": func(s *charset.Set) { s.AddRange('a', 'z'); s.AddRange('A', 'Z'); s.AddRange('0', '9') },
	"upper": func(s *charset.Set) { s.AddRange('A', 'Z') },
	"lower": func(s *charset.Set) { s.AddRange('a', 'z') },
	"space": func(s *charset.Set) {
		for _, b := range []byte(" \t\n\r\f\v") {
			s.Add(b)
		}
	},
	"blank": func(s *charset.Set) { s.Add(' '); s.Add('\t') },
	"punct": func(s *charset.Set) {
		for b := byte('!'); b <= '/'; b++ {
			s.Add(b)
		}
		for b := byte(':'); b <= '@'; b++ {
			s.Add(b)
		}
		for b := byte('['); b <= '`'; b++ {
			s.Add(b)
		}
		for b := byte('{'); b <= '~'; b++ {
			s.Add(b)
		}
	},
	"cntrl": func(s *charset.Set) { s.AddRange(0, 0x1f); s.Add(0x7f) },
	"print": func(s *charset.Set) { s.AddRange(0x20, 0x7e) },
	"graph": func(s *charset.Set) { s.AddRange(0x21, 0x7e) },
	"xdigit": func(s *charset.Set) {
		s.AddRange('0', '9')
		s.AddRange('a', 'f')
		s.AddRange('A', 'F')
	},
}

// tryParsePosixClass attempts to parse "[:name:]" at the current
// position (which must be sitting on the inner '['). Returns ok=false if
// the text is not a POSIX class form, leaving ps.pos unchanged.
func (ps *parserState) tryParsePosixClass() (charset.Set, bool, error) {
	save := ps.pos
	start := ps.pos
	ps.advance() // '['
	if ps.eof() || ps.peek() != ':' {
		ps.pos = save
		return charset.Set{}, false, nil
	}
	ps.advance() // ':'
	nameStart := ps.pos
	for !ps.eof() && ps.peek() != ':' {
		ps.advance()
	}
	name := ps.pattern[nameStart:ps.pos]
	if ps.eof() || ps.peek() != ':' {
		ps.pos = save
		return charset.Set{}, false, nil
	}
	ps.advance() // ':'
	if ps.eof() || ps.peek() != ']' {
		ps.pos = save
		return charset.Set{}, false, nil
	}
	ps.advance() // ']'

	fn, ok := posixClasses[name]
	if !ok {
		return charset.Set{}, true, ps.errAt(start, ErrInvalidClass)
	}
	var set charset.Set
	fn(&set)
	return set, true, nil
}
