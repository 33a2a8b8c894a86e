package parser

import "github.com/coregx/coregex/charset"

// --- grammar: parse4 atom ---

func (ps *parserState) parseAtom() (*node, error) {
	if ps.eof() {
		return &node{kind: nEmpty}, nil
	}
	c := ps.peek()
	switch c {
	case '(':
		return ps.parseGroup()
	case '[':
		return ps.parseBracketClass()
	case '.':
		loc := ps.loc()
		ps.advance()
		set := charset.FromRange(0, 255)
		if !ps.dotAllActive(loc) {
			set = set.Difference(charset.FromByte('\n'))
		}
		return leaf(set, loc), nil
	case '^':
		loc := ps.loc()
		ps.advance()
		return ps.anchorNode(loc, charset.MetaBOL, charset.MetaBOB), nil
	case '$':
		loc := ps.loc()
		ps.advance()
		return ps.anchorNode(loc, charset.MetaEOL, charset.MetaEOB), nil
	case '\\':
		return ps.parseEscapeAtom()
	case '{':
		if ps.dialect.AllowMacros {
			if n, ok, err := ps.tryParseMacroRef(); ok || err != nil {
				return n, err
			}
		}
		loc := ps.loc()
		ps.advance()
		return leaf(charset.FromByte('{'), loc), nil
	case ')':
		return nil, ps.errAt(ps.pos, ErrMismatchedParens)
	case '*', '+', '?':
		// A quantifier with nothing before it to repeat.
		return nil, ps.errAt(ps.pos, ErrInvalidQuantifier)
	default:
		loc := ps.loc()
		ps.advance()
		return leaf(charset.FromByte(c), loc), nil
	}
}

// anchorNode returns a leaf whose charset carries the given meta bit, with
// msymMultiline used when the 'm' flag is active at loc and msymBuffer
// otherwise (mirrors spec's BOL/EOL-vs-BOB/EOB multiline switch).
func (ps *parserState) anchorNode(loc uint32, msymMultiline, msymBuffer charset.Meta) *node {
	var set charset.Set
	if ps.multilineActive(loc) {
		set.AddMeta(msymMultiline)
	} else {
		set.AddMeta(msymBuffer)
	}
	return leaf(set, loc)
}

func (ps *parserState) multilineActive(loc uint32) bool {
	if ps.flags.Multiline {
		return true
	}
	return ps.mods.Active('m', int(loc))
}

func (ps *parserState) dotAllActive(loc uint32) bool {
	if ps.flags.DotAll {
		return true
	}
	return ps.mods.Active('s', int(loc))
}

func (ps *parserState) parseGroup() (*node, error) {
	start := ps.pos
	ps.advance() // '('
	if ps.eof() {
		return nil, ps.errAt(start, ErrMismatchedParens)
	}
	if ps.peek() == '?' {
		ps.advance()
		if ps.eof() {
			return nil, ps.errAt(start, ErrInvalidSyntax)
		}
		switch ps.peek() {
		case ':':
			ps.advance()
			return ps.parseGroupBody(start)
		case '=':
			if !ps.dialect.AllowLookahead {
				return nil, ps.errAt(start, ErrInvalidSyntax)
			}
			ps.advance()
			return ps.parseLookahead(start, false)
		case '!':
			if !ps.dialect.AllowLookahead {
				return nil, ps.errAt(start, ErrInvalidSyntax)
			}
			ps.advance()
			return ps.parseLookahead(start, true)
		default:
			return ps.parseInlineModifiers(start)
		}
	}
	// Plain capturing-looking group: capture is not a spec feature, so
	// "(...)" is purely a grouping construct for precedence.
	return ps.parseGroupBody(start)
}

func (ps *parserState) parseGroupBody(start int) (*node, error) {
	body, err := ps.parseAlt(false)
	if err != nil {
		return nil, err
	}
	if ps.eof() || ps.peek() != ')' {
		return nil, ps.errAt(start, ErrMismatchedParens)
	}
	ps.advance()
	return body, nil
}

func (ps *parserState) parseLookahead(start int, negative bool) (*node, error) {
	bodyStart := ps.pos
	loc := uint32(ps.locBase + start)
	body, err := ps.parseAlt(false)
	if err != nil {
		return nil, err
	}
	if ps.eof() || ps.peek() != ')' {
		return nil, ps.errAt(start, ErrMismatchedParens)
	}
	ps.advance()
	if bodyStart == ps.pos-1 {
		return nil, ps.errAt(start, ErrEmptyExpression)
	}
	kind := nLookaheadPos
	if negative {
		kind = nLookaheadNeg
	}
	return &node{kind: kind, left: body, loc: loc}, nil
}

// parseInlineModifiers handles "(?imsxu-imsxu)" (enable to the end of the
// pattern text) and "(?imsxu-imsxu:...)" (enable over the group body).
// Letters after '-' are accepted and have no effect in either form: a mode
// enabled earlier stays enabled.
func (ps *parserState) parseInlineModifiers(start int) (*node, error) {
	enable := make(map[byte]bool)
	disable := make(map[byte]bool)
	neg := false
	for {
		if ps.eof() {
			return nil, ps.errAt(start, ErrInvalidModifier)
		}
		c := ps.peek()
		switch c {
		case '-':
			neg = true
			ps.advance()
		case 'i', 'm', 's', 'x', 'u', 'q':
			ps.advance()
			if neg {
				disable[c] = true
			} else {
				enable[c] = true
			}
		case ':', ')':
			goto scanned
		default:
			return nil, ps.errAt(ps.pos, ErrInvalidModifier)
		}
	}
scanned:
	if ps.peek() == ':' {
		ps.advance()
		rangeStart := ps.pos
		body, err := ps.parseAlt(false)
		if err != nil {
			return nil, err
		}
		if ps.eof() || ps.peek() != ')' {
			return nil, ps.errAt(start, ErrMismatchedParens)
		}
		rangeEnd := ps.pos
		ps.advance()
		for m := range enable {
			ps.mods.mark(m, rangeStart, rangeEnd)
		}
		return body, nil
	}
	// "(?i)" form: active from here to the end of the pattern text, also
	// past the ')' of an enclosing group; the range does not stop at the
	// group's end.
	ps.advance() // ')'
	rangeStart := ps.pos
	for m := range enable {
		ps.mods.mark(m, rangeStart, len(ps.pattern))
	}
	for m := range disable {
		_ = m // disable letters are parsed but mark and clear nothing
	}
	return &node{kind: nEmpty}, nil
}

func (ps *parserState) tryParseMacroRef() (*node, bool, error) {
	save := ps.pos
	start := ps.pos
	ps.advance() // '{'
	nameStart := ps.pos
	for !ps.eof() && isMacroNameByte(ps.peek(), ps.pos == nameStart) {
		ps.advance()
	}
	name := ps.pattern[nameStart:ps.pos]
	if name == "" || ps.eof() || ps.peek() != '}' {
		ps.pos = save
		return nil, false, nil
	}
	ps.advance()
	repl, ok := ps.macros[name]
	if !ok {
		return nil, true, ps.errAt(start, ErrUndefinedName)
	}
	if ps.macroDepth >= MaxMacroDepth {
		return nil, true, ps.errAt(start, ErrExceedsLimits)
	}
	n, err := ps.expandMacro(repl)
	return n, true, err
}

func isMacroNameByte(c byte, first bool) bool {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' {
		return true
	}
	if !first && c >= '0' && c <= '9' {
		return true
	}
	return false
}

func (ps *parserState) expandMacro(repl string) (*node, error) {
	oldPattern, oldPos, oldBase := ps.pattern, ps.pos, ps.locBase
	ps.macroDepth++
	ps.pattern = repl
	ps.pos = 0
	ps.locBase = ps.nextSyntheticBase
	ps.nextSyntheticBase += 1 << 16

	n, err := ps.parseAlt(false)
	if err == nil && ps.pos != len(ps.pattern) {
		err = ps.errAt(0, ErrInvalidSyntax)
	}

	ps.macroDepth--
	ps.pattern, ps.pos, ps.locBase = oldPattern, oldPos, oldBase
	if err != nil {
		return nil, err
	}
	return n, nil
}
