// Package parser implements the regex-string → position-graph parser of
// spec §4.1: a hand-written recursive-descent parser over four mutually
// recursive productions (alternation, concatenation, quantified atom,
// atom) that builds firstpos/lastpos/nullable, a followpos map, a
// Lazypos sequence, modifier ranges, and a lookahead map directly (via
// the classic McNaughton-Yamada/Glushkov construction), without ever
// materializing a separate AST outside this package.
//
// regexp/syntax (the teacher's parser of choice) is not reused here: it
// has no vocabulary for \i/\j/\k indent metas, {macro} expansion, or this
// engine's configurable escape dialect, so a from-scratch parser is
// grounded directly on spec §4.1's production grammar instead.
package parser

import (
	"strconv"

	"github.com/coregx/coregex/charset"
	"github.com/coregx/coregex/position"
)

// MaxPatternLength bounds regex source length (spec §7: exceeds_length).
const MaxPatternLength = 1 << 16

// MaxMacroDepth bounds recursive macro expansion.
const MaxMacroDepth = 32

// piece is the per-node McNaughton-Yamada/Glushkov result: firstpos,
// lastpos, nullable, and the lazy id of a directly lazy quantifier.
type piece struct {
	first    *position.Set
	last     *position.Set
	nullable bool

	// lazyID is nonzero when this piece is the direct result of a lazy
	// star/plus/opt/repeat node, so the enclosing concat step can resolve
	// LazyExit once the following piece's firstpos is known.
	lazyID uint8
}

// Result is everything downstream components (opcode, prefilter) need.
type Result struct {
	First *position.Set
	Last  *position.Set

	Follow    position.FollowMap
	CharsetAt map[uint32]charset.Set // leaf Loc() -> its charset (bytes and/or meta bits)
	AcceptAlt map[position.Position]uint32

	Lazypos []position.Position

	// LazyBody/LazyExit record the data for lazy-vs-greedy resolution
	// (spec §4.2 step 3): LazyBody[id] is the loop body's firstpos (drop
	// candidates), LazyExit[id] is the firstpos of what follows the
	// quantifier (keep candidates). No other package in this module
	// reads these two maps.
	LazyBody map[uint8]*position.Set
	LazyExit map[uint8]*position.Set

	// Lookahead head/tail indices (spec §4.1's "lookahead map"), keyed by
	// the participating leaf Position, each mapping to the lookahead ids
	// it opens (head) or closes (tail: FlagTicked positions for (?=...),
	// the REDO marker position for (?!...)).
	LookaheadHead map[position.Position][]uint32
	LookaheadTail map[position.Position][]uint32
	NumLookaheads uint32

	NumAlternatives uint32
	Modifiers       *ModifierRanges
	Flags           Flags
}

// parserState holds the mutable state threaded through the four
// productions and the compute() pass.
type parserState struct {
	original string
	dialect  Dialect
	flags    Flags
	macros   map[string]string

	pattern string // current text being scanned (swapped during macro expansion)
	pos     int
	locBase int // added to pos to form a leaf's Loc(); bumped per macro expansion
	nextSyntheticBase int

	macroDepth int

	altCounter       uint32
	lazyCounter      uint8
	lookaheadCounter uint32
	iterCounter      uint16

	follow    position.FollowMap
	charsetAt map[uint32]charset.Set
	acceptAlt map[position.Position]uint32
	lazyBody  map[uint8]*position.Set
	lazyExit  map[uint8]*position.Set
	laHead    map[position.Position][]uint32
	laTail    map[position.Position][]uint32

	mods *ModifierRanges

	tickStack []map[*node]bool
}

// Parse parses pattern under the given flags, macro table, and dialect,
// returning the position graph (spec §4.1's output).
func Parse(pattern string, flags Flags, macros map[string]string, dialect Dialect) (*Result, error) {
	if len(pattern) == 0 {
		return nil, newError(pattern, 0, ErrEmptyExpression)
	}
	if len(pattern) > MaxPatternLength {
		return nil, newError(pattern, len(pattern), ErrExceedsLength)
	}

	ps := &parserState{
		original:          pattern,
		dialect:           dialect,
		flags:             flags,
		macros:            macros,
		pattern:           pattern,
		pos:               0,
		nextSyntheticBase: 1 << 24,
		follow:            make(position.FollowMap),
		charsetAt:         make(map[uint32]charset.Set),
		acceptAlt:         make(map[position.Position]uint32),
		lazyBody:          make(map[uint8]*position.Set),
		lazyExit:          make(map[uint8]*position.Set),
		laHead:            make(map[position.Position][]uint32),
		laTail:            make(map[position.Position][]uint32),
		mods:              newModifierRanges(),
	}

	if flags.QuoteLiteral {
		return ps.parseQuoted()
	}

	ast, err := ps.parseAlt(true)
	if err != nil {
		return nil, err
	}
	if ps.pos != len(ps.pattern) {
		// Leftover input means an unmatched ')' was hit at top level.
		return nil, newError(ps.original, ps.pos, ErrMismatchedParens)
	}
	if ps.altCounter == 0 {
		return nil, newError(pattern, 0, ErrEmptyExpression)
	}

	pc := ps.compute(ast, 0, 0)
	ps.mods.finalize()

	return &Result{
		First:           pc.first,
		Last:            pc.last,
		Follow:          ps.follow,
		CharsetAt:       ps.charsetAt,
		AcceptAlt:       ps.acceptAlt,
		Lazypos:         ps.collectLazypos(pc),
		LazyBody:        ps.lazyBody,
		LazyExit:        ps.lazyExit,
		LookaheadHead:   ps.laHead,
		LookaheadTail:   ps.laTail,
		NumLookaheads:   ps.lookaheadCounter,
		NumAlternatives: ps.altCounter,
		Modifiers:       ps.mods,
		Flags:           flags,
	}, nil
}

// parseQuoted handles the 'q' flag (spec §6 option letter 'q'): the whole
// pattern is a literal string, one leaf per byte.
func (ps *parserState) parseQuoted() (*Result, error) {
	ps.altCounter = 1
	var chain *node
	for i := 0; i < len(ps.pattern); i++ {
		l := leaf(charset.FromByte(ps.pattern[i]), uint32(i))
		if chain == nil {
			chain = l
		} else {
			chain = &node{kind: nConcat, left: chain, right: l}
		}
	}
	acc := &node{kind: nAccept, loc: uint32(len(ps.pattern)), altIndex: 1}
	if chain == nil {
		chain = acc
	} else {
		chain = &node{kind: nConcat, left: chain, right: acc}
	}
	pc := ps.compute(chain, 0, 0)
	ps.mods.finalize()
	return &Result{
		First: pc.first, Last: pc.last, Follow: ps.follow, CharsetAt: ps.charsetAt,
		AcceptAlt: ps.acceptAlt, LazyBody: ps.lazyBody, LazyExit: ps.lazyExit,
		LookaheadHead: ps.laHead, LookaheadTail: ps.laTail,
		NumAlternatives: 1, Modifiers: ps.mods, Flags: ps.flags,
	}, nil
}

func (ps *parserState) collectLazypos(pc piece) []position.Position {
	// Lazypos is every position touched by the parse that carries a
	// nonzero Lazy() tag, ordered by laziness id (spec §4.1: "ordered by
	// laziness index"). We recover them from the follow map's domain plus
	// first/last, which together cover every leaf created.
	seen := make(map[position.Position]bool)
	var all []position.Position
	add := func(p position.Position) {
		if !seen[p] {
			seen[p] = true
			all = append(all, p)
		}
	}
	for p := range ps.follow {
		add(p)
	}
	for _, p := range pc.first.Positions() {
		add(p)
	}
	for _, p := range pc.last.Positions() {
		add(p)
	}
	var lazy []position.Position
	for _, p := range all {
		if p.Lazy() != 0 {
			lazy = append(lazy, p)
		}
	}
	// Stable-ish ordering by laziness id, then by Loc for determinism.
	for i := 1; i < len(lazy); i++ {
		for j := i; j > 0; j-- {
			a, b := lazy[j-1], lazy[j]
			if a.Lazy() > b.Lazy() || (a.Lazy() == b.Lazy() && a.Loc() > b.Loc()) {
				lazy[j-1], lazy[j] = lazy[j], lazy[j-1]
			} else {
				break
			}
		}
	}
	return lazy
}

// --- low-level scanning helpers ---

func (ps *parserState) eof() bool { return ps.pos >= len(ps.pattern) }

func (ps *parserState) peek() byte {
	if ps.eof() {
		return 0
	}
	return ps.pattern[ps.pos]
}

func (ps *parserState) peekAt(off int) (byte, bool) {
	i := ps.pos + off
	if i < 0 || i >= len(ps.pattern) {
		return 0, false
	}
	return ps.pattern[i], true
}

func (ps *parserState) peekOK() (byte, bool) {
	if ps.eof() {
		return 0, false
	}
	return ps.pattern[ps.pos], true
}

func (ps *parserState) advance() byte {
	c := ps.pattern[ps.pos]
	ps.pos++
	return c
}

func (ps *parserState) loc() uint32 { return uint32(ps.locBase + ps.pos) }

func (ps *parserState) errAt(offset int, kind ErrorKind) error {
	return newError(ps.original, offset, kind)
}

// --- grammar: parse1 alternation ---

func (ps *parserState) parseAlt(top bool) (*node, error) {
	left, err := ps.parseConcat()
	if err != nil {
		return nil, err
	}
	if top {
		left = ps.spliceAccept(left)
	}
	for !ps.eof() && ps.peek() == '|' {
		ps.advance()
		right, err := ps.parseConcat()
		if err != nil {
			return nil, err
		}
		if top {
			right = ps.spliceAccept(right)
		}
		left = &node{kind: nAlt, left: left, right: right}
	}
	return left, nil
}

func (ps *parserState) spliceAccept(body *node) *node {
	ps.altCounter++
	acc := &node{kind: nAccept, loc: ps.loc(), altIndex: ps.altCounter}
	return &node{kind: nConcat, left: body, right: acc}
}

// --- grammar: parse2 concatenation ---

func (ps *parserState) parseConcat() (*node, error) {
	var result *node
	for {
		c, ok := ps.peekOK()
		if !ok || c == '|' || c == ')' {
			break
		}
		atom, err := ps.parseQuant()
		if err != nil {
			return nil, err
		}
		if result == nil {
			result = atom
		} else {
			result = &node{kind: nConcat, left: result, right: atom}
		}
	}
	if result == nil {
		result = &node{kind: nEmpty}
	}
	return result, nil
}

// --- grammar: parse3 quantified atom ---

func (ps *parserState) parseQuant() (*node, error) {
	atom, err := ps.parseAtom()
	if err != nil {
		return nil, err
	}
	for {
		c, ok := ps.peekOK()
		if !ok {
			break
		}
		switch c {
		case '*', '+', '?':
			ps.advance()
			lazy := false
			if !ps.eof() && ps.peek() == '?' {
				ps.advance()
				lazy = true
			}
			switch c {
			case '*':
				atom = &node{kind: nStar, left: atom, lazy: lazy}
			case '+':
				atom = &node{kind: nPlus, left: atom, lazy: lazy}
			case '?':
				atom = &node{kind: nOpt, left: atom, lazy: lazy}
			}
			continue
		case '{':
			save := ps.pos
			min, max, consumed, err2 := ps.tryParseRepeatRange()
			if !consumed {
				ps.pos = save
				return atom, nil
			}
			if err2 != nil {
				return nil, err2
			}
			lazy := false
			if !ps.eof() && ps.peek() == '?' {
				ps.advance()
				lazy = true
			}
			atom = &node{kind: nRepeat, left: atom, min: min, max: max, lazy: lazy}
			continue
		}
		break
	}
	return atom, nil
}

// tryParseRepeatRange parses "{n}", "{n,}", "{n,m}" starting at '{'.
// Returns consumed=false, with ps.pos reset to the '{', if the text does
// not look like a repeat range, so the caller can fall back to treating
// '{' as a macro reference or a literal.
func (ps *parserState) tryParseRepeatRange() (min, max int, consumed bool, err error) {
	start := ps.pos
	ps.advance() // '{'
	digits1 := ps.scanDigits()
	if digits1 == "" {
		ps.pos = start
		return 0, 0, false, nil
	}
	n, convErr := strconv.Atoi(digits1)
	if convErr != nil {
		ps.pos = start
		return 0, 0, false, nil
	}
	if ps.eof() {
		ps.pos = start
		return 0, 0, false, nil
	}
	switch ps.peek() {
	case '}':
		ps.advance()
		return n, n, true, nil
	case ',':
		ps.advance()
		digits2 := ps.scanDigits()
		if ps.eof() || ps.peek() != '}' {
			ps.pos = start
			return 0, 0, false, nil
		}
		ps.advance()
		if digits2 == "" {
			return n, -1, true, nil
		}
		m, convErr2 := strconv.Atoi(digits2)
		if convErr2 != nil {
			return 0, 0, true, ps.errAt(start, ErrInvalidRepeat)
		}
		if m < n {
			return 0, 0, true, ps.errAt(start, ErrInvalidRepeat)
		}
		return n, m, true, nil
	default:
		ps.pos = start
		return 0, 0, false, nil
	}
}

func (ps *parserState) scanDigits() string {
	start := ps.pos
	for !ps.eof() && ps.peek() >= '0' && ps.peek() <= '9' {
		ps.advance()
	}
	return ps.pattern[start:ps.pos]
}
