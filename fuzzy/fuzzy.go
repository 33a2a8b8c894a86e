// Package fuzzy overlays bounded-edit matching on top of an assembled
// opcode table: it tolerates up to a fixed number of substitutions,
// insertions, and deletions while walking the same GOTO graph vm.Machine
// interprets exactly. It is grounded on the teacher's BoundedBacktracker:
// the same (state, position) visited-bitset idiom that bounds backtracking
// there bounds the edit-distance search tree here, generalized from a step
// budget to an edit budget (one more dimension, (pc, pos, edits), on the
// visited key).
package fuzzy

import (
	"github.com/coregx/coregex/opcode"
	"github.com/coregx/coregex/vm"
)

// MetaTest is the same boundary-condition callback vm.MetaTest is. Fuzzy
// matching never perturbs meta conditions -- an edit budget buys
// tolerance for the literal bytes of a pattern, not for where lines or
// words begin and end -- so a state's META words are only ever followed
// when satisfied exactly, same as an exact vm.Machine run.
type MetaTest func(m uint8, pos int) bool

// Result is a bounded-edit match: the same span vm.Match reports, plus
// the number of edits spent reaching it.
type Result struct {
	Start, End int
	Alt        uint32
	Edits      int
}

// Matcher runs bounded backtracking search over an assembled table.
type Matcher struct {
	table    []opcode.Word
	start    uint32
	maxEdits int
}

// New wraps an assembled table with an edit budget. A budget of 0 behaves
// like an exact vm.Machine (no insertion/deletion/substitution allowed).
func New(table []opcode.Word, start uint32, maxEdits int) *Matcher {
	return &Matcher{table: table, start: start, maxEdits: maxEdits}
}

type edge struct {
	lo, hi byte
	target uint32
}

// block describes one state's byte-transition graph, read once per visit
// rather than per candidate edit so the recursive search stays cheap.
type block struct {
	isMatch bool
	alt     uint32
	edges   []edge
}

func (m *Matcher) readBlock(pc uint32, meta MetaTest, pos int) block {
	var b block
	for {
		w := m.table[pc]
		switch w.Kind() {
		case opcode.KindHalt:
			return b
		case opcode.KindTake:
			b.isMatch = true
			b.alt = w.Payload24()
			pc++
		case opcode.KindRedo:
			// Negative lookahead satisfied: this block can never accept.
			b.isMatch = false
			return b
		case opcode.KindHead, opcode.KindTail:
			pc++
		case opcode.KindMeta:
			target, isLong := w.InlineTarget()
			if isLong {
				target = m.table[pc+1].Payload24()
			}
			if meta != nil && meta(w.MetaSymbol(), pos) {
				sub := m.readBlock(target, meta, pos)
				if sub.isMatch {
					b.isMatch, b.alt = true, sub.alt
				}
				b.edges = append(b.edges, sub.edges...)
			}
			if isLong {
				pc += 2
			} else {
				pc++
			}
		case opcode.KindGoto:
			lo, hi := w.GotoRange()
			target, isLong := w.InlineTarget()
			if isLong {
				target = m.table[pc+1].Payload24()
			}
			b.edges = append(b.edges, edge{lo: lo, hi: hi, target: target})
			if isLong {
				pc += 2
			} else {
				pc++
			}
		case opcode.KindGotoWide:
			lo, hi := w.GotoWideRange()
			target := m.table[pc+1].Payload24()
			b.edges = append(b.edges, edge{lo: lo, hi: hi, target: target})
			pc += 2
		case opcode.KindLong:
			pc++
		default:
			return b
		}
	}
}

type visitKey struct {
	pc, pos uint32
	edits   int
}

// search holds the per-call memo table so FindFrom's recursion doesn't
// revisit a (pc, pos, edits) triple twice, the same pruning
// BoundedBacktracker's visited bit vector provides.
type search struct {
	m       *Matcher
	input   []byte
	meta    MetaTest
	visited map[visitKey]bool
	best    Result
	found   bool
}

// FindFrom searches for the lowest-edit match anchored at input[from:],
// preferring fewer edits and, among equal edit counts, the longest span
// (the same greedy-wins-ties policy vm.Machine uses for exact matches).
func (m *Matcher) FindFrom(input []byte, from int, meta MetaTest) (Result, bool) {
	s := &search{m: m, input: input, meta: meta, visited: make(map[visitKey]bool)}
	s.walk(m.start, from, 0, from)
	return s.best, s.found
}

// Find tries successive start offsets until a bounded-edit match is found.
func (m *Matcher) Find(input []byte, meta MetaTest) (Result, bool) {
	for from := 0; from <= len(input); from++ {
		if r, ok := m.FindFrom(input, from, meta); ok {
			return r, true
		}
	}
	return Result{}, false
}

func (s *search) consider(pos int, edits int, alt uint32, start int) {
	if s.found && (edits > s.best.Edits || (edits == s.best.Edits && pos <= s.best.End)) {
		return
	}
	s.best = Result{Start: start, End: pos, Alt: alt, Edits: edits}
	s.found = true
}

func (s *search) walk(pc uint32, pos int, edits int, start int) {
	if edits > s.m.maxEdits {
		return
	}
	key := visitKey{pc: pc, pos: uint32(pos), edits: edits}
	if s.visited[key] {
		return
	}
	s.visited[key] = true

	b := s.m.readBlock(pc, s.meta, pos)
	if b.isMatch {
		s.consider(pos, edits, b.alt, start)
	}

	if pos < len(s.input) {
		c := s.input[pos]
		for _, e := range b.edges {
			if c >= e.lo && c <= e.hi {
				s.walk(e.target, pos+1, edits, start) // exact step
			} else if edits < s.m.maxEdits {
				s.walk(e.target, pos+1, edits+1, start) // substitution
			}
		}
		if edits < s.m.maxEdits {
			s.walk(pc, pos+1, edits+1, start) // insertion: extra input byte
		}
	}
	if edits < s.m.maxEdits {
		for _, e := range b.edges {
			s.walk(e.target, pos, edits+1, start) // deletion: skip a pattern byte
		}
	}
}

// Refine runs an exact vm.Machine match first and only falls back to the
// bounded-edit search when it fails, so an exact match always supersedes
// a fuzzy one at the same position (the two-pass exact-supersedes-fuzzy
// policy).
func Refine(table []opcode.Word, start uint32, maxEdits int, input []byte, meta vm.MetaTest) (Result, bool) {
	exact := vm.New(table, start)
	if match, ok := exact.Find(input, meta, nil); ok {
		return Result{Start: match.Start, End: match.End, Alt: match.Alt, Edits: 0}, true
	}
	return New(table, start, maxEdits).Find(input, MetaTest(meta))
}
