// Package vm interprets the opcode table the opcode package assembles:
// a pointer walks GOTO/META words byte by byte, recording the most
// recent TAKE as the current match candidate, the same "table of tagged
// words, one state per block terminated by HALT" execution model spec
// §4.4 describes. Four match methods sit on top of the single
// interpreter loop (RunAt): Find (FIND), Scan (SCAN), Split (SPLIT), and
// Match (MATCH), each applying a different empty-match and span policy
// to the same walk, per §4.4's "single interpreter loop, four methods"
// design and the teacher's PikeVM leftmost-priority semantics (TAKE
// records the lowest-numbered alternative reached, mirroring PikeVM's
// thread-priority ordering).
package vm

import "github.com/coregx/coregex/opcode"

// MetaTest reports whether meta symbol m holds at byte offset pos in the
// input being scanned (begin/end of buffer or line, word boundaries,
// indent/dedent/undent events). The caller supplies this so the vm never
// needs to know how lines, words, or indentation are tracked -- that
// bookkeeping belongs to the scanning layer (vmbuffer), not the
// interpreter.
type MetaTest func(m uint8, pos int) bool

// Prefilter narrows Find/Scan's start-offset search to positions a fast
// scan says can possibly match, the same candidate/verify split the
// teacher's prefilter.Prefilter interface describes. Returning -1 means
// no candidate remains in input[from:].
type Prefilter interface {
	Find(haystack []byte, from int) int
}

// Match describes where a pattern matched within the scanned input.
type Match struct {
	Start, End int
	Alt        uint32
	// Lookaheads holds the ids of every lookahead assertion (HEAD/TAIL
	// pair) whose TAIL was reached along the accepting path -- the §4.4
	// lap[] vector, exposed here for callers that want to know which
	// assertions actually fired rather than just that the match as a
	// whole succeeded.
	Lookaheads []uint32
}

// Machine interprets a single assembled table.
type Machine struct {
	table []opcode.Word
	start uint32
}

// New wraps a table produced by opcode.Assemble.
func New(table []opcode.Word, start uint32) *Machine {
	return &Machine{table: table, start: start}
}

// RunAt executes the automaton anchored at input[from:], returning the
// longest match reachable from that exact starting position (greedy
// quantifiers naturally produce the longest match since their loop
// GOTOs are preferred over exiting -- TAKE is recorded every time it is
// reached and later TAKEs overwrite earlier ones as the scan extends).
func (m *Machine) RunAt(input []byte, from int, meta MetaTest) (Match, bool) {
	pc := m.start
	pos := from
	best := Match{}
	haveMatch := false
	var lap []uint32

	for {
		w := m.table[pc]
		switch w.Kind() {
		case opcode.KindHalt:
			return best, haveMatch

		case opcode.KindTake:
			best = Match{Start: from, End: pos, Alt: w.Payload24(), Lookaheads: append([]uint32(nil), lap...)}
			haveMatch = true
			pc++

		case opcode.KindRedo:
			// A negative lookahead body fully matched: this branch is
			// void. Treat the remainder of this state's block as dead.
			return best, haveMatch

		case opcode.KindHead:
			// Opens lookahead w.Payload24(); nothing to record until its
			// TAIL is actually reached, since a HEAD can be abandoned
			// (e.g. a GOTO in this block not taken) without the
			// assertion ever resolving.
			pc++

		case opcode.KindTail:
			lap = append(lap, w.Payload24())
			pc++

		case opcode.KindMeta:
			if meta != nil && meta(w.MetaSymbol(), pos) {
				target, isLong := w.InlineTarget()
				if isLong {
					target = m.table[pc+1].Payload24()
				}
				pc = target
				continue
			}
			_, isLong := w.InlineTarget()
			if isLong {
				pc += 2
			} else {
				pc++
			}

		case opcode.KindGoto:
			lo, hi := w.GotoRange()
			if pos < len(input) && input[pos] >= lo && input[pos] <= hi {
				target, isLong := w.InlineTarget()
				if isLong {
					target = m.table[pc+1].Payload24()
				}
				pc = target
				pos++
				continue
			}
			_, isLong := w.InlineTarget()
			if isLong {
				pc += 2
			} else {
				pc++
			}

		case opcode.KindGotoWide:
			lo, hi := w.GotoWideRange()
			if pos < len(input) && input[pos] >= lo && input[pos] <= hi {
				pc = m.table[pc+1].Payload24()
				pos++
				continue
			}
			pc += 2

		case opcode.KindLong:
			// Only ever reached by falling through a GOTO/META escape
			// pair without taking it; skip over the operand word.
			pc++

		default:
			return best, haveMatch
		}
	}
}

// Find implements FIND mode: the leftmost match anywhere in input, trying
// successive start offsets. When pf is non-nil it narrows the offsets
// tried to the positions pf reports as candidates instead of every byte
// offset -- the prefilter/verify split spec §4.5 describes.
func (m *Machine) Find(input []byte, meta MetaTest, pf Prefilter) (Match, bool) {
	from := 0
	for from <= len(input) {
		if pf != nil {
			cand := pf.Find(input, from)
			if cand < 0 {
				return Match{}, false
			}
			from = cand
		}
		if match, ok := m.RunAt(input, from, meta); ok {
			return match, true
		}
		from++
	}
	return Match{}, false
}

// Scan implements SCAN mode: every non-overlapping match across the
// whole input, left to right. An empty match advances by one byte so
// scanning a pattern that can match the empty string still terminates,
// the empty-match policy §4.4 requires of SCAN.
func (m *Machine) Scan(input []byte, meta MetaTest, pf Prefilter) []Match {
	var out []Match
	pos := 0
	for pos <= len(input) {
		match, ok := m.Find(input[pos:], meta, pf)
		if !ok {
			break
		}
		match.Start += pos
		match.End += pos
		out = append(out, match)
		if match.End > pos {
			pos = match.End
		} else {
			pos++
		}
	}
	return out
}

// Split implements SPLIT mode: the segments of input between successive
// SCAN matches, including a trailing (possibly empty) segment after the
// last match -- the trailing-EMPTY-accept behavior §4.4 names.
func (m *Machine) Split(input []byte, meta MetaTest, pf Prefilter) [][]byte {
	matches := m.Scan(input, meta, pf)
	out := make([][]byte, 0, len(matches)+1)
	pos := 0
	for _, match := range matches {
		out = append(out, input[pos:match.Start])
		pos = match.End
	}
	out = append(out, input[pos:])
	return out
}

// Match implements MATCH mode: the whole of input must match, anchored
// at both ends, per §4.4's whole-buffer requirement.
func (m *Machine) Match(input []byte, meta MetaTest) (Match, bool) {
	match, ok := m.RunAt(input, 0, meta)
	if !ok || match.End != len(input) {
		return Match{}, false
	}
	return match, true
}
