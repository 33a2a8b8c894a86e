package opcode

import (
	"errors"
	"sort"

	"github.com/coregx/coregex/charset"
	"github.com/coregx/coregex/internal/conv"
	"github.com/coregx/coregex/parser"
	"github.com/coregx/coregex/position"
)

// ErrTableTooLarge is returned when a compiled table's total word count
// would overflow the 16-bit inline target field everywhere a GOTO/META
// escape word would be needed. A production assembler would relax
// offsets over several passes (as real linkers do); this one assembles
// in a single pass and gives up rather than attempting that, which is
// adequate for the pattern sizes spec §7's ExceedsLimits already caps.
var ErrTableTooLarge = errors.New("opcode: table exceeds single-pass assembler limits")

// Assemble compiles a parser.Result's position graph directly into a flat
// Word table, performing its own subset construction over position sets:
// meta/anchor leaves
// are never pre-resolved against a runtime context here. Instead every
// state that contains an anchor position emits an explicit META word per
// meta symbol present, in charset's canonical symbol order, each jumping
// to the sub-state reached by following that symbol's continuation. The
// execution vm tests the live condition (buffer/line/indent state) and
// falls through when unsatisfied -- the "meta GOTOs in a fixed canonical
// order" scheme charset.go's doc comment describes.
//
// Returns the table and the word offset of the start state.
func Assemble(res *parser.Result) ([]Word, uint32, error) {
	b := &asmBuilder{res: res, byKey: make(map[string]uint32)}
	startID, err := b.getOrBuild(res.First)
	if err != nil {
		return nil, 0, err
	}

	// buildOps can discover new states (meta continuations, byte-range
	// targets) and append to b.states as it runs, so this must re-check
	// the slice length each iteration rather than ranging over a
	// snapshot taken at loop start.
	var ops [][]abstractOp
	for i := 0; i < len(b.states); i++ {
		ops = append(ops, b.buildOps(b.states[i]))
	}

	offsets := make([]uint32, len(b.states))
	var cursor uint32
	for i, list := range ops {
		offsets[i] = cursor
		for _, op := range list {
			cursor += op.words()
		}
		cursor++ // HALT terminates every state's block
	}
	if cursor > 0 && cursor-1 > LongTargetSentinel {
		return nil, 0, ErrTableTooLarge
	}

	table := make([]Word, 0, cursor)
	for _, list := range ops {
		for _, op := range list {
			table = append(table, op.emit(offsets)...)
		}
		table = append(table, Halt())
	}
	return table, offsets[startID], nil
}

type asmState struct {
	id       uint32
	concrete *position.Set          // non-anchor positions
	metas    map[charset.Meta]*position.Set // symbol -> raw continuation (unclosed)
}

type asmBuilder struct {
	res    *parser.Result
	states []*asmState
	byKey  map[string]uint32
}

func (b *asmBuilder) getOrBuild(raw *position.Set) (uint32, error) {
	key := stateKey(raw)
	if id, ok := b.byKey[key]; ok {
		return id, nil
	}
	id := conv.IntToUint32(len(b.states))
	st := &asmState{id: id, concrete: position.NewSet(), metas: make(map[charset.Meta]*position.Set)}
	b.states = append(b.states, st)
	b.byKey[key] = id // reserved before recursing: resolves zero-width meta self-loops

	for _, p := range raw.Positions() {
		if p.Has(position.FlagAnchor) {
			cs := b.res.CharsetAt[p.Loc()]
			for _, m := range cs.Metas() {
				s, ok := st.metas[m]
				if !ok {
					s = position.NewSet()
					st.metas[m] = s
				}
				s.AddSet(b.res.Follow.Follow(p))
			}
			continue
		}
		st.concrete.Add(p)
	}
	return id, nil
}

// abstractOp is a single pre-offset-resolution instruction.
type abstractOp struct {
	kind      opKind
	accept    uint32 // take/redo
	lookahead uint32 // head/tail
	meta      uint8  // meta symbol
	lo, hi    byte   // goto/gotowide
	hasTarget bool
	target    uint32 // destination asmState id
}

type opKind uint8

const (
	opTake opKind = iota
	opRedo
	opHead
	opTail
	opMeta
	opGoto
)

func (op abstractOp) words() uint32 {
	if op.kind == opGoto && op.lo > MaxDirectLo {
		return 2
	}
	return 1
}

func (op abstractOp) emit(offsets []uint32) []Word {
	switch op.kind {
	case opTake:
		return []Word{Take(op.accept)}
	case opRedo:
		return []Word{Redo()}
	case opHead:
		return []Word{Head(op.lookahead)}
	case opTail:
		return []Word{Tail(op.lookahead)}
	case opMeta:
		return []Word{Meta(op.meta, offsets[op.target])}
	case opGoto:
		if op.lo > MaxDirectLo {
			return []Word{GotoWide(op.lo, op.hi), Long(offsets[op.target])}
		}
		return []Word{Goto(op.lo, op.hi, offsets[op.target])}
	}
	return nil
}

// buildOps lowers one asmState into TAKE/REDO/HEAD/TAIL/META/GOTO
// abstract ops, recursively materializing the byte-transition and
// meta-continuation target states along the way.
func (b *asmBuilder) buildOps(st *asmState) []abstractOp {
	var ops []abstractOp

	hasMatch, hasRedo := false, false
	var bestAlt uint32
	var opens, closes []uint32
	for _, p := range st.concrete.Positions() {
		if p.Has(position.FlagAccept) {
			if p.Has(position.FlagNegate) {
				hasRedo = true
			} else if alt, ok := b.res.AcceptAlt[p]; ok {
				if !hasMatch || alt < bestAlt {
					bestAlt, hasMatch = alt, true
				}
			}
		}
		if ids, ok := b.res.LookaheadHead[p]; ok {
			opens = append(opens, ids...)
		}
		if !p.Has(position.FlagNegate) {
			if ids, ok := b.res.LookaheadTail[p]; ok {
				closes = append(closes, ids...)
			}
		}
	}
	if hasMatch {
		ops = append(ops, abstractOp{kind: opTake, accept: bestAlt})
	}
	if hasRedo {
		ops = append(ops, abstractOp{kind: opRedo})
	}
	for _, la := range opens {
		ops = append(ops, abstractOp{kind: opHead, lookahead: la})
	}
	for _, la := range closes {
		ops = append(ops, abstractOp{kind: opTail, lookahead: la})
	}

	var symbols []int
	for m := range st.metas {
		symbols = append(symbols, int(m))
	}
	sort.Ints(symbols)
	for _, mi := range symbols {
		m := charset.Meta(mi)
		targetID, err := b.getOrBuild(st.metas[m])
		if err != nil {
			continue
		}
		ops = append(ops, abstractOp{kind: opMeta, meta: uint8(m), target: targetID})
	}

	for _, rg := range b.byteRanges(st) {
		targetID, err := b.getOrBuild(rg.target)
		if err != nil {
			continue
		}
		ops = append(ops, abstractOp{kind: opGoto, lo: rg.lo, hi: rg.hi, target: targetID})
	}
	return ops
}

type byteRange struct {
	lo, hi byte
	target *position.Set
}

// byteRanges computes, for every byte value, the union of followpos of
// concrete (non-accept) positions whose charset contains it, then
// run-length-encodes contiguous bytes sharing an identical resulting set
// into maximal ranges.
func (b *asmBuilder) byteRanges(st *asmState) []byteRange {
	var out []byteRange
	var curKey string
	var curSet *position.Set
	var curLo byte
	open := false

	flush := func(hi byte) {
		if open && curSet.Len() > 0 {
			out = append(out, byteRange{lo: curLo, hi: hi, target: curSet})
		}
		open = false
	}

	for i := 0; i < 256; i++ {
		bb := byte(i)
		target := position.NewSet()
		for _, p := range st.concrete.Positions() {
			if p.Has(position.FlagAccept) {
				continue
			}
			cs, ok := b.res.CharsetAt[p.Loc()]
			if ok && cs.Contains(bb) {
				target.AddSet(b.res.Follow.Follow(p))
			}
		}
		key := stateKey(target)
		if open && key == curKey {
			if i == 255 {
				flush(bb)
			}
			continue
		}
		if open {
			flush(bb - 1)
		}
		if target.Len() > 0 {
			curKey, curSet, curLo, open = key, target, bb, true
			if i == 255 {
				flush(bb)
			}
		}
	}
	return out
}

func stateKey(s *position.Set) string {
	ps := append([]position.Position(nil), s.Positions()...)
	for i := 1; i < len(ps); i++ {
		v := ps[i]
		j := i - 1
		for j >= 0 && ps[j] > v {
			ps[j+1] = ps[j]
			j--
		}
		ps[j+1] = v
	}
	buf := make([]byte, 0, len(ps)*8)
	for _, p := range ps {
		buf = append(buf,
			byte(p), byte(p>>8), byte(p>>16), byte(p>>24),
			byte(p>>32), byte(p>>40), byte(p>>48), byte(p>>56))
	}
	return string(buf)
}
