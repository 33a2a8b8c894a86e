// Package vmbuffer feeds the vm package a stream of bytes to scan and
// answers its meta-boundary queries (line/word/indent conditions). The
// ring-buffer arithmetic -- a fixed backing array addressed through
// wrapping insert/scan positions that are advanced one byte at a time --
// is the same shape as the teacher's slidingWindowDict window in
// WoozyMasta-lzo/sliding_window.go, adapted here to grow instead of stay
// a fixed compression window, since a regex scan has no upper bound on
// how far back a lookbehind assertion might need to peek.
package vmbuffer

import "github.com/coregx/coregex/charset"

const initialCapacity = 256

// Buffer is a growable ring of consumed bytes plus the line/column/word
// bookkeeping needed to answer MetaTest queries for the vm package.
type Buffer struct {
	ring []byte
	// insertPos is the next write slot, wrapping mod len(ring); the
	// oldest valid byte sits filled slots behind it.
	insertPos int
	filled    int // number of valid bytes currently in ring

	base int // absolute offset of ring[0] (bytes dropped off the front)

	line, col int
	indent    []int // stack of currently-open indent columns

	atBOB bool
}

// NewBuffer returns an empty Buffer positioned at the start of a stream.
func NewBuffer() *Buffer {
	return &Buffer{
		ring:   make([]byte, initialCapacity),
		indent: []int{0},
		atBOB:  true,
	}
}

// Push appends the next byte of input, growing the ring (doubling
// capacity, the same growth policy sparse.go uses) when full.
func (b *Buffer) Push(c byte) {
	if b.filled == len(b.ring) {
		b.grow()
	}
	b.ring[b.insertPos] = c
	b.insertPos = (b.insertPos + 1) % len(b.ring)
	b.filled++

	if c == '\n' {
		b.line++
		b.col = 0
	} else {
		b.col++
	}
}

func (b *Buffer) grow() {
	bigger := make([]byte, len(b.ring)*2)
	// Unwrap the ring into the front of the bigger buffer so insertPos
	// can simply become b.filled afterwards.
	start := (b.insertPos - b.filled + len(b.ring)) % len(b.ring)
	n := copy(bigger, b.ring[start:])
	n += copy(bigger[n:], b.ring[:start])
	b.ring = bigger
	b.insertPos = n
}

// ByteAt returns the byte at absolute stream offset pos and whether it is
// still retained in the ring (callers must not ask about bytes dropped
// off the front via Drop).
func (b *Buffer) ByteAt(pos int) (byte, bool) {
	rel := pos - b.base
	if rel < 0 || rel >= b.filled {
		return 0, false
	}
	idx := (b.insertPos - b.filled + rel + len(b.ring)) % len(b.ring)
	return b.ring[idx], true
}

// Drop discards all retained bytes before absolute offset pos, the
// teacher's removeNode bookkeeping reduced to its essential effect: free
// what a bounded lookbehind will never need again.
func (b *Buffer) Drop(pos int) {
	rel := pos - b.base
	if rel <= 0 {
		return
	}
	if rel > b.filled {
		rel = b.filled
	}
	b.filled -= rel
	b.base += rel
}

// Len reports the number of bytes currently retained.
func (b *Buffer) Len() int { return b.filled }

// MarkIndent records a new indent level opening at the current column
// (caller invokes this upon recognizing a line whose body starts deeper
// than the enclosing block).
func (b *Buffer) MarkIndent(col int) { b.indent = append(b.indent, col) }

// PopIndent closes the innermost indent level.
func (b *Buffer) PopIndent() {
	if len(b.indent) > 1 {
		b.indent = b.indent[:len(b.indent)-1]
	}
}

// IndentDepth reports how many indent levels are currently open.
func (b *Buffer) IndentDepth() int { return len(b.indent) }

func isWordByte(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// MetaTest builds a vm.MetaTest closure bound to this buffer's state.
// total is the overall input length (0 or unknown streams pass -1 and
// MetaEOB/MetaEOL at the tail are resolved conservatively as unsatisfied
// until the caller confirms end-of-stream).
func (b *Buffer) MetaTest(total int) func(m uint8, pos int) bool {
	return func(m uint8, pos int) bool {
		switch charset.Meta(m) {
		case charset.MetaBOB:
			return pos == 0
		case charset.MetaEOB:
			return total >= 0 && pos == total
		case charset.MetaBOL:
			if pos == 0 {
				return true
			}
			prev, ok := b.ByteAt(pos - 1)
			return ok && prev == '\n'
		case charset.MetaEOL:
			if total >= 0 && pos == total {
				return true
			}
			cur, ok := b.ByteAt(pos)
			return ok && cur == '\n'
		case charset.MetaWBB, charset.MetaBWB, charset.MetaBWE:
			before := pos > 0 && wordAt(b, pos-1)
			after := wordAt(b, pos)
			return after && !before
		case charset.MetaWBE, charset.MetaEWB, charset.MetaEWE:
			before := pos > 0 && wordAt(b, pos-1)
			after := wordAt(b, pos)
			return before && !after
		case charset.MetaNWB, charset.MetaNWE:
			before := pos > 0 && wordAt(b, pos-1)
			after := wordAt(b, pos)
			return before == after
		case charset.MetaIND:
			return b.col > b.indent[len(b.indent)-1]
		case charset.MetaDED:
			return len(b.indent) > 1 && b.col < b.indent[len(b.indent)-1]
		case charset.MetaUND:
			return b.col == 0
		}
		return false
	}
}

func wordAt(b *Buffer, pos int) bool {
	c, ok := b.ByteAt(pos)
	return ok && isWordByte(c)
}
