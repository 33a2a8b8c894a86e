package prefilter

import "github.com/coregx/coregex/literal"

// bitapMaxWindow bounds the bitap window to the width of the bit_ mask
// word (spec.md §4.5's "4-byte windows", generalized here to any window
// up to 32 bytes so a longer common prefix still narrows the search).
const bitapMaxWindow = 32

// BitapPrefilter implements the pattern_min<k> strategy spec.md §4.5
// names for patterns with no usable literal prefix but a small first-byte
// set: bit k of bit_[b] is set iff byte b can appear at position k of some
// accepted prefix; a window at haystack position p is a candidate iff the
// cumulative AND of bit_[haystack[p+k]] for k in 0..window-1 is nonzero.
// No teacher file implements bitap -- this is written directly from
// spec.md's bit-parallel shift-and-mask description.
type BitapPrefilter struct {
	bit    [256]uint32
	window int
}

// NewBitapPrefilter builds a bitap table from a literal sequence's
// prefixes. Returns nil if the sequence is empty, matching the other
// prefilter constructors' "nothing to filter on" convention.
func NewBitapPrefilter(seq *literal.Seq) *BitapPrefilter {
	if seq.IsEmpty() {
		return nil
	}
	window := 0
	for i := 0; i < seq.Len(); i++ {
		if l := seq.Get(i).Len(); l > window {
			window = l
		}
	}
	if window > bitapMaxWindow {
		window = bitapMaxWindow
	}
	if window == 0 {
		return nil
	}

	p := &BitapPrefilter{window: window}
	for i := 0; i < seq.Len(); i++ {
		lit := seq.Get(i)
		n := len(lit.Bytes)
		if n > window {
			n = window
		}
		for k := 0; k < n; k++ {
			p.bit[lit.Bytes[k]] |= 1 << uint(k)
		}
	}
	return p
}

// Find returns the first position at or after start whose window's
// cumulative AND is nonzero.
func (p *BitapPrefilter) Find(haystack []byte, start int) int {
	if start < 0 {
		start = 0
	}
	full := uint32(1)<<uint(p.window) - 1
	for pos := start; pos+p.window <= len(haystack); pos++ {
		mask := full
		for k := 0; k < p.window; k++ {
			mask &= p.bit[haystack[pos+k]]
			if mask == 0 {
				break
			}
		}
		if mask != 0 {
			return pos
		}
	}
	return -1
}

// IsComplete is always false: a bitap window hit is a byte-position
// consistency check, not a verified match.
func (p *BitapPrefilter) IsComplete() bool { return false }

// LiteralLen returns 0: bitap does not report a fixed match length.
func (p *BitapPrefilter) LiteralLen() int { return 0 }

// HeapBytes reports the fixed bit_ table size.
func (p *BitapPrefilter) HeapBytes() int { return len(p.bit) * 4 }
