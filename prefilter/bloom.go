package prefilter

import "github.com/coregx/coregex/literal"

// pmHashSize is the HASH modulus spec.md §4.5's PM-hash rolling hash maps
// into; a power of two lets the mod be a mask.
const pmHashSize = 2048
const pmHashMask = pmHashSize - 1

// pmHashMaxDepth bounds how many prefix bytes PM-hash predicts over (one
// bit per depth in each pmh_ slot).
const pmHashMaxDepth = 16

// PMHashPrefilter implements the PM-hash bloom predictor spec.md §4.5
// defines: h_0 = b_0; h_{i+1} = ((h_i << 3) ^ b_{i+1}) mod HASH, and bit i
// of pmh_[h_i] is set iff some accepted pattern has that rolling hash at
// depth i of its prefix. No teacher file implements a predictor like this;
// grounded on prefilter/tracker.go's "track several candidate prefilters
// and pick the best at construction time" idiom, generalized here to
// picking the prediction depth instead of picking among prefilters.
type PMHashPrefilter struct {
	pmh   [pmHashSize]uint32
	depth int
}

// NewPMHashPrefilter builds a PM-hash table from a literal sequence's
// prefixes, predicting up to depth bytes (capped at pmHashMaxDepth).
func NewPMHashPrefilter(seq *literal.Seq, depth int) *PMHashPrefilter {
	if seq.IsEmpty() || depth <= 0 {
		return nil
	}
	if depth > pmHashMaxDepth {
		depth = pmHashMaxDepth
	}

	p := &PMHashPrefilter{depth: depth}
	for i := 0; i < seq.Len(); i++ {
		bs := seq.Get(i).Bytes
		if len(bs) == 0 {
			continue
		}
		h := uint32(bs[0])
		p.pmh[h&pmHashMask] |= 1
		for d := 1; d < depth && d < len(bs); d++ {
			h = (h << 3) ^ uint32(bs[d])
			p.pmh[h&pmHashMask] |= 1 << uint(d)
		}
	}
	return p
}

// Find returns the first haystack position where the rolling hash over
// haystack[pos:pos+depth] is consistent, at every depth, with some
// accepted pattern's prefix hash at that depth.
func (p *PMHashPrefilter) Find(haystack []byte, start int) int {
	if start < 0 {
		start = 0
	}
pos:
	for pos := start; pos+p.depth <= len(haystack); pos++ {
		h := uint32(haystack[pos])
		if p.pmh[h&pmHashMask]&1 == 0 {
			continue
		}
		for d := 1; d < p.depth; d++ {
			h = (h << 3) ^ uint32(haystack[pos+d])
			if p.pmh[h&pmHashMask]&(1<<uint(d)) == 0 {
				continue pos
			}
		}
		return pos
	}
	return -1
}

func (p *PMHashPrefilter) IsComplete() bool { return false }
func (p *PMHashPrefilter) LiteralLen() int  { return 0 }
func (p *PMHashPrefilter) HeapBytes() int   { return len(p.pmh) * 4 }

// pmArrayDepth is fixed at 4, per spec.md §4.5's "PM-array (predict 4
// bytes)".
const pmArrayDepth = 4

// pmArraySlice holds the 2-bit mask for each of the four predicted
// depths, matching spec.md's 0xc0/0x30/0x0c/0x03 slice layout.
var pmArraySlice = [pmArrayDepth]byte{0xc0, 0x30, 0x0c, 0x03}

// PMArrayPrefilter implements the PM-array bloom predictor: the same
// rolling hash PM-hash uses, but packed four depths to a byte (two bits
// each) instead of one bitset per depth -- a smaller, fixed-width
// predictor for exactly a 4-byte window. Grounded the same way as
// PMHashPrefilter, on prefilter/tracker.go's best-predictor-at-
// construction-time idiom.
type PMArrayPrefilter struct {
	pma [256]byte
}

// NewPMArrayPrefilter builds a PM-array table from a literal sequence's
// prefixes. Patterns shorter than 4 bytes only populate the depths they
// cover.
func NewPMArrayPrefilter(seq *literal.Seq) *PMArrayPrefilter {
	if seq.IsEmpty() {
		return nil
	}
	p := &PMArrayPrefilter{}
	any := false
	for i := 0; i < seq.Len(); i++ {
		bs := seq.Get(i).Bytes
		if len(bs) == 0 {
			continue
		}
		any = true
		h := uint32(bs[0])
		p.pma[byte(h)] |= pmArraySlice[0]
		for d := 1; d < pmArrayDepth && d < len(bs); d++ {
			h = (h << 3) ^ uint32(bs[d])
			p.pma[byte(h)] |= pmArraySlice[d]
		}
	}
	if !any {
		return nil
	}
	return p
}

// Find returns the first position whose 4-byte rolling hash has both bits
// of all four 2-bit slices set, one slice per depth. A pattern shorter
// than 4 bytes does not populate every slice and so is not found on its
// own.
func (p *PMArrayPrefilter) Find(haystack []byte, start int) int {
	if start < 0 {
		start = 0
	}
pos:
	for pos := start; pos+pmArrayDepth <= len(haystack); pos++ {
		h := uint32(haystack[pos])
		if p.pma[byte(h)]&pmArraySlice[0] != pmArraySlice[0] {
			continue
		}
		for d := 1; d < pmArrayDepth; d++ {
			h = (h << 3) ^ uint32(haystack[pos+d])
			if p.pma[byte(h)]&pmArraySlice[d] != pmArraySlice[d] {
				continue pos
			}
		}
		return pos
	}
	return -1
}

func (p *PMArrayPrefilter) IsComplete() bool { return false }
func (p *PMArrayPrefilter) LiteralLen() int  { return 0 }
func (p *PMArrayPrefilter) HeapBytes() int   { return len(p.pma) }
