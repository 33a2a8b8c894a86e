// Aho-Corasick wrapper for literal alternations too large for Teddy's
// 2-8 pattern window: one automaton pass in place of one SIMD scan per
// literal.
package prefilter

import (
	"github.com/coregx/ahocorasick"
	"github.com/coregx/coregex/literal"
)

// AhoCorasickPrefilter narrows candidate positions for alternations of
// many literals (more than Teddy's 8-pattern window) by matching all of
// them in a single automaton pass instead of one SIMD scan per literal.
type AhoCorasickPrefilter struct {
	auto *ahocorasick.Automaton
}

// NewAhoCorasickPrefilter builds an automaton over seq's literals.
// Returns nil if the sequence is empty or the automaton fails to build
// (the caller falls back to running the full engine unfiltered).
func NewAhoCorasickPrefilter(seq *literal.Seq) *AhoCorasickPrefilter {
	if seq.IsEmpty() {
		return nil
	}
	builder := ahocorasick.NewBuilder()
	for i := 0; i < seq.Len(); i++ {
		builder.AddPattern(seq.Get(i).Bytes)
	}
	auto, err := builder.Build()
	if err != nil {
		return nil
	}
	return &AhoCorasickPrefilter{auto: auto}
}

// Find returns the start of the first literal match at or after start.
func (p *AhoCorasickPrefilter) Find(haystack []byte, start int) int {
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1
	}
	return m.Start
}

// FindMatch implements MatchFinder: Aho-Corasick already knows the exact
// span of the literal it matched, so callers needing an end offset don't
// have to re-derive it from the pattern.
func (p *AhoCorasickPrefilter) FindMatch(haystack []byte, start int) (int, int) {
	m := p.auto.Find(haystack, start)
	if m == nil {
		return -1, -1
	}
	return m.Start, m.End
}

// IsComplete is false: a literal hit narrows candidates but the caller's
// pattern may have context beyond the matched literal (anchors, trailing
// quantifiers) that still needs verification.
func (p *AhoCorasickPrefilter) IsComplete() bool { return false }

func (p *AhoCorasickPrefilter) LiteralLen() int { return 0 }

func (p *AhoCorasickPrefilter) HeapBytes() int { return 0 }
