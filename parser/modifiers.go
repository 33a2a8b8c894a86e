package parser

import "sort"

// modeRange is a half-open [Start,End) source-text interval over which a
// mode letter is active.
type modeRange struct {
	Start, End int
}

// ModifierRanges tracks, for each mode letter in {i,m,s,x,u,q}, the set of
// disjoint source-text ranges over which that mode is enabled (spec §3:
// "enable and disable ranges for the same mode are disjoint").
type ModifierRanges struct {
	ranges map[byte][]modeRange
}

func newModifierRanges() *ModifierRanges {
	return &ModifierRanges{ranges: make(map[byte][]modeRange)}
}

// mark records that mode is enabled over [start,end).
func (m *ModifierRanges) mark(mode byte, start, end int) {
	if end <= start {
		return
	}
	m.ranges[mode] = append(m.ranges[mode], modeRange{start, end})
}

// finalize sorts and merges overlapping ranges per mode, so Active scans a
// short, ordered, non-overlapping list.
func (m *ModifierRanges) finalize() {
	for mode, rs := range m.ranges {
		sort.Slice(rs, func(i, j int) bool { return rs[i].Start < rs[j].Start })
		merged := rs[:0]
		for _, r := range rs {
			if len(merged) > 0 && r.Start <= merged[len(merged)-1].End {
				if r.End > merged[len(merged)-1].End {
					merged[len(merged)-1].End = r.End
				}
				continue
			}
			merged = append(merged, r)
		}
		m.ranges[mode] = merged
	}
}

// Active reports whether mode is enabled at source offset loc.
func (m *ModifierRanges) Active(mode byte, loc int) bool {
	rs := m.ranges[mode]
	// Linear scan: regex-sized range lists are tiny; no need for a binary
	// search data structure here.
	for _, r := range rs {
		if loc >= r.Start && loc < r.End {
			return true
		}
	}
	return false
}
