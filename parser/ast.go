package parser

import "github.com/coregx/coregex/charset"

// nodeKind tags the small parse-tree node type used internally to drive
// the Glushkov-style firstpos/lastpos/followpos computation. The tree is
// discarded once compute() has populated the parser's accumulators; it is
// never exposed outside this package.
type nodeKind uint8

const (
	nEmpty nodeKind = iota
	nLit                // byte/meta leaf: set holds the charset, loc the source offset
	nAccept             // accept marker leaf for one top-level alternative
	nConcat
	nAlt
	nStar
	nPlus
	nOpt
	nRepeat
	nLookaheadPos // (?=X)
	nLookaheadNeg // (?!X)
)

type node struct {
	kind nodeKind

	set charset.Set // nLit
	loc uint32       // nLit, nAccept: source-text location

	left, right *node // nConcat, nAlt, nRepeat(left=body)/nStar/nPlus/nOpt/nLookahead*(left=body)

	lazy bool // nStar/nPlus/nOpt/nRepeat
	min  int  // nRepeat
	max  int  // nRepeat; -1 means unbounded

	altIndex uint32 // nAccept
}

func leaf(set charset.Set, loc uint32) *node { return &node{kind: nLit, set: set, loc: loc} }

// --- structural (position-free) analysis, used to identify which leaf
// AST nodes are lastpos members of a lookahead body, so the compute()
// pass below can bake the TICKED flag in at leaf-creation time (spec's
// Position is immutable once built; see DESIGN.md "lookahead ticking").

func astNullable(n *node) bool {
	if n == nil {
		return true
	}
	switch n.kind {
	case nEmpty, nOpt, nStar, nLookaheadPos, nLookaheadNeg:
		return true
	case nLit, nAccept:
		return false
	case nPlus:
		return astNullable(n.left)
	case nRepeat:
		return n.min == 0 || astNullable(n.left)
	case nConcat:
		return astNullable(n.left) && astNullable(n.right)
	case nAlt:
		return astNullable(n.left) || astNullable(n.right)
	}
	return false
}

func astLastLeaves(n *node) map[*node]bool {
	out := make(map[*node]bool)
	collectLast(n, out)
	return out
}

func collectLast(n *node, out map[*node]bool) {
	if n == nil {
		return
	}
	switch n.kind {
	case nLit, nAccept:
		out[n] = true
	case nStar, nPlus, nRepeat, nLookaheadPos, nLookaheadNeg:
		collectLast(n.left, out)
	case nOpt:
		collectLast(n.left, out)
	case nAlt:
		collectLast(n.left, out)
		collectLast(n.right, out)
	case nConcat:
		collectLast(n.right, out)
		if astNullable(n.right) {
			collectLast(n.left, out)
		}
	}
}
