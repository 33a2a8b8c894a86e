package parser

import "github.com/coregx/coregex/position"

// compute runs the McNaughton-Yamada/Glushkov construction bottom-up over
// the small parse tree built by parseAlt, populating ps.follow,
// ps.charsetAt, ps.acceptAlt, ps.lazyBody/ps.lazyExit, and
// ps.laHead/ps.laTail as a side effect, and returning the firstpos/
// lastpos/nullable triple for n.
//
// iter is the iteration tag to stamp onto leaf positions created directly
// under n (distinct values distinguish the copies a bounded {n,m} repeat
// mints from the same AST node -- see computeRepeat). lazy is the active
// laziness id to stamp onto them, or 0 outside any lazy quantifier.
func (ps *parserState) compute(n *node, iter uint16, lazy uint8) piece {
	if n == nil {
		return piece{first: position.NewSet(), last: position.NewSet(), nullable: true}
	}
	switch n.kind {
	case nEmpty:
		return piece{first: position.NewSet(), last: position.NewSet(), nullable: true}

	case nLit:
		p := ps.makeLeaf(n, iter, lazy, 0)
		ps.charsetAt[p.Loc()] = n.set
		s := position.NewSet()
		s.Add(p)
		return piece{first: s, last: s.Clone(), nullable: false}

	case nAccept:
		p := ps.makeLeaf(n, iter, lazy, position.FlagAccept)
		ps.acceptAlt[p] = n.altIndex
		s := position.NewSet()
		s.Add(p)
		return piece{first: s, last: s.Clone(), nullable: false}

	case nConcat:
		return ps.computeConcat(n, iter, lazy)

	case nAlt:
		l := ps.compute(n.left, iter, lazy)
		r := ps.compute(n.right, iter, lazy)
		first := l.first.Clone()
		first.AddSet(r.first)
		last := l.last.Clone()
		last.AddSet(r.last)
		return piece{first: first, last: last, nullable: l.nullable || r.nullable}

	case nStar:
		return ps.computeStar(n, iter, lazy)
	case nPlus:
		return ps.computePlus(n, iter, lazy)
	case nOpt:
		return ps.computeOpt(n, iter, lazy)
	case nRepeat:
		return ps.computeRepeat(n, iter, lazy)
	case nLookaheadPos:
		return ps.computeLookaheadPos(n, iter, lazy)
	case nLookaheadNeg:
		return ps.computeLookaheadNeg(n, iter, lazy)
	}
	return piece{first: position.NewSet(), last: position.NewSet(), nullable: true}
}

// makeLeaf builds the Position for leaf node n, tagging FlagAnchor for
// pure-meta leaves (no byte members) and FlagTicked when n sits in the
// lastpos set of the lookahead body currently being computed (the
// tickStack top, populated by computeLookaheadPos via the structural
// astLastLeaves pass in ast.go -- baked in here because Position is
// immutable once built).
func (ps *parserState) makeLeaf(n *node, iter uint16, lazy uint8, extraFlags uint8) position.Position {
	flags := extraFlags
	if n.set.HasMeta() && len(n.set.Ranges()) == 0 {
		flags |= position.FlagAnchor
	}
	if top := ps.tickTop(); top != nil && top[n] {
		flags |= position.FlagTicked
	}
	return position.New(n.loc, iter, lazy, flags)
}

func (ps *parserState) tickTop() map[*node]bool {
	if len(ps.tickStack) == 0 {
		return nil
	}
	return ps.tickStack[len(ps.tickStack)-1]
}

func (ps *parserState) nextIter() uint16 {
	ps.iterCounter++
	return ps.iterCounter
}

// concatMerge is the standard Glushkov concatenation rule: every lastpos
// of L gets R's firstpos appended to its followpos, and the combined
// first/last/nullable fold the usual way.
func (ps *parserState) concatMerge(l, r piece) piece {
	for _, p := range l.last.Positions() {
		ps.follow.AddSet(p, r.first)
	}
	first := l.first.Clone()
	if l.nullable {
		first.AddSet(r.first)
	}
	last := r.last.Clone()
	if r.nullable {
		last.AddSet(l.last)
	}
	return piece{first: first, last: last, nullable: l.nullable && r.nullable}
}

func (ps *parserState) computeConcat(n *node, iter uint16, lazy uint8) piece {
	l := ps.compute(n.left, iter, lazy)
	r := ps.compute(n.right, iter, lazy)
	if l.lazyID != 0 {
		ps.lazyExit[l.lazyID] = r.first.Clone()
	}
	merged := ps.concatMerge(l, r)
	merged.lazyID = r.lazyID
	return merged
}

// resolveLazyID assigns a fresh laziness id when n is a lazy quantifier,
// else passes the enclosing id through unchanged (a lazy quantifier
// nested inside another's body still belongs to its own id).
func (ps *parserState) resolveLazyID(isLazy bool, enclosing uint8) uint8 {
	if !isLazy {
		return enclosing
	}
	ps.lazyCounter++
	return ps.lazyCounter
}

func (ps *parserState) computeStar(n *node, iter uint16, lazy uint8) piece {
	id := ps.resolveLazyID(n.lazy, lazy)
	body := ps.compute(n.left, iter, id)
	for _, p := range body.last.Positions() {
		ps.follow.AddSet(p, body.first)
	}
	pc := piece{first: body.first.Clone(), last: body.last.Clone(), nullable: true}
	if n.lazy {
		ps.lazyBody[id] = body.first.Clone()
		pc.lazyID = id
	}
	return pc
}

func (ps *parserState) computePlus(n *node, iter uint16, lazy uint8) piece {
	id := ps.resolveLazyID(n.lazy, lazy)
	body := ps.compute(n.left, iter, id)
	for _, p := range body.last.Positions() {
		ps.follow.AddSet(p, body.first)
	}
	pc := piece{first: body.first.Clone(), last: body.last.Clone(), nullable: body.nullable}
	if n.lazy {
		ps.lazyBody[id] = body.first.Clone()
		pc.lazyID = id
	}
	return pc
}

func (ps *parserState) computeOpt(n *node, iter uint16, lazy uint8) piece {
	id := ps.resolveLazyID(n.lazy, lazy)
	body := ps.compute(n.left, iter, id)
	pc := piece{first: body.first.Clone(), last: body.last.Clone(), nullable: true}
	if n.lazy {
		ps.lazyBody[id] = body.first.Clone()
		pc.lazyID = id
	}
	return pc
}

// computeRepeat expands a bounded {min,max} (or unbounded {min,}) by
// calling compute() on the SAME AST node n.left repeatedly with a fresh
// iter tag each time (rather than deep-cloning the subtree), chaining the
// resulting pieces with the ordinary concatMerge fold. Copies beyond min
// are marked nullable (the "may skip" copies); an unbounded tail copy
// additionally gets a self-loop, matching how computeStar closes a loop.
func (ps *parserState) computeRepeat(n *node, iter uint16, lazy uint8) piece {
	id := ps.resolveLazyID(n.lazy, lazy)

	var chain *piece
	var bodyFirst *position.Set
	extend := func(cp piece) {
		if bodyFirst == nil {
			bodyFirst = cp.first.Clone()
		}
		if chain == nil {
			c := cp
			chain = &c
			return
		}
		m := ps.concatMerge(*chain, cp)
		chain = &m
	}

	for i := 0; i < n.min; i++ {
		extend(ps.compute(n.left, ps.nextIter(), id))
	}
	switch {
	case n.max < 0:
		cp := ps.compute(n.left, ps.nextIter(), id)
		for _, p := range cp.last.Positions() {
			ps.follow.AddSet(p, cp.first)
		}
		cp.nullable = true
		extend(cp)
	default:
		for i := n.min; i < n.max; i++ {
			cp := ps.compute(n.left, ps.nextIter(), id)
			cp.nullable = true
			extend(cp)
		}
	}

	if chain == nil {
		// {0,0}: degenerates to the empty pattern.
		return piece{first: position.NewSet(), last: position.NewSet(), nullable: true}
	}
	result := *chain
	if n.lazy {
		ps.lazyBody[id] = bodyFirst
		result.lazyID = id
	}
	return result
}

// computeLookaheadPos handles (?=X): X's positions are explored in
// parallel with whatever follows, without consuming input. astLastLeaves
// precomputes X's lastpos leaves structurally so makeLeaf can bake
// FlagTicked into them as they're created; laHead/laTail then record
// where the lookahead opens and closes for the opcode/vm layers. Returning
// last=empty/nullable=true is what lets the *enclosing* concatMerge wire
// the preceding position's lastpos straight through to the continuation,
// since a lookahead consumes nothing.
func (ps *parserState) computeLookaheadPos(n *node, iter uint16, lazy uint8) piece {
	ps.lookaheadCounter++
	id := ps.lookaheadCounter

	ps.tickStack = append(ps.tickStack, astLastLeaves(n.left))
	body := ps.compute(n.left, iter, lazy)
	ps.tickStack = ps.tickStack[:len(ps.tickStack)-1]

	for _, p := range body.first.Positions() {
		ps.laHead[p] = append(ps.laHead[p], id)
	}
	for _, p := range body.last.Positions() {
		ps.laTail[p] = append(ps.laTail[p], id)
	}
	return piece{first: body.first.Clone(), last: position.NewSet(), nullable: true}
}

// computeLookaheadNeg handles (?!X): X is computed normally (no ticking --
// negation uses a REDO splice instead of a TICKED tail), then a synthetic
// FlagAccept|FlagNegate marker position is wired to follow every lastpos
// of X. Reaching that marker tells the vm layer to redo/fail the branch
// that entered the lookahead, rather than to continue.
func (ps *parserState) computeLookaheadNeg(n *node, iter uint16, lazy uint8) piece {
	ps.lookaheadCounter++
	id := ps.lookaheadCounter

	body := ps.compute(n.left, iter, lazy)
	redo := position.New(n.loc, iter, lazy, position.FlagAccept|position.FlagNegate)
	ps.follow.AddSet(redo, position.NewSet()) // keep the marker present in the follow domain
	for _, p := range body.last.Positions() {
		ps.follow.Add(p, redo)
	}
	ps.laTail[redo] = append(ps.laTail[redo], id)
	for _, p := range body.first.Positions() {
		ps.laHead[p] = append(ps.laHead[p], id)
	}
	return piece{first: body.first.Clone(), last: position.NewSet(), nullable: true}
}
