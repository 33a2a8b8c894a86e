package prefilter

import (
	"github.com/coregx/coregex/literal"
	"github.com/coregx/coregex/parser"
	"github.com/coregx/coregex/position"
)

// maxPrefixDepth bounds how many leading bytes ExtractPrefixLiterals will
// walk before giving up on a thread; long literal chains cost nothing to
// extract but a prefilter gains little past a handful of bytes.
const maxPrefixDepth = 16

// maxPrefixBranches bounds how many alternation branches a single position
// may fan out into before the extractor abandons that thread: an
// alternation of hundreds of single-char branches produces a useless
// prefilter anyway (selectPrefilter's own 2-8 literal window will reject it
// once seen, but stopping early avoids walking an exponential set of
// threads in the meantime).
const maxPrefixBranches = 8

type prefixThread struct {
	pos   position.Position
	bytes []byte
}

// ExtractPrefixLiterals walks a parser.Result's position graph from its
// firstpos set, following exact single-byte leaves through followpos, to
// build the literal sequence a prefilter can search for. This plays the
// role literal.Extractor plays for a stdlib regexp/syntax.Regexp, but
// operates directly on the Glushkov position graph this module's parser
// produces, since that graph was never translated into a syntax.Regexp
// AST. A byte leaf whose charset is a class, range, or meta symbol ends
// its thread; an alternation of byte leaves fans a thread out into one
// branch per leaf, each tracked independently so prefilter.Builder sees
// the same "set of alternative literals" literal.Seq it expects from the
// stdlib extractor.
func ExtractPrefixLiterals(res *parser.Result) *literal.Seq {
	if res == nil || res.First == nil || res.First.Len() == 0 {
		return literal.NewSeq()
	}

	threads := make([]prefixThread, 0, res.First.Len())
	for _, p := range res.First.Positions() {
		threads = append(threads, prefixThread{pos: p})
	}

	var done []literal.Literal
	for depth := 0; depth < maxPrefixDepth && len(threads) > 0; depth++ {
		var next []prefixThread
		for _, th := range threads {
			b, ok := exactByte(res, th.pos)
			if !ok {
				if len(th.bytes) > 0 {
					done = append(done, literal.NewLiteral(th.bytes, false))
				}
				continue
			}
			bytes := append(append([]byte(nil), th.bytes...), b)

			follow := res.Follow.Follow(th.pos)
			if follow == nil || follow.Len() == 0 {
				done = append(done, literal.NewLiteral(bytes, false))
				continue
			}
			if follow.Len() > maxPrefixBranches {
				done = append(done, literal.NewLiteral(bytes, false))
				continue
			}
			for _, q := range follow.Positions() {
				next = append(next, prefixThread{pos: q, bytes: bytes})
			}
		}
		threads = next
	}
	for _, th := range threads {
		if len(th.bytes) > 0 {
			done = append(done, literal.NewLiteral(th.bytes, false))
		}
	}

	return literal.NewSeq(done...)
}

// exactByte reports the single byte a leaf position matches, or false if
// the leaf is an anchor/meta position or its charset covers more than one
// byte value.
func exactByte(res *parser.Result, p position.Position) (byte, bool) {
	if p.Has(position.FlagAnchor) {
		return 0, false
	}
	cs, ok := res.CharsetAt[p.Loc()]
	if !ok || cs.HasMeta() {
		return 0, false
	}
	return cs.Single()
}
