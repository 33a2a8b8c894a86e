package prefilter

import "github.com/coregx/coregex/parser"

// SelectForResult builds the best prefilter for a compiled pattern's
// position graph: it extracts a literal sequence natively from the
// parser.Result position graph (ExtractPrefixLiterals, since this
// module's AST never becomes a regexp/syntax.Regexp the teacher's
// literal.Extractor could consume) and then runs the same "pick a
// strategy, fall back if unsuitable" dispatch the teacher's engine-
// selection logic uses, extended with the bitap/PM-hash/PM-array
// predictors for patterns whose
// literal extraction yields nothing Memchr/Memmem/Teddy/Aho-Corasick can
// use.
func SelectForResult(res *parser.Result) Prefilter {
	seq := ExtractPrefixLiterals(res)
	if pf := selectPrefilter(seq, nil); pf != nil {
		return pf
	}
	if seq.Len() > 8 {
		if pf := NewAhoCorasickPrefilter(seq); pf != nil {
			return pf
		}
	}
	if pf := NewPMArrayPrefilter(seq); pf != nil {
		return pf
	}
	if pf := NewPMHashPrefilter(seq, 8); pf != nil {
		return pf
	}
	if pf := NewBitapPrefilter(seq); pf != nil {
		return pf
	}
	return nil
}
