// Package coregex provides a high-performance regex engine for Go.
//
// coregex compiles a pattern through its own recursive-descent parser and
// Glushkov position-graph construction, assembles the result into a
// tagged-word opcode table, and runs that table through a single
// interpreter loop supporting scan/find/split/match modes, lookahead, and
// a bounded-edit fuzzy overlay. Candidate positions are narrowed first by
// a compile-time-selected prefilter (SIMD memchr/memmem/Teddy,
// Aho-Corasick, or a bitap/bloom predictor when no usable literal prefix
// exists).
//
// Basic usage:
//
//	// Compile a pattern
//	re, err := coregex.Compile(`\d+`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Find first match
//	match := re.Find([]byte("hello 123 world"))
//	fmt.Println(string(match)) // "123"
//
//	// Check if matches
//	if re.Match([]byte("hello 123")) {
//	    fmt.Println("matched!")
//	}
//
// Advanced usage:
//
//	// Custom configuration
//	config := coregex.DefaultConfig()
//	config.MaxEdits = 1 // tolerate one substitution/insertion/deletion
//	re, err := coregex.CompileWithConfig(`hello`, config)
//
// Limitations:
//   - No capture groups: the position-graph/opcode pipeline tracks only
//     the overall match span and lookahead firing, not per-group spans.
package coregex

import (
	"github.com/coregx/coregex/fuzzy"
	"github.com/coregx/coregex/opcode"
	"github.com/coregx/coregex/parser"
	"github.com/coregx/coregex/prefilter"
	"github.com/coregx/coregex/vm"
	"github.com/coregx/coregex/vmbuffer"
)

// Config tunes pattern compilation, mirroring the teacher's meta.Config
// role but scoped to this engine's own knobs: dialect feature gates and
// the fuzzy-overlay edit budget.
type Config struct {
	// Dialect selects which escape/meta vocabulary the parser accepts.
	// Zero value is the empty dialect; use DefaultConfig for the
	// full-featured one.
	Dialect parser.Dialect

	// Flags are the boolean mode bits (i/m/s/x/u/q) applied to the whole
	// pattern, the same modifiers ParseFlags decodes from a flag-letter
	// string.
	Flags parser.Flags

	// Macros expands {name} references during parsing when
	// Dialect.AllowMacros is set.
	Macros map[string]string

	// MaxEdits is the bounded-edit budget FindFuzzy/MatchFuzzy apply when
	// an exact match fails. Zero disables fuzzy matching (exact only).
	MaxEdits int
}

// DefaultConfig returns the default configuration for compilation: the
// full-featured dialect and no fuzzy tolerance.
//
// Example:
//
//	config := coregex.DefaultConfig()
//	config.MaxEdits = 2
//	re, _ := coregex.CompileWithConfig("pattern", config)
func DefaultConfig() Config {
	return Config{Dialect: parser.DefaultDialect()}
}

// Pattern is a compiled regular expression: the assembled opcode table
// plus the prefilter and fuzzy overlay selected for it at compile time.
// A Pattern is immutable after Compile and safe for concurrent use, the
// same split the teacher's Regex/meta.Engine pair makes.
type Pattern struct {
	source   string
	flags    parser.Flags
	table    []opcode.Word
	start    uint32
	pf       prefilter.Prefilter
	maxEdits int
}

// CompilePattern parses and assembles pattern under the given flags and
// config, selecting a prefilter from the resulting position graph.
func CompilePattern(pattern string, flags parser.Flags, config Config) (*Pattern, error) {
	res, err := parser.Parse(pattern, flags, config.Macros, config.Dialect)
	if err != nil {
		return nil, err
	}
	table, start, err := opcode.Assemble(res)
	if err != nil {
		return nil, err
	}
	return &Pattern{
		source:   pattern,
		flags:    flags,
		table:    table,
		start:    start,
		pf:       prefilter.SelectForResult(res),
		maxEdits: config.MaxEdits,
	}, nil
}

// NewMatcher returns a Matcher bound to this Pattern. A Matcher holds no
// input-specific state until a scan/find/split/match call supplies a
// buffer, so one Pattern can back many concurrent Matchers.
func (p *Pattern) NewMatcher() *Matcher {
	return &Matcher{pattern: p}
}

// Matcher runs a Pattern's opcode table against input. Unlike Pattern, a
// Matcher is not safe for concurrent use -- matching one is free to mutate
// its working buffer, mirroring the teacher's "Regex is safe to use
// concurrently... except for methods that modify internal state" split.
type Matcher struct {
	pattern *Pattern
}

func (m *Matcher) machine() *vm.Machine { return vm.New(m.pattern.table, m.pattern.start) }

func metaTestFor(input []byte) vm.MetaTest {
	buf := vmbuffer.NewBuffer()
	for _, c := range input {
		buf.Push(c)
	}
	return buf.MetaTest(len(input))
}

// Find implements FIND mode: the leftmost match anywhere in input.
func (m *Matcher) Find(input []byte) (vm.Match, bool) {
	return m.machine().Find(input, metaTestFor(input), m.pattern.pf)
}

// Scan implements SCAN mode: every non-overlapping match, left to right.
func (m *Matcher) Scan(input []byte) []vm.Match {
	return m.machine().Scan(input, metaTestFor(input), m.pattern.pf)
}

// Split implements SPLIT mode: the segments of input between matches.
func (m *Matcher) Split(input []byte) [][]byte {
	return m.machine().Split(input, metaTestFor(input), m.pattern.pf)
}

// Match implements MATCH mode: input must match in its entirety.
func (m *Matcher) Match(input []byte) (vm.Match, bool) {
	return m.machine().Match(input, metaTestFor(input))
}

// FindFuzzy runs an exact Find first and only falls back to the bounded-
// edit overlay when it fails, per the two-pass exact-supersedes-fuzzy
// policy fuzzy.Refine implements. Returns ok=false if neither an exact
// nor a within-budget fuzzy match exists.
func (m *Matcher) FindFuzzy(input []byte) (fuzzy.Result, bool) {
	return fuzzy.Refine(m.pattern.table, m.pattern.start, m.pattern.maxEdits, input, metaTestFor(input))
}

// Regex is a convenience wrapper over Pattern/Matcher matching the
// teacher's top-level Regex API shape, for callers who don't need the
// lower-level Matcher state machine.
//
// Example:
//
//	re := coregex.MustCompile(`hello`)
//	if re.Match([]byte("hello world")) {
//	    println("matched!")
//	}
type Regex struct {
	pattern *Pattern
}

// Compile compiles a regular expression pattern using DefaultConfig and
// no mode flags. Returns an error if the pattern is invalid.
//
// Example:
//
//	re, err := coregex.Compile(`\d{3}-\d{4}`)
//	if err != nil {
//	    log.Fatal(err)
//	}
func Compile(pattern string) (*Regex, error) {
	return CompileWithConfig(pattern, DefaultConfig())
}

// MustCompile compiles a regular expression pattern and panics if it
// fails. Useful for patterns known to be valid at init time.
//
// Example:
//
//	var emailRegex = coregex.MustCompile(`[a-z]+@[a-z]+\.[a-z]+`)
func MustCompile(pattern string) *Regex {
	re, err := Compile(pattern)
	if err != nil {
		panic("coregex: Compile(" + pattern + "): " + err.Error())
	}
	return re
}

// CompileWithConfig compiles a pattern with custom configuration.
//
// Example:
//
//	config := coregex.DefaultConfig()
//	config.MaxEdits = 1
//	re, err := coregex.CompileWithConfig("(a|b|c)*", config)
func CompileWithConfig(pattern string, config Config) (*Regex, error) {
	p, err := CompilePattern(pattern, config.Flags, config)
	if err != nil {
		return nil, err
	}
	return &Regex{pattern: p}, nil
}

// Match reports whether the byte slice b contains any match of the
// pattern.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	if re.Match([]byte("hello 123")) {
//	    println("contains digits")
//	}
func (r *Regex) Match(b []byte) bool {
	_, ok := r.pattern.NewMatcher().Find(b)
	return ok
}

// MatchString reports whether the string s contains any match of the
// pattern.
func (r *Regex) MatchString(s string) bool {
	return r.Match([]byte(s))
}

// Find returns a slice holding the text of the leftmost match in b.
// Returns nil if no match is found.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	match := re.Find([]byte("age: 42"))
//	println(string(match)) // "42"
func (r *Regex) Find(b []byte) []byte {
	match, ok := r.pattern.NewMatcher().Find(b)
	if !ok {
		return nil
	}
	return b[match.Start:match.End]
}

// FindString returns a string holding the text of the leftmost match in
// s. Returns empty string if no match is found.
func (r *Regex) FindString(s string) string {
	match := r.Find([]byte(s))
	if match == nil {
		return ""
	}
	return string(match)
}

// FindIndex returns a two-element slice of integers defining the location
// of the leftmost match in b. The match is at b[loc[0]:loc[1]]. Returns
// nil if no match is found.
func (r *Regex) FindIndex(b []byte) []int {
	match, ok := r.pattern.NewMatcher().Find(b)
	if !ok {
		return nil
	}
	return []int{match.Start, match.End}
}

// FindStringIndex returns a two-element slice of integers defining the
// location of the leftmost match in s.
func (r *Regex) FindStringIndex(s string) []int {
	return r.FindIndex([]byte(s))
}

// FindAll returns a slice of all successive non-overlapping matches of
// the pattern in b. If n > 0, it returns at most n matches. If n <= 0, it
// returns all matches.
//
// Example:
//
//	re := coregex.MustCompile(`\d+`)
//	matches := re.FindAll([]byte("1 2 3"), -1)
//	// matches = [[]byte("1"), []byte("2"), []byte("3")]
func (r *Regex) FindAll(b []byte, n int) [][]byte {
	if n == 0 {
		return nil
	}
	all := r.pattern.NewMatcher().Scan(b)
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	if len(all) == 0 {
		return nil
	}
	matches := make([][]byte, len(all))
	for i, m := range all {
		matches[i] = b[m.Start:m.End]
	}
	return matches
}

// FindAllString returns a slice of all successive matches of the pattern
// in s.
func (r *Regex) FindAllString(s string, n int) []string {
	matches := r.FindAll([]byte(s), n)
	if matches == nil {
		return nil
	}
	result := make([]string, len(matches))
	for i, m := range matches {
		result[i] = string(m)
	}
	return result
}

// Split slices s into substrings separated by the pattern, returning the
// segments between successive matches, including a trailing segment
// after the last match.
func (r *Regex) Split(b []byte) [][]byte {
	return r.pattern.NewMatcher().Split(b)
}

// MatchWhole reports whether input matches the pattern in its entirety.
func (r *Regex) MatchWhole(b []byte) bool {
	_, ok := r.pattern.NewMatcher().Match(b)
	return ok
}

// String returns the source text used to compile the regular expression.
func (r *Regex) String() string {
	return r.pattern.source
}
