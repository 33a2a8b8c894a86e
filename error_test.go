package coregex

import (
	"errors"
	"strings"
	"testing"

	"github.com/coregx/coregex/parser"
)

// TestCompileRejectsInvalidSyntax verifies Compile surfaces a *parser.Error
// for malformed patterns instead of panicking or silently accepting them.
func TestCompileRejectsInvalidSyntax(t *testing.T) {
	patterns := []string{
		"[invalid",
		`\`,
		"(abc",
		"*abc",
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			_, err := Compile(pattern)
			if err == nil {
				t.Fatalf("Compile(%q) expected error, got nil", pattern)
			}
			var perr *parser.Error
			if !errors.As(err, &perr) {
				t.Fatalf("Compile(%q) error %v is not a *parser.Error", pattern, err)
			}
		})
	}
}

// TestCompileAcceptsValidSyntax is the mirror check: patterns this
// dialect's parser documents as valid must compile cleanly.
func TestCompileAcceptsValidSyntax(t *testing.T) {
	patterns := []string{
		"abc",
		"a|b",
		"a*b+c?",
		"[a-z]+",
		"^anchored$",
		"foo(?=bar)",
		"foo(?!bar)",
	}

	for _, pattern := range patterns {
		t.Run(pattern, func(t *testing.T) {
			if _, err := Compile(pattern); err != nil {
				t.Fatalf("Compile(%q): unexpected error %v", pattern, err)
			}
		})
	}
}

// TestMustCompilePanicsOnInvalidPattern verifies MustCompile panics, and
// that the panic message names the offending pattern.
func TestMustCompilePanicsOnInvalidPattern(t *testing.T) {
	pattern := "[invalid"

	var panicMsg string
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicMsg = r.(string)
			}
		}()
		MustCompile(pattern)
	}()

	if panicMsg == "" {
		t.Fatal("expected MustCompile to panic on invalid pattern")
	}
	if !strings.Contains(panicMsg, pattern) {
		t.Errorf("panic message should mention the pattern, got: %s", panicMsg)
	}
}

// TestCompileWithConfigPropagatesParserErrors verifies CompileWithConfig
// surfaces the same error channel as Compile for a pattern the configured
// dialect rejects (lookahead disabled, lookahead used anyway).
func TestCompileWithConfigPropagatesParserErrors(t *testing.T) {
	config := DefaultConfig()
	config.Dialect.AllowLookahead = false

	_, err := CompileWithConfig("foo(?=bar)", config)
	if err == nil {
		t.Fatal("expected an error when lookahead is used but not allowed by the dialect")
	}
}
