// Package pattern wraps a precompiled regular expression behind an opaque
// handle that the match engine drives by position, enumerating every
// overlapping match length anchored at a given offset.
package pattern

import (
	"fmt"

	"github.com/dlclark/regexp2"

	"github.com/barnii77/barg/bargerr"
)

// Pattern is a precompiled regular expression leaf. The zero value is not
// usable; construct with Compile.
type Pattern struct {
	Source   string
	anchored *regexp2.Regexp
}

// Compile precompiles src, anchored at both ends so each candidate prefix
// is tested for a match spanning it exactly, which is how Matches
// enumerates overlapping hits. The end anchor matters: without it a lazy
// quantifier or ordered alternation stops at its leftmost, shortest match
// and longer valid prefixes would be dropped. The bare source is compiled
// first so an invalid pattern is reported without the wrapping noise.
func Compile(src string) (*Pattern, error) {
	if _, err := regexp2.Compile(src, regexp2.RE2); err != nil {
		return nil, bargerr.NewGrammarErrorf("invalid pattern %q: %w", src, err)
	}
	anchored, err := regexp2.Compile(`\A(?:`+src+`)\z`, regexp2.RE2)
	if err != nil {
		return nil, bargerr.NewGrammarErrorf("invalid pattern %q: %w", src, err)
	}
	return &Pattern{Source: src, anchored: anchored}, nil
}

// MustCompile is like Compile but panics on error. Intended for generated
// code and tests, where the pattern source is known to be valid.
func MustCompile(src string) *Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

// Hit is one overlapping match of a Pattern anchored at a given offset.
type Hit struct {
	Text string
	Len  int
}

// Matches enumerates every length n, from longest to shortest, such that
// the pattern matches input[pos:pos+n] in its entirety. Enumeration is
// overlapping: a pattern like "a|ab" against "ab" yields both n=2 and n=1,
// longest first, so callers can backtrack into shorter prefixes. The order
// is deterministic and never consumes past the end of input.
func (p *Pattern) Matches(input string, pos int) []Hit {
	if pos < 0 || pos > len(input) {
		return nil
	}
	rest := input[pos:]
	var hits []Hit
	for n := len(rest); n >= 0; n-- {
		cand := rest[:n]
		m, err := p.anchored.FindStringMatch(cand)
		if err != nil || m == nil {
			continue
		}
		hits = append(hits, Hit{Text: cand, Len: n})
	}
	return hits
}

func (p *Pattern) String() string {
	return fmt.Sprintf("/%s/", p.Source)
}
