package bpe

import (
	"fmt"
	"regexp"
)

// Go's RE2 engine has no lookaround, so the trailing "whitespace not
// followed by non-space" alternative from the reference patterns
// (`\s+(?!\S)`) is approximated the same way the teacher's own
// SPLIT_REGEX does: a no-op zero-width capture group followed by a
// plain `\s+` fallback. This is a deliberate, documented divergence,
// not an oversight (see the Open Questions section of the design
// notes) and only affects the extreme tail of runs of consecutive
// whitespace.
const noLookaheadWhitespaceTail = `\s+(\S){0}|\s+`

// r50kPattern is shared by r50k_base and p50k_base/p50k_edit.
const r50kPattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|` +
	noLookaheadWhitespaceTail

// cl100kPattern adds case-insensitive contractions (via RE2's native
// (?i:...) group, which needs no explicit-casing fallback) and short
// digit runs, and keeps runs of newlines out of the catch-all.
const cl100kPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?\p{L}+|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|` + noLookaheadWhitespaceTail

// o200kPattern is the o200k_base/o200k_harmony word pattern: an
// optional uppercase-run prefix feeding a lowercase-run suffix, plus
// the cl100k-style digit/punctuation/whitespace alternatives.
const o200kPattern = `(?i:'s|'t|'re|'ve|'m|'ll|'d)|[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]*[\p{Ll}\p{M}]+(?i:'s|'t|'re|'ve|'m|'ll|'d)?|[^\r\n\p{L}\p{N}]?[\p{Lu}\p{Lt}\p{Lm}\p{Lo}\p{M}]+[\p{Ll}\p{M}]*(?i:'s|'t|'re|'ve|'m|'ll|'d)?|\p{N}{1,3}| ?[^\s\p{L}\p{N}]+[\r\n]*|\s*[\r\n]+|` + noLookaheadWhitespaceTail

// clipWordAlternatives splits letter/digit/punctuation runs and
// contractions; lowercasing happens externally (see clipNormalize in
// clip.go).
const clipWordAlternatives = `'s|'t|'re|'ve|'m|'ll|'d|[\p{L}]+|[\p{N}]|[^\s\p{L}\p{N}]+`

// clipPattern adds an optional trailing-space capture to every
// alternative, so that re-encoding the word-per-word-space text
// clipNormalize produces recovers each word together with the single
// space clipNormalize appended after it — the fragment CLIP's merge
// table expects in place of a "</w>" end-of-word marker.
const clipPattern = `(?:` + clipWordAlternatives + `) ?`

// compilePattern wraps regexp.Compile with the MalformedPattern
// error kind and verifies the result is safe to use with
// FindAllStringIndex (i.e. compiles at all; RE2 patterns are always
// implicitly global).
func compilePattern(pat string) (*regexp.Regexp, error) {
	re, err := regexp.Compile(pat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPattern, err)
	}
	return re, nil
}
