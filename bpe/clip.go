package bpe

import (
	"regexp"
	"strings"
)

// CLIP's text encoder always produces exactly this many positions per
// input, padding with PAD or truncating.
const ClipContextLength = 77

const (
	ClipBOS = Rank(49406)
	ClipEOS = Rank(49407)
	ClipPAD = Rank(0)
)

var clipWhitespaceRun = regexp.MustCompile(`\s+`)

// clipWordPattern finds word/punctuation fragments without the
// trailing-space capture clipPattern itself carries, so clipNormalize
// can append exactly one space after every fragment regardless of
// what followed it (or nothing) in the source text.
var clipWordPattern = regexp.MustCompile(clipWordAlternatives)

// NewClipEncoding wraps an already-loaded open_clip vocabulary with
// the CLIP text-encoder's normalization, framing, and fixed-length
// padding behavior.
func NewClipEncoding(vocab map[string]Rank) (*BpeEncoding, error) {
	enc, err := NewBpeEncoding("clip", vocab, clipPattern, []SpecialToken{
		{Literal: "<|startoftext|>", Rank: ClipBOS},
		{Literal: "<|endoftext|>", Rank: ClipEOS},
	})
	if err != nil {
		return nil, err
	}
	enc.hooks = Hooks{
		BeforeEncode: clipNormalize,
		AfterEncode:  clipFrame,
		BeforeDecode: clipStripPadding,
	}
	return enc, nil
}

// clipNormalize lowercases and collapses whitespace runs, matching
// open_clip's SimpleTokenizer.whitespace_clean + basic_clean, then
// re-splits with the CLIP word pattern and appends a trailing space to
// every fragment. open_clip's reference bpe() marks a word boundary by
// suffixing the word's last byte with "</w>"; this vocabulary instead
// seeds word-final forms as "<byte> " (see LoadOpenCLIPVocab), so the
// literal space has to be present in the fragment text that reaches
// the merge engine, including after the last word in the input.
func clipNormalize(text string) string {
	text = strings.ToLower(text)
	text = clipWhitespaceRun.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	fragments := clipWordPattern.FindAllString(text, -1)
	var b strings.Builder
	for _, frag := range fragments {
		b.WriteString(frag)
		b.WriteByte(' ')
	}
	return b.String()
}

// clipFrame prepends BOS, appends EOS, then pads or truncates to
// exactly ClipContextLength tokens.
func clipFrame(ranks Ranks) Ranks {
	framed := make(Ranks, 0, ClipContextLength)
	framed = append(framed, ClipBOS)
	framed = append(framed, ranks...)
	framed = append(framed, ClipEOS)
	if len(framed) > ClipContextLength {
		framed = framed[:ClipContextLength]
		framed[ClipContextLength-1] = ClipEOS
		return framed
	}
	padded := make(Ranks, ClipContextLength)
	copy(padded, framed)
	for i := len(framed); i < ClipContextLength; i++ {
		padded[i] = ClipPAD
	}
	return padded
}

// clipStripPadding drops every PAD token before decode, since PAD has
// no vocabulary entry of its own distinct from rank 0's piece.
func clipStripPadding(ranks Ranks) Ranks {
	out := make(Ranks, 0, len(ranks))
	for _, r := range ranks {
		if r != ClipPAD {
			out = append(out, r)
		}
	}
	return out
}
