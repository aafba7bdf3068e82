package bpe

import (
	"bytes"
	"compress/gzip"
	"testing"

	"github.com/stretchr/testify/assert"
)

func tinyClipVocab() map[string]Rank {
	v := map[string]Rank{}
	for b := 0; b < 256; b++ {
		v[string([]byte{byte(b)})] = Rank(b + 3000)
	}
	v["a"] = 1
	v["cat"] = 2
	v["photo"] = 3
	v["of"] = 4
	// Space-suffixed, word-final forms: what clipNormalize's appended
	// trailing space actually needs to resolve against.
	v["a "] = 320
	v["photo "] = 1125
	v["of "] = 539
	v["cat "] = 2368
	return v
}

func TestClipAlwaysPadsToContextLength(t *testing.T) {
	enc, err := NewClipEncoding(tinyClipVocab())
	assert.NoError(t, err)

	for _, text := range []string{"", "a", "a photo of a cat", "   \t\n  "} {
		ranks := enc.Encode(text, nil)
		assert.Len(t, ranks, ClipContextLength, "text=%q", text)
		assert.Equal(t, ClipBOS, ranks[0])
	}
}

func TestClipTruncatesLongInputButKeepsEOS(t *testing.T) {
	vocab := tinyClipVocab()
	vocab["x"] = 5
	enc, err := NewClipEncoding(vocab)
	assert.NoError(t, err)

	longText := ""
	for i := 0; i < 200; i++ {
		longText += "x "
	}
	ranks := enc.Encode(longText, nil)
	assert.Len(t, ranks, ClipContextLength)
	assert.Equal(t, ClipEOS, ranks[ClipContextLength-1])
}

func TestClipDecodeStripsPadding(t *testing.T) {
	enc, err := NewClipEncoding(tinyClipVocab())
	assert.NoError(t, err)

	ranks := enc.Encode("a cat", nil)
	text, err := enc.Decode(ranks)
	assert.NoError(t, err)
	assert.NotContains(t, text, "\x00")
}

func TestClipNormalizeLowercasesAndCollapsesWhitespace(t *testing.T) {
	assert.Equal(t, "a photo ", clipNormalize("  A   Photo\t\n"))
}

func TestClipEncodeUsesSpaceSuffixedWordFinalForms(t *testing.T) {
	enc, err := NewClipEncoding(tinyClipVocab())
	assert.NoError(t, err)

	ranks := enc.Encode("a photo of a cat", nil)
	want := Ranks{ClipBOS, 320, 1125, 539, 320, 2368, ClipEOS}
	assert.Equal(t, want, ranks[:len(want)])
	for _, r := range ranks[len(want):] {
		assert.Equal(t, ClipPAD, r)
	}
}

func TestClipEncodeOpenCLIPVocabRoundTrip(t *testing.T) {
	var raw bytes.Buffer
	gz := gzip.NewWriter(&raw)
	gz.Write([]byte("#version: header line\n"))
	gz.Close()

	vocab, err := LoadOpenCLIPVocab(&raw)
	assert.NoError(t, err)

	enc, err := NewClipEncoding(vocab)
	assert.NoError(t, err)

	_, order := bytesToUnicode()
	rankOf := func(b byte) Rank {
		for i, ob := range order {
			if ob == b {
				return Rank(256 + i)
			}
		}
		t.Fatalf("byte %d not found in bytesToUnicode order", b)
		return 0
	}

	ranks := enc.Encode("a b", nil)
	want := Ranks{ClipBOS, rankOf('a'), rankOf('b'), ClipEOS}
	assert.Equal(t, want, ranks[:len(want)])
	for _, r := range ranks[len(want):] {
		assert.Equal(t, ClipPAD, r)
	}
}

func TestClipEncodeOpenCLIPWordFinalMergeRoundTrip(t *testing.T) {
	var raw bytes.Buffer
	gz := gzip.NewWriter(&raw)
	gz.Write([]byte("#version: header line\n"))
	gz.Write([]byte(gpt2Encode("p") + " " + gpt2Encode("h") + "\n"))
	gz.Write([]byte(gpt2Encode("ph") + " " + gpt2Encode("o") + "\n"))
	gz.Write([]byte(gpt2Encode("pho") + " " + gpt2Encode("t") + "\n"))
	gz.Write([]byte(gpt2Encode("phot") + " " + gpt2Encode("o") + "</w>\n"))
	gz.Close()

	vocab, err := LoadOpenCLIPVocab(&raw)
	assert.NoError(t, err)

	wantRank, ok := vocab["photo "]
	assert.True(t, ok)

	enc, err := NewClipEncoding(vocab)
	assert.NoError(t, err)

	ranks := enc.Encode("photo", nil)
	want := Ranks{ClipBOS, wantRank, ClipEOS}
	assert.Equal(t, want, ranks[:len(want)])
	for _, r := range ranks[len(want):] {
		assert.Equal(t, ClipPAD, r)
	}
}
