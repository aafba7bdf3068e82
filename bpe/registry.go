package bpe

import (
	"bytes"
	"context"
	"fmt"

	"github.com/arborcode/tokensuite/resources"
)

// registryEntry captures everything needed to construct a named
// encoding once its vocabulary bytes are available.
type registryEntry struct {
	pattern  string
	specials []SpecialToken
	isClip   bool
	resource string // resource id passed to the fetcher
	loader   func([]byte) (map[string]Rank, error)
}

func tiktokenLoader(b []byte) (map[string]Rank, error) {
	return LoadTiktokenVocab(bytes.NewReader(b))
}

func openCLIPLoader(b []byte) (map[string]Rank, error) {
	return LoadOpenCLIPVocab(bytes.NewReader(b))
}

var registry = map[string]registryEntry{
	"r50k_base": {
		pattern:  r50kPattern,
		resource: "r50k_base.tiktoken",
		loader:   tiktokenLoader,
		specials: []SpecialToken{{"<|endoftext|>", 50256}},
	},
	"p50k_base": {
		pattern:  r50kPattern,
		resource: "p50k_base.tiktoken",
		loader:   tiktokenLoader,
		specials: []SpecialToken{{"<|endoftext|>", 50256}},
	},
	"p50k_edit": {
		pattern:  r50kPattern,
		resource: "p50k_base.tiktoken",
		loader:   tiktokenLoader,
		specials: []SpecialToken{
			{"<|endoftext|>", 50256},
			{"<|fim_prefix|>", 50281},
			{"<|fim_middle|>", 50282},
			{"<|fim_suffix|>", 50283},
		},
	},
	"cl100k_base": {
		pattern:  cl100kPattern,
		resource: "cl100k_base.tiktoken",
		loader:   tiktokenLoader,
		specials: []SpecialToken{
			{"<|endoftext|>", 100257},
			{"<|fim_prefix|>", 100258},
			{"<|fim_middle|>", 100259},
			{"<|fim_suffix|>", 100260},
			{"<|endofprompt|>", 100276},
		},
	},
	"o200k_base": {
		pattern:  o200kPattern,
		resource: "o200k_base.tiktoken",
		loader:   tiktokenLoader,
		specials: []SpecialToken{
			{"<|endoftext|>", 199999},
			{"<|endofprompt|>", 200018},
		},
	},
	"o200k_harmony": {
		pattern:  o200kPattern,
		resource: "o200k_base.tiktoken",
		loader:   tiktokenLoader,
		specials: harmonySpecials(),
	},
	"clip": {
		pattern:  clipPattern,
		resource: "bpe_simple_vocab_16e6.txt.gz",
		loader:   openCLIPLoader,
		isClip:   true,
	},
}

// harmonySpecials enumerates o200k_harmony's reserved range: the two
// sequence-boundary tokens, named controls in 200002..200012, and
// filler reserved ids over the rest of 200000..201087.
func harmonySpecials() []SpecialToken {
	named := map[Rank]string{
		199998: "<|startoftext|>",
		199999: "<|endoftext|>",
		200002: "<|constrain|>",
		200003: "<|channel|>",
		200005: "<|message|>",
		200006: "<|start|>",
		200007: "<|end|>",
		200008: "<|return|>",
		200012: "<|call|>",
	}
	out := make([]SpecialToken, 0, len(named)+90)
	for r, lit := range named {
		if r < 200000 {
			out = append(out, SpecialToken{lit, r})
		}
	}
	for r := Rank(200000); r <= 201087; r++ {
		if lit, ok := named[r]; ok {
			out = append(out, SpecialToken{lit, r})
		} else {
			out = append(out, SpecialToken{fmt.Sprintf("<|reserved_%d|>", r), r})
		}
	}
	return out
}

// GetBpe constructs the named encoding, fetching its vocabulary bytes
// through resources.Fetch. name must be one of the registry keys;
// otherwise ErrUnknownEncoding is returned.
func GetBpe(ctx context.Context, name string) (*BpeEncoding, error) {
	entry, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	raw, err := resources.Fetch(ctx, entry.resource)
	if err != nil {
		return nil, fmt.Errorf("bpe: fetching %s: %w", name, err)
	}
	vocab, err := entry.loader(raw)
	if err != nil {
		return nil, err
	}
	if entry.isClip {
		return NewClipEncoding(vocab)
	}
	return NewBpeEncoding(name, vocab, entry.pattern, entry.specials)
}
