// Package byteseq provides low-level byte/hex helpers. The bpe and
// unigram packages do not import it: they store and key token pieces as
// raw byte strings, and unigram parses SentencePiece's <0xHH>
// byte-fallback pieces itself.
package byteseq

import (
	"encoding/hex"
	"fmt"
)

// ToHex renders b as lowercase hex, two characters per byte.
func ToHex(b []byte) string {
	return hex.EncodeToString(b)
}

// FromHex parses a lowercase (or uppercase) hex string back into bytes.
func FromHex(s string) ([]byte, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("byteseq: malformed hex %q: %w", s, err)
	}
	return b, nil
}

// ByteFallbackPiece is the SentencePiece spelling of a byte-fallback
// piece, e.g. "<0x0A>" for a newline.
func ByteFallbackPiece(b byte) string {
	return fmt.Sprintf("<0x%02X>", b)
}
