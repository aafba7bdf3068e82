package bpe

import "errors"

// Sentinel errors for the encoding kinds a caller may need to
// distinguish with errors.Is. Wrapped errors carry the offending
// detail via %w.
var (
	ErrUnknownEncoding     = errors.New("bpe: unknown encoding name")
	ErrMalformedVocabulary = errors.New("bpe: malformed vocabulary")
	ErrMalformedPattern    = errors.New("bpe: pre-tokenization pattern is not a valid global regexp")
	ErrUnknownToken        = errors.New("bpe: unknown token rank")
)
