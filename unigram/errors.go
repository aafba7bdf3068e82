package unigram

import "errors"

var (
	ErrMalformedVocabulary = errors.New("unigram: malformed vocabulary")
	ErrUnknownToken        = errors.New("unigram: unknown token id")
)
