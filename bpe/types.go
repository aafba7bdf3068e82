package bpe

// Rank identifies a vocabulary entry. For tiktoken-style encodings the
// rank doubles as merge priority: lower ranks merge first.
type Rank uint32

// Ranks is a sequence of token ids, the output of Encode and the input
// to Decode.
type Ranks []Rank

const rankSize = 4
