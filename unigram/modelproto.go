package unigram

import (
	"fmt"

	"github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"google.golang.org/protobuf/proto"
)

// pieceRecord is the subset of a SentencePiece ModelProto piece this
// package cares about.
type pieceRecord struct {
	text  string
	score float64
	kind  sentencepiece.ModelProto_SentencePiece_Type
}

// decodedModel is the flattened form of a SentencePiece ModelProto
// needed to build a Model: pieces in index order (index == token id),
// plus the trainer/normalizer settings that have defaults elsewhere
// in the .proto but aren't always populated by every exported model.
type decodedModel struct {
	pieces                 []pieceRecord
	unkID, bosID, eosID    int
	addDummyPrefix         bool
	removeExtraWhitespaces bool
}

// decodeModelProto unmarshals a serialized SentencePiece ModelProto
// and extracts the fields the Unigram segmenter needs. This is the
// boundary between the wire format (owned by the generated
// sentencepiece package and google.golang.org/protobuf) and this
// package's own Model representation.
func decodeModelProto(raw []byte) (*decodedModel, error) {
	var mp sentencepiece.ModelProto
	if err := proto.Unmarshal(raw, &mp); err != nil {
		return nil, fmt.Errorf("unigram: unmarshaling ModelProto: %w", err)
	}

	dm := &decodedModel{
		unkID: 0, bosID: 1, eosID: 2,
		addDummyPrefix:         true,
		removeExtraWhitespaces: true,
	}
	if ts := mp.GetTrainerSpec(); ts != nil {
		if ts.UnkId != nil {
			dm.unkID = int(ts.GetUnkId())
		}
		if ts.BosId != nil {
			dm.bosID = int(ts.GetBosId())
		}
		if ts.EosId != nil {
			dm.eosID = int(ts.GetEosId())
		}
	}
	if ns := mp.GetNormalizerSpec(); ns != nil {
		if ns.AddDummyPrefix != nil {
			dm.addDummyPrefix = ns.GetAddDummyPrefix()
		}
		if ns.RemoveExtraWhitespaces != nil {
			dm.removeExtraWhitespaces = ns.GetRemoveExtraWhitespaces()
		}
	}

	dm.pieces = make([]pieceRecord, len(mp.GetPieces()))
	for i, p := range mp.GetPieces() {
		dm.pieces[i] = pieceRecord{
			text:  p.GetPiece(),
			score: float64(p.GetScore()),
			kind:  p.GetType(),
		}
	}
	return dm, nil
}
