// Package urtypes implements the crypto-seed UR type specified in
// [BCR-2020-006].
//
// [BCR-2020-006]: https://github.com/BlockchainCommons/Research/blob/master/papers/bcr-2020-006-urtypes.md
package urtypes

import (
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

const (
	SeedType  = "crypto-seed"
	BytesType = "bytes"
)

const tagSeed = 300

// Seed is a crypto-seed. Payload is the seed entropy, which for bip39
// seeds is the mnemonic entropy.
type Seed struct {
	Payload []byte `cbor:"1,keyasint"`
}

var encMode cbor.EncMode
var decMode cbor.DecMode

func init() {
	tags := cbor.NewTagSet()
	// Tagged seeds are accepted, but never produced.
	if err := tags.Add(cbor.TagOptions{DecTag: cbor.DecTagOptional}, reflect.TypeOf(Seed{}), tagSeed); err != nil {
		panic(err)
	}
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	encMode = em
	dm, err := cbor.DecOptions{}.DecModeWithTags(tags)
	if err != nil {
		panic(err)
	}
	decMode = dm
}

// Encode returns the CBOR encoding of s.
func (s Seed) Encode() []byte {
	enc, err := encMode.Marshal(s)
	if err != nil {
		// Seeds always encode.
		panic(err)
	}
	return enc
}

// EncodeBytes returns the CBOR encoding of a bytes UR message.
func EncodeBytes(b []byte) []byte {
	enc, err := encMode.Marshal(b)
	if err != nil {
		panic(err)
	}
	return enc
}

// Parse decodes a UR message of type typ.
func Parse(typ string, enc []byte) (any, error) {
	switch typ {
	case SeedType:
		var s Seed
		if err := decMode.Unmarshal(enc, &s); err != nil {
			return nil, fmt.Errorf("ur: %s: %w", typ, err)
		}
		if len(s.Payload) == 0 {
			return nil, fmt.Errorf("ur: %s: empty payload", typ)
		}
		return s, nil
	case BytesType:
		var content []byte
		if err := decMode.Unmarshal(enc, &content); err != nil {
			return nil, fmt.Errorf("ur: bytes decoding failed: %w", err)
		}
		return content, nil
	default:
		return nil, fmt.Errorf("ur: unknown type %q", typ)
	}
}
