// Package seedqr encodes and decodes [SeedQR] and CompactSeedQR formats.
//
// [SeedQR]: https://github.com/SeedSigner/seedsigner/blob/dev/docs/seed_qr/README.md
package seedqr

import (
	"bytes"
	"fmt"
	"strconv"

	"seedrecovery.org/bip39"
)

// Parse decodes a SeedQR or CompactSeedQR payload.
func Parse(qr []byte) (bip39.Mnemonic, bool) {
	if m, ok := parseSeedQR(qr); ok {
		return m, true
	}
	return parseCompactSeedQR(qr)
}

// QR encodes a 12 or 24 word mnemonic into the SeedQR format.
// It panics if m is invalid.
func QR(m bip39.Mnemonic) []byte {
	if !supported(m) {
		panic("invalid mnemonic")
	}
	var qr bytes.Buffer
	for _, w := range m {
		fmt.Fprintf(&qr, "%04d", w)
	}
	return qr.Bytes()
}

// CompactQR encodes a 12 or 24 word mnemonic into the CompactSeedQR
// format, which is its raw entropy. It panics if m is invalid.
func CompactQR(m bip39.Mnemonic) []byte {
	if !supported(m) {
		panic("invalid mnemonic")
	}
	return m.Entropy()
}

func supported(m bip39.Mnemonic) bool {
	return (len(m) == 12 || len(m) == 24) && m.Valid()
}

func parseSeedQR(qr []byte) (bip39.Mnemonic, bool) {
	switch len(qr) {
	case 12 * 4, 24 * 4:
	default:
		return nil, false
	}
	m := make(bip39.Mnemonic, len(qr)/4)
	for i := range m {
		word, err := strconv.ParseUint(string(qr[i*4:(i+1)*4]), 10, 16)
		if err != nil {
			return nil, false
		}
		m[i] = bip39.Word(word)
	}
	if !m.Valid() {
		return nil, false
	}
	return m, true
}

func parseCompactSeedQR(qr []byte) (bip39.Mnemonic, bool) {
	switch len(qr) {
	case 128 / 8, 256 / 8:
	default:
		return nil, false
	}
	return bip39.New(qr), true
}
