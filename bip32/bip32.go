// package bip32 contains helper functions for operating on bitcoin bip32
// extended keys.
package bip32

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

type Path []uint32

var ErrInvalidPath = errors.New("bip32: invalid derivation path")

// Master returns the root extended private key for a seed.
func Master(seed []byte, net *chaincfg.Params) (*hdkeychain.ExtendedKey, error) {
	mk, err := hdkeychain.NewMaster(seed, net)
	if err != nil {
		return nil, fmt.Errorf("bip32: %w", err)
	}
	return mk, nil
}

// Derive walks path from mk. The master fingerprint is the parent
// fingerprint of the first derived key, or zero for an empty path.
func Derive(mk *hdkeychain.ExtendedKey, path Path) (mfp uint32, key *hdkeychain.ExtendedKey, err error) {
	key = mk
	for i, p := range path {
		key, err = key.Derive(p)
		if err != nil {
			return 0, nil, fmt.Errorf("bip32: %w", err)
		}
		if i == 0 {
			mfp = key.ParentFingerprint()
		}
	}
	return mfp, key, nil
}

// ParsePath parses paths such as "m/84h/0'/0h/1". Both h and '
// mark hardened elements.
func ParsePath(p string) (Path, error) {
	elems := strings.Split(p, "/")
	if elems[0] != "m" {
		return nil, fmt.Errorf("%w: %q must start with m", ErrInvalidPath, p)
	}
	var path Path
	for _, e := range elems[1:] {
		off := uint32(0)
		if t := strings.TrimRight(e, "h'"); len(e)-len(t) == 1 {
			off = hdkeychain.HardenedKeyStart
			e = t
		}
		idx, err := strconv.ParseUint(e, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidPath, p, err)
		}
		path = append(path, uint32(idx)+off)
	}
	return path, nil
}

func (p Path) String() string {
	var d strings.Builder
	d.WriteRune('m')
	for _, p := range p {
		d.WriteByte('/')
		idx := p
		if p >= hdkeychain.HardenedKeyStart {
			idx -= hdkeychain.HardenedKeyStart
		}
		d.WriteString(strconv.Itoa(int(idx)))
		if p >= hdkeychain.HardenedKeyStart {
			d.WriteRune('h')
		}
	}
	return d.String()
}
