// Package recovery resolves user supplied mnemonics, encrypted
// mnemonics and hex seeds into wallet seeds.
package recovery

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
	"seedrecovery.org/bip32"
	"seedrecovery.org/bip39"
	"seedrecovery.org/encmnemonic"
)

var (
	ErrIncompatiblePassphrase = errors.New("recovery: passphrase is incompatible with explicit seed")
	ErrUnexpectedPassword     = errors.New("recovery: password given for an unencrypted mnemonic")
)

// Secret is a resolved seed. Mnemonic is nil when the input was an
// explicit hex seed.
type Secret struct {
	Seed     []byte
	Mnemonic bip39.Mnemonic
}

// IsHexSeed reports whether input is in the explicit seed form: no
// spaces and a trailing bip39.HexSeedSuffix.
func IsHexSeed(input string) bool {
	return strings.HasSuffix(input, bip39.HexSeedSuffix) && !strings.Contains(input, " ")
}

// Resolve returns the seed for a mnemonic or an explicit hex seed.
// Explicit seeds must decode to bip39.SeedLen bytes and cannot be
// combined with a passphrase.
func Resolve(input, passphrase string) (Secret, error) {
	if err := bip39.Validate(input); err != nil {
		return Secret{}, err
	}
	if IsHexSeed(input) {
		if passphrase != "" {
			return Secret{}, ErrIncompatiblePassphrase
		}
		seed, err := hex.DecodeString(strings.TrimSuffix(input, bip39.HexSeedSuffix))
		if err != nil {
			return Secret{}, fmt.Errorf("recovery: %w: %w", bip39.ErrInvalidFormat, err)
		}
		if len(seed) != bip39.SeedLen {
			return Secret{}, fmt.Errorf("recovery: %w: seed is %d bytes, expected %d",
				bip39.ErrInvalidFormat, len(seed), bip39.SeedLen)
		}
		return Secret{Seed: seed}, nil
	}
	m, err := bip39.ParseMnemonic(input)
	if err != nil {
		return Secret{}, err
	}
	return Secret{
		Seed:     bip39.Seed(input, passphrase),
		Mnemonic: m,
	}, nil
}

// Unwrap is like Resolve, but first decrypts 27 word encrypted
// mnemonics with password. A password for any other input is an error.
func Unwrap(ctx context.Context, input, password, passphrase string) (Secret, error) {
	if !IsHexSeed(input) && len(strings.Fields(input)) == encmnemonic.Words {
		m, err := encmnemonic.DecryptContext(ctx, input, password)
		if err != nil {
			return Secret{}, err
		}
		input = m.String()
	} else if password != "" {
		return Secret{}, ErrUnexpectedPassword
	}
	return Resolve(input, passphrase)
}

// Wallet returns the bip32 master key of the resolved seed.
func (s *Secret) Wallet(net *chaincfg.Params) (*hdkeychain.ExtendedKey, error) {
	return bip32.Master(s.Seed, net)
}

// Zero overwrites the seed. Callers should zero secrets once they are
// no longer needed.
func (s *Secret) Zero() {
	clear(s.Seed)
	clear(s.Mnemonic)
}
