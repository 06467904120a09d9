// Package encmnemonic decrypts 27 word encrypted mnemonics back to the
// 24 word bip39 mnemonics they protect.
//
// The 36 bytes of entropy of an encrypted mnemonic are 32 bytes of
// ciphertext followed by a 4 byte salt. The salt is the leading 4 bytes
// of the double SHA-256 of the plaintext entropy and doubles as the
// scrypt salt. Scrypt stretches the password into 64 bytes; the last 32
// bytes are the AES-256 key, the first 32 bytes whiten the plaintext.
package encmnemonic

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"golang.org/x/crypto/scrypt"
	"seedrecovery.org/bip39"
)

// Scrypt parameters. Changing them makes every existing encrypted
// mnemonic undecryptable.
const (
	scryptN = 16384
	scryptR = 8
	scryptP = 8
)

const (
	// KeyLen is the length of the stretched key material.
	KeyLen = 64
	// TagLen is the length of the integrity tag and salt.
	TagLen = 4
	// Words is the length of an encrypted mnemonic.
	Words = 27
	// PlainWords is the length of the protected mnemonic.
	PlainWords = 24

	entropyLen = 32
)

// ErrIncorrectPassword is returned when the decrypted entropy does not
// match the salt. A corrupted mnemonic with a valid checksum gives the
// same error.
var ErrIncorrectPassword = errors.New("encmnemonic: incorrect password")

// Stretch derives KeyLen bytes of key material from password and salt.
// It is deliberately expensive.
func Stretch(password, salt []byte) ([]byte, error) {
	return scrypt.Key(password, salt, scryptN, scryptR, scryptP, KeyLen)
}

// Tag returns the leading TagLen bytes of the double SHA-256 of data.
func Tag(data []byte) [TagLen]byte {
	var tag [TagLen]byte
	copy(tag[:], chainhash.DoubleHashB(data))
	return tag
}

// decryptBlocks decrypts every 16 byte block of src independently
// (ECB). The plaintext is random entropy, never structured data.
func decryptBlocks(key, src []byte) ([]byte, error) {
	return ecb(key, src, cipher.Block.Decrypt)
}

// encryptBlocks is the inverse of decryptBlocks.
func encryptBlocks(key, src []byte) ([]byte, error) {
	return ecb(key, src, cipher.Block.Encrypt)
}

func ecb(key, src []byte, crypt func(b cipher.Block, dst, src []byte)) ([]byte, error) {
	b, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	if len(src)%aes.BlockSize != 0 {
		panic("encmnemonic: input not block aligned")
	}
	dst := make([]byte, len(src))
	for i := 0; i < len(src); i += aes.BlockSize {
		crypt(b, dst[i:i+aes.BlockSize], src[i:i+aes.BlockSize])
	}
	return dst, nil
}

// Parse decodes an encrypted mnemonic. Runs of whitespace between
// words are accepted. Errors match both bip39.ErrInvalidFormat and the
// underlying bip39 error.
func Parse(mnemonic string) (bip39.Mnemonic, error) {
	normalized := strings.Join(strings.Fields(mnemonic), " ")
	m, err := bip39.ParseMnemonic(normalized)
	if err != nil {
		if errors.Is(err, bip39.ErrInvalidFormat) {
			return nil, fmt.Errorf("encmnemonic: %w", err)
		}
		return nil, fmt.Errorf("encmnemonic: %w: %w", bip39.ErrInvalidFormat, err)
	}
	if len(m) != Words {
		return nil, fmt.Errorf("encmnemonic: %w: %d words, expected %d", bip39.ErrInvalidFormat, len(m), Words)
	}
	return m, nil
}

// Decrypt recovers the 24 word mnemonic protected by a 27 word
// encrypted mnemonic and password.
func Decrypt(mnemonic, password string) (bip39.Mnemonic, error) {
	m, err := Parse(mnemonic)
	if err != nil {
		return nil, err
	}
	return DecryptMnemonic(m, password)
}

// DecryptMnemonic is like Decrypt for an already parsed mnemonic.
func DecryptMnemonic(m bip39.Mnemonic, password string) (bip39.Mnemonic, error) {
	if len(m) != Words || !m.Valid() {
		return nil, fmt.Errorf("encmnemonic: %w: expected a valid %d word mnemonic", bip39.ErrInvalidFormat, Words)
	}
	entropy := m.Entropy()
	ciphertext, salt := entropy[:entropyLen], entropy[entropyLen:]
	key, err := Stretch([]byte(password), salt)
	if err != nil {
		return nil, fmt.Errorf("encmnemonic: %w", err)
	}
	defer clear(key)
	plain, err := decryptBlocks(key[entropyLen:], ciphertext)
	if err != nil {
		return nil, fmt.Errorf("encmnemonic: %w", err)
	}
	defer clear(plain)
	for i := range plain {
		plain[i] ^= key[i]
	}
	tag := Tag(plain)
	if subtle.ConstantTimeCompare(tag[:], salt) != 1 {
		return nil, ErrIncorrectPassword
	}
	return bip39.New(plain), nil
}

// DecryptContext is like Decrypt but returns early with the context
// error when ctx is done. The key stretching itself cannot be
// interrupted and finishes in the background.
func DecryptContext(ctx context.Context, mnemonic, password string) (bip39.Mnemonic, error) {
	m, err := Parse(mnemonic)
	if err != nil {
		return nil, err
	}
	type result struct {
		m   bip39.Mnemonic
		err error
	}
	done := make(chan result, 1)
	go func() {
		m, err := DecryptMnemonic(m, password)
		done <- result{m, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.m, r.err
	}
}

// Encrypt protects a 24 word mnemonic with password, producing the
// 27 word encrypted form understood by Decrypt.
func Encrypt(m bip39.Mnemonic, password string) (bip39.Mnemonic, error) {
	if len(m) != PlainWords || !m.Valid() {
		return nil, fmt.Errorf("encmnemonic: %w: expected a valid %d word mnemonic", bip39.ErrInvalidFormat, PlainWords)
	}
	plain := m.Entropy()
	defer clear(plain)
	salt := Tag(plain)
	key, err := Stretch([]byte(password), salt[:])
	if err != nil {
		return nil, fmt.Errorf("encmnemonic: %w", err)
	}
	defer clear(key)
	whitened := make([]byte, entropyLen)
	defer clear(whitened)
	for i := range whitened {
		whitened[i] = plain[i] ^ key[i]
	}
	ciphertext, err := encryptBlocks(key[entropyLen:], whitened)
	if err != nil {
		return nil, fmt.Errorf("encmnemonic: %w", err)
	}
	return bip39.New(append(ciphertext, salt[:]...)), nil
}
