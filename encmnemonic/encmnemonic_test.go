package encmnemonic

import (
	"bytes"
	"context"
	"crypto/aes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"seedrecovery.org/bip39"
)

var vectors = []struct {
	encrypted string
	password  string
	mnemonic  string
}{
	{
		encrypted: "pink topple clown buyer world divide satisfy stem bargain across wage action hunt dry hood office cave cotton dose bread inside celery scatter glow coral solar catalog",
		password:  "TREZOR",
		mnemonic:  "hamster diagram private dutch cause delay private meat slide toddler razor book happy fancy gospel tennis maple dilemma loan word shrug inflict delay length",
	},
	{
		encrypted: "lawsuit business culture virtual snack rate stock buffalo cherry grow elite whip safe diet casual cliff rather emotion cool split master stove blouse stable spike drum car",
		password:  "password",
		mnemonic:  "legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth useful legal winner thank year wave sausage worth title",
	},
	{
		encrypted: "copy either carpet aware style frog sound carbon scatter fish glide minor slush aunt design dirt help genuine denial patrol biology food broken shell crazy swarm best",
		password:  "hunter2",
		mnemonic:  "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon art",
	},
}

func TestDecryptVectors(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt is slow")
	}
	for _, v := range vectors {
		m, err := Decrypt(v.encrypted, v.password)
		if err != nil {
			t.Fatalf("%s: %v", v.encrypted, err)
		}
		if got := m.String(); got != v.mnemonic {
			t.Errorf("%s: decrypted to %q, want %q", v.encrypted, got, v.mnemonic)
		}
	}
}

func TestIncorrectPassword(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt is slow")
	}
	v := vectors[0]
	for _, pw := range []string{"", "trezor", v.password + " "} {
		if _, err := Decrypt(v.encrypted, pw); !errors.Is(err, ErrIncorrectPassword) {
			t.Errorf("password %q: got error %v, want %v", pw, err, ErrIncorrectPassword)
		}
	}
}

func TestEncrypt(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt is slow")
	}
	for _, v := range vectors {
		m, err := bip39.ParseMnemonic(v.mnemonic)
		if err != nil {
			t.Fatal(err)
		}
		enc, err := Encrypt(m, v.password)
		if err != nil {
			t.Fatal(err)
		}
		if got := enc.String(); got != v.encrypted {
			t.Errorf("%s: encrypted to %q, want %q", v.mnemonic, got, v.encrypted)
		}
	}
	m := make(bip39.Mnemonic, PlainWords)
	for i := range m {
		m[i] = bip39.RandomWord()
	}
	m = m.FixChecksum()
	enc, err := Encrypt(m, "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	dec, err := DecryptMnemonic(enc, "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if dec.String() != m.String() {
		t.Errorf("round trip of %q returned %q", m, dec)
	}
	if _, err := DecryptMnemonic(enc, "battery staple"); !errors.Is(err, ErrIncorrectPassword) {
		t.Errorf("wrong password: got %v", err)
	}
}

func TestWhitespace(t *testing.T) {
	if testing.Short() {
		t.Skip("scrypt is slow")
	}
	v := vectors[2]
	spaced := "  " + strings.ReplaceAll(v.encrypted, " ", " \t\n ") + "\n"
	m, err := Decrypt(spaced, v.password)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != v.mnemonic {
		t.Errorf("decrypted to %q", m)
	}
}

func TestInvalidFormat(t *testing.T) {
	tests := []struct {
		mnemonic string
		err      error
	}{
		{vectors[0].mnemonic, bip39.ErrInvalidFormat},
		{"", bip39.ErrInvalidFormat},
		{strings.Replace(vectors[0].encrypted, "pink", "pinky", 1), bip39.ErrInvalidWord},
		{vectors[0].encrypted + " abandon", bip39.ErrInvalidFormat},
		{strings.Replace(vectors[0].encrypted, "catalog", "abandon", 1), bip39.ErrInvalidChecksum},
	}
	for _, test := range tests {
		_, err := Decrypt(test.mnemonic, "password")
		if !errors.Is(err, test.err) {
			t.Errorf("%q: got error %v, want %v", test.mnemonic, err, test.err)
		}
		if !errors.Is(err, bip39.ErrInvalidFormat) {
			t.Errorf("%q: error %v does not match %v", test.mnemonic, err, bip39.ErrInvalidFormat)
		}
	}
}

func TestDecryptContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v := vectors[0]
	if _, err := DecryptContext(ctx, v.encrypted, v.password); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled decryption: got %v", err)
	}
	if _, err := DecryptContext(context.Background(), "not a mnemonic", v.password); !errors.Is(err, bip39.ErrInvalidFormat) {
		t.Errorf("invalid mnemonic: got %v", err)
	}
	if testing.Short() {
		return
	}
	m, err := DecryptContext(context.Background(), v.encrypted, v.password)
	if err != nil {
		t.Fatal(err)
	}
	if m.String() != v.mnemonic {
		t.Errorf("decrypted to %q", m)
	}
}

func TestTag(t *testing.T) {
	tests := []struct {
		data string
		tag  string
	}{
		{"", "5df6e0e2"},
		{strings.Repeat("00", 32), "2b32db6c"},
	}
	for _, test := range tests {
		d, err := hex.DecodeString(test.data)
		if err != nil {
			t.Fatal(err)
		}
		tag := Tag(d)
		if got := hex.EncodeToString(tag[:]); got != test.tag {
			t.Errorf("Tag(%s) = %s, want %s", test.data, got, test.tag)
		}
	}
}

func TestBlocks(t *testing.T) {
	// FIPS-197 appendix C.3, repeated to show the blocks are independent.
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f")
	plain, _ := hex.DecodeString(strings.Repeat("00112233445566778899aabbccddeeff", 2))
	want, _ := hex.DecodeString(strings.Repeat("8ea2b7ca516745bfeafc49904b496089", 2))
	ct, err := encryptBlocks(key, plain)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(ct, want) {
		t.Errorf("encrypted to %x, want %x", ct, want)
	}
	pt, err := decryptBlocks(key, ct)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(pt, plain) {
		t.Errorf("decrypted to %x, want %x", pt, plain)
	}
	if _, err := decryptBlocks(key[:31], ct); err == nil {
		t.Error("decrypted with a 31 byte key")
	}
	if _, err := encryptBlocks(key[:31], plain); err == nil {
		t.Error("encrypted with a 31 byte key")
	}
	// Identical plaintext blocks give identical ciphertext blocks.
	if !bytes.Equal(ct[:aes.BlockSize], ct[aes.BlockSize:]) {
		t.Errorf("blocks are chained: %x", ct)
	}
}

func TestBlocksUnaligned(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("unaligned input did not panic")
		}
	}()
	encryptBlocks(make([]byte, 32), make([]byte, 17))
}
