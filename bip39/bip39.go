// package bip39 represents and converts bitcoin bip39 mnemonic phrases,
// including the 27 word form carrying 288 bits of entropy.
package bip39

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"

	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/text/unicode/norm"
)

type Word int

type Mnemonic []Word

const NumWords Word = 2048

const wordBits = 11

const (
	MinWords = 12
	MaxWords = 27
)

// SeedLen is the length of a seed derived from a mnemonic.
const SeedLen = 64

const seedRounds = 2048

// HexSeedSuffix marks a single token input as a hex encoded seed
// rather than a mnemonic.
const HexSeedSuffix = "X"

var (
	ErrInvalidChecksum = errors.New("bip39: invalid checksum")
	ErrInvalidWord     = errors.New("bip39: unknown word")
	ErrInvalidFormat   = errors.New("bip39: invalid mnemonic format")
)

func LabelFor(w Word) string {
	if !w.valid() {
		return ""
	}
	return english().words[w]
}

func (w Word) valid() bool {
	return w >= 0 && w < NumWords
}

// ClosestWord returns the first word not sorting before word, and
// whether word is a prefix of it.
func ClosestWord(word string) (Word, bool) {
	words := english().words
	i := sort.SearchStrings(words, word)
	if i == len(words) {
		return -1, false
	}
	return Word(i), strings.HasPrefix(words[i], word)
}

func validLength(n int) bool {
	return n%3 == 0 && MinWords <= n && n <= MaxWords
}

// Valid reports whether the mnemonic length is supported and its
// checksum is correct.
func (m Mnemonic) Valid() bool {
	if !validLength(len(m)) {
		return false
	}
	for _, w := range m {
		if !w.valid() {
			return false
		}
	}
	ent, check := splitMnemonic(m)
	return checksum(ent) == check
}

// FixChecksum returns a copy of the mnemonic with a correct checksum.
// This method defeats the purpose of the bip39 checksum, so it should
// only be used for generating new mnemonics.
func (m Mnemonic) FixChecksum() Mnemonic {
	m2 := make(Mnemonic, len(m))
	copy(m2, m)
	ent, _ := splitMnemonic(m2)
	m2[len(m2)-1] = ChecksumWord(ent)
	return m2
}

// Entropy returns the entropy represented by the mnemonic. It
// panics if the mnemonic is invalid.
func (m Mnemonic) Entropy() []byte {
	if !m.Valid() {
		panic("invalid mnemonic")
	}
	ent, _ := splitMnemonic(m)
	return ent
}

func (m Mnemonic) String() string {
	s := new(strings.Builder)
	for _, w := range m {
		if s.Len() > 0 {
			s.WriteByte(' ')
		}
		s.WriteString(LabelFor(w))
	}
	return s.String()
}

// splitMnemonic unpacks the 11-bit word indices into entropy and
// the trailing len(m)/3 checksum bits.
func splitMnemonic(m Mnemonic) (entropy []byte, check int) {
	if !validLength(len(m)) {
		panic("mnemonic length not supported")
	}
	ent := new(big.Int)
	w := new(big.Int)
	for _, word := range m {
		ent.Lsh(ent, wordBits)
		ent.Or(ent, w.SetInt64(int64(word)))
	}
	checkBits := len(m) / 3
	check = int(new(big.Int).And(ent, big.NewInt(1<<checkBits-1)).Int64())
	ent.Rsh(ent, uint(checkBits))
	// FillBytes pads with leading zeros; the checksum covers them.
	entropy = make([]byte, (len(m)*wordBits-checkBits)/8)
	ent.FillBytes(entropy)
	return entropy, check
}

// checksum returns the leading len(entropy)/4 bits of the SHA-256
// hash of entropy.
func checksum(entropy []byte) int {
	checkBits := len(entropy) / 4
	if checkBits > 16 {
		panic("entropy too long")
	}
	h := sha256.Sum256(entropy)
	return int(binary.BigEndian.Uint16(h[:2]) >> (16 - checkBits))
}

func ChecksumWord(entropy []byte) Word {
	checkBits := len(entropy) / 4
	last := entropy[len(entropy)-1]
	w := Word(last)<<checkBits | Word(checksum(entropy))
	return w % NumWords
}

// New encodes entropy of 16 to 36 bytes, in steps of 4, as a mnemonic.
func New(entropy []byte) Mnemonic {
	if len(entropy) < 16 || 36 < len(entropy) {
		panic("invalid entropy length")
	}
	if len(entropy)%4 != 0 {
		panic("odd entropy length")
	}
	ent := new(big.Int).SetBytes(entropy)
	checkBits := len(entropy) / 4
	ent.Lsh(ent, uint(checkBits))
	ent.Or(ent, big.NewInt(int64(checksum(entropy))))
	mask := big.NewInt(1<<wordBits - 1)
	w := new(big.Int)
	m := make(Mnemonic, (len(entropy)*8+checkBits)/wordBits)
	for i := range m {
		w.And(ent, mask)
		ent.Rsh(ent, wordBits)
		m[len(m)-1-i] = Word(w.Int64())
	}
	if !m.Valid() {
		panic("unreachable")
	}
	return m
}

// Parse is like ParseMnemonic, but accepts word prefixes of at least
// 3 letters. A prefix resolves to the first word it matches.
func Parse(buf []byte) (Mnemonic, error) {
	var m Mnemonic
	for w := range bytes.SplitSeq(buf, []byte(" ")) {
		if len(m) == MaxWords {
			return nil, fmt.Errorf("%w: mnemonic too long", ErrInvalidFormat)
		}
		closest, valid := ClosestWord(string(w))
		if !valid || len(w) < 3 ||
			!bytes.HasPrefix([]byte(LabelFor(closest)), w) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWord, w)
		}
		m = append(m, closest)
	}
	if !validLength(len(m)) {
		return nil, fmt.Errorf("%w: %d words", ErrInvalidFormat, len(m))
	}
	if !m.Valid() {
		return nil, ErrInvalidChecksum
	}
	return m, nil
}

// ParseMnemonic decodes a mnemonic of single space separated words
// and verifies its checksum.
func ParseMnemonic(mnemonic string) (Mnemonic, error) {
	words := strings.Split(mnemonic, " ")
	m := make(Mnemonic, len(words))
	for i, w := range words {
		if w == "" {
			return nil, fmt.Errorf("%w: empty word at position %d", ErrInvalidFormat, i+1)
		}
		word, ok := Lookup(w)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWord, w)
		}
		m[i] = word
	}
	if !validLength(len(m)) {
		return nil, fmt.Errorf("%w: %d words", ErrInvalidFormat, len(m))
	}
	if !m.Valid() {
		return nil, ErrInvalidChecksum
	}
	return m, nil
}

// Validate checks a user supplied mnemonic. Input without spaces is
// accepted only when it ends with HexSeedSuffix; such seeds are not
// decoded here.
func Validate(mnemonic string) error {
	if !strings.Contains(mnemonic, " ") {
		if strings.HasSuffix(mnemonic, HexSeedSuffix) {
			return nil
		}
		return fmt.Errorf("%w: words must be separated by spaces, hex seed must end with %s",
			ErrInvalidFormat, HexSeedSuffix)
	}
	_, err := ParseMnemonic(mnemonic)
	return err
}

// Seed stretches a mnemonic sentence and passphrase into a SeedLen
// byte seed. Both are NFKD normalized before stretching.
func Seed(sentence, passphrase string) []byte {
	password := norm.NFKD.String(sentence)
	salt := norm.NFKD.String("mnemonic" + passphrase)
	return pbkdf2.Key([]byte(password), []byte(salt), seedRounds, SeedLen, sha512.New)
}

func RandomWord() Word {
	var u16 [2]byte
	if _, err := rand.Read(u16[:]); err != nil {
		panic(err)
	}
	// Modulo reduction of a random number ok because the reduced
	// range (2^11) divides the full range (2^16). But be paranoid.
	const n = int(NumWords)
	if math.MaxUint16%n != n-1 {
		panic("biased random distribution")
	}
	return Word(binary.BigEndian.Uint16(u16[:])) % NumWords
}
