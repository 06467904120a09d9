package bip39

import (
	"sync"

	"github.com/tyler-smith/go-bip39/wordlists"
)

// wordlist is the immutable English word table. It is built on first
// use and only read afterwards.
type wordlist struct {
	words []string
	index map[string]Word
}

var english = sync.OnceValue(func() *wordlist {
	words := wordlists.English
	if len(words) != int(NumWords) {
		panic("bip39: English word list has the wrong length")
	}
	l := &wordlist{
		words: words,
		index: make(map[string]Word, len(words)),
	}
	for i, w := range words {
		if i > 0 && words[i-1] >= w {
			panic("bip39: English word list is not sorted")
		}
		l.index[w] = Word(i)
	}
	return l
})

// Lookup returns the word exactly matching label.
func Lookup(label string) (Word, bool) {
	w, ok := english().index[label]
	return w, ok
}
