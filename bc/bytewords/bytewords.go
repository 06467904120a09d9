// Package bytewords implements the bytewords encoding described in
// [BCR-2020-012], in its minimal two letter form.
//
// [BCR-2020-012]: https://github.com/BlockchainCommons/Research/blob/master/papers/bcr-2020-012-bytewords.md
package bytewords

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"sync"
)

var (
	ErrChecksum = errors.New("bytewords: crc32 checksum mismatch")
	ErrInvalid  = errors.New("bytewords: invalid encoding")
)

type byteview interface {
	~string | ~[]byte
}

// Encode returns the minimal bytewords of data followed by its CRC32.
func Encode(data []byte) string {
	var check [4]byte
	binary.BigEndian.PutUint32(check[:], crc32.ChecksumIEEE(data))
	buf := make([]byte, 0, (len(data)+len(check))*2)
	for _, b := range append(data[:len(data):len(data)], check[:]...) {
		i := int(b) * 2
		buf = append(buf, abbrev[i:i+2]...)
	}
	return string(buf)
}

// Decode reverses Encode and verifies the checksum.
func Decode[T byteview](src T) ([]byte, error) {
	if len(src)%2 == 1 {
		return nil, fmt.Errorf("%w: truncated input", ErrInvalid)
	}
	dst := make([]byte, len(src)/2)
	if len(dst) < 4 {
		return nil, fmt.Errorf("%w: input too short", ErrInvalid)
	}
	for i := range dst {
		w, ok := lookup(src[i*2], src[i*2+1])
		if !ok {
			return nil, fmt.Errorf("%w: unknown word %c%c", ErrInvalid, src[i*2], src[i*2+1])
		}
		dst[i] = w
	}
	data, check := dst[:len(dst)-4], dst[len(dst)-4:]
	if binary.BigEndian.Uint32(check) != crc32.ChecksumIEEE(data) {
		return nil, ErrChecksum
	}
	return data, nil
}

func lookup(l1, l2 byte) (byte, bool) {
	if l1 < 'a' || 'z' < l1 {
		return 0, false
	}
	first := firstLetters()
	for i := int(first[l1-'a']); i < len(abbrev)/2; i++ {
		if abbrev[i*2] != l1 {
			break
		}
		if abbrev[i*2+1] == l2 {
			return byte(i), true
		}
	}
	return 0, false
}

// firstLetters maps a letter to the first byte whose word starts
// with it.
var firstLetters = sync.OnceValue(func() [26]uint8 {
	var first [26]uint8
	var letter byte = 'a' - 1
	for i := range len(abbrev) / 2 {
		if l1 := abbrev[i*2]; l1 != letter {
			letter = l1
			first[letter-'a'] = uint8(i)
		}
	}
	return first
})

// abbrev contains the two-letter abbreviations for the bytewords word list:
// able, acid, also, apex, aqua, arch, atom, aunt,
// away, axis, back, bald, barn, belt, beta, bias,
// blue, body, brag, brew, bulb, buzz, calm, cash,
// cats, chef, city, claw, code, cola, cook, cost,
// crux, curl, cusp, cyan, dark, data, days, deli,
// dice, diet, door, down, draw, drop, drum, dull,
// duty, each, easy, echo, edge, epic, even, exam,
// exit, eyes, fact, fair, fern, figs, film, fish,
// fizz, flap, flew, flux, foxy, free, frog, fuel,
// fund, gala, game, gear, gems, gift, girl, glow,
// good, gray, grim, guru, gush, gyro, half, hang,
// hard, hawk, heat, help, high, hill, holy, hope,
// horn, huts, iced, idea, idle, inch, inky, into,
// iris, iron, item, jade, jazz, join, jolt, jowl,
// judo, jugs, jump, junk, jury, keep, keno, kept,
// keys, kick, kiln, king, kite, kiwi, knob, lamb,
// lava, lazy, leaf, legs, liar, limp, lion, list,
// logo, loud, love, luau, luck, lung, main, many,
// math, maze, memo, menu, meow, mild, mint, miss,
// monk, nail, navy, need, news, next, noon, note,
// numb, obey, oboe, omit, onyx, open, oval, owls,
// paid, part, peck, play, plus, poem, pool, pose,
// puff, puma, purr, quad, quiz, race, ramp, real,
// redo, rich, road, rock, roof, ruby, ruin, runs,
// rust, safe, saga, scar, sets, silk, skew, slot,
// soap, solo, song, stub, surf, swan, taco, task,
// taxi, tent, tied, time, tiny, toil, tomb, toys,
// trip, tuna, twin, ugly, undo, unit, urge, user,
// vast, very, veto, vial, vibe, view, visa, void,
// vows, wall, wand, warm, wasp, wave, waxy, webs,
// what, when, whiz, wolf, work, yank, yawn, yell,
// yoga, yurt, zaps, zero, zest, zinc, zone, zoom.
const abbrev = "aeadaoaxaaahamatayasbkbdbnbtbabsbebybgbwbbbzcmchcscfcycwcecackctcxclcpcndkdadsdidedtdrdndwdpdmdldyeheyeoeeecenemetesftfrfnfsfmfhfzfpfwfxfyfefgflfdgagegrgsgtglgwgdgygmgughgohfhghdhkhthphhhlhyhehnhsidiaieihiyioisinimjejzjnjtjljojsjpjkjykpkoktkskkknkgkekikblblalylflslrlplnltloldlelulklgmnmymhmemomumwmdmtmsmknlnyndnsntnnnenboyoeotoxonolospdptpkpypspmplpepfpaprqdqzrerprlrorhrdrkrfryrnrsrtsesasrssskswstspsosgsbsfsntotktitttdtetytltbtstptatnuyuoutueurvtvyvovlvevwvavdvswlwdwmwpwewywswtwnwzwfwkykynylyaytzszoztzczezm"
