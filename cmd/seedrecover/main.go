// Command seedrecover recovers wallet seeds from bip39 mnemonics,
// 27 word encrypted mnemonics and explicit hex seeds read from
// standard in. Explicit hex seeds end with an X; a bare hex token is
// only read as a CompactSeedQR when -compactqr is given.
//
// Secrets given as flags are visible to other users of the system.
// Prefer a trusted, offline machine.
package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/kortschak/qr"
	"seedrecovery.org/bc/ur"
	"seedrecovery.org/bc/urtypes"
	"seedrecovery.org/bip32"
	"seedrecovery.org/bip39"
	"seedrecovery.org/encmnemonic"
	"seedrecovery.org/recovery"
	"seedrecovery.org/seedqr"
)

var (
	decryptFlags  = flag.NewFlagSet("decrypt", flag.ExitOnError)
	password      = decryptFlags.String("password", "", "password of the encrypted mnemonic")
	timeout       = decryptFlags.Duration("timeout", 5*time.Minute, "give up decrypting after this duration (0 means never)")
	decryptFormat = decryptFlags.String("format", "words", "output format (words, seedqr, compactqr, ur)")
	decryptQR     = decryptFlags.Bool("qr", false, "also print the SeedQR as a terminal QR code")

	seedFlags      = flag.NewFlagSet("seed", flag.ExitOnError)
	seedPassword   = seedFlags.String("password", "", "password, if the mnemonic is encrypted")
	seedPassphrase = seedFlags.String("passphrase", "", "bip39 passphrase")
	seedFormat     = seedFlags.String("format", "hex", "output format (hex, ur)")
	seedInput      = addInputFlags(seedFlags)

	deriveFlags      = flag.NewFlagSet("derive", flag.ExitOnError)
	derivePassword   = deriveFlags.String("password", "", "password, if the mnemonic is encrypted")
	derivePassphrase = deriveFlags.String("passphrase", "", "bip39 passphrase")
	derivePath       = deriveFlags.String("path", "m", "the derivation path (e.g. 'm/84h/0h/0h')")
	testnet          = deriveFlags.Bool("testnet", false, "derive testnet keys")
	deriveInput      = addInputFlags(deriveFlags)

	checkFlags = flag.NewFlagSet("check", flag.ExitOnError)
	checkInput = addInputFlags(checkFlags)
)

// inputFlags select how the mnemonic read from standard in is
// interpreted. SeedQR digits and ur:crypto-seed are always recognized.
type inputFlags struct {
	prefix  bool
	compact bool
}

func addInputFlags(fs *flag.FlagSet) *inputFlags {
	in := new(inputFlags)
	fs.BoolVar(&in.prefix, "prefix", false, "accept words abbreviated to their first 3 or more letters")
	fs.BoolVar(&in.compact, "compactqr", false, "read a hex encoded CompactSeedQR")
	return in
}

func main() {
	if err := run(os.Stdout, os.Stdin, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "seedrecover: %v\n", err)
		os.Exit(2)
	}
}

func run(stdout io.Writer, stdin io.Reader, args []string) error {
	if len(args) == 0 {
		return errors.New("missing command (check, decrypt, seed, derive)")
	}
	cmd := args[0]
	args = args[1:]
	switch cmd {
	case "check":
		if err := checkFlags.Parse(args); err != nil {
			checkFlags.Usage()
		}
		return check(stdout, stdin)
	case "decrypt":
		if err := decryptFlags.Parse(args); err != nil {
			decryptFlags.Usage()
		}
		return decrypt(stdout, stdin)
	case "seed":
		if err := seedFlags.Parse(args); err != nil {
			seedFlags.Usage()
		}
		return genSeed(stdout, stdin)
	case "derive":
		if err := deriveFlags.Parse(args); err != nil {
			deriveFlags.Usage()
		}
		return derive(stdout, stdin)
	default:
		return fmt.Errorf("unknown command: %q", cmd)
	}
}

func readInput(stdin io.Reader) (string, error) {
	b, err := io.ReadAll(stdin)
	if err != nil {
		return "", err
	}
	return string(bytes.TrimSpace(b)), nil
}

// parseInput converts the alternative encodings of a mnemonic to
// words, and a ur:bytes seed to the explicit hex seed form. Other input
// is returned unchanged.
func parseInput(s string, in *inputFlags) (string, error) {
	switch {
	case strings.HasPrefix(strings.ToLower(s), "ur:"):
		return parseUR(s)
	case in.compact:
		b, err := hex.DecodeString(s)
		if err != nil {
			return "", fmt.Errorf("compactqr: %w", err)
		}
		m, ok := seedqr.Parse(b)
		if !ok || len(b) != len(m.Entropy()) {
			return "", fmt.Errorf("compactqr: %w: not a CompactSeedQR", bip39.ErrInvalidFormat)
		}
		return m.String(), nil
	case recovery.IsHexSeed(s):
		return s, nil
	case in.prefix:
		m, err := bip39.Parse([]byte(strings.Join(strings.Fields(s), " ")))
		if err != nil {
			return "", err
		}
		return m.String(), nil
	case isDigits(s):
		if m, ok := seedqr.Parse([]byte(s)); ok {
			return m.String(), nil
		}
	}
	return s, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || '9' < r {
			return false
		}
	}
	return s != ""
}

func parseUR(s string) (string, error) {
	typ, msg, err := ur.Decode(s)
	if err != nil {
		return "", err
	}
	v, err := urtypes.Parse(typ, msg)
	if err != nil {
		return "", err
	}
	switch v := v.(type) {
	case urtypes.Seed:
		if n := len(v.Payload); n < 16 || n > 32 || n%4 != 0 {
			return "", fmt.Errorf("ur: %s: %d bytes is not bip39 entropy", typ, n)
		}
		return bip39.New(v.Payload).String(), nil
	case []byte:
		if len(v) != bip39.SeedLen {
			return "", fmt.Errorf("ur: %s: %d bytes is not a seed", typ, len(v))
		}
		return hex.EncodeToString(v) + bip39.HexSeedSuffix, nil
	default:
		return "", fmt.Errorf("ur: %s is not a seed", typ)
	}
}

// seedUR encodes a secret as ur:crypto-seed holding the mnemonic
// entropy, or as ur:bytes holding an explicit seed.
func seedUR(secret recovery.Secret) string {
	if secret.Mnemonic == nil {
		return ur.Encode(urtypes.BytesType, urtypes.EncodeBytes(secret.Seed))
	}
	return ur.Encode(urtypes.SeedType, urtypes.Seed{Payload: secret.Mnemonic.Entropy()}.Encode())
}

func check(stdout io.Writer, stdin io.Reader) error {
	s, err := readInput(stdin)
	if err != nil {
		return err
	}
	s, err = parseInput(s, checkInput)
	if err != nil {
		return err
	}
	if err := bip39.Validate(s); err != nil {
		return err
	}
	switch {
	case recovery.IsHexSeed(s):
		fmt.Fprintln(stdout, "explicit hex seed")
	case len(strings.Split(s, " ")) == encmnemonic.Words:
		fmt.Fprintln(stdout, "valid encrypted mnemonic")
	default:
		fmt.Fprintln(stdout, "valid mnemonic")
	}
	return nil
}

func decrypt(stdout io.Writer, stdin io.Reader) error {
	s, err := readInput(stdin)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	m, err := encmnemonic.DecryptContext(ctx, s, *password)
	if err != nil {
		return fmt.Errorf("decrypt: %w", err)
	}
	switch f := *decryptFormat; f {
	case "words":
		fmt.Fprintln(stdout, m)
	case "seedqr":
		fmt.Fprintf(stdout, "%s\n", seedqr.QR(m))
	case "compactqr":
		fmt.Fprintf(stdout, "%x\n", seedqr.CompactQR(m))
	case "ur":
		fmt.Fprintln(stdout, ur.Encode(urtypes.SeedType, urtypes.Seed{Payload: m.Entropy()}.Encode()))
	default:
		return fmt.Errorf("decrypt: unknown format %q", f)
	}
	if *decryptQR {
		code, err := qr.Encode(string(seedqr.QR(m)), qr.M)
		if err != nil {
			return fmt.Errorf("decrypt: %w", err)
		}
		printQR(stdout, code)
	}
	return nil
}

// printQR draws code with half block characters, two modules per
// character cell, surrounded by a quiet zone.
func printQR(w io.Writer, code *qr.Code) {
	const quiet = 2
	black := func(x, y int) bool {
		x, y = x-quiet, y-quiet
		return x >= 0 && y >= 0 && x < code.Size && y < code.Size && code.Black(x, y)
	}
	n := code.Size + 2*quiet
	var buf strings.Builder
	for y := 0; y < n; y += 2 {
		for x := range n {
			top, bottom := black(x, y), black(x, y+1)
			// Dark terminal backgrounds: draw the light modules.
			switch {
			case !top && !bottom:
				buf.WriteRune('█')
			case !top:
				buf.WriteRune('▀')
			case !bottom:
				buf.WriteRune('▄')
			default:
				buf.WriteByte(' ')
			}
		}
		buf.WriteByte('\n')
	}
	io.WriteString(w, buf.String())
}

func genSeed(stdout io.Writer, stdin io.Reader) error {
	s, err := readInput(stdin)
	if err != nil {
		return err
	}
	s, err = parseInput(s, seedInput)
	if err != nil {
		return err
	}
	secret, err := recovery.Unwrap(context.Background(), s, *seedPassword, *seedPassphrase)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer secret.Zero()
	switch f := *seedFormat; f {
	case "hex":
		fmt.Fprintf(stdout, "%x\n", secret.Seed)
	case "ur":
		fmt.Fprintln(stdout, seedUR(secret))
	default:
		return fmt.Errorf("seed: unknown format %q", f)
	}
	return nil
}

func derive(stdout io.Writer, stdin io.Reader) error {
	args := deriveFlags.Args()
	if len(args) != 1 {
		return errors.New("derive: specify format (xprv, xpub)")
	}
	path, err := bip32.ParsePath(*derivePath)
	if err != nil {
		return err
	}
	s, err := readInput(stdin)
	if err != nil {
		return err
	}
	s, err = parseInput(s, deriveInput)
	if err != nil {
		return err
	}
	net := &chaincfg.MainNetParams
	if *testnet {
		net = &chaincfg.TestNet3Params
	}
	secret, err := recovery.Unwrap(context.Background(), s, *derivePassword, *derivePassphrase)
	if err != nil {
		return fmt.Errorf("derive: %w", err)
	}
	defer secret.Zero()
	mk, err := secret.Wallet(net)
	if err != nil {
		return fmt.Errorf("derive: %w", err)
	}
	mfp, key, err := bip32.Derive(mk, path)
	if err != nil {
		return fmt.Errorf("derive: %w", err)
	}
	switch f := args[0]; f {
	case "xprv":
		fmt.Fprintln(stdout, key)
	case "xpub":
		xpub, err := key.Neuter()
		if err != nil {
			return fmt.Errorf("derive: %w", err)
		}
		if len(path) > 0 {
			fmt.Fprintf(stdout, "[%.8x/%s]", mfp, strings.TrimPrefix(path.String(), "m/"))
		}
		fmt.Fprintln(stdout, xpub)
	default:
		return fmt.Errorf("derive: unknown format %q", f)
	}
	return nil
}
