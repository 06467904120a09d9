// Package ur implements single part Uniform Resources (UR) as
// specified in [BCR-2020-005].
//
// [BCR-2020-005]: https://github.com/BlockchainCommons/Research/blob/master/papers/bcr-2020-005-ur.md
package ur

import (
	"errors"
	"fmt"
	"strings"

	"seedrecovery.org/bc/bytewords"
)

const prefix = "ur:"

var ErrMultipart = errors.New("ur: multi-part URs are not supported")

// Encode returns the single part UR of a message.
func Encode(_type string, message []byte) string {
	return fmt.Sprintf("%s%s/%s", prefix, _type, bytewords.Encode(message))
}

// Decode returns the type and message of a single part UR. Upper
// case URs, as used in QR codes, are accepted.
func Decode(ur string) (string, []byte, error) {
	ur = strings.ToLower(strings.TrimSpace(ur))
	if !strings.HasPrefix(ur, prefix) {
		return "", nil, errors.New("ur: missing ur: prefix")
	}
	parts := strings.Split(ur[len(prefix):], "/")
	switch {
	case len(parts) < 2 || parts[0] == "":
		return "", nil, errors.New("ur: incomplete UR")
	case len(parts) > 2:
		return "", nil, ErrMultipart
	}
	typ, fragment := parts[0], parts[1]
	for _, r := range typ {
		if (r < 'a' || 'z' < r) && (r < '0' || '9' < r) && r != '-' {
			return "", nil, fmt.Errorf("ur: invalid type %q", typ)
		}
	}
	msg, err := bytewords.Decode(fragment)
	if err != nil {
		return "", nil, fmt.Errorf("ur: invalid fragment: %w", err)
	}
	return typ, msg, nil
}
