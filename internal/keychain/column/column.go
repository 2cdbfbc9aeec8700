// Package column interprets a record-header "column pointer" as one of
// the four keychain wire encodings: 32-bit integer, four-character code,
// keychain timestamp, or length-value byte string.
package column

import (
	"fmt"
	"time"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
)

// Mask clears the low flag bit of a raw column pointer, per the format's
// convention that bit 0 of every column field is a flag unrelated to the
// offset it encodes.
func Mask(raw uint32) uint32 {
	return raw &^ 1
}

// Int32 decodes a column at recordStart+pCol as a big-endian int32. A
// zero pointer (after masking) means the column is absent and yields 0.
func Int32(v *binview.View, recordStart int, pCol uint32) (int32, bool, error) {
	p := Mask(pCol)
	if p == 0 {
		return 0, false, nil
	}
	val, err := v.Int32(recordStart + int(p))
	if err != nil {
		return 0, false, err
	}
	return val, true, nil
}

// FourCC decodes a column as a 4-byte printable ASCII creator/type code.
func FourCC(v *binview.View, recordStart int, pCol uint32) (string, bool, error) {
	p := Mask(pCol)
	if p == 0 {
		return "", false, nil
	}
	raw, err := v.Slice(recordStart+int(p), 4)
	if err != nil {
		return "", false, err
	}
	return string(raw), true, nil
}

const keychainTimeLayout = "20060102150405Z"

// keychainTimeFieldSize is the on-disk size of a keychain timestamp: the
// 15-character "YYYYMMDDhhmmssZ" text plus one reserved trailing byte.
const keychainTimeFieldSize = 16

// KeychainTime decodes a column as a 16-byte keychain timestamp: the
// 15-character ASCII "YYYYMMDDhhmmssZ" text, plus one trailing reserved
// byte this reader does not interpret, and parses it into a UTC instant.
func KeychainTime(v *binview.View, recordStart int, pCol uint32) (time.Time, bool, error) {
	p := Mask(pCol)
	if p == 0 {
		return time.Time{}, false, nil
	}
	raw, err := v.Slice(recordStart+int(p), keychainTimeFieldSize)
	if err != nil {
		return time.Time{}, false, err
	}
	text := raw[:len(keychainTimeLayout)]
	t, err := time.Parse(keychainTimeLayout, string(text))
	if err != nil {
		return time.Time{}, true, fmt.Errorf("parsing keychain timestamp %q: %w", text, err)
	}
	return t, true, nil
}

// LV decodes a column as a length-value byte string: a 4-byte big-endian
// length followed by that many bytes, padded to a 4-byte boundary. Only
// the declared-length prefix is returned. recordSize bounds the column to
// its enclosing record: if the padded span would escape either the
// record or the buffer, LV reports absent rather than erroring. Nothing
// is logged for an absent column, neither here nor by the record
// decoders, which treat it as an empty value.
func LV(v *binview.View, recordStart int, pCol uint32, recordSize uint32) ([]byte, bool) {
	p := Mask(pCol)
	if p == 0 {
		return nil, false
	}

	length, err := v.Uint32(recordStart + int(p))
	if err != nil {
		return nil, false
	}

	padded := padTo4(length)
	if p+4+padded > recordSize {
		return nil, false
	}
	if !v.Contains(recordStart+int(p)+4, int(padded)) {
		return nil, false
	}

	raw, err := v.Slice(recordStart+int(p)+4, int(length))
	if err != nil {
		return nil, false
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true
}

func padTo4(n uint32) uint32 {
	if n%4 == 0 {
		return n
	}
	return (n/4 + 1) * 4
}
