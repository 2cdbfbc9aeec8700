// Package binview provides bounds-checked, offset-driven access over the
// raw keychain file bytes, plus the fixed-width big-endian integer decoders
// the rest of the container parser builds on.
//
// Modeled on a reader-over-a-byte-slice pattern (see
// ContainerSuperblockReader in the go-apfs codebase), but specialized
// to the keychain format: everything here is big-endian and there is a
// single owned buffer for the lifetime of a View.
package binview

import (
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/kcerrors"
)

// View is a read-only window over a byte buffer. It never copies the
// backing array; sub-windows share storage with their parent.
type View struct {
	buf []byte
}

// New wraps buf in a View. The buffer is not copied; the caller must not
// mutate it afterward.
func New(buf []byte) *View {
	return &View{buf: buf}
}

// Len returns the length of the view in bytes.
func (v *View) Len() int {
	return len(v.buf)
}

// Bytes returns the entire backing slice. Callers that need to keep data
// beyond the View's lifetime must copy it.
func (v *View) Bytes() []byte {
	return v.buf
}

// Slice returns the sub-window [off, off+length), bounds-checked against
// the view. Returns ErrMalformedContainer if the window escapes the
// buffer.
func (v *View) Slice(off, length int) ([]byte, error) {
	if off < 0 || length < 0 || off+length > len(v.buf) {
		return nil, fmt.Errorf("%w: window [%d:%d) escapes buffer of length %d",
			kcerrors.ErrMalformedContainer, off, off+length, len(v.buf))
	}
	return v.buf[off : off+length], nil
}

// Contains reports whether the window [off, off+length) lies fully within
// the view without allocating or erroring.
func (v *View) Contains(off, length int) bool {
	return off >= 0 && length >= 0 && off+length <= len(v.buf)
}

// Uint32 decodes a big-endian uint32 at off.
func (v *View) Uint32(off int) (uint32, error) {
	w, err := v.Slice(off, 4)
	if err != nil {
		return 0, err
	}
	return uint32(w[0])<<24 | uint32(w[1])<<16 | uint32(w[2])<<8 | uint32(w[3]), nil
}

// Int32 decodes a big-endian, signed 32-bit integer at off.
func (v *View) Int32(off int) (int32, error) {
	u, err := v.Uint32(off)
	if err != nil {
		return 0, err
	}
	return int32(u), nil
}
