package wire

import (
	"bytes"
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kcerrors"
)

// Signature is the 4-byte magic every valid keychain file starts with.
const Signature = "kych"

// HeaderSize is the fixed, on-disk size of AppDBHeader.
const HeaderSize = 20

// AppDBHeader is the application-DB header at offset 0 of the file.
type AppDBHeader struct {
	Signature    [4]byte
	Version      uint32
	HeaderSize   uint32
	SchemaOffset uint32
	AuthOffset   uint32
}

// DecodeAppDBHeader decodes the fixed application-DB header from the
// start of v and validates the "kych" signature. A signature mismatch or
// short buffer is fatal: ErrMalformedContainer.
func DecodeAppDBHeader(v *binview.View) (*AppDBHeader, error) {
	raw, err := v.Slice(0, HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decoding app-db header: %w", err)
	}

	h := &AppDBHeader{}
	copy(h.Signature[:], raw[0:4])
	if !bytes.Equal(h.Signature[:], []byte(Signature)) {
		return nil, fmt.Errorf("%w: bad signature %q", kcerrors.ErrMalformedContainer, h.Signature[:])
	}

	h.Version = be32(raw[4:8])
	h.HeaderSize = be32(raw[8:12])
	h.SchemaOffset = be32(raw[12:16])
	h.AuthOffset = be32(raw[16:20])

	return h, nil
}

func be32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
