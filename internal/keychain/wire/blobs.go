package wire

import (
	"bytes"
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kcerrors"
)

// SSGPMagic is the 4-byte magic shared by the key-blob common preface and
// the SSGP password payload.
const SSGPMagic = "ssgp"

// DbBlobOffsetInMetaRecord is the fixed byte offset of the DB blob from
// the start of the meta table itself (not from any record offset within
// it), inherited from the original format.
const DbBlobOffsetInMetaRecord = 0x38

// DbBlobHeaderSize is the on-disk size of DbBlob's fixed fields, before
// the embedded ciphertext.
const DbBlobHeaderSize = 64

// DbBlob is the encrypted blob in the meta table that holds the wrapped
// database encryption key.
type DbBlob struct {
	Version         uint32
	CryptoOffset    uint32 // start of ciphertext, relative to the blob start
	TotalLength     uint32 // end of ciphertext, relative to the blob start
	RandomSignature [16]byte
	Sequence        uint32
	IterationCount  uint32
	Salt            [20]byte
	IV              [8]byte
}

// DecodeDbBlob decodes a DbBlob at absolute offset base.
func DecodeDbBlob(v *binview.View, base int) (*DbBlob, error) {
	raw, err := v.Slice(base, DbBlobHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decoding db blob: %w", err)
	}
	b := &DbBlob{}
	fs := fieldScanner{raw: raw}
	b.Version = fs.u32()
	b.CryptoOffset = fs.u32()
	b.TotalLength = fs.u32()
	copy(b.RandomSignature[:], raw[fs.pos:fs.pos+16])
	fs.pos += 16
	b.Sequence = fs.u32()
	b.IterationCount = fs.u32()
	copy(b.Salt[:], raw[fs.pos:fs.pos+20])
	fs.pos += 20
	copy(b.IV[:], raw[fs.pos:fs.pos+8])
	fs.pos += 8
	return b, nil
}

// Ciphertext returns the DB blob's ciphertext region, sliced from the
// view relative to the blob's base offset.
func (b *DbBlob) Ciphertext(v *binview.View, base int) ([]byte, error) {
	start := base + int(b.CryptoOffset)
	length := int(b.TotalLength) - int(b.CryptoOffset)
	raw, err := v.Slice(start, length)
	if err != nil {
		return nil, fmt.Errorf("slicing db blob ciphertext: %w", err)
	}
	return raw, nil
}

// SymmetricKeyRecordHeaderSize is the on-disk size of
// SymmetricKeyRecordHeader, the minimal record header preceding a
// symmetric-key record's KeyBlob payload.
const SymmetricKeyRecordHeaderSize = 4

// SymmetricKeyRecordHeader is the fixed header of a
// CSSM_DL_DB_RECORD_SYMMETRIC_KEY record: unlike the other record kinds it
// carries no column pointers of its own, only the record_size that bounds
// the embedded KeyBlob.
type SymmetricKeyRecordHeader struct {
	RecordSize uint32
}

// DecodeSymmetricKeyRecordHeader decodes a SymmetricKeyRecordHeader at
// absolute offset base.
func DecodeSymmetricKeyRecordHeader(v *binview.View, base int) (*SymmetricKeyRecordHeader, error) {
	size, err := v.Uint32(base)
	if err != nil {
		return nil, fmt.Errorf("decoding symmetric key record header: %w", err)
	}
	return &SymmetricKeyRecordHeader{RecordSize: size}, nil
}

// KeyBlobCommonSize is the size of the common preface shared by every
// wrapped key-blob record: a 4-byte magic, 4 bytes this reader does not
// interpret, StartCryptoBlob and TotalLength (both uint32), and 8
// reserved bytes.
const KeyBlobCommonSize = 24

// KeyBlobHeaderSize is KeyBlobCommonSize plus the 8-byte IV that follows
// it, before the ciphertext begins.
const KeyBlobHeaderSize = KeyBlobCommonSize + 8

// KeyBlobLabelSize is the size of the label following a key blob's body.
const KeyBlobLabelSize = 20

// KeyBlob is a wrapped per-record key, as stored in the payload of a
// CSSM_DL_DB_RECORD_SYMMETRIC_KEY, _PRIVATE_KEY, or _PUBLIC_KEY record.
// StartCryptoBlob and TotalLength are themselves fields of the common
// preface, not derived from the enclosing record's own size: a key blob
// is self-describing about where its ciphertext starts and ends.
type KeyBlob struct {
	Magic           [4]byte
	StartCryptoBlob uint32 // start of ciphertext, relative to the payload start
	TotalLength     uint32 // end of ciphertext, relative to the payload start
	IV              [8]byte
}

// DecodeKeyBlob decodes a key blob's common preface and IV from payload
// (the record body following its fixed header).
func DecodeKeyBlob(payload []byte) (*KeyBlob, error) {
	if len(payload) < KeyBlobHeaderSize {
		return nil, fmt.Errorf("%w: key blob shorter than header", kcerrors.ErrMalformedContainer)
	}
	kb := &KeyBlob{}
	copy(kb.Magic[:], payload[0:4])
	kb.StartCryptoBlob = be32(payload[8:12])
	kb.TotalLength = be32(payload[12:16])
	copy(kb.IV[:], payload[KeyBlobCommonSize:KeyBlobCommonSize+8])
	return kb, nil
}

// Ciphertext returns the key blob's ciphertext region within payload.
func (kb *KeyBlob) Ciphertext(payload []byte) ([]byte, error) {
	start := int(kb.StartCryptoBlob)
	end := int(kb.TotalLength)
	if start < 0 || start > end || end > len(payload) {
		return nil, fmt.Errorf("%w: key blob ciphertext [%d:%d) escapes payload of length %d",
			kcerrors.ErrMalformedContainer, start, end, len(payload))
	}
	return payload[start:end], nil
}

// Label returns the 20-byte label immediately following the key blob
// body, at payload offset TotalLength+8.
func (kb *KeyBlob) Label(payload []byte) ([]byte, error) {
	start := int(kb.TotalLength) + 8
	end := start + KeyBlobLabelSize
	if start < 0 || end > len(payload) {
		return nil, fmt.Errorf("%w: key blob label [%d:%d) escapes payload of length %d",
			kcerrors.ErrMalformedContainer, start, end, len(payload))
	}
	return payload[start:end], nil
}

// HasSSGPMagic reports whether the key blob's common preface carries the
// expected "ssgp" magic.
func (kb *KeyBlob) HasSSGPMagic() bool {
	return bytes.Equal(kb.Magic[:], []byte(SSGPMagic))
}

// SSGPHeaderSize is the fixed size of an SSGP blob's header, before its
// ciphertext.
const SSGPHeaderSize = 4 + KeyBlobLabelSize + 8

// SSGP is the encrypted password payload format: a cache key (magic +
// label) and an IV, followed by ciphertext to the end of the buffer.
type SSGP struct {
	Magic [4]byte
	Label [20]byte
	IV    [8]byte
}

// DecodeSSGP decodes an SSGP blob from buf and returns it along with its
// ciphertext (the remainder of buf after the header).
func DecodeSSGP(buf []byte) (*SSGP, []byte, error) {
	if len(buf) < SSGPHeaderSize {
		return nil, nil, fmt.Errorf("%w: ssgp blob shorter than header", kcerrors.ErrMalformedContainer)
	}
	s := &SSGP{}
	copy(s.Magic[:], buf[0:4])
	copy(s.Label[:], buf[4:24])
	copy(s.IV[:], buf[24:32])
	return s, buf[SSGPHeaderSize:], nil
}

// CacheKey returns the (magic || label) pair used to index the key cache.
func (s *SSGP) CacheKey() [24]byte {
	var k [24]byte
	copy(k[0:4], s.Magic[:])
	copy(k[4:24], s.Label[:])
	return k
}

// CacheKeyFrom builds a (magic || label) key-cache key from a raw 4-byte
// magic and a 20-byte label, the same pairing SSGP.CacheKey uses.
func CacheKeyFrom(magic [4]byte, label []byte) [24]byte {
	var k [24]byte
	copy(k[0:4], magic[:])
	copy(k[4:24], label)
	return k
}

// UnlockBlobKeySize is the size of the master key carried by an
// unlock-file.
const UnlockBlobKeySize = 24

// DecodeUnlockBlob extracts the 24-byte master key from the start of an
// unlock-file's contents; the remainder of the file is ignored.
func DecodeUnlockBlob(buf []byte) ([UnlockBlobKeySize]byte, error) {
	var key [UnlockBlobKeySize]byte
	if len(buf) < UnlockBlobKeySize {
		return key, fmt.Errorf("%w: unlock file shorter than master key", kcerrors.ErrMalformedContainer)
	}
	copy(key[:], buf[:UnlockBlobKeySize])
	return key, nil
}
