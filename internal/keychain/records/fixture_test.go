package records

import (
	"time"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/tableindex"
)

// emptyIndex returns a tableindex.Index with no tables registered, for
// exercising the "missing table" path of each per-kind iterator.
func emptyIndex() (*tableindex.Index, error) {
	return tableindex.Build(binview.New(nil), nil)
}

// fieldBuilder appends column payloads after a fixed-size record header
// and records each field's pointer (byte offset relative to the record
// start), the same layout DecodeGenericPasswordHeader and its siblings
// expect their column fields to reference.
type fieldBuilder struct {
	buf []byte
}

func newFieldBuilder(headerSize int) *fieldBuilder {
	return &fieldBuilder{buf: make([]byte, headerSize)}
}

func (fb *fieldBuilder) lv(data []byte) uint32 {
	ptr := uint32(len(fb.buf))
	length := make([]byte, 4)
	length[3] = byte(len(data)) // test fixtures never need lengths >= 256
	fb.buf = append(fb.buf, length...)
	fb.buf = append(fb.buf, data...)
	if pad := (4 - len(data)%4) % 4; pad > 0 {
		fb.buf = append(fb.buf, make([]byte, pad)...)
	}
	return ptr
}

func (fb *fieldBuilder) fourCC(code string) uint32 {
	ptr := uint32(len(fb.buf))
	fb.buf = append(fb.buf, []byte(code)...)
	return ptr
}

func (fb *fieldBuilder) keychainTime(t time.Time) uint32 {
	ptr := uint32(len(fb.buf))
	fb.buf = append(fb.buf, []byte(t.UTC().Format("20060102150405Z"))...)
	fb.buf = append(fb.buf, 0) // reserved 16th byte, ignored by the decoder
	return ptr
}

func (fb *fieldBuilder) int32Field(v int32) uint32 {
	ptr := uint32(len(fb.buf))
	u := uint32(v)
	fb.buf = append(fb.buf, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
	return ptr
}

func (fb *fieldBuilder) raw(data []byte) uint32 {
	ptr := uint32(len(fb.buf))
	fb.buf = append(fb.buf, data...)
	return ptr
}

func putBE32(buf []byte, off int, v uint32) {
	buf[off] = byte(v >> 24)
	buf[off+1] = byte(v >> 16)
	buf[off+2] = byte(v >> 8)
	buf[off+3] = byte(v)
}
