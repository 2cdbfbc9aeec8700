package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

func TestDecodePublicKeyRecord(t *testing.T) {
	fb := newFieldBuilder(wire.SecKeyHeaderSize)

	keyBytes := []byte("public-key-der-bytes")
	fb.raw(keyBytes) // BlobSize-bounded body immediately follows the header

	printNamePtr := fb.lv([]byte("my rsa key"))
	labelPtr := fb.lv([]byte("label-bytes"))
	keyClassPtr := fb.int32Field(0)
	privatePtr := fb.int32Field(0)
	keyTypePtr := fb.int32Field(0x00000001) // RSA
	keySizePtr := fb.int32Field(2048)
	effectiveSizePtr := fb.int32Field(2048)
	extractablePtr := fb.int32Field(1)
	keyCreatorPtr := fb.lv([]byte("aapl"))

	recordSize := uint32(len(fb.buf))
	putBE32(fb.buf, 0, recordSize)
	putBE32(fb.buf, 4, printNamePtr)
	putBE32(fb.buf, 8, labelPtr)
	putBE32(fb.buf, 12, keyClassPtr)
	putBE32(fb.buf, 16, privatePtr)
	putBE32(fb.buf, 20, keyTypePtr)
	putBE32(fb.buf, 24, keySizePtr)
	putBE32(fb.buf, 28, effectiveSizePtr)
	putBE32(fb.buf, 32, extractablePtr)
	putBE32(fb.buf, 36, keyCreatorPtr)
	putBE32(fb.buf, 40, uint32(len(keyBytes)))

	full := append(make([]byte, wire.HeaderSize), fb.buf...)
	v := binview.New(full)
	scan := &tableScan{tableOffset: 0, tableStart: wire.HeaderSize, tableEnd: len(full)}

	rec, ok := decodePublicKey(v, scan, 0, 0, kclog.Nop{})
	require.True(t, ok)
	assert.Equal(t, "my rsa key", rec.PrintName)
	assert.Equal(t, int32(0x00000001), rec.KeyType)
	assert.Equal(t, int32(2048), rec.KeySizeInBits)
	assert.Equal(t, "APPLE", rec.KeyCreator)
	assert.Equal(t, keyBytes, rec.Key)
}
