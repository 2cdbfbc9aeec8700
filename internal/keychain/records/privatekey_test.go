package records

import (
	"crypto/cipher"
	"crypto/des"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/cryptoprim"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/unwrap"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

func reversePK(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

func pkcs7PK(plain []byte) []byte {
	pad := cryptoprim.BlockSize - len(plain)%cryptoprim.BlockSize
	if pad == 0 {
		pad = cryptoprim.BlockSize
	}
	out := append(append([]byte{}, plain...), make([]byte, pad)...)
	for i := len(out) - pad; i < len(out); i++ {
		out[i] = byte(pad)
	}
	return out
}

func encryptPK(t *testing.T, key, iv, plain []byte) []byte {
	t.Helper()
	block, err := des.NewTripleDESCipher(key)
	require.NoError(t, err)
	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plain)
	return out
}

// buildPrivateKeyWrap returns the ciphertext that unwrap.UnwrapPrivateKey
// recovers keyName/body from, under dbKey and recordIV.
func buildPrivateKeyWrap(t *testing.T, dbKey, recordIV, keyName, body []byte) []byte {
	t.Helper()
	stage2Plain := append(append([]byte{}, keyName...), body...)
	stage2Ciphertext := encryptPK(t, dbKey, recordIV, pkcs7PK(stage2Plain))
	stage1Plain := pkcs7PK(reversePK(stage2Ciphertext))
	return encryptPK(t, dbKey, unwrap.MagicCmsIV[:], stage1Plain)
}

// putBE32PK writes v as a big-endian uint32 into b[0:4].
func putBE32PK(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func buildKeyBlobPayload(magic string, iv [8]byte, ciphertext []byte) ([]byte, uint32) {
	blobSize := wire.KeyBlobHeaderSize + len(ciphertext)
	payload := make([]byte, blobSize)
	copy(payload[0:4], magic)
	putBE32PK(payload[8:12], uint32(wire.KeyBlobHeaderSize))
	putBE32PK(payload[12:16], uint32(blobSize))
	copy(payload[wire.KeyBlobCommonSize:wire.KeyBlobCommonSize+8], iv[:])
	copy(payload[wire.KeyBlobHeaderSize:], ciphertext)
	return payload, uint32(blobSize)
}

func buildSecKeyHeaderFields(fb *fieldBuilder) (printNamePtr, labelPtr, keyClassPtr, privatePtr, keyTypePtr, keySizePtr, effSizePtr, extractablePtr, keyCreatorPtr uint32) {
	printNamePtr = fb.lv([]byte("my private key"))
	labelPtr = fb.lv([]byte("label-bytes"))
	keyClassPtr = fb.int32Field(1)
	privatePtr = fb.int32Field(1)
	keyTypePtr = fb.int32Field(0x0000000F) // 3DES
	keySizePtr = fb.int32Field(192)
	effSizePtr = fb.int32Field(192)
	extractablePtr = fb.int32Field(0)
	keyCreatorPtr = fb.lv([]byte("aapl"))
	return
}

func TestDecodePrivateKeyRecordLockedWithoutDbKey(t *testing.T) {
	fb := newFieldBuilder(wire.SecKeyHeaderSize)

	var iv [8]byte
	copy(iv[:], "ABCDEFGH")
	payload, blobSize := buildKeyBlobPayload(wire.SSGPMagic, iv, make([]byte, cryptoprim.BlockSize*2))
	fb.raw(payload)

	printNamePtr, labelPtr, keyClassPtr, privatePtr, keyTypePtr, keySizePtr, effSizePtr, extractablePtr, keyCreatorPtr := buildSecKeyHeaderFields(fb)

	recordSize := uint32(len(fb.buf))
	putBE32(fb.buf, 0, recordSize)
	putBE32(fb.buf, 4, printNamePtr)
	putBE32(fb.buf, 8, labelPtr)
	putBE32(fb.buf, 12, keyClassPtr)
	putBE32(fb.buf, 16, privatePtr)
	putBE32(fb.buf, 20, keyTypePtr)
	putBE32(fb.buf, 24, keySizePtr)
	putBE32(fb.buf, 28, effSizePtr)
	putBE32(fb.buf, 32, extractablePtr)
	putBE32(fb.buf, 36, keyCreatorPtr)
	putBE32(fb.buf, 40, blobSize)

	full := append(make([]byte, wire.HeaderSize), fb.buf...)
	v := binview.New(full)
	scan := &tableScan{tableOffset: 0, tableStart: wire.HeaderSize, tableEnd: len(full)}

	rec, ok := decodePrivateKey(v, scan, 0, 0, nil, kclog.Nop{})
	require.True(t, ok)
	assert.True(t, rec.Locked)
	assert.Nil(t, rec.KeyBody)
}

func TestDecodePrivateKeyRecordUnlocked(t *testing.T) {
	dbKey := make([]byte, cryptoprim.KeyLen)
	var iv [8]byte
	copy(iv[:], "ABCDEFGH")

	keyName := []byte("123456789012") // 12 bytes
	body := []byte("the-private-key-body")
	ciphertext := buildPrivateKeyWrap(t, dbKey, iv[:], keyName, body)

	fb := newFieldBuilder(wire.SecKeyHeaderSize)
	payload, blobSize := buildKeyBlobPayload(wire.SSGPMagic, iv, ciphertext)
	fb.raw(payload)

	printNamePtr, labelPtr, keyClassPtr, privatePtr, keyTypePtr, keySizePtr, effSizePtr, extractablePtr, keyCreatorPtr := buildSecKeyHeaderFields(fb)

	recordSize := uint32(len(fb.buf))
	putBE32(fb.buf, 0, recordSize)
	putBE32(fb.buf, 4, printNamePtr)
	putBE32(fb.buf, 8, labelPtr)
	putBE32(fb.buf, 12, keyClassPtr)
	putBE32(fb.buf, 16, privatePtr)
	putBE32(fb.buf, 20, keyTypePtr)
	putBE32(fb.buf, 24, keySizePtr)
	putBE32(fb.buf, 28, effSizePtr)
	putBE32(fb.buf, 32, extractablePtr)
	putBE32(fb.buf, 36, keyCreatorPtr)
	putBE32(fb.buf, 40, blobSize)

	full := append(make([]byte, wire.HeaderSize), fb.buf...)
	v := binview.New(full)
	scan := &tableScan{tableOffset: 0, tableStart: wire.HeaderSize, tableEnd: len(full)}

	rec, ok := decodePrivateKey(v, scan, 0, 0, dbKey, kclog.Nop{})
	require.True(t, ok)
	assert.False(t, rec.Locked)
	assert.Equal(t, keyName, rec.KeyName)
	assert.Equal(t, body, rec.KeyBody)
}
