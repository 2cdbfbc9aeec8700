package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
)

func TestDecodeDbBlobAndCiphertext(t *testing.T) {
	cipherLen := 16
	total := DbBlobHeaderSize + cipherLen
	buf := make([]byte, total)

	putBE32(buf[0:4], 1)                                   // Version
	putBE32(buf[4:8], uint32(DbBlobHeaderSize))             // CryptoOffset
	putBE32(buf[8:12], uint32(DbBlobHeaderSize+cipherLen))  // TotalLength
	copy(buf[DbBlobHeaderSize:], []byte("0123456789abcdef"))

	v := binview.New(buf)
	b, err := DecodeDbBlob(v, 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), b.Version)
	assert.Equal(t, uint32(DbBlobHeaderSize), b.CryptoOffset)

	ct, err := b.Ciphertext(v, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("0123456789abcdef"), ct)
}

func TestDecodeSymmetricKeyRecordHeader(t *testing.T) {
	buf := make([]byte, 4)
	putBE32(buf, 128)
	h, err := DecodeSymmetricKeyRecordHeader(binview.New(buf), 0)
	require.NoError(t, err)
	assert.Equal(t, uint32(128), h.RecordSize)
}

// buildKeyBlobPayload lays out a key blob's common preface, IV,
// ciphertext, and trailing label, stamping StartCryptoBlob/TotalLength
// into the preface the way a real key blob carries them on disk.
func buildKeyBlobPayload(magic string, iv [8]byte, ciphertext, label []byte) ([]byte, uint32) {
	total := KeyBlobHeaderSize + len(ciphertext)
	payload := make([]byte, total+8+len(label))
	copy(payload[0:4], magic)
	putBE32(payload[8:12], uint32(KeyBlobHeaderSize))
	putBE32(payload[12:16], uint32(total))
	copy(payload[KeyBlobCommonSize:KeyBlobCommonSize+8], iv[:])
	copy(payload[KeyBlobHeaderSize:], ciphertext)
	copy(payload[total+8:], label)
	return payload, uint32(total)
}

func TestDecodeKeyBlobRoundTrip(t *testing.T) {
	var iv [8]byte
	copy(iv[:], "ABCDEFGH")
	ciphertext := []byte("0123456789abcdef") // 16 bytes
	label := make([]byte, KeyBlobLabelSize)
	copy(label, "my-label")

	payload, total := buildKeyBlobPayload(SSGPMagic, iv, ciphertext, label)

	kb, err := DecodeKeyBlob(payload)
	require.NoError(t, err)
	assert.True(t, kb.HasSSGPMagic())
	assert.Equal(t, iv, kb.IV)
	assert.Equal(t, uint32(KeyBlobHeaderSize), kb.StartCryptoBlob)
	assert.Equal(t, total, kb.TotalLength)

	gotCt, err := kb.Ciphertext(payload)
	require.NoError(t, err)
	assert.Equal(t, ciphertext, gotCt)

	gotLabel, err := kb.Label(payload)
	require.NoError(t, err)
	assert.Equal(t, label, gotLabel)
}

func TestDecodeKeyBlobTooShort(t *testing.T) {
	_, err := DecodeKeyBlob(make([]byte, 4))
	assert.Error(t, err)
}

func TestKeyBlobCiphertextEscapesPayload(t *testing.T) {
	var iv [8]byte
	payload, _ := buildKeyBlobPayload(SSGPMagic, iv, []byte("0123456789abcdef"), make([]byte, KeyBlobLabelSize))
	putBE32(payload[12:16], uint32(len(payload)+100)) // corrupt TotalLength past the end
	kb, err := DecodeKeyBlob(payload)
	require.NoError(t, err)
	_, err = kb.Ciphertext(payload)
	assert.Error(t, err)
}

func TestDecodeSSGPAndCacheKey(t *testing.T) {
	buf := make([]byte, SSGPHeaderSize+8)
	copy(buf[0:4], SSGPMagic)
	copy(buf[4:24], "abcdefghijklmnopqrst")
	copy(buf[24:32], "IVBYTES!")
	copy(buf[SSGPHeaderSize:], "ciphertx")

	s, ct, err := DecodeSSGP(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("ciphertx"), ct)

	key := s.CacheKey()
	var want [24]byte
	copy(want[0:4], SSGPMagic)
	copy(want[4:24], "abcdefghijklmnopqrst")
	assert.Equal(t, want, key)
}

func TestCacheKeyFrom(t *testing.T) {
	var magic [4]byte
	copy(magic[:], "ssgp")
	label := []byte("01234567890123456789")
	got := CacheKeyFrom(magic, label)

	var want [24]byte
	copy(want[0:4], magic[:])
	copy(want[4:24], label)
	assert.Equal(t, want, got)
}

func TestDecodeUnlockBlob(t *testing.T) {
	buf := make([]byte, UnlockBlobKeySize+10)
	for i := 0; i < UnlockBlobKeySize; i++ {
		buf[i] = byte(i)
	}

	key, err := DecodeUnlockBlob(buf)
	require.NoError(t, err)
	for i := 0; i < UnlockBlobKeySize; i++ {
		assert.Equal(t, byte(i), key[i])
	}
}

func TestDecodeUnlockBlobTooShort(t *testing.T) {
	_, err := DecodeUnlockBlob(make([]byte, 5))
	assert.Error(t, err)
}
