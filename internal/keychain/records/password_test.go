package records

import (
	"crypto/cipher"
	"crypto/des"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/cryptoprim"
	"github.com/n0fate/chainbreaker-go/internal/keychain/keycache"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

func pwPkcs7(plain []byte) []byte {
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

func pwEncrypt(t *testing.T, key, iv, plain []byte) []byte {
	t.Helper()
	block, err := des.NewTripleDESCipher(key)
	require.NoError(t, err)
	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plain)
	return out
}

// buildSSGPBlob builds an SSGP-encrypted payload for plain under key, along
// with the cache entry resolvePassword needs to decrypt it.
func buildSSGPBlob(t *testing.T, key, label []byte, plain []byte) []byte {
	t.Helper()
	require.Len(t, label, wire.KeyBlobLabelSize)

	iv := []byte("PWTESTIV")
	ciphertext := pwEncrypt(t, key, iv, pwPkcs7(plain))

	blob := make([]byte, 4+wire.KeyBlobLabelSize+8+len(ciphertext))
	copy(blob[0:4], wire.SSGPMagic)
	copy(blob[4:24], label)
	copy(blob[24:32], iv)
	copy(blob[32:], ciphertext)
	return blob
}

func TestResolvePasswordPlaintext(t *testing.T) {
	key := make([]byte, cryptoprim.KeyLen)
	for i := range key {
		key[i] = byte(i + 1)
	}
	label := []byte("label-for-plaintext!")
	ssgpBlob := buildSSGPBlob(t, key, label, []byte("hunter2"))

	cache := keycache.New()
	require.NoError(t, cache.Put(wire.CacheKeyFrom([4]byte{'s', 's', 'g', 'p'}, label), key))

	headerSize := 8
	full := append(make([]byte, headerSize), ssgpBlob...)
	v := binview.New(full)

	state := resolvePassword(v, 0, headerSize, uint32(len(full)), uint32(len(ssgpBlob)), cache)
	assert.Equal(t, PasswordPlaintext, state.Kind)
	assert.Equal(t, "hunter2", state.Value)
}

func TestResolvePasswordBinaryIsBase64Encoded(t *testing.T) {
	key := make([]byte, cryptoprim.KeyLen)
	for i := range key {
		key[i] = byte(0x30 + i)
	}
	label := []byte("label-for-binary-pw!")
	plain := []byte{0x00, 0x01, 0xFE, 0xFF}
	ssgpBlob := buildSSGPBlob(t, key, label, plain)

	cache := keycache.New()
	require.NoError(t, cache.Put(wire.CacheKeyFrom([4]byte{'s', 's', 'g', 'p'}, label), key))

	headerSize := 8
	full := append(make([]byte, headerSize), ssgpBlob...)
	v := binview.New(full)

	state := resolvePassword(v, 0, headerSize, uint32(len(full)), uint32(len(ssgpBlob)), cache)
	assert.Equal(t, PasswordBase64, state.Kind)
	assert.Equal(t, "AAH+/w==", state.Value)
}

func TestResolvePasswordNoCacheEntryIsLocked(t *testing.T) {
	key := make([]byte, cryptoprim.KeyLen)
	label := []byte("label-not-in-cache!!")
	ssgpBlob := buildSSGPBlob(t, key, label, []byte("hunter2"))

	cache := keycache.New() // nothing cached

	headerSize := 8
	full := append(make([]byte, headerSize), ssgpBlob...)
	v := binview.New(full)

	state := resolvePassword(v, 0, headerSize, uint32(len(full)), uint32(len(ssgpBlob)), cache)
	assert.Equal(t, PasswordLocked, state.Kind)
	assert.Equal(t, LockedSentinel, state.String())
}
