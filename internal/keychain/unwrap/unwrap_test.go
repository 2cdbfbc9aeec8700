package unwrap

import (
	"crypto/cipher"
	"crypto/des"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n0fate/chainbreaker-go/internal/keychain/cryptoprim"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kcerrors"
)

func encryptBlocks(t *testing.T, key, iv, plain []byte) []byte {
	t.Helper()
	block, err := des.NewTripleDESCipher(key)
	require.NoError(t, err)
	out := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plain)
	return out
}

func pkcs7(plain []byte) []byte {
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

func TestRecoverDbKey(t *testing.T) {
	master := make([]byte, cryptoprim.KeyLen)
	iv := make([]byte, cryptoprim.BlockSize)
	dbKey := []byte("123456789012345678901234") // 24 bytes

	ct := encryptBlocks(t, master, iv, pkcs7(dbKey))
	got, err := RecoverDbKey(master, iv, ct)
	require.NoError(t, err)
	assert.Equal(t, dbKey, got)
}

func TestRecoverDbKeyTooShort(t *testing.T) {
	master := make([]byte, cryptoprim.KeyLen)
	iv := make([]byte, cryptoprim.BlockSize)
	ct := encryptBlocks(t, master, iv, pkcs7([]byte("short")))
	_, err := RecoverDbKey(master, iv, ct)
	assert.ErrorIs(t, err, kcerrors.ErrUnlockFailed)
}

// buildSymmetricKeyWrap constructs ciphertext for UnwrapSymmetricKey's
// two-stage CMS-reverse-CBC scheme, given the desired unwrapped key. It
// runs the unwrap's two decrypt stages in reverse (encrypt) order:
//
//  1. encrypt the 28-byte (junk-prefix + key) plaintext under (dbKey, recordIV)
//     to get the stage-2 ciphertext
//  2. reverse it; that becomes the first 32 bytes of the stage-1 plaintext
//  3. encrypt that under (dbKey, MagicCmsIV) to get the outer ciphertext
func buildSymmetricKeyWrap(t *testing.T, dbKey, recordIV, unwrapped []byte) []byte {
	t.Helper()
	require.Len(t, unwrapped, cryptoprim.KeyLen)

	stage2Plain := append([]byte{0xAA, 0xBB, 0xCC, 0xDD}, unwrapped...)
	require.Len(t, stage2Plain, 28)

	stage2Ciphertext := encryptBlocks(t, dbKey, recordIV, pkcs7(stage2Plain))
	require.Len(t, stage2Ciphertext, 32)

	stage1Plain := pkcs7(reverse(stage2Ciphertext))
	return encryptBlocks(t, dbKey, MagicCmsIV[:], stage1Plain)
}

func TestUnwrapSymmetricKey(t *testing.T) {
	dbKey := make([]byte, cryptoprim.KeyLen)
	recordIV := make([]byte, cryptoprim.BlockSize)
	want := []byte("abcdefghijklmnopqrstuvwx") // 24 bytes

	ct := buildSymmetricKeyWrap(t, dbKey, recordIV, want)
	got, err := UnwrapSymmetricKey(dbKey, recordIV, ct)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestUnwrapSymmetricKeyBadCiphertext(t *testing.T) {
	dbKey := make([]byte, cryptoprim.KeyLen)
	recordIV := make([]byte, cryptoprim.BlockSize)
	_, err := UnwrapSymmetricKey(dbKey, recordIV, []byte{0x01, 0x02})
	assert.ErrorIs(t, err, kcerrors.ErrDecryptFailed)
}

func TestUnwrapPrivateKey(t *testing.T) {
	dbKey := make([]byte, cryptoprim.KeyLen)
	recordIV := make([]byte, cryptoprim.BlockSize)

	keyName := []byte("123456789012") // 12 bytes
	body := []byte("private-key-body-bytes")
	stage2Plain := append(append([]byte{}, keyName...), body...)

	stage2Ciphertext := encryptBlocks(t, dbKey, recordIV, pkcs7(stage2Plain))
	stage1Plain := pkcs7(reverse(stage2Ciphertext))
	ct := encryptBlocks(t, dbKey, MagicCmsIV[:], stage1Plain)

	got, err := UnwrapPrivateKey(dbKey, recordIV, ct)
	require.NoError(t, err)
	assert.Equal(t, keyName, got.KeyName)
	assert.Equal(t, body, got.PrivateKey)
}

func TestReverse(t *testing.T) {
	assert.Equal(t, []byte{3, 2, 1}, reverse([]byte{1, 2, 3}))
	assert.Equal(t, []byte{}, reverse([]byte{}))
}
