// Package unwrap implements the three key-recovery operations built on
// cryptoprim.Decrypt: database-key recovery from a master key, the
// two-stage "reverse-32" unwrap of per-record symmetric keys, and the
// equivalent unwrap for private-key blobs.
package unwrap

import (
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/cryptoprim"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kcerrors"
)

// MagicCmsIV is the fixed IV used for the first decryption stage of a
// key-blob or private-key unwrap, named wrapKeyCms in Apple's original
// AppleCSP source.
var MagicCmsIV = [8]byte{0x4a, 0xdd, 0xa2, 0x2c, 0x79, 0xe8, 0x21, 0x05}

// RecoverDbKey decrypts the DB blob's ciphertext under the master key and
// the DB blob's own IV, returning the first KeyLen bytes of plaintext as
// the database key. Fails with ErrUnlockFailed if the padding is invalid
// or the plaintext is shorter than KeyLen.
func RecoverDbKey(masterKey, dbBlobIV, ciphertext []byte) ([]byte, error) {
	plain, err := cryptoprim.Decrypt(masterKey, dbBlobIV, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: recovering db key: %v", kcerrors.ErrUnlockFailed, err)
	}
	if len(plain) < cryptoprim.KeyLen {
		return nil, fmt.Errorf("%w: db key plaintext too short (%d bytes)", kcerrors.ErrUnlockFailed, len(plain))
	}
	return plain[:cryptoprim.KeyLen], nil
}

// reverse returns a copy of b with its byte order reversed.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		out[len(b)-1-i] = c
	}
	return out
}

// UnwrapSymmetricKey implements the CMS-reverse-CBC unwrap for
// CSSM_DL_DB_RECORD_SYMMETRIC_KEY records:
//  1. decrypt ciphertext under (dbKey, MagicCmsIV)
//  2. reverse the first 32 bytes of that plaintext
//  3. decrypt those 32 reversed bytes under (dbKey, iv)
//  4. drop the first 4 bytes; the remainder is the unwrapped key
//
// Any stage failing (bad padding, short plaintext) yields ErrDecryptFailed.
func UnwrapSymmetricKey(dbKey, iv, ciphertext []byte) ([]byte, error) {
	stage1, err := cryptoprim.Decrypt(dbKey, MagicCmsIV[:], ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: key-blob stage 1: %v", kcerrors.ErrDecryptFailed, err)
	}
	if len(stage1) < 32 {
		return nil, fmt.Errorf("%w: key-blob stage 1 plaintext too short (%d bytes)", kcerrors.ErrDecryptFailed, len(stage1))
	}

	reversed := reverse(stage1[:32])

	stage2, err := cryptoprim.Decrypt(dbKey, iv, reversed)
	if err != nil {
		return nil, fmt.Errorf("%w: key-blob stage 2: %v", kcerrors.ErrDecryptFailed, err)
	}
	if len(stage2) < 4+cryptoprim.KeyLen {
		return nil, fmt.Errorf("%w: unwrapped key too short (%d bytes)", kcerrors.ErrDecryptFailed, len(stage2))
	}

	return stage2[4 : 4+cryptoprim.KeyLen], nil
}

// PrivateKeyUnwrap is the result of unwrapping a private-key blob: the
// 12-byte key name prefix the Keychain Access "copy key" action records,
// and the remaining raw private-key bytes.
type PrivateKeyUnwrap struct {
	KeyName    []byte
	PrivateKey []byte
}

// UnwrapPrivateKey implements the same two-stage CMS-reverse-CBC unwrap
// as UnwrapSymmetricKey, but reversal spans the full first-stage
// plaintext and the result splits as 12 bytes of KeyName followed by the
// remainder as the private-key body.
func UnwrapPrivateKey(dbKey, iv, ciphertext []byte) (*PrivateKeyUnwrap, error) {
	stage1, err := cryptoprim.Decrypt(dbKey, MagicCmsIV[:], ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: private-key stage 1: %v", kcerrors.ErrDecryptFailed, err)
	}
	if len(stage1) == 0 {
		return nil, fmt.Errorf("%w: private-key stage 1 plaintext empty", kcerrors.ErrDecryptFailed)
	}

	reversed := reverse(stage1)

	stage2, err := cryptoprim.Decrypt(dbKey, iv, reversed)
	if err != nil {
		return nil, fmt.Errorf("%w: private-key stage 2: %v", kcerrors.ErrDecryptFailed, err)
	}
	if len(stage2) < 12 {
		return nil, fmt.Errorf("%w: private-key plaintext too short (%d bytes)", kcerrors.ErrDecryptFailed, len(stage2))
	}

	return &PrivateKeyUnwrap{
		KeyName:    stage2[:12],
		PrivateKey: stage2[12:],
	}, nil
}
