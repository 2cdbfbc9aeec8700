// Package cryptoprim implements the two cryptographic primitives the
// unwrap engine is built from: PBKDF2-HMAC-SHA1 master-key derivation and
// Triple-DES CBC decryption with PKCS#7 padding validation.
//
// Grounded on golang.org/x/crypto/pbkdf2 (used the same way by
// other_examples/394eebef_galaxy001-onepassword__crypto-crypto.go) for key
// derivation, and the standard library's crypto/des (used the same way by
// other_examples/09ced065_1ph-sim_reader__card-globalplatform_scp02.go)
// for Triple-DES. No example repo ships a third-party Triple-DES
// implementation, so crypto/des is used directly here rather than through
// an ecosystem wrapper.
package cryptoprim

import (
	"crypto/cipher"
	"crypto/des"
	"crypto/sha1"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/n0fate/chainbreaker-go/internal/keychain/kcerrors"
)

// Iterations is the fixed PBKDF2 iteration count the legacy keychain
// format uses for master-key derivation.
const Iterations = 1000

// KeyLen is the length, in bytes, of every Triple-DES key this format
// uses: the master key, the database key, and every unwrapped per-record
// key.
const KeyLen = 24

// BlockSize is the Triple-DES (DES) cipher block size.
const BlockSize = des.BlockSize // 8

// DeriveMasterKey derives the 24-byte master key from a UTF-8 password
// and the DB blob's 20-byte salt via PBKDF2-HMAC-SHA1.
func DeriveMasterKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, KeyLen, sha1.New)
}

// Decrypt performs Triple-DES CBC decryption of data under key/iv and
// validates PKCS#7 padding on the result. The padding rule is the
// standard one: the last byte p must satisfy 1<=p<=8 and the trailing p
// bytes must all equal p. Any violation, or a ciphertext length that
// isn't a multiple of BlockSize, yields ErrDecryptFailed rather than a
// truncated or empty plaintext.
//
// Note: a pad==0 byte strips nothing and can mask a wrong key being
// accepted as valid; this implementation enforces the standard 1..=8 rule
// to rule that out. See the design notes for this deliberate choice.
func Decrypt(key, iv, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty ciphertext", kcerrors.ErrDecryptFailed)
	}
	if len(data)%BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a multiple of %d", kcerrors.ErrDecryptFailed, len(data), BlockSize)
	}

	block, err := des.NewTripleDESCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: constructing triple-des cipher: %v", kcerrors.ErrDecryptFailed, err)
	}

	plain := make([]byte, len(data))
	cbc := cipher.NewCBCDecrypter(block, iv)
	cbc.CryptBlocks(plain, data)

	return stripPKCS7(plain)
}

func stripPKCS7(plain []byte) ([]byte, error) {
	if len(plain) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", kcerrors.ErrDecryptFailed)
	}

	pad := int(plain[len(plain)-1])
	if pad < 1 || pad > BlockSize || pad > len(plain) {
		return nil, fmt.Errorf("%w: bad padding byte 0x%02x", kcerrors.ErrDecryptFailed, plain[len(plain)-1])
	}
	for _, b := range plain[len(plain)-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("%w: inconsistent padding bytes", kcerrors.ErrDecryptFailed)
		}
	}

	return plain[:len(plain)-pad], nil
}
