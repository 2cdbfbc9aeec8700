package records

import (
	"encoding/base64"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/cryptoprim"
	"github.com/n0fate/chainbreaker-go/internal/keychain/keycache"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// resolvePassword locates and, if possible, decrypts the SSGP payload
// embedded in a password-bearing record. The SSGP blob
// occupies payload[0:ssgpArea], where payload begins at
// recordStart+headerSize. A missing cache entry, bad bounds, or failed
// decrypt all yield PasswordLocked rather than an error: password state
// is always present on the returned record.
func resolvePassword(v *binview.View, recordStart, headerSize int, recordSize, ssgpArea uint32, cache *keycache.Cache) PasswordState {
	if ssgpArea == 0 {
		return PasswordState{Kind: PasswordLocked}
	}

	payloadStart := recordStart + headerSize
	payloadEnd := recordStart + int(recordSize)
	if payloadStart+int(ssgpArea) > payloadEnd {
		return PasswordState{Kind: PasswordLocked}
	}

	buf, err := v.Slice(payloadStart, int(ssgpArea))
	if err != nil {
		return PasswordState{Kind: PasswordLocked}
	}

	ssgp, ciphertext, err := wire.DecodeSSGP(buf)
	if err != nil {
		return PasswordState{Kind: PasswordLocked}
	}

	key, ok := cache.Get(ssgp.CacheKey())
	if !ok {
		return PasswordState{Kind: PasswordLocked}
	}

	plain, err := cryptoprim.Decrypt(key, ssgp.IV[:], ciphertext)
	if err != nil {
		return PasswordState{Kind: PasswordLocked}
	}

	if isPrintableASCII(plain) {
		return PasswordState{Kind: PasswordPlaintext, Value: string(plain)}
	}
	return PasswordState{Kind: PasswordBase64, Value: base64.StdEncoding.EncodeToString(plain)}
}

// isPrintableASCII reports whether every byte in b is a printable ASCII
// character (space through tilde) or common whitespace.
func isPrintableASCII(b []byte) bool {
	for _, c := range b {
		switch {
		case c >= 0x20 && c <= 0x7e:
		case c == '\t' || c == '\n' || c == '\r' || c == '\v' || c == '\f':
		default:
			return false
		}
	}
	return true
}
