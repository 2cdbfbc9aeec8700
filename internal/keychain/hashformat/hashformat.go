// Package hashformat renders a keychain's master-key material into the
// "$keychain$*salt*iv*cipher" line consumed by offline password-cracking
// tools, and parses it back for test round-trips.
package hashformat

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Prefix identifies the hash format.
const Prefix = "$keychain$"

// Hash is the exported material a cracker needs to brute-force a
// keychain's unlock password: the DB blob's salt and IV, and its
// encrypted key material.
type Hash struct {
	Salt   []byte
	IV     []byte
	Cipher []byte
}

// Format renders h as "$keychain$*<salt_hex>*<iv_hex>*<cipher_hex>".
func (h Hash) Format() string {
	return fmt.Sprintf("%s*%s*%s*%s", Prefix, hex.EncodeToString(h.Salt), hex.EncodeToString(h.IV), hex.EncodeToString(h.Cipher))
}

// Parse reverses Format, returning an error if line isn't well-formed.
func Parse(line string) (Hash, error) {
	if !strings.HasPrefix(line, Prefix+"*") {
		return Hash{}, fmt.Errorf("missing %q prefix", Prefix)
	}

	fields := strings.Split(strings.TrimPrefix(line, Prefix+"*"), "*")
	if len(fields) != 3 {
		return Hash{}, fmt.Errorf("expected 3 fields after prefix, got %d", len(fields))
	}

	salt, err := hex.DecodeString(fields[0])
	if err != nil {
		return Hash{}, fmt.Errorf("decoding salt: %w", err)
	}
	iv, err := hex.DecodeString(fields[1])
	if err != nil {
		return Hash{}, fmt.Errorf("decoding iv: %w", err)
	}
	cipher, err := hex.DecodeString(fields[2])
	if err != nil {
		return Hash{}, fmt.Errorf("decoding cipher: %w", err)
	}

	return Hash{Salt: salt, IV: iv, Cipher: cipher}, nil
}
