package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/n0fate/chainbreaker-go/internal/keychain"
)

// UnlockSecret names which of the three mutually-exclusive unlock inputs
// a caller supplied.
type UnlockSecret struct {
	Password   string
	HexKey     string
	UnlockFile string
}

// IsEmpty reports whether no unlock secret was supplied.
func (s UnlockSecret) IsEmpty() bool {
	return s.Password == "" && s.HexKey == "" && s.UnlockFile == ""
}

// Apply resolves and applies whichever single secret is set, leaving kc
// in StateLoaded on failure rather than returning early: a wrong
// password is reported to the caller but is never fatal to dumping
// plaintext metadata.
func (s UnlockSecret) Apply(kc *keychain.Keychain) error {
	switch {
	case s.Password != "":
		return kc.UnlockWithPassword(s.Password)
	case s.HexKey != "":
		return kc.UnlockWithHexKey(s.HexKey)
	case s.UnlockFile != "":
		data, err := os.ReadFile(s.UnlockFile)
		if err != nil {
			return NewError(ErrCodeIO, "reading unlock file", err)
		}
		return kc.UnlockWithFile(data)
	default:
		return nil
	}
}

// PromptPassword reads a password from stdin with no echo suppression.
// Prompting is a collaborator concern the core never performs; this is a
// deliberately small fallback since no library in the dependency pack
// offers terminal echo control.
func PromptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", NewError(ErrCodeIO, "reading password from stdin", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
