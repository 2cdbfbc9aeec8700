// Package kcerrors defines the error taxonomy shared across the keychain
// reader core: malformed-container, missing-table, unlock and decrypt
// failures, and I/O errors.
package kcerrors

import "errors"

// Sentinel errors identifying the taxonomy from the keychain forensic
// reader design. Use errors.Is against these, or wrap them with
// fmt.Errorf("...: %w", ...) for additional context.
var (
	// ErrMalformedContainer signals a signature mismatch, bad header size,
	// or an out-of-range offset in the container itself. Fatal at load.
	ErrMalformedContainer = errors.New("malformed container")

	// ErrTableAbsent signals that a requested record kind has no table in
	// this keychain file. Non-fatal: the affected iterator returns empty.
	ErrTableAbsent = errors.New("table absent")

	// ErrUnlockFailed signals that PBKDF2/unwrap of the database key
	// produced invalid padding or too-short plaintext. Non-fatal: the
	// instance stays in the Loaded state.
	ErrUnlockFailed = errors.New("unlock failed")

	// ErrDecryptFailed signals that a per-record unwrap or SSGP decrypt
	// failed (bad padding or no cache entry). Non-fatal: the affected
	// record is reported locked.
	ErrDecryptFailed = errors.New("decrypt failed")

	// ErrIO signals the keychain file could not be opened or read. Fatal
	// at load.
	ErrIO = errors.New("io error")
)
