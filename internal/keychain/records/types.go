// Package records implements the per-record-kind iterators that produce
// the reader's public record values: the six tagged variants named in the
// keychain data model, each carrying its extracted columns and, for
// password and private-key kinds, decrypted (or locked) key material.
package records

import "time"

// PasswordKind distinguishes how a password-bearing field should be
// rendered.
type PasswordKind int

const (
	// PasswordLocked means no DB key or cache entry was available, or
	// decryption failed; the sentinel "[Invalid Password / Keychain
	// Locked]" is the user-visible rendering of this state.
	PasswordLocked PasswordKind = iota
	// PasswordPlaintext means the decrypted payload was fully printable
	// ASCII and is carried as-is.
	PasswordPlaintext
	// PasswordBase64 means the decrypted payload contained non-printable
	// bytes and is carried standard-base64-encoded.
	PasswordBase64
)

// LockedSentinel is the user-visible rendering of a locked password or
// private-key field.
const LockedSentinel = "[Invalid Password / Keychain Locked]"

// PasswordState is the locked|plaintext|base64 state of a decrypted
// password payload.
type PasswordState struct {
	Kind  PasswordKind
	Value string // empty when Kind == PasswordLocked
}

// String renders the password state the way a collaborator formatter
// would display it.
func (p PasswordState) String() string {
	if p.Kind == PasswordLocked {
		return LockedSentinel
	}
	return p.Value
}

// GenericPasswordRecord is a CSSM_DL_DB_RECORD_GENERIC_PASSWORD record.
type GenericPasswordRecord struct {
	Created      time.Time
	LastModified time.Time
	Description  string
	Creator      string
	Type         string
	PrintName    string
	Alias        string
	Account      string
	Service      string
	Password     PasswordState
}

// InternetPasswordRecord is a CSSM_DL_DB_RECORD_INTERNET_PASSWORD record.
type InternetPasswordRecord struct {
	Created        time.Time
	LastModified   time.Time
	Description    string
	Comment        string
	Creator        string
	Type           string
	PrintName      string
	Alias          string
	Protected      string
	Account        string
	SecurityDomain string
	Server         string
	ProtocolType   string
	AuthType       string
	Port           int32
	Path           string
	Password       PasswordState
}

// AppleShareRecord is a CSSM_DL_DB_RECORD_APPLESHARE_PASSWORD record. The
// format is no longer produced by modern macOS but legacy keychains may
// still carry one.
type AppleShareRecord struct {
	Created      time.Time
	LastModified time.Time
	Description  string
	Comment      string
	Creator      string
	Type         string
	PrintName    string
	Alias        string
	Protected    string
	Account      string
	Volume       string
	Server       string
	ProtocolType string
	Address      []byte // declared LV in the header; see design notes
	Signature    string
	Password     PasswordState
}

// X509CertificateRecord is a CSSM_DL_DB_RECORD_X509_CERTIFICATE record. No
// certificate parsing is performed beyond extracting the raw DER blob.
type X509CertificateRecord struct {
	Type                 int32
	Encoding             int32
	PrintName            string
	Alias                string
	Subject              []byte
	Issuer               []byte
	SerialNumber         []byte
	SubjectKeyIdentifier []byte
	PublicKeyHash        []byte
	DER                  []byte
}

// PublicKeyRecord is a CSSM_DL_DB_RECORD_PUBLIC_KEY record. Public keys
// never require unwrapping.
type PublicKeyRecord struct {
	PrintName        string
	Label            []byte
	KeyClass         int32
	Private          int32
	KeyType          int32
	KeySizeInBits    int32
	EffectiveKeySize int32
	Extractable      int32
	KeyCreator       string
	Key              []byte
}

// PrivateKeyRecord is a CSSM_DL_DB_RECORD_PRIVATE_KEY record. KeyName
// and KeyBody are unwrapped only when a DB key is known; otherwise the
// record reports Locked and KeyBody is nil.
type PrivateKeyRecord struct {
	PrintName        string
	Label            []byte
	KeyClass         int32
	Private          int32
	KeyType          int32
	KeySizeInBits    int32
	EffectiveKeySize int32
	Extractable      int32
	KeyCreator       string
	Locked           bool
	KeyName          []byte
	KeyBody          []byte
}
