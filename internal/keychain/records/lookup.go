package records

import (
	"strconv"
	"strings"
)

// These lookup tables translate the raw CSSM integer codes (CSSM_ALGORITHMS,
// KEY_TYPE, PROTOCOL_TYPE, AUTH_TYPE) extracted from a record into the names
// Keychain Access shows. They are not exhaustive; an unrecognized code
// renders as its numeric form.

// keyClassNames maps a CSSM_KEYCLASS value to its conventional name.
var keyClassNames = map[int32]string{
	0: "Public Key",
	1: "Private Key",
	2: "Session Key",
}

// KeyClassName renders a key-class code, falling back to the raw value.
func KeyClassName(class int32) string {
	if name, ok := keyClassNames[class]; ok {
		return name
	}
	return strconv.Itoa(int(class))
}

// algorithmNames maps a CSSM_ALGORITHMS value to its conventional name.
var algorithmNames = map[int32]string{
	0x00000001: "RSA",
	0x00000004: "DSA",
	0x0000000F: "3DES",
	0x00000073: "AES",
	0x0000006D: "ECDSA",
}

// AlgorithmName renders a CSSM algorithm code, falling back to the raw
// value in decimal form.
func AlgorithmName(algorithm int32) string {
	if name, ok := algorithmNames[algorithm]; ok {
		return name
	}
	return strconv.Itoa(int(algorithm))
}

// protocolTypeNames maps a CSSM_NET_PROTOCOL value to its conventional
// name (subset relevant to Internet-password records).
var protocolTypeNames = map[string]string{
	"htps": "https",
	"http": "http",
	"ftp ": "ftp",
	"ftps": "ftps",
	"ssh ": "ssh",
	"smtp": "smtp",
	"imap": "imap",
	"pop3": "pop3",
}

// ProtocolTypeName renders a protocol FourCC, falling back to the raw
// code.
func ProtocolTypeName(code string) string {
	if name, ok := protocolTypeNames[code]; ok {
		return name
	}
	return code
}

// authTypeNames maps a CSSM_AUTHORIZATIONTYPE value to its conventional
// name.
var authTypeNames = map[string]string{
	"dflt": "default",
	"ntlm": "NTLM",
	"msna": "MSN",
	"http": "HTTPDigest",
	"httb": "HTTPBasic",
}

// AuthTypeName renders an auth-type code, falling back to the raw value.
func AuthTypeName(code string) string {
	if name, ok := authTypeNames[code]; ok {
		return name
	}
	return code
}

// stdAppleAddinModuleNames maps a KeyCreator module code to the CSP/DL
// addin it names. Only the module built into every macOS keychain is known
// from the record fixtures this was grounded on; the rest of Apple's
// addin GUID space is not recoverable from the available sources, so an
// unrecognized code renders as its raw (null-trimmed) form rather than a
// guessed name.
var stdAppleAddinModuleNames = map[string]string{
	"aapl": "APPLE",
}

// KeyCreatorName renders a KeyCreator LV value: trims at the first NUL
// (the column is padded to a 4-byte boundary and may carry trailing
// nulls), then resolves the result through the module table, falling
// back to the trimmed raw string.
func KeyCreatorName(raw []byte) string {
	code := string(raw)
	if i := strings.IndexByte(code, 0); i >= 0 {
		code = code[:i]
	}
	if name, ok := stdAppleAddinModuleNames[code]; ok {
		return name
	}
	return code
}
