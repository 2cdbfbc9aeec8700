// Record header layouts. Every field except RecordSize/SSGPArea/CertSize/
// BlobSize is a raw column pointer: pass it through column.Mask (which
// clears the low flag bit) and treat a zero result as absent before
// dereferencing.
package wire

import (
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
)

// RecordBase computes the absolute file offset of a record, given the
// table's relative offset (from the schema's table-offset array) and the
// record's relative offset (from the table's record-offset array).
func RecordBase(tableOffset, recordOffset uint32) int {
	return HeaderSize + int(tableOffset) + int(recordOffset)
}

// GenericPasswordHeader is the fixed header of a CSSM_DL_DB_RECORD_GENERIC_PASSWORD record.
type GenericPasswordHeader struct {
	RecordSize   uint32
	SSGPArea     uint32
	CreationDate uint32
	ModDate      uint32
	Description  uint32
	Creator      uint32
	Type         uint32
	PrintName    uint32
	Alias        uint32
	Account      uint32
	Service      uint32
}

// GenericPasswordHeaderSize is the on-disk size of GenericPasswordHeader.
const GenericPasswordHeaderSize = 44

// DecodeGenericPasswordHeader decodes a generic-password record header at
// absolute offset base.
func DecodeGenericPasswordHeader(v *binview.View, base int) (*GenericPasswordHeader, error) {
	raw, err := v.Slice(base, GenericPasswordHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decoding generic password header: %w", err)
	}
	fs := fieldScanner{raw: raw}
	return &GenericPasswordHeader{
		RecordSize:   fs.u32(),
		SSGPArea:     fs.u32(),
		CreationDate: fs.u32(),
		ModDate:      fs.u32(),
		Description:  fs.u32(),
		Creator:      fs.u32(),
		Type:         fs.u32(),
		PrintName:    fs.u32(),
		Alias:        fs.u32(),
		Account:      fs.u32(),
		Service:      fs.u32(),
	}, nil
}

// InternetPasswordHeader is the fixed header of a CSSM_DL_DB_RECORD_INTERNET_PASSWORD record.
type InternetPasswordHeader struct {
	RecordSize     uint32
	SSGPArea       uint32
	CreationDate   uint32
	ModDate        uint32
	Description    uint32
	Comment        uint32
	Creator        uint32
	Type           uint32
	PrintName      uint32
	Alias          uint32
	Protected      uint32
	Account        uint32
	SecurityDomain uint32
	Server         uint32
	Protocol       uint32
	AuthType       uint32
	Port           uint32
	Path           uint32
}

// InternetPasswordHeaderSize is the on-disk size of InternetPasswordHeader.
const InternetPasswordHeaderSize = 72

// DecodeInternetPasswordHeader decodes an internet-password record header
// at absolute offset base.
func DecodeInternetPasswordHeader(v *binview.View, base int) (*InternetPasswordHeader, error) {
	raw, err := v.Slice(base, InternetPasswordHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decoding internet password header: %w", err)
	}
	fs := fieldScanner{raw: raw}
	return &InternetPasswordHeader{
		RecordSize:     fs.u32(),
		SSGPArea:       fs.u32(),
		CreationDate:   fs.u32(),
		ModDate:        fs.u32(),
		Description:    fs.u32(),
		Comment:        fs.u32(),
		Creator:        fs.u32(),
		Type:           fs.u32(),
		PrintName:      fs.u32(),
		Alias:          fs.u32(),
		Protected:      fs.u32(),
		Account:        fs.u32(),
		SecurityDomain: fs.u32(),
		Server:         fs.u32(),
		Protocol:       fs.u32(),
		AuthType:       fs.u32(),
		Port:           fs.u32(),
		Path:           fs.u32(),
	}, nil
}

// AppleShareHeader is the fixed header of a CSSM_DL_DB_RECORD_APPLESHARE_PASSWORD record.
type AppleShareHeader struct {
	RecordSize   uint32
	SSGPArea     uint32
	CreationDate uint32
	ModDate      uint32
	Description  uint32
	Comment      uint32
	Creator      uint32
	Type         uint32
	PrintName    uint32
	Alias        uint32
	Protected    uint32
	Account      uint32
	Volume       uint32
	Server       uint32
	Protocol     uint32
	// Address is declared as a length-value column here, not an integer:
	// the reference pretty-printer formats it as an integer, but the
	// header declares it LV. We follow the header (see design notes) and
	// leave display formatting to the collaborator.
	Address   uint32
	Signature uint32
}

// AppleShareHeaderSize is the on-disk size of AppleShareHeader.
const AppleShareHeaderSize = 68

// DecodeAppleShareHeader decodes an AppleShare-password record header at
// absolute offset base.
func DecodeAppleShareHeader(v *binview.View, base int) (*AppleShareHeader, error) {
	raw, err := v.Slice(base, AppleShareHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decoding appleshare header: %w", err)
	}
	fs := fieldScanner{raw: raw}
	return &AppleShareHeader{
		RecordSize:   fs.u32(),
		SSGPArea:     fs.u32(),
		CreationDate: fs.u32(),
		ModDate:      fs.u32(),
		Description:  fs.u32(),
		Comment:      fs.u32(),
		Creator:      fs.u32(),
		Type:         fs.u32(),
		PrintName:    fs.u32(),
		Alias:        fs.u32(),
		Protected:    fs.u32(),
		Account:      fs.u32(),
		Volume:       fs.u32(),
		Server:       fs.u32(),
		Protocol:     fs.u32(),
		Address:      fs.u32(),
		Signature:    fs.u32(),
	}, nil
}

// X509CertHeader is the fixed header of a CSSM_DL_DB_RECORD_X509_CERTIFICATE record.
type X509CertHeader struct {
	RecordSize            uint32
	CertType              uint32
	CertEncoding          uint32
	PrintName             uint32
	Alias                 uint32
	Subject               uint32
	Issuer                uint32
	SerialNumber          uint32
	SubjectKeyIdentifier  uint32
	PublicKeyHash         uint32
	CertSize              uint32
}

// X509CertHeaderSize is the on-disk size of X509CertHeader.
const X509CertHeaderSize = 44

// DecodeX509CertHeader decodes an X.509 certificate record header at
// absolute offset base. CertSize bounds the raw DER blob that follows the
// header.
func DecodeX509CertHeader(v *binview.View, base int) (*X509CertHeader, error) {
	raw, err := v.Slice(base, X509CertHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decoding x509 certificate header: %w", err)
	}
	fs := fieldScanner{raw: raw}
	return &X509CertHeader{
		RecordSize:           fs.u32(),
		CertType:             fs.u32(),
		CertEncoding:         fs.u32(),
		PrintName:            fs.u32(),
		Alias:                fs.u32(),
		Subject:              fs.u32(),
		Issuer:               fs.u32(),
		SerialNumber:         fs.u32(),
		SubjectKeyIdentifier: fs.u32(),
		PublicKeyHash:        fs.u32(),
		CertSize:             fs.u32(),
	}, nil
}

// SecKeyHeader is the shared fixed header of CSSM_DL_DB_RECORD_PUBLIC_KEY
// and CSSM_DL_DB_RECORD_PRIVATE_KEY records: metadata columns followed by
// a raw key blob of BlobSize bytes.
type SecKeyHeader struct {
	RecordSize       uint32
	PrintName        uint32
	Label            uint32
	KeyClass         uint32
	Private          uint32
	KeyType          uint32
	KeySizeInBits    uint32
	EffectiveKeySize uint32
	Extractable      uint32
	KeyCreator       uint32
	BlobSize         uint32
}

// SecKeyHeaderSize is the on-disk size of SecKeyHeader.
const SecKeyHeaderSize = 44

// DecodeSecKeyHeader decodes a public- or private-key record header at
// absolute offset base.
func DecodeSecKeyHeader(v *binview.View, base int) (*SecKeyHeader, error) {
	raw, err := v.Slice(base, SecKeyHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decoding key record header: %w", err)
	}
	fs := fieldScanner{raw: raw}
	return &SecKeyHeader{
		RecordSize:       fs.u32(),
		PrintName:        fs.u32(),
		Label:            fs.u32(),
		KeyClass:         fs.u32(),
		Private:          fs.u32(),
		KeyType:          fs.u32(),
		KeySizeInBits:    fs.u32(),
		EffectiveKeySize: fs.u32(),
		Extractable:      fs.u32(),
		KeyCreator:       fs.u32(),
		BlobSize:         fs.u32(),
	}, nil
}

// fieldScanner reads sequential big-endian uint32 fields from a
// pre-sliced, already-bounds-checked buffer.
type fieldScanner struct {
	raw []byte
	pos int
}

func (fs *fieldScanner) u32() uint32 {
	v := be32(fs.raw[fs.pos : fs.pos+4])
	fs.pos += 4
	return v
}
