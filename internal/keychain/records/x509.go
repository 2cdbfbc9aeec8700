package records

import (
	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/column"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/tableindex"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// X509Certificates walks the X.509 certificate table and returns every
// decodable record, in table order. No certificate parsing is performed
// beyond extracting the raw DER blob; a collaborator that needs subject
// or expiry fields should parse DER itself.
func X509Certificates(v *binview.View, idx *tableindex.Index, logger kclog.Logger) []X509CertificateRecord {
	scan, err := scanTable(v, idx, wire.TableX509Certificate)
	if err != nil {
		logTableAbsent(logger, wire.TableX509Certificate)
		return nil
	}

	out := make([]X509CertificateRecord, 0, len(scan.offsets))
	for _, recOff := range scan.offsets {
		rec, ok := decodeX509Certificate(v, scan, scan.tableOffset, recOff, logger)
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func decodeX509Certificate(v *binview.View, scan *tableScan, tableOffset, recOff uint32, logger kclog.Logger) (X509CertificateRecord, bool) {
	base := wire.RecordBase(tableOffset, recOff)

	h, err := wire.DecodeX509CertHeader(v, base)
	if err != nil {
		logger.Debugf("skipping x509 certificate record at %d: %v", base, err)
		return X509CertificateRecord{}, false
	}
	if !scan.fits(base, h.RecordSize) {
		logger.Debugf("skipping x509 certificate record at %d: record_size %d exceeds table span", base, h.RecordSize)
		return X509CertificateRecord{}, false
	}

	typ, _, _ := column.Int32(v, base, h.CertType)
	encoding, _, _ := column.Int32(v, base, h.CertEncoding)
	printName, _ := column.LV(v, base, h.PrintName, h.RecordSize)
	alias, _ := column.LV(v, base, h.Alias, h.RecordSize)
	subject, _ := column.LV(v, base, h.Subject, h.RecordSize)
	issuer, _ := column.LV(v, base, h.Issuer, h.RecordSize)
	serialNumber, _ := column.LV(v, base, h.SerialNumber, h.RecordSize)
	subjectKeyID, _ := column.LV(v, base, h.SubjectKeyIdentifier, h.RecordSize)
	publicKeyHash, _ := column.LV(v, base, h.PublicKeyHash, h.RecordSize)

	der, derOK := derBlob(v, base, wire.X509CertHeaderSize, h.CertSize)
	if !derOK {
		logger.Debugf("skipping x509 certificate record at %d: DER blob escapes record bounds", base)
		return X509CertificateRecord{}, false
	}

	return X509CertificateRecord{
		Type:                 typ,
		Encoding:             encoding,
		PrintName:            string(printName),
		Alias:                string(alias),
		Subject:              subject,
		Issuer:               issuer,
		SerialNumber:         serialNumber,
		SubjectKeyIdentifier: subjectKeyID,
		PublicKeyHash:        publicKeyHash,
		DER:                  der,
	}, true
}

// derBlob slices the raw certificate body immediately following the
// fixed header, bounded by certSize.
func derBlob(v *binview.View, recordStart, headerSize int, certSize uint32) ([]byte, bool) {
	start := recordStart + headerSize
	if !v.Contains(start, int(certSize)) {
		return nil, false
	}
	raw, err := v.Slice(start, int(certSize))
	if err != nil {
		return nil, false
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true
}
