package records

import (
	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/column"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/tableindex"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// PublicKeys walks the public-key table and returns every decodable
// record, in table order. Public keys are never wrapped, so no database
// key is required to read them.
func PublicKeys(v *binview.View, idx *tableindex.Index, logger kclog.Logger) []PublicKeyRecord {
	scan, err := scanTable(v, idx, wire.TablePublicKey)
	if err != nil {
		logTableAbsent(logger, wire.TablePublicKey)
		return nil
	}

	out := make([]PublicKeyRecord, 0, len(scan.offsets))
	for _, recOff := range scan.offsets {
		rec, ok := decodePublicKey(v, scan, scan.tableOffset, recOff, logger)
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func decodePublicKey(v *binview.View, scan *tableScan, tableOffset, recOff uint32, logger kclog.Logger) (PublicKeyRecord, bool) {
	base := wire.RecordBase(tableOffset, recOff)

	h, err := wire.DecodeSecKeyHeader(v, base)
	if err != nil {
		logger.Debugf("skipping public key record at %d: %v", base, err)
		return PublicKeyRecord{}, false
	}
	if !scan.fits(base, h.RecordSize) {
		logger.Debugf("skipping public key record at %d: record_size %d exceeds table span", base, h.RecordSize)
		return PublicKeyRecord{}, false
	}

	printName, _ := column.LV(v, base, h.PrintName, h.RecordSize)
	label, _ := column.LV(v, base, h.Label, h.RecordSize)
	keyClass, _, _ := column.Int32(v, base, h.KeyClass)
	private, _, _ := column.Int32(v, base, h.Private)
	keyType, _, _ := column.Int32(v, base, h.KeyType)
	keySize, _, _ := column.Int32(v, base, h.KeySizeInBits)
	effectiveSize, _, _ := column.Int32(v, base, h.EffectiveKeySize)
	extractable, _, _ := column.Int32(v, base, h.Extractable)
	keyCreator, _ := column.LV(v, base, h.KeyCreator, h.RecordSize)

	key, keyOK := keyBlobBytes(v, base, wire.SecKeyHeaderSize, h.BlobSize)
	if !keyOK {
		logger.Debugf("skipping public key record at %d: key blob escapes record bounds", base)
		return PublicKeyRecord{}, false
	}

	return PublicKeyRecord{
		PrintName:        string(printName),
		Label:            label,
		KeyClass:         keyClass,
		Private:          private,
		KeyType:          keyType,
		KeySizeInBits:    keySize,
		EffectiveKeySize: effectiveSize,
		Extractable:      extractable,
		KeyCreator:       KeyCreatorName(keyCreator),
		Key:              key,
	}, true
}

// keyBlobBytes slices the raw key body immediately following a
// SecKeyHeader, bounded by blobSize.
func keyBlobBytes(v *binview.View, recordStart, headerSize int, blobSize uint32) ([]byte, bool) {
	start := recordStart + headerSize
	if !v.Contains(start, int(blobSize)) {
		return nil, false
	}
	raw, err := v.Slice(start, int(blobSize))
	if err != nil {
		return nil, false
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out, true
}
