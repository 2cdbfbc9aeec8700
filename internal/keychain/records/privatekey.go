package records

import (
	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/column"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/tableindex"
	"github.com/n0fate/chainbreaker-go/internal/keychain/unwrap"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// PrivateKeys walks the private-key table and returns every decodable
// record, in table order. dbKey is nil when the database key has not
// been recovered; in that case every record's Locked flag is set and
// KeyBody is left nil rather than attempting to unwrap.
func PrivateKeys(v *binview.View, idx *tableindex.Index, dbKey []byte, logger kclog.Logger) []PrivateKeyRecord {
	scan, err := scanTable(v, idx, wire.TablePrivateKey)
	if err != nil {
		logTableAbsent(logger, wire.TablePrivateKey)
		return nil
	}

	out := make([]PrivateKeyRecord, 0, len(scan.offsets))
	for _, recOff := range scan.offsets {
		rec, ok := decodePrivateKey(v, scan, scan.tableOffset, recOff, dbKey, logger)
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func decodePrivateKey(v *binview.View, scan *tableScan, tableOffset, recOff uint32, dbKey []byte, logger kclog.Logger) (PrivateKeyRecord, bool) {
	base := wire.RecordBase(tableOffset, recOff)

	h, err := wire.DecodeSecKeyHeader(v, base)
	if err != nil {
		logger.Debugf("skipping private key record at %d: %v", base, err)
		return PrivateKeyRecord{}, false
	}
	if !scan.fits(base, h.RecordSize) {
		logger.Debugf("skipping private key record at %d: record_size %d exceeds table span", base, h.RecordSize)
		return PrivateKeyRecord{}, false
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

	rec := PrivateKeyRecord{
		PrintName:        string(printName),
		Label:            label,
		KeyClass:         keyClass,
		Private:          private,
		KeyType:          keyType,
		KeySizeInBits:    keySize,
		EffectiveKeySize: effectiveSize,
		Extractable:      extractable,
		KeyCreator:       KeyCreatorName(keyCreator),
		Locked:           true,
	}

	payload, payloadOK := keyBlobBytes(v, base, wire.SecKeyHeaderSize, h.BlobSize)
	if !payloadOK {
		logger.Debugf("skipping private key record at %d: key blob escapes record bounds", base)
		return PrivateKeyRecord{}, false
	}

	if len(dbKey) == 0 {
		return rec, true
	}

	kb, err := wire.DecodeKeyBlob(payload)
	if err != nil {
		logger.Debugf("private key record at %d: %v", base, err)
		return rec, true
	}
	ciphertext, err := kb.Ciphertext(payload)
	if err != nil {
		logger.Debugf("private key record at %d: %v", base, err)
		return rec, true
	}

	unwrapped, err := unwrap.UnwrapPrivateKey(dbKey, kb.IV[:], ciphertext)
	if err != nil {
		logger.Debugf("private key record at %d: %v", base, err)
		return rec, true
	}

	rec.Locked = false
	rec.KeyName = unwrapped.KeyName
	rec.KeyBody = unwrapped.PrivateKey
	return rec, true
}
