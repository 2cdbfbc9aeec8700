package records

import (
	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/column"
	"github.com/n0fate/chainbreaker-go/internal/keychain/keycache"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/tableindex"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// GenericPasswords walks the generic-password table and returns every
// decodable record, in table order. A missing table yields an empty
// slice and a logged warning rather than an error.
func GenericPasswords(v *binview.View, idx *tableindex.Index, cache *keycache.Cache, logger kclog.Logger) []GenericPasswordRecord {
	scan, err := scanTable(v, idx, wire.TableGenericPassword)
	if err != nil {
		logTableAbsent(logger, wire.TableGenericPassword)
		return nil
	}

	out := make([]GenericPasswordRecord, 0, len(scan.offsets))
	for _, recOff := range scan.offsets {
		rec, ok := decodeGenericPassword(v, scan, scan.tableOffset, recOff, cache, logger)
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func decodeGenericPassword(v *binview.View, scan *tableScan, tableOffset, recOff uint32, cache *keycache.Cache, logger kclog.Logger) (GenericPasswordRecord, bool) {
	base := wire.RecordBase(tableOffset, recOff)

	h, err := wire.DecodeGenericPasswordHeader(v, base)
	if err != nil {
		logger.Debugf("skipping generic password record at %d: %v", base, err)
		return GenericPasswordRecord{}, false
	}
	if !scan.fits(base, h.RecordSize) {
		logger.Debugf("skipping generic password record at %d: record_size %d exceeds table span", base, h.RecordSize)
		return GenericPasswordRecord{}, false
	}

	created, _, _ := column.KeychainTime(v, base, h.CreationDate)
	modified, _, _ := column.KeychainTime(v, base, h.ModDate)
	description, _ := column.LV(v, base, h.Description, h.RecordSize)
	creator, _, _ := column.FourCC(v, base, h.Creator)
	typ, _, _ := column.FourCC(v, base, h.Type)
	printName, _ := column.LV(v, base, h.PrintName, h.RecordSize)
	alias, _ := column.LV(v, base, h.Alias, h.RecordSize)
	account, _ := column.LV(v, base, h.Account, h.RecordSize)
	service, _ := column.LV(v, base, h.Service, h.RecordSize)

	return GenericPasswordRecord{
		Created:      created,
		LastModified: modified,
		Description:  string(description),
		Creator:      creator,
		Type:         typ,
		PrintName:    string(printName),
		Alias:        string(alias),
		Account:      string(account),
		Service:      string(service),
		Password:     resolvePassword(v, base, wire.GenericPasswordHeaderSize, h.RecordSize, h.SSGPArea, cache),
	}, true
}
