package records

import (
	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/column"
	"github.com/n0fate/chainbreaker-go/internal/keychain/keycache"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/tableindex"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// AppleShares walks the AppleShare-password table and returns every
// decodable record, in table order. Modern macOS no longer creates this
// record kind, but legacy keychains may still carry one.
func AppleShares(v *binview.View, idx *tableindex.Index, cache *keycache.Cache, logger kclog.Logger) []AppleShareRecord {
	scan, err := scanTable(v, idx, wire.TableAppleSharePassword)
	if err != nil {
		logTableAbsent(logger, wire.TableAppleSharePassword)
		return nil
	}

	out := make([]AppleShareRecord, 0, len(scan.offsets))
	for _, recOff := range scan.offsets {
		rec, ok := decodeAppleShare(v, scan, scan.tableOffset, recOff, cache, logger)
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func decodeAppleShare(v *binview.View, scan *tableScan, tableOffset, recOff uint32, cache *keycache.Cache, logger kclog.Logger) (AppleShareRecord, bool) {
	base := wire.RecordBase(tableOffset, recOff)

	h, err := wire.DecodeAppleShareHeader(v, base)
	if err != nil {
		logger.Debugf("skipping appleshare record at %d: %v", base, err)
		return AppleShareRecord{}, false
	}
	if !scan.fits(base, h.RecordSize) {
		logger.Debugf("skipping appleshare record at %d: record_size %d exceeds table span", base, h.RecordSize)
		return AppleShareRecord{}, false
	}

	created, _, _ := column.KeychainTime(v, base, h.CreationDate)
	modified, _, _ := column.KeychainTime(v, base, h.ModDate)
	description, _ := column.LV(v, base, h.Description, h.RecordSize)
	comment, _ := column.LV(v, base, h.Comment, h.RecordSize)
	creator, _, _ := column.FourCC(v, base, h.Creator)
	typ, _, _ := column.FourCC(v, base, h.Type)
	printName, _ := column.LV(v, base, h.PrintName, h.RecordSize)
	alias, _ := column.LV(v, base, h.Alias, h.RecordSize)
	protected, _ := column.LV(v, base, h.Protected, h.RecordSize)
	account, _ := column.LV(v, base, h.Account, h.RecordSize)
	volume, _ := column.LV(v, base, h.Volume, h.RecordSize)
	server, _ := column.LV(v, base, h.Server, h.RecordSize)
	protocol, _, _ := column.FourCC(v, base, h.Protocol)
	address, _ := column.LV(v, base, h.Address, h.RecordSize)
	signature, _ := column.LV(v, base, h.Signature, h.RecordSize)

	return AppleShareRecord{
		Created:      created,
		LastModified: modified,
		Description:  string(description),
		Comment:      string(comment),
		Creator:      creator,
		Type:         typ,
		PrintName:    string(printName),
		Alias:        string(alias),
		Protected:    string(protected),
		Account:      string(account),
		Volume:       string(volume),
		Server:       string(server),
		ProtocolType: ProtocolTypeName(protocol),
		Address:      address,
		Signature:    string(signature),
		Password:     resolvePassword(v, base, wire.AppleShareHeaderSize, h.RecordSize, h.SSGPArea, cache),
	}, true
}
