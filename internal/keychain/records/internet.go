package records

import (
	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/column"
	"github.com/n0fate/chainbreaker-go/internal/keychain/keycache"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/tableindex"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// InternetPasswords walks the Internet-password table and returns every
// decodable record, in table order.
func InternetPasswords(v *binview.View, idx *tableindex.Index, cache *keycache.Cache, logger kclog.Logger) []InternetPasswordRecord {
	scan, err := scanTable(v, idx, wire.TableInternetPassword)
	if err != nil {
		logTableAbsent(logger, wire.TableInternetPassword)
		return nil
	}

	out := make([]InternetPasswordRecord, 0, len(scan.offsets))
	for _, recOff := range scan.offsets {
		rec, ok := decodeInternetPassword(v, scan, scan.tableOffset, recOff, cache, logger)
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func decodeInternetPassword(v *binview.View, scan *tableScan, tableOffset, recOff uint32, cache *keycache.Cache, logger kclog.Logger) (InternetPasswordRecord, bool) {
	base := wire.RecordBase(tableOffset, recOff)

	h, err := wire.DecodeInternetPasswordHeader(v, base)
	if err != nil {
		logger.Debugf("skipping internet password record at %d: %v", base, err)
		return InternetPasswordRecord{}, false
	}
	if !scan.fits(base, h.RecordSize) {
		logger.Debugf("skipping internet password record at %d: record_size %d exceeds table span", base, h.RecordSize)
		return InternetPasswordRecord{}, false
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
	securityDomain, _ := column.LV(v, base, h.SecurityDomain, h.RecordSize)
	server, _ := column.LV(v, base, h.Server, h.RecordSize)
	protocol, _, _ := column.FourCC(v, base, h.Protocol)
	authType, _ := column.LV(v, base, h.AuthType, h.RecordSize)
	port, _, _ := column.Int32(v, base, h.Port)
	path, _ := column.LV(v, base, h.Path, h.RecordSize)

	return InternetPasswordRecord{
		Created:        created,
		LastModified:   modified,
		Description:    string(description),
		Comment:        string(comment),
		Creator:        creator,
		Type:           typ,
		PrintName:      string(printName),
		Alias:          string(alias),
		Protected:      string(protected),
		Account:        string(account),
		SecurityDomain: string(securityDomain),
		Server:         string(server),
		ProtocolType:   ProtocolTypeName(protocol),
		AuthType:       AuthTypeName(string(authType)),
		Port:           port,
		Path:           string(path),
		Password:       resolvePassword(v, base, wire.InternetPasswordHeaderSize, h.RecordSize, h.SSGPArea, cache),
	}, true
}
