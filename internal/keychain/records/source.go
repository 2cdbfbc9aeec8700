package records

import (
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kclog"
	"github.com/n0fate/chainbreaker-go/internal/keychain/tableindex"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// tableScan is the resolved location of a table and its live record
// offsets, used by every per-kind iterator to bound its record decoding.
type tableScan struct {
	tableOffset uint32
	tableStart  int
	tableEnd    int
	offsets     []uint32
}

// scanTable resolves kind's relative table offset and scans its live
// record offsets. A missing table yields a wrapped ErrTableAbsent, logged
// by the caller and treated as zero records.
func scanTable(v *binview.View, idx *tableindex.Index, kind wire.TableID) (*tableScan, error) {
	tableOffset, err := idx.Offset(kind)
	if err != nil {
		return nil, err
	}

	tableStart := wire.HeaderSize + int(tableOffset)
	h, err := wire.DecodeTableHeader(v, tableStart)
	if err != nil {
		return nil, fmt.Errorf("reading %s table header: %w", kind, err)
	}

	offsets, err := wire.RecordOffsets(v, tableStart, h)
	if err != nil {
		return nil, fmt.Errorf("scanning %s record offsets: %w", kind, err)
	}

	return &tableScan{
		tableOffset: tableOffset,
		tableStart:  tableStart,
		tableEnd:    tableStart + int(h.TableSize),
		offsets:     offsets,
	}, nil
}

// fits reports whether a record of recordSize bytes starting at
// recordStart lies fully within the table. A record whose declared
// record_size exceeds its table span is skipped, not fatal.
func (ts *tableScan) fits(recordStart int, recordSize uint32) bool {
	return recordStart >= ts.tableStart && recordStart+int(recordSize) <= ts.tableEnd
}

func logTableAbsent(logger kclog.Logger, kind wire.TableID) {
	logger.Warnf("%s table is not available", kind)
}
