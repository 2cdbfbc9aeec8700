package wire

import (
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
)

// TableHeaderSize is the fixed size of TableHeader, the book-keeping block
// at the start of every table.
const TableHeaderSize = 20

// TableHeader precedes a table's densely-indexed record-offset array.
type TableHeader struct {
	TableSize   uint32
	TableID     TableID
	RecordCount uint32
	// Reserved1/Reserved2 are additional book-keeping fields the original
	// format carries (free-list and index metadata); this reader does not
	// interpret them but keeps them for completeness.
	Reserved1 uint32
	Reserved2 uint32
}

// DecodeTableHeader decodes a TableHeader at absolute offset tableStart.
func DecodeTableHeader(v *binview.View, tableStart int) (*TableHeader, error) {
	raw, err := v.Slice(tableStart, TableHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decoding table header: %w", err)
	}
	return &TableHeader{
		TableSize:   be32(raw[0:4]),
		TableID:     TableID(be32(raw[4:8])),
		RecordCount: be32(raw[8:12]),
		Reserved1:   be32(raw[12:16]),
		Reserved2:   be32(raw[16:20]),
	}, nil
}

// RecordOffsets scans the record-offset array immediately following a
// table header at tableStart+TableHeaderSize, collecting live offsets
// (non-zero, 4-byte aligned) until RecordCount have been found. The scan
// is additionally bounded by the table's declared size: a malformed
// RecordCount can never cause it to read past the table, tightening the
// original's unbounded scan (see design notes on possibly-buggy source
// behaviour).
func RecordOffsets(v *binview.View, tableStart int, h *TableHeader) ([]uint32, error) {
	base := tableStart + TableHeaderSize
	tableEnd := tableStart + int(h.TableSize)

	var offsets []uint32
	idx := 0
	for uint32(len(offsets)) < h.RecordCount {
		pos := base + idx*4
		if pos+4 > tableEnd {
			break
		}
		val, err := v.Uint32(pos)
		if err != nil {
			break
		}
		idx++
		if val != 0 && val%4 == 0 {
			offsets = append(offsets, val)
		}
	}
	return offsets, nil
}
