// Package tableindex builds and queries the table_id -> table_offset map
// that every other part of the reader uses to locate a table kind.
package tableindex

import (
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
	"github.com/n0fate/chainbreaker-go/internal/keychain/kcerrors"
	"github.com/n0fate/chainbreaker-go/internal/keychain/wire"
)

// Index maps a table kind to its relative table offset (the value stored
// in the schema's table-offset array, relative to the end of the
// application-DB header).
type Index struct {
	offsets map[wire.TableID]uint32
}

// Build walks the table-offset array, decoding each table's header to
// learn its TableID, and returns the resulting Index.
func Build(v *binview.View, tableOffsets []uint32) (*Index, error) {
	idx := &Index{offsets: make(map[wire.TableID]uint32, len(tableOffsets))}
	for _, off := range tableOffsets {
		tableStart := wire.HeaderSize + int(off)
		h, err := wire.DecodeTableHeader(v, tableStart)
		if err != nil {
			return nil, fmt.Errorf("building table index: %w", err)
		}
		idx.offsets[h.TableID] = off
	}
	return idx, nil
}

// Offset returns the relative table offset for kind, or ErrTableAbsent if
// this file carries no table of that kind.
func (idx *Index) Offset(kind wire.TableID) (uint32, error) {
	off, ok := idx.offsets[kind]
	if !ok {
		return 0, fmt.Errorf("%w: %s", kcerrors.ErrTableAbsent, kind)
	}
	return off, nil
}

// Has reports whether the file carries a table of the given kind.
func (idx *Index) Has(kind wire.TableID) bool {
	_, ok := idx.offsets[kind]
	return ok
}
