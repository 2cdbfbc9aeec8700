package wire

import (
	"fmt"

	"github.com/n0fate/chainbreaker-go/internal/keychain/binview"
)

// SchemaHeaderSize is the fixed size of the schema header preceding the
// table-offset array.
const SchemaHeaderSize = 8

// Schema is the application-DB schema block: a table count and size,
// followed immediately (in the file) by TableCount 4-byte table offsets.
type Schema struct {
	TableCount uint32
	SchemaSize uint32
}

// DecodeSchema decodes the schema header at byte offset off in v.
func DecodeSchema(v *binview.View, off int) (*Schema, error) {
	raw, err := v.Slice(off, SchemaHeaderSize)
	if err != nil {
		return nil, fmt.Errorf("decoding schema header: %w", err)
	}
	return &Schema{
		TableCount: be32(raw[0:4]),
		SchemaSize: be32(raw[4:8]),
	}, nil
}

// DecodeTableOffsets decodes the schema's table-offset array, which
// starts immediately after the schema header at off+SchemaHeaderSize.
// Each offset is relative to the end of the application-DB header
// (HeaderSize); the table's absolute location in the file is
// HeaderSize + offset.
func DecodeTableOffsets(v *binview.View, schemaOff int, s *Schema) ([]uint32, error) {
	base := schemaOff + SchemaHeaderSize
	offsets := make([]uint32, 0, s.TableCount)
	for i := uint32(0); i < s.TableCount; i++ {
		val, err := v.Uint32(base + int(i)*4)
		if err != nil {
			return nil, fmt.Errorf("decoding table offset %d: %w", i, err)
		}
		offsets = append(offsets, val)
	}
	return offsets, nil
}
