package descriptor

import (
	"github.com/cockroachdb/errors"
)

// ObjectTableHeader is entry 0 of every object table
type ObjectTableHeader struct {
	// FreeIndex is the first unused entry of the table, or 0 if the table is full
	FreeIndex int
	// EndIndex is the last entry of the table
	EndIndex     int
	StorageClaim uint32
	LevelNumber  uint16
}

// Encode writes the header at byte offset within buf
func (h ObjectTableHeader) Encode(buf []byte, offset int) error {
	if h.FreeIndex < 0 || h.FreeIndex > MaxIndex || h.EndIndex < 0 || h.EndIndex > MaxIndex {
		return errors.Newf("object table header indices (%d, %d) must be between 0 and %d", h.FreeIndex, h.EndIndex, MaxIndex)
	}

	return ObjectTableHeaderLayout.Encode(buf, offset, Values{
		"free_index":    uint64(h.FreeIndex),
		"end_index":     uint64(h.EndIndex),
		"storage_claim": uint64(h.StorageClaim),
		"level_number":  uint64(h.LevelNumber),
	})
}

// DecodeObjectTableHeader reads the object table header at byte offset within buf
func DecodeObjectTableHeader(buf []byte, offset int) (ObjectTableHeader, error) {
	kind, values, err := Parse(buf, offset)
	if err != nil {
		return ObjectTableHeader{}, err
	}
	if kind != KindObjectTableHeader {
		return ObjectTableHeader{}, errors.Newf("expected an object table header at offset %#06x, found %s", offset, kind)
	}

	return ObjectTableHeader{
		FreeIndex:    int(values["free_index"]),
		EndIndex:     int(values["end_index"]),
		StorageClaim: uint32(values["storage_claim"]),
		LevelNumber:  uint16(values["level_number"]),
	}, nil
}

// FreeDescriptor marks an unused object table entry. Free entries are chained through NextFree, which
// is 0 at the end of the chain.
type FreeDescriptor struct {
	NextFree int
}

const freeDescriptorType = 1 << 2

// Encode writes the free descriptor at byte offset within buf
func (f FreeDescriptor) Encode(buf []byte, offset int) error {
	if f.NextFree < 0 || f.NextFree > MaxIndex {
		return errors.Newf("free index %d must be between 0 and %d", f.NextFree, MaxIndex)
	}

	return FreeDescriptorLayout.Encode(buf, offset, Values{
		"descriptor_type": freeDescriptorType,
		"free_index":      uint64(f.NextFree),
	})
}
