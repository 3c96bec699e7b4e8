package segment

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/descriptor"
)

// Kind distinguishes fields holding data from fields holding access descriptors
type Kind uint32

const (
	DataField Kind = iota
	AccessField
)

var kindMapping = map[Kind]string{
	DataField:   "data",
	AccessField: "access",
}

func (k Kind) String() string {
	return kindMapping[k]
}

const (
	// AccessFieldBits is the width of every access field
	AccessFieldBits = descriptor.AccessDescriptorSize * 8
	// MaxSizeBits is the largest segment body, in bits, that a field can be placed within
	MaxSizeBits = 1 << 19
	// MaxAccessIndex is the highest slot an access field can occupy
	MaxAccessIndex = MaxSizeBits/AccessFieldBits - 1
)

// Field is a single named field of a segment body
type Field struct {
	Name string
	Kind Kind

	// SizeBits is the width of a data field. Access fields are always AccessFieldBits wide.
	SizeBits int
	// OffsetBits is the position of a fixed data field
	OffsetBits int
	// Index is the slot of a fixed access field, which begins at bit 32*Index
	Index int
	// Fixed fields are placed at OffsetBits (data) or Index (access). Other fields are placed wherever
	// the allocator finds room.
	Fixed bool

	// Value is the initial contents of a data field
	Value uint64
	// Target names the segment an access field refers to. An empty Target leaves a null access
	// descriptor in the slot.
	Target string
}

// Size returns the width of the field in bits
func (f *Field) Size() int {
	if f.Kind == AccessField {
		return AccessFieldBits
	}
	return f.SizeBits
}

// FixedOffset returns the bit offset a fixed field must be placed at
func (f *Field) FixedOffset() (int, error) {
	if !f.Fixed {
		return 0, errors.Newf("field %s is not fixed", f.Name)
	}
	if f.Kind != AccessField {
		return f.OffsetBits, nil
	}

	if f.Index < 0 || f.Index > MaxAccessIndex {
		return 0, errors.Newf("access field %s index %d must be between 0 and %d", f.Name, f.Index, MaxAccessIndex)
	}
	return f.Index * AccessFieldBits, nil
}

func (f *Field) String() string {
	return fmt.Sprintf("%s %s(%d)", f.Kind, f.Name, f.Size())
}
