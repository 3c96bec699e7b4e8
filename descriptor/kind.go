package descriptor

import (
	"github.com/cockroachdb/errors"
)

// Kind identifies which layout an object table entry uses
type Kind uint32

const (
	KindUnknown Kind = iota
	KindObjectTableHeader
	KindFree
	KindStorage
	KindRefinement
	KindType
	KindInterconnect
)

var kindMapping = map[Kind]string{
	KindUnknown:           "Unknown",
	KindObjectTableHeader: "ObjectTableHeader",
	KindFree:              "Free",
	KindStorage:           "Storage",
	KindRefinement:        "Refinement",
	KindType:              "Type",
	KindInterconnect:      "Interconnect",
}

func (k Kind) String() string {
	return kindMapping[k]
}

var kindLayouts = map[Kind]*Layout{
	KindObjectTableHeader: &ObjectTableHeaderLayout,
	KindFree:              &FreeDescriptorLayout,
	KindStorage:           &StorageDescriptorLayout,
	KindRefinement:        &RefinementDescriptorLayout,
	KindType:              &TypeDescriptorLayout,
	KindInterconnect:      &InterconnectDescriptorLayout,
}

// Layout returns the bit field layout for this kind of entry
func (k Kind) Layout() *Layout {
	return kindLayouts[k]
}

// Descriptor type codes held in the low two bits of every entry
const (
	typeCodeSpecial    = 0
	typeCodeType       = 1
	typeCodeRefinement = 2
	typeCodeStorage    = 3
)

// Subtype codes held in bits 3-4 of entries with type code 0
const (
	subtypeObjectTable  = 0
	subtypeInterconnect = 1
)

// Classify determines the kind of an object table entry from its first byte
func Classify(first byte) Kind {
	switch first & 3 {
	case typeCodeStorage:
		return KindStorage
	case typeCodeRefinement:
		return KindRefinement
	case typeCodeType:
		return KindType
	}

	switch (first >> 3) & 3 {
	case subtypeInterconnect:
		return KindInterconnect
	case subtypeObjectTable:
		if first&4 == 0 {
			return KindObjectTableHeader
		}
		return KindFree
	}

	return KindUnknown
}

// Parse classifies and decodes the object table entry beginning at byte offset within buf
func Parse(buf []byte, offset int) (Kind, Values, error) {
	if offset < 0 || offset >= len(buf) {
		return KindUnknown, nil, errors.Newf("descriptor offset %d lies outside a %d byte buffer", offset, len(buf))
	}

	kind := Classify(buf[offset])
	if kind == KindUnknown {
		return kind, nil, errors.Newf("unrecognized descriptor at offset %#06x: %#02x", offset, buf[offset])
	}

	values, err := kind.Layout().Decode(buf, offset)
	if err != nil {
		return kind, nil, err
	}

	return kind, values, nil
}
