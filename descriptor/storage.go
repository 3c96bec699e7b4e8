package descriptor

import (
	"github.com/cockroachdb/errors"
)

// BaseType distinguishes data segments from access segments
type BaseType uint32

const (
	BaseTypeData BaseType = iota
	BaseTypeAccess
)

var baseTypeMapping = map[BaseType]string{
	BaseTypeData:   "data",
	BaseTypeAccess: "access",
}

func (b BaseType) String() string {
	return baseTypeMapping[b]
}

// ParseBaseType converts "data" or "access" into a BaseType
func ParseBaseType(s string) (BaseType, error) {
	for baseType, name := range baseTypeMapping {
		if name == s {
			return baseType, nil
		}
	}

	return BaseTypeData, errors.Newf("unknown base type: %q", s)
}

const (
	// MaxSegmentBase is the highest physical address a storage descriptor can hold
	MaxSegmentBase = 1<<24 - 1
	// MaxSegmentLength is the longest segment length a storage descriptor can hold
	MaxSegmentLength = 1<<16 - 1
	// MaxSystemType is the highest system type a descriptor can hold
	MaxSystemType = 1<<5 - 1
)

// StorageDescriptor is an object table entry describing a segment in physical memory
type StorageDescriptor struct {
	Base           int
	Length         int
	BaseType       BaseType
	SystemType     uint8
	ProcessorClass uint8
	Valid          bool
	Accessed       bool
	Altered        bool
}

// Encode writes the descriptor at byte offset within buf
func (d StorageDescriptor) Encode(buf []byte, offset int) error {
	if d.Base < 0 || d.Base > MaxSegmentBase {
		return errors.Newf("segment base %#x must be between 0 and %#x", d.Base, MaxSegmentBase)
	}
	if d.Length < 0 || d.Length > MaxSegmentLength {
		return errors.Newf("segment length %d must be between 0 and %d", d.Length, MaxSegmentLength)
	}

	return StorageDescriptorLayout.Encode(buf, offset, Values{
		"descriptor_type": typeCodeStorage,
		"valid":           boolBit(d.Valid),
		"base_type":       uint64(d.BaseType),
		"accessed":        boolBit(d.Accessed),
		"altered":         boolBit(d.Altered),
		"segment_base":    uint64(d.Base),
		"segment_length":  uint64(d.Length),
		"system_type":     uint64(d.SystemType),
		"processor_class": uint64(d.ProcessorClass),
	})
}

// DecodeStorageDescriptor reads the storage descriptor at byte offset within buf. It fails if the entry
// there is not a storage descriptor.
func DecodeStorageDescriptor(buf []byte, offset int) (StorageDescriptor, error) {
	kind, values, err := Parse(buf, offset)
	if err != nil {
		return StorageDescriptor{}, err
	}
	if kind != KindStorage {
		return StorageDescriptor{}, errors.Newf("expected a storage descriptor at offset %#06x, found %s", offset, kind)
	}

	return StorageDescriptor{
		Base:           int(values["segment_base"]),
		Length:         int(values["segment_length"]),
		BaseType:       BaseType(values["base_type"]),
		SystemType:     uint8(values["system_type"]),
		ProcessorClass: uint8(values["processor_class"]),
		Valid:          values["valid"] != 0,
		Accessed:       values["accessed"] != 0,
		Altered:        values["altered"] != 0,
	}, nil
}
