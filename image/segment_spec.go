package image

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/descriptor"
	"github.com/vkngwrapper/i432/segment"
)

// SegmentSpec declares a segment to be placed in the image
type SegmentSpec struct {
	Name       string
	BaseType   descriptor.BaseType
	SystemType uint8

	// Coord fixes the segment's object table entry. When nil the segment is entered in the default
	// directory.
	Coord *descriptor.Coord
	// PhysAddr fixes the physical address of the segment body. The segment prefix occupies the bytes
	// immediately before it. When nil the segment is placed wherever physical memory has room.
	PhysAddr *int

	Fields []segment.Field
}

func (s *SegmentSpec) validate() error {
	if s.Name == "" {
		return errors.New("segments must be named")
	}
	if s.SystemType > descriptor.MaxSystemType {
		return errors.Newf("segment %s: system type %d must be at most %d", s.Name, s.SystemType, descriptor.MaxSystemType)
	}
	if _, ok := baseTypeKinds[s.BaseType]; !ok {
		return errors.Newf("segment %s: unknown base type %d", s.Name, s.BaseType)
	}

	for index := range s.Fields {
		if s.Fields[index].Kind != baseTypeKinds[s.BaseType] {
			return errors.Newf("segment %s: %s segments cannot hold %s field %s", s.Name, s.BaseType, s.Fields[index].Kind, s.Fields[index].Name)
		}
	}

	if s.Coord != nil {
		err := s.Coord.Validate()
		if err != nil {
			return errors.Wrapf(err, "segment %s", s.Name)
		}
		if s.Coord.Directory == DirectoryIndex {
			return errors.Newf("segment %s: directory %d holds only object tables", s.Name, DirectoryIndex)
		}
	}

	return nil
}

var baseTypeKinds = map[descriptor.BaseType]segment.Kind{
	descriptor.BaseTypeData:   segment.DataField,
	descriptor.BaseTypeAccess: segment.AccessField,
}

// Segment is a segment that has been placed in the image. Object tables, including the object table
// directory, are segments too.
type Segment struct {
	Name       string
	Coord      descriptor.Coord
	BaseType   descriptor.BaseType
	SystemType uint8

	// Base is the physical address of the segment body
	Base int
	// Length is the length of the segment body in bytes
	Length int

	// Layout holds the field layout of declared segments. It is nil for object tables.
	Layout *segment.Result

	fixedBase *int
	table     *objectTable
}

// IsObjectTable returns true if this segment was synthesized by the builder to hold an object table
func (s *Segment) IsObjectTable() bool {
	return s.table != nil
}

func (s *Segment) String() string {
	return fmt.Sprintf("%s%s", s.Name, s.Coord)
}
