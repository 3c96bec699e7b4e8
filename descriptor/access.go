package descriptor

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Coord names a segment by its object table (directory index) and its entry within that table
// (segment index)
type Coord struct {
	Directory int
	Segment   int
}

// Validate fails if either index does not fit in an access descriptor
func (c Coord) Validate() error {
	if c.Directory < 0 || c.Directory > MaxIndex {
		return errors.Newf("directory index %d must be between 0 and %d", c.Directory, MaxIndex)
	}
	if c.Segment < 0 || c.Segment > MaxIndex {
		return errors.Newf("segment index %d must be between 0 and %d", c.Segment, MaxIndex)
	}
	return nil
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Directory, c.Segment)
}

// Rights are the access rights carried in an access descriptor
type Rights struct {
	Read         bool
	Write        bool
	Delete       bool
	Heap         bool
	SystemRights uint8
}

// AccessDescriptor is a 32-bit capability naming a segment
type AccessDescriptor struct {
	Coord
	Rights
	Valid bool
}

// Encode writes the descriptor at byte offset within buf
func (d AccessDescriptor) Encode(buf []byte, offset int) error {
	err := d.Coord.Validate()
	if err != nil {
		return err
	}

	return AccessDescriptorLayout.Encode(buf, offset, Values{
		"valid":         boolBit(d.Valid),
		"system_rights": uint64(d.SystemRights),
		"seg_index":     uint64(d.Segment),
		"delete":        boolBit(d.Delete),
		"heap":          boolBit(d.Heap),
		"read":          boolBit(d.Read),
		"write":         boolBit(d.Write),
		"dir_index":     uint64(d.Directory),
	})
}

// DecodeAccessDescriptor reads the access descriptor at byte offset within buf
func DecodeAccessDescriptor(buf []byte, offset int) (AccessDescriptor, error) {
	values, err := AccessDescriptorLayout.Decode(buf, offset)
	if err != nil {
		return AccessDescriptor{}, err
	}

	return AccessDescriptor{
		Coord: Coord{
			Directory: int(values["dir_index"]),
			Segment:   int(values["seg_index"]),
		},
		Rights: Rights{
			Read:         values["read"] != 0,
			Write:        values["write"] != 0,
			Delete:       values["delete"] != 0,
			Heap:         values["heap"] != 0,
			SystemRights: uint8(values["system_rights"]),
		},
		Valid: values["valid"] != 0,
	}, nil
}

func boolBit(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}
