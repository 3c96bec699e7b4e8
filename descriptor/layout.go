package descriptor

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/memutils"
	"github.com/vkngwrapper/i432/memutils/rangealloc"
)

// Field is a single bit field within a fixed Layout
type Field struct {
	Name  string
	LSB   int
	Width int
}

// Values holds decoded field values keyed by field name
type Values map[string]uint64

// Layout describes a fixed-size record made up of bit fields. Bits which no field covers are written as
// zero and ignored on read.
type Layout struct {
	Name     string
	SizeBits int
	Fields   []Field
}

// SizeBytes returns the number of whole bytes the layout occupies
func (l *Layout) SizeBytes() int {
	return memutils.BitsToBytes(l.SizeBits)
}

// Field returns the field with the provided name
func (l *Layout) Field(name string) (Field, bool) {
	for _, field := range l.Fields {
		if field.Name == name {
			return field, true
		}
	}

	return Field{}, false
}

// Validate verifies that every field lies within the layout and that no two fields overlap. Each field's
// bits are claimed in a fresh allocator, so an overlap surfaces as an allocation failure.
func (l *Layout) Validate() error {
	bitSpace, err := rangealloc.New[string](l.SizeBits, rangealloc.PolicyFirstFit)
	if err != nil {
		return errors.Wrapf(err, "layout %s", l.Name)
	}

	for _, field := range l.Fields {
		if field.Width > MaxFieldWidth {
			return errors.Newf("layout %s: field %s is %d bits wide, more than the maximum of %d", l.Name, field.Name, field.Width, MaxFieldWidth)
		}

		_, err = bitSpace.AllocateAt(field.LSB, field.Width, field.Name)
		if errors.Is(err, memutils.AllocationError) {
			return errors.Wrapf(err, "layout %s: field %s [%d, %d) overlaps another field", l.Name, field.Name, field.LSB, field.LSB+field.Width)
		} else if err != nil {
			return errors.Wrapf(err, "layout %s: field %s", l.Name, field.Name)
		}
	}

	return nil
}

// Decode reads every field of the layout from the record beginning at byte offset within buf
func (l *Layout) Decode(buf []byte, offset int) (Values, error) {
	record, err := l.record(buf, offset)
	if err != nil {
		return nil, err
	}

	values := make(Values, len(l.Fields))
	for _, field := range l.Fields {
		value, err := GetBits(record, field.LSB, field.Width)
		if err != nil {
			return nil, errors.Wrapf(err, "%s.%s", l.Name, field.Name)
		}
		values[field.Name] = value
	}

	return values, nil
}

// Encode writes the record beginning at byte offset within buf. Fields missing from values are written as
// zero, as are bits which no field covers. Values naming fields that the layout does not have are rejected.
func (l *Layout) Encode(buf []byte, offset int, values Values) error {
	record, err := l.record(buf, offset)
	if err != nil {
		return err
	}

	for name := range values {
		if _, ok := l.Field(name); !ok {
			return errors.Newf("layout %s has no field named %s", l.Name, name)
		}
	}

	encoded := make([]byte, len(record))
	for _, field := range l.Fields {
		err = PutBits(encoded, field.LSB, field.Width, values[field.Name])
		if err != nil {
			return errors.Wrapf(err, "%s.%s", l.Name, field.Name)
		}
	}

	copy(record, encoded)
	return nil
}

func (l *Layout) record(buf []byte, offset int) ([]byte, error) {
	size := l.SizeBytes()
	if offset < 0 || offset+size > len(buf) {
		return nil, errors.Newf("%s at offset %d needs %d bytes but the buffer is %d bytes long", l.Name, offset, size, len(buf))
	}

	return buf[offset : offset+size], nil
}

func (l *Layout) String() string {
	return fmt.Sprintf("%s(%d bits)", l.Name, l.SizeBits)
}
