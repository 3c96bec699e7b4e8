package image

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/descriptor"
	"github.com/vkngwrapper/i432/memutils"
	"github.com/vkngwrapper/i432/memutils/rangealloc"
	"golang.org/x/exp/slog"
)

const (
	// DirectoryIndex is both the directory index and the segment index of the object table directory
	DirectoryIndex = 2
	// DirectoryBase is the physical address of the object table directory's body
	DirectoryBase = descriptor.PrefixSize
	// TableEntries is the number of entries an object table can hold. The table's length must fit in a
	// storage descriptor.
	TableEntries = (descriptor.MaxSegmentLength+1)/descriptor.Size - 1

	headerSlot = 0
)

// objectTable tracks which entries of a single object table are in use
type objectTable struct {
	index   int
	slots   *rangealloc.Allocator[string]
	entries map[int]*Segment
	segment *Segment
}

func newObjectTable(index int, policy rangealloc.Policy) (*objectTable, error) {
	slots, err := rangealloc.New[string](TableEntries, policy)
	if err != nil {
		return nil, err
	}

	_, err = slots.AllocateAt(headerSlot, 1, "header")
	if err != nil {
		return nil, err
	}

	return &objectTable{
		index:   index,
		slots:   slots,
		entries: make(map[int]*Segment),
	}, nil
}

// enter places seg at the requested slot, or the slot the table's policy chooses when slot is nil
func (t *objectTable) enter(seg *Segment, slot *int) error {
	var index int
	var err error

	if slot != nil {
		index, err = t.slots.AllocateAt(*slot, 1, seg.Name)
		if errors.Is(err, memutils.AllocationError) {
			if other, ok := t.entries[*slot]; ok {
				return errors.Wrapf(err, "coordinate (%d,%d) of %s is already used by %s", t.index, *slot, seg.Name, other.Name)
			}
			return errors.Wrapf(err, "coordinate (%d,%d) of %s is reserved", t.index, *slot, seg.Name)
		}
	} else {
		index, err = t.slots.Allocate(1, seg.Name)
	}
	if err != nil {
		return errors.Wrapf(err, "object table %d: %s", t.index, seg.Name)
	}

	seg.Coord = descriptor.Coord{Directory: t.index, Segment: index}
	t.entries[index] = seg
	return nil
}

// endIndex returns the last entry the table needs to hold
func (t *objectTable) endIndex() (int, error) {
	return t.slots.HighestAllocated()
}

// body renders the table: a header, a storage descriptor for every entry in use, and a chain of free
// descriptors through the unused entries below the end of the table
func (t *objectTable) body() ([]byte, error) {
	end, err := t.endIndex()
	if err != nil {
		return nil, err
	}
	body := make([]byte, (end+1)*descriptor.Size)

	var free []int
	err = t.slots.VisitAllRegions(func(offset int, size int, _ string, isFree bool) error {
		if !isFree {
			return nil
		}
		for slot := offset; slot < offset+size && slot <= end; slot++ {
			free = append(free, slot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	header := descriptor.ObjectTableHeader{EndIndex: end}
	if len(free) > 0 {
		header.FreeIndex = free[0]
	}
	err = header.Encode(body, headerSlot*descriptor.Size)
	if err != nil {
		return nil, errors.Wrapf(err, "object table %d header", t.index)
	}

	for index, slot := range free {
		next := 0
		if index+1 < len(free) {
			next = free[index+1]
		}

		err = descriptor.FreeDescriptor{NextFree: next}.Encode(body, slot*descriptor.Size)
		if err != nil {
			return nil, errors.Wrapf(err, "object table %d entry %d", t.index, slot)
		}
	}

	for slot, seg := range t.entries {
		err = storageDescriptor(seg).Encode(body, slot*descriptor.Size)
		if err != nil {
			return nil, errors.Wrapf(err, "object table %d entry %d (%s)", t.index, slot, seg.Name)
		}
	}

	return body, nil
}

func storageDescriptor(seg *Segment) descriptor.StorageDescriptor {
	return descriptor.StorageDescriptor{
		Base:       seg.Base,
		Length:     seg.Length,
		BaseType:   seg.BaseType,
		SystemType: seg.SystemType,
		Valid:      true,
	}
}

func tableName(index int) string {
	if index == DirectoryIndex {
		return "object table directory"
	}
	return fmt.Sprintf("object table %d", index)
}

// table returns the object table with the provided directory index, entering a new one in the directory
// if it does not exist yet
func (b *Builder) table(index int) (*objectTable, error) {
	if table, ok := b.tables[index]; ok {
		return table, nil
	}

	table, err := newObjectTable(index, b.options.Policy)
	if err != nil {
		return nil, err
	}

	table.segment = &Segment{
		Name:       tableName(index),
		BaseType:   descriptor.BaseTypeData,
		SystemType: b.options.ObjectTableSystemType,
		table:      table,
	}

	directory := b.tables[DirectoryIndex]
	if directory == nil {
		// Only the directory itself is created before the directory exists
		directory = table
	}

	err = directory.enter(table.segment, &index)
	if err != nil {
		return nil, errors.Wrapf(err, "directory %d", index)
	}

	b.tables[index] = table
	b.logger.LogAttrs(context.Background(), slog.LevelDebug, "created object table",
		slog.Int("directory", index),
	)

	return table, nil
}

// assignCoordinates enters every declared segment in an object table. Segments with declared coordinates
// are entered first so that the remaining segments fill in around them.
func (b *Builder) assignCoordinates() error {
	_, err := b.table(DirectoryIndex)
	if err != nil {
		return err
	}

	for _, seg := range b.declared {
		spec := b.specs[seg.Name]
		if spec.Coord == nil {
			continue
		}

		table, err := b.table(spec.Coord.Directory)
		if err != nil {
			return errors.Wrapf(err, "segment %s", seg.Name)
		}

		err = table.enter(seg, &spec.Coord.Segment)
		if err != nil {
			return err
		}
		b.logCoordinate(seg)
	}

	for _, seg := range b.declared {
		if b.specs[seg.Name].Coord != nil {
			continue
		}

		table, err := b.table(b.options.DefaultDirectory)
		if err != nil {
			return errors.Wrapf(err, "default directory")
		}

		err = table.enter(seg, nil)
		if err != nil {
			return err
		}
		b.logCoordinate(seg)
	}

	for _, table := range b.tables {
		end, err := table.endIndex()
		if err != nil {
			return err
		}
		table.segment.Length = (end + 1) * descriptor.Size
	}

	return nil
}

func (b *Builder) logCoordinate(seg *Segment) {
	b.logger.LogAttrs(context.Background(), slog.LevelDebug, "assigned coordinate",
		slog.String("segment", seg.Name),
		slog.Int("directory", seg.Coord.Directory),
		slog.Int("index", seg.Coord.Segment),
	)
}
