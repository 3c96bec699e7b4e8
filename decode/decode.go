// Package decode reads a physical memory image, walking the object table hierarchy from the object table
// directory and checking that the segments it describes are well formed.
package decode

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/descriptor"
	"github.com/vkngwrapper/i432/image"
	"github.com/vkngwrapper/i432/memutils"
	"github.com/vkngwrapper/i432/memutils/rangealloc"
	"golang.org/x/exp/slog"
)

// CorruptImageError is wrapped by every error that describes a malformed image
var CorruptImageError = errors.New("corrupt image")

// Entry is a single decoded object table entry
type Entry struct {
	Index  int
	Kind   descriptor.Kind
	Values descriptor.Values
}

// Segment is a segment described by a storage descriptor
type Segment struct {
	Coord      descriptor.Coord
	Descriptor descriptor.StorageDescriptor
}

// Table is a decoded object table
type Table struct {
	Segment
	Header  descriptor.ObjectTableHeader
	Entries []Entry
}

// Image is the decoded object table hierarchy of an image
type Image struct {
	// Tables holds every object table, including the directory, by directory index
	Tables map[int]*Table
	// Segments holds every segment that an object table describes, including the tables, in coordinate order
	Segments []Segment
}

type decoder struct {
	logger    *slog.Logger
	image     []byte
	occupancy *rangealloc.Allocator[descriptor.Coord]
	result    *Image
}

// Decode reads the object table hierarchy of image. It fails with an error wrapping CorruptImageError if
// a descriptor is malformed, a segment's prefix does not name the segment, or two segments overlap.
func Decode(logger *slog.Logger, img []byte) (*Image, error) {
	if logger == nil {
		logger = slog.Default()
	}

	directoryEntry := image.DirectoryBase + image.DirectoryIndex*descriptor.Size
	if len(img) < directoryEntry+descriptor.Size {
		return nil, errors.Wrapf(CorruptImageError, "image is %d bytes long, too short to hold an object table directory", len(img))
	}

	occupancy, err := rangealloc.New[descriptor.Coord](len(img), rangealloc.PolicyFirstFit)
	if err != nil {
		return nil, err
	}

	d := &decoder{
		logger:    logger,
		image:     img,
		occupancy: occupancy,
		result: &Image{
			Tables: make(map[int]*Table),
		},
	}

	directoryCoord := descriptor.Coord{Directory: image.DirectoryIndex, Segment: image.DirectoryIndex}
	directory, err := d.readTable(directoryCoord, directoryEntry)
	if err != nil {
		return nil, err
	}
	if directory.Descriptor.Base != image.DirectoryBase {
		return nil, errors.Wrapf(CorruptImageError, "object table directory is at %#x rather than %#x", directory.Descriptor.Base, image.DirectoryBase)
	}

	for _, entry := range directory.Entries {
		if entry.Index == image.DirectoryIndex {
			err = d.checkSelfEntry(directory, entry)
		} else if entry.Kind == descriptor.KindStorage {
			tableCoord := descriptor.Coord{Directory: image.DirectoryIndex, Segment: entry.Index}
			_, err = d.readTable(tableCoord, directory.Descriptor.Base+entry.Index*descriptor.Size)
		} else if entry.Kind != descriptor.KindFree {
			err = errors.Wrapf(CorruptImageError, "directory entry %d is a %s descriptor", entry.Index, entry.Kind)
		}
		if err != nil {
			return nil, err
		}
	}

	sort.Slice(d.result.Segments, func(i, j int) bool {
		left, right := d.result.Segments[i].Coord, d.result.Segments[j].Coord
		if left.Directory != right.Directory {
			return left.Directory < right.Directory
		}
		return left.Segment < right.Segment
	})

	return d.result, nil
}

func (d *decoder) checkSelfEntry(directory *Table, entry Entry) error {
	if entry.Kind != descriptor.KindStorage {
		return errors.Wrapf(CorruptImageError, "directory entry %d is a %s descriptor", entry.Index, entry.Kind)
	}
	if entry.Values["segment_base"] != uint64(directory.Descriptor.Base) {
		return errors.Wrapf(CorruptImageError, "directory entry %d does not describe the directory", entry.Index)
	}
	return nil
}

// claim records the segment described by sd as occupying its prefix and body, and checks that the prefix
// names the segment
func (d *decoder) claim(coord descriptor.Coord, sd descriptor.StorageDescriptor) error {
	prefix := sd.Base - descriptor.PrefixSize
	size := descriptor.PrefixSize + sd.Length

	if prefix < 0 {
		return errors.Wrapf(CorruptImageError, "segment %s at %#x leaves no room for its prefix", coord, sd.Base)
	}

	_, err := d.occupancy.AllocateAt(prefix, size, coord)
	if errors.Is(err, memutils.OutOfRangeError) {
		return errors.Wrapf(CorruptImageError, "segment %s [%#x, %#x) extends past the end of the image", coord, prefix, prefix+size)
	} else if errors.Is(err, memutils.AllocationError) {
		return errors.Wrapf(CorruptImageError, "segment %s [%#x, %#x) overlaps %s", coord, prefix, prefix+size, d.occupant(prefix, size))
	} else if err != nil {
		return err
	}

	ad, err := descriptor.DecodeAccessDescriptor(d.image, prefix)
	if err != nil {
		return err
	}
	if !ad.Valid || ad.Coord != coord {
		return errors.Wrapf(CorruptImageError, "segment %s has a prefix naming %s", coord, ad.Coord)
	}

	d.result.Segments = append(d.result.Segments, Segment{Coord: coord, Descriptor: sd})
	d.logger.LogAttrs(context.Background(), slog.LevelDebug, "decoded segment",
		slog.Int("directory", coord.Directory),
		slog.Int("index", coord.Segment),
		slog.Int("base", sd.Base),
		slog.Int("length", sd.Length),
	)

	return nil
}

func (d *decoder) occupant(addr, size int) string {
	_, coord, ok := d.occupancy.AllocationOverlapping(addr, size)
	if !ok {
		return "another segment"
	}
	return coord.String()
}

// readTable decodes the object table described by the storage descriptor at byte offset sdOffset, and
// claims every segment the table describes
func (d *decoder) readTable(coord descriptor.Coord, sdOffset int) (*Table, error) {
	sd, err := descriptor.DecodeStorageDescriptor(d.image, sdOffset)
	if err != nil {
		return nil, errors.Wrapf(CorruptImageError, "object table %d: %v", coord.Segment, err)
	}

	err = d.claim(coord, sd)
	if err != nil {
		return nil, err
	}

	header, err := descriptor.DecodeObjectTableHeader(d.image, sd.Base)
	if err != nil {
		return nil, errors.Wrapf(CorruptImageError, "object table %d: %v", coord.Segment, err)
	}
	if (header.EndIndex+1)*descriptor.Size > sd.Length {
		return nil, errors.Wrapf(CorruptImageError, "object table %d ends at entry %d but is only %d bytes long", coord.Segment, header.EndIndex, sd.Length)
	}

	table := &Table{
		Segment: Segment{Coord: coord, Descriptor: sd},
		Header:  header,
	}

	for index := 1; index <= header.EndIndex; index++ {
		offset := sd.Base + index*descriptor.Size
		kind, values, err := descriptor.Parse(d.image, offset)
		if err != nil {
			return nil, errors.Wrapf(CorruptImageError, "object table %d entry %d: %v", coord.Segment, index, err)
		}

		table.Entries = append(table.Entries, Entry{Index: index, Kind: kind, Values: values})

		// Entries of the directory are object tables, which the caller reads
		if kind != descriptor.KindStorage || coord.Segment == image.DirectoryIndex {
			continue
		}

		entrySD, err := descriptor.DecodeStorageDescriptor(d.image, offset)
		if err != nil {
			return nil, err
		}

		err = d.claim(descriptor.Coord{Directory: coord.Segment, Segment: index}, entrySD)
		if err != nil {
			return nil, err
		}
	}

	err = checkFreeChain(table)
	if err != nil {
		return nil, err
	}

	d.result.Tables[coord.Segment] = table
	return table, nil
}

// checkFreeChain follows the chain of free entries from the table header and verifies that it visits
// exactly the table's free entries
func checkFreeChain(table *Table) error {
	free := make(map[int]struct{})
	for _, entry := range table.Entries {
		if entry.Kind == descriptor.KindFree {
			free[entry.Index] = struct{}{}
		}
	}

	for index := table.Header.FreeIndex; index != 0; {
		if _, ok := free[index]; !ok {
			return errors.Wrapf(CorruptImageError, "object table %d free chain reaches entry %d, which is not free", table.Coord.Segment, index)
		}
		delete(free, index)

		index = int(table.Entries[index-1].Values["free_index"])
	}

	if len(free) > 0 {
		return errors.Wrapf(CorruptImageError, "object table %d has %d free entries missing from its free chain", table.Coord.Segment, len(free))
	}

	return nil
}
