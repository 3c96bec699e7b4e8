package image

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/descriptor"
	"github.com/vkngwrapper/i432/memutils"
	"golang.org/x/exp/slices"
	"golang.org/x/exp/slog"
)

func (b *Builder) sortedTables() []*objectTable {
	tables := make([]*objectTable, 0, len(b.tables))
	for _, table := range b.tables {
		tables = append(tables, table)
	}

	// The directory always comes first
	slices.SortFunc(tables, func(left, right *objectTable) int {
		if left.index == DirectoryIndex {
			return -1
		}
		if right.index == DirectoryIndex {
			return 1
		}
		return left.index - right.index
	})

	return tables
}

// placementSize returns the number of bytes of physical memory a segment occupies, including its prefix
func (b *Builder) placementSize(seg *Segment) int {
	return memutils.AlignUp(descriptor.PrefixSize+seg.Length, b.options.Alignment)
}

// place assigns a physical address to every segment. The directory and segments with declared addresses
// are placed first, then the remaining object tables, then the remaining declared segments. Every
// placement begins on an aligned address and is a multiple of the alignment long, so the free ranges
// the allocator chooses from are always aligned too.
func (b *Builder) place() error {
	directory := b.tables[DirectoryIndex].segment
	directoryBase := DirectoryBase
	directory.fixedBase = &directoryBase

	fixed := []*Segment{directory}
	var floating []*Segment

	for _, table := range b.sortedTables() {
		if table.index != DirectoryIndex {
			floating = append(floating, table.segment)
		}
	}

	for _, seg := range b.declared {
		if seg.fixedBase != nil {
			fixed = append(fixed, seg)
		} else {
			floating = append(floating, seg)
		}
	}

	for _, seg := range fixed {
		err := b.placeFixed(seg)
		if err != nil {
			return err
		}
	}

	for _, seg := range floating {
		addr, err := b.memory.Allocate(b.placementSize(seg), seg.Name)
		if err != nil {
			return errors.Wrapf(err, "segment %s (%d bytes)", seg.Name, seg.Length)
		}

		seg.Base = addr + descriptor.PrefixSize
		b.logPlacement(seg)
	}

	return nil
}

func (b *Builder) placeFixed(seg *Segment) error {
	base := *seg.fixedBase
	prefix := base - descriptor.PrefixSize

	if prefix < 0 {
		return errors.Wrapf(memutils.OutOfRangeError, "segment %s at %#x leaves no room for its prefix", seg.Name, base)
	}
	if aligned := memutils.AlignDown(prefix, b.options.Alignment); aligned != prefix {
		return errors.Newf("segment %s at %#x is not aligned to %d bytes, nearest is %#x", seg.Name, base, b.options.Alignment, aligned+descriptor.PrefixSize)
	}

	_, err := b.memory.AllocateAt(prefix, b.placementSize(seg), seg.Name)
	if errors.Is(err, memutils.AllocationError) {
		return errors.Wrapf(err, "segment %s at %#x overlaps %s", seg.Name, base, b.occupant(prefix, b.placementSize(seg)))
	} else if err != nil {
		return errors.Wrapf(err, "segment %s at %#x", seg.Name, base)
	}

	seg.Base = base
	b.logPlacement(seg)
	return nil
}

// occupant names the first placed segment that overlaps [addr, addr+size)
func (b *Builder) occupant(addr, size int) string {
	_, name, ok := b.memory.AllocationOverlapping(addr, size)
	if !ok {
		return "another segment"
	}
	return name
}

func (b *Builder) logPlacement(seg *Segment) {
	b.logger.LogAttrs(context.Background(), slog.LevelDebug, "placed segment",
		slog.String("segment", seg.Name),
		slog.Int("base", seg.Base),
		slog.Int("length", seg.Length),
		slog.Bool("fixed", seg.fixedBase != nil),
	)
}
