package image

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/descriptor"
	"github.com/vkngwrapper/i432/memutils"
	"github.com/vkngwrapper/i432/memutils/rangealloc"
	"github.com/vkngwrapper/i432/segment"
	"golang.org/x/exp/slog"
)

// Builder assembles declared segments into a physical memory image. A Builder can only build once.
//
// Builder is not safe for concurrent use.
type Builder struct {
	logger  *slog.Logger
	options BuildOptions

	specs    map[string]*SegmentSpec
	declared []*Segment

	tables map[int]*objectTable
	memory *rangealloc.Allocator[string]
	built  bool
}

// NewBuilder creates an empty Builder
//
// options - Optional parameters: it is valid to leave all the fields blank
func NewBuilder(logger *slog.Logger, options BuildOptions) (*Builder, error) {
	if logger == nil {
		logger = slog.Default()
	}

	options = options.withDefaults()

	err := memutils.CheckPow2(options.Alignment, "BuildOptions.Alignment")
	if err != nil {
		return nil, err
	}
	if options.MemorySize%int(options.Alignment) != 0 {
		return nil, errors.Newf("BuildOptions.MemorySize %d is not a multiple of the alignment %d", options.MemorySize, options.Alignment)
	}
	if options.MemorySize > descriptor.MaxSegmentBase+1 {
		return nil, errors.Newf("BuildOptions.MemorySize %d is larger than the %d bytes a storage descriptor can address", options.MemorySize, descriptor.MaxSegmentBase+1)
	}
	if options.DefaultDirectory == DirectoryIndex || options.DefaultDirectory < 1 || options.DefaultDirectory >= TableEntries {
		return nil, errors.Newf("BuildOptions.DefaultDirectory %d cannot hold segments", options.DefaultDirectory)
	}
	if options.ObjectTableSystemType > descriptor.MaxSystemType {
		return nil, errors.Newf("BuildOptions.ObjectTableSystemType %d must be at most %d", options.ObjectTableSystemType, descriptor.MaxSystemType)
	}

	memory, err := rangealloc.New[string](options.MemorySize, options.Policy)
	if err != nil {
		return nil, err
	}

	return &Builder{
		logger:  logger,
		options: options,
		specs:   make(map[string]*SegmentSpec),
		tables:  make(map[int]*objectTable),
		memory:  memory,
	}, nil
}

// AddSegment declares a segment to be placed in the image. Its fields are laid out immediately.
func (b *Builder) AddSegment(spec SegmentSpec) error {
	if b.built {
		return errors.New("segments cannot be added after the image has been built")
	}

	err := spec.validate()
	if err != nil {
		return err
	}

	if _, exists := b.specs[spec.Name]; exists {
		return errors.Newf("segment %s is declared more than once", spec.Name)
	}

	space, err := segment.NewSpace(b.options.Policy)
	if err != nil {
		return err
	}

	layout, err := segment.Layout(b.logger.With(slog.String("segment", spec.Name)), space, spec.Fields)
	if err != nil {
		return errors.Wrapf(err, "segment %s", spec.Name)
	}

	if layout.LengthBytes() > descriptor.MaxSegmentLength {
		return errors.Wrapf(memutils.OutOfRangeError, "segment %s is %d bytes long, more than the maximum of %d", spec.Name, layout.LengthBytes(), descriptor.MaxSegmentLength)
	}

	if b.options.Flags&BuildValidate != 0 {
		err = space.Validate()
		if err != nil {
			return errors.Wrapf(err, "segment %s field space", spec.Name)
		}
	}

	b.specs[spec.Name] = &spec
	b.declared = append(b.declared, &Segment{
		Name:       spec.Name,
		BaseType:   spec.BaseType,
		SystemType: spec.SystemType,
		Length:     layout.LengthBytes(),
		Layout:     layout,
		fixedBase:  spec.PhysAddr,
	})

	return nil
}

// Build assigns coordinates and physical addresses to every declared segment and returns the serialized
// image. The image runs from physical address 0 through the highest allocated byte.
func (b *Builder) Build() ([]byte, error) {
	if b.built {
		return nil, errors.New("the image has already been built")
	}
	b.built = true

	err := b.assignCoordinates()
	if err != nil {
		return nil, err
	}

	err = b.place()
	if err != nil {
		return nil, err
	}

	if b.options.Flags&BuildValidate != 0 {
		err = b.validate()
		if err != nil {
			return nil, err
		}
	}

	if b.options.Flags&BuildLogAllocations != 0 {
		b.memory.DebugLogAllAllocations(b.logger, rangealloc.LogAllocation[string])
	}

	image, err := b.serialize()
	if err != nil {
		return nil, err
	}

	b.logger.LogAttrs(context.Background(), slog.LevelDebug, "built image",
		slog.Int("segments", len(b.declared)),
		slog.Int("objectTables", len(b.tables)),
		slog.Int("length", len(image)),
	)

	return image, nil
}

func (b *Builder) validate() error {
	objects := map[string]memutils.Validatable{
		"physical memory": b.memory,
	}
	for index, table := range b.tables {
		objects[tableName(index)] = table.slots
	}

	return memutils.ValidateAll(objects)
}

// Segments returns every placed segment: the object table directory, then the other object tables in
// directory order, then the declared segments in declaration order
func (b *Builder) Segments() []*Segment {
	if !b.built {
		return nil
	}

	segments := make([]*Segment, 0, len(b.tables)+len(b.declared))
	for _, table := range b.sortedTables() {
		segments = append(segments, table.segment)
	}

	return append(segments, b.declared...)
}

// Segment returns the declared segment with the provided name
func (b *Builder) Segment(name string) (*Segment, bool) {
	for _, seg := range b.declared {
		if seg.Name == name {
			return seg, true
		}
	}

	return nil, false
}
