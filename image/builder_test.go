package image_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/i432/descriptor"
	"github.com/vkngwrapper/i432/image"
	"github.com/vkngwrapper/i432/memutils"
	"github.com/vkngwrapper/i432/segment"
	"golang.org/x/exp/slog"
)

func intPtr(i int) *int {
	return &i
}

func sampleSegments() []image.SegmentSpec {
	return []image.SegmentSpec{
		{
			Name:     "ctx",
			BaseType: descriptor.BaseTypeAccess,
			Fields: []segment.Field{
				{Name: "self", Kind: segment.AccessField, Target: "ctx"},
				{Name: "code", Kind: segment.AccessField, Target: "code"},
			},
		},
		{
			Name:       "code",
			BaseType:   descriptor.BaseTypeData,
			SystemType: 5,
			Fields: []segment.Field{
				{Name: "op", SizeBits: 16, Value: 0xbeef},
			},
		},
		{
			Name:     "fixed",
			BaseType: descriptor.BaseTypeData,
			Coord:    &descriptor.Coord{Directory: 3, Segment: 7},
			PhysAddr: intPtr(0x1000),
			Fields: []segment.Field{
				{Name: "word", SizeBits: 32, Value: 0xdeadbeef},
			},
		},
	}
}

func buildSample(t *testing.T, options image.BuildOptions) (*image.Builder, []byte) {
	builder, err := image.NewBuilder(nil, options)
	require.NoError(t, err)

	for _, spec := range sampleSegments() {
		require.NoError(t, builder.AddSegment(spec))
	}

	img, err := builder.Build()
	require.NoError(t, err)
	return builder, img
}

func requireSegment(t *testing.T, builder *image.Builder, name string, coord descriptor.Coord, base, length int) *image.Segment {
	seg, ok := builder.Segment(name)
	require.True(t, ok, name)
	require.Equal(t, coord, seg.Coord, name)
	require.Equal(t, base, seg.Base, name)
	require.Equal(t, length, seg.Length, name)
	return seg
}

func TestBuildPlacesSegments(t *testing.T) {
	builder, img := buildSample(t, image.BuildOptions{Flags: image.BuildValidate})

	// The fixed segment is the highest placement: its prefix begins at 0xff8 and it is rounded up to 16 bytes
	require.Len(t, img, 0x1008)

	requireSegment(t, builder, "fixed", descriptor.Coord{Directory: 3, Segment: 7}, 0x1000, 4)
	requireSegment(t, builder, "ctx", descriptor.Coord{Directory: 3, Segment: 1}, 216, 8)
	requireSegment(t, builder, "code", descriptor.Coord{Directory: 3, Segment: 2}, 232, 2)

	segments := builder.Segments()
	require.Len(t, segments, 5)
	require.True(t, segments[0].IsObjectTable())
	require.Equal(t, descriptor.Coord{Directory: 2, Segment: 2}, segments[0].Coord)
	require.Equal(t, image.DirectoryBase, segments[0].Base)
	require.Equal(t, 64, segments[0].Length)
	require.True(t, segments[1].IsObjectTable())
	require.Equal(t, descriptor.Coord{Directory: 2, Segment: 3}, segments[1].Coord)
	require.Equal(t, 80, segments[1].Base)
	require.Equal(t, 128, segments[1].Length)
	require.Equal(t, "ctx", segments[2].Name)
}

func TestBuildWritesDirectory(t *testing.T) {
	_, img := buildSample(t, image.BuildOptions{})

	sd, err := descriptor.DecodeStorageDescriptor(img, image.DirectoryBase+image.DirectoryIndex*descriptor.Size)
	require.NoError(t, err)
	require.Equal(t, image.DirectoryBase, sd.Base)
	require.Equal(t, 64, sd.Length)
	require.True(t, sd.Valid)

	header, err := descriptor.DecodeObjectTableHeader(img, image.DirectoryBase)
	require.NoError(t, err)
	require.Equal(t, descriptor.ObjectTableHeader{FreeIndex: 1, EndIndex: 3}, header)

	kind, values, err := descriptor.Parse(img, image.DirectoryBase+descriptor.Size)
	require.NoError(t, err)
	require.Equal(t, descriptor.KindFree, kind)
	require.Zero(t, values["free_index"])

	sd, err = descriptor.DecodeStorageDescriptor(img, image.DirectoryBase+3*descriptor.Size)
	require.NoError(t, err)
	require.Equal(t, 80, sd.Base)
	require.Equal(t, 128, sd.Length)

	prefix, err := descriptor.DecodeAccessDescriptor(img, 0)
	require.NoError(t, err)
	require.Equal(t, descriptor.Coord{Directory: 2, Segment: 2}, prefix.Coord)
}

func TestBuildWritesObjectTable(t *testing.T) {
	_, img := buildSample(t, image.BuildOptions{})
	const tableBase = 80

	header, err := descriptor.DecodeObjectTableHeader(img, tableBase)
	require.NoError(t, err)
	require.Equal(t, 3, header.FreeIndex)
	require.Equal(t, 7, header.EndIndex)

	for slot, next := range map[int]uint64{3: 4, 4: 5, 5: 6, 6: 0} {
		kind, values, err := descriptor.Parse(img, tableBase+slot*descriptor.Size)
		require.NoError(t, err)
		require.Equal(t, descriptor.KindFree, kind)
		require.Equal(t, next, values["free_index"], "slot %d", slot)
	}

	code, err := descriptor.DecodeStorageDescriptor(img, tableBase+2*descriptor.Size)
	require.NoError(t, err)
	require.Equal(t, descriptor.StorageDescriptor{
		Base:       232,
		Length:     2,
		BaseType:   descriptor.BaseTypeData,
		SystemType: 5,
		Valid:      true,
	}, code)

	ctx, err := descriptor.DecodeStorageDescriptor(img, tableBase+descriptor.Size)
	require.NoError(t, err)
	require.Equal(t, descriptor.BaseTypeAccess, ctx.BaseType)
}

func TestBuildWritesBodies(t *testing.T) {
	_, img := buildSample(t, image.BuildOptions{})

	prefix, err := descriptor.DecodeAccessDescriptor(img, 208)
	require.NoError(t, err)
	require.Equal(t, descriptor.Coord{Directory: 3, Segment: 1}, prefix.Coord)
	require.True(t, prefix.Valid)

	self, err := descriptor.DecodeAccessDescriptor(img, 216)
	require.NoError(t, err)
	require.Equal(t, descriptor.Coord{Directory: 3, Segment: 1}, self.Coord)
	require.True(t, self.Read)
	require.True(t, self.Write)

	code, err := descriptor.DecodeAccessDescriptor(img, 220)
	require.NoError(t, err)
	require.Equal(t, descriptor.Coord{Directory: 3, Segment: 2}, code.Coord)

	require.Equal(t, []byte{0xef, 0xbe}, img[232:234])
	require.Equal(t, []byte{0xef, 0xbe, 0xad, 0xde}, img[0x1000:0x1004])
}

func TestBuildSegmentsWithoutFields(t *testing.T) {
	builder, err := image.NewBuilder(nil, image.BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "empty"}))

	img, err := builder.Build()
	require.NoError(t, err)

	// directory [0,72), table 3 [72,112), empty [112,120)
	requireSegment(t, builder, "empty", descriptor.Coord{Directory: 3, Segment: 1}, 120, 0)
	require.Len(t, img, 120)
}

func TestBuildCoordinateCollisions(t *testing.T) {
	builder, err := image.NewBuilder(nil, image.BuildOptions{})
	require.NoError(t, err)

	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "a", Coord: &descriptor.Coord{Directory: 4, Segment: 1}}))
	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "b", Coord: &descriptor.Coord{Directory: 4, Segment: 1}}))

	_, err = builder.Build()
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.AllocationError))
	require.Contains(t, err.Error(), "already used by a")

	builder, err = image.NewBuilder(nil, image.BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "header", Coord: &descriptor.Coord{Directory: 4, Segment: 0}}))

	_, err = builder.Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "reserved")

	builder, err = image.NewBuilder(nil, image.BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "last", Coord: &descriptor.Coord{Directory: 4, Segment: image.TableEntries}}))

	_, err = builder.Build()
	require.True(t, errors.Is(err, memutils.OutOfRangeError))
}

func TestBuildPhysicalCollisions(t *testing.T) {
	builder, err := image.NewBuilder(nil, image.BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "low", PhysAddr: intPtr(0x20)}))

	_, err = builder.Build()
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.AllocationError))
	require.Contains(t, err.Error(), "overlaps object table directory")

	builder, err = image.NewBuilder(nil, image.BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "odd", PhysAddr: intPtr(0x1004)}))

	_, err = builder.Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "not aligned to 8 bytes, nearest is 0x1000")
}

func TestBuildOutOfMemory(t *testing.T) {
	builder, err := image.NewBuilder(nil, image.BuildOptions{MemorySize: 112})
	require.NoError(t, err)
	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "a"}))

	_, err = builder.Build()
	require.Error(t, err)
	require.True(t, errors.Is(err, memutils.AllocationError))
}

func TestAddSegmentRejectsBadSpecs(t *testing.T) {
	builder, err := image.NewBuilder(nil, image.BuildOptions{})
	require.NoError(t, err)

	require.Error(t, builder.AddSegment(image.SegmentSpec{}))
	require.Error(t, builder.AddSegment(image.SegmentSpec{Name: "dir", Coord: &descriptor.Coord{Directory: image.DirectoryIndex, Segment: 5}}))
	require.Error(t, builder.AddSegment(image.SegmentSpec{Name: "type", SystemType: 32}))
	require.Error(t, builder.AddSegment(image.SegmentSpec{
		Name:   "mixed",
		Fields: []segment.Field{{Name: "ad", Kind: segment.AccessField}},
	}))
	require.Error(t, builder.AddSegment(image.SegmentSpec{
		Name:   "collide",
		Fields: []segment.Field{{Name: "a", SizeBits: 8, Fixed: true}, {Name: "b", SizeBits: 8, Fixed: true}},
	}))
	require.Error(t, builder.AddSegment(image.SegmentSpec{
		Name:   "huge",
		Fields: []segment.Field{{Name: "a", SizeBits: segment.MaxSizeBits}},
	}))

	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "twice"}))
	require.Error(t, builder.AddSegment(image.SegmentSpec{Name: "twice"}))
}

func TestBuildUnknownTarget(t *testing.T) {
	builder, err := image.NewBuilder(nil, image.BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, builder.AddSegment(image.SegmentSpec{
		Name:     "ctx",
		BaseType: descriptor.BaseTypeAccess,
		Fields:   []segment.Field{{Name: "missing", Kind: segment.AccessField, Target: "nowhere"}},
	}))

	_, err = builder.Build()
	require.Error(t, err)
	require.Contains(t, err.Error(), "nowhere")
}

func TestBuildOnlyOnce(t *testing.T) {
	builder, _ := buildSample(t, image.BuildOptions{})

	_, err := builder.Build()
	require.Error(t, err)
	require.Error(t, builder.AddSegment(image.SegmentSpec{Name: "late"}))
}

func TestNewBuilderOptions(t *testing.T) {
	_, err := image.NewBuilder(nil, image.BuildOptions{Alignment: 12})
	require.True(t, errors.Is(err, memutils.PowerOfTwoError))

	_, err = image.NewBuilder(nil, image.BuildOptions{MemorySize: 1 << 25})
	require.Error(t, err)

	_, err = image.NewBuilder(nil, image.BuildOptions{DefaultDirectory: image.DirectoryIndex})
	require.Error(t, err)

	_, err = image.NewBuilder(nil, image.BuildOptions{MemorySize: 100})
	require.Error(t, err)
}

func TestBuildLogsAllocations(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	builder, err := image.NewBuilder(logger, image.BuildOptions{Flags: image.BuildLogAllocations})
	require.NoError(t, err)
	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "a"}))

	_, err = builder.Build()
	require.NoError(t, err)
	require.Contains(t, buf.String(), `"msg":"allocation"`)
	require.Contains(t, buf.String(), `"msg":"placed segment"`)
}

func TestBuilderMap(t *testing.T) {
	builder, err := image.NewBuilder(nil, image.BuildOptions{})
	require.NoError(t, err)
	require.NoError(t, builder.AddSegment(image.SegmentSpec{Name: "a"}))

	writer := jwriter.NewWriter()
	obj := writer.Object()
	require.Error(t, builder.Map(&obj))

	_, err = builder.Build()
	require.NoError(t, err)

	writer = jwriter.NewWriter()
	obj = writer.Object()
	require.NoError(t, builder.Map(&obj))
	obj.End()
	require.NoError(t, writer.Error())

	var decoded struct {
		Memory struct {
			TotalSize   int
			Allocations int
		}
		ObjectTables struct {
			SpaceCount  int
			Allocations int
		}
		Segments []struct {
			Name        string
			Directory   int
			Index       int
			Base        int
			Length      int
			ObjectTable bool
		}
	}
	require.NoError(t, json.Unmarshal(writer.Bytes(), &decoded))

	require.Equal(t, image.DefaultMemorySize, decoded.Memory.TotalSize)
	require.Equal(t, 3, decoded.Memory.Allocations)
	require.Equal(t, 2, decoded.ObjectTables.SpaceCount)
	// directory: header, itself, table 3; table 3: header, a
	require.Equal(t, 5, decoded.ObjectTables.Allocations)
	require.Len(t, decoded.Segments, 3)
	require.Equal(t, "a", decoded.Segments[2].Name)
	require.Equal(t, 3, decoded.Segments[2].Directory)
	require.Equal(t, 1, decoded.Segments[2].Index)
	require.False(t, decoded.Segments[2].ObjectTable)
}
