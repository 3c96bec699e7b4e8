package descriptor_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/i432/descriptor"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		first byte
		kind  descriptor.Kind
	}{
		{0x03, descriptor.KindStorage},
		{0xff, descriptor.KindStorage},
		{0x02, descriptor.KindRefinement},
		{0x01, descriptor.KindType},
		{0x00, descriptor.KindObjectTableHeader},
		{0x04, descriptor.KindFree},
		{0x08, descriptor.KindInterconnect},
		{0x0c, descriptor.KindInterconnect},
		{0x10, descriptor.KindUnknown},
		{0x18, descriptor.KindUnknown},
	}

	for _, c := range cases {
		require.Equal(t, c.kind, descriptor.Classify(c.first), "first byte %#02x", c.first)
	}
}

func TestParse(t *testing.T) {
	buf := make([]byte, 2*descriptor.Size)

	require.NoError(t, descriptor.ObjectTableHeader{FreeIndex: 0, EndIndex: 1}.Encode(buf, 0))
	require.NoError(t, descriptor.StorageDescriptor{Base: 0x40, Length: 24, Valid: true}.Encode(buf, descriptor.Size))

	kind, values, err := descriptor.Parse(buf, 0)
	require.NoError(t, err)
	require.Equal(t, descriptor.KindObjectTableHeader, kind)
	require.Equal(t, uint64(1), values["end_index"])

	kind, values, err = descriptor.Parse(buf, descriptor.Size)
	require.NoError(t, err)
	require.Equal(t, descriptor.KindStorage, kind)
	require.Equal(t, uint64(0x40), values["segment_base"])
	require.Equal(t, uint64(24), values["segment_length"])

	buf[0] = 0x10
	_, _, err = descriptor.Parse(buf, 0)
	require.Error(t, err)

	_, _, err = descriptor.Parse(buf, len(buf))
	require.Error(t, err)
}
