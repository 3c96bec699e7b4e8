package descriptor_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/i432/descriptor"
)

var allLayouts = []*descriptor.Layout{
	&descriptor.AccessDescriptorLayout,
	&descriptor.ObjectTableHeaderLayout,
	&descriptor.FreeDescriptorLayout,
	&descriptor.StorageDescriptorLayout,
	&descriptor.RefinementDescriptorLayout,
	&descriptor.TypeDescriptorLayout,
	&descriptor.InterconnectDescriptorLayout,
}

func TestLayoutsValidate(t *testing.T) {
	for _, layout := range allLayouts {
		t.Run(layout.Name, func(t *testing.T) {
			require.NoError(t, layout.Validate())
		})
	}

	require.Equal(t, descriptor.AccessDescriptorSize, descriptor.AccessDescriptorLayout.SizeBytes())
	require.Equal(t, descriptor.Size, descriptor.StorageDescriptorLayout.SizeBytes())
}

func TestLayoutValidateDetectsOverlap(t *testing.T) {
	layout := descriptor.Layout{
		Name:     "Broken",
		SizeBits: 16,
		Fields: []descriptor.Field{
			{Name: "low", LSB: 0, Width: 8},
			{Name: "mid", LSB: 6, Width: 4},
		},
	}

	err := layout.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "mid")
	require.Contains(t, err.Error(), "overlaps")
}

func TestLayoutValidateDetectsOverflow(t *testing.T) {
	layout := descriptor.Layout{
		Name:     "Broken",
		SizeBits: 16,
		Fields: []descriptor.Field{
			{Name: "wide", LSB: 8, Width: 9},
		},
	}

	require.Error(t, layout.Validate())
}

func TestLayoutEncodeDecode(t *testing.T) {
	buf := make([]byte, 20)
	for i := range buf {
		buf[i] = 0xee
	}

	values := descriptor.Values{
		"descriptor_type": 3,
		"valid":           1,
		"segment_base":    0xabcdef,
		"segment_length":  0x1234,
		"system_type":     0x15,
		"dirty":           1,
	}
	require.NoError(t, descriptor.StorageDescriptorLayout.Encode(buf, 2, values))

	// Bytes outside the record are untouched
	require.Equal(t, byte(0xee), buf[0])
	require.Equal(t, byte(0xee), buf[1])
	require.Equal(t, byte(0xee), buf[18])

	decoded, err := descriptor.StorageDescriptorLayout.Decode(buf, 2)
	require.NoError(t, err)
	for name, value := range values {
		require.Equal(t, value, decoded[name], name)
	}
	require.Zero(t, decoded["preserved"])
	require.Zero(t, decoded["io_lock"])
}

func TestLayoutEncodeErrorsLeaveBufferIntact(t *testing.T) {
	buf := make([]byte, 4)

	err := descriptor.AccessDescriptorLayout.Encode(buf, 0, descriptor.Values{"valid": 1, "bogus": 1})
	require.Error(t, err)
	require.Equal(t, make([]byte, 4), buf)

	err = descriptor.AccessDescriptorLayout.Encode(buf, 0, descriptor.Values{"valid": 1, "seg_index": 1 << 12})
	require.Error(t, err)
	require.Equal(t, make([]byte, 4), buf)

	err = descriptor.AccessDescriptorLayout.Encode(buf, 1, descriptor.Values{"valid": 1})
	require.Error(t, err)
}
