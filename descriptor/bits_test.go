package descriptor_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vkngwrapper/i432/descriptor"
)

func TestBitsAcrossByteBoundaries(t *testing.T) {
	buf := make([]byte, 16)

	require.NoError(t, descriptor.PutBits(buf, 5, 11, 0x5a5))
	require.NoError(t, descriptor.PutBits(buf, 20, 12, 0xabc))
	require.NoError(t, descriptor.PutBits(buf, 97, 31, 0x7fffffff))

	value, err := descriptor.GetBits(buf, 5, 11)
	require.NoError(t, err)
	require.Equal(t, uint64(0x5a5), value)

	value, err = descriptor.GetBits(buf, 20, 12)
	require.NoError(t, err)
	require.Equal(t, uint64(0xabc), value)

	value, err = descriptor.GetBits(buf, 97, 31)
	require.NoError(t, err)
	require.Equal(t, uint64(0x7fffffff), value)

	// Untouched bits stay clear
	value, err = descriptor.GetBits(buf, 0, 5)
	require.NoError(t, err)
	require.Zero(t, value)
	require.Zero(t, buf[12]&1)
}

func TestBitsLeastSignificantFirst(t *testing.T) {
	buf := make([]byte, 4)
	require.NoError(t, descriptor.PutBits(buf, 4, 12, 0x123))
	require.Equal(t, []byte{0x30, 0x12, 0, 0}, buf)

	require.NoError(t, descriptor.PutBits(buf, 0, 64-32, 0xffffffff))
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff}, buf)
}

func TestPutBitsPreservesNeighbours(t *testing.T) {
	buf := []byte{0xff, 0xff}
	require.NoError(t, descriptor.PutBits(buf, 3, 6, 0))
	require.Equal(t, []byte{0x07, 0xfe}, buf)
}

func TestBitsErrors(t *testing.T) {
	buf := make([]byte, 2)

	require.Error(t, descriptor.PutBits(buf, 0, 4, 0x10))
	require.Error(t, descriptor.PutBits(buf, 10, 7, 0))
	require.Error(t, descriptor.PutBits(buf, -1, 2, 0))
	require.Error(t, descriptor.PutBits(buf, 0, 0, 0))

	_, err := descriptor.GetBits(buf, 0, 65)
	require.Error(t, err)
	_, err = descriptor.GetBits(buf, 15, 2)
	require.Error(t, err)
}
