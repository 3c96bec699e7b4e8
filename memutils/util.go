package memutils

import (
	cerrors "github.com/cockroachdb/errors"
)

type Number interface {
	~int | ~uint
}

func CheckPow2[T Number](number T, name string) error {
	if number == 0 || number&(number-1) != 0 {
		return cerrors.Wrapf(PowerOfTwoError, "%s is %d", name, number)
	}
	return nil
}

func AlignUp(value int, alignment uint) int {
	DebugCheckPow2(alignment, "alignment")
	return (value + int(alignment) - 1) & int(^(alignment - 1))
}

func AlignDown(value int, alignment uint) int {
	DebugCheckPow2(alignment, "alignment")
	return value & int(^(alignment - 1))
}

// BitsToBytes returns the number of whole bytes needed to hold the provided number of bits
func BitsToBytes(bits int) int {
	return (bits + 7) / 8
}

// CheckRange verifies that [addr, addr+size) lies within an address space of spaceSize units. It returns
// an error wrapping OutOfRangeError otherwise.
func CheckRange(addr, size, spaceSize int) error {
	if size < 0 {
		return cerrors.Wrapf(OutOfRangeError, "requested size %d is negative", size)
	}
	if size > spaceSize {
		return cerrors.Wrapf(OutOfRangeError, "requested size %d is larger than the address space (%d)", size, spaceSize)
	}
	if addr < 0 {
		return cerrors.Wrapf(OutOfRangeError, "requested address %d is negative", addr)
	}
	if addr+size > spaceSize {
		return cerrors.Wrapf(OutOfRangeError, "requested block [%d, %d) extends beyond the address space (%d)", addr, addr+size, spaceSize)
	}
	return nil
}
