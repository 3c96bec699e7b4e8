package rangealloc

// RestOfSpace may be passed as the size to FreeSpace and AllocatedSpace to query everything from the
// provided address to the end of the address space
const RestOfSpace = -1

type rangeBlock[T any] struct {
	offset int
	size   int
	free   bool
	data   T

	// Only maintained while the block is free
	prevFree *rangeBlock[T]
	nextFree *rangeBlock[T]
}

func (b *rangeBlock[T]) end() int {
	return b.offset + b.size
}

func compareBlockOffset[T any](b *rangeBlock[T], addr int) int {
	switch {
	case b.offset < addr:
		return -1
	case b.offset > addr:
		return 1
	default:
		return 0
	}
}
