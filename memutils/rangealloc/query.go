package rangealloc

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/i432/memutils"
)

func (a *Allocator[T]) resolveRange(addr, size int) (int, error) {
	if size == RestOfSpace {
		if addr < 0 {
			return 0, errors.Wrapf(memutils.OutOfRangeError, "requested address %d is negative", addr)
		}
		size = a.size - addr
	}

	return size, memutils.CheckRange(addr, size, a.size)
}

// FreeSpace returns the number of free units within [addr, addr+size). Pass RestOfSpace as the size to
// query through the end of the address space. Blocks which straddle either end of the range only count
// the portion which overlaps the range.
func (a *Allocator[T]) FreeSpace(addr, size int) (int, error) {
	size, err := a.resolveRange(addr, size)
	if err != nil {
		return 0, err
	}

	if size == 0 {
		return 0, nil
	}

	end := addr + size
	var count int

	index, _ := a.findBlock(addr)
	for ; index < len(a.blocks) && a.blocks[index].offset < end; index++ {
		block := a.blocks[index]
		if block.free {
			count += min(block.end(), end) - max(block.offset, addr)
		}
	}

	return count, nil
}

// AllocatedSpace returns the number of allocated units within [addr, addr+size). Pass RestOfSpace as
// the size to query through the end of the address space.
func (a *Allocator[T]) AllocatedSpace(addr, size int) (int, error) {
	size, err := a.resolveRange(addr, size)
	if err != nil {
		return 0, err
	}

	free, err := a.FreeSpace(addr, size)
	if err != nil {
		return 0, err
	}

	return size - free, nil
}

// LastFreeRange returns the start address of the final free region of the address space, which is one
// past the end of the highest allocated block. It returns 0 when nothing has been allocated and Size()
// when the end of the address space is allocated.
//
// An error is returned only if the allocator's internal state has been corrupted.
func (a *Allocator[T]) LastFreeRange() (int, error) {
	last := a.blocks[len(a.blocks)-1]
	if !last.free {
		return a.size, nil
	}

	if len(a.blocks) == 1 {
		return 0, nil
	}

	prev := a.blocks[len(a.blocks)-2]
	if prev.free {
		return 0, errors.AssertionFailedf("adjacent free blocks at offsets %d and %d", prev.offset, last.offset)
	}

	return last.offset, nil
}

// HighestAllocated returns the address of the highest allocated unit, or -1 if nothing has been allocated
func (a *Allocator[T]) HighestAllocated() (int, error) {
	lastFree, err := a.LastFreeRange()
	if err != nil {
		return 0, err
	}

	return lastFree - 1, nil
}

// ContiguousFromZero returns true if the allocated space forms a single run starting at address 0, that is,
// if the only free space is at the very end of the address space. A fully allocated or entirely empty
// address space is contiguous.
func (a *Allocator[T]) ContiguousFromZero() (bool, error) {
	lastFree, err := a.LastFreeRange()
	if err != nil {
		return false, err
	}

	if a.firstFree == nil {
		return true, nil
	}

	return a.firstFree.offset == lastFree, nil
}

// AllocationData returns the payload of the allocation starting exactly at addr
func (a *Allocator[T]) AllocationData(addr int) (T, error) {
	var zero T

	block, ok := a.offsetKey.Get(addr)
	if !ok {
		return zero, errors.Newf("no block begins at address %d", addr)
	}

	if block.free {
		return zero, errors.Newf("the block at address %d is free", addr)
	}

	return block.data, nil
}

// AllocationOverlapping returns the address and payload of the lowest allocated block that overlaps
// [addr, addr+size). ok is false when the range is entirely free or lies outside the address space.
func (a *Allocator[T]) AllocationOverlapping(addr, size int) (offset int, data T, ok bool) {
	if memutils.CheckRange(addr, size, a.size) != nil || addr == a.size {
		return 0, data, false
	}

	index, _ := a.findBlock(addr)
	for ; index < len(a.blocks) && a.blocks[index].offset < addr+size; index++ {
		block := a.blocks[index]
		if !block.free {
			return block.offset, block.data, true
		}
	}

	return 0, data, false
}

// VisitAllRegions will call the provided callback once for each allocated and free region of the address
// space, in ascending address order. Iteration stops at the first error returned by the callback.
func (a *Allocator[T]) VisitAllRegions(handleBlock func(offset int, size int, data T, free bool) error) error {
	for _, block := range a.blocks {
		err := handleBlock(block.offset, block.size, block.data, block.free)
		if err != nil {
			return err
		}
	}

	return nil
}
