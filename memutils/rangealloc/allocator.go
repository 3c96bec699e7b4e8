package rangealloc

import (
	"github.com/cockroachdb/errors"
	"github.com/dolthub/swiss"
	"github.com/vkngwrapper/i432/memutils"
	"golang.org/x/exp/slices"
)

// Allocator manages allocations within the address space [0, Size()). Each allocated block carries a
// payload of type T which the allocator stores and returns but never interprets.
//
// Allocator is not safe for concurrent use.
type Allocator[T any] struct {
	size      int
	policy    Policy
	totalFree int

	allocCount int
	freeCount  int

	// blocks partitions the address space and is kept sorted by offset
	blocks []*rangeBlock[T]
	// offsetKey maps the start offset of every block to the block
	offsetKey *swiss.Map[int, *rangeBlock[T]]

	firstFree *rangeBlock[T]
	// cursor is the next free block the rotating first fit policy will consider. It may be nil, in which
	// case searches begin at firstFree.
	cursor *rangeBlock[T]
}

// New creates an Allocator managing size units of address space with the provided search policy. The whole
// space starts out as a single free block.
func New[T any](size int, policy Policy) (*Allocator[T], error) {
	if size < 1 {
		return nil, errors.Wrapf(memutils.OutOfRangeError, "address space size %d must be at least 1", size)
	}
	if _, ok := policyMapping[policy]; !ok {
		return nil, errors.Newf("unknown allocation policy: %d", policy)
	}

	block := &rangeBlock[T]{
		offset: 0,
		size:   size,
		free:   true,
	}

	a := &Allocator[T]{
		size:      size,
		policy:    policy,
		totalFree: size,
		freeCount: 1,
		blocks:    []*rangeBlock[T]{block},
		offsetKey: swiss.NewMap[int, *rangeBlock[T]](42),
		firstFree: block,
		cursor:    block,
	}
	a.offsetKey.Put(0, block)

	return a, nil
}

// Size returns the size of the address space the allocator was created with
func (a *Allocator[T]) Size() int { return a.size }

// Policy returns the search policy the allocator was created with
func (a *Allocator[T]) Policy() Policy { return a.policy }

// SumFreeSize returns the number of free units in the address space
func (a *Allocator[T]) SumFreeSize() int { return a.totalFree }

// AllocationCount returns the number of successful allocations that have been made
func (a *Allocator[T]) AllocationCount() int { return a.allocCount }

// FreeRegionsCount returns the number of distinct free blocks in the address space
func (a *Allocator[T]) FreeRegionsCount() int { return a.freeCount }

// IsEmpty returns true if nothing has been allocated yet
func (a *Allocator[T]) IsEmpty() bool { return a.allocCount == 0 }

// findBlock returns the block containing addr and its index within the block list. addr must
// lie within the address space.
func (a *Allocator[T]) findBlock(addr int) (int, *rangeBlock[T]) {
	index, found := slices.BinarySearchFunc(a.blocks, addr, compareBlockOffset[T])
	if !found {
		index--
	}

	return index, a.blocks[index]
}

// FitsAt reports whether the range [addr, addr+size) lies entirely within a single free block. It never
// changes the state of the allocator.
func (a *Allocator[T]) FitsAt(addr, size int) (bool, error) {
	err := memutils.CheckRange(addr, size, a.size)
	if err != nil {
		return false, err
	}

	if addr == a.size {
		// Only reachable with a zero size
		return false, nil
	}

	_, block := a.findBlock(addr)
	return block.free && addr+size <= block.end(), nil
}

// FindFree returns the address at which an allocation of the requested size would be placed by Allocate.
// If FindFree succeeds and Allocate is called next for the same size with no other calls in between, the
// allocation will be made at the returned address.
//
// Under PolicyRotatingFirstFit the search cursor is advanced past any free blocks that were too small.
func (a *Allocator[T]) FindFree(size int) (int, error) {
	err := memutils.CheckRange(0, size, a.size)
	if err != nil {
		return 0, err
	}

	block, err := a.search(size)
	if err != nil {
		return 0, err
	}

	return block.offset, nil
}

func (a *Allocator[T]) search(size int) (*rangeBlock[T], error) {
	if a.firstFree == nil {
		return nil, errors.Wrap(memutils.AllocationError, "insufficient contiguous free space available")
	}

	rotating := a.policy == PolicyRotatingFirstFit
	savedCursor := a.cursor

	block := a.firstFree
	if rotating && a.cursor != nil {
		block = a.cursor
	}
	// A scan which begins at the head of the list has nothing to wrap around to
	secondPass := block == a.firstFree

	for {
		if block.size >= size {
			if rotating {
				a.cursor = block
			}
			return block, nil
		}

		block = block.nextFree
		if rotating {
			a.cursor = block
		}

		if block == nil {
			if secondPass || !rotating {
				a.cursor = savedCursor
				return nil, errors.Wrapf(memutils.AllocationError, "insufficient contiguous free space available for %d units", size)
			}

			block = a.firstFree
			a.cursor = block
			secondPass = true
		}
	}
}

func (a *Allocator[T]) checkAllocationSize(size int) error {
	if size < 1 {
		return errors.Wrapf(memutils.OutOfRangeError, "requested size %d must be positive", size)
	}
	if size > a.size {
		return errors.Wrapf(memutils.OutOfRangeError, "requested size %d is larger than the address space (%d)", size, a.size)
	}
	if size > a.totalFree {
		return errors.Wrapf(memutils.AllocationError, "insufficient free space available: requested %d, %d free", size, a.totalFree)
	}

	return nil
}

// Allocate reserves size units at an address of the allocator's choosing and attaches data to them. The
// address is chosen according to the allocator's Policy.
func (a *Allocator[T]) Allocate(size int, data T) (int, error) {
	err := a.checkAllocationSize(size)
	if err != nil {
		return 0, err
	}

	block, err := a.search(size)
	if err != nil {
		return 0, err
	}

	return a.allocateAt(block.offset, size, data)
}

// AllocateAt reserves exactly the range [addr, addr+size) and attaches data to it. The range must lie
// entirely within a single free block.
func (a *Allocator[T]) AllocateAt(addr, size int, data T) (int, error) {
	err := memutils.CheckRange(addr, size, a.size)
	if err != nil {
		return 0, err
	}

	err = a.checkAllocationSize(size)
	if err != nil {
		return 0, err
	}

	return a.allocateAt(addr, size, data)
}

// AllocateAtLeast reserves size units at the lowest address no lower than minAddr that has enough
// contiguous free space, and attaches data to them.
func (a *Allocator[T]) AllocateAtLeast(minAddr, size int, data T) (int, error) {
	err := memutils.CheckRange(minAddr, size, a.size)
	if err != nil {
		return 0, err
	}

	err = a.checkAllocationSize(size)
	if err != nil {
		return 0, err
	}

	for block := a.firstFree; block != nil; block = block.nextFree {
		if block.end() <= minAddr {
			continue
		}

		start := max(block.offset, minAddr)
		if block.end()-start >= size {
			return a.allocateAt(start, size, data)
		}
	}

	return 0, errors.Wrapf(memutils.AllocationError, "insufficient contiguous free space available for %d units at or above %d", size, minAddr)
}

// allocateAt carves [addr, addr+size) out of the free block containing addr. Every check happens before
// the first split so a failed request leaves the partition untouched.
func (a *Allocator[T]) allocateAt(addr, size int, data T) (int, error) {
	index, block := a.findBlock(addr)
	if !block.free {
		return 0, errors.Wrapf(memutils.AllocationError, "requested address %d is allocated", addr)
	}
	if addr+size > block.end() {
		return 0, errors.Wrapf(memutils.AllocationError, "insufficient space available at requested address %d: requested %d, %d available", addr, size, block.end()-addr)
	}

	if addr > block.offset {
		a.splitFreeBlock(index, addr-block.offset)
		index++
		block = a.blocks[index]
	}

	if size < block.size {
		a.splitFreeBlock(index, size)
	}

	a.allocateBlock(block, data)
	memutils.DebugValidate(a)

	return addr, nil
}

// splitFreeBlock splits the free block at the provided index into two free blocks, the first of which
// will be size units long
func (a *Allocator[T]) splitFreeBlock(index int, size int) {
	block := a.blocks[index]
	if !block.free {
		panic("attempted to split an allocated block")
	}
	if size <= 0 || size >= block.size {
		panic("attempted to split a block at an offset outside of the block")
	}

	newBlock := &rangeBlock[T]{
		offset:   block.offset + size,
		size:     block.size - size,
		free:     true,
		prevFree: block,
		nextFree: block.nextFree,
	}

	if block.nextFree != nil {
		block.nextFree.prevFree = newBlock
	}
	block.nextFree = newBlock
	block.size = size

	a.blocks = slices.Insert(a.blocks, index+1, newBlock)
	a.offsetKey.Put(newBlock.offset, newBlock)
	a.freeCount++
}

// allocateBlock removes a free block from the free list and marks it allocated
func (a *Allocator[T]) allocateBlock(block *rangeBlock[T], data T) {
	if !block.free {
		panic("attempted to allocate a block that is already allocated")
	}

	if block.prevFree != nil {
		block.prevFree.nextFree = block.nextFree
	} else {
		a.firstFree = block.nextFree
	}

	if block.nextFree != nil {
		block.nextFree.prevFree = block.prevFree
	}

	if a.cursor == block {
		a.cursor = block.nextFree
	}

	a.totalFree -= block.size
	a.freeCount--
	a.allocCount++

	block.free = false
	block.prevFree = nil
	block.nextFree = nil
	block.data = data
}
