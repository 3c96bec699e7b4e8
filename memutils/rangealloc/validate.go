package rangealloc

import (
	"github.com/pkg/errors"
	"github.com/vkngwrapper/i432/memutils"
)

var _ memutils.Validatable = &Allocator[any]{}

// Validate performs internal consistency checks on the allocator. These checks walk every block and so are
// not cheap. When the implementation is functioning correctly, it should not be possible for this method to
// return an error.
func (a *Allocator[T]) Validate() error {
	if len(a.blocks) == 0 {
		return errors.New("the allocator has no blocks")
	}

	if a.offsetKey.Count() != len(a.blocks) {
		return errors.Errorf("the offset index holds %d blocks, but the block list holds %d", a.offsetKey.Count(), len(a.blocks))
	}

	var nextOffset, calculatedFreeSize, freeCount, allocCount int
	var prevFreeBlock *rangeBlock[T]
	prevWasFree := false

	for index, block := range a.blocks {
		if block.offset != nextOffset {
			return errors.Errorf("block at index %d has offset %d, but the previous block ended at %d", index, block.offset, nextOffset)
		}

		if block.size < 1 {
			return errors.Errorf("block at offset %d has invalid size %d", block.offset, block.size)
		}

		indexed, ok := a.offsetKey.Get(block.offset)
		if !ok || indexed != block {
			return errors.Errorf("block at offset %d is missing from the offset index", block.offset)
		}

		if block.free {
			if prevWasFree {
				return errors.Errorf("block at offset %d is free and so is the block before it", block.offset)
			}

			if block.prevFree != prevFreeBlock {
				return errors.Errorf("free block at offset %d does not link back to the previous free block", block.offset)
			}

			if prevFreeBlock == nil && a.firstFree != block {
				return errors.Errorf("block at offset %d is the lowest free block, but is not the head of the free list", block.offset)
			}

			if prevFreeBlock != nil && prevFreeBlock.nextFree != block {
				return errors.Errorf("free block at offset %d does not link forward to the free block at offset %d", prevFreeBlock.offset, block.offset)
			}

			calculatedFreeSize += block.size
			freeCount++
			prevFreeBlock = block
		} else {
			if block.prevFree != nil || block.nextFree != nil {
				return errors.Errorf("allocated block at offset %d still has free list links", block.offset)
			}

			allocCount++
		}

		prevWasFree = block.free
		nextOffset = block.end()
	}

	if nextOffset != a.size {
		return errors.Errorf("the full size of the allocator is %d, but the blocks only added up to %d", a.size, nextOffset)
	}

	if prevFreeBlock == nil && a.firstFree != nil {
		return errors.New("there are no free blocks, but the free list is not empty")
	}

	if prevFreeBlock != nil && prevFreeBlock.nextFree != nil {
		return errors.Errorf("the highest free block at offset %d links to a further free block", prevFreeBlock.offset)
	}

	if calculatedFreeSize != a.totalFree {
		return errors.Errorf("the free size of the allocator is %d, but the free blocks only added up to %d", a.totalFree, calculatedFreeSize)
	}

	if freeCount != a.freeCount {
		return errors.Errorf("the free block count of the allocator is %d, but there were %d free blocks", a.freeCount, freeCount)
	}

	if allocCount != a.allocCount {
		return errors.Errorf("the allocation count of the allocator is %d, but there were %d allocated blocks", a.allocCount, allocCount)
	}

	if a.cursor != nil && !a.cursor.free {
		return errors.Errorf("the search cursor points at the allocated block at offset %d", a.cursor.offset)
	}

	return nil
}
