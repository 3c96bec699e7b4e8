package segment

import (
	"github.com/vkngwrapper/i432/memutils/rangealloc"
)

// FieldSpace is the part of a bit-granular address space that Layout uses to place fields. Allocations
// carry the field's name as their payload. *rangealloc.Allocator[string] satisfies it.
type FieldSpace interface {
	AllocateAt(addr, size int, data string) (int, error)
	Allocate(size int, data string) (int, error)
	LastFreeRange() (int, error)
	ContiguousFromZero() (bool, error)
}

var _ FieldSpace = (*rangealloc.Allocator[string])(nil)

// NewSpace creates an empty field space covering the largest possible segment body
func NewSpace(policy rangealloc.Policy) (*rangealloc.Allocator[string], error) {
	return rangealloc.New[string](MaxSizeBits, policy)
}
