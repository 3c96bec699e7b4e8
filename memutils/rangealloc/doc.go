// Package rangealloc manages non-overlapping allocations within a single linear address space.
//
// An Allocator partitions [0, size) into an ordered sequence of blocks, each of which is either free or
// allocated. Allocations split free blocks and there is no way to free an allocation again, so two free
// blocks never sit next to each other and no coalescing is required.
//
// Units are whatever the caller decides: segment field layouts use bits and physical memory uses bytes.
//
// Two search policies are supported. PolicyFirstFit always scans the free list from the lowest free address.
// PolicyRotatingFirstFit resumes scanning from where the previous search left off and wraps around once.
package rangealloc
