package rangealloc

import (
	"context"
	"fmt"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/vkngwrapper/i432/memutils"
	"golang.org/x/exp/slog"
)

// AddStatistics sums this allocator's usage into the statistics currently present in the provided
// memutils.Statistics object
func (a *Allocator[T]) AddStatistics(stats *memutils.Statistics) {
	stats.SpaceCount++
	stats.AllocationCount += a.allocCount
	stats.SpaceSize += a.size
	stats.AllocatedSize += a.size - a.totalFree
}

// AddDetailedStatistics sums this allocator's usage, including the spread of block sizes, into the
// statistics currently present in the provided memutils.DetailedStatistics object
func (a *Allocator[T]) AddDetailedStatistics(stats *memutils.DetailedStatistics) {
	stats.SpaceCount++
	stats.SpaceSize += a.size

	for _, block := range a.blocks {
		if block.free {
			stats.AddFreeRange(block.size)
		} else {
			stats.AddAllocation(block.size)
		}
	}
}

// BlockJsonData populates a json object with summary information about this allocator
func (a *Allocator[T]) BlockJsonData(json *jwriter.ObjectState) {
	json.Name("Policy").String(a.policy.String())
	json.Name("TotalSize").Int(a.size)
	json.Name("FreeSize").Int(a.totalFree)
	json.Name("Allocations").Int(a.allocCount)
	json.Name("FreeRanges").Int(a.freeCount)
}

// PrintDetailedMap populates a json object with summary information about this allocator followed by
// every region of the address space. Allocation payloads are rendered with fmt's %v verb.
func (a *Allocator[T]) PrintDetailedMap(json *jwriter.ObjectState) {
	a.BlockJsonData(json)

	arrayState := json.Name("Regions").Array()
	defer arrayState.End()

	_ = a.VisitAllRegions(func(offset int, size int, data T, free bool) error {
		obj := arrayState.Object()
		defer obj.End()

		obj.Name("Offset").Int(offset)
		obj.Name("Size").Int(size)
		obj.Name("Free").Bool(free)
		if !free {
			obj.Name("Data").String(fmt.Sprintf("%v", data))
		}

		return nil
	})
}

// DebugLogAllAllocations calls logFunc once for every allocated block, in ascending address order
func (a *Allocator[T]) DebugLogAllAllocations(logger *slog.Logger, logFunc func(log *slog.Logger, offset int, size int, data T)) {
	for _, block := range a.blocks {
		if !block.free {
			logFunc(logger, block.offset, block.size, block.data)
		}
	}
}

// LogAllocation is a logFunc for DebugLogAllAllocations that logs each allocation at debug level
func LogAllocation[T any](logger *slog.Logger, offset int, size int, data T) {
	logger.LogAttrs(context.Background(), slog.LevelDebug, "allocation",
		slog.Int("offset", offset),
		slog.Int("size", size),
		slog.Any("data", data),
	)
}
