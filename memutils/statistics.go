package memutils

import (
	"math"

	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
)

// Statistics sums basic usage figures across one or more address spaces. Sizes are expressed in whatever
// unit the address spaces were created with (bits for segment field layouts, bytes for physical memory).
type Statistics struct {
	SpaceCount      int
	AllocationCount int
	SpaceSize       int
	AllocatedSize   int
}

func (s *Statistics) Clear() {
	s.SpaceCount = 0
	s.AllocationCount = 0
	s.SpaceSize = 0
	s.AllocatedSize = 0
}

func (s *Statistics) AddStatistics(other *Statistics) {
	s.SpaceCount += other.SpaceCount
	s.AllocationCount += other.AllocationCount
	s.SpaceSize += other.SpaceSize
	s.AllocatedSize += other.AllocatedSize
}

// DetailedStatistics extends Statistics with the spread of allocation and free range sizes
type DetailedStatistics struct {
	Statistics
	FreeRangeCount    int
	AllocationSizeMin int
	AllocationSizeMax int
	FreeRangeSizeMin  int
	FreeRangeSizeMax  int
}

func (s *DetailedStatistics) Clear() {
	s.Statistics.Clear()
	s.FreeRangeCount = 0
	s.AllocationSizeMin = math.MaxInt
	s.AllocationSizeMax = 0
	s.FreeRangeSizeMin = math.MaxInt
	s.FreeRangeSizeMax = 0
}

func (s *DetailedStatistics) AddFreeRange(size int) {
	s.FreeRangeCount++

	if size < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = size
	}

	if size > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = size
	}
}

func (s *DetailedStatistics) AddAllocation(size int) {
	s.AllocationCount++
	s.AllocatedSize += size

	if size < s.AllocationSizeMin {
		s.AllocationSizeMin = size
	}

	if size > s.AllocationSizeMax {
		s.AllocationSizeMax = size
	}
}

func (s *DetailedStatistics) AddDetailedStatistics(other *DetailedStatistics) {
	s.Statistics.AddStatistics(&other.Statistics)
	s.FreeRangeCount += other.FreeRangeCount

	if other.FreeRangeSizeMin < s.FreeRangeSizeMin {
		s.FreeRangeSizeMin = other.FreeRangeSizeMin
	}

	if other.FreeRangeSizeMax > s.FreeRangeSizeMax {
		s.FreeRangeSizeMax = other.FreeRangeSizeMax
	}

	if other.AllocationSizeMin < s.AllocationSizeMin {
		s.AllocationSizeMin = other.AllocationSizeMin
	}

	if other.AllocationSizeMax > s.AllocationSizeMax {
		s.AllocationSizeMax = other.AllocationSizeMax
	}
}

// WriteJson populates a json object with these statistics. Minimums are omitted when nothing was
// counted for them.
func (s *DetailedStatistics) WriteJson(json *jwriter.ObjectState) {
	json.Name("SpaceCount").Int(s.SpaceCount)
	json.Name("SpaceSize").Int(s.SpaceSize)
	json.Name("Allocations").Int(s.AllocationCount)
	json.Name("AllocatedSize").Int(s.AllocatedSize)
	json.Name("FreeRanges").Int(s.FreeRangeCount)

	if s.AllocationCount > 0 {
		json.Name("AllocationSizeMin").Int(s.AllocationSizeMin)
		json.Name("AllocationSizeMax").Int(s.AllocationSizeMax)
	}

	if s.FreeRangeCount > 0 {
		json.Name("FreeRangeSizeMin").Int(s.FreeRangeSizeMin)
		json.Name("FreeRangeSizeMax").Int(s.FreeRangeSizeMax)
	}
}
