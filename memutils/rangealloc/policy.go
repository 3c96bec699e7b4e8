package rangealloc

// Policy selects how the allocator searches for free space when the caller does not request
// a specific address
type Policy uint32

const (
	// PolicyFirstFit always searches the free list from the lowest free address
	PolicyFirstFit Policy = iota
	// PolicyRotatingFirstFit searches the free list from a persistent cursor that advances past each
	// block that was considered, wrapping around to the lowest free address once before failing
	PolicyRotatingFirstFit
)

var policyMapping = map[Policy]string{
	PolicyFirstFit:         "PolicyFirstFit",
	PolicyRotatingFirstFit: "PolicyRotatingFirstFit",
}

func (p Policy) String() string {
	return policyMapping[p]
}
