package memutils

import "github.com/cockroachdb/errors"

var (
	// PowerOfTwoError is the error returned from CheckPow2 or other methods if the number being tested is not a power of two
	PowerOfTwoError error = errors.New("number must be a power of two")
	// OutOfRangeError is the error returned when a requested size or address falls outside the managed address
	// space. It indicates a caller mistake rather than exhaustion, and the request should not be retried unchanged.
	OutOfRangeError error = errors.New("requested range is outside the address space")
	// AllocationError is the error returned when there is no free space to satisfy a request, or the
	// specifically requested address is not available.
	AllocationError error = errors.New("allocation failed")
)
