package image

import (
	"github.com/vkngwrapper/core/v2/common"
	"github.com/vkngwrapper/i432/memutils/rangealloc"
)

// BuildFlags indicate specific builder behaviors to activate
type BuildFlags int32

var buildFlagsMapping = common.NewFlagStringMapping[BuildFlags]()

func (f BuildFlags) Register(str string) {
	buildFlagsMapping.Register(f, str)
}
func (f BuildFlags) String() string {
	return buildFlagsMapping.FlagsToString(f)
}

const (
	// BuildValidate runs a full consistency check of every allocator used during the build before the
	// image is serialized
	BuildValidate BuildFlags = 1 << iota
	// BuildLogAllocations logs every physical allocation at debug level once placement is complete
	BuildLogAllocations
)

func init() {
	BuildValidate.Register("BuildValidate")
	BuildLogAllocations.Register("BuildLogAllocations")
}

const (
	// DefaultMemorySize is the size of physical memory used when BuildOptions.MemorySize is 0
	DefaultMemorySize = 1 << 24
	// DefaultAlignment is the placement alignment used when BuildOptions.Alignment is 0
	DefaultAlignment uint = 8
	// DefaultDirectory is the object table that receives segments without a declared coordinate when
	// BuildOptions.DefaultDirectory is 0
	DefaultDirectory = 3
)

// BuildOptions contains optional settings for a Builder. It is valid to leave all the fields blank.
type BuildOptions struct {
	Flags BuildFlags
	// Policy is the search policy used for object table slots and physical placement
	Policy rangealloc.Policy

	// MemorySize is the size of physical memory in bytes
	MemorySize int
	// Alignment is the boundary, in bytes, that every physical placement begins on and is rounded up
	// to. It must be a power of two.
	Alignment uint
	// DefaultDirectory is the object table that segments without a declared coordinate are entered in
	DefaultDirectory int

	// ObjectTableSystemType is the system type written to the storage descriptor of every object table
	ObjectTableSystemType uint8
}

func (o BuildOptions) withDefaults() BuildOptions {
	if o.MemorySize == 0 {
		o.MemorySize = DefaultMemorySize
	}
	if o.Alignment == 0 {
		o.Alignment = DefaultAlignment
	}
	if o.DefaultDirectory == 0 {
		o.DefaultDirectory = DefaultDirectory
	}
	return o
}
