//go:build !debug_mem_utils

package memutils

// DebugValidate calls Validate on the provided object after every allocator mutation and panics if it
// fails. It no-ops unless the debug_mem_utils build tag is present.
func DebugValidate(validatable Validatable) {
}

// DebugCheckPow2 panics if value is not a power of two. It no-ops unless the debug_mem_utils build tag is
// present.
func DebugCheckPow2[T Number](value T, name string) {
}
