// Package image assembles segments into a flat physical memory image. Each segment is assigned a
// coordinate in an object table and a physical address, and every object table is synthesized as a
// segment of its own, reachable from the object table directory at a fixed address.
package image
