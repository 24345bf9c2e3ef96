// mmio/mmio.go

// Package mmio provides byte-granular access to memory-mapped device
// register windows. Every Read8/Write8 performs exactly one access to the
// underlying location; accesses are never cached, merged or elided, because
// each one has a hardware side effect.
//
// Drivers hold a Window and never touch the register range any other way.
// The caller guarantees the range is valid, device-backed and exclusive for
// the lifetime of the Window.
package mmio

// Window is an 8-bit register window at some base location. Offsets are in
// bytes from the base. Implementations must preserve program order between
// accesses on the same Window.
type Window interface {
	Read8(off uintptr) byte
	Write8(off uintptr, v byte)
}
