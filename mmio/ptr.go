// mmio/ptr.go

//go:build !tinygo

package mmio

import "unsafe"

// ptrWindow addresses registers through raw pointers. The loads and stores
// below touch one byte each and carry a hardware side effect; nothing else
// in the program may alias the range.
type ptrWindow uintptr

// Pointer returns a Window over an 8-bit register block that is already
// addressable at base, e.g. an identity-mapped peripheral on bare metal or
// a range previously mapped into the process. No validation is performed on
// the address.
func Pointer(base uintptr) Window {
	return ptrWindow(base)
}

func (p ptrWindow) Read8(off uintptr) byte {
	return *(*byte)(unsafe.Pointer(uintptr(p) + off))
}

func (p ptrWindow) Write8(off uintptr, v byte) {
	*(*byte)(unsafe.Pointer(uintptr(p) + off)) = v
}
