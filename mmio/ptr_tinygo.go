// mmio/ptr_tinygo.go

//go:build tinygo

package mmio

import (
	"runtime/volatile"
	"unsafe"
)

// ptrWindow addresses registers through runtime/volatile so the compiler
// keeps every access, in order.
type ptrWindow uintptr

// Pointer returns a Window over an 8-bit register block that is directly
// addressable at base. No validation is performed on the address.
func Pointer(base uintptr) Window {
	return ptrWindow(base)
}

func (p ptrWindow) Read8(off uintptr) byte {
	return volatile.LoadUint8((*uint8)(unsafe.Pointer(uintptr(p) + off)))
}

func (p ptrWindow) Write8(off uintptr, v byte) {
	volatile.StoreUint8((*uint8)(unsafe.Pointer(uintptr(p)+off)), v)
}
