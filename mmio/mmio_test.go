package mmio

import (
	"testing"
	"unsafe"
)

func TestPointerWindow(t *testing.T) {
	var block [8]byte
	w := Pointer(uintptr(unsafe.Pointer(&block[0])))

	w.Write8(0, 0x41)
	w.Write8(5, 0x20)
	if block[0] != 0x41 || block[5] != 0x20 {
		t.Fatalf("writes not visible: block=%#v", block)
	}

	block[3] = 0x99
	if got := w.Read8(3); got != 0x99 {
		t.Fatalf("Read8(3) = %#x, want 0x99", got)
	}
}

func TestPointerWindowEachAccessDistinct(t *testing.T) {
	var block [8]byte
	w := Pointer(uintptr(unsafe.Pointer(&block[0])))

	// Back-to-back writes to the same offset must both land; the second
	// overwrites the first rather than being merged away.
	w.Write8(0, 1)
	w.Write8(0, 2)
	if block[0] != 2 {
		t.Fatalf("block[0] = %d, want 2", block[0])
	}
}
