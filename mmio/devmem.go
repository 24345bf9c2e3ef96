// mmio/devmem.go

//go:build linux

package mmio

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Region is a Window obtained by mapping physical memory into the process,
// typically from /dev/mem. It stays valid until Close.
type Region struct {
	mem  []byte
	skew uintptr // offset of base within the page-aligned mapping
	size uintptr
}

// Map maps size bytes of physical memory starting at base from path
// (typically "/dev/mem"). base need not be page aligned; the mapping is
// rounded out to page boundaries internally and base becomes offset 0 of
// the returned Region.
func Map(path string, base, size uintptr) (*Region, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("mmio: open %s: %w", path, err)
	}
	defer f.Close()

	page := uintptr(unix.Getpagesize())
	start := base &^ (page - 1)
	skew := base - start
	length := int((skew + size + page - 1) &^ (page - 1))

	mem, err := unix.Mmap(int(f.Fd()), int64(start), length,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmio: mmap %#x+%d via %s: %w", base, size, path, err)
	}
	return &Region{mem: mem, skew: skew, size: size}, nil
}

// Size returns the length of the mapped register range in bytes.
func (r *Region) Size() uintptr { return r.size }

func (r *Region) Read8(off uintptr) byte {
	return r.mem[r.skew+off]
}

func (r *Region) Write8(off uintptr, v byte) {
	r.mem[r.skew+off] = v
}

// Close unmaps the region. The Region must not be used afterwards.
func (r *Region) Close() error {
	mem := r.mem
	r.mem = nil
	return unix.Munmap(mem)
}
