// cmd/uart_diag/main.go

//go:build linux

// uart_diag maps a 16550 register window from physical memory and reports
// the visible register state. With -init it also runs the driver's
// initialization sequence first.
//
// Usage:
//
//	uart_diag -base 0x3f8 [-mem /dev/mem] [-init] [-baud 38400]
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/diodesign/mmio-16550-uart/mmio"
	"github.com/diodesign/mmio-16550-uart/uart16550"
)

var (
	baseFlag = flag.String("base", "", "physical base address of the register window (required)")
	memFlag  = flag.String("mem", "/dev/mem", "memory device to map the window from")
	initFlag = flag.Bool("init", false, "run the initialization sequence before dumping")
	baudFlag = flag.Uint("baud", 38400, "baud rate used with -init")
)

// Offsets and names of the readable registers, DLAB clear.
var registers = []struct {
	off  uintptr
	name string
}{
	{0, "DATA"},
	{1, "IER "},
	{2, "IIR "},
	{3, "LCR "},
	{4, "MCR "},
	{5, "LSR "},
}

func main() {
	flag.Parse()
	if *baseFlag == "" {
		log.Fatal("uart_diag: -base is required")
	}
	base, err := strconv.ParseUint(*baseFlag, 0, 64)
	if err != nil {
		log.Fatalf("uart_diag: bad -base %q: %v", *baseFlag, err)
	}

	win, err := mmio.Map(*memFlag, uintptr(base), uart16550.WindowSize)
	if err != nil {
		log.Fatalf("uart_diag: %v", err)
	}
	defer win.Close()

	if *initFlag {
		if _, err := uart16550.New(win, uart16550.Config{BaudRate: uint32(*baudFlag)}); err != nil {
			log.Fatalf("uart_diag: init: %v", err)
		}
		fmt.Printf("initialized at %d bps\n", *baudFlag)
	}

	fmt.Printf("16550 window at %#x (%s):\n", base, *memFlag)
	for _, r := range registers {
		// Reading DATA blind would consume a byte from the RX FIFO.
		if r.off == 0 && win.Read8(5)&0x01 == 0 {
			fmt.Printf("  +%d %s --   (no data ready, not read)\n", r.off, r.name)
			continue
		}
		fmt.Printf("  +%d %s %#02x\n", r.off, r.name, win.Read8(r.off))
	}

	lsr := win.Read8(5)
	fmt.Printf("line status: data-ready=%t tx-empty=%t\n",
		lsr&0x01 != 0, lsr&0x20 != 0)
}
