// uartsim/uartsim.go

// Package uartsim models the register file of a 16550-compatible UART in
// memory. It implements mmio.Window, so a driver can be pointed at a Sim
// exactly as it would be pointed at hardware: DLAB routing, divisor
// latches, FIFO clears and line status all behave like the real chip as
// seen through the 8-byte window.
//
// The model is used as the device end in tests and host-side tooling. It
// carries its own lock so a feeder goroutine (a terminal, a serial bridge)
// can push bytes while the driver polls; the driver itself stays lock-free.
package uartsim

import (
	"io"
	"sync"

	"github.com/diodesign/mmio-16550-uart/mmio"
)

// Register offsets within the window.
const (
	regData       = 0x0
	regIRQEnable  = 0x1
	regFIFOCtrl   = 0x2
	regLineCtrl   = 0x3
	regModemCtrl  = 0x4
	regLineStatus = 0x5
	regModemStat  = 0x6
	regScratch    = 0x7
)

// Line status bits the model produces.
const (
	lsrDataReady = 1 << 0
	lsrTHREmpty  = 1 << 5
	lsrTxIdle    = 1 << 6
)

const lcrDLAB = 1 << 7

// FIFO control clear bits.
const (
	fcrClearRX = 1 << 1
	fcrClearTX = 1 << 2
)

// iirNoPending is what the interrupt identification register reads as when
// nothing is pending; the model never raises interrupts.
const iirNoPending = 0x01

// RegWrite is one register write observed by the model, in window offsets.
type RegWrite struct {
	Off uintptr
	Val byte
}

// Sim is a simulated 16550 register window.
type Sim struct {
	// Output, if set, receives every transmitted byte as it is written.
	// Set it before handing the Sim to a driver.
	Output io.Writer

	mu sync.Mutex

	ier, lcr, mcr, fcr, scr byte
	dll, dlm                byte

	rx []byte // bytes waiting to be received by the driver
	tx []byte // bytes the driver has transmitted

	loopback         bool
	txStall, rxStall bool

	trace []RegWrite
}

var _ mmio.Window = (*Sim)(nil)

// New returns an idle simulated device: transmitter ready, no data waiting.
func New() *Sim { return &Sim{} }

// NewLoopback returns a device whose transmit path feeds its own receive
// path, for self tests without a remote end.
func NewLoopback() *Sim { return &Sim{loopback: true} }

func (s *Sim) Read8(off uintptr) byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	dlab := s.lcr&lcrDLAB != 0
	switch off {
	case regData:
		if dlab {
			return s.dll
		}
		if len(s.rx) == 0 {
			return 0
		}
		b := s.rx[0]
		s.rx = s.rx[1:]
		return b
	case regIRQEnable:
		if dlab {
			return s.dlm
		}
		return s.ier
	case regFIFOCtrl:
		return iirNoPending // reads back as IIR on the real chip
	case regLineCtrl:
		return s.lcr
	case regModemCtrl:
		return s.mcr
	case regLineStatus:
		return s.lineStatus()
	case regModemStat:
		return 0
	case regScratch:
		return s.scr
	}
	return 0
}

func (s *Sim) Write8(off uintptr, v byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trace = append(s.trace, RegWrite{off, v})

	dlab := s.lcr&lcrDLAB != 0
	switch off {
	case regData:
		if dlab {
			s.dll = v
			return
		}
		s.tx = append(s.tx, v)
		if s.loopback {
			s.rx = append(s.rx, v)
		}
		if s.Output != nil {
			s.Output.Write([]byte{v})
		}
	case regIRQEnable:
		if dlab {
			s.dlm = v
			return
		}
		s.ier = v
	case regFIFOCtrl:
		s.fcr = v
		if v&fcrClearRX != 0 {
			s.rx = nil
		}
		if v&fcrClearTX != 0 {
			s.tx = nil
		}
	case regLineCtrl:
		s.lcr = v
	case regModemCtrl:
		s.mcr = v
	case regScratch:
		s.scr = v
	}
}

// lineStatus computes LSR from queue state. Callers hold mu.
func (s *Sim) lineStatus() byte {
	var v byte
	if !s.txStall {
		v |= lsrTHREmpty | lsrTxIdle
	}
	if !s.rxStall && len(s.rx) > 0 {
		v |= lsrDataReady
	}
	return v
}

// Feed queues bytes for the driver to receive.
func (s *Sim) Feed(p []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rx = append(s.rx, p...)
}

// TxBytes returns a copy of everything the driver has transmitted since the
// last FIFO clear.
func (s *Sim) TxBytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.tx...)
}

// Stall forces the transmit and/or receive status bits to read not-ready,
// to exercise a driver's give-up paths.
func (s *Sim) Stall(tx, rx bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.txStall, s.rxStall = tx, rx
}

// Divisor returns the programmed baud divisor latch value.
func (s *Sim) Divisor() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uint16(s.dlm)<<8 | uint16(s.dll)
}

// Trace returns a copy of every register write the device has observed,
// in order, including divisor latch writes routed through DLAB.
func (s *Sim) Trace() []RegWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RegWrite(nil), s.trace...)
}

// Registers returns the current control register values (IER, FCR, LCR,
// MCR), for diagnostics.
func (s *Sim) Registers() (ier, fcr, lcr, mcr byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ier, s.fcr, s.lcr, s.mcr
}
