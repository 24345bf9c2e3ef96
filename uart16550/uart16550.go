// uart16550/uart16550.go

// Package uart16550 drives a memory-mapped NS 16550-compatible UART through
// an 8-byte register window. The driver is deliberately small: it programs
// the device once at construction and then moves single bytes with bounded
// polling of the line status register. There is no buffering, no interrupt
// handling and no internal locking; callers serialize access to one UART.
//
// Datasheet: https://www.nxp.com/docs/en/data-sheet/SC16C550B.pdf
package uart16550

import (
	"errors"

	"github.com/diodesign/mmio-16550-uart/mmio"
)

// Register offsets from the base of the window, each one byte wide.
// Offsets 0 and 1 are dual-purpose: while LCR.DLAB is set they address the
// two halves of the baud divisor instead of data and interrupt enable.
const (
	regData       = 0x0 // byte to transmit or receive (DLAB=0)
	regDivisorLSB = 0x0 // divisor low byte (DLAB=1)
	regIRQEnable  = 0x1 // interrupt enable (DLAB=0)
	regDivisorMSB = 0x1 // divisor high byte (DLAB=1)
	regFIFOCtrl   = 0x2 // FIFO and IRQ id control
	regLineCtrl   = 0x3 // word length, stop bits, parity, DLAB
	regModemCtrl  = 0x4 // RTS/DTR/loopback/IRQ-out control
	regLineStatus = 0x5 // communications status bits
)

// Line control bits.
const (
	lineCtrlDLAB = 1 << 7 // divisor latch access bit
)

// Line status bits.
const (
	lineStatusDataReady = 1 << 0 // a received byte is waiting
	lineStatusTHREmpty  = 1 << 5 // transmitter holding register empty
)

// Modem control value programmed at reset: DTR and RTS asserted plus OUT2,
// the line that routes the chip's interrupt output on PC-style wiring.
const modemCtrlInit = 0b1011

// Interrupt enable value programmed at reset: data-received only. The
// driver itself polls, but leaves the source armed for whoever handles the
// interrupt line.
const irqEnableRxReady = 1 << 0

// WindowSize is the span of the register window in bytes. Callers use it to
// map or reserve the address range a device occupies.
const WindowSize uintptr = 8

// DefaultPollLimit bounds the status polls a transfer may burn before
// giving up. It is a stand-in for a hardware timeout, not a wall-clock
// guarantee; see Config.PollLimit.
const DefaultPollLimit = 1000

var (
	// ErrTransmitTimeout means the transmitter never reported room within
	// the poll budget. The byte was not written.
	ErrTransmitTimeout = errors.New("uart16550: transmitter not ready")
	// ErrReceiveTimeout means no received byte became ready within the
	// poll budget. The data register was not touched.
	ErrReceiveTimeout = errors.New("uart16550: no data ready")
)

// UART is one 16550 instance. The zero value is not usable; construct with
// New or NewAt. A UART carries no state besides its window and
// configuration — the register contents live in hardware.
type UART struct {
	win mmio.Window
	cfg Config
}

// New initializes the device behind win and returns a handle to it. The
// zero Config selects the fixed reference mode (38400 bps, 8N1, RX trigger
// at 14 bytes). The register writes below run strictly in this order;
// reordering them breaks real hardware.
func New(win mmio.Window, cfg Config) (*UART, error) {
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	u := &UART{win: win, cfg: cfg}

	// Quiesce all interrupt sources before reprogramming the chip.
	u.win.Write8(regIRQEnable, 0)

	// Expose the divisor latch and program the baud divisor.
	u.win.Write8(regLineCtrl, lineCtrlDLAB)
	div := cfg.divisor()
	u.win.Write8(regDivisorLSB, byte(div))
	u.win.Write8(regDivisorMSB, byte(div>>8))

	// One write sets the frame format and clears DLAB, restoring offsets
	// 0 and 1 to their data/IRQ-enable meaning.
	u.win.Write8(regLineCtrl, cfg.lineCtrl())

	// Enable and clear both FIFOs, set the RX trigger watermark.
	u.win.Write8(regFIFOCtrl, cfg.fifoCtrl())

	u.win.Write8(regModemCtrl, modemCtrlInit)
	u.win.Write8(regIRQEnable, irqEnableRxReady)

	return u, nil
}

// NewAt initializes the device whose register window starts at base in the
// current address space. The address is taken on trust, exactly as a
// platform boot path would hand it over from firmware tables.
func NewAt(base uintptr, cfg Config) (*UART, error) {
	return New(mmio.Pointer(base), cfg)
}

// WindowSize returns the size of the device's register window in bytes. It
// is constant regardless of device state.
func (u *UART) WindowSize() uintptr { return WindowSize }

// Config returns the configuration the device was initialized with.
func (u *UART) Config() Config { return u.cfg }

// SendByte transmits one byte. It polls the transmit-holding-empty status
// bit up to the poll limit and writes the data register exactly once, on
// the first poll that reports room. On timeout nothing is written and
// ErrTransmitTimeout is returned.
func (u *UART) SendByte(b byte) error {
	if !u.poll(u.transmitEmpty) {
		return ErrTransmitTimeout
	}
	u.win.Write8(regData, b)
	return nil
}

// ReadByte receives one byte. It polls the data-ready status bit up to the
// poll limit and reads the data register exactly once, on the first poll
// that reports data. On timeout the data register is never read — reading
// it while empty could consume a FIFO slot or return stale data — and
// ErrReceiveTimeout is returned.
func (u *UART) ReadByte() (byte, error) {
	if !u.poll(u.dataReady) {
		return 0, ErrReceiveTimeout
	}
	return u.win.Read8(regData), nil
}

// poll busy-waits on ready, up to the configured poll limit. It returns
// true on the first poll that observes the condition and false once the
// budget is exhausted. The loop never yields; the budget is the only bound.
func (u *UART) poll(ready func() bool) bool {
	for i := 0; i < u.cfg.PollLimit; i++ {
		if ready() {
			return true
		}
	}
	return false
}

// transmitEmpty reports whether the device can accept a byte to transmit.
func (u *UART) transmitEmpty() bool {
	return u.win.Read8(regLineStatus)&lineStatusTHREmpty != 0
}

// dataReady reports whether a received byte is waiting.
func (u *UART) dataReady() bool {
	return u.win.Read8(regLineStatus)&lineStatusDataReady != 0
}
