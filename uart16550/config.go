// uart16550/config.go

package uart16550

import "errors"

// Parity defines the parity setting used for UART communication.
type Parity uint8

const (
	// ParityNone disables parity generation and checking (the most common setting).
	ParityNone Parity = iota
	// ParityEven sets even parity (total number of 1 bits is even).
	ParityEven
	// ParityOdd sets odd parity (total number of 1 bits is odd).
	ParityOdd
)

// refClock is the divisor reference input rate of a standard 16550:
// divisor = refClock / baud.
const refClock = 115200

// Frame format encodings in the line control register.
const (
	lcrStop2      = 1 << 2 // two stop bits (1.5 for 5-bit words)
	lcrParityEn   = 1 << 3
	lcrEvenParity = 1 << 4
)

// FIFO control encodings.
const (
	fcrEnable    = 1 << 0
	fcrClearRX   = 1 << 1
	fcrClearTX   = 1 << 2
	fcrTrigger4  = 0x40
	fcrTrigger8  = 0x80
	fcrTrigger14 = 0xC0
)

// Config selects the line parameters programmed at construction. The zero
// value means the fixed reference mode: 38400 bps, 8 data bits, no parity,
// 1 stop bit, RX FIFO trigger at 14 bytes, DefaultPollLimit.
type Config struct {
	BaudRate uint32 // must divide the 115200 reference rate
	DataBits uint8  // 5..8
	StopBits uint8  // 1 or 2
	Parity   Parity

	// RXTrigger is the receive FIFO watermark in bytes: 1, 4, 8 or 14.
	RXTrigger uint8

	// PollLimit caps the unsuccessful status polls a send or receive may
	// make before failing. It is an opaque give-up policy, not calibrated
	// to wall-clock time; its adequacy depends on how fast the host spins.
	PollLimit int
}

func (c *Config) setDefaults() {
	if c.BaudRate == 0 {
		c.BaudRate = 38400
	}
	if c.DataBits == 0 {
		c.DataBits = 8
	}
	if c.StopBits == 0 {
		c.StopBits = 1
	}
	if c.RXTrigger == 0 {
		c.RXTrigger = 14
	}
	if c.PollLimit == 0 {
		c.PollLimit = DefaultPollLimit
	}
}

func (c Config) validate() error {
	if c.BaudRate > refClock || refClock%c.BaudRate != 0 {
		return errors.New("baud rate must divide the 115200 reference rate")
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return errors.New("invalid databits")
	}
	if c.StopBits != 1 && c.StopBits != 2 {
		return errors.New("invalid stopbits")
	}
	if c.Parity > ParityOdd {
		return errors.New("invalid parity")
	}
	switch c.RXTrigger {
	case 1, 4, 8, 14:
	default:
		return errors.New("invalid RX trigger level: want 1, 4, 8 or 14")
	}
	if c.PollLimit < 0 {
		return errors.New("invalid poll limit")
	}
	return nil
}

// divisor returns the 16-bit baud divisor: reference rate over target rate.
func (c Config) divisor() uint16 {
	return uint16(refClock / c.BaudRate)
}

// lineCtrl encodes the frame format for the line control register, with
// DLAB clear. The default configuration encodes to 0b0011: 8 data bits,
// one stop bit, no parity.
func (c Config) lineCtrl() byte {
	v := c.DataBits - 5 // word length select, bits 0-1
	if c.StopBits == 2 {
		v |= lcrStop2
	}
	switch c.Parity {
	case ParityOdd:
		v |= lcrParityEn
	case ParityEven:
		v |= lcrParityEn | lcrEvenParity
	}
	return v
}

// fifoCtrl encodes the FIFO control register write performed at reset:
// enable both FIFOs, clear them, and set the RX trigger watermark. The
// default 14-byte watermark encodes to 0xC7.
func (c Config) fifoCtrl() byte {
	v := byte(fcrEnable | fcrClearRX | fcrClearTX)
	switch c.RXTrigger {
	case 4:
		v |= fcrTrigger4
	case 8:
		v |= fcrTrigger8
	case 14:
		v |= fcrTrigger14
	}
	return v
}
