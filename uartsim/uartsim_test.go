package uartsim

import (
	"bytes"
	"errors"
	"testing"

	"github.com/diodesign/mmio-16550-uart/uart16550"
)

func TestInitProgramsDevice(t *testing.T) {
	sim := New()
	if _, err := uart16550.New(sim, uart16550.Config{}); err != nil {
		t.Fatalf("New: %v", err)
	}

	if got := sim.Divisor(); got != 3 {
		t.Fatalf("divisor = %d, want 3 (38400 bps)", got)
	}
	ier, fcr, lcr, mcr := sim.Registers()
	if ier != 0x01 || fcr != 0xC7 || lcr != 0x03 || mcr != 0x0B {
		t.Fatalf("registers after init: IER=%#02x FCR=%#02x LCR=%#02x MCR=%#02x", ier, fcr, lcr, mcr)
	}

	want := []RegWrite{
		{1, 0x00}, {3, 0x80}, {0, 0x03}, {1, 0x00},
		{3, 0x03}, {2, 0xC7}, {4, 0x0B}, {1, 0x01},
	}
	trace := sim.Trace()
	if len(trace) != len(want) {
		t.Fatalf("init trace has %d writes, want %d: %v", len(trace), len(want), trace)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("init write %d = %+v, want %+v", i, trace[i], want[i])
		}
	}
}

func TestSendThenReceiveRoundTrip(t *testing.T) {
	sim := New()
	u, err := uart16550.New(sim, uart16550.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := u.SendByte(0x41); err != nil {
		t.Fatalf("SendByte: %v", err)
	}
	if got := sim.TxBytes(); !bytes.Equal(got, []byte{0x41}) {
		t.Fatalf("transmitted %v, want [0x41]", got)
	}

	sim.Feed([]byte{0x42})
	b, err := u.ReadByte()
	if err != nil {
		t.Fatalf("ReadByte: %v", err)
	}
	if b != 0x42 {
		t.Fatalf("ReadByte = %#02x, want 0x42", b)
	}
	// Receiving must not disturb the transmit path.
	if got := sim.TxBytes(); !bytes.Equal(got, []byte{0x41}) {
		t.Fatalf("transmit state changed by receive: %v", got)
	}
}

func TestLoopback(t *testing.T) {
	sim := NewLoopback()
	u, err := uart16550.New(sim, uart16550.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	msg := []byte("ping\r\n")
	if n, err := u.Write(msg); err != nil || n != len(msg) {
		t.Fatalf("Write = (%d, %v)", n, err)
	}
	got := make([]byte, len(msg))
	for i := range got {
		b, err := u.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		got[i] = b
	}
	if !bytes.Equal(got, msg) {
		t.Fatalf("loopback returned %q, want %q", got, msg)
	}
}

func TestStalledDeviceTimesOut(t *testing.T) {
	sim := New()
	u, err := uart16550.New(sim, uart16550.Config{PollLimit: 10})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sim.Feed([]byte{0x55})
	sim.Stall(true, true)

	if err := u.SendByte('x'); !errors.Is(err, uart16550.ErrTransmitTimeout) {
		t.Fatalf("SendByte on stalled device: %v", err)
	}
	if got := sim.TxBytes(); len(got) != 0 {
		t.Fatalf("stalled transmitter accepted data: %v", got)
	}
	if _, err := u.ReadByte(); !errors.Is(err, uart16550.ErrReceiveTimeout) {
		t.Fatalf("ReadByte on stalled device: %v", err)
	}

	// Releasing the stall makes the queued byte visible again.
	sim.Stall(false, false)
	b, err := u.ReadByte()
	if err != nil || b != 0x55 {
		t.Fatalf("ReadByte after release = (%#02x, %v), want (0x55, nil)", b, err)
	}
}

func TestDLABRoutesDivisorLatch(t *testing.T) {
	sim := New()

	sim.Write8(3, 0x80) // set DLAB
	sim.Write8(0, 0x0C)
	sim.Write8(1, 0x01)
	if got := sim.Divisor(); got != 0x010C {
		t.Fatalf("divisor = %#04x, want 0x010C", got)
	}
	if got := sim.Read8(0); got != 0x0C {
		t.Fatalf("DLL readback = %#02x, want 0x0C", got)
	}

	sim.Write8(3, 0x00) // clear DLAB: offset 0 is data again
	sim.Feed([]byte{'z'})
	if got := sim.Read8(0); got != 'z' {
		t.Fatalf("data read = %q, want 'z'", got)
	}
}

func TestFIFOClearDropsQueues(t *testing.T) {
	sim := New()
	sim.Feed([]byte("abc"))
	sim.Write8(0, 'T')

	sim.Write8(2, 0x07) // enable + clear both FIFOs
	if got := sim.Read8(5); got&lsrDataReady != 0 {
		t.Fatalf("data-ready still set after RX clear: LSR=%#02x", got)
	}
	if got := sim.TxBytes(); len(got) != 0 {
		t.Fatalf("TX queue survived clear: %v", got)
	}
}

func TestOutputSink(t *testing.T) {
	var out bytes.Buffer
	sim := New()
	sim.Output = &out

	u, err := uart16550.New(sim, uart16550.Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := u.WriteString("hi"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if out.String() != "hi" {
		t.Fatalf("sink saw %q, want %q", out.String(), "hi")
	}
}
