// cmd/uart_bridge/main.go

// uart_bridge exercises the 16550 driver against a real serial line when no
// MMIO window is available: a simulated register window is wired to a host
// serial port, so bytes the driver transmits leave through the OS port and
// bytes arriving on the port become data-ready for the driver. stdin and
// stdout are attached to the driver's byte interface.
//
// Usage:
//
//	uart_bridge -port /dev/ttyUSB0 [-baud 115200]
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/tarm/serial"

	"github.com/diodesign/mmio-16550-uart/uart16550"
	"github.com/diodesign/mmio-16550-uart/uartsim"
)

var (
	portFlag = flag.String("port", "", "host serial port to bridge to (required)")
	baudFlag = flag.Int("baud", 115200, "host serial port baud rate")
)

// pump moves bytes arriving on the host port into the simulated device's
// receive queue.
func pump(s *serial.Port, sim *uartsim.Sim) {
	buf := make([]byte, 128)
	for {
		n, err := s.Read(buf)
		if n > 0 {
			sim.Feed(buf[:n])
		}
		if err != nil {
			log.Printf("uart_bridge: port read: %v", err)
			return
		}
	}
}

func main() {
	flag.Parse()
	if *portFlag == "" {
		log.Fatal("uart_bridge: -port is required")
	}

	s, err := serial.OpenPort(&serial.Config{Name: *portFlag, Baud: *baudFlag})
	if err != nil {
		log.Fatalf("uart_bridge: open %s: %v", *portFlag, err)
	}

	sim := uartsim.New()
	sim.Output = s // driver TX goes straight out of the host port
	go pump(s, sim)

	u, err := uart16550.New(sim, uart16550.Config{})
	if err != nil {
		log.Fatalf("uart_bridge: %v", err)
	}
	log.Printf("uart_bridge: driver attached to %s at %d bps", *portFlag, *baudFlag)

	ctx := context.Background()

	// stdin to the driver.
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				os.Exit(0)
			}
			if err := u.SendByteContext(ctx, buf[0]); err != nil {
				log.Fatalf("uart_bridge: send: %v", err)
			}
		}
	}()

	// Driver to stdout.
	out := make([]byte, 1)
	for {
		b, err := u.ReadByteContext(ctx)
		if err != nil {
			log.Fatalf("uart_bridge: read: %v", err)
		}
		out[0] = b
		os.Stdout.Write(out)
	}
}
