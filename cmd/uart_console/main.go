// cmd/uart_console/main.go

//go:build linux

// uart_console attaches the local terminal to a 16550 driver instance:
// keystrokes are transmitted byte by byte and received bytes are written to
// stdout. With no -base it talks to a simulated loopback device, which
// makes it a quick way to poke the driver without hardware. Ctrl-] exits.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/diodesign/mmio-16550-uart/mmio"
	"github.com/diodesign/mmio-16550-uart/uart16550"
	"github.com/diodesign/mmio-16550-uart/uartsim"
)

const exitKey = 0x1D // Ctrl-]

var (
	baseFlag = flag.String("base", "", "physical base address of a real register window (default: loopback simulator)")
	memFlag  = flag.String("mem", "/dev/mem", "memory device to map the window from")
	baudFlag = flag.Uint("baud", 38400, "baud rate")
)

func openWindow() (mmio.Window, func(), error) {
	if *baseFlag == "" {
		return uartsim.NewLoopback(), func() {}, nil
	}
	base, err := strconv.ParseUint(*baseFlag, 0, 64)
	if err != nil {
		return nil, nil, fmt.Errorf("bad -base %q: %v", *baseFlag, err)
	}
	r, err := mmio.Map(*memFlag, uintptr(base), uart16550.WindowSize)
	if err != nil {
		return nil, nil, err
	}
	return r, func() { r.Close() }, nil
}

func main() {
	flag.Parse()

	win, closeWin, err := openWindow()
	if err != nil {
		log.Fatalf("uart_console: %v", err)
	}
	defer closeWin()

	u, err := uart16550.New(win, uart16550.Config{BaudRate: uint32(*baudFlag)})
	if err != nil {
		log.Fatalf("uart_console: %v", err)
	}

	fmt.Printf("uart_console: %d bps, Ctrl-] to exit\r\n", *baudFlag)
	oldState, err := term.MakeRaw(int(os.Stdin.Fd()))
	if err != nil {
		log.Fatalf("uart_console: raw terminal: %v", err)
	}
	defer term.Restore(int(os.Stdin.Fd()), oldState)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Keyboard to UART.
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := os.Stdin.Read(buf); err != nil {
				cancel()
				return
			}
			if buf[0] == exitKey {
				cancel()
				return
			}
			if err := u.SendByteContext(ctx, buf[0]); err != nil {
				return
			}
		}
	}()

	// UART to screen.
	out := make([]byte, 1)
	for {
		b, err := u.ReadByteContext(ctx)
		if err != nil {
			break // cancelled via exit key or stdin close
		}
		out[0] = b
		os.Stdout.Write(out)
	}
	fmt.Print("\r\nuart_console: bye\r\n")
}
