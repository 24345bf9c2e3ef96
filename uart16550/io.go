// uart16550/io.go

package uart16550

import (
	"context"
	"time"
)

// The adapters below layer stream semantics over the single-byte
// operations so a UART can be handed to code expecting io.Reader/io.Writer.
// They inherit the bounded-poll behaviour: nothing here waits forever.

// Write implements io.Writer over SendByte. It stops at the first byte the
// device refuses within the poll budget and reports how many bytes were
// accepted alongside ErrTransmitTimeout.
func (u *UART) Write(p []byte) (int, error) {
	for i, b := range p {
		if err := u.SendByte(b); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// WriteString implements io.StringWriter.
func (u *UART) WriteString(s string) (int, error) {
	return u.Write([]byte(s))
}

// WriteByte implements io.ByteWriter.
func (u *UART) WriteByte(b byte) error { return u.SendByte(b) }

// Read implements io.Reader. The first byte gets the full poll budget; once
// something has arrived, Read keeps draining only while data is immediately
// ready, so it returns promptly with whatever a burst delivered. A receive
// timeout is reported only when nothing at all was read.
func (u *UART) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := u.ReadByte()
	if err != nil {
		return 0, err
	}
	p[0] = b
	n := 1
	for n < len(p) && u.dataReady() {
		p[n] = u.win.Read8(regData)
		n++
	}
	return n, nil
}

// SendByteContext retries SendByte, one poll budget per attempt, until the
// byte is accepted or ctx is done. Between attempts it politely yields.
func (u *UART) SendByteContext(ctx context.Context, b byte) error {
	for {
		err := u.SendByte(b)
		if err != ErrTransmitTimeout {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			time.Sleep(0) // polite yield
		}
	}
}

// ReadByteContext retries ReadByte, one poll budget per attempt, until a
// byte arrives or ctx is done.
func (u *UART) ReadByteContext(ctx context.Context) (byte, error) {
	for {
		b, err := u.ReadByte()
		if err != ErrReceiveTimeout {
			return b, err
		}
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
			time.Sleep(0)
		}
	}
}
