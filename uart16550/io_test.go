package uart16550

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestWriteStopsAtFirstTimeout(t *testing.T) {
	u, w := newTestUART(t, Config{PollLimit: 4})
	// Room for the first two bytes, then the transmitter wedges.
	w.status = func(n int) byte {
		if n <= 2 {
			return lineStatusTHREmpty
		}
		return 0
	}

	n, err := u.Write([]byte("abc"))
	if n != 2 || !errors.Is(err, ErrTransmitTimeout) {
		t.Fatalf("Write = (%d, %v), want (2, ErrTransmitTimeout)", n, err)
	}
	want := []regWrite{{regData, 'a'}, {regData, 'b'}}
	if len(w.writes) != len(want) || w.writes[0] != want[0] || w.writes[1] != want[1] {
		t.Fatalf("unexpected data writes: %v", w.writes)
	}
}

func TestReadDrainsBurstWithoutExtraBudget(t *testing.T) {
	u, w := newTestUART(t, Config{})
	// Three bytes ready, then the line goes quiet.
	w.status = func(n int) byte {
		if n <= 3 {
			return lineStatusDataReady
		}
		return 0
	}
	w.data = 'x'

	buf := make([]byte, 8)
	n, err := u.Read(buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 3 {
		t.Fatalf("Read n = %d, want 3", n)
	}
	// One poll per byte plus the final not-ready check: no budget burned.
	if w.statusReads != 4 {
		t.Fatalf("polled status %d times, want 4", w.statusReads)
	}
	if w.dataReads != 3 {
		t.Fatalf("read data register %d times, want 3", w.dataReads)
	}
}

func TestReadTimeoutWhenNothingArrives(t *testing.T) {
	u, _ := newTestUART(t, Config{PollLimit: 4})
	if n, err := u.Read(make([]byte, 8)); n != 0 || !errors.Is(err, ErrReceiveTimeout) {
		t.Fatalf("Read = (%d, %v), want (0, ErrReceiveTimeout)", n, err)
	}
}

func TestSendByteContextHonoursCancel(t *testing.T) {
	u, _ := newTestUART(t, Config{PollLimit: 2})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := u.SendByteContext(ctx, 'q')
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("SendByteContext err = %v, want deadline exceeded", err)
	}
}

func TestReadByteContextSucceedsAcrossBudgets(t *testing.T) {
	u, w := newTestUART(t, Config{PollLimit: 4})
	// Data shows up only after a couple of exhausted budgets.
	w.data = 'R'
	w.status = func(n int) byte {
		if n > 10 {
			return lineStatusDataReady
		}
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	b, err := u.ReadByteContext(ctx)
	if err != nil {
		t.Fatalf("ReadByteContext: %v", err)
	}
	if b != 'R' {
		t.Fatalf("ReadByteContext = %q, want 'R'", b)
	}
}
