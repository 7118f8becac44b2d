package progress

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a goroutine-safe writer for observing repaints.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

func TestIndicatorRepaintsWhileRunning(t *testing.T) {
	buf := &syncBuffer{}
	ind := NewWithWriter(buf, "rewriting history")

	ind.Start()
	time.Sleep(350 * time.Millisecond)
	ind.Stop()

	out := buf.String()
	if !strings.Contains(out, "rewriting history") {
		t.Errorf("status line missing message, got %q", out)
	}
	if !strings.Contains(out, "\r") {
		t.Error("status line never repainted in place")
	}
}

func TestStopSilencesAllFurtherWrites(t *testing.T) {
	buf := &syncBuffer{}
	ind := NewWithWriter(buf, "working")

	ind.Start()
	time.Sleep(250 * time.Millisecond)
	ind.Stop()

	after := buf.Len()
	time.Sleep(300 * time.Millisecond)
	if buf.Len() != after {
		t.Error("indicator wrote after Stop returned")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	buf := &syncBuffer{}
	ind := NewWithWriter(buf, "working")

	ind.Stop() // without Start
	ind.Start()
	ind.Stop()
	ind.Stop()
}

func TestStartIsIdempotent(t *testing.T) {
	buf := &syncBuffer{}
	ind := NewWithWriter(buf, "working")

	ind.Start()
	ind.Start()
	ind.Stop()
}

func TestRunWrapsFunction(t *testing.T) {
	buf := &syncBuffer{}
	ind := NewWithWriter(buf, "working")

	ran := false
	ind.Run(func() {
		ran = true
		time.Sleep(150 * time.Millisecond)
	})
	if !ran {
		t.Error("Run() never invoked the function")
	}
}

func TestDisabledIndicatorNeverWrites(t *testing.T) {
	buf := &syncBuffer{}
	ind := &Indicator{w: buf, message: "quiet", interval: frameInterval, enabled: false}

	ind.Start()
	time.Sleep(250 * time.Millisecond)
	ind.Stop()

	if buf.Len() != 0 {
		t.Errorf("disabled indicator wrote %d bytes", buf.Len())
	}
}
