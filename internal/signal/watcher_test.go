package signal

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_CreatesSignalsDir(t *testing.T) {
	base := t.TempDir()

	w, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	info, err := os.Stat(filepath.Join(base, ".mentorra", "signals"))
	if err != nil {
		t.Fatalf("signals dir not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("signals path is not a directory")
	}
}

func TestShouldStop_StatFallback(t *testing.T) {
	base := t.TempDir()

	w, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if w.ShouldStop() {
		t.Error("ShouldStop true before any request")
	}

	if err := w.RequestStop(); err != nil {
		t.Fatalf("RequestStop failed: %v", err)
	}

	if !w.ShouldStop() {
		t.Error("ShouldStop false after RequestStop")
	}

	// After ShouldStop observed the file, the channel must be closed.
	select {
	case <-w.Chan():
	default:
		t.Error("Chan not closed after stop observed")
	}
}

func TestChan_ClosesOnWatcherEvent(t *testing.T) {
	base := t.TempDir()

	w, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	ch := w.Chan()

	if err := w.RequestStop(); err != nil {
		t.Fatalf("RequestStop failed: %v", err)
	}

	select {
	case <-ch:
	case <-time.After(5 * time.Second):
		t.Fatal("Chan did not close after stop file was written")
	}
}

func TestClearStop_Rearms(t *testing.T) {
	base := t.TempDir()

	w, err := New(base)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer w.Close()

	if err := w.RequestStop(); err != nil {
		t.Fatalf("RequestStop failed: %v", err)
	}
	if !w.ShouldStop() {
		t.Fatal("ShouldStop false after RequestStop")
	}

	w.ClearStop()

	if w.ShouldStop() {
		t.Error("ShouldStop still true after ClearStop")
	}

	// The channel is fresh and open again.
	select {
	case <-w.Chan():
		t.Error("Chan closed immediately after ClearStop")
	default:
	}
}
