package watchers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/arvhem/beambar/internal/scheduler"
)

func TestFileWatcher_EmitsTaskPerWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness")
	if err := os.WriteFile(path, []byte("10\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tasks := make(chan scheduler.Task, 16)
	w := NewFileWatcher(path, "blk-1", tasks, zerolog.Nop())
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer w.Stop()

	for i := 0; i < 3; i++ {
		if err := os.WriteFile(path, []byte("20\n"), 0o644); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}

		select {
		case task := <-tasks:
			if task.ID != "blk-1" {
				t.Fatalf("task.ID = %q, want %q", task.ID, "blk-1")
			}
			if task.UpdateTime.IsZero() {
				t.Fatal("task.UpdateTime is zero")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("no task after write %d", i)
		}

		// A single write may surface as more than one event; drain before
		// the next round so counts stay per-write.
		deadline := time.After(50 * time.Millisecond)
	drain:
		for {
			select {
			case <-tasks:
			case <-deadline:
				break drain
			}
		}
	}
}

func TestFileWatcher_StartMissingFile(t *testing.T) {
	tasks := make(chan scheduler.Task, 1)
	w := NewFileWatcher(filepath.Join(t.TempDir(), "nope"), "blk-1", tasks, zerolog.Nop())

	failures := 0
	w.OnFailure(func(error) { failures++ })

	if err := w.Start(); err == nil {
		t.Fatal("Start() error = nil, want watch registration error")
	}
	if failures != 0 {
		t.Fatalf("failure callback ran %d times during Start, want 0", failures)
	}
	w.Stop()
}

func TestFileWatcher_StopJoins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brightness")
	if err := os.WriteFile(path, []byte("10\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	w := NewFileWatcher(path, "blk-1", make(chan scheduler.Task), zerolog.Nop())
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		w.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() did not join the watch loop")
	}
}

func TestFileWatcher_FailureReportedOnce(t *testing.T) {
	w := NewFileWatcher("unused", "blk-1", make(chan scheduler.Task), zerolog.Nop())

	var got []error
	w.OnFailure(func(err error) { got = append(got, err) })

	wantErr := errors.New("watch broke")
	w.fail(wantErr)
	w.fail(errors.New("again"))

	if len(got) != 1 {
		t.Fatalf("failure callback ran %d times, want 1", len(got))
	}
	if !errors.Is(got[0], wantErr) {
		t.Fatalf("failure callback got %v, want %v", got[0], wantErr)
	}
}
