package infra

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestGetWorkDirCreatesDirectory(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	dir, err := GetWorkDir(base, "nested", "dir")
	if err != nil {
		t.Fatalf("get work dir: %v", err)
	}
	if dir != filepath.Join(base, "nested", "dir") {
		t.Fatalf("unexpected dir: %s", dir)
	}
	if stat, err := os.Stat(dir); err != nil || !stat.IsDir() {
		t.Fatalf("dir not created: %v", err)
	}
}

func TestRecoverConvertsPanic(t *testing.T) {
	t.Parallel()

	run := func() (err error) {
		defer Recover("job", &err)
		panic("boom")
	}
	err := run()
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMonitorFileSignalsOnChange(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "binary")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ch := MonitorFile(ctx, path, 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	later := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("touch file: %v", err)
	}

	select {
	case _, ok := <-ch:
		if !ok {
			t.Fatalf("monitor stopped without signal")
		}
	case <-ctx.Done():
		t.Fatalf("no change detected")
	}
}

func TestMonitorFileStopsWithContext(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "binary")
	if err := os.WriteFile(path, []byte("v1"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	ch := MonitorFile(ctx, path, time.Hour)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatalf("unexpected signal")
		}
	case <-time.After(time.Second):
		t.Fatalf("monitor did not stop")
	}
}

func TestGoRecoverableRestartsJob(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	calls := 0
	var mu sync.Mutex
	go GoRecoverable(2, "flaky", func() {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n < 3 {
			panic("flaky")
		}
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("job was not restarted")
	}
}
