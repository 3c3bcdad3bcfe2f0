package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestStoreVersions(t *testing.T) {
	s := NewStore(Default())
	if v := s.Current().Version; v != 1 {
		t.Fatalf("initial version = %d, want 1", v)
	}
	cfg := Default()
	cfg.Tactics.ResetOnReassign = true
	snap := s.Publish(cfg)
	if snap.Version != 2 {
		t.Errorf("Publish() version = %d, want 2", snap.Version)
	}
	if got := s.Current(); got.Version != 2 || !got.Config.Tactics.ResetOnReassign {
		t.Errorf("Current() = %+v, want version 2 with the published config", got)
	}
}

func TestWatcherReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "stp.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(Default())
	w, err := NewWatcher(path, store)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)
	defer func() {
		cancel()
		<-w.Done()
	}()

	if err := os.WriteFile(path, []byte("tactics:\n  reset_on_reassign: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if snap := store.Current(); snap.Version > 1 && snap.Config.Tactics.ResetOnReassign {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("config was not reloaded, current = %+v", store.Current())
}

func TestWatcherKeepsLastGoodConfig(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "stp.yaml")
	if err := os.WriteFile(path, []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	store := NewStore(Default())
	w, err := NewWatcher(path, store)
	if err != nil {
		t.Fatalf("NewWatcher() error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go w.Run(ctx)

	if err := os.WriteFile(path, []byte("field:\n  x_length: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	cancel()
	<-w.Done()

	if v := store.Current().Version; v != 1 {
		t.Errorf("version after invalid write = %d, want 1", v)
	}
}
