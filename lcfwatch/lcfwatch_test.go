// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

package lcfwatch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yourbase/lcfconfig/lcf"
	"zombiezen.com/go/log/testlog"
)

// fastOptions keeps tests quick while still exercising debounce and backoff.
var fastOptions = &Options{
	Debounce:   10 * time.Millisecond,
	MinBackoff: 1 * time.Millisecond,
	MaxBackoff: 10 * time.Millisecond,
}

func TestWatch(t *testing.T) {
	ctx, cancel := context.WithCancel(testlog.WithTB(context.Background(), t))
	defer cancel()
	path := filepath.Join(t.TempDir(), "app.lcf")
	if err := os.WriteFile(path, []byte("::server\n  port>>1\n"), 0o666); err != nil {
		t.Fatal(err)
	}

	configs := make(chan *lcf.Config)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, fastOptions, func(c *lcf.Config) {
			select {
			case configs <- c:
			case <-ctx.Done():
			}
		})
	}()

	waitForPort(t, configs, 1)
	if err := os.WriteFile(path, []byte("::server\n  $port>>2\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	c := waitForPort(t, configs, 2)
	if diff := cmp.Diff([]string{"server:port"}, c.HiddenKeys()); diff != "" {
		t.Errorf("HiddenKeys() (-want +got):\n%s", diff)
	}

	// Replace the file by renaming a new one over it.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte("::server\n  port>>3\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
	waitForPort(t, configs, 3)

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch(...) = %v; want %v", err, context.Canceled)
	}
}

// waitForPort receives configs until one has the given server:port. Writes
// can be observed half-finished, so earlier configs are skipped.
func waitForPort(t *testing.T, configs <-chan *lcf.Config, port float64) *lcf.Config {
	t.Helper()
	timeout := time.NewTimer(10 * time.Second)
	defer timeout.Stop()
	for {
		select {
		case c := <-configs:
			if got, _ := c.Get("server:port", lcf.Value{}).Float(); got == port {
				return c
			}
		case <-timeout.C:
			t.Fatalf("timed out waiting for server:port = %v", port)
			return nil
		}
	}
}

func TestWatchMissingFile(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	called := false
	err := Watch(ctx, filepath.Join(t.TempDir(), "missing.lcf"), nil, func(*lcf.Config) {
		called = true
	})
	if err == nil {
		t.Error("Watch(<missing>) = <nil>; want error")
	}
	if called {
		t.Error("f called for missing file")
	}
}

func TestReloadRetries(t *testing.T) {
	ctx := testlog.WithTB(context.Background(), t)
	dir := t.TempDir()
	path := filepath.Join(dir, "late.lcf")
	tmp := filepath.Join(dir, "late.lcf.tmp")
	if err := os.WriteFile(tmp, []byte("k>>v\n"), 0o666); err != nil {
		t.Fatal(err)
	}
	// The file must appear with its full contents at once.
	renamed := make(chan error, 1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		renamed <- os.Rename(tmp, path)
	}()
	c, err := reload(ctx, path, fastOptions)
	if err := <-renamed; err != nil {
		t.Fatal(err)
	}
	if err != nil {
		t.Fatal("reload:", err)
	}
	if got, _ := c.Get("k", lcf.Value{}).Str(); got != "v" {
		t.Errorf("Get(\"k\") = %q; want \"v\"", got)
	}
}

func TestReloadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(testlog.WithTB(context.Background(), t))
	cancel()
	_, err := reload(ctx, filepath.Join(t.TempDir(), "missing.lcf"), fastOptions)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("reload(...) = _, %v; want %v", err, context.Canceled)
	}
}

func TestBackoff(t *testing.T) {
	b := (&Options{MinBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}).backoff()
	var got []time.Duration
	for i := 0; i < 5; i++ {
		got = append(got, b.Duration())
	}
	want := []time.Duration{
		1 * time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
		5 * time.Millisecond,
		5 * time.Millisecond,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("durations (-want +got):\n%s", diff)
	}

	if got := (*Options)(nil).backoff().Duration(); got != DefaultMinBackoff {
		t.Errorf("default first backoff = %v; want %v", got, DefaultMinBackoff)
	}
}

func TestHolder(t *testing.T) {
	h := new(Holder)
	if got := h.Load(); got != nil {
		t.Errorf("new(Holder).Load() = %v; want nil", got)
	}
	c := lcf.New(lcf.Parse("k>>v\n", nil))
	h.Store(c)
	if got := h.Load(); got != c {
		t.Errorf("Load() = %p; want %p", got, c)
	}
}

func TestMain(m *testing.M) {
	testlog.Main(nil)
	os.Exit(m.Run())
}
