// Copyright 2020 YourBase Inc.
// SPDX-License-Identifier: BSD-3-Clause

// Package lcfwatch reloads an LCF document whenever its file changes.
package lcfwatch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/yourbase/lcfconfig/lcf"
	"zombiezen.com/go/log"
)

// Default tuning for Watch.
const (
	DefaultDebounce   = 100 * time.Millisecond
	DefaultMinBackoff = 10 * time.Millisecond
	DefaultMaxBackoff = 2 * time.Second
)

// Options holds optional parameters for Watch.
type Options struct {
	// Parse is passed to the parser on every load.
	Parse *lcf.ParseOptions

	// Debounce is how long to wait after the last change event before
	// reloading. Editors often write a file in several steps.
	// Zero means DefaultDebounce.
	Debounce time.Duration

	// MinBackoff and MaxBackoff bound the wait between failed reads.
	// Zero means DefaultMinBackoff and DefaultMaxBackoff.
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func (opts *Options) parseOptions() *lcf.ParseOptions {
	if opts == nil {
		return nil
	}
	return opts.Parse
}

func (opts *Options) debounce() time.Duration {
	if opts == nil || opts.Debounce <= 0 {
		return DefaultDebounce
	}
	return opts.Debounce
}

func (opts *Options) backoff() *backoff {
	b := &backoff{next: DefaultMinBackoff, max: DefaultMaxBackoff}
	if opts != nil && opts.MinBackoff > 0 {
		b.next = opts.MinBackoff
	}
	if opts != nil && opts.MaxBackoff > 0 {
		b.max = opts.MaxBackoff
	}
	if b.next > b.max {
		b.next = b.max
	}
	return b
}

// Watch parses the file at path and calls f with the result. It then watches
// the file and, each time it is written or replaced, parses it again and calls
// f with the new Config. Reads that fail are retried with exponential backoff.
// f is never called concurrently.
//
// Watch blocks until the Context is Done, then returns the Context's error.
// Watch returns early with an error if the file cannot be read initially or
// the file system cannot be watched. Nil options are treated identically as
// passing the zero value.
func Watch(ctx context.Context, path string, opts *Options, f func(*lcf.Config)) error {
	path, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("watch lcf: %w", err)
	}
	cfg, err := lcf.ParseFile(path, opts.parseOptions())
	if err != nil {
		return fmt.Errorf("watch lcf: %w", err)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch lcf: %w", err)
	}
	defer w.Close()
	// Watching the directory catches files that are replaced by renaming a
	// new file over them.
	if err := w.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch lcf: %s: %w", path, err)
	}
	f(cfg)
	log.Debugf(ctx, "Watching %s for changes", path)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("watch lcf: watcher closed")
			}
			if filepath.Clean(ev.Name) != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(opts.debounce())
			fire = timer.C
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("watch lcf: watcher closed")
			}
			log.Warnf(ctx, "Watching %s: %v", path, err)
		case <-fire:
			fire = nil
			cfg, err := reload(ctx, path, opts)
			if err != nil {
				return err
			}
			log.Infof(ctx, "Reloaded %s", path)
			f(cfg)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// reload parses the file at path, retrying with exponential backoff until it
// succeeds or the Context is Done. reload returns an error only if the
// Context is Done.
func reload(ctx context.Context, path string, opts *Options) (*lcf.Config, error) {
	b := opts.backoff()
	var t *time.Timer
	for {
		cfg, err := lcf.ParseFile(path, opts.parseOptions())
		if err == nil {
			return cfg, nil
		}
		d := b.Duration()
		log.Warnf(ctx, "Error reloading %s (will retry in %v): %v", path, d, err)
		if t == nil {
			t = time.NewTimer(d)
			defer t.Stop()
		} else {
			t.Reset(d)
		}
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// backoff produces doubling durations up to a maximum.
type backoff struct {
	next time.Duration
	max  time.Duration
}

func (b *backoff) Duration() time.Duration {
	d := b.next
	b.next *= 2
	if b.next > b.max {
		b.next = b.max
	}
	return d
}

// A Holder stores the most recent Config. It is safe to use from multiple
// goroutines. The zero value holds nil. Its Store method can be passed
// directly to Watch.
type Holder struct {
	v atomic.Value
}

// Load returns the most recently stored Config, or nil if none has been
// stored.
func (h *Holder) Load() *lcf.Config {
	c, _ := h.v.Load().(*lcf.Config)
	return c
}

// Store replaces the held Config.
func (h *Holder) Store(c *lcf.Config) {
	h.v.Store(c)
}
