// Darkwatch - Dark Vessel Detection and Maritime Risk Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/darkwatch

package darkvessel

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPacer_SerializesConcurrentCallers(t *testing.T) {
	const delay = 30 * time.Millisecond
	p := NewPacer(delay)

	var (
		inFlight atomic.Int32
		overlap  atomic.Bool
		mu       sync.Mutex
		starts   []time.Time
		wg       sync.WaitGroup
	)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := p.Do(context.Background(), func(context.Context) error {
				if inFlight.Add(1) > 1 {
					overlap.Store(true)
				}
				mu.Lock()
				starts = append(starts, time.Now())
				mu.Unlock()
				time.Sleep(5 * time.Millisecond)
				inFlight.Add(-1)
				return nil
			})
			if err != nil {
				t.Errorf("Do() error = %v", err)
			}
		}()
	}
	wg.Wait()

	if overlap.Load() {
		t.Error("calls overlapped")
	}
	if len(starts) != 4 {
		t.Fatalf("starts = %d, want 4", len(starts))
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	for i := 1; i < len(starts); i++ {
		if gap := starts[i].Sub(starts[i-1]); gap < delay-5*time.Millisecond {
			t.Errorf("starts %d and %d only %v apart, want >= %v", i-1, i, gap, delay)
		}
	}
}

func TestPacer_ReturnsCallError(t *testing.T) {
	p := NewPacer(0)
	want := errors.New("boom")
	if err := p.Do(context.Background(), func(context.Context) error { return want }); !errors.Is(err, want) {
		t.Errorf("Do() error = %v, want %v", err, want)
	}
	// The slot is released after a failed call.
	if err := p.Do(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Errorf("second Do() error = %v", err)
	}
}

func TestPacer_CanceledWhileWaitingForSlot(t *testing.T) {
	p := NewPacer(0)

	release := make(chan struct{})
	holding := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = p.Do(context.Background(), func(context.Context) error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	called := false
	err := p.Do(ctx, func(context.Context) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do() error = %v, want context.DeadlineExceeded", err)
	}
	if called {
		t.Error("fn ran without the slot")
	}

	close(release)
	<-done
}
