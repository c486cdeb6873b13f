// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

type countingGC struct {
	calls atomic.Int32
	err   error
	ratio atomic.Value
}

func (g *countingGC) RunGC(ratio float64) error {
	g.calls.Add(1)
	g.ratio.Store(ratio)
	return g.err
}

func TestStoreGCServiceDefaults(t *testing.T) {
	var _ suture.Service = (*StoreGCService)(nil)

	svc := NewStoreGCService(&countingGC{}, 0, 1.5)
	if svc.interval != DefaultGCInterval {
		t.Errorf("interval = %v, want %v", svc.interval, DefaultGCInterval)
	}
	if svc.ratio != DefaultGCDiscardRatio {
		t.Errorf("ratio = %v, want %v", svc.ratio, DefaultGCDiscardRatio)
	}
	if svc.String() != "store-gc" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestStoreGCServiceRunsOnTicker(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"healthy", nil},
		{"gc failures keep the loop alive", errors.New("value log busy")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gc := &countingGC{err: tt.err}
			svc := NewStoreGCService(gc, 10*time.Millisecond, 0.7)

			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			err := svc.Serve(ctx)
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("Serve = %v, want deadline exceeded", err)
			}
			if gc.calls.Load() < 2 {
				t.Errorf("RunGC called %d times, want at least 2", gc.calls.Load())
			}
			if got, _ := gc.ratio.Load().(float64); got != 0.7 {
				t.Errorf("ratio = %v, want 0.7", got)
			}
		})
	}
}

type runnerFunc func(ctx context.Context) error

func (f runnerFunc) Run(ctx context.Context) error { return f(ctx) }

func TestRunnerService(t *testing.T) {
	t.Run("cancellation is a clean stop", func(t *testing.T) {
		svc := NewRunnerService("email-queue", runnerFunc(func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		}))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if err := svc.Serve(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Serve = %v, want context.Canceled", err)
		}
	})

	t.Run("early return is a failure", func(t *testing.T) {
		boom := errors.New("router closed")
		svc := NewRunnerService("email-queue", runnerFunc(func(context.Context) error { return boom }))
		if err := svc.Serve(context.Background()); !errors.Is(err, boom) {
			t.Errorf("Serve = %v, want %v", err, boom)
		}
	})

	t.Run("nil early return is a failure", func(t *testing.T) {
		svc := NewRunnerService("email-queue", runnerFunc(func(context.Context) error { return nil }))
		if err := svc.Serve(context.Background()); err == nil {
			t.Error("Serve = nil, want error")
		}
	})

	t.Run("restarted by supervisor", func(t *testing.T) {
		var starts atomic.Int32
		svc := NewRunnerService("flaky", runnerFunc(func(ctx context.Context) error {
			if starts.Add(1) < 3 {
				return errors.New("transient")
			}
			<-ctx.Done()
			return ctx.Err()
		}))

		sup := suture.New("test", suture.Spec{FailureThreshold: 10, FailureBackoff: 10 * time.Millisecond})
		sup.Add(svc)
		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()
		<-sup.ServeBackground(ctx)

		if starts.Load() < 3 {
			t.Errorf("starts = %d, want at least 3", starts.Load())
		}
	})
}
