// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package services

import (
	"context"
	"errors"
	"fmt"
)

// Runner is a component with a blocking, context-aware run loop, such as
// the notify email queue.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerService adapts a Runner to suture.Service.
//
//	queue := notify.NewQueue(sender, notify.QueueConfig{})
//	tree.AddMessagingService(services.NewRunnerService("email-queue", queue))
type RunnerService struct {
	runner Runner
	name   string
}

// NewRunnerService wraps runner under name.
func NewRunnerService(name string, runner Runner) *RunnerService {
	return &RunnerService{runner: runner, name: name}
}

// Serve implements suture.Service. A run loop that returns on its own while
// the context is still live is reported as a failure so suture restarts it.
func (s *RunnerService) Serve(ctx context.Context) error {
	err := s.runner.Run(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err == nil {
		err = errors.New("exited unexpectedly")
	}
	return fmt.Errorf("%s: %w", s.name, err)
}

// String implements fmt.Stringer.
func (s *RunnerService) String() string {
	return s.name
}
