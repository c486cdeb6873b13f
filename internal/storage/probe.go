// Vidshare - Video Sharing Platform Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vidshare

package storage

import (
	"context"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/vidshare/internal/logging"
)

// DurationProber reads the duration of a local video file in seconds.
// Implementations return 0 when the duration cannot be determined.
type DurationProber interface {
	Probe(ctx context.Context, path string) float64
}

// FFProbe runs the ffprobe binary.
type FFProbe struct {
	Path    string
	Timeout time.Duration
}

// NewFFProbe returns a prober using binary, or "ffprobe" from PATH when empty.
func NewFFProbe(binary string) *FFProbe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFProbe{Path: binary, Timeout: 30 * time.Second}
}

// Probe implements DurationProber.
func (p *FFProbe) Probe(ctx context.Context, path string) float64 {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	//nolint:gosec // binary is configured by the operator, path is our own temp file
	out, err := exec.CommandContext(ctx, p.Path,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		logging.Debug().Err(err).Str("path", path).Msg("ffprobe failed, duration unknown")
		return 0
	}
	d, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// noProbe is used when no prober is configured.
type noProbe struct{}

func (noProbe) Probe(context.Context, string) float64 { return 0 }
