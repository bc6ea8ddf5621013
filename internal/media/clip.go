// Package media shells out to ffmpeg for audio handling and fingerprints
// source files for stable working-directory names.
package media

import (
	"context"
	"fmt"
	"io"
	"math"
	"os/exec"
)

// FFmpegClipper extracts time slices of an audio file with ffmpeg.
// Offsets are rounded to millisecond resolution before being passed on.
type FFmpegClipper struct{}

// Extract writes the [startSec, endSec) slice of src to dst as mono
// 16kHz WAV, the format the transcription backends expect.
func (FFmpegClipper) Extract(ctx context.Context, src string, startSec, endSec float64, dst string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-y",
		"-ss", formatOffset(startSec),
		"-to", formatOffset(endSec),
		"-i", src,
		"-ac", "1", "-ar", "16000",
		"-f", "wav",
		dst,
	)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

func formatOffset(sec float64) string {
	ms := int64(math.Round(sec * 1000))
	return fmt.Sprintf("%d.%03d", ms/1000, ms%1000)
}
