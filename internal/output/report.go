// Package output renders transcription results as a stable plain-text
// report. Identical input yields byte-identical output: no timestamps,
// no environment-dependent content.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"diascribe/internal/transcribe"
)

const reportTitle = "Speaker Diarization and Transcription Results"

// Render writes the report for results to w.
func Render(w io.Writer, results []transcribe.Result) error {
	var b strings.Builder
	b.WriteString(reportTitle + "\n")
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "Speaker %s (%.1fs - %.1fs):\n", r.Speaker, r.StartSec, r.EndSec)
		fmt.Fprintf(&b, "%s\n\n", r.Transcript)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteFile renders the report to path.
func WriteFile(path string, results []transcribe.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := Render(f, results); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
