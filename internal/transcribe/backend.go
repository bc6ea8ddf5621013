package transcribe

import "context"

// Result pairs a speaker turn with its transcript text. Transcript holds
// either model output or the soft-failure marker produced when a single
// turn's transcription fails (see Orchestrator).
type Result struct {
	Speaker    string
	StartSec   float64
	EndSec     float64
	Transcript string
}

// Backend is a pluggable transcription backend. It must return within
// finite time; errors are contained per turn by the orchestrator, never
// treated as fatal.
type Backend interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

// Clipper extracts the [startSec, endSec) slice of src into dst.
type Clipper interface {
	Extract(ctx context.Context, src string, startSec, endSec float64, dst string) error
}
