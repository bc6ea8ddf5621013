package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"diascribe/internal/diarize"
	"diascribe/internal/logging"
)

// Orchestrator transcribes speaker turns one at a time, in input order.
// A failing turn never aborts the run: its transcript becomes
// "[Transcription error: <cause>]" and processing moves on.
type Orchestrator struct {
	Clipper Clipper
	Backend Backend
	WorkDir string // temp clip location; defaults to the system temp dir
}

// Run produces one Result per turn, same order as turns. The per-turn clip
// file is removed on every path, including transcription failure.
func (o *Orchestrator) Run(ctx context.Context, audioPath string, turns []diarize.SpeakerTurn) ([]Result, error) {
	logger := logging.WithComponent("transcribe")
	results := make([]Result, 0, len(turns))

	for _, turn := range turns {
		text, err := o.transcribeTurn(ctx, audioPath, turn)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			text = fmt.Sprintf("[Transcription error: %v]", err)
			logger.Warn().
				Str("speaker", turn.Speaker).
				Float64("start", turn.StartSec).
				Float64("end", turn.EndSec).
				Err(err).
				Msg("turn transcription failed, continuing")
		}
		results = append(results, Result{
			Speaker:    turn.Speaker,
			StartSec:   turn.StartSec,
			EndSec:     turn.EndSec,
			Transcript: text,
		})
		logger.Info().Msgf("Speaker %s (%.1fs - %.1fs, duration: %.1fs): %s",
			turn.Speaker, turn.StartSec, turn.EndSec, turn.Duration(), text)
	}
	return results, nil
}

func (o *Orchestrator) transcribeTurn(ctx context.Context, audioPath string, turn diarize.SpeakerTurn) (string, error) {
	dir := o.WorkDir
	if dir == "" {
		dir = os.TempDir()
	}
	clipPath := filepath.Join(dir, "turn_"+uuid.NewString()+".wav")
	defer os.Remove(clipPath)

	if err := o.Clipper.Extract(ctx, audioPath, turn.StartSec, turn.EndSec, clipPath); err != nil {
		return "", fmt.Errorf("extract clip: %w", err)
	}
	text, err := o.Backend.Transcribe(ctx, clipPath)
	if err != nil {
		return "", err
	}
	return text, nil
}
