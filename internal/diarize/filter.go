package diarize

import "diascribe/internal/logging"

// FilterShort returns the detections whose duration is at least min seconds,
// preserving input order. The boundary is inclusive: a detection lasting
// exactly min is kept. The input slice is not modified.
func FilterShort(dets []Detection, min float64) []Detection {
	logger := logging.WithComponent("diarize")
	kept := make([]Detection, 0, len(dets))
	for _, d := range dets {
		if d.Duration() >= min {
			kept = append(kept, d)
			continue
		}
		logger.Debug().
			Str("speaker", d.Speaker).
			Float64("start", d.StartSec).
			Float64("end", d.EndSec).
			Msgf("ignoring short segment: Speaker %s (%.1fs - %.1fs)", d.Speaker, d.StartSec, d.EndSec)
	}
	return kept
}
