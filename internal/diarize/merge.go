package diarize

import (
	"sort"

	"diascribe/internal/logging"
)

// Merge collapses detections into speaker turns. Detections are stably
// sorted by start time (original order breaks ties), then scanned once:
// a detection whose speaker matches the previous turn extends that turn's
// end to the later of the two ends; otherwise it opens a new turn.
//
// Merging is decided purely by speaker adjacency in sort order. Two
// same-speaker detections separated by a long silence still merge as long
// as no other speaker sorts between them. Deliberate: a gap threshold is
// a behavior change, not a fix.
func Merge(dets []Detection) []SpeakerTurn {
	if len(dets) == 0 {
		return nil
	}

	sorted := make([]Detection, len(dets))
	copy(sorted, dets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartSec < sorted[j].StartSec
	})

	turns := []SpeakerTurn{{
		Speaker:  sorted[0].Speaker,
		StartSec: sorted[0].StartSec,
		EndSec:   sorted[0].EndSec,
	}}
	for _, d := range sorted[1:] {
		last := &turns[len(turns)-1]
		if d.Speaker == last.Speaker {
			if d.EndSec > last.EndSec {
				last.EndSec = d.EndSec
			}
			continue
		}
		turns = append(turns, SpeakerTurn{
			Speaker:  d.Speaker,
			StartSec: d.StartSec,
			EndSec:   d.EndSec,
		})
	}

	logger := logging.WithComponent("diarize")
	logger.Info().
		Int("detections", len(dets)).
		Int("turns", len(turns)).
		Msgf("merged %d segments into %d speaker turns", len(dets), len(turns))
	return turns
}
