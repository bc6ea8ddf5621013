// Package diarize turns an audio recording into ordered speaker turns:
// a diarization collaborator yields raw detections, which are filtered
// for minimum duration and merged into maximal same-speaker intervals.
package diarize

import "context"

// Detection is a raw (speaker, interval) observation from the diarization
// model. Timestamps are seconds from the start of the recording.
type Detection struct {
	Speaker  string
	StartSec float64
	EndSec   float64
}

// Duration returns the detection length in seconds.
func (d Detection) Duration() float64 { return d.EndSec - d.StartSec }

// SpeakerTurn is a maximal contiguous run of same-speaker detections after
// sorting by start time. Same shape as Detection, different meaning.
type SpeakerTurn struct {
	Speaker  string
	StartSec float64
	EndSec   float64
}

// Duration returns the turn length in seconds.
func (t SpeakerTurn) Duration() float64 { return t.EndSec - t.StartSec }

// Diarizer detects who spoke when in an audio file. Called once per run;
// any error is fatal for the run.
type Diarizer interface {
	Diarize(ctx context.Context, audioPath string) ([]Detection, error)
}
