package diarize

import (
	"reflect"
	"sort"
	"testing"
)

func TestMergeEmpty(t *testing.T) {
	t.Parallel()

	if got := Merge(nil); got != nil {
		t.Fatalf("expected nil, got %#v", got)
	}
}

func TestMergeAdjacentSameSpeakerAcrossGap(t *testing.T) {
	t.Parallel()

	// After the short B detection is filtered out, the two A detections
	// become adjacent in sort order and merge despite the 1s gap.
	dets := []Detection{
		{Speaker: "A", StartSec: 0, EndSec: 2},
		{Speaker: "A", StartSec: 3, EndSec: 5},
	}
	got := Merge(dets)
	want := []SpeakerTurn{{Speaker: "A", StartSec: 0, EndSec: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected single merged turn, got %#v", got)
	}
}

func TestMergeSpeakerChangeOpensNewTurn(t *testing.T) {
	t.Parallel()

	dets := []Detection{
		{Speaker: "A", StartSec: 0, EndSec: 2},
		{Speaker: "B", StartSec: 2, EndSec: 4},
		{Speaker: "A", StartSec: 4, EndSec: 6},
	}
	got := Merge(dets)
	if len(got) != 3 {
		t.Fatalf("interrupted speaker must not merge across the interruption: %#v", got)
	}
}

func TestMergeSortsUnsortedInput(t *testing.T) {
	t.Parallel()

	dets := []Detection{
		{Speaker: "B", StartSec: 4, EndSec: 5},
		{Speaker: "A", StartSec: 0, EndSec: 1},
		{Speaker: "A", StartSec: 1.5, EndSec: 2},
	}
	got := Merge(dets)
	want := []SpeakerTurn{
		{Speaker: "A", StartSec: 0, EndSec: 2},
		{Speaker: "B", StartSec: 4, EndSec: 5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected turns: %#v", got)
	}
}

func TestMergeExtendsToMaxEnd(t *testing.T) {
	t.Parallel()

	// An overlapping detection that ends earlier must not shrink the turn.
	dets := []Detection{
		{Speaker: "A", StartSec: 0, EndSec: 5},
		{Speaker: "A", StartSec: 1, EndSec: 3},
	}
	got := Merge(dets)
	if len(got) != 1 || got[0].EndSec != 5 {
		t.Fatalf("expected end 5, got %#v", got)
	}
}

func TestMergeOutputChronologicalAndNoLonger(t *testing.T) {
	t.Parallel()

	dets := []Detection{
		{Speaker: "C", StartSec: 9, EndSec: 10},
		{Speaker: "A", StartSec: 0, EndSec: 2},
		{Speaker: "B", StartSec: 2, EndSec: 3},
		{Speaker: "B", StartSec: 3.5, EndSec: 6},
		{Speaker: "A", StartSec: 7, EndSec: 8},
	}
	got := Merge(dets)
	if len(got) > len(dets) {
		t.Fatalf("merge produced more turns than detections: %d > %d", len(got), len(dets))
	}
	if !sort.SliceIsSorted(got, func(i, j int) bool { return got[i].StartSec < got[j].StartSec }) {
		t.Fatalf("turns not in chronological order: %#v", got)
	}
}

func TestMergeIdempotent(t *testing.T) {
	t.Parallel()

	dets := []Detection{
		{Speaker: "A", StartSec: 0, EndSec: 2},
		{Speaker: "A", StartSec: 3, EndSec: 5},
		{Speaker: "B", StartSec: 6, EndSec: 7},
		{Speaker: "A", StartSec: 8, EndSec: 9},
	}
	once := Merge(dets)

	asDetections := make([]Detection, len(once))
	for i, turn := range once {
		asDetections[i] = Detection{Speaker: turn.Speaker, StartSec: turn.StartSec, EndSec: turn.EndSec}
	}
	twice := Merge(asDetections)

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("merge is not a fixed point:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}

func TestFilterThenMergeScenario(t *testing.T) {
	t.Parallel()

	dets := []Detection{
		{Speaker: "A", StartSec: 0, EndSec: 2},
		{Speaker: "B", StartSec: 2.5, EndSec: 2.8},
		{Speaker: "A", StartSec: 3, EndSec: 5},
	}
	got := Merge(FilterShort(dets, 1.0))
	want := []SpeakerTurn{{Speaker: "A", StartSec: 0, EndSec: 5}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %#v", want, got)
	}
}
