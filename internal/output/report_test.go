package output

import (
	"bytes"
	"strings"
	"testing"

	"diascribe/internal/transcribe"
)

func resultsFixture() []transcribe.Result {
	return []transcribe.Result{
		{Speaker: "SPEAKER_00", StartSec: 0, EndSec: 5, Transcript: "Hello everyone."},
		{Speaker: "SPEAKER_01", StartSec: 5.25, EndSec: 8.5, Transcript: "Hi, thanks for joining."},
		{Speaker: "SPEAKER_00", StartSec: 8.5, EndSec: 12, Transcript: "[Transcription error: model blew up]"},
	}
}

func TestRenderFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Render(&buf, resultsFixture()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Speaker Diarization and Transcription Results\n" +
		strings.Repeat("=", 50) + "\n\n" +
		"Speaker SPEAKER_00 (0.0s - 5.0s):\n" +
		"Hello everyone.\n\n" +
		"Speaker SPEAKER_01 (5.2s - 8.5s):\n" +
		"Hi, thanks for joining.\n\n" +
		"Speaker SPEAKER_00 (8.5s - 12.0s):\n" +
		"[Transcription error: model blew up]\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected report:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestRenderEmptyResults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Render(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Speaker Diarization and Transcription Results\n" + strings.Repeat("=", 50) + "\n\n"
	if buf.String() != want {
		t.Fatalf("unexpected report: %q", buf.String())
	}
}

func TestRenderByteIdentical(t *testing.T) {
	t.Parallel()

	var first, second bytes.Buffer
	if err := Render(&first, resultsFixture()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := Render(&second, resultsFixture()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatal("two renders of the same results differ")
	}
}
