package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// whisperBackend runs the local whisper CLI on an audio file. The CLI
// writes a JSON result next to its output dir; we point it at a scratch
// directory and read the file back.
type whisperBackend struct {
	model string
}

// NewWhisperBackend returns a Backend using the whisper command-line tool
// with the given model (e.g. small.en).
func NewWhisperBackend(model string) Backend {
	return &whisperBackend{model: model}
}

type whisperOut struct {
	Text string `json:"text"`
}

func (w *whisperBackend) Transcribe(ctx context.Context, audioPath string) (string, error) {
	outDir, err := os.MkdirTemp("", "diascribe_whisper_*")
	if err != nil {
		return "", fmt.Errorf("create whisper output dir: %w", err)
	}
	defer os.RemoveAll(outDir)

	cmd := exec.CommandContext(ctx, "whisper", audioPath,
		"--model", w.model,
		"--output_format", "json",
		"--output_dir", outDir,
		"--verbose", "False",
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("whisper failed: %s", strings.TrimSpace(string(out)))
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	resultPath := filepath.Join(outDir, base+".json")
	f, err := os.Open(resultPath)
	if err != nil {
		return "", fmt.Errorf("open whisper result: %w", err)
	}
	defer f.Close()

	var parsed whisperOut
	if err := json.NewDecoder(f).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode whisper result: %w", err)
	}
	return strings.TrimSpace(parsed.Text), nil
}
