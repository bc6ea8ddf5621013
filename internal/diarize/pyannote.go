package diarize

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed assets/pyannote_diarize.py
var diarizeScript []byte

// PyannoteDiarizer runs speaker diarization through a bundled pyannote
// helper script. The Hugging Face token is forwarded in the child
// environment; gated pipeline downloads fail without it.
type PyannoteDiarizer struct {
	Model       string
	AccessToken string
	Python      string // interpreter override; defaults to python3
}

var _ Diarizer = (*PyannoteDiarizer)(nil)

// helper output: a JSON array of detections with decimal timestamps.
// Decoding through decimal.Decimal keeps sub-second values exact until
// the final float conversion.
type rawDetection struct {
	Speaker string          `json:"speaker"`
	Start   decimal.Decimal `json:"start"`
	End     decimal.Decimal `json:"end"`
}

func (p *PyannoteDiarizer) Diarize(ctx context.Context, audioPath string) ([]Detection, error) {
	scriptPath := filepath.Join(os.TempDir(), "diascribe_pyannote.py")
	if err := os.WriteFile(scriptPath, diarizeScript, 0o755); err != nil {
		return nil, fmt.Errorf("write helper script: %w", err)
	}
	defer os.Remove(scriptPath)

	py := p.Python
	if py == "" {
		py = os.Getenv("DIASCRIBE_PY")
	}
	if py == "" {
		py = "python3"
	}

	cmd := exec.CommandContext(ctx, py, scriptPath, "--audio", audioPath, "--model", p.Model)
	env := os.Environ()
	if p.AccessToken != "" {
		env = append(env, "HUGGINGFACE_ACCESS_TOKEN="+p.AccessToken)
	}
	cmd.Env = env

	out, err := cmd.Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok {
			return nil, fmt.Errorf("diarization failed: %s", strings.TrimSpace(string(ee.Stderr)))
		}
		return nil, fmt.Errorf("run diarization helper: %w", err)
	}

	var raw []rawDetection
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parse diarization output: %w", err)
	}
	return detectionsFromRaw(raw)
}

// detectionsFromRaw converts helper output, rejecting intervals the model
// should never produce but sometimes does.
func detectionsFromRaw(raw []rawDetection) ([]Detection, error) {
	dets := make([]Detection, 0, len(raw))
	for i, r := range raw {
		if !r.End.GreaterThan(r.Start) {
			return nil, fmt.Errorf("detection %d: end %s not after start %s", i, r.End, r.Start)
		}
		dets = append(dets, Detection{
			Speaker:  r.Speaker,
			StartSec: r.Start.InexactFloat64(),
			EndSec:   r.End.InexactFloat64(),
		})
	}
	return dets, nil
}
