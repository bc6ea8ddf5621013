package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// openAIBackend speaks the OpenAI audio.transcriptions API. With a custom
// base URL it also covers self-hosted whisper servers exposing the same
// endpoint.
type openAIBackend struct {
	apiBase string
	apiKey  string
	model   string
}

func NewOpenAIBackend(apiBase, apiKey, model string) Backend {
	return &openAIBackend{apiBase: apiBase, apiKey: apiKey, model: model}
}

type openAIResp struct {
	Text string `json:"text"`
}

func (o *openAIBackend) Transcribe(ctx context.Context, audioPath string) (string, error) {
	f, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("model", o.model); err != nil {
		return "", err
	}
	fw, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	url := strings.TrimRight(o.apiBase, "/") + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", err
	}
	if o.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.apiKey)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	hc := &http.Client{Timeout: 10 * time.Minute}
	resp, err := hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription http %d: %s", resp.StatusCode, string(b))
	}
	var or openAIResp
	if err := json.NewDecoder(resp.Body).Decode(&or); err != nil {
		return "", err
	}
	return strings.TrimSpace(or.Text), nil
}
