// Package summarize feeds a finished transcript to a chat model and
// streams the summary out as it is generated.
package summarize

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"diascribe/internal/logging"
	"diascribe/internal/ollama"
)

const systemPrompt = "You are an expert meeting summarizer. You output structured summaries in Markdown."

const instructions = `INSTRUCTIONS:
The text above is a meeting transcript.
1. Ignore speaker labels (e.g., SPEAKER_04) and timestamps; do not mention them.
2. Ignore filler words or casual conversation.
3. Do not write as if you are an observer (i.e., "The conversation revolves around..."); only summarize.
4. Write a summary of the key discussion points.
5. Use the following format:
    ### Summary
    [One to two paragraphs in a direct, neutral tone explaining what was discussed and the outcomes]

    ### Key Topics
    - [Topic 1]
    - [Topic 2]`

// ChatStreamer is the summarization collaborator: a streaming chat call.
type ChatStreamer interface {
	ChatStream(ctx context.Context, model string, messages []ollama.Message) (<-chan ollama.StreamChunk, error)
}

// Summarizer turns a transcript into a streamed summary.
type Summarizer struct {
	Client ChatStreamer
	Model  string

	// Echo receives chunks as they arrive, in addition to the output
	// writer. Defaults to stdout.
	Echo io.Writer
}

// buildPrompt wraps the transcript in tags and puts the instructions after
// the text, so a long transcript cannot push them out of focus.
func buildPrompt(transcript string) string {
	var b strings.Builder
	b.WriteString("<transcript>\n")
	b.WriteString(transcript)
	b.WriteString("\n</transcript>\n\n")
	b.WriteString(instructions)
	return b.String()
}

// SummarizeFile reads the transcript at inPath and streams the model's
// summary to outPath, echoing each chunk as it arrives. A missing or
// unreadable transcript is fatal and nothing is written.
func (s *Summarizer) SummarizeFile(ctx context.Context, inPath, outPath string) error {
	transcript, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read transcript: %w", err)
	}

	logger := logging.WithComponent("summarize")
	logger.Info().
		Int("chars", len(transcript)).
		Str("model", s.Model).
		Msgf("read %d characters from %s, sending to %s", len(transcript), inPath, s.Model)

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create summary output: %w", err)
	}
	defer out.Close()

	if err := s.Summarize(ctx, string(transcript), out); err != nil {
		return err
	}
	logger.Info().Str("path", outPath).Msg("summary written")
	return nil
}

// Summarize streams the summary of transcript to w chunk by chunk.
func (s *Summarizer) Summarize(ctx context.Context, transcript string, w io.Writer) error {
	messages := []ollama.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: buildPrompt(transcript)},
	}
	chunks, err := s.Client.ChatStream(ctx, s.Model, messages)
	if err != nil {
		return fmt.Errorf("summarization request: %w", err)
	}

	echo := s.Echo
	if echo == nil {
		echo = os.Stdout
	}
	for chunk := range chunks {
		if chunk.Err != nil {
			return fmt.Errorf("summarization stream: %w", chunk.Err)
		}
		if chunk.Content == "" {
			continue
		}
		if _, err := io.WriteString(echo, chunk.Content); err != nil {
			return fmt.Errorf("echo summary chunk: %w", err)
		}
		if _, err := io.WriteString(w, chunk.Content); err != nil {
			return fmt.Errorf("write summary chunk: %w", err)
		}
	}
	fmt.Fprintln(echo)
	return nil
}
