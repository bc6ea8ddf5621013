package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"diascribe/internal/config"
	"diascribe/internal/diarize"
	"diascribe/internal/logging"
	"diascribe/internal/media"
	"diascribe/internal/ollama"
	"diascribe/internal/output"
	"diascribe/internal/summarize"
	"diascribe/internal/transcribe"
)

func main() {
	var (
		inPath       string
		outPath      string
		transcriptIn string
		doSummarize  bool
		summaryOut   string
		configPath   string
		backendName  string
		whisperModel string
		diarModel    string
		summaryModel string
		minDuration  float64
		ollamaHost   string
		ollamaPort   int
		logLevel     string
	)

	flag.StringVar(&inPath, "input", "", "Input audio file path (-i)")
	flag.StringVar(&inPath, "i", "", "Input audio file path")
	flag.StringVar(&outPath, "output", "", "Output transcript file (-o)")
	flag.StringVar(&outPath, "o", "", "Output transcript file")
	flag.StringVar(&transcriptIn, "transcript", "", "Summarize this existing transcript file instead of processing audio")
	flag.BoolVar(&doSummarize, "summarize", false, "Summarize the transcript after transcription")
	flag.StringVar(&summaryOut, "summary-out", "summary_output.txt", "Summary output file")
	flag.StringVar(&configPath, "config", "diascribe.ini", "Config file path")
	flag.StringVar(&backendName, "backend", "", "Transcription backend: whisper|openai")
	flag.StringVar(&whisperModel, "model", "", "Transcription model override")
	flag.StringVar(&diarModel, "diarization-model", "", "Diarization pipeline override")
	flag.StringVar(&summaryModel, "summary-model", "", "Summarization model override")
	flag.Float64Var(&minDuration, "min-duration", 0, "Minimum segment duration in seconds")
	flag.StringVar(&ollamaHost, "ollama-host", "", "Ollama server host")
	flag.IntVar(&ollamaPort, "ollama-port", 0, "Ollama server port")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug|info|warn|error")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		os.Exit(1)
	}
	applyFlagOverrides(cfg, backendName, whisperModel, diarModel, summaryModel, minDuration, ollamaHost, ollamaPort, logLevel)
	logging.Init(cfg.LogLevel)

	if inPath == "" && transcriptIn == "" {
		fmt.Fprintln(os.Stderr, "usage: diascribe -i recording.wav [-o transcript.txt] [-summarize]")
		fmt.Fprintln(os.Stderr, "       diascribe -transcript transcript.txt [-summary-out summary.txt]")
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Hour)
	defer cancel()

	if transcriptIn != "" {
		if err := runSummarize(ctx, cfg, transcriptIn, summaryOut); err != nil {
			log.Error().Err(err).Msg("summarization failed")
			os.Exit(1)
		}
		return
	}

	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
		outPath = base + "_transcript.txt"
	}
	if err := runPipeline(ctx, cfg, inPath, outPath); err != nil {
		log.Error().Err(err).Msg("pipeline failed")
		os.Exit(1)
	}
	if doSummarize {
		if err := runSummarize(ctx, cfg, outPath, summaryOut); err != nil {
			log.Error().Err(err).Msg("summarization failed")
			os.Exit(1)
		}
	}
}

func applyFlagOverrides(cfg *config.Config, backend, model, diarModel, summaryModel string, minDuration float64, host string, port int, logLevel string) {
	if backend != "" {
		cfg.Transcription.Backend = backend
	}
	if model != "" {
		cfg.Transcription.Model = model
	}
	if diarModel != "" {
		cfg.Diarization.Model = diarModel
	}
	if summaryModel != "" {
		cfg.Summarization.Model = summaryModel
	}
	if minDuration > 0 {
		cfg.Diarization.MinSegmentDuration = minDuration
	}
	if host != "" {
		cfg.Summarization.Host = host
	}
	if port > 0 {
		cfg.Summarization.Port = port
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
}

func runPipeline(ctx context.Context, cfg *config.Config, inPath, outPath string) error {
	start := time.Now()
	logger := logging.WithComponent("pipeline")

	if _, err := os.Stat(inPath); err != nil {
		return fmt.Errorf("input audio: %w", err)
	}

	fingerprint, err := media.Fingerprint(inPath)
	if err != nil {
		return err
	}
	workDir := filepath.Join(os.TempDir(), "diascribe_"+fingerprint[:16])
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)
	logger.Info().Str("audio", inPath).Str("fingerprint", fingerprint[:16]).Msg("processing audio file")

	diarizer := &diarize.PyannoteDiarizer{
		Model:       cfg.Diarization.Model,
		AccessToken: cfg.Diarization.AccessToken,
	}
	logger.Info().Msg("performing speaker diarization")
	detections, err := diarizer.Diarize(ctx, inPath)
	if err != nil {
		return err
	}

	filtered := diarize.FilterShort(detections, cfg.Diarization.MinSegmentDuration)
	turns := diarize.Merge(filtered)

	backend, err := pickBackend(cfg)
	if err != nil {
		return err
	}
	logger.Info().Str("backend", cfg.Transcription.Backend).Msg("processing speaker segments")
	orch := &transcribe.Orchestrator{
		Clipper: media.FFmpegClipper{},
		Backend: backend,
		WorkDir: workDir,
	}
	results, err := orch.Run(ctx, inPath, turns)
	if err != nil {
		return err
	}

	if err := output.WriteFile(outPath, results); err != nil {
		return err
	}

	speakers := map[string]struct{}{}
	for _, r := range results {
		speakers[r.Speaker] = struct{}{}
	}
	logger.Info().
		Str("path", outPath).
		Int("turns", len(results)).
		Int("speakers", len(speakers)).
		Dur("elapsed", time.Since(start)).
		Msg("transcription complete")
	return nil
}

func pickBackend(cfg *config.Config) (transcribe.Backend, error) {
	switch cfg.Transcription.Backend {
	case "whisper":
		return transcribe.NewWhisperBackend(cfg.Transcription.Model), nil
	case "openai":
		if cfg.Transcription.APIKey == "" {
			return nil, fmt.Errorf("openai backend selected but OPENAI_API_KEY is not set")
		}
		return transcribe.NewOpenAIBackend(cfg.Transcription.APIBase, cfg.Transcription.APIKey, cfg.Transcription.Model), nil
	default:
		return nil, fmt.Errorf("unknown transcription backend: %s", cfg.Transcription.Backend)
	}
}

func runSummarize(ctx context.Context, cfg *config.Config, inPath, outPath string) error {
	sup := ollama.NewSupervisor(
		cfg.Summarization.Host,
		cfg.Summarization.Port,
		cfg.Summarization.StartupTimeout,
		cfg.Summarization.ShutdownTimeout,
	)
	summarizer := &summarize.Summarizer{
		Client: ollama.NewClient("http://" + sup.Addr()),
		Model:  cfg.Summarization.Model,
	}
	return sup.Run(ctx, func(ctx context.Context) error {
		return summarizer.SummarizeFile(ctx, inPath, outPath)
	})
}
