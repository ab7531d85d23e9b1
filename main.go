package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/memoryreel/memoryreel/internal/analysis"
	"github.com/memoryreel/memoryreel/internal/config"
	"github.com/memoryreel/memoryreel/internal/engine"
	"github.com/memoryreel/memoryreel/internal/llm"
	"github.com/memoryreel/memoryreel/internal/metrics"
	"github.com/memoryreel/memoryreel/internal/models"
	"github.com/memoryreel/memoryreel/internal/observability"
	"github.com/memoryreel/memoryreel/internal/refine"
	"github.com/memoryreel/memoryreel/internal/render"
	"github.com/memoryreel/memoryreel/internal/store"
)

const (
	sentryFlushTimeout    = 2 * time.Second
	environmentProduction = "production"
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

func main() {
	mediaDir := flag.String("media", "", "directory of photos, videos, and an optional soundtrack")
	prompt := flag.String("prompt", "", "what the movie should feel like")
	duration := flag.Float64("duration", 0, "target duration in seconds (0 = follow the soundtrack)")
	style := flag.String("style", "smooth", "editing style: smooth, dynamic, or cut")
	project := flag.String("project", "", "existing project id (for -feedback)")
	feedback := flag.String("feedback", "", "natural-language edit request for an existing project")
	flag.Parse()

	cfg := config.Load()
	if initSentry(cfg) {
		defer sentry.Flush(sentryFlushTimeout)
	}

	ctx := context.Background()
	tracer := observability.NewTracer(ctx, cfg.LangfuseEnabled)
	defer tracer.Flush(ctx)

	eng, projectStore, err := buildEngine(ctx, cfg, tracer)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer projectStore.Close()

	switch {
	case *feedback != "":
		if *project == "" {
			log.Fatal("-feedback requires -project")
		}
		state, err := eng.ApplyFeedback(ctx, *project, *feedback)
		if err != nil {
			sentry.CaptureException(err)
			log.Fatalf("Feedback failed: %v", err)
		}
		output, _ := state.LatestOutput()
		fmt.Println(output)

	case *mediaDir != "":
		inputs, err := collectInputs(*mediaDir, *prompt, *duration, *style)
		if err != nil {
			log.Fatalf("Cannot read media: %v", err)
		}
		state, err := eng.CreateMovie(ctx, inputs)
		if err != nil {
			log.Fatalf("Movie creation failed (project %s): %v", state.ProjectID, err)
		}
		output, _ := state.LatestOutput()
		fmt.Printf("%s\t%s\n", state.ProjectID, output)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func initSentry(cfg *config.Config) bool {
	if cfg.SentryDSN == "" {
		log.Println("⚠️  Sentry not configured (SENTRY_DSN not set)")
		return false
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "memoryreel@" + releaseVersion,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		Debug:            cfg.Environment != environmentProduction,
	}); err != nil {
		log.Printf("Failed to initialize Sentry: %v", err)
		return false
	}
	log.Printf("✅ Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
	return true
}

// buildEngine wires the production collaborators.
func buildEngine(ctx context.Context, cfg *config.Config, tracer *observability.Tracer) (*engine.Engine, store.ProjectStore, error) {
	analysisProvider, err := llm.NewProviderForModel(ctx, cfg, cfg.AnalysisModel)
	if err != nil {
		return nil, nil, err
	}
	evaluationProvider, err := llm.NewProviderForModel(ctx, cfg, cfg.EvaluationModel)
	if err != nil {
		return nil, nil, err
	}

	audio, err := analysis.NewSubprocessAudioAnalyzer(analysis.DefaultAudioAnalyzerConfig(cfg.DataDir))
	if err != nil {
		return nil, nil, err
	}
	renderer, err := render.NewFFmpegRenderer(render.DefaultConfig(cfg.DataDir))
	if err != nil {
		return nil, nil, err
	}
	projectStore, err := store.NewSQLiteStore(filepath.Join(cfg.DataDir, "projects.db"))
	if err != nil {
		return nil, nil, err
	}

	eng := engine.New(cfg, engine.Options{
		Visual:     analysis.NewGeminiVisualAnalyzer(analysisProvider, cfg.AnalysisModel, tracer),
		Audio:      audio,
		Renderer:   renderer,
		Evaluator:  analysis.NewGeminiEvaluator(evaluationProvider, cfg.EvaluationModel, tracer),
		Translator: refine.NewTranslator(),
		Store:      projectStore,
		Metrics:    metrics.NewSentryMetrics(cfg.SentryDSN != ""),
	})
	return eng, projectStore, nil
}

// collectInputs walks the media directory and builds the request. Files with
// unrecognized extensions are skipped with a log line.
func collectInputs(dir, prompt string, duration float64, style string) (models.UserInputs, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return models.UserInputs{}, err
	}

	var media []models.MediaItem
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		item, ok := models.NewMediaItem(filepath.Join(dir, entry.Name()))
		if !ok {
			log.Printf("⚠️  Skipping unrecognized file: %s", entry.Name())
			continue
		}
		media = append(media, item)
	}
	if len(media) == 0 {
		return models.UserInputs{}, fmt.Errorf("no usable media in %s", dir)
	}

	return models.UserInputs{
		Media:          media,
		Prompt:         prompt,
		TargetDuration: duration,
		Style:          style,
	}, nil
}
