package engine

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/memoryreel/memoryreel/internal/compose"
	"github.com/memoryreel/memoryreel/internal/config"
	"github.com/memoryreel/memoryreel/internal/logger"
	"github.com/memoryreel/memoryreel/internal/metrics"
	"github.com/memoryreel/memoryreel/internal/models"
	"github.com/memoryreel/memoryreel/internal/store"
)

// Progress checkpoints reported through ProjectStatus.
const (
	progressAnalyzing  = 25
	progressComposing  = 45
	progressRendering  = 65
	progressEvaluating = 80
	progressRefining   = 85
	progressCompleted  = 100
)

// Engine orchestrates the full pipeline for one project at a time:
// analyze -> compose -> render -> evaluate -> refine, bounded by the
// configured iteration budget.
type Engine struct {
	cfg *config.Config

	visual     VisualAnalyzer
	audio      AudioAnalyzer
	renderer   Renderer
	evaluator  Evaluator
	translator EditTranslator

	composer *compose.Composer
	applier  *compose.Applier

	store   store.ProjectStore
	metrics *metrics.SentryMetrics
}

// Options bundles the engine's collaborators.
type Options struct {
	Visual     VisualAnalyzer
	Audio      AudioAnalyzer
	Renderer   Renderer
	Evaluator  Evaluator
	Translator EditTranslator
	Store      store.ProjectStore
	Metrics    *metrics.SentryMetrics
}

// New creates an engine. The composition stage is built from the config's
// pacing values; everything that talks to the outside world is injected.
func New(cfg *config.Config, opts Options) *Engine {
	pacing := compose.Pacing{
		FastCutThreshold: cfg.EnergyFastCutThreshold,
		SlowCutThreshold: cfg.EnergySlowCutThreshold,
		MinClipSeconds:   cfg.MinClipSeconds,
		MaxClipSeconds:   cfg.MaxClipSeconds,
	}
	return &Engine{
		cfg:        cfg,
		visual:     opts.Visual,
		audio:      opts.Audio,
		renderer:   opts.Renderer,
		evaluator:  opts.Evaluator,
		translator: opts.Translator,
		composer:   compose.NewComposer(pacing, cfg.TransitionSeconds, cfg.MinAestheticScore),
		applier:    compose.NewApplier(cfg.MinClipSeconds),
		store:      opts.Store,
		metrics:    opts.Metrics,
	}
}

// CreateMovie runs the pipeline end to end and returns the final project
// state. On collaborator failure the project lands in the error phase with
// the cause recorded, and the error is also returned.
func (e *Engine) CreateMovie(ctx context.Context, inputs models.UserInputs) (*models.ProjectState, error) {
	state := models.NewProjectState(inputs)
	e.persist(state)
	log.Printf("🎬 PROJECT STARTED: %s (%d media items, target %.0fs, style %q)",
		state.ProjectID, len(inputs.Media), inputs.TargetDuration, inputs.Style)

	transaction := sentry.StartTransaction(ctx, "engine.create_movie")
	defer transaction.Finish()
	transaction.SetTag("project_id", state.ProjectID)
	ctx = transaction.Context()

	if err := e.runPipeline(ctx, state); err != nil {
		e.fail(state, err)
		return state, err
	}

	log.Printf("✅ PROJECT COMPLETED: %s (version %d, %d refinement iterations)",
		state.ProjectID, state.Status.CurrentVersion, state.RefinementIterations)
	return state, nil
}

func (e *Engine) runPipeline(ctx context.Context, state *models.ProjectState) error {
	if err := e.transition(ctx, state, models.PhaseAnalyzing, progressAnalyzing); err != nil {
		return err
	}
	if err := e.analyzeMedia(ctx, state); err != nil {
		return err
	}

	if err := e.transition(ctx, state, models.PhaseComposing, progressComposing); err != nil {
		return err
	}
	if err := e.composeTimeline(state, 1); err != nil {
		return err
	}

	if err := e.transition(ctx, state, models.PhaseRendering, progressRendering); err != nil {
		return err
	}
	if _, err := e.render(ctx, state, models.PreviewRenderSettings()); err != nil {
		return err
	}

	if !e.cfg.AutoRefine {
		// No refinement requested: straight to the full-quality deliverable.
		if _, err := e.render(ctx, state, models.DefaultRenderSettings()); err != nil {
			return err
		}
		return e.transition(ctx, state, models.PhaseCompleted, progressCompleted)
	}

	if err := e.refineLoop(ctx, state); err != nil {
		return err
	}

	// The accepted (or budget-final) cut gets one full-quality render.
	if _, err := e.render(ctx, state, models.DefaultRenderSettings()); err != nil {
		return err
	}
	return e.transition(ctx, state, models.PhaseCompleted, progressCompleted)
}

// analyzeMedia runs visual analysis concurrently across the pool and audio
// analysis on the soundtrack. Each goroutine writes only its own item slot,
// so no locking is needed. Individual failures mark the item failed and the
// pipeline continues; only a fully failed pool aborts.
func (e *Engine) analyzeMedia(ctx context.Context, state *models.ProjectState) error {
	startTime := time.Now()

	var wg sync.WaitGroup
	for i := range state.Inputs.Media {
		item := &state.Inputs.Media[i]
		if item.Type != models.MediaTypeImage && item.Type != models.MediaTypeVideo {
			continue
		}
		wg.Add(1)
		go func(item *models.MediaItem) {
			defer wg.Done()
			callStart := time.Now()
			analysis, err := e.visual.AnalyzeVisual(ctx, item)
			e.metrics.RecordCollaboratorCall(ctx, "visual_analyzer", time.Since(callStart), err == nil)
			if err != nil {
				log.Printf("⚠️  Analysis failed for %s: %v", item.ID, err)
				item.AnalysisState = models.AnalysisFailed
				item.AnalysisError = err.Error()
				return
			}
			item.Visual = analysis
			item.AnalysisState = models.AnalysisComplete
		}(item)
	}
	wg.Wait()

	analyzed := 0
	for i := range state.Inputs.Media {
		if state.Inputs.Media[i].IsAnalyzed() {
			analyzed++
		}
	}
	if analyzed == 0 && len(state.VisualPool()) > 0 {
		return fmt.Errorf("visual analysis failed for every media item")
	}

	if music, ok := state.MusicItem(); ok {
		callStart := time.Now()
		profile, err := e.audio.AnalyzeAudio(ctx, music)
		e.metrics.RecordCollaboratorCall(ctx, "audio_analyzer", time.Since(callStart), err == nil)
		if err != nil {
			// A movie without beat sync is still a movie; fall back to
			// chronological composition.
			log.Printf("⚠️  Audio analysis failed, composing without music sync: %v", err)
			music.AnalysisState = models.AnalysisFailed
			music.AnalysisError = err.Error()
		} else {
			music.Audio = profile
			music.AnalysisState = models.AnalysisComplete
			state.MusicProfile = profile
		}
	}

	e.persist(state)
	log.Printf("📊 ANALYSIS DONE: %d/%d items analyzed in %v",
		analyzed, len(state.VisualPool()), time.Since(startTime))
	return nil
}

// composeTimeline builds a fresh timeline at the given version.
func (e *Engine) composeTimeline(state *models.ProjectState, version int) error {
	musicItemID := ""
	if music, ok := state.MusicItem(); ok {
		musicItemID = music.ID
	}

	target := state.Inputs.TargetDuration
	if target <= 0 && state.MusicProfile != nil {
		target = state.MusicProfile.Duration
	}

	timeline, err := e.composer.Compose(
		state.VisualPool(),
		state.MusicProfile,
		target,
		state.Inputs.Style,
		musicItemID,
		models.PreviewRenderSettings(),
		version,
	)
	if err != nil {
		return fmt.Errorf("composition failed: %w", err)
	}

	state.Timeline = timeline
	e.persist(state)
	log.Printf("🎞️  TIMELINE COMPOSED: %d segments, %.1fs (version %d)",
		len(timeline.Segments), timeline.TotalDuration, version)
	return nil
}

// render produces one output file and records it as a version.
func (e *Engine) render(ctx context.Context, state *models.ProjectState, settings models.RenderSettings) (string, error) {
	mediaMap := make(map[string]models.MediaItem, len(state.Inputs.Media))
	for _, m := range state.Inputs.Media {
		mediaMap[m.ID] = m
	}

	callStart := time.Now()
	outputPath, err := e.renderer.Render(ctx, state.Timeline, mediaMap, settings)
	e.metrics.RecordCollaboratorCall(ctx, "renderer", time.Since(callStart), err == nil)
	if err != nil {
		return "", fmt.Errorf("render failed: %w", err)
	}

	version := state.AddVersion(outputPath, settings.Preview)
	e.persist(state)
	log.Printf("🎥 RENDERED version %d (preview: %t): %s", version, settings.Preview, outputPath)
	return outputPath, nil
}

// refineLoop evaluates the latest render and applies corrections until the
// critic accepts, the budget runs out, or the context is cancelled. The
// project always leaves the loop in the evaluating phase with a render on
// disk, ready for the final full-quality pass.
func (e *Engine) refineLoop(ctx context.Context, state *models.ProjectState) error {
	for iteration := 1; iteration <= e.cfg.MaxRefinementIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("refinement cancelled: %w", err)
		}

		if err := e.transition(ctx, state, models.PhaseEvaluating, progressEvaluating); err != nil {
			return err
		}

		output, ok := state.LatestOutput()
		if !ok {
			return fmt.Errorf("no rendered output to evaluate")
		}

		callStart := time.Now()
		evaluation, err := e.evaluator.Evaluate(ctx, output, state.Timeline, state.Inputs.Prompt)
		e.metrics.RecordCollaboratorCall(ctx, "evaluator", time.Since(callStart), err == nil)
		if err != nil {
			return fmt.Errorf("evaluation failed: %w", err)
		}

		state.Evaluation = evaluation
		state.RefinementIterations = iteration
		if len(state.Versions) > 0 {
			state.Versions[len(state.Versions)-1].Score = evaluation.Score
		}
		e.persist(state)

		log.Printf("🔁 ITERATION %d/%d: score %.1f, recommendation %q",
			iteration, e.cfg.MaxRefinementIterations, evaluation.Score, evaluation.Recommendation)

		if evaluation.Accepted(e.cfg.MinAcceptableScore) {
			e.metrics.RecordRefinementOutcome(ctx, state.ProjectID, iteration, evaluation.Score, true)
			return nil
		}
		if iteration == e.cfg.MaxRefinementIterations {
			// Budget exhausted: ship the best cut we have rather than failing.
			log.Printf("⚠️  Refinement budget exhausted after %d iterations (final score %.1f)",
				iteration, evaluation.Score)
			e.metrics.RecordRefinementOutcome(ctx, state.ProjectID, iteration, evaluation.Score, false)
			return nil
		}

		if evaluation.Recommendation == models.RecommendationMajorRework {
			// Structural problems: discard the timeline and compose anew.
			if err := e.transition(ctx, state, models.PhaseComposing, progressComposing); err != nil {
				return err
			}
			if err := e.composeTimeline(state, state.Timeline.Version+1); err != nil {
				return err
			}
		} else {
			if err := e.transition(ctx, state, models.PhaseRefining, progressRefining); err != nil {
				return err
			}
			batch := e.translator.Translate(evaluation, "", state.Timeline)
			if err := e.applier.Apply(state.Timeline, batch); err != nil {
				return fmt.Errorf("edit application failed: %w", err)
			}
			e.persist(state)
			log.Printf("✂️  Applied %d edit commands (timeline version %d)",
				batch.Count(), state.Timeline.Version)
		}

		if err := e.transition(ctx, state, models.PhaseRendering, progressRendering); err != nil {
			return err
		}
		if _, err := e.render(ctx, state, models.PreviewRenderSettings()); err != nil {
			return err
		}
	}
	return nil
}

// ApplyFeedback applies natural-language user feedback to a completed
// project's timeline and renders a new full-quality version. The project
// stays in the completed phase throughout.
func (e *Engine) ApplyFeedback(ctx context.Context, projectID, feedback string) (*models.ProjectState, error) {
	state, err := e.store.Load(projectID)
	if err != nil {
		return nil, err
	}
	if state.Status.Phase != models.PhaseCompleted {
		return nil, fmt.Errorf("project %s is not completed (phase: %s)", projectID, state.Status.Phase)
	}
	if state.Timeline == nil {
		return nil, fmt.Errorf("project %s has no timeline", projectID)
	}

	batch := e.translator.Translate(nil, feedback, state.Timeline)
	if batch.IsEmpty() {
		return nil, fmt.Errorf("no actionable edits found in feedback")
	}

	if err := e.applier.Apply(state.Timeline, batch); err != nil {
		return nil, fmt.Errorf("edit application failed: %w", err)
	}
	log.Printf("✂️  USER FEEDBACK: applied %d edit commands to %s", batch.Count(), projectID)

	if _, err := e.render(ctx, state, models.DefaultRenderSettings()); err != nil {
		return nil, err
	}
	return state, nil
}

// Project loads a stored project.
func (e *Engine) Project(projectID string) (*models.ProjectState, error) {
	return e.store.Load(projectID)
}

// transition moves the project to a new phase and persists the snapshot.
func (e *Engine) transition(ctx context.Context, state *models.ProjectState, to models.Phase, progress float64) error {
	from := state.Status.Phase
	if err := state.Status.Transition(to, progress); err != nil {
		return err
	}
	e.metrics.RecordPhaseTransition(ctx, state.ProjectID, string(from), string(to))
	e.persist(state)
	log.Printf("⏱️  PHASE: %s -> %s (%.0f%%)", from, to, progress)
	return nil
}

// fail records a pipeline failure on the project.
func (e *Engine) fail(state *models.ProjectState, cause error) {
	logger.Error("project failed", cause, logger.WithProject(state.ProjectID, string(state.Status.Phase)))
	state.Status.Error = cause.Error()
	if err := state.Status.Transition(models.PhaseError, state.Status.Progress); err != nil {
		log.Printf("⚠️  Could not record error phase: %v", err)
	}
	e.persist(state)
}

// persist writes the snapshot, logging rather than failing the pipeline on
// store errors: the in-memory state remains authoritative for this run.
func (e *Engine) persist(state *models.ProjectState) {
	state.Touch()
	if err := e.store.Save(state); err != nil {
		logger.Warn("failed to persist project snapshot", logger.Fields{
			"project_id": state.ProjectID,
			"error":      err.Error(),
		})
	}
}
