// Package engine runs the full memory movie pipeline: concurrent media
// analysis, composition, rendering, and the bounded evaluate-refine loop.
package engine

import (
	"context"

	"github.com/memoryreel/memoryreel/internal/models"
)

// VisualAnalyzer inspects one image or video file.
type VisualAnalyzer interface {
	AnalyzeVisual(ctx context.Context, item *models.MediaItem) (*models.VisualAnalysis, error)
}

// AudioAnalyzer extracts the beat grid and energy curve from an audio file.
type AudioAnalyzer interface {
	AnalyzeAudio(ctx context.Context, item *models.MediaItem) (*models.MusicProfile, error)
}

// Renderer turns a timeline plus its media pool into a video file and
// returns the output path.
type Renderer interface {
	Render(ctx context.Context, timeline *models.Timeline, media map[string]models.MediaItem, settings models.RenderSettings) (string, error)
}

// Evaluator reviews a rendered movie and returns a structured critique.
type Evaluator interface {
	Evaluate(ctx context.Context, videoPath string, timeline *models.Timeline, userPrompt string) (*models.EvaluationResult, error)
}

// EditTranslator converts a critique and optional user feedback into a
// structured edit batch resolved against the current timeline.
type EditTranslator interface {
	Translate(evaluation *models.EvaluationResult, userFeedback string, timeline *models.Timeline) models.EditCommands
}
