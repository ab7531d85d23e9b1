package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/memoryreel/memoryreel/internal/llm"
	"github.com/memoryreel/memoryreel/internal/models"
	"github.com/memoryreel/memoryreel/internal/observability"
	"github.com/memoryreel/memoryreel/internal/prompt"
)

// evaluationSchema is the structured-output contract for movie evaluation.
var evaluationSchema = &llm.OutputSchema{
	Name:        "movie_evaluation",
	Description: "Critical review of a rendered memory movie",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall_score": map[string]any{
				"type":        "number",
				"description": "Quality score from 0 to 10",
			},
			"recommendation": map[string]any{
				"type": "string",
				"description": "One of: accept, minor_adjustments, major_rework",
			},
			"strengths": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"specific_edits": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"timestamp":  map[string]any{"type": "string"},
						"issue":      map[string]any{"type": "string"},
						"suggestion": map[string]any{"type": "string"},
					},
					"required": []string{"timestamp", "issue", "suggestion"},
				},
			},
			"suggestions": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
		},
		"required": []string{"overall_score", "recommendation"},
	},
}

// GeminiEvaluator reviews rendered movies with a multimodal model and returns
// a structured critique the refinement loop can act on.
type GeminiEvaluator struct {
	provider llm.Provider
	model    string
	tracer   *observability.Tracer
	prompts  *prompt.Loader
	builder  *prompt.Builder
}

// NewGeminiEvaluator creates an evaluator using the given provider and model.
func NewGeminiEvaluator(provider llm.Provider, model string, tracer *observability.Tracer) *GeminiEvaluator {
	return &GeminiEvaluator{
		provider: provider,
		model:    model,
		tracer:   tracer,
		prompts:  prompt.NewPromptLoader(),
		builder:  prompt.NewPromptBuilder(),
	}
}

// Evaluate reviews a rendered movie against the user's prompt and the
// timeline that produced it.
func (e *GeminiEvaluator) Evaluate(
	ctx context.Context,
	videoPath string,
	timeline *models.Timeline,
	userPrompt string,
) (*models.EvaluationResult, error) {
	startTime := time.Now()
	log.Printf("🎬 EVALUATION STARTED: %s (%d segments)", videoPath, len(timeline.Segments))

	reviewPrompt := e.builder.MovieEvaluationPrompt(timeline, userPrompt)

	trace := e.tracer.StartTrace("movie_evaluation", map[string]interface{}{
		"video_path":    videoPath,
		"segment_count": len(timeline.Segments),
	})
	gen := trace.Generation("evaluate_movie", e.model, nil)

	response, err := e.provider.Generate(ctx, &llm.GenerationRequest{
		Model:         e.model,
		SystemPrompt:  e.prompts.GetMovieEvaluationPrompt(),
		Prompt:        reviewPrompt,
		MediaPath:     videoPath,
		MediaMIMEType: "video/mp4",
		OutputSchema:  evaluationSchema,
	})
	if err != nil {
		gen.EndWithError(err)
		return nil, fmt.Errorf("movie evaluation failed: %w", err)
	}
	gen.End(reviewPrompt, response.RawOutput, response.Usage)

	var parsed struct {
		OverallScore   float64  `json:"overall_score"`
		Recommendation string   `json:"recommendation"`
		Strengths      []string `json:"strengths"`
		SpecificEdits  []struct {
			Timestamp  string `json:"timestamp"`
			Issue      string `json:"issue"`
			Suggestion string `json:"suggestion"`
		} `json:"specific_edits"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(response.RawOutput), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation: %w", err)
	}

	result := &models.EvaluationResult{
		Score:          clampScore(parsed.OverallScore),
		Recommendation: normalizeRecommendation(parsed.Recommendation),
		Strengths:      parsed.Strengths,
		Suggestions:    parsed.Suggestions,
	}
	for _, edit := range parsed.SpecificEdits {
		result.SpecificEdits = append(result.SpecificEdits, models.SpecificEdit{
			Timestamp:  edit.Timestamp,
			Issue:      edit.Issue,
			Suggestion: edit.Suggestion,
		})
	}

	log.Printf("✅ EVALUATION COMPLETED: score %.1f, recommendation %q (%d edits) in %v",
		result.Score, result.Recommendation, len(result.SpecificEdits), time.Since(startTime))
	return result, nil
}

// normalizeRecommendation coerces model output onto the known vocabulary.
// Unknown values become minor_adjustments: the loop then acts on the specific
// edits rather than discarding the critique.
func normalizeRecommendation(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case models.RecommendationAccept:
		return models.RecommendationAccept
	case models.RecommendationMajorRework:
		return models.RecommendationMajorRework
	default:
		return models.RecommendationMinorEdits
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}
