// Package analysis holds the media-understanding collaborators: visual
// analysis of images and videos via Gemini, audio analysis via an external
// beat-detection tool, and LLM evaluation of rendered movies.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/memoryreel/memoryreel/internal/llm"
	"github.com/memoryreel/memoryreel/internal/models"
	"github.com/memoryreel/memoryreel/internal/observability"
	"github.com/memoryreel/memoryreel/internal/prompt"
)

// visualSchema is the structured-output contract for visual analysis.
var visualSchema = &llm.OutputSchema{
	Name:        "visual_analysis",
	Description: "Structured analysis of one image or video",
	Schema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"description": map[string]any{
				"type":        "string",
				"description": "One or two sentences describing the content",
			},
			"aesthetic_score": map[string]any{
				"type":        "number",
				"description": "Overall aesthetic quality, 0.0 to 1.0",
			},
			"tags": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"main_subjects": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"quality_issues": map[string]any{
				"type":  "array",
				"items": map[string]any{"type": "string"},
			},
			"notable_intervals": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"start_time": map[string]any{"type": "number"},
						"end_time":   map[string]any{"type": "number"},
						"importance": map[string]any{"type": "number"},
					},
					"required": []string{"start_time", "end_time", "importance"},
				},
			},
		},
		"required": []string{"description", "aesthetic_score", "tags"},
	},
}

// GeminiVisualAnalyzer analyzes images and videos with a multimodal model.
type GeminiVisualAnalyzer struct {
	provider llm.Provider
	model    string
	tracer   *observability.Tracer
	prompts  *prompt.Loader
	builder  *prompt.Builder
}

// NewGeminiVisualAnalyzer creates a visual analyzer using the given provider
// and model name.
func NewGeminiVisualAnalyzer(provider llm.Provider, model string, tracer *observability.Tracer) *GeminiVisualAnalyzer {
	return &GeminiVisualAnalyzer{
		provider: provider,
		model:    model,
		tracer:   tracer,
		prompts:  prompt.NewPromptLoader(),
		builder:  prompt.NewPromptBuilder(),
	}
}

// AnalyzeVisual inspects one media file and returns its visual analysis.
func (a *GeminiVisualAnalyzer) AnalyzeVisual(ctx context.Context, item *models.MediaItem) (*models.VisualAnalysis, error) {
	startTime := time.Now()
	log.Printf("🔍 VISUAL ANALYSIS STARTED: %s (%s)", item.ID, item.Type)

	userPrompt := a.builder.VisualAnalysisPrompt(item.Type)

	trace := a.tracer.StartTrace("visual_analysis", map[string]interface{}{
		"media_item_id": item.ID,
		"media_type":    string(item.Type),
	})
	gen := trace.Generation("analyze_visual", a.model, nil)

	response, err := a.provider.Generate(ctx, &llm.GenerationRequest{
		Model:         a.model,
		SystemPrompt:  a.prompts.GetVisualAnalysisPrompt(),
		Prompt:        userPrompt,
		MediaPath:     item.FilePath,
		MediaMIMEType: mimeTypeFor(item),
		OutputSchema:  visualSchema,
	})
	if err != nil {
		gen.EndWithError(err)
		return nil, fmt.Errorf("visual analysis failed for %s: %w", item.ID, err)
	}
	gen.End(userPrompt, response.RawOutput, response.Usage)

	var parsed struct {
		Description      string   `json:"description"`
		AestheticScore   float64  `json:"aesthetic_score"`
		Tags             []string `json:"tags"`
		MainSubjects     []string `json:"main_subjects"`
		QualityIssues    []string `json:"quality_issues"`
		NotableIntervals []struct {
			StartTime  float64 `json:"start_time"`
			EndTime    float64 `json:"end_time"`
			Importance float64 `json:"importance"`
		} `json:"notable_intervals"`
	}
	if err := json.Unmarshal([]byte(response.RawOutput), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse visual analysis for %s: %w", item.ID, err)
	}

	analysis := &models.VisualAnalysis{
		Description:    parsed.Description,
		AestheticScore: clamp01(parsed.AestheticScore),
		Tags:           parsed.Tags,
		MainSubjects:   parsed.MainSubjects,
		QualityIssues:  parsed.QualityIssues,
	}
	for _, iv := range parsed.NotableIntervals {
		if iv.EndTime <= iv.StartTime {
			continue
		}
		analysis.NotableIntervals = append(analysis.NotableIntervals, models.NotableInterval{
			StartTime:  iv.StartTime,
			EndTime:    iv.EndTime,
			Importance: clamp01(iv.Importance),
		})
	}

	log.Printf("✅ VISUAL ANALYSIS COMPLETED: %s (score: %.2f, %d tags) in %v",
		item.ID, analysis.AestheticScore, len(analysis.Tags), time.Since(startTime))
	return analysis, nil
}

// mimeTypeFor derives the MIME type from the file extension, falling back to
// a generic type per media kind when the extension is unfamiliar.
func mimeTypeFor(item *models.MediaItem) string {
	switch strings.ToLower(filepath.Ext(item.FilePath)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".heic":
		return "image/heic"
	case ".mp4":
		return "video/mp4"
	case ".mov":
		return "video/quicktime"
	case ".webm":
		return "video/webm"
	case ".avi":
		return "video/x-msvideo"
	case ".mkv":
		return "video/x-matroska"
	}

	switch item.Type {
	case models.MediaTypeImage:
		return "image/jpeg"
	case models.MediaTypeVideo:
		return "video/mp4"
	default:
		return "application/octet-stream"
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
