package prompt

import (
	"fmt"
	"strings"

	"github.com/memoryreel/memoryreel/internal/models"
)

// Builder builds the user-facing prompts sent alongside the system prompts.
type Builder struct{}

// NewPromptBuilder creates a new prompt builder.
func NewPromptBuilder() *Builder {
	return &Builder{}
}

// VisualAnalysisPrompt builds the per-item instruction for visual analysis.
func (b *Builder) VisualAnalysisPrompt(mediaType models.MediaType) string {
	if mediaType == models.MediaTypeVideo {
		return "Analyze this video for inclusion in a memory movie. " +
			"Report the most interesting intervals with start_time and end_time in seconds."
	}
	return "Analyze this image for inclusion in a memory movie."
}

// MovieEvaluationPrompt summarizes the timeline so the critic can
// cross-reference what it sees in the video with the cut structure that
// produced it.
func (b *Builder) MovieEvaluationPrompt(timeline *models.Timeline, userPrompt string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Review this memory movie. The user asked for: %q\n\n", userPrompt)
	fmt.Fprintf(&sb, "Timeline: %d segments, %.1fs total.\n", len(timeline.Segments), timeline.TotalDuration)
	for i, seg := range timeline.Segments {
		fmt.Fprintf(&sb, "  %d. [%s] %.1fs-%.1fs (%.1fs, out: %s)\n",
			i+1, seg.ID, seg.StartTime, seg.EndTime, seg.Duration, seg.TransitionOut)
	}
	sb.WriteString("\nWhen reporting specific edits, use the segment id from the list above when possible, " +
		"and the MM:SS timestamp of the problem in the rendered video.")
	return sb.String()
}
