package prompt

import (
	"strings"

	"github.com/memoryreel/memoryreel/pkg/embedded"
)

type Loader struct{}

func NewPromptLoader() *Loader {
	return &Loader{}
}

// GetVisualAnalysisPrompt loads the system prompt for visual analysis.
func (l *Loader) GetVisualAnalysisPrompt() string {
	return strings.TrimSpace(string(embedded.VisualAnalysisPromptTxt))
}

// GetMovieEvaluationPrompt loads the system prompt for movie evaluation.
func (l *Loader) GetMovieEvaluationPrompt() string {
	return strings.TrimSpace(string(embedded.MovieEvaluationPromptTxt))
}
