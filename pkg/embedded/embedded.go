package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/prompts/visual_analysis.txt
var VisualAnalysisPromptTxt []byte

//go:embed data/prompts/movie_evaluation.txt
var MovieEvaluationPromptTxt []byte
