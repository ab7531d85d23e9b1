package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "gemini-2.0-flash", cfg.AnalysisModel)
	assert.Equal(t, "gemini-2.0-flash", cfg.EvaluationModel)

	assert.InDelta(t, 0.7, cfg.EnergyFastCutThreshold, 1e-9)
	assert.InDelta(t, 0.4, cfg.EnergySlowCutThreshold, 1e-9)
	assert.InDelta(t, 1.0, cfg.MinClipSeconds, 1e-9)
	assert.InDelta(t, 5.0, cfg.MaxClipSeconds, 1e-9)
	assert.InDelta(t, 0.3, cfg.MinAestheticScore, 1e-9)

	assert.Equal(t, 3, cfg.MaxRefinementIterations)
	assert.InDelta(t, 7.0, cfg.MinAcceptableScore, 1e-9)
	assert.True(t, cfg.AutoRefine)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MAX_REFINEMENT_ITERATIONS", "5")
	t.Setenv("MIN_ACCEPTABLE_SCORE", "8.5")
	t.Setenv("AUTO_REFINE", "false")
	t.Setenv("ANALYSIS_MODEL", "gpt-5")

	cfg := Load()

	assert.Equal(t, 5, cfg.MaxRefinementIterations)
	assert.InDelta(t, 8.5, cfg.MinAcceptableScore, 1e-9)
	assert.False(t, cfg.AutoRefine)
	assert.Equal(t, "gpt-5", cfg.AnalysisModel)
}

func TestMalformedEnvValuesFallBack(t *testing.T) {
	t.Setenv("MAX_REFINEMENT_ITERATIONS", "lots")
	t.Setenv("MIN_ACCEPTABLE_SCORE", "high")

	cfg := Load()

	assert.Equal(t, 3, cfg.MaxRefinementIterations)
	assert.InDelta(t, 7.0, cfg.MinAcceptableScore, 1e-9)
}
