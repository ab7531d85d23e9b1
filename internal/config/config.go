package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds the engine configuration. All pacing heuristics are
// configurable; the defaults match the values the composition algorithm was
// tuned with and should not be changed without product input.
type Config struct {
	// Environment
	Environment string

	// LLM API keys
	GeminiAPIKey string
	OpenAIAPIKey string

	// Model selection
	AnalysisModel   string // visual analysis
	EvaluationModel string // rendered-video evaluation

	// Composition pacing
	EnergyFastCutThreshold float64 // energy above this gets 1-2 beats per clip
	EnergySlowCutThreshold float64 // energy above this gets 2-4 beats, below 4-6
	MinClipSeconds         float64
	MaxClipSeconds         float64
	TransitionSeconds      float64
	MinAestheticScore      float64 // media below this is excluded from composition

	// Refinement loop
	MaxRefinementIterations int
	MinAcceptableScore      float64
	AutoRefine              bool

	// Storage
	DataDir string

	// Observability
	SentryDSN         string
	LangfusePublicKey string
	LangfuseSecretKey string
	LangfuseHost      string
	LangfuseEnabled   bool
}

// Load reads configuration from the environment. A .env file is applied
// first when present (local development).
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Environment: getEnv("ENVIRONMENT", "development"),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),

		AnalysisModel:   getEnv("ANALYSIS_MODEL", "gemini-2.0-flash"),
		EvaluationModel: getEnv("EVALUATION_MODEL", "gemini-2.0-flash"),

		EnergyFastCutThreshold: getEnvFloat("ENERGY_FAST_CUT_THRESHOLD", 0.7),
		EnergySlowCutThreshold: getEnvFloat("ENERGY_SLOW_CUT_THRESHOLD", 0.4),
		MinClipSeconds:         getEnvFloat("MIN_CLIP_SECONDS", 1.0),
		MaxClipSeconds:         getEnvFloat("MAX_CLIP_SECONDS", 5.0),
		TransitionSeconds:      getEnvFloat("TRANSITION_SECONDS", 0.5),
		MinAestheticScore:      getEnvFloat("MIN_AESTHETIC_SCORE", 0.3),

		MaxRefinementIterations: getEnvInt("MAX_REFINEMENT_ITERATIONS", 3),
		MinAcceptableScore:      getEnvFloat("MIN_ACCEPTABLE_SCORE", 7.0),
		AutoRefine:              getEnv("AUTO_REFINE", "true") == "true",

		DataDir: getEnv("DATA_DIR", "./data"),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		LangfusePublicKey: getEnv("LANGFUSE_PUBLIC_KEY", ""),
		LangfuseSecretKey: getEnv("LANGFUSE_SECRET_KEY", ""),
		LangfuseHost:      getEnv("LANGFUSE_HOST", "https://cloud.langfuse.com"),
		LangfuseEnabled:   getEnv("LANGFUSE_ENABLED", "false") == "true",
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
