package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/memoryreel/memoryreel/internal/models"
)

const (
	// maxStderrBytes bounds how much analyzer stderr we keep for diagnostics.
	maxStderrBytes = 8 * 1024

	defaultAnalyzerBinary  = "beatprobe"
	defaultAnalyzerTimeout = 5 * time.Minute
)

// AudioAnalyzerConfig configures the subprocess audio analyzer.
type AudioAnalyzerConfig struct {
	Binary       string        // path to the beat-detection binary; empty = look up defaultAnalyzerBinary on PATH
	ArtifactsDir string        // where the analyzer writes its JSON output
	Timeout      time.Duration // per-run timeout
}

// DefaultAudioAnalyzerConfig returns production defaults rooted at dataDir.
func DefaultAudioAnalyzerConfig(dataDir string) AudioAnalyzerConfig {
	return AudioAnalyzerConfig{
		Binary:       defaultAnalyzerBinary,
		ArtifactsDir: filepath.Join(dataDir, "artifacts"),
		Timeout:      defaultAnalyzerTimeout,
	}
}

// SubprocessAudioAnalyzer extracts beat grids and energy curves by shelling
// out to an external beat-detection tool that writes JSON to a file.
type SubprocessAudioAnalyzer struct {
	cfg    AudioAnalyzerConfig
	binary string // resolved binary path
}

// NewSubprocessAudioAnalyzer resolves the analyzer binary and prepares the
// artifacts directory.
func NewSubprocessAudioAnalyzer(cfg AudioAnalyzerConfig) (*SubprocessAudioAnalyzer, error) {
	name := cfg.Binary
	if name == "" {
		name = defaultAnalyzerBinary
	}
	binary, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("cannot locate audio analyzer binary %q: %w", name, err)
	}

	if err := os.MkdirAll(cfg.ArtifactsDir, 0o755); err != nil {
		return nil, fmt.Errorf("cannot create artifacts dir: %w", err)
	}

	log.Printf("✅ Audio analyzer initialized (binary: %s)", binary)
	return &SubprocessAudioAnalyzer{cfg: cfg, binary: binary}, nil
}

// analyzerOutput is the JSON document the external tool writes.
type analyzerOutput struct {
	TempoBPM       float64   `json:"tempo_bpm"`
	BeatTimestamps []float64 `json:"beat_timestamps"`
	EnergyCurve    []float64 `json:"energy_curve"`
	Duration       float64   `json:"duration"`
}

// AnalyzeAudio runs the analyzer on one audio file and returns its music
// profile. The result is validated before returning: a malformed beat grid
// would corrupt every downstream timeline.
func (a *SubprocessAudioAnalyzer) AnalyzeAudio(ctx context.Context, item *models.MediaItem) (*models.MusicProfile, error) {
	startTime := time.Now()
	log.Printf("🎵 AUDIO ANALYSIS STARTED: %s", item.FilePath)

	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	outPath := filepath.Join(a.cfg.ArtifactsDir, item.ID+".beats.json")

	cmd := exec.CommandContext(ctx, a.binary,
		"--input", item.FilePath,
		"--out", outPath,
	)
	var stderrBuf bytes.Buffer
	cmd.Stderr = io.Writer(&limitedWriter{buf: &stderrBuf, limit: maxStderrBytes})
	cmd.Stdout = io.Discard // the tool writes to --out, not stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("audio analyzer failed for %s: %w (stderr: %s)",
			item.ID, err, truncateTail(stderrBuf.String(), 512))
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("cannot read analyzer output: %w", err)
	}

	var out analyzerOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("cannot parse analyzer JSON: %w", err)
	}

	profile := &models.MusicProfile{
		FilePath:       item.FilePath,
		TempoBPM:       out.TempoBPM,
		BeatTimestamps: out.BeatTimestamps,
		EnergyCurve:    out.EnergyCurve,
		Duration:       out.Duration,
	}
	if err := validateProfile(profile); err != nil {
		return nil, fmt.Errorf("analyzer output for %s is invalid: %w", item.ID, err)
	}

	log.Printf("✅ AUDIO ANALYSIS COMPLETED: %s (%.1f BPM, %d beats) in %v",
		item.ID, profile.TempoBPM, len(profile.BeatTimestamps), time.Since(startTime))
	return profile, nil
}

// validateProfile checks the invariants the synchronizer depends on: beats
// strictly increasing and energy values within [0, 1].
func validateProfile(p *models.MusicProfile) error {
	if len(p.BeatTimestamps) < 2 {
		return fmt.Errorf("need at least 2 beats, got %d", len(p.BeatTimestamps))
	}
	for i := 1; i < len(p.BeatTimestamps); i++ {
		if p.BeatTimestamps[i] <= p.BeatTimestamps[i-1] {
			return fmt.Errorf("beat timestamps not strictly increasing at index %d (%.3f <= %.3f)",
				i, p.BeatTimestamps[i], p.BeatTimestamps[i-1])
		}
	}
	for i, e := range p.EnergyCurve {
		if e < 0 || e > 1 {
			return fmt.Errorf("energy value out of range at index %d: %.3f", i, e)
		}
	}
	if p.Duration <= 0 {
		return fmt.Errorf("non-positive duration: %.3f", p.Duration)
	}
	return nil
}

func truncateTail(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter keeps only the last `limit` bytes written to it.
type limitedWriter struct {
	buf   *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.buf.Write(p)
	if lw.buf.Len() > lw.limit {
		b := lw.buf.Bytes()
		tail := make([]byte, lw.limit)
		copy(tail, b[len(b)-lw.limit:])
		lw.buf.Reset()
		lw.buf.Write(tail)
	}
	return n, nil
}
