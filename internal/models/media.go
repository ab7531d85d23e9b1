package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MediaType identifies the kind of a media file.
type MediaType string

const (
	MediaTypeImage MediaType = "image"
	MediaTypeVideo MediaType = "video"
	MediaTypeAudio MediaType = "audio"
)

// AnalysisState tracks how far a media item has progressed through analysis.
// It replaces per-kind "has visual / has audio analysis" booleans with a
// single explicit state per item.
type AnalysisState string

const (
	AnalysisPending  AnalysisState = "pending"
	AnalysisPartial  AnalysisState = "partial"
	AnalysisComplete AnalysisState = "complete"
	AnalysisFailed   AnalysisState = "failed"
)

// NotableInterval marks an interesting sub-range of a video, scored by
// importance in [0,1].
type NotableInterval struct {
	StartTime  float64 `json:"start_time"`
	EndTime    float64 `json:"end_time"`
	Importance float64 `json:"importance"`
}

// VisualAnalysis is the structured output of the visual analysis collaborator.
type VisualAnalysis struct {
	Description      string            `json:"description"`
	AestheticScore   float64           `json:"aesthetic_score"` // [0,1]
	Tags             []string          `json:"tags"`
	MainSubjects     []string          `json:"main_subjects,omitempty"`
	QualityIssues    []string          `json:"quality_issues,omitempty"`
	NotableIntervals []NotableInterval `json:"notable_intervals,omitempty"`
}

// MusicProfile is the audio feature extraction result for a soundtrack.
// Immutable once produced.
type MusicProfile struct {
	FilePath       string    `json:"file_path"`
	TempoBPM       float64   `json:"tempo_bpm"`
	BeatTimestamps []float64 `json:"beat_timestamps"` // strictly increasing, seconds
	EnergyCurve    []float64 `json:"energy_curve"`    // values in [0,1], fixed sample rate
	Duration       float64   `json:"duration"`
}

// EnergyAt returns the energy value at the given beat index, falling back to
// the last sample when the curve is shorter than the beat array.
func (p *MusicProfile) EnergyAt(beatIdx int) float64 {
	if len(p.EnergyCurve) == 0 {
		return 0.5
	}
	if beatIdx >= len(p.EnergyCurve) {
		beatIdx = len(p.EnergyCurve) - 1
	}
	if beatIdx < 0 {
		beatIdx = 0
	}
	return p.EnergyCurve[beatIdx]
}

// MediaItem is one photo, video, or audio file plus its analysis results.
// Created at ingestion, mutated only by the analysis phase, never deleted
// during a session.
type MediaItem struct {
	ID            string          `json:"id"`
	FilePath      string          `json:"file_path"`
	Type          MediaType       `json:"type"`
	UploadedAt    time.Time       `json:"uploaded_at"`
	Duration      float64         `json:"duration,omitempty"` // seconds, 0 if unknown
	CaptureTime   string          `json:"capture_time,omitempty"`
	AnalysisState AnalysisState   `json:"analysis_state"`
	AnalysisError string          `json:"analysis_error,omitempty"`
	Visual        *VisualAnalysis `json:"visual_analysis,omitempty"`
	Audio         *MusicProfile   `json:"audio_analysis,omitempty"`
}

// NewMediaItem creates a media item for the given path, detecting the media
// type from the file extension. Returns false if the extension is unknown.
func NewMediaItem(path string) (MediaItem, bool) {
	mediaType, ok := DetectMediaType(path)
	if !ok {
		return MediaItem{}, false
	}
	return MediaItem{
		ID:            uuid.NewString(),
		FilePath:      path,
		Type:          mediaType,
		UploadedAt:    time.Now().UTC(),
		AnalysisState: AnalysisPending,
	}, true
}

// DetectMediaType maps a file extension to a MediaType.
func DetectMediaType(path string) (MediaType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".bmp", ".webp", ".heic":
		return MediaTypeImage, true
	case ".mp4", ".avi", ".mov", ".mkv", ".webm", ".flv":
		return MediaTypeVideo, true
	case ".mp3", ".wav", ".aac", ".flac", ".ogg", ".m4a":
		return MediaTypeAudio, true
	default:
		return "", false
	}
}

// IsAnalyzed reports whether the item has all analysis its kind requires.
func (m *MediaItem) IsAnalyzed() bool {
	return m.AnalysisState == AnalysisComplete
}

// QualityScore returns the aesthetic score from visual analysis, or a neutral
// 0.5 when no analysis is present.
func (m *MediaItem) QualityScore() float64 {
	if m.Visual != nil {
		return m.Visual.AestheticScore
	}
	return 0.5
}

// PrimaryTag returns the highest-confidence subject tag, or "misc" when the
// item carries no tags.
func (m *MediaItem) PrimaryTag() string {
	if m.Visual != nil && len(m.Visual.Tags) > 0 {
		return m.Visual.Tags[0]
	}
	return "misc"
}

// BestInterval returns the notable interval with the highest importance
// score. Ties resolve to the earliest start time so composition stays
// deterministic. Returns false when the item has no notable intervals.
func (m *MediaItem) BestInterval() (NotableInterval, bool) {
	if m.Visual == nil || len(m.Visual.NotableIntervals) == 0 {
		return NotableInterval{}, false
	}
	best := m.Visual.NotableIntervals[0]
	for _, iv := range m.Visual.NotableIntervals[1:] {
		if iv.Importance > best.Importance ||
			(iv.Importance == best.Importance && iv.StartTime < best.StartTime) {
			best = iv
		}
	}
	return best, true
}
