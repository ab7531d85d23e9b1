package refine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoryreel/memoryreel/internal/models"
)

func feedbackTimeline() *models.Timeline {
	return &models.Timeline{
		Segments: []models.TimelineSegment{
			{ID: "s1", MediaItemID: "m1", StartTime: 0, EndTime: 5, Duration: 5},
			{ID: "s2", MediaItemID: "m2", StartTime: 5, EndTime: 12, Duration: 7},
			{ID: "s3", MediaItemID: "m3", StartTime: 12, EndTime: 20, Duration: 8},
		},
		TotalDuration: 20,
	}
}

func TestTranslateDurationEdits(t *testing.T) {
	translator := NewTranslator()
	timeline := feedbackTimeline()

	evaluation := &models.EvaluationResult{
		SpecificEdits: []models.SpecificEdit{
			{Timestamp: "0:02", Issue: "clip feels too short", Suggestion: "extend by 2 seconds"},
			{Timestamp: "0:15", Issue: "this shot is too long", Suggestion: "shorten by 3.5 seconds"},
		},
	}

	batch := translator.Translate(evaluation, "", timeline)

	require.Len(t, batch.AdjustDurations, 2)
	assert.InDelta(t, 2.0, batch.AdjustDurations["s1"], 1e-9)
	assert.InDelta(t, -3.5, batch.AdjustDurations["s3"], 1e-9)
}

func TestTranslateTransitionAndEffectEdits(t *testing.T) {
	translator := NewTranslator()
	timeline := feedbackTimeline()

	evaluation := &models.EvaluationResult{
		SpecificEdits: []models.SpecificEdit{
			{Timestamp: "0:06", Issue: "abrupt change", Suggestion: "use a crossfade here"},
			{Timestamp: "0:13", Issue: "static shot", Suggestion: "add slow motion for drama"},
		},
	}

	batch := translator.Translate(evaluation, "", timeline)

	assert.Equal(t, models.TransitionCrossfade, batch.ChangeTransitions["s2"])
	assert.Equal(t, []string{"slow_motion"}, batch.AddEffects["s3"])
}

func TestTranslatePrefersExplicitSegmentID(t *testing.T) {
	translator := NewTranslator()
	timeline := feedbackTimeline()

	evaluation := &models.EvaluationResult{
		SpecificEdits: []models.SpecificEdit{
			// Timestamp points at s1 but the critic named s2 directly.
			{Timestamp: "0:01", SegmentID: "s2", Issue: "too short", Suggestion: "extend by 1 seconds"},
		},
	}

	batch := translator.Translate(evaluation, "", timeline)

	assert.InDelta(t, 1.0, batch.AdjustDurations["s2"], 1e-9)
	assert.NotContains(t, batch.AdjustDurations, "s1")
}

func TestTranslateDropsUnresolvableEdits(t *testing.T) {
	translator := NewTranslator()
	timeline := feedbackTimeline()

	evaluation := &models.EvaluationResult{
		SpecificEdits: []models.SpecificEdit{
			{Timestamp: "9:59", Issue: "too short", Suggestion: "extend by 2 seconds"},
			{Timestamp: "garbled", Issue: "too short", Suggestion: "extend by 2 seconds"},
		},
	}

	batch := translator.Translate(evaluation, "", timeline)

	assert.True(t, batch.IsEmpty())
}

func TestTranslateRemovalSuggestion(t *testing.T) {
	translator := NewTranslator()
	timeline := feedbackTimeline()

	evaluation := &models.EvaluationResult{
		SpecificEdits: []models.SpecificEdit{
			{Timestamp: "0:08", Issue: "off-topic content", Suggestion: "remove this clip entirely"},
		},
	}

	batch := translator.Translate(evaluation, "", timeline)

	assert.Equal(t, []string{"s2"}, batch.RemoveSegments)
}

func TestTranslateUserFeedback(t *testing.T) {
	translator := NewTranslator()
	timeline := feedbackTimeline()

	feedback := "Make the clip at 0:02 8 seconds, use crossfade at 0:06, and remove the segment at 0:15."

	batch := translator.Translate(nil, feedback, timeline)

	// User durations are absolute targets, applied as deltas.
	assert.InDelta(t, 3.0, batch.AdjustDurations["s1"], 1e-9)
	assert.Equal(t, models.TransitionCrossfade, batch.ChangeTransitions["s2"])
	assert.Equal(t, []string{"s3"}, batch.RemoveSegments)
}

func TestTranslateEmptyInputs(t *testing.T) {
	translator := NewTranslator()
	timeline := feedbackTimeline()

	batch := translator.Translate(nil, "", timeline)
	assert.True(t, batch.IsEmpty())

	batch = translator.Translate(&models.EvaluationResult{}, "looks great, no changes", timeline)
	assert.True(t, batch.IsEmpty())
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"0:15", 15, true},
		{"1:30", 90, true},
		{"2:05.5", 125.5, true},
		{"12.5", 12.5, true},
		{"0:10-0:15", 10, true},
		{"garbled", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		got, ok := parseTimestamp(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.InDelta(t, tt.want, got, 1e-9, tt.in)
		}
	}
}
