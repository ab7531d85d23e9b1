package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseTransitionsHappyPath(t *testing.T) {
	status := NewProjectStatus()

	path := []Phase{PhaseAnalyzing, PhaseComposing, PhaseRendering, PhaseEvaluating, PhaseCompleted}
	for _, phase := range path {
		require.NoError(t, status.Transition(phase, 50))
	}

	assert.Equal(t, PhaseCompleted, status.Phase)
	assert.True(t, status.IsTerminal())
	assert.Len(t, status.History, len(path))
	assert.Equal(t, PhaseInitialized, status.History[0].FromPhase)
	assert.Equal(t, PhaseAnalyzing, status.History[0].ToPhase)
}

func TestPhaseTransitionRefinementLoop(t *testing.T) {
	status := NewProjectStatus()
	for _, phase := range []Phase{PhaseAnalyzing, PhaseComposing, PhaseRendering, PhaseEvaluating} {
		require.NoError(t, status.Transition(phase, 50))
	}

	// Minor adjustments: evaluating -> refining -> rendering -> evaluating.
	require.NoError(t, status.Transition(PhaseRefining, 85))
	require.NoError(t, status.Transition(PhaseRendering, 65))
	require.NoError(t, status.Transition(PhaseEvaluating, 80))

	// Major rework: evaluating -> composing.
	require.NoError(t, status.Transition(PhaseComposing, 45))
}

func TestPhaseTransitionRejectsIllegalMoves(t *testing.T) {
	status := NewProjectStatus()

	err := status.Transition(PhaseRendering, 50)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "illegal phase transition")
	assert.Equal(t, PhaseInitialized, status.Phase)
	assert.Empty(t, status.History)
}

func TestPhaseTransitionErrorAllowedFromAnywhere(t *testing.T) {
	status := NewProjectStatus()
	require.NoError(t, status.Transition(PhaseAnalyzing, 25))

	require.NoError(t, status.Transition(PhaseError, 25))
	assert.True(t, status.IsTerminal())
}

func TestProjectStateMusicItem(t *testing.T) {
	state := NewProjectState(UserInputs{
		Media: []MediaItem{
			{ID: "img", Type: MediaTypeImage},
			{ID: "song1", Type: MediaTypeAudio},
			{ID: "song2", Type: MediaTypeAudio},
		},
	})

	music, ok := state.MusicItem()
	require.True(t, ok)
	assert.Equal(t, "song1", music.ID)

	pool := state.VisualPool()
	require.Len(t, pool, 1)
	assert.Equal(t, "img", pool[0].ID)
}

func TestProjectStateAddVersion(t *testing.T) {
	state := NewProjectState(UserInputs{})

	v1 := state.AddVersion("/out/preview.mp4", true)
	v2 := state.AddVersion("/out/final.mp4", false)

	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)
	assert.Equal(t, 2, state.Status.CurrentVersion)

	latest, ok := state.LatestOutput()
	require.True(t, ok)
	assert.Equal(t, "/out/final.mp4", latest)
	assert.True(t, state.Versions[0].Preview)
	assert.False(t, state.Versions[1].Preview)
}

func TestEvaluationAccepted(t *testing.T) {
	tests := []struct {
		name     string
		result   EvaluationResult
		accepted bool
	}{
		{"high score accept", EvaluationResult{Score: 8.5, Recommendation: RecommendationAccept}, true},
		{"low score accept", EvaluationResult{Score: 5.0, Recommendation: RecommendationAccept}, false},
		{"high score but rework", EvaluationResult{Score: 9.0, Recommendation: RecommendationMajorRework}, false},
		{"exactly at threshold", EvaluationResult{Score: 7.0, Recommendation: RecommendationAccept}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.accepted, tt.result.Accepted(7.0))
		})
	}
}

func TestBestInterval(t *testing.T) {
	item := MediaItem{
		Type: MediaTypeVideo,
		Visual: &VisualAnalysis{
			NotableIntervals: []NotableInterval{
				{StartTime: 10, EndTime: 12, Importance: 0.8},
				{StartTime: 2, EndTime: 4, Importance: 0.8}, // tie: earlier start wins
				{StartTime: 20, EndTime: 25, Importance: 0.3},
			},
		},
	}

	best, ok := item.BestInterval()
	require.True(t, ok)
	assert.InDelta(t, 2.0, best.StartTime, 1e-9)

	_, ok = (&MediaItem{}).BestInterval()
	assert.False(t, ok)
}

func TestDetectMediaType(t *testing.T) {
	tests := []struct {
		path string
		want MediaType
		ok   bool
	}{
		{"IMG_0042.JPG", MediaTypeImage, true},
		{"holiday.mp4", MediaTypeVideo, true},
		{"soundtrack.mp3", MediaTypeAudio, true},
		{"notes.txt", "", false},
	}

	for _, tt := range tests {
		got, ok := DetectMediaType(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}
