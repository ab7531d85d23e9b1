package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoryreel/memoryreel/internal/models"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "projects.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	s := openTestStore(t)

	state := models.NewProjectState(models.UserInputs{
		Prompt:         "summer holiday",
		TargetDuration: 60,
		Style:          "smooth",
		Media: []models.MediaItem{
			{ID: "m1", FilePath: "/media/a.jpg", Type: models.MediaTypeImage},
		},
	})
	state.Timeline = &models.Timeline{
		Segments: []models.TimelineSegment{
			{ID: "s1", MediaItemID: "m1", StartTime: 0, EndTime: 2, Duration: 2},
		},
		TotalDuration: 2,
		Version:       1,
	}
	require.NoError(t, s.Save(state))

	loaded, err := s.Load(state.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, state.ProjectID, loaded.ProjectID)
	assert.Equal(t, "summer holiday", loaded.Inputs.Prompt)
	require.NotNil(t, loaded.Timeline)
	assert.Equal(t, 1, loaded.Timeline.Version)
	assert.InDelta(t, 2.0, loaded.Timeline.TotalDuration, 1e-9)
}

func TestSaveOverwritesPriorSnapshot(t *testing.T) {
	s := openTestStore(t)

	state := models.NewProjectState(models.UserInputs{Prompt: "v1"})
	require.NoError(t, s.Save(state))

	state.Inputs.Prompt = "v2"
	state.RefinementIterations = 2
	state.Touch()
	require.NoError(t, s.Save(state))

	loaded, err := s.Load(state.ProjectID)
	require.NoError(t, err)
	assert.Equal(t, "v2", loaded.Inputs.Prompt)
	assert.Equal(t, 2, loaded.RefinementIterations)

	ids, err := s.List()
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestLoadMissingProject(t *testing.T) {
	s := openTestStore(t)

	_, err := s.Load("nope")

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)

	state := models.NewProjectState(models.UserInputs{})
	require.NoError(t, s.Save(state))
	require.NoError(t, s.Delete(state.ProjectID))

	_, err := s.Load(state.ProjectID)
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, s.Delete(state.ProjectID))
}

func TestListOrdersByRecency(t *testing.T) {
	s := openTestStore(t)

	first := models.NewProjectState(models.UserInputs{})
	second := models.NewProjectState(models.UserInputs{})
	require.NoError(t, s.Save(first))
	require.NoError(t, s.Save(second))

	// Touching the first project makes it the most recent.
	first.Touch()
	require.NoError(t, s.Save(first))

	ids, err := s.List()
	require.NoError(t, err)
	require.Len(t, ids, 2)
	assert.Equal(t, first.ProjectID, ids[0])
}
