package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoryreel/memoryreel/internal/models"
)

func visualItem(id, captureTime, tag string, score float64) models.MediaItem {
	return models.MediaItem{
		ID:          id,
		FilePath:    id + ".jpg",
		Type:        models.MediaTypeImage,
		CaptureTime: captureTime,
		Visual: &models.VisualAnalysis{
			AestheticScore: score,
			Tags:           []string{tag},
		},
	}
}

func TestFilterUsable(t *testing.T) {
	pool := []models.MediaItem{
		visualItem("good", "2024-06-01T10:00:00", "beach", 0.8),
		visualItem("blurry", "2024-06-01T10:05:00", "beach", 0.1),
		{ID: "unanalyzed", Type: models.MediaTypeImage},
		{ID: "soundtrack", Type: models.MediaTypeAudio},
	}

	usable := FilterUsable(pool, 0.3)

	require.Len(t, usable, 1)
	assert.Equal(t, "good", usable[0].ID)
}

func TestClusterMediaGroupsByDayAndTag(t *testing.T) {
	pool := []models.MediaItem{
		visualItem("a", "2024-06-01T09:00:00", "beach", 0.8),
		visualItem("b", "2024-06-01T17:00:00", "beach", 0.6),
		visualItem("c", "2024-06-01T12:00:00", "food", 0.4),
		visualItem("d", "2024-06-02T09:00:00", "beach", 0.9),
	}

	clusters := ClusterMedia(pool)

	require.Len(t, clusters, 3)
	assert.Equal(t, "beach", clusters[0].Theme)
	assert.Equal(t, "2024-06-01", clusters[0].TimeKey)
	assert.Len(t, clusters[0].Items, 2)
	assert.InDelta(t, 0.7, clusters[0].EnergyLevel, 1e-9)

	assert.Equal(t, "food", clusters[1].Theme)
	assert.Equal(t, "2024-06-02", clusters[2].TimeKey)
}

func TestClusterMediaMissingMetadata(t *testing.T) {
	noTime := visualItem("x", "", "beach", 0.5)
	noTags := models.MediaItem{
		ID:     "y",
		Type:   models.MediaTypeImage,
		Visual: &models.VisualAnalysis{AestheticScore: 0.5},
	}

	clusters := ClusterMedia([]models.MediaItem{noTime, noTags})

	require.Len(t, clusters, 2)
	assert.Equal(t, "unknown", clusters[0].TimeKey)
	assert.Equal(t, "misc", clusters[1].Theme)
}

func TestClusterMediaDeterministic(t *testing.T) {
	pool := []models.MediaItem{
		visualItem("a", "2024-06-01T09:00:00", "beach", 0.8),
		visualItem("b", "2024-06-02T09:00:00", "food", 0.6),
		visualItem("c", "2024-06-01T10:00:00", "beach", 0.7),
	}

	first := ClusterMedia(pool)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ClusterMedia(pool))
	}
}
