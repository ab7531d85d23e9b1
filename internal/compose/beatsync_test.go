package compose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memoryreel/memoryreel/internal/models"
)

// beatsEvery returns n beats spaced interval seconds apart, starting at 0.
func beatsEvery(n int, interval float64) []float64 {
	beats := make([]float64, n)
	for i := range beats {
		beats[i] = float64(i) * interval
	}
	return beats
}

func itemQueue(n int) []models.MediaItem {
	queue := make([]models.MediaItem, n)
	for i := range queue {
		queue[i] = visualItem(string(rune('a'+i)), "", "misc", 0.5)
	}
	return queue
}

func TestFlattenByEnergyOrdersClustersDescending(t *testing.T) {
	clusters := []Cluster{
		{Theme: "low", EnergyLevel: 0.3, Items: itemQueue(1)},
		{Theme: "high", EnergyLevel: 0.9, Items: itemQueue(2)[1:]},
		{Theme: "mid", EnergyLevel: 0.5, Items: itemQueue(3)[2:]},
	}

	queue := FlattenByEnergy(clusters)

	require.Len(t, queue, 3)
	assert.Equal(t, "b", queue[0].ID)
	assert.Equal(t, "c", queue[1].ID)
	assert.Equal(t, "a", queue[2].ID)
}

func TestFlattenByEnergyStableOnTies(t *testing.T) {
	clusters := []Cluster{
		{Theme: "first", EnergyLevel: 0.5, Items: []models.MediaItem{{ID: "1"}}},
		{Theme: "second", EnergyLevel: 0.5, Items: []models.MediaItem{{ID: "2"}}},
	}

	queue := FlattenByEnergy(clusters)

	require.Len(t, queue, 2)
	assert.Equal(t, "1", queue[0].ID)
	assert.Equal(t, "2", queue[1].ID)
}

func TestBeatSyncedEnergyPacing(t *testing.T) {
	sync := NewSynchronizer(DefaultPacing())

	// 0.5s beat spacing. Low energy at the opening, a spike at beat 4.
	profile := &models.MusicProfile{
		BeatTimestamps: beatsEvery(40, 0.5),
		EnergyCurve: []float64{
			0.2, 0.2, 0.2, 0.2, 0.95, 0.95, 0.2, 0.2,
			0.2, 0.2, 0.2, 0.2, 0.2, 0.2, 0.2, 0.2,
		},
		Duration: 20,
	}

	assignments := sync.BeatSynced(itemQueue(10), profile, 20)

	require.NotEmpty(t, assignments)

	// Low energy (0.2 <= 0.4): 4-6 beats per clip, so at least 2.0s here.
	assert.InDelta(t, 2.0, assignments[0].Duration, 1e-9)
	assert.InDelta(t, 0.0, assignments[0].StartTime, 1e-9)

	// The spike at beat 4 (0.95 > 0.7): 1-2 beats, at most 1.0s.
	assert.InDelta(t, 2.0, assignments[1].StartTime, 1e-9)
	assert.LessOrEqual(t, assignments[1].Duration, 1.0)

	// Clips tile the beat grid with no gaps.
	for i := 1; i < len(assignments); i++ {
		prevEnd := assignments[i-1].StartTime + assignments[i-1].Duration
		assert.InDelta(t, prevEnd, assignments[i].StartTime, 1e-9)
	}
}

func TestBeatSyncedStopsAtTargetDuration(t *testing.T) {
	sync := NewSynchronizer(DefaultPacing())
	profile := &models.MusicProfile{
		BeatTimestamps: beatsEvery(100, 0.5),
		EnergyCurve:    []float64{0.5},
		Duration:       50,
	}

	assignments := sync.BeatSynced(itemQueue(26), profile, 10)

	require.NotEmpty(t, assignments)
	last := assignments[len(assignments)-1]
	// The cursor stops once the accumulated duration reaches the target, so
	// only the final clip may extend past it.
	assert.Less(t, last.StartTime, 10.0)
}

func TestBeatSyncedStopsWhenQueueExhausted(t *testing.T) {
	sync := NewSynchronizer(DefaultPacing())
	profile := &models.MusicProfile{
		BeatTimestamps: beatsEvery(100, 0.5),
		EnergyCurve:    []float64{0.5},
		Duration:       50,
	}

	assignments := sync.BeatSynced(itemQueue(3), profile, 50)

	assert.Len(t, assignments, 3)
}

func TestBeatSyncedDegenerateInputs(t *testing.T) {
	sync := NewSynchronizer(DefaultPacing())

	oneBeat := &models.MusicProfile{BeatTimestamps: []float64{0}, Duration: 10}
	assert.Nil(t, sync.BeatSynced(itemQueue(3), oneBeat, 10))

	ok := &models.MusicProfile{BeatTimestamps: beatsEvery(10, 0.5), Duration: 5}
	assert.Nil(t, sync.BeatSynced(nil, ok, 10))
}

func TestBeatSyncedDeterministic(t *testing.T) {
	sync := NewSynchronizer(DefaultPacing())
	profile := &models.MusicProfile{
		BeatTimestamps: beatsEvery(60, 0.45),
		EnergyCurve:    []float64{0.8, 0.3, 0.6, 0.9, 0.1, 0.5},
		Duration:       27,
	}

	first := sync.BeatSynced(itemQueue(12), profile, 25)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, sync.BeatSynced(itemQueue(12), profile, 25))
	}
}

func TestChronologicalEqualSlots(t *testing.T) {
	sync := NewSynchronizer(DefaultPacing())

	assignments := sync.Chronological(itemQueue(4), 8)

	require.Len(t, assignments, 4)
	for i, a := range assignments {
		assert.InDelta(t, 2.0, a.Duration, 1e-9)
		assert.InDelta(t, float64(i)*2.0, a.StartTime, 1e-9)
	}
}

func TestChronologicalClampsSlotLength(t *testing.T) {
	sync := NewSynchronizer(DefaultPacing())

	long := sync.Chronological(itemQueue(2), 100)
	require.Len(t, long, 2)
	assert.InDelta(t, 5.0, long[0].Duration, 1e-9)

	short := sync.Chronological(itemQueue(10), 2)
	require.NotEmpty(t, short)
	assert.InDelta(t, 1.0, short[0].Duration, 1e-9)
	// Clamping means fewer clips fit before the target is reached.
	assert.Len(t, short, 2)
}

func TestChronologicalEmptyQueue(t *testing.T) {
	sync := NewSynchronizer(DefaultPacing())
	assert.Nil(t, sync.Chronological(nil, 10))
}
