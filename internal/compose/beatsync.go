package compose

import (
	"sort"

	"github.com/memoryreel/memoryreel/internal/models"
)

// ClipAssignment places one media item at a start time with a duration,
// before any transition or effect decisions.
type ClipAssignment struct {
	Item      models.MediaItem
	StartTime float64
	Duration  float64
}

// Pacing holds the energy-to-clip-length heuristics. The thresholds were
// tuned against real soundtracks; treat them as product constants.
type Pacing struct {
	FastCutThreshold float64 // energy above this: 1-2 beats per clip
	SlowCutThreshold float64 // energy above this: 2-4 beats, at or below: 4-6
	MinClipSeconds   float64
	MaxClipSeconds   float64
}

// DefaultPacing returns the tuned pacing constants.
func DefaultPacing() Pacing {
	return Pacing{
		FastCutThreshold: 0.7,
		SlowCutThreshold: 0.4,
		MinClipSeconds:   1.0,
		MaxClipSeconds:   5.0,
	}
}

// beatBand is an inclusive range of beats a clip may span.
type beatBand struct {
	min, max int
}

// Synchronizer assigns clips to beat-aligned slots, cutting faster where the
// music is more energetic.
type Synchronizer struct {
	pacing Pacing
}

// NewSynchronizer creates a synchronizer with the given pacing.
func NewSynchronizer(pacing Pacing) *Synchronizer {
	return &Synchronizer{pacing: pacing}
}

// FlattenByEnergy orders clusters by descending energy and flattens them to
// a single media queue, so aesthetically stronger clusters land earlier in
// the movie. The sort is stable: clusters with equal energy keep their
// original pool order.
func FlattenByEnergy(clusters []Cluster) []models.MediaItem {
	ordered := make([]Cluster, len(clusters))
	copy(ordered, clusters)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EnergyLevel > ordered[j].EnergyLevel
	})

	var queue []models.MediaItem
	for _, c := range ordered {
		queue = append(queue, c.Items...)
	}
	return queue
}

// BeatSynced walks the beat grid with a cursor, assigning each queued item a
// slot spanning 1-6 beats depending on the local energy: high energy means
// fast cuts, low energy means longer holds. Assignment stops when the queue
// or the beat grid runs out, or the accumulated duration reaches the target.
func (s *Synchronizer) BeatSynced(
	queue []models.MediaItem,
	profile *models.MusicProfile,
	targetDuration float64,
) []ClipAssignment {
	beats := profile.BeatTimestamps
	if len(beats) < 2 || len(queue) == 0 {
		return nil
	}

	var assignments []ClipAssignment
	cursor := 0
	queueIdx := 0

	for queueIdx < len(queue) && cursor < len(beats)-1 {
		if targetDuration > 0 && beats[cursor]-beats[0] >= targetDuration {
			break
		}

		beatsPerClip := s.beatsPerClip(cursor, profile)
		endIdx := cursor + beatsPerClip
		if endIdx > len(beats)-1 {
			endIdx = len(beats) - 1
		}

		duration := beats[endIdx] - beats[cursor]
		if duration <= 0 {
			break
		}

		assignments = append(assignments, ClipAssignment{
			Item:      queue[queueIdx],
			StartTime: beats[cursor],
			Duration:  duration,
		})

		cursor = endIdx
		queueIdx++
	}

	return assignments
}

// beatsPerClip maps the energy at the cursor's beat index to a beat count.
// The pick inside each band cycles with the beat index instead of using
// randomness, keeping runs reproducible for identical inputs while still
// varying clip lengths within a band.
func (s *Synchronizer) beatsPerClip(beatIdx int, profile *models.MusicProfile) int {
	energy := profile.EnergyAt(beatIdx)

	var band beatBand
	switch {
	case energy > s.pacing.FastCutThreshold:
		band = beatBand{min: 1, max: 2}
	case energy > s.pacing.SlowCutThreshold:
		band = beatBand{min: 2, max: 4}
	default:
		band = beatBand{min: 4, max: 6}
	}

	span := band.max - band.min + 1
	return band.min + beatIdx%span
}

// Chronological is the no-music fallback: equal-duration slots of
// target/count seconds, clamped into [MinClipSeconds, MaxClipSeconds],
// assigned in pool order with no beat alignment.
func (s *Synchronizer) Chronological(queue []models.MediaItem, targetDuration float64) []ClipAssignment {
	if len(queue) == 0 {
		return nil
	}

	slot := targetDuration / float64(len(queue))
	if slot > s.pacing.MaxClipSeconds {
		slot = s.pacing.MaxClipSeconds
	}
	if slot < s.pacing.MinClipSeconds {
		slot = s.pacing.MinClipSeconds
	}

	var assignments []ClipAssignment
	current := 0.0
	for _, item := range queue {
		if targetDuration > 0 && current >= targetDuration {
			break
		}
		assignments = append(assignments, ClipAssignment{
			Item:      item,
			StartTime: current,
			Duration:  slot,
		})
		current += slot
	}
	return assignments
}
