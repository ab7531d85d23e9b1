package compose

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/memoryreel/memoryreel/internal/models"
)

var (
	// ErrNoUsableMedia means the pool contains nothing that can appear on a
	// timeline after analysis filtering.
	ErrNoUsableMedia = errors.New("no usable media found for timeline creation")

	// ErrEmptyTimeline means the synchronizer produced zero segments.
	ErrEmptyTimeline = errors.New("timeline build produced zero segments")
)

// Style names accepted by the builder. Anything else falls back to hard cuts.
const (
	StyleSmooth  = "smooth"
	StyleDynamic = "dynamic"
	StyleCut     = "cut"
)

// dynamicCycle is the transition rotation used by the dynamic style, indexed
// by segment position.
var dynamicCycle = []models.TransitionType{
	models.TransitionCrossfade,
	models.TransitionFadeToBlack,
	models.TransitionSlideLeft,
	models.TransitionSlideRight,
}

// Builder converts clip assignments into a validated timeline.
type Builder struct {
	transitionSeconds float64
}

// NewBuilder creates a builder using the given transition duration for
// non-cut boundaries.
func NewBuilder(transitionSeconds float64) *Builder {
	return &Builder{transitionSeconds: transitionSeconds}
}

// Build produces a timeline from assignments. It refuses empty input rather
// than returning an empty timeline, and validates every invariant before
// returning — an invariant violation here is a composition bug, not
// something to paper over.
func (b *Builder) Build(
	assignments []ClipAssignment,
	style string,
	musicItemID string,
	render models.RenderSettings,
	version int,
) (*models.Timeline, error) {
	if len(assignments) == 0 {
		return nil, ErrEmptyTimeline
	}

	segments := make([]models.TimelineSegment, 0, len(assignments))
	for _, a := range assignments {
		segments = append(segments, b.segmentFrom(a))
	}
	b.applyTransitions(segments, style)

	timeline := &models.Timeline{
		Segments:    segments,
		MusicItemID: musicItemID,
		Render:      render,
		Version:     version,
	}
	timeline.TotalDuration = timeline.MaxEndTime()

	if err := timeline.Validate(); err != nil {
		return nil, fmt.Errorf("built timeline failed validation: %w", err)
	}
	return timeline, nil
}

// segmentFrom creates one segment: stills get the pan/zoom effect, videos
// with notable intervals are trimmed to their most important one.
func (b *Builder) segmentFrom(a ClipAssignment) models.TimelineSegment {
	seg := models.TimelineSegment{
		ID:                 uuid.NewString(),
		MediaItemID:        a.Item.ID,
		StartTime:          a.StartTime,
		EndTime:            a.StartTime + a.Duration,
		Duration:           a.Duration,
		TransitionIn:       models.TransitionCut,
		TransitionOut:      models.TransitionCut,
		TransitionDuration: b.transitionSeconds,
		SpeedFactor:        1.0,
		Volume:             1.0,
	}

	switch a.Item.Type {
	case models.MediaTypeImage:
		seg.Effects = append(seg.Effects, models.EffectPanZoom)
	case models.MediaTypeVideo:
		if best, ok := a.Item.BestInterval(); ok {
			seg.InPoint = best.StartTime
			seg.OutPoint = best.EndTime
		}
	}

	return seg
}

// applyTransitions sets the outgoing transition on every boundary (all
// segments but the last) according to the style policy.
func (b *Builder) applyTransitions(segments []models.TimelineSegment, style string) {
	for i := range segments[:len(segments)-1] {
		switch style {
		case StyleSmooth:
			segments[i].TransitionOut = models.TransitionCrossfade
		case StyleDynamic:
			segments[i].TransitionOut = dynamicCycle[i%len(dynamicCycle)]
		default:
			segments[i].TransitionOut = models.TransitionCut
		}
	}
}

// Composer bundles the full composition pass: filter, cluster, synchronize,
// build. It is the single entry point the refinement engine calls.
type Composer struct {
	sync              *Synchronizer
	builder           *Builder
	minAestheticScore float64
}

// NewComposer wires a composer from pacing and transition settings.
func NewComposer(pacing Pacing, transitionSeconds, minAestheticScore float64) *Composer {
	return &Composer{
		sync:              NewSynchronizer(pacing),
		builder:           NewBuilder(transitionSeconds),
		minAestheticScore: minAestheticScore,
	}
}

// Compose creates a timeline from the analyzed pool. With a music profile
// the result is beat-synchronized; without one it falls back to equal-slot
// chronological assignment.
func (c *Composer) Compose(
	pool []models.MediaItem,
	profile *models.MusicProfile,
	targetDuration float64,
	style string,
	musicItemID string,
	render models.RenderSettings,
	version int,
) (*models.Timeline, error) {
	usable := FilterUsable(pool, c.minAestheticScore)
	if len(usable) == 0 {
		return nil, ErrNoUsableMedia
	}

	clusters := ClusterMedia(usable)
	queue := FlattenByEnergy(clusters)

	var assignments []ClipAssignment
	if profile != nil && len(profile.BeatTimestamps) > 0 {
		assignments = c.sync.BeatSynced(queue, profile, targetDuration)
	} else {
		// No soundtrack: chronological fallback keeps pool order.
		assignments = c.sync.Chronological(poolOrder(usable), targetDuration)
	}

	return c.builder.Build(assignments, style, musicItemID, render, version)
}

// poolOrder returns the items as given, named for clarity at the call site.
func poolOrder(items []models.MediaItem) []models.MediaItem {
	return items
}
