package models

import (
	"fmt"
	"math"
	"sort"
)

// ContinuityEpsilon is the tolerance used for gap/overlap and duration
// consistency checks (1ms).
const ContinuityEpsilon = 0.001

// TransitionType enumerates the transition effects between clips.
type TransitionType string

const (
	TransitionCut         TransitionType = "cut"
	TransitionFade        TransitionType = "fade"
	TransitionFadeToBlack TransitionType = "fade_to_black"
	TransitionCrossfade   TransitionType = "crossfade"
	TransitionDissolve    TransitionType = "dissolve"
	TransitionSlideLeft   TransitionType = "slide_left"
	TransitionSlideRight  TransitionType = "slide_right"
	TransitionWipeLeft    TransitionType = "wipe_left"
	TransitionWipeRight   TransitionType = "wipe_right"
	TransitionWipeUp      TransitionType = "wipe_up"
	TransitionWipeDown    TransitionType = "wipe_down"
	TransitionZoomIn      TransitionType = "zoom_in"
	TransitionZoomOut     TransitionType = "zoom_out"
)

// EffectPanZoom is the slow pan/zoom applied to still images so they read as
// motion on the timeline.
const EffectPanZoom = "pan_zoom"

// TimelineSegment is one clip's placement on the timeline.
type TimelineSegment struct {
	ID           string  `json:"id"`
	MediaItemID  string  `json:"media_item_id"`
	StartTime    float64 `json:"start_time"`
	EndTime      float64 `json:"end_time"`
	Duration     float64 `json:"duration"`
	InPoint      float64 `json:"in_point"`
	OutPoint     float64 `json:"out_point,omitempty"` // 0 means "to end of source"

	TransitionIn       TransitionType `json:"transition_in"`
	TransitionOut      TransitionType `json:"transition_out"`
	TransitionDuration float64        `json:"transition_duration"` // [0,2] seconds

	Effects     []string `json:"effects,omitempty"`
	SpeedFactor float64  `json:"speed_factor"`
	Volume      float64  `json:"volume"`
}

// Validate checks the segment's internal invariants.
func (s *TimelineSegment) Validate() error {
	if s.MediaItemID == "" {
		return fmt.Errorf("segment %s: missing media item id", s.ID)
	}
	if s.EndTime <= s.StartTime {
		return fmt.Errorf("segment %s: end_time %.3f <= start_time %.3f", s.ID, s.EndTime, s.StartTime)
	}
	if math.Abs(s.Duration-(s.EndTime-s.StartTime)) > ContinuityEpsilon {
		return fmt.Errorf("segment %s: duration %.3f does not match end-start %.3f",
			s.ID, s.Duration, s.EndTime-s.StartTime)
	}
	if s.OutPoint != 0 && s.OutPoint <= s.InPoint {
		return fmt.Errorf("segment %s: out_point %.3f <= in_point %.3f", s.ID, s.OutPoint, s.InPoint)
	}
	if s.TransitionDuration < 0 || s.TransitionDuration > 2.0 {
		return fmt.Errorf("segment %s: transition duration %.3f outside [0,2]", s.ID, s.TransitionDuration)
	}
	return nil
}

// RenderSettings holds the output configuration the renderer consumes. The
// composition core treats these as opaque.
type RenderSettings struct {
	Resolution string  `json:"resolution"`
	FPS        float64 `json:"fps"`
	Codec      string  `json:"codec"`
	Preview    bool    `json:"preview"`
}

// DefaultRenderSettings returns full-quality output defaults.
func DefaultRenderSettings() RenderSettings {
	return RenderSettings{Resolution: "1920x1080", FPS: 30.0, Codec: "h264"}
}

// PreviewRenderSettings returns the low-resolution settings used during
// refinement iterations.
func PreviewRenderSettings() RenderSettings {
	return RenderSettings{Resolution: "640x360", FPS: 30.0, Codec: "h264", Preview: true}
}

// Timeline is the full ordered edit: playback-ordered segments plus derived
// totals. Mutated only by the timeline builder (full rebuild) or the edit
// applier (incremental mutation).
type Timeline struct {
	Segments      []TimelineSegment `json:"segments"`
	TotalDuration float64           `json:"total_duration"`
	MusicItemID   string            `json:"music_item_id,omitempty"`
	Render        RenderSettings    `json:"render_settings"`
	Version       int               `json:"version"`
}

// MaxEndTime returns the maximum segment end time, or 0 for an empty
// timeline.
func (t *Timeline) MaxEndTime() float64 {
	maxEnd := 0.0
	for i := range t.Segments {
		if t.Segments[i].EndTime > maxEnd {
			maxEnd = t.Segments[i].EndTime
		}
	}
	return maxEnd
}

// SegmentByID returns a pointer to the segment with the given id.
func (t *Timeline) SegmentByID(id string) (*TimelineSegment, bool) {
	for i := range t.Segments {
		if t.Segments[i].ID == id {
			return &t.Segments[i], true
		}
	}
	return nil, false
}

// Validate checks every segment invariant plus the timeline-level duration
// and continuity invariants. Violations are reported, never silently fixed.
func (t *Timeline) Validate() error {
	for i := range t.Segments {
		if err := t.Segments[i].Validate(); err != nil {
			return err
		}
	}
	if len(t.Segments) > 0 {
		if diff := math.Abs(t.TotalDuration - t.MaxEndTime()); diff > ContinuityEpsilon {
			return fmt.Errorf("total_duration %.3f does not match max end_time %.3f",
				t.TotalDuration, t.MaxEndTime())
		}
	} else if t.TotalDuration != 0 {
		return fmt.Errorf("empty timeline has non-zero total_duration %.3f", t.TotalDuration)
	}
	return t.ValidateContinuity()
}

// ValidateContinuity checks that no two segments overlap in time by more
// than the tolerance. Gaps are permitted (the renderer holds the last frame),
// overlaps are composition defects.
func (t *Timeline) ValidateContinuity() error {
	if len(t.Segments) < 2 {
		return nil
	}
	ordered := make([]TimelineSegment, len(t.Segments))
	copy(ordered, t.Segments)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].StartTime < ordered[j].StartTime })

	for i := 1; i < len(ordered); i++ {
		prev, curr := ordered[i-1], ordered[i]
		if overlap := prev.EndTime - curr.StartTime; overlap > ContinuityEpsilon {
			return fmt.Errorf("segments %s and %s overlap by %.3fs at t=%.3f",
				prev.ID, curr.ID, overlap, curr.StartTime)
		}
	}
	return nil
}

// Relayout walks the segments in playback order and lays each one out
// immediately after its predecessor, then recomputes the total duration.
// No segment keeps a stale start time after an edit.
func (t *Timeline) Relayout() {
	current := 0.0
	for i := range t.Segments {
		seg := &t.Segments[i]
		seg.StartTime = current
		seg.EndTime = current + seg.Duration
		current = seg.EndTime
	}
	t.TotalDuration = t.MaxEndTime()
}
