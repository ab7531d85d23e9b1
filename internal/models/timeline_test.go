package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSegment(id string, start, duration float64) TimelineSegment {
	return TimelineSegment{
		ID:          id,
		MediaItemID: "m-" + id,
		StartTime:   start,
		EndTime:     start + duration,
		Duration:    duration,
		SpeedFactor: 1,
		Volume:      1,
	}
}

func TestSegmentValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *TimelineSegment)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(s *TimelineSegment) {},
		},
		{
			name:    "missing media item",
			mutate:  func(s *TimelineSegment) { s.MediaItemID = "" },
			wantErr: "missing media item",
		},
		{
			name:    "end before start",
			mutate:  func(s *TimelineSegment) { s.EndTime = s.StartTime },
			wantErr: "end_time",
		},
		{
			name:    "duration mismatch",
			mutate:  func(s *TimelineSegment) { s.Duration = 99 },
			wantErr: "does not match",
		},
		{
			name:   "duration mismatch within tolerance",
			mutate: func(s *TimelineSegment) { s.Duration += 0.0005 },
		},
		{
			name:    "out point before in point",
			mutate:  func(s *TimelineSegment) { s.InPoint = 5; s.OutPoint = 3 },
			wantErr: "out_point",
		},
		{
			name:    "transition duration out of range",
			mutate:  func(s *TimelineSegment) { s.TransitionDuration = 2.5 },
			wantErr: "transition duration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seg := validSegment("s1", 0, 2)
			tt.mutate(&seg)
			err := seg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestTimelineValidateTotalDuration(t *testing.T) {
	timeline := &Timeline{
		Segments:      []TimelineSegment{validSegment("s1", 0, 2), validSegment("s2", 2, 3)},
		TotalDuration: 5,
	}
	assert.NoError(t, timeline.Validate())

	timeline.TotalDuration = 7
	assert.Error(t, timeline.Validate())
}

func TestTimelineValidateEmpty(t *testing.T) {
	empty := &Timeline{}
	assert.NoError(t, empty.Validate())

	empty.TotalDuration = 3
	assert.Error(t, empty.Validate())
}

func TestValidateContinuityRejectsOverlap(t *testing.T) {
	timeline := &Timeline{
		Segments: []TimelineSegment{
			validSegment("s1", 0, 3),
			validSegment("s2", 2, 2), // overlaps s1 by 1s
		},
		TotalDuration: 4,
	}

	err := timeline.ValidateContinuity()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "overlap")
}

func TestValidateContinuityAllowsGaps(t *testing.T) {
	timeline := &Timeline{
		Segments: []TimelineSegment{
			validSegment("s1", 0, 2),
			validSegment("s2", 3, 2), // 1s gap is fine
		},
		TotalDuration: 5,
	}

	assert.NoError(t, timeline.ValidateContinuity())
}

func TestValidateContinuityUnorderedSegments(t *testing.T) {
	// Continuity is judged on time order, not slice order.
	timeline := &Timeline{
		Segments: []TimelineSegment{
			validSegment("s2", 2, 2),
			validSegment("s1", 0, 2),
		},
		TotalDuration: 4,
	}

	assert.NoError(t, timeline.ValidateContinuity())
}

func TestRelayout(t *testing.T) {
	timeline := &Timeline{
		Segments: []TimelineSegment{
			validSegment("s1", 10, 2),
			validSegment("s2", 99, 3),
		},
	}

	timeline.Relayout()

	assert.InDelta(t, 0.0, timeline.Segments[0].StartTime, 1e-9)
	assert.InDelta(t, 2.0, timeline.Segments[0].EndTime, 1e-9)
	assert.InDelta(t, 2.0, timeline.Segments[1].StartTime, 1e-9)
	assert.InDelta(t, 5.0, timeline.Segments[1].EndTime, 1e-9)
	assert.InDelta(t, 5.0, timeline.TotalDuration, 1e-9)
}

func TestSegmentByID(t *testing.T) {
	timeline := &Timeline{Segments: []TimelineSegment{validSegment("s1", 0, 2)}}

	seg, ok := timeline.SegmentByID("s1")
	require.True(t, ok)
	seg.Duration = 9 // pointer into the slice, not a copy
	assert.InDelta(t, 9.0, timeline.Segments[0].Duration, 1e-9)

	_, ok = timeline.SegmentByID("missing")
	assert.False(t, ok)
}
