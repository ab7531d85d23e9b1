package compose

import (
	"fmt"

	"github.com/memoryreel/memoryreel/internal/models"
)

// Applier mutates an existing timeline in place from a structured edit
// batch. Command kinds apply in a fixed order — remove, reorder, adjust
// duration, change transition, add effects — because removal and reordering
// change identity and position and must land before edits that reference
// them. Unknown target ids are skipped: they may refer to segments removed
// earlier in the same batch.
type Applier struct {
	minClipSeconds float64
}

// NewApplier creates an applier; duration adjustments never shrink a segment
// below minClipSeconds.
func NewApplier(minClipSeconds float64) *Applier {
	return &Applier{minClipSeconds: minClipSeconds}
}

// Apply executes the batch and recomputes every start time and the total
// duration by laying segments out back to back. An empty batch leaves the
// timeline untouched. The rebuilt timeline is validated before returning;
// a violation means the applier itself has a bug and is reported loudly.
func (a *Applier) Apply(timeline *models.Timeline, batch models.EditCommands) error {
	if timeline == nil {
		return fmt.Errorf("cannot apply edits: timeline is nil")
	}
	if batch.IsEmpty() {
		return nil
	}

	a.removeSegments(timeline, batch.RemoveSegments)
	a.reorderSegments(timeline, batch.Reorder)
	a.adjustDurations(timeline, batch.AdjustDurations)
	a.changeTransitions(timeline, batch.ChangeTransitions)
	a.addEffects(timeline, batch.AddEffects)

	timeline.Relayout()
	timeline.Version++

	if err := timeline.Validate(); err != nil {
		return fmt.Errorf("timeline invalid after edit application: %w", err)
	}
	return nil
}

func (a *Applier) removeSegments(t *models.Timeline, ids []string) {
	if len(ids) == 0 {
		return
	}
	drop := make(map[string]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	kept := t.Segments[:0]
	for _, seg := range t.Segments {
		if !drop[seg.ID] {
			kept = append(kept, seg)
		}
	}
	t.Segments = kept
}

// reorderSegments places the listed segments first, in the given order.
// Segments the order does not mention keep their prior relative order and
// follow the listed ones; ids that match nothing are skipped.
func (a *Applier) reorderSegments(t *models.Timeline, order []string) {
	if len(order) == 0 {
		return
	}

	byID := make(map[string]models.TimelineSegment, len(t.Segments))
	for _, seg := range t.Segments {
		byID[seg.ID] = seg
	}

	placed := make(map[string]bool, len(order))
	reordered := make([]models.TimelineSegment, 0, len(t.Segments))
	for _, id := range order {
		seg, ok := byID[id]
		if !ok || placed[id] {
			continue
		}
		reordered = append(reordered, seg)
		placed[id] = true
	}
	for _, seg := range t.Segments {
		if !placed[seg.ID] {
			reordered = append(reordered, seg)
		}
	}
	t.Segments = reordered
}

func (a *Applier) adjustDurations(t *models.Timeline, deltas map[string]float64) {
	for id, delta := range deltas {
		seg, ok := t.SegmentByID(id)
		if !ok {
			continue
		}
		seg.Duration += delta
		if seg.Duration < a.minClipSeconds {
			seg.Duration = a.minClipSeconds
		}
	}
}

func (a *Applier) changeTransitions(t *models.Timeline, changes map[string]models.TransitionType) {
	for id, transition := range changes {
		seg, ok := t.SegmentByID(id)
		if !ok {
			continue
		}
		seg.TransitionOut = transition
	}
}

func (a *Applier) addEffects(t *models.Timeline, additions map[string][]string) {
	for id, effects := range additions {
		seg, ok := t.SegmentByID(id)
		if !ok {
			continue
		}
		for _, effect := range effects {
			if !containsString(seg.Effects, effect) {
				seg.Effects = append(seg.Effects, effect)
			}
		}
	}
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
