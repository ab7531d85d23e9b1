package models

// EditCommands is one batch of structured timeline edits, produced per
// refinement iteration and discarded after application. Target ids refer to
// timeline segment ids; unknown ids are skipped by the applier.
type EditCommands struct {
	RemoveSegments    []string                  `json:"remove_segments,omitempty"`
	Reorder           []string                  `json:"reorder_segments,omitempty"`
	AdjustDurations   map[string]float64        `json:"adjust_durations,omitempty"` // id -> delta seconds
	ChangeTransitions map[string]TransitionType `json:"change_transitions,omitempty"`
	AddEffects        map[string][]string       `json:"add_effects,omitempty"`
}

// IsEmpty reports whether the batch contains no commands at all.
func (c *EditCommands) IsEmpty() bool {
	return len(c.RemoveSegments) == 0 &&
		len(c.Reorder) == 0 &&
		len(c.AdjustDurations) == 0 &&
		len(c.ChangeTransitions) == 0 &&
		len(c.AddEffects) == 0
}

// Count returns the number of individual commands across all kinds.
func (c *EditCommands) Count() int {
	return len(c.RemoveSegments) + len(c.Reorder) + len(c.AdjustDurations) +
		len(c.ChangeTransitions) + len(c.AddEffects)
}

// Recommendation values returned by the evaluation collaborator.
const (
	RecommendationAccept      = "accept"
	RecommendationMinorEdits  = "minor_adjustments"
	RecommendationMajorRework = "major_rework"
)

// SpecificEdit is one targeted issue the evaluator found, anchored to a
// timeline position.
type SpecificEdit struct {
	Timestamp  string `json:"timestamp"` // e.g. "0:12" or "12.5"
	SegmentID  string `json:"segment_id,omitempty"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// EvaluationResult is the structured verdict from the evaluation
// collaborator on a rendered video.
type EvaluationResult struct {
	Score          float64        `json:"overall_score"` // 0..10
	Recommendation string         `json:"recommendation"`
	Strengths      []string       `json:"strengths,omitempty"`
	SpecificEdits  []SpecificEdit `json:"specific_edits,omitempty"`
	Suggestions    []string       `json:"creative_suggestions,omitempty"`
}

// Accepted reports whether the verdict clears the given acceptance score.
func (e *EvaluationResult) Accepted(minScore float64) bool {
	return e.Score >= minScore && e.Recommendation == RecommendationAccept
}
