// Package refine turns evaluation critiques and user feedback into
// structured edit commands. Translation is deterministic and rule-based:
// the LLM critic supplies the judgment, this package only resolves it
// against the current timeline.
package refine

import (
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/memoryreel/memoryreel/internal/models"
)

var (
	durationRe       = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*seconds?`)
	userDurationRe   = regexp.MustCompile(`make\s+(?:the\s+)?(?:clip|segment)\s+at\s+([\d:.]+)\s+(\d+(?:\.\d+)?)\s*seconds?`)
	userTransitionRe = regexp.MustCompile(`use\s+(\w+(?:\s+\w+)?)\s+(?:transition\s+)?at\s+([\d:.]+)`)
	userRemoveRe     = regexp.MustCompile(`(?:remove|delete)\s+(?:the\s+)?(?:clip|segment)\s+at\s+([\d:.]+)`)
)

// transitionKeywords maps critique phrases to transition types. Longer
// phrases are checked before their prefixes ("slide left" before nothing
// else matches "slide").
var transitionKeywords = []struct {
	phrase     string
	transition models.TransitionType
}{
	{"crossfade", models.TransitionCrossfade},
	{"slide left", models.TransitionSlideLeft},
	{"slide right", models.TransitionSlideRight},
	{"zoom in", models.TransitionZoomIn},
	{"zoom out", models.TransitionZoomOut},
	{"fade", models.TransitionFadeToBlack},
	{"cut", models.TransitionCut},
}

// effectKeywords maps critique phrases to effect names.
var effectKeywords = []struct {
	phrase string
	effect string
}{
	{"slow motion", "slow_motion"},
	{"speed up", "speed_up"},
	{"zoom", "zoom"},
	{"pan", "pan"},
	{"color", "color_correction"},
	{"brightness", "brightness_adjust"},
}

// Translator converts evaluation results into edit command batches resolved
// against a concrete timeline.
type Translator struct{}

// NewTranslator creates a translator.
func NewTranslator() *Translator {
	return &Translator{}
}

// Translate converts the critic's specific edits and any user feedback into
// one edit batch. Edits whose timestamps resolve to no segment are dropped
// with a log line rather than failing the whole batch.
func (t *Translator) Translate(
	evaluation *models.EvaluationResult,
	userFeedback string,
	timeline *models.Timeline,
) models.EditCommands {
	commands := models.EditCommands{
		AdjustDurations:   map[string]float64{},
		ChangeTransitions: map[string]models.TransitionType{},
		AddEffects:        map[string][]string{},
	}

	if evaluation != nil {
		for _, edit := range evaluation.SpecificEdits {
			t.translateSpecificEdit(edit, timeline, &commands)
		}
	}
	if userFeedback != "" {
		t.translateUserFeedback(userFeedback, timeline, &commands)
	}

	return commands
}

// translateSpecificEdit resolves one critique item to a segment and applies
// the duration, transition, and effect rules to it.
func (t *Translator) translateSpecificEdit(
	edit models.SpecificEdit,
	timeline *models.Timeline,
	commands *models.EditCommands,
) {
	segID := t.resolveSegment(edit.SegmentID, edit.Timestamp, timeline)
	if segID == "" {
		log.Printf("⚠️  Dropping edit with unresolvable target (timestamp %q): %s", edit.Timestamp, edit.Issue)
		return
	}

	issue := strings.ToLower(edit.Issue)
	suggestion := strings.ToLower(edit.Suggestion)

	if strings.Contains(issue, "too short") || strings.Contains(suggestion, "extend") {
		if delta, ok := extractSeconds(suggestion); ok {
			commands.AdjustDurations[segID] = delta
		}
	} else if strings.Contains(issue, "too long") || strings.Contains(suggestion, "shorten") {
		if delta, ok := extractSeconds(suggestion); ok {
			commands.AdjustDurations[segID] = -delta
		}
	}

	for _, kw := range transitionKeywords {
		if strings.Contains(suggestion, kw.phrase) {
			commands.ChangeTransitions[segID] = kw.transition
			break
		}
	}

	for _, kw := range effectKeywords {
		if strings.Contains(suggestion, kw.phrase) {
			if !containsString(commands.AddEffects[segID], kw.effect) {
				commands.AddEffects[segID] = append(commands.AddEffects[segID], kw.effect)
			}
		}
	}

	if strings.Contains(suggestion, "remove") || strings.Contains(suggestion, "delete") {
		if !containsString(commands.RemoveSegments, segID) {
			commands.RemoveSegments = append(commands.RemoveSegments, segID)
		}
	}
}

// translateUserFeedback parses natural-language requests like
// "make the clip at 0:15 3 seconds" or "use crossfade at 12.5".
func (t *Translator) translateUserFeedback(
	feedback string,
	timeline *models.Timeline,
	commands *models.EditCommands,
) {
	lower := strings.ToLower(feedback)

	for _, m := range userDurationRe.FindAllStringSubmatch(lower, -1) {
		seg := t.segmentAtTimestamp(m[1], timeline)
		if seg == nil {
			continue
		}
		target, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		// The user states an absolute length; the applier takes deltas.
		commands.AdjustDurations[seg.ID] = target - seg.Duration
	}

	for _, m := range userTransitionRe.FindAllStringSubmatch(lower, -1) {
		seg := t.segmentAtTimestamp(m[2], timeline)
		if seg == nil {
			continue
		}
		for _, kw := range transitionKeywords {
			if m[1] == kw.phrase {
				commands.ChangeTransitions[seg.ID] = kw.transition
				break
			}
		}
	}

	for _, m := range userRemoveRe.FindAllStringSubmatch(lower, -1) {
		seg := t.segmentAtTimestamp(m[1], timeline)
		if seg == nil {
			continue
		}
		if !containsString(commands.RemoveSegments, seg.ID) {
			commands.RemoveSegments = append(commands.RemoveSegments, seg.ID)
		}
	}
}

// resolveSegment prefers an explicit segment id when the critic supplied a
// real one, and falls back to locating the segment containing the timestamp.
func (t *Translator) resolveSegment(segmentID, timestamp string, timeline *models.Timeline) string {
	if segmentID != "" {
		if _, ok := timeline.SegmentByID(segmentID); ok {
			return segmentID
		}
	}
	if seg := t.segmentAtTimestamp(timestamp, timeline); seg != nil {
		return seg.ID
	}
	return ""
}

// segmentAtTimestamp finds the segment whose span contains the given time.
// Timestamps may be "MM:SS", plain seconds ("12.5"), or a range ("0:10-0:15")
// of which only the start is used.
func (t *Translator) segmentAtTimestamp(timestamp string, timeline *models.Timeline) *models.TimelineSegment {
	seconds, ok := parseTimestamp(timestamp)
	if !ok {
		return nil
	}
	for i := range timeline.Segments {
		seg := &timeline.Segments[i]
		if seconds >= seg.StartTime && seconds < seg.EndTime {
			return seg
		}
	}
	// A timestamp exactly at the end of the movie means the last segment.
	if n := len(timeline.Segments); n > 0 && seconds == timeline.Segments[n-1].EndTime {
		return &timeline.Segments[n-1]
	}
	return nil
}

// parseTimestamp accepts "MM:SS", "M:SS.S", a bare seconds value, or a range
// where only the start matters.
func parseTimestamp(timestamp string) (float64, bool) {
	start := timestamp
	if idx := strings.Index(start, "-"); idx >= 0 {
		start = start[:idx]
	}
	start = strings.TrimSpace(start)

	if strings.Contains(start, ":") {
		parts := strings.SplitN(start, ":", 2)
		minutes, err := strconv.Atoi(parts[0])
		if err != nil {
			return 0, false
		}
		secs, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0, false
		}
		return float64(minutes)*60 + secs, true
	}

	secs, err := strconv.ParseFloat(start, 64)
	if err != nil {
		return 0, false
	}
	return secs, true
}

// extractSeconds pulls the first "N seconds" figure out of a suggestion.
func extractSeconds(text string) (float64, bool) {
	m := durationRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
