package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Phase is the refinement loop's processing phase.
type Phase string

const (
	PhaseInitialized Phase = "initialized"
	PhaseAnalyzing   Phase = "analyzing"
	PhaseComposing   Phase = "composing"
	PhaseRendering   Phase = "rendering"
	PhaseEvaluating  Phase = "evaluating"
	PhaseRefining    Phase = "refining"
	PhaseCompleted   Phase = "completed"
	PhaseError       Phase = "error"
)

// validTransitions encodes the state machine: initialized -> analyzing ->
// composing -> rendering -> evaluating -> {refining|completed|error}, with
// refining looping back to rendering and evaluating looping back to
// composing on major rework. Any phase may fail into error.
var validTransitions = map[Phase][]Phase{
	PhaseInitialized: {PhaseAnalyzing},
	PhaseAnalyzing:   {PhaseComposing},
	PhaseComposing:   {PhaseRendering},
	PhaseRendering:   {PhaseEvaluating, PhaseCompleted},
	PhaseEvaluating:  {PhaseCompleted, PhaseComposing, PhaseRefining},
	PhaseRefining:    {PhaseRendering},
}

// PhaseTransition is one entry of the append-only phase history.
type PhaseTransition struct {
	FromPhase Phase     `json:"from_phase"`
	ToPhase   Phase     `json:"to_phase"`
	Timestamp time.Time `json:"timestamp"`
}

// ProjectStatus is the loop's externally visible processing state. Mutated
// exclusively by the refinement engine; terminal at completed or error.
type ProjectStatus struct {
	Phase          Phase             `json:"phase"`
	Progress       float64           `json:"progress"` // 0..100
	CurrentVersion int               `json:"current_version"`
	Error          string            `json:"error,omitempty"`
	History        []PhaseTransition `json:"phase_history"`
}

// NewProjectStatus returns a status at the initialized phase.
func NewProjectStatus() ProjectStatus {
	return ProjectStatus{Phase: PhaseInitialized}
}

// Transition moves the status to a new phase, updating phase and progress
// together and appending to the history. Illegal transitions are rejected so
// invalid phase sequences never become representable state.
func (s *ProjectStatus) Transition(to Phase, progress float64) error {
	if to != PhaseError && !s.canTransition(to) {
		return fmt.Errorf("illegal phase transition %s -> %s", s.Phase, to)
	}
	s.History = append(s.History, PhaseTransition{
		FromPhase: s.Phase,
		ToPhase:   to,
		Timestamp: time.Now().UTC(),
	})
	s.Phase = to
	s.Progress = progress
	return nil
}

func (s *ProjectStatus) canTransition(to Phase) bool {
	for _, allowed := range validTransitions[s.Phase] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the project reached a final phase.
func (s *ProjectStatus) IsTerminal() bool {
	return s.Phase == PhaseCompleted || s.Phase == PhaseError
}

// UserInputs are the caller-provided request parameters.
type UserInputs struct {
	Media          []MediaItem `json:"media"`
	Prompt         string      `json:"initial_prompt"`
	TargetDuration float64     `json:"target_duration"` // seconds
	Style          string      `json:"style"`           // smooth, dynamic, cut
}

// VersionRecord captures one rendered output version.
type VersionRecord struct {
	Version    int       `json:"version"`
	Timestamp  time.Time `json:"timestamp"`
	OutputPath string    `json:"output_path"`
	Preview    bool      `json:"preview"`
	Score      float64   `json:"score,omitempty"`
}

// ProjectState is the complete serializable state of one memory movie
// project. It is persisted after every phase transition so a crashed process
// can resume from the last committed phase.
type ProjectState struct {
	ProjectID string    `json:"project_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Inputs       UserInputs        `json:"user_inputs"`
	MusicProfile *MusicProfile     `json:"music_profile,omitempty"`
	Timeline     *Timeline         `json:"timeline,omitempty"`
	Evaluation   *EvaluationResult `json:"evaluation_results,omitempty"`
	Status       ProjectStatus     `json:"status"`

	RenderedOutputs      []string        `json:"rendered_outputs,omitempty"`
	Versions             []VersionRecord `json:"versions,omitempty"`
	RefinementIterations int             `json:"refinement_iterations"`
}

// NewProjectState initializes a project for the given inputs.
func NewProjectState(inputs UserInputs) *ProjectState {
	now := time.Now().UTC()
	return &ProjectState{
		ProjectID: uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Inputs:    inputs,
		Status:    NewProjectStatus(),
	}
}

// Touch updates the last-modified timestamp.
func (p *ProjectState) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// MediaByID finds a media item in the pool.
func (p *ProjectState) MediaByID(id string) (*MediaItem, bool) {
	for i := range p.Inputs.Media {
		if p.Inputs.Media[i].ID == id {
			return &p.Inputs.Media[i], true
		}
	}
	return nil, false
}

// MusicItem returns the first audio item in the pool, which serves as the
// soundtrack when present.
func (p *ProjectState) MusicItem() (*MediaItem, bool) {
	for i := range p.Inputs.Media {
		if p.Inputs.Media[i].Type == MediaTypeAudio {
			return &p.Inputs.Media[i], true
		}
	}
	return nil, false
}

// VisualPool returns the image and video items in pool order.
func (p *ProjectState) VisualPool() []MediaItem {
	pool := make([]MediaItem, 0, len(p.Inputs.Media))
	for _, m := range p.Inputs.Media {
		if m.Type == MediaTypeImage || m.Type == MediaTypeVideo {
			pool = append(pool, m)
		}
	}
	return pool
}

// LatestOutput returns the most recent rendered output path.
func (p *ProjectState) LatestOutput() (string, bool) {
	if len(p.RenderedOutputs) == 0 {
		return "", false
	}
	return p.RenderedOutputs[len(p.RenderedOutputs)-1], true
}

// AddVersion appends a version record for a rendered output and returns the
// assigned version number.
func (p *ProjectState) AddVersion(outputPath string, preview bool) int {
	version := len(p.Versions) + 1
	p.Versions = append(p.Versions, VersionRecord{
		Version:    version,
		Timestamp:  time.Now().UTC(),
		OutputPath: outputPath,
		Preview:    preview,
	})
	p.RenderedOutputs = append(p.RenderedOutputs, outputPath)
	p.Status.CurrentVersion = version
	return version
}
