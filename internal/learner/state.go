package learner

import (
	"time"

	"github.com/zpdlab/mentora/internal/bkt"
	"github.com/zpdlab/mentora/internal/spacedrep"
)

// MasteryStatus is derived from belief against the skill's threshold.
type MasteryStatus string

const (
	StatusNotStarted MasteryStatus = "not-started"
	StatusInProgress MasteryStatus = "in-progress"
	StatusMastered   MasteryStatus = "mastered"
)

// LearnerSkillState is the per-(learner, skill) record: BKT belief and
// parameters, SM-2 review schedule, and scaffolding. Created on first
// practice attempt, mutated only by recorded attempts, deleted only by an
// explicit progress reset.
type LearnerSkillState struct {
	LearnerID  string
	SkillID    string
	NotebookID string

	Params   bkt.Params
	PMastery float64

	Review spacedrep.State

	ScaffoldLevel    int
	ConsecutiveWrong int
	TotalAttempts    int
	CorrectCount     int

	UpdatedAt time.Time
}

// Status derives the mastery status against the given threshold.
func (s *LearnerSkillState) Status(threshold float64) MasteryStatus {
	switch {
	case s.TotalAttempts == 0:
		return StatusNotStarted
	case s.PMastery >= threshold:
		return StatusMastered
	default:
		return StatusInProgress
	}
}

// Attempt is one practice event, append-only. The ID makes write retries
// idempotent: replaying an already-recorded attempt is a no-op.
type Attempt struct {
	ID             string
	LearnerID      string
	SkillID        string
	NotebookID     string
	Correct        bool
	ResponseTimeMs int
	ExpectedTimeMs int
	Grade          spacedrep.Grade
	PMasteryAfter  float64
	// Source distinguishes regular practice from dialogue-driven signals.
	Source string
	At     time.Time
}

// Attempt sources.
const (
	SourcePractice = "practice"
	SourceDialogue = "dialogue"
)
