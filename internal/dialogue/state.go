// Package dialogue implements the Socratic tutoring state machine: an
// ordered progression of guiding question types that steers a learner
// toward discovering an idea instead of being told it.
package dialogue

import (
	"time"

	"github.com/google/uuid"
)

// Status is the dialogue lifecycle state.
type Status string

const (
	StatusNotStarted  Status = "not_started"
	StatusQuestioning Status = "questioning"
	StatusDiscovery   Status = "discovery"
	StatusExhausted   Status = "exhausted"
	StatusEnded       Status = "ended"
)

// QuestionType is a rung on the Socratic progression ladder.
type QuestionType string

const (
	QuestionClarifying        QuestionType = "clarifying"
	QuestionProbingAssumption QuestionType = "probing-assumption"
	QuestionHypothesisTesting QuestionType = "hypothesis-testing"
	QuestionGeneralizing      QuestionType = "generalizing"
)

// progression is the ordered ladder of question types.
var progression = []QuestionType{
	QuestionClarifying,
	QuestionProbingAssumption,
	QuestionHypothesisTesting,
	QuestionGeneralizing,
}

// Understanding is the externally judged comprehension level of one
// student response. The engine never does language understanding itself.
type Understanding int

const (
	UnderstandingNone Understanding = iota
	UnderstandingPartial
	UnderstandingAdvancing
	UnderstandingComplete
)

// Analysis is the caller-supplied judgment of one student response,
// typically produced by the external text generator.
type Analysis struct {
	Understanding           Understanding
	DiscoveryMade           bool
	DiscoveryDescription    string
	MisconceptionsAddressed []string
	// SelfAdvanced is true when the student's own reasoning moved the
	// dialogue forward rather than needing a more directive question.
	SelfAdvanced bool
}

// Exchange is one tutor-question / student-response turn. History is
// append-only: written exchanges are never edited.
type Exchange struct {
	QuestionType    QuestionType
	TutorQuestion   string
	StudentResponse string
	Understanding   Understanding
	LedToDiscovery  bool
	SelfAdvanced    bool
	Timestamp       time.Time
}

// EndReason explains why the engine stopped asking questions.
type EndReason string

const (
	ReasonDiscovery               EndReason = "discovery"
	ReasonMisconceptionsAddressed EndReason = "misconceptions_addressed"
	ReasonBudgetExhausted         EndReason = "budget_exhausted"
)

// DefaultMaxExchanges is the default exchange budget.
const DefaultMaxExchanges = 6

// State carries one active Socratic session. Owned by a single caller;
// concurrent advancement of the same state is a caller bug.
type State struct {
	ID                   string
	SkillID              string
	TargetConcept        string
	Misconceptions       []string
	Addressed            map[string]bool
	Exchanges            []Exchange
	Status               Status
	DiscoveryMade        bool
	DiscoveryDescription string
	EndReason            EndReason
	MaxExchanges         int
	StartedAt            time.Time
}

// Start creates a fresh dialogue state for a skill.
func Start(skillID, targetConcept string, misconceptions []string, now time.Time) State {
	return State{
		ID:             uuid.NewString(),
		SkillID:        skillID,
		TargetConcept:  targetConcept,
		Misconceptions: misconceptions,
		Addressed:      make(map[string]bool),
		Status:         StatusNotStarted,
		MaxExchanges:   DefaultMaxExchanges,
		StartedAt:      now,
	}
}

// FirstQuestionType is what the engine opens with.
func FirstQuestionType() QuestionType {
	return progression[0]
}

// misconceptionsDone reports whether every tracked misconception has been
// addressed. Sessions with no tracked misconceptions never stop on this.
func (s *State) misconceptionsDone() bool {
	if len(s.Misconceptions) == 0 {
		return false
	}
	for _, m := range s.Misconceptions {
		if !s.Addressed[m] {
			return false
		}
	}
	return true
}
