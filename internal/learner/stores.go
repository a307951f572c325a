package learner

import (
	"context"

	"github.com/zpdlab/mentora/internal/bkt"
	"github.com/zpdlab/mentora/internal/skillgraph"
)

// GraphStore reads the skill graph. Implementations must report edge
// strength (required vs recommended) faithfully; readiness depends on it.
type GraphStore interface {
	// GetSkill returns the skill, or a zero Skill with nil error when no
	// such skill exists. A non-nil error is a real store failure, never
	// absence.
	GetSkill(ctx context.Context, id string) (skillgraph.Skill, error)
	ListSkills(ctx context.Context, notebookID string) ([]skillgraph.Skill, error)
	ListEdges(ctx context.Context, notebookID string) ([]skillgraph.Edge, error)
}

// StateStore persists learner skill state and the attempt log.
type StateStore interface {
	// GetState returns the state for the pair, or (nil, nil) if absent.
	GetState(ctx context.Context, learnerID, skillID string) (*LearnerSkillState, error)
	ListStates(ctx context.Context, learnerID, notebookID string) ([]*LearnerSkillState, error)

	// SaveAttempt upserts the state and appends the attempt in one
	// transaction. Replaying an attempt ID already in the log must leave
	// both untouched.
	SaveAttempt(ctx context.Context, st *LearnerSkillState, att Attempt) error
	HasAttempt(ctx context.Context, learnerID, skillID, attemptID string) (bool, error)

	// ListSkillAttempts returns every attempt on a skill across learners,
	// ordered by learner then time. Fitting input.
	ListSkillAttempts(ctx context.Context, skillID string) ([]Attempt, error)

	// DeleteStates removes a learner's states and attempts for a
	// notebook. The explicit progress reset; nothing else deletes state.
	DeleteStates(ctx context.Context, learnerID, notebookID string) error

	// Per-skill fitted BKT parameters; (nil, nil) when the skill still
	// runs on global defaults.
	GetSkillParams(ctx context.Context, skillID string) (*bkt.Params, error)
	PutSkillParams(ctx context.Context, skillID string, p bkt.Params) error
}
