// Package store persists the skill graph and learner state in SQLite
// through GORM. It implements the learner package's store interfaces.
package store

import (
	"time"

	"github.com/zpdlab/mentora/internal/bkt"
	"github.com/zpdlab/mentora/internal/learner"
	"github.com/zpdlab/mentora/internal/skillgraph"
	"github.com/zpdlab/mentora/internal/spacedrep"
)

type SkillRow struct {
	ID               string `gorm:"primaryKey"`
	Name             string
	Description      string
	BloomLevel       int
	MasteryThreshold float64
	EstimatedMins    int
	NotebookID       string `gorm:"index"`
}

func (SkillRow) TableName() string { return "skills" }

type EdgeRow struct {
	FromID     string `gorm:"primaryKey;column:from_id"`
	ToID       string `gorm:"primaryKey;column:to_id"`
	Strength   string
	NotebookID string `gorm:"index"`
}

func (EdgeRow) TableName() string { return "edges" }

type LearnerSkillStateRow struct {
	LearnerID  string `gorm:"primaryKey"`
	SkillID    string `gorm:"primaryKey"`
	NotebookID string `gorm:"index"`

	PInit    float64
	PLearn   float64
	PSlip    float64
	PGuess   float64
	PMastery float64

	EasinessFactor  float64
	RepetitionCount int
	IntervalDays    int
	DueAt           time.Time
	LastReviewedAt  time.Time

	ScaffoldLevel    int
	ConsecutiveWrong int
	TotalAttempts    int
	CorrectCount     int

	UpdatedAt time.Time
}

func (LearnerSkillStateRow) TableName() string { return "learner_skill_states" }

type AttemptRow struct {
	RowID uint `gorm:"primaryKey;autoIncrement"`

	AttemptID string `gorm:"uniqueIndex:uq_attempt,priority:3"`
	LearnerID string `gorm:"uniqueIndex:uq_attempt,priority:1;index:idx_attempt_skill,priority:2"`
	SkillID   string `gorm:"uniqueIndex:uq_attempt,priority:2;index:idx_attempt_skill,priority:1"`

	NotebookID     string `gorm:"index"`
	Correct        bool
	ResponseTimeMs int
	ExpectedTimeMs int
	Grade          int
	PMasteryAfter  float64
	Source         string
	At             time.Time
}

func (AttemptRow) TableName() string { return "attempts" }

type SkillParamsRow struct {
	SkillID   string `gorm:"primaryKey"`
	PInit     float64
	PLearn    float64
	PSlip     float64
	PGuess    float64
	UpdatedAt time.Time
}

func (SkillParamsRow) TableName() string { return "skill_params" }

func skillFromRow(r SkillRow) skillgraph.Skill {
	return skillgraph.Skill{
		ID:               r.ID,
		Name:             r.Name,
		Description:      r.Description,
		BloomLevel:       r.BloomLevel,
		MasteryThreshold: r.MasteryThreshold,
		EstimatedMins:    r.EstimatedMins,
		NotebookID:       r.NotebookID,
	}
}

func rowFromSkill(s skillgraph.Skill) SkillRow {
	return SkillRow{
		ID:               s.ID,
		Name:             s.Name,
		Description:      s.Description,
		BloomLevel:       s.BloomLevel,
		MasteryThreshold: s.MasteryThreshold,
		EstimatedMins:    s.EstimatedMins,
		NotebookID:       s.NotebookID,
	}
}

func edgeFromRow(r EdgeRow) skillgraph.Edge {
	return skillgraph.Edge{
		From:     r.FromID,
		To:       r.ToID,
		Strength: skillgraph.EdgeStrength(r.Strength),
	}
}

func stateFromRow(r LearnerSkillStateRow) *learner.LearnerSkillState {
	return &learner.LearnerSkillState{
		LearnerID:  r.LearnerID,
		SkillID:    r.SkillID,
		NotebookID: r.NotebookID,
		Params: bkt.Params{
			PInit:  r.PInit,
			PLearn: r.PLearn,
			PSlip:  r.PSlip,
			PGuess: r.PGuess,
		},
		PMastery: r.PMastery,
		Review: spacedrep.State{
			EasinessFactor:  r.EasinessFactor,
			RepetitionCount: r.RepetitionCount,
			IntervalDays:    r.IntervalDays,
			DueAt:           r.DueAt,
			LastReviewedAt:  r.LastReviewedAt,
		},
		ScaffoldLevel:    r.ScaffoldLevel,
		ConsecutiveWrong: r.ConsecutiveWrong,
		TotalAttempts:    r.TotalAttempts,
		CorrectCount:     r.CorrectCount,
		UpdatedAt:        r.UpdatedAt,
	}
}

func rowFromState(s *learner.LearnerSkillState) LearnerSkillStateRow {
	return LearnerSkillStateRow{
		LearnerID:  s.LearnerID,
		SkillID:    s.SkillID,
		NotebookID: s.NotebookID,

		PInit:    s.Params.PInit,
		PLearn:   s.Params.PLearn,
		PSlip:    s.Params.PSlip,
		PGuess:   s.Params.PGuess,
		PMastery: s.PMastery,

		EasinessFactor:  s.Review.EasinessFactor,
		RepetitionCount: s.Review.RepetitionCount,
		IntervalDays:    s.Review.IntervalDays,
		DueAt:           s.Review.DueAt,
		LastReviewedAt:  s.Review.LastReviewedAt,

		ScaffoldLevel:    s.ScaffoldLevel,
		ConsecutiveWrong: s.ConsecutiveWrong,
		TotalAttempts:    s.TotalAttempts,
		CorrectCount:     s.CorrectCount,

		UpdatedAt: s.UpdatedAt,
	}
}

func attemptFromRow(r AttemptRow) learner.Attempt {
	return learner.Attempt{
		ID:             r.AttemptID,
		LearnerID:      r.LearnerID,
		SkillID:        r.SkillID,
		NotebookID:     r.NotebookID,
		Correct:        r.Correct,
		ResponseTimeMs: r.ResponseTimeMs,
		ExpectedTimeMs: r.ExpectedTimeMs,
		Grade:          spacedrep.Grade(r.Grade),
		PMasteryAfter:  r.PMasteryAfter,
		Source:         r.Source,
		At:             r.At,
	}
}

func rowFromAttempt(a learner.Attempt) AttemptRow {
	return AttemptRow{
		AttemptID:      a.ID,
		LearnerID:      a.LearnerID,
		SkillID:        a.SkillID,
		NotebookID:     a.NotebookID,
		Correct:        a.Correct,
		ResponseTimeMs: a.ResponseTimeMs,
		ExpectedTimeMs: a.ExpectedTimeMs,
		Grade:          int(a.Grade),
		PMasteryAfter:  a.PMasteryAfter,
		Source:         a.Source,
		At:             a.At,
	}
}
