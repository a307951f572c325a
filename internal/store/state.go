package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zpdlab/mentora/internal/bkt"
	"github.com/zpdlab/mentora/internal/learner"
	"github.com/zpdlab/mentora/internal/logger"
)

// StateRepo persists learner skill state and the attempt log. Satisfies
// learner.StateStore.
type StateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStateRepo(db *gorm.DB, baseLog *logger.Logger) *StateRepo {
	return &StateRepo{db: db, log: baseLog.With("repo", "StateRepo")}
}

func (r *StateRepo) GetState(ctx context.Context, learnerID, skillID string) (*learner.LearnerSkillState, error) {
	var row LearnerSkillStateRow
	err := r.db.WithContext(ctx).
		Where("learner_id = ? AND skill_id = ?", learnerID, skillID).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.LearnerID == "" {
		return nil, nil
	}
	return stateFromRow(row), nil
}

func (r *StateRepo) ListStates(ctx context.Context, learnerID, notebookID string) ([]*learner.LearnerSkillState, error) {
	var rows []LearnerSkillStateRow
	err := r.db.WithContext(ctx).
		Where("learner_id = ? AND notebook_id = ?", learnerID, notebookID).
		Order("skill_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	states := make([]*learner.LearnerSkillState, 0, len(rows))
	for _, row := range rows {
		states = append(states, stateFromRow(row))
	}
	return states, nil
}

// SaveAttempt upserts the state row and appends the attempt in one
// transaction. The unique (learner, skill, attempt) index makes replays
// a clean no-op: a conflicting attempt insert skips the state write too.
func (r *StateRepo) SaveAttempt(ctx context.Context, st *learner.LearnerSkillState, att learner.Attempt) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attRow := rowFromAttempt(att)
		res := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "learner_id"}, {Name: "skill_id"}, {Name: "attempt_id"},
			},
			DoNothing: true,
		}).Create(&attRow)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Replay: attempt already on record, state already reflects it.
			return nil
		}

		stRow := rowFromState(st)
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "learner_id"}, {Name: "skill_id"}},
			UpdateAll: true,
		}).Create(&stRow).Error
	})
}

func (r *StateRepo) HasAttempt(ctx context.Context, learnerID, skillID, attemptID string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&AttemptRow{}).
		Where("learner_id = ? AND skill_id = ? AND attempt_id = ?", learnerID, skillID, attemptID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *StateRepo) ListSkillAttempts(ctx context.Context, skillID string) ([]learner.Attempt, error) {
	var rows []AttemptRow
	err := r.db.WithContext(ctx).
		Where("skill_id = ?", skillID).
		Order("learner_id, at, row_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	attempts := make([]learner.Attempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, attemptFromRow(row))
	}
	return attempts, nil
}

func (r *StateRepo) DeleteStates(ctx context.Context, learnerID, notebookID string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("learner_id = ? AND notebook_id = ?", learnerID, notebookID).
			Delete(&AttemptRow{}).Error; err != nil {
			return err
		}
		return tx.Where("learner_id = ? AND notebook_id = ?", learnerID, notebookID).
			Delete(&LearnerSkillStateRow{}).Error
	})
	if err != nil {
		return err
	}
	r.log.Info("learner state deleted", "learnerID", learnerID, "notebookID", notebookID)
	return nil
}

func (r *StateRepo) GetSkillParams(ctx context.Context, skillID string) (*bkt.Params, error) {
	var row SkillParamsRow
	err := r.db.WithContext(ctx).Where("skill_id = ?", skillID).Limit(1).Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.SkillID == "" {
		return nil, nil
	}
	return &bkt.Params{
		PInit:  row.PInit,
		PLearn: row.PLearn,
		PSlip:  row.PSlip,
		PGuess: row.PGuess,
	}, nil
}

func (r *StateRepo) PutSkillParams(ctx context.Context, skillID string, p bkt.Params) error {
	row := SkillParamsRow{
		SkillID:   skillID,
		PInit:     p.PInit,
		PLearn:    p.PLearn,
		PSlip:     p.PSlip,
		PGuess:    p.PGuess,
		UpdatedAt: time.Now().UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "skill_id"}},
		UpdateAll: true,
	}).Create(&row).Error
}
