package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/zpdlab/mentora/internal/logger"
	"github.com/zpdlab/mentora/internal/skillgraph"
)

// GraphRepo reads and writes skill graphs. Satisfies learner.GraphStore.
type GraphRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewGraphRepo(db *gorm.DB, baseLog *logger.Logger) *GraphRepo {
	return &GraphRepo{db: db, log: baseLog.With("repo", "GraphRepo")}
}

// GetSkill returns a zero Skill with nil error when the id is unknown;
// errors are real database failures.
func (r *GraphRepo) GetSkill(ctx context.Context, id string) (skillgraph.Skill, error) {
	var row SkillRow
	err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row).Error
	if err != nil {
		return skillgraph.Skill{}, err
	}
	if row.ID == "" {
		return skillgraph.Skill{}, nil
	}
	return skillFromRow(row), nil
}

func (r *GraphRepo) ListSkills(ctx context.Context, notebookID string) ([]skillgraph.Skill, error) {
	var rows []SkillRow
	err := r.db.WithContext(ctx).
		Where("notebook_id = ?", notebookID).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	skills := make([]skillgraph.Skill, 0, len(rows))
	for _, row := range rows {
		skills = append(skills, skillFromRow(row))
	}
	return skills, nil
}

func (r *GraphRepo) ListEdges(ctx context.Context, notebookID string) ([]skillgraph.Edge, error) {
	var rows []EdgeRow
	err := r.db.WithContext(ctx).
		Where("notebook_id = ?", notebookID).
		Order("from_id, to_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	edges := make([]skillgraph.Edge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, edgeFromRow(row))
	}
	return edges, nil
}

func (r *GraphRepo) ListPrerequisitesOf(ctx context.Context, skillID string) ([]skillgraph.Edge, error) {
	return r.listEdgesWhere(ctx, "to_id = ?", skillID)
}

func (r *GraphRepo) ListDependentsOf(ctx context.Context, skillID string) ([]skillgraph.Edge, error) {
	return r.listEdgesWhere(ctx, "from_id = ?", skillID)
}

func (r *GraphRepo) listEdgesWhere(ctx context.Context, cond, arg string) ([]skillgraph.Edge, error) {
	var rows []EdgeRow
	err := r.db.WithContext(ctx).
		Where(cond, arg).
		Order("from_id, to_id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	edges := make([]skillgraph.Edge, 0, len(rows))
	for _, row := range rows {
		edges = append(edges, edgeFromRow(row))
	}
	return edges, nil
}

// ReplaceNotebook swaps a notebook's skills and edges for the given set
// in one transaction. The incoming graph must already validate (no
// cycles, no dangling edges); callers build it first.
func (r *GraphRepo) ReplaceNotebook(ctx context.Context, notebookID string, skills []skillgraph.Skill, edges []skillgraph.Edge) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("notebook_id = ?", notebookID).Delete(&EdgeRow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("notebook_id = ?", notebookID).Delete(&SkillRow{}).Error; err != nil {
			return err
		}
		for _, s := range skills {
			row := rowFromSkill(s)
			row.NotebookID = notebookID
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		for _, e := range edges {
			row := EdgeRow{
				FromID:     e.From,
				ToID:       e.To,
				Strength:   string(e.Strength),
				NotebookID: notebookID,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.log.Info("notebook graph replaced",
		"notebookID", notebookID, "skills", len(skills), "edges", len(edges))
	return nil
}
