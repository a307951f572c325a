// Package learner orchestrates the mastery engine: it owns the
// read-modify-write cycle on learner skill state and exposes the
// caller-facing operations over the graph, stores, and dialogue engine.
package learner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/zpdlab/mentora/internal/bkt"
	"github.com/zpdlab/mentora/internal/dialogue"
	"github.com/zpdlab/mentora/internal/llm"
	"github.com/zpdlab/mentora/internal/logger"
	"github.com/zpdlab/mentora/internal/planner"
	"github.com/zpdlab/mentora/internal/readiness"
	"github.com/zpdlab/mentora/internal/skillgraph"
	"github.com/zpdlab/mentora/internal/spacedrep"
)

// fitConcurrency bounds parallel per-skill parameter fitting.
const fitConcurrency = 4

// Service wires the skill graph, learner state store, and dialogue
// phrasing together. Safe for concurrent use; writes to the same
// (learner, skill) pair are serialized internally.
type Service struct {
	graph    GraphStore
	state    StateStore
	phraser  *dialogue.Phraser
	analyzer *dialogue.Analyzer
	log      *logger.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService builds a Service. provider may be nil; dialogues then run
// entirely on template questions. genTimeout bounds each provider call,
// with zero meaning the dialogue package default.
func NewService(graph GraphStore, state StateStore, provider llm.Provider, genTimeout time.Duration, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		graph:    graph,
		state:    state,
		phraser:  dialogue.NewPhraser(provider, log, genTimeout),
		analyzer: dialogue.NewAnalyzer(provider, log, genTimeout),
		log:      log,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// lockFor returns the mutex serializing writes for one (learner, skill)
// pair. Locks are never reclaimed; the key space is small in practice.
func (s *Service) lockFor(learnerID, skillID string) *sync.Mutex {
	key := learnerID + "\x00" + skillID
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	return l
}

// PracticeAttempt is the input to RecordPracticeAttempt.
type PracticeAttempt struct {
	// AttemptID makes retries idempotent. Empty means "new attempt" and
	// one is generated.
	AttemptID      string
	LearnerID      string
	SkillID        string
	Correct        bool
	ResponseTimeMs int
	ExpectedTimeMs int
	// At defaults to the current time when zero.
	At time.Time
}

// AttemptResult reports the state after one recorded attempt.
type AttemptResult struct {
	State         LearnerSkillState
	Grade         spacedrep.Grade
	Status        MasteryStatus
	NewlyMastered bool
	// Replayed is true when the attempt ID was already recorded and
	// nothing changed.
	Replayed bool
}

// RecordPracticeAttempt applies one practice outcome: BKT belief update,
// recall grading, SM-2 rescheduling, and scaffold adjustment, persisted
// atomically with the attempt record. Replaying an attempt ID returns
// the current state untouched.
func (s *Service) RecordPracticeAttempt(ctx context.Context, in PracticeAttempt) (*AttemptResult, error) {
	return s.recordAttempt(ctx, in, SourcePractice)
}

func (s *Service) recordAttempt(ctx context.Context, in PracticeAttempt, source string) (*AttemptResult, error) {
	if in.LearnerID == "" {
		return nil, &ValidationError{Field: "learnerID", Reason: "must not be empty"}
	}
	if in.SkillID == "" {
		return nil, &ValidationError{Field: "skillID", Reason: "must not be empty"}
	}
	if in.ResponseTimeMs < 0 {
		return nil, &ValidationError{Field: "responseTimeMs", Reason: "must not be negative"}
	}
	if in.ExpectedTimeMs < 0 {
		return nil, &ValidationError{Field: "expectedTimeMs", Reason: "must not be negative"}
	}

	skill, err := s.getSkill(ctx, in.SkillID)
	if err != nil {
		return nil, err
	}

	at := in.At
	if at.IsZero() {
		at = s.now()
	}
	attemptID := in.AttemptID
	if attemptID == "" {
		attemptID = uuid.NewString()
	}

	l := s.lockFor(in.LearnerID, in.SkillID)
	l.Lock()
	defer l.Unlock()

	seen, err := s.state.HasAttempt(ctx, in.LearnerID, in.SkillID, attemptID)
	if err != nil {
		return nil, &DependencyError{Op: "state.HasAttempt", Err: err}
	}
	if seen {
		st, err := s.state.GetState(ctx, in.LearnerID, in.SkillID)
		if err != nil {
			return nil, &DependencyError{Op: "state.GetState", Err: err}
		}
		if st == nil {
			return nil, &NotFoundError{Kind: "learner state", ID: in.LearnerID + "/" + in.SkillID}
		}
		return &AttemptResult{
			State:    *st,
			Status:   st.Status(skill.Threshold()),
			Replayed: true,
		}, nil
	}

	st, err := s.state.GetState(ctx, in.LearnerID, in.SkillID)
	if err != nil {
		return nil, &DependencyError{Op: "state.GetState", Err: err}
	}
	if st == nil {
		st, err = s.newState(ctx, in.LearnerID, skill, at)
		if err != nil {
			return nil, err
		}
	}
	// A corrupt stored record must fail here, not propagate NaN beliefs.
	if err := st.Params.Validate(); err != nil {
		return nil, &ValidationError{Field: "state.params", Reason: err.Error()}
	}
	if st.PMastery < 0 || st.PMastery > 1 || st.PMastery != st.PMastery {
		return nil, &ValidationError{Field: "state.pMastery", Reason: "outside [0,1]"}
	}

	threshold := skill.Threshold()
	prev := st.PMastery

	st.PMastery = bkt.Update(prev, st.Params, in.Correct)
	grade := spacedrep.DeriveGrade(in.Correct, in.ResponseTimeMs, in.ExpectedTimeMs, prev)
	st.Review = spacedrep.Schedule(st.Review, grade, at)

	if in.Correct {
		st.ConsecutiveWrong = 0
		st.CorrectCount++
	} else {
		st.ConsecutiveWrong++
	}
	st.ScaffoldLevel = bkt.AdjustScaffold(st.ScaffoldLevel, prev, st.PMastery, st.ConsecutiveWrong)
	st.TotalAttempts++
	st.UpdatedAt = at

	att := Attempt{
		ID:             attemptID,
		LearnerID:      in.LearnerID,
		SkillID:        in.SkillID,
		NotebookID:     skill.NotebookID,
		Correct:        in.Correct,
		ResponseTimeMs: in.ResponseTimeMs,
		ExpectedTimeMs: in.ExpectedTimeMs,
		Grade:          grade,
		PMasteryAfter:  st.PMastery,
		Source:         source,
		At:             at,
	}
	if err := s.state.SaveAttempt(ctx, st, att); err != nil {
		return nil, &DependencyError{Op: "state.SaveAttempt", Err: err}
	}

	res := &AttemptResult{
		State:         *st,
		Grade:         grade,
		Status:        st.Status(threshold),
		NewlyMastered: prev < threshold && st.PMastery >= threshold,
	}
	s.log.Debug("attempt recorded",
		"learnerID", in.LearnerID, "skillID", in.SkillID,
		"correct", in.Correct, "pMastery", st.PMastery, "grade", grade)
	if res.NewlyMastered {
		s.log.Info("skill mastered", "learnerID", in.LearnerID, "skillID", in.SkillID, "pMastery", st.PMastery)
	}
	return res, nil
}

// newState seeds the per-pair record on first practice: fitted skill
// parameters when they exist, global defaults otherwise.
func (s *Service) newState(ctx context.Context, learnerID string, skill skillgraph.Skill, at time.Time) (*LearnerSkillState, error) {
	params := bkt.DefaultParams()
	fitted, err := s.state.GetSkillParams(ctx, skill.ID)
	if err != nil {
		return nil, &DependencyError{Op: "state.GetSkillParams", Err: err}
	}
	if fitted != nil {
		params = *fitted
	}
	return &LearnerSkillState{
		LearnerID:     learnerID,
		SkillID:       skill.ID,
		NotebookID:    skill.NotebookID,
		Params:        params,
		PMastery:      params.PInit,
		Review:        spacedrep.NewState(at),
		ScaffoldLevel: bkt.ScaffoldForBelief(params.PInit),
	}, nil
}

func (s *Service) getSkill(ctx context.Context, skillID string) (skillgraph.Skill, error) {
	skill, err := s.graph.GetSkill(ctx, skillID)
	if err != nil {
		return skillgraph.Skill{}, &DependencyError{Op: "graph.GetSkill", Err: err}
	}
	if skill.ID == "" {
		return skillgraph.Skill{}, &NotFoundError{Kind: "skill", ID: skillID}
	}
	return skill, nil
}

// loadGraph materializes the notebook's skill graph from the store.
func (s *Service) loadGraph(ctx context.Context, notebookID string) (*skillgraph.Graph, error) {
	skills, err := s.graph.ListSkills(ctx, notebookID)
	if err != nil {
		return nil, &DependencyError{Op: "graph.ListSkills", Err: err}
	}
	if len(skills) == 0 {
		return nil, &NotFoundError{Kind: "notebook", ID: notebookID}
	}
	edges, err := s.graph.ListEdges(ctx, notebookID)
	if err != nil {
		return nil, &DependencyError{Op: "graph.ListEdges", Err: err}
	}
	g, err := skillgraph.Build(skills, edges)
	if err != nil {
		return nil, fmt.Errorf("notebook %s: %w", notebookID, err)
	}
	return g, nil
}

// loadBeliefs collects the learner's mastery beliefs across a notebook.
// Unpracticed skills are simply absent.
func (s *Service) loadBeliefs(ctx context.Context, learnerID, notebookID string) (readiness.Beliefs, error) {
	states, err := s.state.ListStates(ctx, learnerID, notebookID)
	if err != nil {
		return nil, &DependencyError{Op: "state.ListStates", Err: err}
	}
	beliefs := make(readiness.Beliefs, len(states))
	for _, st := range states {
		beliefs[st.SkillID] = st.PMastery
	}
	return beliefs, nil
}

// ComputeZPD returns the learner's zone of proximal development in the
// notebook, best candidates first. limit <= 0 means no limit.
func (s *Service) ComputeZPD(ctx context.Context, learnerID, notebookID string, limit int) ([]planner.Candidate, error) {
	if learnerID == "" {
		return nil, &ValidationError{Field: "learnerID", Reason: "must not be empty"}
	}
	g, err := s.loadGraph(ctx, notebookID)
	if err != nil {
		return nil, err
	}
	beliefs, err := s.loadBeliefs(ctx, learnerID, notebookID)
	if err != nil {
		return nil, err
	}
	out := planner.ComputeZPD(g, beliefs)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// PathPreferences tunes learning path generation.
type PathPreferences struct {
	// DailyBudgetMins > 0 additionally chunks the path into day plans.
	DailyBudgetMins int
	// PrioritizeThreshold is accepted for compatibility; threshold
	// concepts are always detected and flagged on the path.
	PrioritizeThreshold bool
}

// LearningPlan is an ordered path plus its optional day chunking.
type LearningPlan struct {
	Path planner.Path
	Days []planner.DayPlan
}

// GenerateLearningPath plans the ordered route from the learner's
// current mastery to the goal skill. A mastered or unknown goal yields
// an empty path with an explanatory message.
func (s *Service) GenerateLearningPath(ctx context.Context, learnerID, notebookID, goalSkillID string, prefs PathPreferences) (*LearningPlan, error) {
	if learnerID == "" {
		return nil, &ValidationError{Field: "learnerID", Reason: "must not be empty"}
	}
	if goalSkillID == "" {
		return nil, &ValidationError{Field: "goalSkillID", Reason: "must not be empty"}
	}
	g, err := s.loadGraph(ctx, notebookID)
	if err != nil {
		return nil, err
	}
	beliefs, err := s.loadBeliefs(ctx, learnerID, notebookID)
	if err != nil {
		return nil, err
	}

	mastered := make(map[string]bool)
	for _, sk := range g.Skills() {
		if beliefs.Mastered(sk) {
			mastered[sk.ID] = true
		}
	}

	path, err := planner.GeneratePath(g, goalSkillID, mastered)
	if err != nil {
		return nil, err
	}
	plan := &LearningPlan{Path: *path}
	if prefs.DailyBudgetMins > 0 {
		plan.Days = planner.ChunkByDay(path.Skills, prefs.DailyBudgetMins)
	}
	return plan, nil
}

// ReviewItem is one skill due for spaced review.
type ReviewItem struct {
	Skill       skillgraph.Skill
	State       LearnerSkillState
	OverdueDays float64
}

// DueReviews lists the learner's skills at or past their review date,
// most overdue first.
func (s *Service) DueReviews(ctx context.Context, learnerID, notebookID string, now time.Time) ([]ReviewItem, error) {
	if learnerID == "" {
		return nil, &ValidationError{Field: "learnerID", Reason: "must not be empty"}
	}
	if now.IsZero() {
		now = s.now()
	}
	states, err := s.state.ListStates(ctx, learnerID, notebookID)
	if err != nil {
		return nil, &DependencyError{Op: "state.ListStates", Err: err}
	}

	var out []ReviewItem
	for _, st := range states {
		if !st.Review.IsDue(now) {
			continue
		}
		skill, err := s.getSkill(ctx, st.SkillID)
		if err != nil {
			// A state row pointing at a deleted skill is skipped, not fatal.
			var nf *NotFoundError
			if errors.As(err, &nf) {
				continue
			}
			return nil, err
		}
		out = append(out, ReviewItem{
			Skill:       skill,
			State:       *st,
			OverdueDays: st.Review.OverdueDays(now),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].OverdueDays != out[j].OverdueDays {
			return out[i].OverdueDays > out[j].OverdueDays
		}
		return out[i].Skill.ID < out[j].Skill.ID
	})
	return out, nil
}

// FitOutcome is the per-skill result of a batch fit. Err is set for
// skills with too little data; they keep running on their prior
// parameters.
type FitOutcome struct {
	SkillID string
	Result  *bkt.FitResult
	Err     error
}

// FitSkillParams refits BKT parameters for every skill in the notebook
// from the accumulated attempt log and persists the fits. Skills with
// insufficient data are reported, not failed.
func (s *Service) FitSkillParams(ctx context.Context, notebookID string) ([]FitOutcome, error) {
	skills, err := s.graph.ListSkills(ctx, notebookID)
	if err != nil {
		return nil, &DependencyError{Op: "graph.ListSkills", Err: err}
	}
	if len(skills) == 0 {
		return nil, &NotFoundError{Kind: "notebook", ID: notebookID}
	}

	outcomes := make([]FitOutcome, len(skills))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(fitConcurrency)
	for i, skill := range skills {
		eg.Go(func() error {
			out := FitOutcome{SkillID: skill.ID}
			defer func() { outcomes[i] = out }()

			attempts, err := s.state.ListSkillAttempts(ctx, skill.ID)
			if err != nil {
				return &DependencyError{Op: "state.ListSkillAttempts", Err: err}
			}
			res, err := bkt.Fit(sequencesByLearner(attempts))
			if err != nil {
				var ins *bkt.InsufficientDataError
				if errors.As(err, &ins) {
					out.Err = err
					return nil
				}
				return err
			}
			if err := s.state.PutSkillParams(ctx, skill.ID, res.Params); err != nil {
				return &DependencyError{Op: "state.PutSkillParams", Err: err}
			}
			out.Result = res
			s.log.Info("skill parameters refit",
				"skillID", skill.ID, "samples", res.Samples,
				"auc", res.Calibration.AUC, "brier", res.Calibration.Brier)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].SkillID < outcomes[j].SkillID })
	return outcomes, nil
}

// sequencesByLearner splits a skill's attempt log into per-learner
// ordered correctness sequences. Attempts arrive ordered by learner then
// time.
func sequencesByLearner(attempts []Attempt) [][]bool {
	var seqs [][]bool
	var cur []bool
	var curLearner string
	for _, a := range attempts {
		if a.LearnerID != curLearner {
			if len(cur) > 0 {
				seqs = append(seqs, cur)
			}
			cur = nil
			curLearner = a.LearnerID
		}
		cur = append(cur, a.Correct)
	}
	if len(cur) > 0 {
		seqs = append(seqs, cur)
	}
	return seqs
}

// ResetProgress deletes the learner's state and attempt history for the
// notebook. The only operation that ever removes learner data.
func (s *Service) ResetProgress(ctx context.Context, learnerID, notebookID string) error {
	if learnerID == "" {
		return &ValidationError{Field: "learnerID", Reason: "must not be empty"}
	}
	if notebookID == "" {
		return &ValidationError{Field: "notebookID", Reason: "must not be empty"}
	}
	if err := s.state.DeleteStates(ctx, learnerID, notebookID); err != nil {
		return &DependencyError{Op: "state.DeleteStates", Err: err}
	}
	s.log.Info("learner progress reset", "learnerID", learnerID, "notebookID", notebookID)
	return nil
}
