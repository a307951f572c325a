package learner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/zpdlab/mentora/internal/bkt"
	"github.com/zpdlab/mentora/internal/dialogue"
	"github.com/zpdlab/mentora/internal/skillgraph"
)

type memGraph struct {
	skills map[string]skillgraph.Skill
	edges  []skillgraph.Edge
}

func newMemGraph(skills []skillgraph.Skill, edges []skillgraph.Edge) *memGraph {
	byID := make(map[string]skillgraph.Skill, len(skills))
	for _, s := range skills {
		byID[s.ID] = s
	}
	return &memGraph{skills: byID, edges: edges}
}

func (g *memGraph) GetSkill(_ context.Context, id string) (skillgraph.Skill, error) {
	return g.skills[id], nil
}

func (g *memGraph) ListSkills(_ context.Context, notebookID string) ([]skillgraph.Skill, error) {
	var out []skillgraph.Skill
	for _, s := range g.skills {
		if s.NotebookID == notebookID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (g *memGraph) ListEdges(_ context.Context, _ string) ([]skillgraph.Edge, error) {
	return g.edges, nil
}

type memState struct {
	mu       sync.Mutex
	states   map[string]*LearnerSkillState
	attempts []Attempt
	seen     map[string]bool
	params   map[string]bkt.Params
}

func newMemState() *memState {
	return &memState{
		states: make(map[string]*LearnerSkillState),
		seen:   make(map[string]bool),
		params: make(map[string]bkt.Params),
	}
}

func stateKey(learnerID, skillID string) string { return learnerID + "|" + skillID }

func (m *memState) GetState(_ context.Context, learnerID, skillID string) (*LearnerSkillState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.states[stateKey(learnerID, skillID)]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (m *memState) ListStates(_ context.Context, learnerID, notebookID string) ([]*LearnerSkillState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*LearnerSkillState
	for _, st := range m.states {
		if st.LearnerID == learnerID && st.NotebookID == notebookID {
			cp := *st
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memState) SaveAttempt(_ context.Context, st *LearnerSkillState, att Attempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := stateKey(att.LearnerID, att.SkillID) + "|" + att.ID
	if m.seen[key] {
		return nil
	}
	m.seen[key] = true
	cp := *st
	m.states[stateKey(st.LearnerID, st.SkillID)] = &cp
	m.attempts = append(m.attempts, att)
	return nil
}

func (m *memState) HasAttempt(_ context.Context, learnerID, skillID, attemptID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.seen[stateKey(learnerID, skillID)+"|"+attemptID], nil
}

func (m *memState) ListSkillAttempts(_ context.Context, skillID string) ([]Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Attempt
	for _, a := range m.attempts {
		if a.SkillID == skillID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *memState) DeleteStates(_ context.Context, learnerID, notebookID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, st := range m.states {
		if st.LearnerID == learnerID && st.NotebookID == notebookID {
			delete(m.states, k)
		}
	}
	var kept []Attempt
	for _, a := range m.attempts {
		if a.LearnerID == learnerID && a.NotebookID == notebookID {
			continue
		}
		kept = append(kept, a)
	}
	m.attempts = kept
	return nil
}

func (m *memState) GetSkillParams(_ context.Context, skillID string) (*bkt.Params, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.params[skillID]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memState) PutSkillParams(_ context.Context, skillID string, p bkt.Params) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.params[skillID] = p
	return nil
}

func fractionsNotebook() (*memGraph, *memState) {
	skills := []skillgraph.Skill{
		{ID: "add-fractions", Name: "Adding fractions", BloomLevel: 2, EstimatedMins: 20, NotebookID: "nb1"},
		{ID: "common-denominators", Name: "Common denominators", BloomLevel: 2, EstimatedMins: 15, NotebookID: "nb1"},
		{ID: "simplify-fractions", Name: "Simplifying fractions", BloomLevel: 1, EstimatedMins: 10, NotebookID: "nb1"},
	}
	edges := []skillgraph.Edge{
		{From: "simplify-fractions", To: "common-denominators", Strength: skillgraph.StrengthRequired},
		{From: "common-denominators", To: "add-fractions", Strength: skillgraph.StrengthRequired},
	}
	return newMemGraph(skills, edges), newMemState()
}

func newTestService(g GraphStore, st *memState) *Service {
	return NewService(g, st, nil, 0, nil)
}

func TestRecordPracticeAttemptCreatesState(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)

	res, err := svc.RecordPracticeAttempt(context.Background(), PracticeAttempt{
		LearnerID: "lena", SkillID: "simplify-fractions", Correct: true,
	})
	if err != nil {
		t.Fatalf("RecordPracticeAttempt: %v", err)
	}
	if res.Replayed {
		t.Fatal("fresh attempt reported as replayed")
	}
	if res.State.TotalAttempts != 1 || res.State.CorrectCount != 1 {
		t.Fatalf("counters = %d/%d, want 1/1", res.State.TotalAttempts, res.State.CorrectCount)
	}
	if res.State.PMastery <= bkt.DefaultParams().PInit {
		t.Fatalf("belief %v did not rise from prior after a correct answer", res.State.PMastery)
	}
	if !res.Grade.Passing() {
		t.Fatalf("grade %d for a correct answer should pass", res.Grade)
	}
	if res.State.Review.IntervalDays != 1 {
		t.Fatalf("first review interval = %d, want 1", res.State.Review.IntervalDays)
	}
}

func TestRecordPracticeAttemptIdempotent(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)
	ctx := context.Background()

	in := PracticeAttempt{
		AttemptID: "a1", LearnerID: "lena", SkillID: "simplify-fractions", Correct: true,
	}
	first, err := svc.RecordPracticeAttempt(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.RecordPracticeAttempt(ctx, in)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Replayed {
		t.Fatal("replayed attempt not flagged")
	}
	if second.State.TotalAttempts != 1 {
		t.Fatalf("replay changed attempt count to %d", second.State.TotalAttempts)
	}
	if second.State.PMastery != first.State.PMastery {
		t.Fatalf("replay moved belief from %v to %v", first.State.PMastery, second.State.PMastery)
	}
}

func TestRecordPracticeAttemptConcurrent(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.RecordPracticeAttempt(context.Background(), PracticeAttempt{
				AttemptID: fmt.Sprintf("a%d", i),
				LearnerID: "lena", SkillID: "simplify-fractions", Correct: true,
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatal(err)
		}
	}

	final, err := st.GetState(context.Background(), "lena", "simplify-fractions")
	if err != nil {
		t.Fatal(err)
	}
	if final.TotalAttempts != n {
		t.Fatalf("TotalAttempts = %d, want %d (lost update)", final.TotalAttempts, n)
	}
	attempts, _ := st.ListSkillAttempts(context.Background(), "simplify-fractions")
	if len(attempts) != n {
		t.Fatalf("attempt log has %d rows, want %d", len(attempts), n)
	}
}

func TestRecordPracticeAttemptUnknownSkill(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)

	_, err := svc.RecordPracticeAttempt(context.Background(), PracticeAttempt{
		LearnerID: "lena", SkillID: "quaternions", Correct: true,
	})
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

// failingGraph simulates a store whose reads fail outright (locked
// database, disk trouble) rather than coming back empty.
type failingGraph struct{ err error }

func (g *failingGraph) GetSkill(context.Context, string) (skillgraph.Skill, error) {
	return skillgraph.Skill{}, g.err
}

func (g *failingGraph) ListSkills(context.Context, string) ([]skillgraph.Skill, error) {
	return nil, g.err
}

func (g *failingGraph) ListEdges(context.Context, string) ([]skillgraph.Edge, error) {
	return nil, g.err
}

func TestRecordPracticeAttemptStoreFailureIsRetryable(t *testing.T) {
	_, st := fractionsNotebook()
	g := &failingGraph{err: errors.New("disk I/O error")}
	svc := newTestService(g, st)

	_, err := svc.RecordPracticeAttempt(context.Background(), PracticeAttempt{
		LearnerID: "lena", SkillID: "simplify-fractions", Correct: true,
	})
	var dep *DependencyError
	if !errors.As(err, &dep) {
		t.Fatalf("err = %v, want DependencyError", err)
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		t.Fatalf("store failure reported as NotFoundError: %v", err)
	}
}

func TestRecordPracticeAttemptValidation(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)

	cases := []PracticeAttempt{
		{SkillID: "simplify-fractions", Correct: true},
		{LearnerID: "lena", Correct: true},
		{LearnerID: "lena", SkillID: "simplify-fractions", ResponseTimeMs: -1},
	}
	for _, in := range cases {
		_, err := svc.RecordPracticeAttempt(context.Background(), in)
		var ve *ValidationError
		if !errors.As(err, &ve) {
			t.Fatalf("input %+v: err = %v, want ValidationError", in, err)
		}
	}
}

func TestNewlyMasteredFiresOnce(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)
	ctx := context.Background()

	fired := 0
	for i := 0; i < 15; i++ {
		res, err := svc.RecordPracticeAttempt(ctx, PracticeAttempt{
			LearnerID: "lena", SkillID: "simplify-fractions", Correct: true,
		})
		if err != nil {
			t.Fatal(err)
		}
		if res.NewlyMastered {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("NewlyMastered fired %d times over a correct streak, want exactly 1", fired)
	}
}

func TestComputeZPDUsesStoredBeliefs(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)
	ctx := context.Background()

	// Master the root skill; its dependent becomes the sole candidate.
	for i := 0; i < 12; i++ {
		if _, err := svc.RecordPracticeAttempt(ctx, PracticeAttempt{
			LearnerID: "lena", SkillID: "simplify-fractions", Correct: true,
		}); err != nil {
			t.Fatal(err)
		}
	}

	zpd, err := svc.ComputeZPD(ctx, "lena", "nb1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(zpd) != 1 || zpd[0].Skill.ID != "common-denominators" {
		t.Fatalf("zpd = %+v, want exactly common-denominators", zpd)
	}
}

func TestComputeZPDUnknownNotebook(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)

	_, err := svc.ComputeZPD(context.Background(), "lena", "nb-missing", 0)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
}

func TestGenerateLearningPathChunksByBudget(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)

	plan, err := svc.GenerateLearningPath(context.Background(), "lena", "nb1", "add-fractions", PathPreferences{DailyBudgetMins: 25})
	if err != nil {
		t.Fatal(err)
	}
	if got := len(plan.Path.Skills); got != 3 {
		t.Fatalf("path has %d skills, want 3", got)
	}
	if plan.Path.Skills[2].ID != "add-fractions" {
		t.Fatalf("goal not last: %v", plan.Path.Skills)
	}
	if len(plan.Days) != 2 {
		t.Fatalf("chunked into %d days, want 2", len(plan.Days))
	}
	for _, d := range plan.Days {
		if len(d.Skills) > 1 && d.TotalMinutes > 25 {
			t.Fatalf("day %d blows the budget with %d minutes", d.Day, d.TotalMinutes)
		}
	}
}

func TestDueReviewsMostOverdueFirst(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	if _, err := svc.RecordPracticeAttempt(ctx, PracticeAttempt{
		LearnerID: "lena", SkillID: "simplify-fractions", Correct: true, At: base,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RecordPracticeAttempt(ctx, PracticeAttempt{
		LearnerID: "lena", SkillID: "common-denominators", Correct: true, At: base.AddDate(0, 0, 2),
	}); err != nil {
		t.Fatal(err)
	}

	due, err := svc.DueReviews(ctx, "lena", "nb1", base.AddDate(0, 0, 5))
	if err != nil {
		t.Fatal(err)
	}
	if len(due) != 2 {
		t.Fatalf("got %d due items, want 2", len(due))
	}
	if due[0].Skill.ID != "simplify-fractions" {
		t.Fatalf("most overdue skill is %s, want simplify-fractions", due[0].Skill.ID)
	}
	if due[0].OverdueDays <= due[1].OverdueDays {
		t.Fatalf("not sorted by overdue days: %v then %v", due[0].OverdueDays, due[1].OverdueDays)
	}
}

func TestFitSkillParamsInsufficientData(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)

	outcomes, err := svc.FitSkillParams(context.Background(), "nb1")
	if err != nil {
		t.Fatal(err)
	}
	if len(outcomes) != 3 {
		t.Fatalf("got %d outcomes, want 3", len(outcomes))
	}
	for _, out := range outcomes {
		var ins *bkt.InsufficientDataError
		if !errors.As(out.Err, &ins) {
			t.Fatalf("skill %s: err = %v, want InsufficientDataError", out.SkillID, out.Err)
		}
		if out.Result != nil {
			t.Fatalf("skill %s: got a result without data", out.SkillID)
		}
	}
}

func TestFitSkillParamsPersistsFit(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)
	ctx := context.Background()

	// Seed 5 learners with 8 attempts each on one skill: improving runs
	// so the fit has signal.
	for l := 0; l < 5; l++ {
		learner := fmt.Sprintf("learner%d", l)
		for a := 0; a < 8; a++ {
			if _, err := svc.RecordPracticeAttempt(ctx, PracticeAttempt{
				LearnerID: learner, SkillID: "simplify-fractions", Correct: a >= 2,
			}); err != nil {
				t.Fatal(err)
			}
		}
	}

	outcomes, err := svc.FitSkillParams(ctx, "nb1")
	if err != nil {
		t.Fatal(err)
	}
	var fitted *FitOutcome
	for i := range outcomes {
		if outcomes[i].SkillID == "simplify-fractions" {
			fitted = &outcomes[i]
		}
	}
	if fitted == nil || fitted.Result == nil {
		t.Fatalf("no fit for seeded skill: %+v", outcomes)
	}
	if fitted.Result.Samples != 40 {
		t.Fatalf("fit saw %d samples, want 40", fitted.Result.Samples)
	}
	if err := fitted.Result.Params.Validate(); err != nil {
		t.Fatalf("fitted params invalid: %v", err)
	}

	stored, err := st.GetSkillParams(ctx, "simplify-fractions")
	if err != nil {
		t.Fatal(err)
	}
	if stored == nil || *stored != fitted.Result.Params {
		t.Fatal("fitted params not persisted")
	}
}

func TestResetProgressDeletesEverything(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)
	ctx := context.Background()

	if _, err := svc.RecordPracticeAttempt(ctx, PracticeAttempt{
		LearnerID: "lena", SkillID: "simplify-fractions", Correct: true,
	}); err != nil {
		t.Fatal(err)
	}
	if err := svc.ResetProgress(ctx, "lena", "nb1"); err != nil {
		t.Fatal(err)
	}

	after, err := st.GetState(ctx, "lena", "simplify-fractions")
	if err != nil {
		t.Fatal(err)
	}
	if after != nil {
		t.Fatal("state survived reset")
	}
	attempts, _ := st.ListSkillAttempts(ctx, "simplify-fractions")
	if len(attempts) != 0 {
		t.Fatalf("%d attempts survived reset", len(attempts))
	}
}

func TestDialogueDiscoveryFeedsMastery(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)
	ctx := context.Background()

	sess, err := svc.StartDialogue(ctx, "lena", "common-denominators", "why denominators must match", nil)
	if err != nil {
		t.Fatal(err)
	}
	if sess.NextQuestion == "" {
		t.Fatal("no opening question phrased")
	}
	if sess.NextQuestionType != dialogue.QuestionClarifying {
		t.Fatalf("opening question type = %s", sess.NextQuestionType)
	}

	sess, err = svc.AdvanceDialogue(ctx, sess, "you can't add pieces of different sizes", dialogue.Analysis{
		Understanding:        dialogue.UnderstandingComplete,
		DiscoveryMade:        true,
		DiscoveryDescription: "fractions need a shared unit before adding",
	})
	if err != nil {
		t.Fatal(err)
	}
	if !sess.Done() {
		t.Fatal("discovery did not stop the dialogue")
	}
	if sess.State.Status != dialogue.StatusDiscovery {
		t.Fatalf("status = %s, want discovery", sess.State.Status)
	}

	after, err := st.GetState(ctx, "lena", "common-denominators")
	if err != nil {
		t.Fatal(err)
	}
	if after == nil || after.TotalAttempts != 1 {
		t.Fatalf("discovery did not record a mastery signal: %+v", after)
	}
	attempts, _ := st.ListSkillAttempts(ctx, "common-denominators")
	if len(attempts) != 1 || attempts[0].Source != SourceDialogue {
		t.Fatalf("attempt log = %+v, want one dialogue-sourced row", attempts)
	}

	// Advancing a stopped session is a caller error.
	if _, err := svc.AdvanceDialogue(ctx, sess, "more", dialogue.Analysis{}); err == nil {
		t.Fatal("advanced a stopped dialogue")
	}
}

func TestDialogueBudgetExhaustion(t *testing.T) {
	g, st := fractionsNotebook()
	svc := newTestService(g, st)
	ctx := context.Background()

	sess, err := svc.StartDialogue(ctx, "lena", "common-denominators", "shared units", nil)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; !sess.Done(); i++ {
		if i > dialogue.DefaultMaxExchanges {
			t.Fatal("dialogue never exhausted its budget")
		}
		sess, err = svc.AdvanceDialogue(ctx, sess, "not sure", dialogue.Analysis{
			Understanding: dialogue.UnderstandingPartial,
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	if sess.State.EndReason != dialogue.ReasonBudgetExhausted {
		t.Fatalf("end reason = %s, want budget_exhausted", sess.State.EndReason)
	}
	if len(sess.State.Exchanges) != dialogue.DefaultMaxExchanges {
		t.Fatalf("%d exchanges, want %d", len(sess.State.Exchanges), dialogue.DefaultMaxExchanges)
	}

	// No discovery, no mastery signal.
	attempts, _ := st.ListSkillAttempts(ctx, "common-denominators")
	if len(attempts) != 0 {
		t.Fatalf("budget exhaustion recorded %d attempts", len(attempts))
	}

	final, eff := svc.EndDialogue(sess)
	if final.Status != dialogue.StatusEnded {
		t.Fatalf("status after end = %s", final.Status)
	}
	if eff.ExchangeEfficiency != 0 {
		t.Fatalf("efficiency = %v for a full budget, want 0", eff.ExchangeEfficiency)
	}
}
