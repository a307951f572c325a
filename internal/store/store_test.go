package store

import (
	"context"
	"testing"
	"time"

	"github.com/zpdlab/mentora/internal/bkt"
	"github.com/zpdlab/mentora/internal/learner"
	"github.com/zpdlab/mentora/internal/logger"
	"github.com/zpdlab/mentora/internal/skillgraph"
	"github.com/zpdlab/mentora/internal/spacedrep"
)

func testRepos(t *testing.T) (*GraphRepo, *StateRepo) {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	log := logger.Nop()
	return NewGraphRepo(db, log), NewStateRepo(db, log)
}

func seedNotebook(t *testing.T, g *GraphRepo) {
	t.Helper()
	skills := []skillgraph.Skill{
		{ID: "s1", Name: "Counting", BloomLevel: 1, EstimatedMins: 10},
		{ID: "s2", Name: "Addition", BloomLevel: 2, EstimatedMins: 20, MasteryThreshold: 0.9},
	}
	edges := []skillgraph.Edge{
		{From: "s1", To: "s2", Strength: skillgraph.StrengthRequired},
	}
	if err := g.ReplaceNotebook(context.Background(), "nb1", skills, edges); err != nil {
		t.Fatalf("ReplaceNotebook: %v", err)
	}
}

func TestGraphRoundTrip(t *testing.T) {
	g, _ := testRepos(t)
	seedNotebook(t, g)
	ctx := context.Background()

	skill, err := g.GetSkill(ctx, "s2")
	if err != nil {
		t.Fatal(err)
	}
	if skill.Name != "Addition" || skill.MasteryThreshold != 0.9 || skill.NotebookID != "nb1" {
		t.Fatalf("skill = %+v", skill)
	}

	skills, err := g.ListSkills(ctx, "nb1")
	if err != nil {
		t.Fatal(err)
	}
	if len(skills) != 2 {
		t.Fatalf("%d skills, want 2", len(skills))
	}

	prereqs, err := g.ListPrerequisitesOf(ctx, "s2")
	if err != nil {
		t.Fatal(err)
	}
	if len(prereqs) != 1 || prereqs[0].From != "s1" || !prereqs[0].Required() {
		t.Fatalf("prereqs = %+v", prereqs)
	}

	deps, err := g.ListDependentsOf(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 || deps[0].To != "s2" {
		t.Fatalf("dependents = %+v", deps)
	}

	absent, err := g.GetSkill(ctx, "nope")
	if err != nil {
		t.Fatal(err)
	}
	if absent.ID != "" {
		t.Fatalf("missing skill = %+v, want zero value", absent)
	}
}

func TestReplaceNotebookReplaces(t *testing.T) {
	g, _ := testRepos(t)
	seedNotebook(t, g)
	ctx := context.Background()

	err := g.ReplaceNotebook(ctx, "nb1",
		[]skillgraph.Skill{{ID: "s9", Name: "Fractions", BloomLevel: 2}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	skills, err := g.ListSkills(ctx, "nb1")
	if err != nil {
		t.Fatal(err)
	}
	if len(skills) != 1 || skills[0].ID != "s9" {
		t.Fatalf("skills after replace = %+v", skills)
	}
	edges, err := g.ListEdges(ctx, "nb1")
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 0 {
		t.Fatalf("stale edges survived replace: %+v", edges)
	}
}

func sampleState(now time.Time) *learner.LearnerSkillState {
	return &learner.LearnerSkillState{
		LearnerID:  "lena",
		SkillID:    "s1",
		NotebookID: "nb1",
		Params:     bkt.DefaultParams(),
		PMastery:   0.42,
		Review: spacedrep.State{
			EasinessFactor:  2.5,
			RepetitionCount: 1,
			IntervalDays:    1,
			DueAt:           now.AddDate(0, 0, 1),
			LastReviewedAt:  now,
		},
		ScaffoldLevel: 2,
		TotalAttempts: 1,
		CorrectCount:  1,
		UpdatedAt:     now,
	}
}

func TestSaveAttemptRoundTrip(t *testing.T) {
	g, s := testRepos(t)
	seedNotebook(t, g)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	st := sampleState(now)
	att := learner.Attempt{
		ID: "a1", LearnerID: "lena", SkillID: "s1", NotebookID: "nb1",
		Correct: true, Grade: 4, PMasteryAfter: 0.42, Source: learner.SourcePractice, At: now,
	}
	if err := s.SaveAttempt(ctx, st, att); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetState(ctx, "lena", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("state not persisted")
	}
	if got.PMastery != 0.42 || got.Review.RepetitionCount != 1 || got.ScaffoldLevel != 2 {
		t.Fatalf("state = %+v", got)
	}
	if !got.Review.DueAt.Equal(now.AddDate(0, 0, 1)) {
		t.Fatalf("due at = %v", got.Review.DueAt)
	}

	ok, err := s.HasAttempt(ctx, "lena", "s1", "a1")
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("attempt not on record")
	}
}

func TestSaveAttemptReplayIsNoOp(t *testing.T) {
	g, s := testRepos(t)
	seedNotebook(t, g)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	st := sampleState(now)
	att := learner.Attempt{
		ID: "a1", LearnerID: "lena", SkillID: "s1", NotebookID: "nb1",
		Correct: true, Grade: 4, PMasteryAfter: 0.42, Source: learner.SourcePractice, At: now,
	}
	if err := s.SaveAttempt(ctx, st, att); err != nil {
		t.Fatal(err)
	}

	// Replay with a diverged state: neither the log nor the state moves.
	diverged := sampleState(now)
	diverged.PMastery = 0.99
	if err := s.SaveAttempt(ctx, diverged, att); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetState(ctx, "lena", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got.PMastery != 0.42 {
		t.Fatalf("replay overwrote state: pMastery = %v", got.PMastery)
	}
	attempts, err := s.ListSkillAttempts(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(attempts) != 1 {
		t.Fatalf("replay duplicated the attempt: %d rows", len(attempts))
	}
}

func TestListSkillAttemptsOrdering(t *testing.T) {
	g, s := testRepos(t)
	seedNotebook(t, g)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, learnerID := range []string{"zoe", "abe", "zoe"} {
		st := sampleState(base)
		st.LearnerID = learnerID
		att := learner.Attempt{
			ID: string(rune('a' + i)), LearnerID: learnerID, SkillID: "s1", NotebookID: "nb1",
			Correct: true, At: base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.SaveAttempt(ctx, st, att); err != nil {
			t.Fatal(err)
		}
	}

	attempts, err := s.ListSkillAttempts(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if len(attempts) != 3 {
		t.Fatalf("%d attempts, want 3", len(attempts))
	}
	// Grouped by learner, then time.
	want := []string{"abe", "zoe", "zoe"}
	for i, a := range attempts {
		if a.LearnerID != want[i] {
			t.Fatalf("position %d: learner %s, want %s", i, a.LearnerID, want[i])
		}
	}
	if attempts[1].At.After(attempts[2].At) {
		t.Fatal("same-learner attempts out of time order")
	}
}

func TestDeleteStatesScopedToLearnerAndNotebook(t *testing.T) {
	g, s := testRepos(t)
	seedNotebook(t, g)
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, learnerID := range []string{"lena", "marc"} {
		st := sampleState(now)
		st.LearnerID = learnerID
		att := learner.Attempt{
			ID: "a-" + learnerID, LearnerID: learnerID, SkillID: "s1", NotebookID: "nb1",
			Correct: true, At: now,
		}
		if err := s.SaveAttempt(ctx, st, att); err != nil {
			t.Fatal(err)
		}
	}

	if err := s.DeleteStates(ctx, "lena", "nb1"); err != nil {
		t.Fatal(err)
	}

	gone, err := s.GetState(ctx, "lena", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if gone != nil {
		t.Fatal("lena's state survived the reset")
	}
	kept, err := s.GetState(ctx, "marc", "s1")
	if err != nil {
		t.Fatal(err)
	}
	if kept == nil {
		t.Fatal("reset deleted another learner's state")
	}
}

func TestSkillParamsRoundTrip(t *testing.T) {
	g, s := testRepos(t)
	seedNotebook(t, g)
	ctx := context.Background()

	missing, err := s.GetSkillParams(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Fatalf("unfitted skill returned params: %+v", missing)
	}

	p := bkt.Params{PInit: 0.3, PLearn: 0.15, PSlip: 0.08, PGuess: 0.22}
	if err := s.PutSkillParams(ctx, "s1", p); err != nil {
		t.Fatal(err)
	}
	// Refit overwrites.
	p.PLearn = 0.25
	if err := s.PutSkillParams(ctx, "s1", p); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetSkillParams(ctx, "s1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || *got != p {
		t.Fatalf("params = %+v, want %+v", got, p)
	}
}
