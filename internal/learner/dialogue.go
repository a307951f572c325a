package learner

import (
	"context"

	"github.com/zpdlab/mentora/internal/dialogue"
)

// DialogueSession is a dialogue state plus the pending tutor question,
// already phrased. The caller holds the session between turns and hands
// it back to AdvanceDialogue with the student's response.
type DialogueSession struct {
	LearnerID        string
	State            dialogue.State
	NextQuestion     string
	NextQuestionType dialogue.QuestionType
}

// Done reports whether the engine has stopped asking questions.
func (d *DialogueSession) Done() bool {
	return d.State.Status != dialogue.StatusNotStarted &&
		d.State.Status != dialogue.StatusQuestioning
}

// StartDialogue opens a Socratic session on a skill and phrases the
// opening question.
func (s *Service) StartDialogue(ctx context.Context, learnerID, skillID, targetConcept string, misconceptions []string) (*DialogueSession, error) {
	if learnerID == "" {
		return nil, &ValidationError{Field: "learnerID", Reason: "must not be empty"}
	}
	if targetConcept == "" {
		return nil, &ValidationError{Field: "targetConcept", Reason: "must not be empty"}
	}
	if _, err := s.getSkill(ctx, skillID); err != nil {
		return nil, err
	}

	st := dialogue.Start(skillID, targetConcept, misconceptions, s.now())
	qt := dialogue.FirstQuestionType()
	sess := &DialogueSession{
		LearnerID:        learnerID,
		State:            st,
		NextQuestion:     s.phraser.Question(ctx, qt, targetConcept, ""),
		NextQuestionType: qt,
	}
	s.log.Info("dialogue started",
		"learnerID", learnerID, "skillID", skillID, "dialogueID", st.ID)
	return sess, nil
}

// AdvanceDialogue applies the student's response to the pending question
// and either phrases the next question or stops the session. A stop on
// discovery feeds the mastery model: the breakthrough is recorded as a
// correct dialogue-sourced attempt, idempotent per dialogue.
func (s *Service) AdvanceDialogue(ctx context.Context, sess *DialogueSession, response string, analysis dialogue.Analysis) (*DialogueSession, error) {
	if sess == nil {
		return nil, &ValidationError{Field: "session", Reason: "must not be nil"}
	}
	if sess.Done() {
		return nil, &ValidationError{Field: "session", Reason: "dialogue already stopped"}
	}

	st, next := dialogue.Advance(sess.State, sess.NextQuestionType, sess.NextQuestion, response, analysis, s.now())
	out := &DialogueSession{LearnerID: sess.LearnerID, State: st}

	if next != nil {
		out.NextQuestionType = *next
		out.NextQuestion = s.phraser.Question(ctx, *next, st.TargetConcept, response)
		return out, nil
	}

	s.log.Info("dialogue stopped",
		"learnerID", sess.LearnerID, "dialogueID", st.ID,
		"reason", st.EndReason, "exchanges", len(st.Exchanges))

	if st.DiscoveryMade {
		if _, err := s.recordAttempt(ctx, PracticeAttempt{
			AttemptID: st.ID + ":discovery",
			LearnerID: sess.LearnerID,
			SkillID:   st.SkillID,
			Correct:   true,
		}, SourceDialogue); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// AnalyzeAndAdvance judges the student's response with the configured
// analyzer and advances the dialogue with that judgment. Callers with
// their own judge use AdvanceDialogue directly.
func (s *Service) AnalyzeAndAdvance(ctx context.Context, sess *DialogueSession, response string) (*DialogueSession, error) {
	if sess == nil {
		return nil, &ValidationError{Field: "session", Reason: "must not be nil"}
	}
	var open []string
	for _, m := range sess.State.Misconceptions {
		if !sess.State.Addressed[m] {
			open = append(open, m)
		}
	}
	analysis := s.analyzer.Analyze(ctx, sess.State.TargetConcept, sess.NextQuestion, response, open)
	return s.AdvanceDialogue(ctx, sess, response, analysis)
}

// EndDialogue closes a session and returns its terminal state and
// effectiveness score. Safe to call on a still-running session to
// abandon it.
func (s *Service) EndDialogue(sess *DialogueSession) (dialogue.State, dialogue.Effectiveness) {
	st := dialogue.End(sess.State)
	return st, st.Effectiveness()
}
