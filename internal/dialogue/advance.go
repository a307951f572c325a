package dialogue

import "time"

// Advance applies one completed exchange to the state and returns the new
// state plus the next question type, or nil when the dialogue should stop
// (discovery reported, misconceptions all addressed, or budget spent —
// whichever comes first). Pure: the input state is not mutated.
func Advance(s State, questionType QuestionType, question, response string, analysis Analysis, now time.Time) (State, *QuestionType) {
	next := s.clone()

	if next.Status == StatusNotStarted {
		next.Status = StatusQuestioning
	}
	if next.Status != StatusQuestioning {
		// Terminal states accept no further exchanges.
		return next, nil
	}

	next.Exchanges = append(next.Exchanges, Exchange{
		QuestionType:    questionType,
		TutorQuestion:   question,
		StudentResponse: response,
		Understanding:   analysis.Understanding,
		LedToDiscovery:  analysis.DiscoveryMade,
		SelfAdvanced:    analysis.SelfAdvanced,
		Timestamp:       now,
	})
	for _, m := range analysis.MisconceptionsAddressed {
		next.Addressed[m] = true
	}

	switch {
	case analysis.DiscoveryMade:
		next.Status = StatusDiscovery
		next.DiscoveryMade = true
		next.DiscoveryDescription = analysis.DiscoveryDescription
		next.EndReason = ReasonDiscovery
		return next, nil
	case next.misconceptionsDone():
		next.Status = StatusExhausted
		next.EndReason = ReasonMisconceptionsAddressed
		return next, nil
	case len(next.Exchanges) >= next.MaxExchanges:
		next.Status = StatusExhausted
		next.EndReason = ReasonBudgetExhausted
		return next, nil
	}

	nq := nextQuestionType(questionType, analysis.Understanding)
	return next, &nq
}

// End moves a stopped (or abandoned) dialogue to its terminal state.
func End(s State) State {
	next := s.clone()
	next.Status = StatusEnded
	return next
}

// nextQuestionType steps the progression ladder. Good understanding moves
// up a rung, confusion steps back toward clarifying, anything in between
// stays put. The ladder never skips rungs.
func nextQuestionType(current QuestionType, u Understanding) QuestionType {
	idx := 0
	for i, qt := range progression {
		if qt == current {
			idx = i
			break
		}
	}
	switch {
	case u >= UnderstandingAdvancing && idx < len(progression)-1:
		idx++
	case u == UnderstandingNone && idx > 0:
		idx--
	}
	return progression[idx]
}

func (s State) clone() State {
	next := s
	next.Misconceptions = append([]string(nil), s.Misconceptions...)
	next.Exchanges = append([]Exchange(nil), s.Exchanges...)
	next.Addressed = make(map[string]bool, len(s.Addressed))
	for k, v := range s.Addressed {
		next.Addressed[k] = v
	}
	return next
}
