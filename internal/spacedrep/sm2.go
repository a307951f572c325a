package spacedrep

import "time"

// MinEasiness is the SM-2 easiness factor floor.
const MinEasiness = 1.3

// DefaultEasiness seeds new review state.
const DefaultEasiness = 2.5

// State holds the SM-2 scheduling state for one (learner, skill) pair.
type State struct {
	EasinessFactor  float64
	RepetitionCount int
	IntervalDays    int
	DueAt           time.Time
	LastReviewedAt  time.Time
}

// NewState returns the initial review state: due immediately.
func NewState(now time.Time) State {
	return State{
		EasinessFactor: DefaultEasiness,
		DueAt:          now,
	}
}

// Schedule applies one review with the given recall grade (0..5) and
// returns the updated state. Grades below 3 reset the repetition streak
// and put the skill back on a one-day interval; passing grades extend the
// interval by the SM-2 table and adjust the easiness factor, which never
// drops below MinEasiness.
func Schedule(s State, grade Grade, now time.Time) State {
	g := grade.clamp()

	if g < 3 {
		s.RepetitionCount = 0
		s.IntervalDays = 1
	} else {
		s.RepetitionCount++
		switch s.RepetitionCount {
		case 1:
			s.IntervalDays = 1
		case 2:
			s.IntervalDays = 6
		default:
			s.IntervalDays = roundInterval(float64(s.IntervalDays) * s.EasinessFactor)
		}
	}

	q := float64(g)
	ef := s.EasinessFactor + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if ef < MinEasiness {
		ef = MinEasiness
	}
	s.EasinessFactor = ef

	s.LastReviewedAt = now
	s.DueAt = now.AddDate(0, 0, s.IntervalDays)
	return s
}

// IsDue reports whether the skill is at or past its review date.
func (s State) IsDue(now time.Time) bool {
	return !now.Before(s.DueAt)
}

// OverdueDays returns how many days past due the skill is, 0 if not due.
func (s State) OverdueDays(now time.Time) float64 {
	if now.Before(s.DueAt) {
		return 0
	}
	return now.Sub(s.DueAt).Hours() / 24.0
}

func roundInterval(days float64) int {
	n := int(days + 0.5)
	if n < 1 {
		n = 1
	}
	return n
}
