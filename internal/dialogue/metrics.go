package dialogue

// Effectiveness is the descriptive quality score of a finished dialogue.
// It never gates engine behavior.
type Effectiveness struct {
	Score                   float64
	SelfDiscoveryRate       float64
	ExchangeEfficiency      float64
	MisconceptionsAddressed float64
}

// Metric weights. Self-driven reasoning counts most.
const (
	weightSelfDiscovery  = 0.4
	weightMisconceptions = 0.3
	weightEfficiency     = 0.3
)

// Effectiveness scores the session:
//   - selfDiscoveryRate: fraction of exchanges where the student's own
//     reasoning advanced understanding,
//   - exchangeEfficiency: 1/exchangeCount normalized against the budget
//     (one exchange to discovery scores 1, using the whole budget scores 0),
//   - misconceptionsAddressed: fraction of tracked misconceptions resolved
//     (1 when none were tracked).
func (s *State) Effectiveness() Effectiveness {
	count := len(s.Exchanges)
	if count == 0 {
		return Effectiveness{}
	}

	selfAdvanced := 0
	for _, ex := range s.Exchanges {
		if ex.SelfAdvanced || ex.LedToDiscovery || ex.Understanding >= UnderstandingAdvancing {
			selfAdvanced++
		}
	}
	selfRate := float64(selfAdvanced) / float64(count)

	efficiency := 1.0
	if s.MaxExchanges > 1 {
		inv := 1.0 / float64(count)
		floor := 1.0 / float64(s.MaxExchanges)
		efficiency = (inv - floor) / (1 - floor)
		if efficiency < 0 {
			efficiency = 0
		}
	}

	addressed := 1.0
	if len(s.Misconceptions) > 0 {
		n := 0
		for _, m := range s.Misconceptions {
			if s.Addressed[m] {
				n++
			}
		}
		addressed = float64(n) / float64(len(s.Misconceptions))
	}

	return Effectiveness{
		Score: weightSelfDiscovery*selfRate +
			weightMisconceptions*addressed +
			weightEfficiency*efficiency,
		SelfDiscoveryRate:       selfRate,
		ExchangeEfficiency:      efficiency,
		MisconceptionsAddressed: addressed,
	}
}
