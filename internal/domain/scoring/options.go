package scoring

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithAmountWeight sets the maximum amount sub-score.
func WithAmountWeight(weight float64) Option {
	return func(s *Scorer) {
		if weight >= 0 {
			s.amountWeight = weight
		}
	}
}

// WithDateWeight sets the maximum date sub-score.
func WithDateWeight(weight float64) Option {
	return func(s *Scorer) {
		if weight >= 0 {
			s.dateWeight = weight
		}
	}
}

// WithTextWeight sets the maximum text sub-score. Tier sizes scale with
// it: at the default 30 the tiers award 20, 15 and 10 points.
func WithTextWeight(weight float64) Option {
	return func(s *Scorer) {
		if weight >= 0 {
			s.textWeight = weight
		}
	}
}

// WithProximityWindowDays sets the date proximity window in days.
func WithProximityWindowDays(days int) Option {
	return func(s *Scorer) {
		if days >= 0 {
			s.windowDays = days
		}
	}
}

// WithTolerancePercent sets the amount tolerance used in explanations of
// near-miss amounts.
func WithTolerancePercent(percent float64) Option {
	return func(s *Scorer) {
		if percent >= 0 {
			s.tolerancePercent = percent
		}
	}
}
