package ranking

// Option applies a configuration option to the Ranker.
type Option func(*Ranker)

// WithWorkerCount sets the number of goroutines scoring pairs in parallel.
func WithWorkerCount(count int) Option {
	return func(r *Ranker) {
		if count > 0 {
			r.workers = count
		}
	}
}

// WithMaxTopN caps the number of candidates a single request may ask for.
func WithMaxTopN(limit int) Option {
	return func(r *Ranker) {
		if limit > 0 {
			r.maxTopN = limit
		}
	}
}
