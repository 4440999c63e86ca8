package enricher

// RunStats aggregates per-record outcomes for the end-of-run summary.
type RunStats struct {
	Total        int
	Successful   int
	AccessDenied int
	Errors       int
	Skipped      int // records filtered out before fetching (resume)
}

// Observe counts one emitted record.
func (s *RunStats) Observe(rec EnrichedRecord) {
	s.Total++
	switch rec.AccessStatus {
	case StatusSuccess:
		s.Successful++
	case StatusAccessDenied:
		s.AccessDenied++
	default:
		s.Errors++
	}
}

// Summarize computes stats over a finished batch.
func Summarize(records []EnrichedRecord) RunStats {
	var stats RunStats
	for _, rec := range records {
		stats.Observe(rec)
	}
	return stats
}
