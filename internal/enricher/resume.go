package enricher

// ProcessedIndex remembers which groups an earlier run already enriched,
// so an interrupted batch can be resumed without repeating remote calls.
// Lookup is by id and by normalized username.
type ProcessedIndex struct {
	ids       map[int64]struct{}
	usernames map[string]struct{}
}

// NewProcessedIndex creates an empty index.
func NewProcessedIndex() *ProcessedIndex {
	return &ProcessedIndex{
		ids:       make(map[int64]struct{}),
		usernames: make(map[string]struct{}),
	}
}

// IndexFromRecords builds the index from a previous run's output.
func IndexFromRecords(records []EnrichedRecord) *ProcessedIndex {
	idx := NewProcessedIndex()
	for _, rec := range records {
		idx.Add(rec)
	}
	return idx
}

// Add marks one enriched record as processed.
// Both the input username and the fetched actual username count, mirroring
// how either may appear in a future input file.
func (idx *ProcessedIndex) Add(rec EnrichedRecord) {
	if rec.ID != 0 {
		idx.ids[rec.ID] = struct{}{}
	}
	if u := NormalizeUsername(rec.Username); u != "" {
		idx.usernames[u] = struct{}{}
	}
	if u := NormalizeUsername(rec.ActualUsername); u != "" {
		idx.usernames[u] = struct{}{}
	}
}

// Contains reports whether the record was already processed.
func (idx *ProcessedIndex) Contains(rec GroupRecord) bool {
	if rec.ID != 0 {
		if _, ok := idx.ids[rec.ID]; ok {
			return true
		}
	}
	if u := NormalizeUsername(rec.Username); u != "" {
		if _, ok := idx.usernames[u]; ok {
			return true
		}
	}
	return false
}

// Len returns the number of distinct identifiers in the index.
func (idx *ProcessedIndex) Len() int {
	return len(idx.ids) + len(idx.usernames)
}

// FilterNew splits records into those not yet processed and a skipped count.
func (idx *ProcessedIndex) FilterNew(records []GroupRecord) ([]GroupRecord, int) {
	out := make([]GroupRecord, 0, len(records))
	skipped := 0
	for _, rec := range records {
		if idx.Contains(rec) {
			skipped++
			continue
		}
		out = append(out, rec)
	}
	return out, skipped
}
