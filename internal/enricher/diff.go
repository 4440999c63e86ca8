package enricher

// RecordChange describes how a single group changed between two enrichment runs.
type RecordChange struct {
	ID             int64
	Username       string
	OldTitle       string
	NewTitle       string
	MembersDelta   int
	OldStatus      AccessStatus
	NewStatus      AccessStatus
	TitleChanged   bool
	StatusChanged  bool
	MembersChanged bool
}

// SnapshotDiff summarizes the differences between an older and a newer run.
type SnapshotDiff struct {
	Changed []RecordChange
	Added   []EnrichedRecord
	Removed []EnrichedRecord
}

// Empty reports whether the two snapshots are effectively identical.
func (d *SnapshotDiff) Empty() bool {
	return len(d.Changed) == 0 && len(d.Added) == 0 && len(d.Removed) == 0
}

type snapshotKey struct {
	id       int64
	username string
}

// keyOf identifies a record by id when present, otherwise by normalized
// username, so renamed groups still match across runs.
func keyOf(rec EnrichedRecord) snapshotKey {
	if rec.ID != 0 {
		return snapshotKey{id: rec.ID}
	}
	return snapshotKey{username: NormalizeUsername(rec.Username)}
}

// Diff compares two enrichment snapshots and reports per-group changes.
// Records present only in the newer snapshot land in Added, records that
// disappeared land in Removed.
func Diff(older, newer []EnrichedRecord) *SnapshotDiff {
	diff := &SnapshotDiff{}

	oldByKey := make(map[snapshotKey]EnrichedRecord, len(older))
	for _, rec := range older {
		oldByKey[keyOf(rec)] = rec
	}

	seen := make(map[snapshotKey]struct{}, len(newer))
	for _, rec := range newer {
		key := keyOf(rec)
		seen[key] = struct{}{}

		prev, ok := oldByKey[key]
		if !ok {
			diff.Added = append(diff.Added, rec)
			continue
		}

		change := RecordChange{
			ID:           rec.ID,
			Username:     rec.Username,
			OldTitle:     prev.ActualTitle,
			NewTitle:     rec.ActualTitle,
			MembersDelta: rec.MembersCount - prev.MembersCount,
			OldStatus:    prev.AccessStatus,
			NewStatus:    rec.AccessStatus,
		}
		change.TitleChanged = change.OldTitle != change.NewTitle
		change.StatusChanged = change.OldStatus != change.NewStatus
		change.MembersChanged = change.MembersDelta != 0

		if change.TitleChanged || change.StatusChanged || change.MembersChanged {
			diff.Changed = append(diff.Changed, change)
		}
	}

	for _, rec := range older {
		if _, ok := seen[keyOf(rec)]; !ok {
			diff.Removed = append(diff.Removed, rec)
		}
	}

	return diff
}
