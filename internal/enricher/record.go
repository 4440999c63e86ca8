// Package enricher implements the batch enrichment pipeline: it takes group
// records, looks each one up through the rate-limited fetcher, and classifies
// the outcome per record.
package enricher

import (
	"strings"

	"github.com/blockedby/groupmeta/internal/telegram"
)

// AccessStatus classifies the outcome of one record's enrichment.
type AccessStatus string

// Access status values as written to output rows.
const (
	StatusSuccess      AccessStatus = "success"
	StatusAccessDenied AccessStatus = "access_denied"
	StatusError        AccessStatus = "error"
)

// GroupRecord is one input row.
// ID and Username are both optional, but a lookup needs at least one.
type GroupRecord struct {
	ID       int64  // numeric group id, 0 if absent
	Username string // public username, may carry @ or t.me prefix
	Title    string // caller-supplied title, informational only
	Date     string // caller-supplied date, passed through untouched
}

// Ref builds the lookup reference for this record.
// The id wins when both identifiers are present.
func (r GroupRecord) Ref() telegram.GroupRef {
	return telegram.GroupRef{
		ID:       r.ID,
		Username: NormalizeUsername(r.Username),
	}
}

// EnrichedRecord is one output row: the input record plus fetched fields.
// Created exactly once per input and never mutated after emission.
type EnrichedRecord struct {
	GroupRecord

	ActualTitle    string
	ActualUsername string
	MembersCount   int
	OnlineCount    int
	ChatType       telegram.ChatType
	SlowModeDelay  int
	AccessStatus   AccessStatus
	ErrorMessage   string // empty unless AccessStatus is error
}

// NormalizeUsername strips @ and t.me link prefixes and lowercases the rest,
// so usernames compare equal regardless of how the source CSV spelled them.
func NormalizeUsername(username string) string {
	u := strings.TrimSpace(username)
	u = strings.TrimPrefix(u, "https://t.me/")
	u = strings.TrimPrefix(u, "http://t.me/")
	u = strings.TrimPrefix(u, "t.me/")
	u = strings.TrimPrefix(u, "@")
	return strings.ToLower(u)
}
