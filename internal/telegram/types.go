package telegram

import (
	"fmt"
	"strconv"
)

// ChatType classifies a resolved peer.
type ChatType string

// Chat type values as written to output rows.
const (
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
	ChatTypeUnknown    ChatType = "unknown"
)

// GroupRef identifies a group for a metadata lookup.
// Either ID or Username must be set; ID wins when both are present.
type GroupRef struct {
	ID       int64  // numeric peer id
	Username string // public username (with or without @)
}

// IsZero reports whether the ref carries no identifier at all.
func (r GroupRef) IsZero() bool {
	return r.ID == 0 && r.Username == ""
}

// String returns a loggable form of the ref.
func (r GroupRef) String() string {
	if r.ID != 0 {
		return strconv.FormatInt(r.ID, 10)
	}
	if r.Username != "" {
		return fmt.Sprintf("@%s", r.Username)
	}
	return "<empty>"
}

// GroupInfo is the metadata fetched for a single group.
type GroupInfo struct {
	ID            int64    // peer id
	AccessHash    int64    // access hash for follow-up api calls
	Title         string   // current title
	Username      string   // current public username (without @), empty if private
	Type          ChatType // group | supergroup | channel | unknown
	MembersCount  int      // participant count, 0 if not exposed
	OnlineCount   int      // currently online, 0 if not exposed
	SlowModeDelay int      // slow mode seconds, 0 when disabled
}
