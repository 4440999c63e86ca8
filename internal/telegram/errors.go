package telegram

import (
	"errors"
	"fmt"
	"strings"
)

// FetchKind classifies a failed metadata lookup.
type FetchKind string

// Fetch failure kinds.
const (
	// KindAccessDenied - the group is private, the username does not exist,
	// or the account lacks rights. Never retried.
	KindAccessDenied FetchKind = "access_denied"

	// KindRateLimited - a flood wait hit the single retry or exceeded the
	// configured cap. Not retried further.
	KindRateLimited FetchKind = "rate_limited"

	// KindOther - any other remote or network failure.
	KindOther FetchKind = "other"
)

// FetchError is the typed result of a failed lookup.
// The fetcher never surfaces failures in any other form.
type FetchError struct {
	Kind FetchKind
	Err  error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError unwraps err to a *FetchError if there is one in the chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// accessDeniedCodes are the rpc error codes the original account cannot work
// around by retrying: private channels, dead usernames, missing rights.
var accessDeniedCodes = []string{
	"CHANNEL_PRIVATE",
	"CHANNEL_INVALID",
	"CHAT_ADMIN_REQUIRED",
	"USERNAME_NOT_OCCUPIED",
	"USERNAME_INVALID",
	"USER_BANNED_IN_CHANNEL",
}

// isAccessDenied reports whether err is a forbidden/private signal.
func isAccessDenied(err error) bool {
	if err == nil {
		return false
	}
	str := err.Error()
	for _, code := range accessDeniedCodes {
		if strings.Contains(str, code) {
			return true
		}
	}
	return false
}

// floodWaitSeconds checks if error is a FLOOD_WAIT error and returns wait seconds.
// gotgproto/gotd errors are usually wrapped, so we match the error string
// rather than couple to the gotd error type.
func floodWaitSeconds(err error) int {
	if err == nil {
		return 0
	}

	str := err.Error()
	if !strings.Contains(str, "FLOOD_WAIT_") {
		return 0
	}

	// format is FLOOD_WAIT_X where X is seconds,
	// e.g. "rpc error code 420: FLOOD_WAIT_15"
	var seconds int
	parts := strings.Split(str, "FLOOD_WAIT_")
	if len(parts) > 1 {
		numStr := strings.TrimSpace(parts[1])
		// a suffix like " (caused by ...)" may follow the number
		_, _ = fmt.Sscanf(numStr, "%d", &seconds)
	}
	return seconds
}
