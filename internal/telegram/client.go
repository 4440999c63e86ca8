// Package telegram wraps the MTProto client for rate-limited group metadata lookups.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/blockedby/groupmeta/internal/config"
	"github.com/blockedby/groupmeta/internal/logger"
	"github.com/celestix/gotgproto"
	"github.com/gotd/td/tg"
)

// Client performs one metadata lookup per call against the Telegram API,
// pacing requests and converting failures into typed FetchError results.
type Client struct {
	manager      *Manager
	limiter      *RateLimiter
	maxFloodWait int // seconds; flood waits above this are not slept through
	log          *logger.Logger

	// lookupFn overrides the real lookup in tests
	lookupFn func(ctx context.Context, ref GroupRef) (*GroupInfo, error)
}

// NewClient creates a telegram client wrapper using the Manager.
// Pacing and the flood-wait cap come from the config.
func NewClient(manager *Manager, cfg *config.Config) *Client {
	delay := time.Duration(cfg.DelayBetweenRequests * float64(time.Second))
	return &Client{
		manager:      manager,
		limiter:      NewRateLimiter(delay),
		maxFloodWait: cfg.MaxFloodWaitSeconds,
		log:          logger.Get(),
	}
}

// Close stops the client via the manager.
func (c *Client) Close() {
	if c.manager != nil {
		c.manager.Stop()
	}
}

// GetStatus returns the current status of the telegram client.
func (c *Client) GetStatus() Status {
	return c.manager.GetStatus()
}

// getProto returns the current protocol client if available.
func (c *Client) getProto() (*gotgproto.Client, error) {
	proto := c.manager.GetClient()
	if proto == nil {
		return nil, fmt.Errorf("telegram client not authorized")
	}
	return proto, nil
}

// API returns the raw tg.Client for direct API calls.
func (c *Client) API() (*tg.Client, error) {
	proto, err := c.getProto()
	if err != nil {
		return nil, err
	}
	return proto.API(), nil
}

// GetGroupInfo fetches metadata for a single group.
//
// On a flood wait within the configured cap it blocks for the
// server-specified duration and retries the same request exactly once; a
// second flood wait, or one above the cap, is surfaced as rate_limited.
// All failures other than context cancellation come back as *FetchError.
func (c *Client) GetGroupInfo(ctx context.Context, ref GroupRef) (*GroupInfo, error) {
	if ref.IsZero() {
		return nil, &FetchError{Kind: KindOther, Err: errors.New("empty group ref")}
	}

	info, err := c.doLookup(ctx, ref)
	if err == nil {
		return info, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	seconds := floodWaitSeconds(err)
	if seconds == 0 {
		return nil, c.classify(ref, err)
	}
	if seconds > c.maxFloodWait {
		c.log.Error().Int("wait_seconds", seconds).Int("cap", c.maxFloodWait).
			Str("ref", ref.String()).Msg("telegram: flood wait above cap, giving up")
		return nil, &FetchError{Kind: KindRateLimited, Err: err}
	}

	// single retry: register the window so the limiter sleeps it out
	c.log.Warn().Int("wait_seconds", seconds).Str("ref", ref.String()).
		Msg("telegram: FLOOD_WAIT, sleeping before the one retry")
	c.limiter.SetFloodWait(seconds)

	info, err = c.doLookup(ctx, ref)
	if err == nil {
		return info, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if floodWaitSeconds(err) > 0 {
		return nil, &FetchError{Kind: KindRateLimited, Err: err}
	}
	return nil, c.classify(ref, err)
}

// classify maps a raw api error to the fetch taxonomy (except flood waits,
// handled by the caller).
func (c *Client) classify(ref GroupRef, err error) *FetchError {
	if isAccessDenied(err) {
		c.log.Warn().Err(err).Str("ref", ref.String()).Msg("telegram: access denied")
		return &FetchError{Kind: KindAccessDenied, Err: err}
	}
	c.log.Error().Err(err).Str("ref", ref.String()).Msg("telegram: lookup failed")
	return &FetchError{Kind: KindOther, Err: err}
}

func (c *Client) doLookup(ctx context.Context, ref GroupRef) (*GroupInfo, error) {
	if c.lookupFn != nil {
		return c.lookupFn(ctx, ref)
	}
	return c.lookup(ctx, ref)
}

// lookup performs one real metadata lookup, no retries.
func (c *Client) lookup(ctx context.Context, ref GroupRef) (*GroupInfo, error) {
	if ref.ID != 0 {
		return c.lookupByID(ctx, ref.ID)
	}
	return c.lookupByUsername(ctx, ref.Username)
}

// lookupByUsername resolves a public username and loads its full info.
func (c *Client) lookupByUsername(ctx context.Context, username string) (*GroupInfo, error) {
	username = strings.TrimPrefix(username, "@")

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.log.Debug().Str("username", username).Msg("telegram: resolving username")
	api, err := c.API()
	if err != nil {
		return nil, err
	}
	resolved, err := api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return nil, fmt.Errorf("resolve username %s: %w", username, err)
	}

	if len(resolved.Chats) == 0 {
		return nil, fmt.Errorf("USERNAME_NOT_OCCUPIED: %s resolves to no chat", username)
	}

	return c.buildInfo(ctx, resolved.Chats[0])
}

// lookupByID loads a peer by bare numeric id. Channels are tried first,
// then basic groups.
func (c *Client) lookupByID(ctx context.Context, id int64) (*GroupInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	c.log.Debug().Int64("id", id).Msg("telegram: loading peer by id")
	api, err := c.API()
	if err != nil {
		return nil, err
	}

	chats, err := api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
		&tg.InputChannel{ChannelID: id},
	})
	if err != nil && strings.Contains(err.Error(), "CHANNEL_INVALID") {
		// not a channel the account knows; try as a basic group
		chats, err = api.MessagesGetChats(ctx, []int64{id})
	}
	if err != nil {
		return nil, fmt.Errorf("get chats %d: %w", id, err)
	}

	list := chats.GetChats()
	if len(list) == 0 {
		return nil, fmt.Errorf("CHANNEL_INVALID: peer %d not found", id)
	}

	return c.buildInfo(ctx, list[0])
}

// buildInfo converts a resolved chat into GroupInfo, fetching full info
// for channels and supergroups.
func (c *Client) buildInfo(ctx context.Context, chat tg.ChatClass) (*GroupInfo, error) {
	switch ch := chat.(type) {
	case *tg.Channel:
		return c.buildChannelInfo(ctx, ch)
	case *tg.Chat:
		// basic groups expose no online count or slow mode
		return &GroupInfo{
			ID:           ch.ID,
			Title:        ch.Title,
			Type:         ChatTypeGroup,
			MembersCount: ch.ParticipantsCount,
		}, nil
	default:
		return nil, fmt.Errorf("unexpected peer type %T", chat)
	}
}

// buildChannelInfo loads ChannelFull for member/online/slow-mode counters.
func (c *Client) buildChannelInfo(ctx context.Context, ch *tg.Channel) (*GroupInfo, error) {
	info := &GroupInfo{
		ID:         ch.ID,
		AccessHash: ch.AccessHash,
		Title:      ch.Title,
		Username:   ch.Username,
		Type:       channelType(ch),
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	api, err := c.API()
	if err != nil {
		return nil, err
	}
	fullCh, err := api.ChannelsGetFullChannel(ctx, &tg.InputChannel{
		ChannelID:  ch.ID,
		AccessHash: ch.AccessHash,
	})
	if err != nil {
		return nil, fmt.Errorf("get full channel %d: %w", ch.ID, err)
	}

	chFull, ok := fullCh.FullChat.(*tg.ChannelFull)
	if !ok {
		// unexpected shape; keep the counters zero-valued
		return info, nil
	}

	info.MembersCount = chFull.ParticipantsCount
	info.OnlineCount = chFull.OnlineCount
	info.SlowModeDelay = chFull.SlowmodeSeconds
	return info, nil
}

// channelType maps channel flags to the output chat type.
func channelType(ch *tg.Channel) ChatType {
	switch {
	case ch.Broadcast:
		return ChatTypeChannel
	case ch.Megagroup:
		return ChatTypeSupergroup
	default:
		return ChatTypeSupergroup
	}
}
