package enricher

import (
	"context"
	"errors"
	"iter"
	"time"

	"github.com/blockedby/groupmeta/internal/logger"
	"github.com/blockedby/groupmeta/internal/telegram"
	"github.com/google/uuid"
)

// Fetcher performs one remote metadata lookup per call.
// Failures are surfaced as *telegram.FetchError; context errors pass through.
type Fetcher interface {
	GetGroupInfo(ctx context.Context, ref telegram.GroupRef) (*telegram.GroupInfo, error)
}

// EventPublisher publishes per-record enrichment events.
type EventPublisher interface {
	PublishRecordEnriched(ctx context.Context, event RecordEnrichedEvent) error
}

// RecordEnrichedEvent is emitted after each record, whatever its outcome.
type RecordEnrichedEvent struct {
	RunID        uuid.UUID    `json:"run_id"`
	GroupID      int64        `json:"group_id,omitempty"`
	Username     string       `json:"username,omitempty"`
	AccessStatus AccessStatus `json:"access_status"`
	MembersCount int          `json:"members_count"`
	CreatedAt    time.Time    `json:"created_at"`
}

// Service is the enrichment pipeline.
// It performs no I/O of its own; records come in and go out as sequences.
type Service struct {
	fetcher   Fetcher
	publisher EventPublisher // optional
	log       *logger.Logger
	runID     uuid.UUID
}

// NewService creates the pipeline. publisher may be nil.
func NewService(fetcher Fetcher, publisher EventPublisher, log *logger.Logger) *Service {
	return &Service{
		fetcher:   fetcher,
		publisher: publisher,
		log:       log,
		runID:     uuid.New(),
	}
}

// RunID identifies this service instance in logs and published events.
func (s *Service) RunID() uuid.UUID {
	return s.runID
}

// Enrich lazily enriches records one at a time, strictly in input order.
// Every input yields exactly one output; a record's failure is recorded in
// its access status and the stream continues. The caller stops the run by
// breaking out of the loop; cancelling ctx stops it before the next fetch,
// and no partially fetched record is ever emitted.
func (s *Service) Enrich(ctx context.Context, records iter.Seq[GroupRecord]) iter.Seq[EnrichedRecord] {
	return func(yield func(EnrichedRecord) bool) {
		for rec := range records {
			if ctx.Err() != nil {
				s.log.Info().Msg("enrich cancelled")
				return
			}

			out, ok := s.enrichOne(ctx, rec)
			if !ok {
				return
			}
			if !yield(out) {
				return
			}
		}
	}
}

// EnrichAll materializes the lazy stream.
func (s *Service) EnrichAll(ctx context.Context, records []GroupRecord) []EnrichedRecord {
	out := make([]EnrichedRecord, 0, len(records))
	for rec := range s.Enrich(ctx, sliceSeq(records)) {
		out = append(out, rec)
	}
	return out
}

// enrichOne processes a single record. The bool result is false only when
// the context died mid-fetch and the record must not be emitted.
func (s *Service) enrichOne(ctx context.Context, rec GroupRecord) (EnrichedRecord, bool) {
	out := EnrichedRecord{
		GroupRecord: rec,
		ChatType:    telegram.ChatTypeUnknown,
	}

	ref := rec.Ref()
	if ref.IsZero() {
		out.AccessStatus = StatusError
		out.ErrorMessage = "missing identifier"
		s.log.Warn().Str("title", rec.Title).Msg("record has neither id nor username")
		s.publish(ctx, out)
		return out, true
	}

	info, err := s.fetcher.GetGroupInfo(ctx, ref)
	switch {
	case err == nil:
		out.AccessStatus = StatusSuccess
		out.ActualTitle = info.Title
		out.ActualUsername = info.Username
		out.MembersCount = info.MembersCount
		out.OnlineCount = info.OnlineCount
		out.ChatType = info.Type
		out.SlowModeDelay = info.SlowModeDelay
		if out.ID == 0 {
			out.ID = info.ID
		}
		s.log.Info().Str("ref", ref.String()).Str("title", info.Title).
			Int("members", info.MembersCount).Msg("enriched")

	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return out, false

	default:
		fe, ok := telegram.AsFetchError(err)
		if ok && fe.Kind == telegram.KindAccessDenied {
			out.AccessStatus = StatusAccessDenied
			// best identification we have for a group we cannot see
			out.ActualTitle = rec.Title
			out.ActualUsername = NormalizeUsername(rec.Username)
			s.log.Warn().Str("ref", ref.String()).Msg("access denied")
		} else {
			out.AccessStatus = StatusError
			out.ErrorMessage = err.Error()
			s.log.Error().Err(err).Str("ref", ref.String()).Msg("enrichment failed")
		}
	}

	s.publish(ctx, out)
	return out, true
}

// publish sends the per-record event, best effort.
func (s *Service) publish(ctx context.Context, rec EnrichedRecord) {
	if s.publisher == nil {
		return
	}

	event := RecordEnrichedEvent{
		RunID:        s.runID,
		GroupID:      rec.ID,
		Username:     NormalizeUsername(rec.Username),
		AccessStatus: rec.AccessStatus,
		MembersCount: rec.MembersCount,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.publisher.PublishRecordEnriched(ctx, event); err != nil {
		s.log.Warn().Err(err).Msg("failed to publish record event")
	}
}

func sliceSeq(records []GroupRecord) iter.Seq[GroupRecord] {
	return func(yield func(GroupRecord) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}
}
