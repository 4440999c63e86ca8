// Package publisher adapts the nats client to the enricher's event interface.
package publisher

import (
	"context"
	"fmt"

	"github.com/blockedby/groupmeta/internal/enricher"
	"github.com/blockedby/groupmeta/internal/nats"
)

// JetStreamClient is the slice of the nats client the publisher needs,
// kept as an interface for tests.
type JetStreamClient interface {
	Publish(ctx context.Context, subject string, data any) error
}

// NATSPublisher implements enricher.EventPublisher over JetStream.
type NATSPublisher struct {
	js JetStreamClient
}

// NewNATSPublisher creates a publisher on top of an established client.
func NewNATSPublisher(client *nats.Client) *NATSPublisher {
	return &NATSPublisher{js: client}
}

// PublishRecordEnriched publishes one per-record enrichment event.
func (p *NATSPublisher) PublishRecordEnriched(ctx context.Context, event enricher.RecordEnrichedEvent) error {
	if err := p.js.Publish(ctx, nats.SubjectEnrich, event); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
