package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/blockedby/groupmeta/internal/enricher"
	"github.com/blockedby/groupmeta/internal/nats"
)

// MockJetStreamClient records the last publish call.
type MockJetStreamClient struct {
	PublishedSubject string
	PublishedData    any
	PublishError     error
}

func (m *MockJetStreamClient) Publish(_ context.Context, subject string, data any) error {
	m.PublishedSubject = subject
	m.PublishedData = data
	return m.PublishError
}

func TestNATSPublisher_PublishRecordEnriched(t *testing.T) {
	mock := &MockJetStreamClient{}
	pub := &NATSPublisher{js: mock}

	event := enricher.RecordEnrichedEvent{
		RunID:        uuid.New(),
		GroupID:      123456,
		Username:     "golang",
		AccessStatus: enricher.StatusSuccess,
		MembersCount: 54321,
		CreatedAt:    time.Now().UTC(),
	}

	if err := pub.PublishRecordEnriched(context.Background(), event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mock.PublishedSubject != nats.SubjectEnrich {
		t.Errorf("subject = %s, want %s", mock.PublishedSubject, nats.SubjectEnrich)
	}
	got, ok := mock.PublishedData.(enricher.RecordEnrichedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", mock.PublishedData)
	}
	if got.GroupID != event.GroupID {
		t.Errorf("group id = %d, want %d", got.GroupID, event.GroupID)
	}
}

func TestNATSPublisher_PublishError(t *testing.T) {
	mock := &MockJetStreamClient{PublishError: errors.New("nats down")}
	pub := &NATSPublisher{js: mock}

	err := pub.PublishRecordEnriched(context.Background(), enricher.RecordEnrichedEvent{})
	if err == nil {
		t.Fatal("expected an error when the client fails")
	}
}
