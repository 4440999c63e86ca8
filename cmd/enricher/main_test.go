package main

import (
	"context"
	"testing"
	"time"

	"github.com/blockedby/groupmeta/internal/config"
	"github.com/blockedby/groupmeta/internal/logger"
)

func TestConnectPublisher_EmptyURLDisablesPublishing(t *testing.T) {
	cfg := &config.Config{NatsURL: ""}

	start := time.Now()
	pub, closePub := connectPublisher(context.Background(), cfg, logger.Get())
	defer closePub()

	if pub != nil {
		t.Error("empty NATS_URL must not produce a publisher")
	}
	// no connection attempt means no dial or timeout
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("empty NATS_URL should not attempt a connection, took %v", elapsed)
	}
}

func TestConnectPublisher_UnreachableURL(t *testing.T) {
	// port 1 refuses immediately, the run continues without publishing
	cfg := &config.Config{NatsURL: "nats://127.0.0.1:1"}

	pub, closePub := connectPublisher(context.Background(), cfg, logger.Get())
	defer closePub()

	if pub != nil {
		t.Error("a failed connection must not produce a publisher")
	}
}
