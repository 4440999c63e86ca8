package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/blockedby/groupmeta/internal/config"
	"github.com/blockedby/groupmeta/internal/csvio"
	"github.com/blockedby/groupmeta/internal/database"
	"github.com/blockedby/groupmeta/internal/enricher"
	"github.com/blockedby/groupmeta/internal/logger"
	"github.com/blockedby/groupmeta/internal/nats"
	"github.com/blockedby/groupmeta/internal/publisher"
	"github.com/blockedby/groupmeta/internal/telegram"
)

func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// 2. Initialize logger
	if err := logger.Init(cfg.LogLevel, cfg.LogFile); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	log := logger.Get()
	log.Info().Str("input", cfg.InputFile).Str("output", cfg.OutputFile).
		Msg("starting group enricher")

	// 3. Setup context with graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("received shutdown signal")
		cancel()
	}()

	// 4. Open the session database
	db, err := database.Open(cfg.SessionDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open session database")
	}

	// 5. Connect to NATS (optional)
	pub, closePub := connectPublisher(ctx, cfg, log)
	defer closePub()

	// 6. Initialize telegram manager
	if cfg.TGApiID == 0 || cfg.TGApiHash == "" {
		log.Fatal().Msg("TG_API_ID and TG_API_HASH are required")
	}

	tgManager := telegram.NewManager(cfg, db)
	if err := tgManager.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("telegram manager init failed")
	}

	tgClient := telegram.NewClient(tgManager, cfg)
	defer tgClient.Close()
	if tgClient.GetStatus() != telegram.StatusReady {
		log.Fatal().Msg("no telegram session found, run tg-auth first")
	}

	// 7. Read input and skip already processed records
	records, err := csvio.ReadGroupsFile(cfg.InputFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read input file")
	}
	log.Info().Int("records", len(records)).Msg("input loaded")

	previous, err := csvio.ReadEnrichedFile(cfg.OutputFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read previous output")
	}
	index := enricher.IndexFromRecords(previous)
	fresh, skipped := index.FilterNew(records)
	if skipped > 0 {
		log.Info().Int("skipped", skipped).Int("indexed", index.Len()).
			Msg("resuming, already processed records skipped")
	}

	// 8. Enrich, streaming each row to disk as it completes
	out, err := csvio.NewFileWriter(cfg.OutputFile, len(previous) > 0)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open output file")
	}
	defer out.Close()

	svc := enricher.NewService(tgClient, pub, log)
	log.Info().Str("run_id", svc.RunID().String()).
		Float64("delay_seconds", cfg.DelayBetweenRequests).
		Int("max_flood_wait", cfg.MaxFloodWaitSeconds).
		Msg("enrichment started")

	var stats enricher.RunStats
	stats.Skipped = skipped

	for rec := range svc.Enrich(ctx, recordSeq(fresh)) {
		if err := out.Write(rec); err != nil {
			log.Fatal().Err(err).Msg("failed to write output row")
		}
		stats.Observe(rec)
	}

	if ctx.Err() != nil {
		log.Warn().Msg("run interrupted, partial output saved")
	}
	log.Info().
		Int("total", stats.Total).
		Int("successful", stats.Successful).
		Int("access_denied", stats.AccessDenied).
		Int("errors", stats.Errors).
		Int("skipped", stats.Skipped).
		Msg("enrichment finished")
}

// connectPublisher connects to NATS when NATS_URL is set. An empty URL
// disables publishing entirely, no connection is attempted.
func connectPublisher(ctx context.Context, cfg *config.Config, log *logger.Logger) (enricher.EventPublisher, func()) {
	if cfg.NatsURL == "" {
		return nil, func() {}
	}

	nc, err := nats.New(ctx, cfg.NatsURL)
	if err != nil {
		log.Warn().Err(err).Msg("failed to connect to nats, publishing disabled")
		return nil, func() {}
	}
	return publisher.NewNATSPublisher(nc), nc.Close
}

func recordSeq(records []enricher.GroupRecord) func(yield func(enricher.GroupRecord) bool) {
	return func(yield func(enricher.GroupRecord) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}
}
