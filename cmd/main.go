package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"khabar/internal/audio"
	"khabar/internal/config"
	"khabar/internal/database"
	"khabar/internal/domain"
	"khabar/internal/ingest"
	"khabar/internal/newsapi"
	"khabar/internal/notify"
	"khabar/internal/scheduler"
	"khabar/internal/server"
	"khabar/internal/summary"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	start := time.Now()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.ErrorContext(ctx, "Failed to load config",
			"error", err)

		return
	}

	db, err := database.New(ctx, cfg.DBPath, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize db",
			"error", err,
			"dbPath", cfg.DBPath)

		return
	}
	defer func() {
		if err = db.Close(); err != nil {
			log.ErrorContext(ctx, "Failed to close db",
				"error", err,
				"dbPath", cfg.DBPath)
		}
	}()
	log.InfoContext(ctx, "DB is initialized",
		"dbPath", cfg.DBPath)

	synth, err := audio.NewSynthesizer(cfg.AudioDir, "/static/audio", log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to initialize audio synthesizer",
			"error", err,
			"audioDir", cfg.AudioDir)

		return
	}

	gemini := initGeminiSummarizer(ctx, cfg.GeminiAPIKey, log)
	if gemini != nil {
		defer gemini.Close()
	}

	pipeline := summary.NewPipeline(
		summary.NewPageFetcher(log),
		buildStages(ctx, gemini, cfg.HuggingFaceAPIKey, log),
		synth,
		log)

	relay := notify.NewRelay(cfg.FCMServerKey, db, log)
	if !relay.Enabled() {
		log.WarnContext(ctx, "FCM_SERVER_KEY is missing so push notifications are disabled",
			"envVar", "FCM_SERVER_KEY")
	}

	news := newsapi.New(cfg.NewsAPIKey, log)
	if !news.Enabled() {
		log.WarnContext(ctx, "NEWS_API_KEY is missing so headline fetching is disabled",
			"envVar", "NEWS_API_KEY")
	}

	feeds, err := parseRSSFeeds(cfg.RSSFeeds)
	if err != nil {
		log.ErrorContext(ctx, "RSS_FEEDS must be a comma-separated list of url|language|category triples",
			"error", err)

		return
	}

	fetcher := ingest.NewFetcher(db, news, feeds, relay, log)

	sched := scheduler.New(ctx, fetcher, log)
	if err = sched.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start scheduler",
			"error", err,
			"fetchSpec", scheduler.FetchSpec,
			"cleanupSpec", scheduler.CleanupSpec)

		return
	}
	defer sched.Stop()
	log.InfoContext(ctx, "Scheduler is started",
		"fetchSpec", scheduler.FetchSpec,
		"cleanupSpec", scheduler.CleanupSpec,
		"timezone", time.FixedZone(scheduler.Timezone, scheduler.TimezoneOffsetSeconds).String())

	go func() {
		if _, fetchErr := fetcher.FetchAndStoreAll(ctx); fetchErr != nil {
			log.ErrorContext(ctx, "Startup fetch finished with errors",
				"error", fetchErr)
		}
	}()

	srv := server.New(db, pipeline, relay, cfg.AdminAPIKey, cfg.AudioDir, log)
	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Router(),
	}

	go func() {
		if serveErr := httpServer.ListenAndServe(); serveErr != nil &&
			!errors.Is(serveErr, http.ErrServerClosed) {
			log.ErrorContext(ctx, "HTTP server failed",
				"error", serveErr,
				"addr", httpServer.Addr)
			cancel()
		}
	}()
	log.InfoContext(ctx, "HTTP server is started",
		"addr", httpServer.Addr)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-c:
		log.InfoContext(ctx, "Shutdown signal is received",
			"signal", sig.String())
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err = httpServer.Shutdown(shutdownCtx); err != nil {
		log.ErrorContext(shutdownCtx, "Failed to shut down HTTP server",
			"error", err)
	}

	log.InfoContext(ctx, "Exiting...",
		"uptimeSeconds", time.Since(start).Seconds())
}

func initGeminiSummarizer(
	ctx context.Context,
	apiKey string,
	log *slog.Logger,
) *summary.GeminiSummarizer {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		log.WarnContext(ctx, "GEMINI_API_KEY is missing so fallback will be used",
			"envVar", "GEMINI_API_KEY")

		return nil
	}

	s, err := summary.NewGeminiSummarizer(ctx, apiKey, log)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create Gemini summarizer so fallback will be used",
			"error", err,
			"envVar", "GEMINI_API_KEY")

		return nil
	}

	log.InfoContext(ctx, "Gemini summarizer is initialized",
		"provider", "gemini")

	return s
}

func buildStages(
	ctx context.Context,
	gemini *summary.GeminiSummarizer,
	huggingFaceAPIKey string,
	log *slog.Logger,
) []summary.Stage {
	var stages []summary.Stage

	if gemini != nil {
		stages = append(stages, summary.Stage{
			Remote:     gemini,
			Provenance: summary.ProvenanceGemini,
			MinChars:   summary.GeminiMinAcceptChars,
		})
	}

	huggingFaceAPIKey = strings.TrimSpace(huggingFaceAPIKey)
	if huggingFaceAPIKey == "" {
		log.WarnContext(ctx, "HUGGINGFACE_API_KEY is missing so fallback will be used",
			"envVar", "HUGGINGFACE_API_KEY")
	} else {
		stages = append(stages, summary.Stage{
			Remote:     summary.NewHuggingFaceSummarizer(huggingFaceAPIKey, log),
			Provenance: summary.ProvenanceHuggingFace,
			MinChars:   summary.HuggingFaceMinAcceptChars,
		})
	}

	return stages
}

func parseRSSFeeds(raw []string) ([]domain.RSSFeed, error) {
	var feeds []domain.RSSFeed

	for _, entry := range raw {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}

		parts := strings.Split(entry, "|")
		if len(parts) != 3 {
			return nil, errors.New("invalid feed entry: " + entry)
		}

		feeds = append(feeds, domain.RSSFeed{
			URL:      strings.TrimSpace(parts[0]),
			Language: strings.TrimSpace(parts[1]),
			Category: strings.TrimSpace(parts[2]),
		})
	}

	return feeds, nil
}
