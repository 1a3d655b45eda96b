package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"casedesk/internal/config"
	"casedesk/internal/email/noop"
	"casedesk/internal/email/ses"
	"casedesk/internal/ocr"
	"casedesk/internal/port"
	"casedesk/internal/repository/postgres"
	"casedesk/internal/service"
	"casedesk/internal/storage/dropbox"
	s3storage "casedesk/internal/storage/s3"
)

// Standalone queue worker. Runs the same extraction loop the server embeds,
// for deployments that separate API and background processing.
func main() {
	once := flag.Bool("once", false, "claim and process a single batch, print the report, and exit")
	flag.Parse()

	if err := run(*once); err != nil {
		log.Fatal(err)
	}
}

func run(once bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	caseRepo := postgres.NewCaseRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	recordRepo := postgres.NewCaseRecordRepo(db)
	conflictRepo := postgres.NewConflictRepo(db)

	storage, err := newStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize file storage: %w", err)
	}
	extractor := ocr.NewClient(&cfg.OCR)
	notifier, err := newNotifier(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	docSvc := service.NewDocumentService(
		docRepo, caseRepo, recordRepo, conflictRepo,
		storage, extractor, notifier,
		cfg.Storage.RootPrefix, cfg.Storage.MaxFileSizeMB,
	)

	worker := service.NewOCRQueueWorker(docRepo, docSvc, service.OCRQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		MaxAttempts:  cfg.Queue.MaxAttempts,
		Concurrency:  cfg.Queue.Concurrency,
		StaleAfter:   time.Duration(cfg.Queue.StaleAfterSecs) * time.Second,
	})

	if once {
		report, err := worker.RunOnce(context.Background())
		if err != nil {
			return fmt.Errorf("batch run failed: %w", err)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	worker.Start(ctx)
	return nil
}

func newStorage(cfg *config.Config) (port.FileStorage, error) {
	switch cfg.Storage.Provider {
	case "s3":
		return s3storage.NewStorage(&cfg.S3)
	case "dropbox":
		return dropbox.NewClient(&cfg.Dropbox), nil
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Storage.Provider)
	}
}

func newNotifier(cfg *config.Config) (port.NotificationSender, error) {
	switch cfg.Email.Provider {
	case "ses":
		return ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.NotifyAddress)
	case "noop":
		return noop.NewNoopSender(), nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", cfg.Email.Provider)
	}
}
