package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "casedesk/docs"
	"casedesk/internal/config"
	"casedesk/internal/email/noop"
	"casedesk/internal/email/ses"
	"casedesk/internal/handler"
	"casedesk/internal/ocr"
	"casedesk/internal/port"
	"casedesk/internal/repository/postgres"
	"casedesk/internal/router"
	"casedesk/internal/service"
	"casedesk/internal/storage/dropbox"
	s3storage "casedesk/internal/storage/s3"
)

// @title        CaseDesk API
// @version      1.0
// @description  Client intake and document extraction service for immigration casework.
// @BasePath     /api/v1

// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	caseRepo := postgres.NewCaseRepo(db)
	docRepo := postgres.NewDocumentRepo(db)
	recordRepo := postgres.NewCaseRecordRepo(db)
	conflictRepo := postgres.NewConflictRepo(db)

	// Initialize external clients
	storage, err := newStorage(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize file storage: %w", err)
	}
	extractor := ocr.NewClient(&cfg.OCR)
	notifier, err := newNotifier(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize notifier: %w", err)
	}

	// Initialize services
	caseSvc := service.NewCaseService(caseRepo, recordRepo, conflictRepo)
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

	// Initialize handlers
	caseH := handler.NewCaseHandler(caseSvc)
	docH := handler.NewDocumentHandler(docSvc)
	conflictH := handler.NewConflictHandler(caseSvc)
	ocrH := handler.NewOCRHandler(worker)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, caseH, docH, conflictH, ocrH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		stop()
		<-workerDone
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
	<-workerDone
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
