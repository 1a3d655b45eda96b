package service

import (
	"context"
	"log"
	"sync"
	"time"

	"casedesk/internal/domain"
	"casedesk/internal/port"
)

// OCRQueueConfig holds settings for the OCR queue worker.
type OCRQueueConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
	Concurrency  int
	StaleAfter   time.Duration
}

// OCRQueueWorker polls for queued documents and dispatches them for
// extraction. Documents stuck in processing past StaleAfter are swept back to
// queued before each claim.
type OCRQueueWorker struct {
	docRepo    port.DocumentRepository
	docService DocumentService
	cfg        OCRQueueConfig
	wg         sync.WaitGroup
}

// NewOCRQueueWorker creates a new OCRQueueWorker.
func NewOCRQueueWorker(docRepo port.DocumentRepository, docService DocumentService, cfg OCRQueueConfig) *OCRQueueWorker {
	return &OCRQueueWorker{
		docRepo:    docRepo,
		docService: docService,
		cfg:        cfg,
	}
}

// RunOnce claims and processes a single batch, blocking until every claimed
// document finishes. It returns a report of the batch for the caller.
func (w *OCRQueueWorker) RunOnce(ctx context.Context) (*domain.RunReport, error) {
	w.sweepStale(ctx)

	docs, err := w.docRepo.ClaimQueued(ctx, w.cfg.Concurrency, w.cfg.MaxAttempts)
	if err != nil {
		return nil, err
	}

	report := &domain.RunReport{
		Attempted: len(docs),
		Details:   make([]domain.RunDetail, len(docs)),
	}

	sem := make(chan struct{}, w.cfg.Concurrency)
	var wg sync.WaitGroup
	for i := range docs {
		i := i
		doc := docs[i]

		sem <- struct{}{}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			report.Details[i] = w.docService.ProcessDocument(ctx, &doc, w.cfg.MaxAttempts)
		}()
	}
	wg.Wait()

	for _, d := range report.Details {
		if d.Outcome == "completed" {
			report.Succeeded++
		} else if d.Outcome == "failed" {
			report.Failed++
		}
	}
	return report, nil
}

// Start runs the polling loop until ctx is canceled. It blocks until all
// in-flight extractions have finished.
func (w *OCRQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("ocrQueueWorker: started (poll=%s, concurrency=%d, maxAttempts=%d, staleAfter=%s)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxAttempts, w.cfg.StaleAfter)

	for {
		select {
		case <-ctx.Done():
			log.Printf("ocrQueueWorker: shutting down, waiting for in-flight extractions...")
			w.wg.Wait()
			log.Printf("ocrQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			w.sweepStale(ctx)

			docs, err := w.docRepo.ClaimQueued(ctx, available, w.cfg.MaxAttempts)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("ocrQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range docs {
				doc := docs[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Use a fresh context independent of the poll context
					// so in-flight extractions complete even during shutdown.
					runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
					defer cancel()

					log.Printf("ocrQueueWorker: dispatching document %s (attempt %d)", doc.ID, doc.OCRAttempts)
					w.docService.ProcessDocument(runCtx, &doc, w.cfg.MaxAttempts)
				}()
			}
		}
	}
}

func (w *OCRQueueWorker) sweepStale(ctx context.Context) {
	if w.cfg.StaleAfter <= 0 {
		return
	}
	n, err := w.docRepo.RequeueStale(ctx, w.cfg.StaleAfter)
	if err != nil {
		log.Printf("ocrQueueWorker: RequeueStale error: %v", err)
		return
	}
	if n > 0 {
		log.Printf("ocrQueueWorker: requeued %d stale processing document(s)", n)
	}
}
