package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"casedesk/internal/domain"
	"casedesk/internal/service"
	"casedesk/mocks"
)

func workerConfig() service.OCRQueueConfig {
	return service.OCRQueueConfig{
		PollInterval: 50 * time.Millisecond,
		MaxAttempts:  3,
		Concurrency:  2,
		StaleAfter:   30 * time.Minute,
	}
}

func TestRunOnce_ProcessesClaimedBatch(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	docSvc := new(mocks.MockDocumentService)

	docA := domain.Document{ID: uuid.New(), Name: "a.pdf", OCRStatus: domain.OCRStatusProcessing, OCRAttempts: 1}
	docB := domain.Document{ID: uuid.New(), Name: "b.pdf", OCRStatus: domain.OCRStatusProcessing, OCRAttempts: 2}

	docRepo.On("RequeueStale", mock.Anything, 30*time.Minute).Return(0, nil)
	docRepo.On("ClaimQueued", mock.Anything, 2, 3).
		Return([]domain.Document{docA, docB}, nil)

	docSvc.On("ProcessDocument", mock.Anything, mock.AnythingOfType("*domain.Document"), 3).
		Return(domain.RunDetail{DocumentID: docA.ID, Outcome: "completed", Confidence: 0.9}).Once()
	docSvc.On("ProcessDocument", mock.Anything, mock.AnythingOfType("*domain.Document"), 3).
		Return(domain.RunDetail{DocumentID: docB.ID, Outcome: "failed", Error: "path not found"}).Once()

	worker := service.NewOCRQueueWorker(docRepo, docSvc, workerConfig())

	report, err := worker.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Len(t, report.Details, 2)
	docRepo.AssertCalled(t, "RequeueStale", mock.Anything, 30*time.Minute)
}

func TestRunOnce_RequeuedDocumentsAreNotFailures(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	docSvc := new(mocks.MockDocumentService)

	doc := domain.Document{ID: uuid.New(), Name: "a.pdf", OCRAttempts: 1}

	docRepo.On("RequeueStale", mock.Anything, mock.Anything).Return(0, nil)
	docRepo.On("ClaimQueued", mock.Anything, 2, 3).Return([]domain.Document{doc}, nil)
	docSvc.On("ProcessDocument", mock.Anything, mock.AnythingOfType("*domain.Document"), 3).
		Return(domain.RunDetail{DocumentID: doc.ID, Outcome: "requeued", RetryScheduled: true})

	worker := service.NewOCRQueueWorker(docRepo, docSvc, workerConfig())

	report, err := worker.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 0, report.Failed)
	assert.True(t, report.Details[0].RetryScheduled)
}

func TestRunOnce_EmptyQueue(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	docSvc := new(mocks.MockDocumentService)

	docRepo.On("RequeueStale", mock.Anything, mock.Anything).Return(0, nil)
	docRepo.On("ClaimQueued", mock.Anything, 2, 3).Return([]domain.Document{}, nil)

	worker := service.NewOCRQueueWorker(docRepo, docSvc, workerConfig())

	report, err := worker.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, report.Attempted)
	docSvc.AssertNotCalled(t, "ProcessDocument", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunOnce_ClaimError(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	docSvc := new(mocks.MockDocumentService)

	docRepo.On("RequeueStale", mock.Anything, mock.Anything).Return(0, nil)
	docRepo.On("ClaimQueued", mock.Anything, 2, 3).Return(nil, errors.New("db connection error"))

	worker := service.NewOCRQueueWorker(docRepo, docSvc, workerConfig())

	_, err := worker.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStart_PollsAndDispatches(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	docSvc := new(mocks.MockDocumentService)

	doc := domain.Document{ID: uuid.New(), Name: "a.pdf", OCRStatus: domain.OCRStatusProcessing, OCRAttempts: 1}

	docRepo.On("RequeueStale", mock.Anything, mock.Anything).Return(0, nil)
	// First poll returns one doc, subsequent polls return empty
	docRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int"), 3).
		Return([]domain.Document{doc}, nil).Once()
	docRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int"), 3).
		Return([]domain.Document{}, nil).Maybe()

	docSvc.On("ProcessDocument", mock.Anything, mock.AnythingOfType("*domain.Document"), 3).
		Return(domain.RunDetail{DocumentID: doc.ID, Outcome: "completed"}).Maybe()

	worker := service.NewOCRQueueWorker(docRepo, docSvc, workerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	// Wait for at least one poll cycle
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	docRepo.AssertCalled(t, "ClaimQueued", mock.Anything, mock.AnythingOfType("int"), 3)
	docSvc.AssertCalled(t, "ProcessDocument", mock.Anything, mock.AnythingOfType("*domain.Document"), 3)
}

func TestStart_RespectsConcurrencyCap(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	docSvc := new(mocks.MockDocumentService)

	docRepo.On("RequeueStale", mock.Anything, mock.Anything).Return(0, nil)
	docRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int"), 3).
		Return([]domain.Document{}, nil).Maybe()

	cfg := workerConfig()
	worker := service.NewOCRQueueWorker(docRepo, docSvc, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(150 * time.Millisecond)
	cancel()
	<-done

	// Verify ClaimQueued was called with limit <= concurrency
	for _, call := range docRepo.Calls {
		if call.Method == "ClaimQueued" {
			limit := call.Arguments.Get(1).(int)
			assert.LessOrEqual(t, limit, cfg.Concurrency)
		}
	}
}

func TestStart_CleanShutdown(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	docSvc := new(mocks.MockDocumentService)

	docRepo.On("RequeueStale", mock.Anything, mock.Anything).Return(0, nil).Maybe()
	docRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int"), 3).
		Return([]domain.Document{}, nil).Maybe()

	worker := service.NewOCRQueueWorker(docRepo, docSvc, workerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	// Cancel immediately
	cancel()

	select {
	case <-done:
		// Start returned promptly
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}
}

func TestStart_ClaimErrorKeepsPolling(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	docSvc := new(mocks.MockDocumentService)

	docRepo.On("RequeueStale", mock.Anything, mock.Anything).Return(0, nil)
	docRepo.On("ClaimQueued", mock.Anything, mock.AnythingOfType("int"), 3).
		Return(nil, errors.New("db connection error")).Maybe()

	worker := service.NewOCRQueueWorker(docRepo, docSvc, workerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Start(ctx)
		close(done)
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case <-done:
		// No panic, no goroutine leak
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after context cancellation")
	}

	docSvc.AssertNotCalled(t, "ProcessDocument", mock.Anything, mock.Anything, mock.Anything)
}
