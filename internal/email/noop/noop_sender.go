package noop

import (
	"context"
	"log"

	"casedesk/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op NotificationSender that logs notifications to
// stdout.
func NewNoopSender() port.NotificationSender {
	return &noopSender{}
}

func (s *noopSender) Send(_ context.Context, subject, body string) error {
	log.Printf("[NOOP NOTIFICATION] %s\n%s", subject, body)
	return nil
}
