package port

import "context"

// NotificationSender delivers operational notifications (terminal OCR
// failures) to the practice staff. Send failures are logged by callers and
// never block the pipeline.
type NotificationSender interface {
	Send(ctx context.Context, subject, body string) error
}
