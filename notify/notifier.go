package notify

import (
	"context"
	"log"
	"time"
)

// Notifier delivers the download link to the customer after a purchase.
// Notification is best-effort: failures must never affect entitlement state,
// so callers log and retry out of band rather than propagating errors into
// the fulfillment transaction.
type Notifier interface {
	SendDownloadLink(ctx context.Context, recipientEmail, itemTitle, downloadLink string, validFor time.Duration) error
}

// LogNotifier writes the notification to the process log instead of sending
// email. Used when no email provider is configured.
type LogNotifier struct{}

func (LogNotifier) SendDownloadLink(_ context.Context, recipientEmail, itemTitle, downloadLink string, validFor time.Duration) error {
	log.Printf("INFO (LogNotifier): download link for %q to %s (valid %s): %s",
		itemTitle, recipientEmail, validFor, downloadLink)
	return nil
}
