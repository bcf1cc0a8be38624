package ports

import (
	"context"

	"github.com/firesafety/incident-system/internal/core/domain"
)

// Notifier delivers out-of-band notifications. Callers treat delivery as
// best-effort: a failed notification must never fail the triggering
// operation.
type Notifier interface {
	// AlertCreated pushes a freshly created alert to the configured channel.
	AlertCreated(ctx context.Context, alert *domain.Alert)
	// AdminMessage pushes a plain text message to the admin channel.
	AdminMessage(ctx context.Context, text string)
}
