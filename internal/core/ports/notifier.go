package ports

import (
	"context"

	"github.com/srgjo27/transit_reservation/internal/core/domain"
)

// Notifier accepts a finalized booking or assignment fact for delivery. It
// must not block on delivery and its failures never undo the caller's work.
type Notifier interface {
	Notify(ctx context.Context, kind domain.NotificationKind, payload any)
}
