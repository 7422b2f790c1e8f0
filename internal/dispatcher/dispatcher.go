package dispatcher

import (
	"context"
	"fmt"

	"github.com/campusnotify/noticecrawl/internal/database"
	"github.com/campusnotify/noticecrawl/internal/domain"
	"github.com/campusnotify/noticecrawl/internal/logger"
)

// Template parameter names expected by the registered message template.
const (
	paramCustomerName = "customer-name"
	paramKoreanTitle  = "korean-title"
	paramArticleLink  = "article-link"
)

// Dispatcher batches a user's unsent notifications into one templated
// message and marks them sent only after the messenger confirms delivery.
type Dispatcher struct {
	notifications database.NotificationRepositoryInterface
	messenger     Messenger
	log           logger.Interface
}

// New creates a Dispatcher.
func New(notifications database.NotificationRepositoryInterface, messenger Messenger, log logger.Interface) *Dispatcher {
	return &Dispatcher{
		notifications: notifications,
		messenger:     messenger,
		log:           log.WithComponent("dispatcher"),
	}
}

// DispatchUser sends one combined message covering everything pending for the
// user and returns how many records it covered. No pending records is a no-op,
// not an error. A delivery or bookkeeping failure leaves every record unsent
// so the next cycle retries the whole batch.
func (d *Dispatcher) DispatchUser(ctx context.Context, user domain.User) (int, error) {
	pending, err := d.notifications.ListPending(ctx, user.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending notifications: %w", err)
	}

	batch := domain.DispatchBatch{UserID: user.ID, Records: pending}
	if batch.Empty() {
		d.log.Debug("nothing pending", "user_id", user.ID)
		return 0, nil
	}

	params := map[string]string{
		paramCustomerName: user.Username,
		paramKoreanTitle:  batch.Title(),
		paramArticleLink:  batch.Link(),
	}
	if err := d.messenger.Send(ctx, user.PhoneNumber, params); err != nil {
		return 0, fmt.Errorf("failed to send notification message: %w", err)
	}

	if err := d.notifications.MarkSent(ctx, batch.RecordIDs()); err != nil {
		// The message went out but the records stay pending; the user may
		// receive them again next cycle. Surface it rather than hide it.
		return 0, fmt.Errorf("message delivered but failed to mark records sent: %w", err)
	}

	d.log.Info("dispatched notifications",
		"user_id", user.ID,
		"count", len(batch.Records))
	return len(batch.Records), nil
}
