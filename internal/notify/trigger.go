package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/anish-yen/barber-app/internal/metrics"
	"github.com/anish-yen/barber-app/internal/models"
	"github.com/anish-yen/barber-app/internal/queue"
)

// DefaultThresholdPosition is the queue position that triggers the
// notification.
const DefaultThresholdPosition = 3

// TriggerStore is the storage the trigger needs: the active snapshot and
// the conditional idempotency-flag update.
type TriggerStore interface {
	ListActiveEntries(ctx context.Context) ([]models.WaitlistEntry, error)
	MarkNotificationSent(ctx context.Context, id string) (bool, error)
}

// Trigger inspects the canonical order after a mutation and notifies the
// entry at the threshold position, at most once per entry.
type Trigger struct {
	store     TriggerStore
	notifier  Notifier
	threshold int
	logger    *zerolog.Logger
}

// NewTrigger wires a trigger. threshold <= 0 falls back to the default.
func NewTrigger(store TriggerStore, notifier Notifier, threshold int, logger *zerolog.Logger) *Trigger {
	if threshold <= 0 {
		threshold = DefaultThresholdPosition
	}
	return &Trigger{store: store, notifier: notifier, threshold: threshold, logger: logger}
}

// CheckAndNotify recomputes the canonical order and sends the threshold
// notification if due. The notification_sent flag is only set after the
// notifier reports success, so a failed send is retried on the next
// qualifying mutation. Returns an error only for storage failures; send
// failures are logged and swallowed.
func (t *Trigger) CheckAndNotify(ctx context.Context) error {
	active, err := t.store.ListActiveEntries(ctx)
	if err != nil {
		return err
	}

	entry := queue.At(active, t.threshold)
	if entry == nil || entry.NotificationSent {
		return nil
	}
	if entry.Contact == "" {
		t.logger.Warn().Str("entry_id", entry.ID).Msg("no contact address, skipping notification")
		return nil
	}

	if err := t.notifier.Send(ctx, entry.Contact, t.threshold); err != nil {
		metrics.IncNotification("failed")
		t.logger.Warn().Err(err).Str("entry_id", entry.ID).
			Int("position", t.threshold).Msg("notification not sent")
		return nil
	}

	ok, err := t.store.MarkNotificationSent(ctx, entry.ID)
	if err != nil {
		// The message went out; losing the flag write only risks one
		// duplicate on the next trigger.
		t.logger.Error().Err(err).Str("entry_id", entry.ID).Msg("failed to mark notification sent")
		return nil
	}
	if ok {
		metrics.IncNotification("sent")
		t.logger.Info().Str("entry_id", entry.ID).Int("position", t.threshold).Msg("notification sent")
	}
	return nil
}
