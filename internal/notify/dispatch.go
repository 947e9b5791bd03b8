package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// TypeNotifyCheck is the asynq task that re-runs the threshold check.
const TypeNotifyCheck = "waitlist:notify_check"

// checkTimeout bounds one trigger run; the triggering mutation has already
// returned by the time this fires.
const checkTimeout = 30 * time.Second

// Dispatcher decouples the threshold check from the mutation that caused
// it. Implementations must not block the caller and must swallow their own
// failures.
type Dispatcher interface {
	QueueChanged(entryID string)
}

// InlineDispatcher runs the check in a goroutine. Used when no Redis is
// configured.
type InlineDispatcher struct {
	trigger *Trigger
	logger  *zerolog.Logger
}

func NewInlineDispatcher(trigger *Trigger, logger *zerolog.Logger) *InlineDispatcher {
	return &InlineDispatcher{trigger: trigger, logger: logger}
}

func (d *InlineDispatcher) QueueChanged(entryID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
		defer cancel()
		if err := d.trigger.CheckAndNotify(ctx); err != nil {
			d.logger.Warn().Err(err).Str("entry_id", entryID).Msg("notification check failed")
		}
	}()
}

type notifyCheckPayload struct {
	EntryID string `json:"entry_id"`
}

// AsynqDispatcher enqueues the check as an asynq task on Redis, surviving
// process restarts between the mutation and the check.
type AsynqDispatcher struct {
	client *asynq.Client
	logger *zerolog.Logger
}

func NewAsynqDispatcher(client *asynq.Client, logger *zerolog.Logger) *AsynqDispatcher {
	return &AsynqDispatcher{client: client, logger: logger}
}

func (d *AsynqDispatcher) QueueChanged(entryID string) {
	payload, err := json.Marshal(notifyCheckPayload{EntryID: entryID})
	if err != nil {
		d.logger.Warn().Err(err).Msg("marshal notify task")
		return
	}
	task := asynq.NewTask(TypeNotifyCheck, payload)
	if _, err := d.client.Enqueue(task, asynq.MaxRetry(3), asynq.Timeout(checkTimeout)); err != nil {
		d.logger.Warn().Err(err).Str("entry_id", entryID).Msg("enqueue notify task failed")
	}
}

// NewNotifyCheckHandler adapts the trigger to an asynq handler.
func NewNotifyCheckHandler(trigger *Trigger) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload notifyCheckPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return err
		}
		return trigger.CheckAndNotify(ctx)
	}
}
