package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anish-yen/barber-app/internal/models"
)

type triggerStoreStub struct {
	entries []models.WaitlistEntry
	marked  []string
}

func (s *triggerStoreStub) ListActiveEntries(context.Context) ([]models.WaitlistEntry, error) {
	out := make([]models.WaitlistEntry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

func (s *triggerStoreStub) MarkNotificationSent(_ context.Context, id string) (bool, error) {
	for i := range s.entries {
		if s.entries[i].ID == id && !s.entries[i].NotificationSent {
			s.entries[i].NotificationSent = true
			s.marked = append(s.marked, id)
			return true, nil
		}
	}
	return false, nil
}

type notifierStub struct {
	err   error
	sends []string
}

func (n *notifierStub) Send(_ context.Context, address string, _ int) error {
	if n.err != nil {
		return n.err
	}
	n.sends = append(n.sends, address)
	return nil
}

func activeEntry(id, contact string, joinedOffset time.Duration) models.WaitlistEntry {
	return models.WaitlistEntry{
		ID:         id,
		CustomerID: "customer-" + id,
		Contact:    contact,
		GuestCount: 1,
		JoinedAt:   time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC).Add(joinedOffset),
	}
}

func newTestTrigger(store *triggerStoreStub, n Notifier) *Trigger {
	logger := zerolog.Nop()
	return NewTrigger(store, n, DefaultThresholdPosition, &logger)
}

func TestCheckAndNotifySendsAtThreshold(t *testing.T) {
	store := &triggerStoreStub{entries: []models.WaitlistEntry{
		activeEntry("a", "a@example.com", 0),
		activeEntry("b", "b@example.com", time.Minute),
		activeEntry("c", "c@example.com", 2*time.Minute),
		activeEntry("d", "d@example.com", 3*time.Minute),
	}}
	sender := &notifierStub{}
	trig := newTestTrigger(store, sender)

	require.NoError(t, trig.CheckAndNotify(context.Background()))

	assert.Equal(t, []string{"c@example.com"}, sender.sends)
	assert.Equal(t, []string{"c"}, store.marked)
}

func TestCheckAndNotifyIdempotent(t *testing.T) {
	store := &triggerStoreStub{entries: []models.WaitlistEntry{
		activeEntry("a", "a@example.com", 0),
		activeEntry("b", "b@example.com", time.Minute),
		activeEntry("c", "c@example.com", 2*time.Minute),
	}}
	sender := &notifierStub{}
	trig := newTestTrigger(store, sender)

	require.NoError(t, trig.CheckAndNotify(context.Background()))
	require.NoError(t, trig.CheckAndNotify(context.Background()))
	require.NoError(t, trig.CheckAndNotify(context.Background()))

	assert.Len(t, sender.sends, 1, "same entry at the threshold is notified once")
}

func TestCheckAndNotifyShortQueueNoSend(t *testing.T) {
	store := &triggerStoreStub{entries: []models.WaitlistEntry{
		activeEntry("a", "a@example.com", 0),
		activeEntry("b", "b@example.com", time.Minute),
	}}
	sender := &notifierStub{}
	trig := newTestTrigger(store, sender)

	require.NoError(t, trig.CheckAndNotify(context.Background()))
	assert.Empty(t, sender.sends)
	assert.Empty(t, store.marked)
}

func TestCheckAndNotifySendFailureLeavesFlagUnset(t *testing.T) {
	store := &triggerStoreStub{entries: []models.WaitlistEntry{
		activeEntry("a", "a@example.com", 0),
		activeEntry("b", "b@example.com", time.Minute),
		activeEntry("c", "c@example.com", 2*time.Minute),
	}}
	sender := &notifierStub{err: errors.New("provider down")}
	trig := newTestTrigger(store, sender)

	// Send failures never bubble up to the mutation that triggered the check.
	require.NoError(t, trig.CheckAndNotify(context.Background()))
	assert.Empty(t, store.marked)

	// Provider recovers; the next qualifying check retries the send.
	sender.err = nil
	require.NoError(t, trig.CheckAndNotify(context.Background()))
	assert.Equal(t, []string{"c@example.com"}, sender.sends)
	assert.Equal(t, []string{"c"}, store.marked)
}

func TestCheckAndNotifyNotConfigured(t *testing.T) {
	store := &triggerStoreStub{entries: []models.WaitlistEntry{
		activeEntry("a", "a@example.com", 0),
		activeEntry("b", "b@example.com", time.Minute),
		activeEntry("c", "c@example.com", 2*time.Minute),
	}}
	trig := newTestTrigger(store, NewResendNotifier("", ""))

	require.NoError(t, trig.CheckAndNotify(context.Background()))
	assert.Empty(t, store.marked)
}

func TestCheckAndNotifyEmptyContactSkipped(t *testing.T) {
	store := &triggerStoreStub{entries: []models.WaitlistEntry{
		activeEntry("a", "a@example.com", 0),
		activeEntry("b", "b@example.com", time.Minute),
		activeEntry("c", "", 2*time.Minute),
	}}
	sender := &notifierStub{}
	trig := newTestTrigger(store, sender)

	require.NoError(t, trig.CheckAndNotify(context.Background()))
	assert.Empty(t, sender.sends)
	assert.Empty(t, store.marked, "skipped entry keeps its flag clear")
}

func TestCheckAndNotifyPromotionMovesThreshold(t *testing.T) {
	store := &triggerStoreStub{entries: []models.WaitlistEntry{
		activeEntry("a", "a@example.com", 0),
		activeEntry("b", "b@example.com", time.Minute),
		activeEntry("c", "c@example.com", 2*time.Minute),
		activeEntry("d", "d@example.com", 3*time.Minute),
	}}
	sender := &notifierStub{}
	trig := newTestTrigger(store, sender)

	require.NoError(t, trig.CheckAndNotify(context.Background()))
	require.Equal(t, []string{"c@example.com"}, sender.sends)

	// Promoting d to the front shifts c to position 4 and b to position 3.
	for i := range store.entries {
		if store.entries[i].ID == "d" {
			store.entries[i].PriorityLevel = 1
		}
	}
	require.NoError(t, trig.CheckAndNotify(context.Background()))
	assert.Equal(t, []string{"c@example.com", "b@example.com"}, sender.sends)
}

func TestNewTriggerDefaultThreshold(t *testing.T) {
	logger := zerolog.Nop()
	trig := NewTrigger(&triggerStoreStub{}, &notifierStub{}, 0, &logger)
	assert.Equal(t, DefaultThresholdPosition, trig.threshold)
}

func TestRateLimitedPassesThrough(t *testing.T) {
	sender := &notifierStub{}
	limited := NewRateLimited(sender, 100, 1)

	require.NoError(t, limited.Send(context.Background(), "a@example.com", 3))
	assert.Equal(t, []string{"a@example.com"}, sender.sends)
}
