package service

import (
	"errors"
	"fmt"

	"github.com/anish-yen/barber-app/internal/models"
	"github.com/anish-yen/barber-app/internal/schedule"
)

var (
	ErrNotQueued     = errors.New("customer has no active waitlist entry")
	ErrQueueEmpty    = errors.New("no customers in queue")
	ErrEntryNotFound = errors.New("entry not found or already served")
)

// AlreadyQueuedError rejects a duplicate join. It carries the existing
// entry so the client can reconcile its state without a second read.
type AlreadyQueuedError struct {
	Entry models.WaitlistEntry
}

func (e *AlreadyQueuedError) Error() string {
	return "customer is already on the waitlist"
}

// ShopClosedError rejects a join outside open hours. It carries the
// schedule status so the rejection can show the shop's hours.
type ShopClosedError struct {
	Status schedule.Status
}

func (e *ShopClosedError) Error() string {
	if e.Status.NextOpenText != "" {
		return fmt.Sprintf("shop is closed. %s", e.Status.NextOpenText)
	}
	return "shop is closed"
}

// IsAlreadyQueued extracts an AlreadyQueuedError from err.
func IsAlreadyQueued(err error) (*AlreadyQueuedError, bool) {
	var aq *AlreadyQueuedError
	if errors.As(err, &aq) {
		return aq, true
	}
	return nil, false
}

// IsShopClosed extracts a ShopClosedError from err.
func IsShopClosed(err error) (*ShopClosedError, bool) {
	var sc *ShopClosedError
	if errors.As(err, &sc) {
		return sc, true
	}
	return nil, false
}

// IsValidation reports whether err is an input-validation rejection that
// never reached storage.
func IsValidation(err error) bool {
	return errors.Is(err, models.ErrInvalidGuestCount) ||
		errors.Is(err, models.ErrInvalidPriority) ||
		errors.Is(err, models.ErrInvalidWeekday) ||
		errors.Is(err, models.ErrInvalidTimeRange) ||
		errors.Is(err, models.ErrInvalidClock) ||
		errors.Is(err, models.ErrInvalidDate)
}
