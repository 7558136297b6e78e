package service

import (
	"errors"
	"fmt"
)

// ErrForbidden is returned when a user tries to modify another user's resource.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidDonor is returned when a donor reference carries neither a user
// ID nor a guest donor token (or both).
var ErrInvalidDonor = errors.New("invalid donor identity")

// ErrQuotaRace is returned when two concurrent creations both passed the
// quota pre-check and the defensive re-check caught the overrun. The losing
// creation has been rolled back; the caller may safely retry.
var ErrQuotaRace = errors.New("project slot quota race detected, retry")

// ErrNotActivated is returned when a milestone has not been unlocked yet.
var ErrNotActivated = errors.New("milestone not activated")

// ErrAlreadyComplete is returned on a submit against an APPROVED milestone.
var ErrAlreadyComplete = errors.New("milestone already approved")

// ErrInvalidState is returned when a transition is attempted from a status
// that does not allow it.
var ErrInvalidState = errors.New("invalid milestone state for this operation")

// QuotaExceededError is returned when a donor has no free project slot.
// AmountNeeded is the exact additional donation that unlocks the next slot.
type QuotaExceededError struct {
	AmountNeeded int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("donate ₹%d more to unlock your next project slot", e.AmountNeeded)
}

// PriorIncompleteError is returned when milestone N is submitted while
// milestone N-1 is not yet APPROVED.
type PriorIncompleteError struct {
	PriorPosition int
}

func (e *PriorIncompleteError) Error() string {
	return fmt.Sprintf("milestone %d must be approved first", e.PriorPosition)
}
