package invoice

import (
	"errors"
	"fmt"
)

// Status is the lifecycle status of an invoice.
type Status string

// Invoice lifecycle statuses. An invoice starts as a draft, becomes
// created when finalized into documents, and is terminal at cancelled.
const (
	StatusDraft     Status = "draft"
	StatusCreated   Status = "created"
	StatusSent      Status = "sent"
	StatusReminded  Status = "reminded"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// ErrInvalidTransition is returned for a status change the lifecycle does
// not allow.
var ErrInvalidTransition = errors.New("invalid status transition")

// transitions maps each status to the statuses it may move to.
// draft -> created happens in the document finalization step, not here.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusCreated},
	StatusCreated:   {StatusSent, StatusPaid, StatusCancelled},
	StatusSent:      {StatusReminded, StatusPaid, StatusCancelled},
	StatusReminded:  {StatusPaid, StatusCancelled},
	StatusPaid:      {StatusSent, StatusCancelled}, // paid -> sent reopens the invoice
	StatusCancelled: {},
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an invoice may move from one status to another.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns ErrInvalidTransition with context when the move is
// not allowed.
func CheckTransition(from, to Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
