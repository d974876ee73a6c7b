package model

import (
	"errors"
	"fmt"
)

// BookingState is the single source of truth for where a booking is in its
// life. Lifecycle status and payment status are views derived from it.
type BookingState string

const (
	StateCreated         BookingState = "created"
	StateAwaitingPayment BookingState = "awaiting_payment"
	StateConfirmed       BookingState = "confirmed"
	StateInProgress      BookingState = "in_progress"
	StateCompleted       BookingState = "completed"
	StateCancelled       BookingState = "cancelled"
	StateRefunded        BookingState = "refunded"
)

var BookingStates = []BookingState{
	StateCreated,
	StateAwaitingPayment,
	StateConfirmed,
	StateInProgress,
	StateCompleted,
	StateCancelled,
	StateRefunded,
}

type BookingEvent string

const (
	EventIntentCreated    BookingEvent = "intent_created"
	EventPaymentSucceeded BookingEvent = "payment_succeeded"
	EventStart            BookingEvent = "start"
	EventComplete         BookingEvent = "complete"
	EventCancel           BookingEvent = "cancel"
	EventRefund           BookingEvent = "refund"
)

const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
	StatusUpcoming   = "upcoming"

	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

var ErrIllegalTransition = errors.New("illegal booking state transition")

var transitions = map[BookingState]map[BookingEvent]BookingState{
	StateCreated: {
		EventIntentCreated:    StateAwaitingPayment,
		EventPaymentSucceeded: StateConfirmed,
		EventCancel:           StateCancelled,
	},
	StateAwaitingPayment: {
		EventIntentCreated:    StateAwaitingPayment,
		EventPaymentSucceeded: StateConfirmed,
		EventCancel:           StateCancelled,
	},
	StateConfirmed: {
		EventStart:  StateInProgress,
		EventRefund: StateRefunded,
	},
	StateInProgress: {
		EventComplete: StateCompleted,
		EventRefund:   StateRefunded,
	},
	StateCompleted: {
		EventRefund: StateRefunded,
	},
}

// Transition is the only way a booking changes state.
func Transition(from BookingState, event BookingEvent) (BookingState, error) {
	if to, ok := transitions[from][event]; ok {
		return to, nil
	}
	return from, fmt.Errorf("%w: %s on %s", ErrIllegalTransition, event, from)
}

func (s BookingState) Valid() bool {
	for _, state := range BookingStates {
		if s == state {
			return true
		}
	}
	return false
}

func (s BookingState) Status() string {
	switch s {
	case StateConfirmed:
		return StatusConfirmed
	case StateInProgress:
		return StatusInProgress
	case StateCompleted:
		return StatusCompleted
	case StateCancelled, StateRefunded:
		return StatusCancelled
	default:
		return StatusPending
	}
}

func (s BookingState) PaymentStatus() string {
	switch s {
	case StateConfirmed, StateInProgress, StateCompleted:
		return PaymentPaid
	case StateRefunded:
		return PaymentRefunded
	default:
		return PaymentPending
	}
}

func (s BookingState) IsPaid() bool {
	return s.PaymentStatus() == PaymentPaid
}

// StatesForStatus maps a status filter as clients know it to the states
// that render as that status. It returns nil for an unknown status.
func StatesForStatus(status string) []BookingState {
	switch status {
	case StatusPending:
		return []BookingState{StateCreated, StateAwaitingPayment}
	case StatusConfirmed:
		return []BookingState{StateConfirmed}
	case StatusInProgress:
		return []BookingState{StateInProgress}
	case StatusCompleted:
		return []BookingState{StateCompleted}
	case StatusCancelled:
		return []BookingState{StateCancelled, StateRefunded}
	case StatusUpcoming:
		return []BookingState{StateConfirmed, StateInProgress}
	}
	return nil
}
