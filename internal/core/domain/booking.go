package domain

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingNoShow    BookingStatus = "NO_SHOW"
)

// allowedTransitions is the booking state machine. Terminal states map to
// an empty slice.
var allowedTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled, BookingNoShow},
	BookingCompleted: {},
	BookingCancelled: {},
	BookingNoShow:    {},
}

// CanTransition reports whether from -> to is an allowed status change.
func CanTransition(from, to BookingStatus) bool {
	allowed, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// Active reports whether the status occupies its slot. Only PENDING and
// CONFIRMED bookings block a (car, date, start time) slot.
func (s BookingStatus) Active() bool {
	return s == BookingPending || s == BookingConfirmed
}

// TestDriveBooking references its car and user weakly: neither side owns
// the other, and bookings are never physically deleted.
type TestDriveBooking struct {
	ID          uuid.UUID     `json:"id"`
	CarID       uuid.UUID     `json:"car_id" validate:"required"`
	UserID      uuid.UUID     `json:"user_id" validate:"required"`
	BookingDate time.Time     `json:"booking_date" validate:"required"`
	StartTime   string        `json:"start_time" validate:"required"`
	EndTime     string        `json:"end_time" validate:"required"`
	Status      BookingStatus `json:"status"`
	Notes       string        `json:"notes,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Overlaps reports whether two same-day time windows intersect. Times are
// "HH:MM" strings, which order correctly under lexicographic comparison.
func Overlaps(start1, end1, start2, end2 string) bool {
	return start1 < end2 && start2 < end1
}

// SlotTaken decides whether a requested window on a car/date is blocked
// by any of that day's existing bookings. Only active bookings count.
func SlotTaken(existing []*TestDriveBooking, startTime, endTime string) bool {
	for _, b := range existing {
		if b.Status.Active() && Overlaps(b.StartTime, b.EndTime, startTime, endTime) {
			return true
		}
	}
	return false
}

// BookingFilter narrows ListBookings for the admin dashboard.
type BookingFilter struct {
	CarID  uuid.UUID
	UserID uuid.UUID
	Status BookingStatus
	Date   time.Time
}
