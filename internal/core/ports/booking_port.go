package ports

import (
	"context"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"

	"github.com/google/uuid"
)

type BookingRepository interface {
	// CreateBooking inserts the booking unless an active booking already
	// occupies an overlapping slot on the same car and date. The check and
	// the insert are atomic with respect to concurrent callers; a lost
	// race surfaces as domain.ErrSlotConflict.
	CreateBooking(ctx context.Context, booking *domain.TestDriveBooking) (*domain.TestDriveBooking, error)
	GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.TestDriveBooking, error)
	GetBookingsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.TestDriveBooking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*domain.TestDriveBooking, error)
	UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error
}
