package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"
	"github.com/vehiql/vehiql_car_marketplace/internal/core/ports"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// BookingService owns the test-drive booking lifecycle: slot checks on
// creation, the cancellation rules, and the admin status transitions.
type BookingService struct {
	bookingRepo ports.BookingRepository
	carRepo     ports.CarRepository
	logger      ports.LoggerPort
	validate    *validator.Validate
}

func NewBookingService(
	bookingRepo ports.BookingRepository,
	carRepo ports.CarRepository,
	logger ports.LoggerPort,
	validate *validator.Validate,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		carRepo:     carRepo,
		logger:      logger,
		validate:    validate,
	}
}

type RequestBookingInput struct {
	CarID       uuid.UUID
	UserID      uuid.UUID
	BookingDate time.Time
	StartTime   string
	EndTime     string
	Notes       string
}

// RequestBooking creates a PENDING booking if the car is available and the
// slot is free. The conflict check and the insert are atomic inside the
// repository, so two concurrent requests for the same slot cannot both
// succeed.
func (s *BookingService) RequestBooking(ctx context.Context, in RequestBookingInput) (*domain.TestDriveBooking, error) {
	if in.StartTime == "" || in.EndTime == "" || in.StartTime >= in.EndTime {
		return nil, domain.ValidationErrors{{Field: "start_time", Message: "start time must be before end time"}}
	}

	car, err := s.carRepo.GetCarByID(ctx, in.CarID)
	if err != nil {
		s.logger.Warn("Booking requested for unknown car", map[string]interface{}{
			"car_id": in.CarID,
		})
		return nil, domain.ErrCarUnavailable
	}
	if car.Status != domain.CarAvailable {
		return nil, domain.ErrCarUnavailable
	}

	booking := &domain.TestDriveBooking{
		ID:          uuid.New(),
		CarID:       in.CarID,
		UserID:      in.UserID,
		BookingDate: in.BookingDate,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      domain.BookingPending,
		Notes:       in.Notes,
	}

	if err := s.validate.Struct(booking); err != nil {
		s.logger.Error("Booking validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("validation error: %w", err)
	}

	created, err := s.bookingRepo.CreateBooking(ctx, booking)
	if err != nil {
		s.logger.Warn("Failed to create booking", map[string]interface{}{
			"error":  err.Error(),
			"car_id": in.CarID,
			"date":   in.BookingDate.Format("2006-01-02"),
			"start":  in.StartTime,
		})
		return nil, err
	}

	s.logger.Info("Test drive booked", map[string]interface{}{
		"booking_id": created.ID,
		"car_id":     created.CarID,
		"user_id":    created.UserID,
	})

	return created, nil
}

// CancelBooking transitions a booking to CANCELLED. Only the owner or an
// admin may cancel, and cancellation is deliberately not idempotent: a
// second attempt reports ErrAlreadyCancelled.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID uuid.UUID, role domain.UserRole) error {
	booking, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return domain.ErrBookingNotFound
	}

	if booking.UserID != actorID && role != domain.Admin {
		s.logger.Warn("Forbidden cancel attempt", map[string]interface{}{
			"booking_id": bookingID,
			"actor_id":   actorID,
		})
		return domain.ErrForbidden
	}

	switch booking.Status {
	case domain.BookingCancelled:
		return domain.ErrAlreadyCancelled
	case domain.BookingCompleted:
		return domain.ErrAlreadyCompleted
	}

	if err := s.bookingRepo.UpdateBookingStatus(ctx, bookingID, domain.BookingCancelled); err != nil {
		return err
	}

	s.logger.Info("Booking cancelled", map[string]interface{}{
		"booking_id": bookingID,
		"actor_id":   actorID,
	})
	return nil
}

// UpdateBookingStatus is the admin back-office transition (confirm,
// complete, mark no-show, cancel) routed through the state machine.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, to domain.BookingStatus) (*domain.TestDriveBooking, error) {
	booking, err := s.bookingRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, domain.ErrBookingNotFound
	}

	if !domain.CanTransition(booking.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, booking.Status, to)
	}

	if err := s.bookingRepo.UpdateBookingStatus(ctx, bookingID, to); err != nil {
		return nil, err
	}
	booking.Status = to

	s.logger.Info("Booking status updated", map[string]interface{}{
		"booking_id": bookingID,
		"status":     to,
	})
	return booking, nil
}

func (s *BookingService) GetUserBookings(ctx context.Context, userID uuid.UUID) ([]*domain.TestDriveBooking, error) {
	bookings, err := s.bookingRepo.GetBookingsByUserID(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list user bookings", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}
	return bookings, nil
}

func (s *BookingService) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*domain.TestDriveBooking, error) {
	return s.bookingRepo.ListBookings(ctx, filter)
}
