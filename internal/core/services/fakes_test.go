package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, fields map[string]interface{})  {}
func (nopLogger) Warn(msg string, fields map[string]interface{})  {}
func (nopLogger) Error(msg string, fields map[string]interface{}) {}

type fakeCarRepo struct {
	mu   sync.Mutex
	cars map[uuid.UUID]*domain.Car
}

func newFakeCarRepo() *fakeCarRepo {
	return &fakeCarRepo{cars: make(map[uuid.UUID]*domain.Car)}
}

func (r *fakeCarRepo) CreateCar(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored := *car
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.cars[car.ID] = &stored
	return &stored, nil
}

func (r *fakeCarRepo) GetCarByID(ctx context.Context, carID uuid.UUID) (*domain.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[carID]
	if !ok {
		return nil, domain.ErrCarNotFound
	}
	return car, nil
}

func (r *fakeCarRepo) ListCars(ctx context.Context, filter domain.CarFilter) ([]*domain.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Car
	for _, car := range r.cars {
		out = append(out, car)
	}
	return out, nil
}

func (r *fakeCarRepo) UpdateCarStatus(ctx context.Context, carID uuid.UUID, update domain.CarStatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[carID]
	if !ok {
		return domain.ErrCarNotFound
	}
	if update.Status != nil {
		car.Status = *update.Status
	}
	if update.Featured != nil {
		car.Featured = *update.Featured
	}
	return nil
}

func (r *fakeCarRepo) DeleteCar(ctx context.Context, carID uuid.UUID) (*domain.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	car, ok := r.cars[carID]
	if !ok {
		return nil, domain.ErrCarNotFound
	}
	delete(r.cars, carID)
	return car, nil
}

// fakeBookingRepo mirrors the real repository's atomicity contract: the
// slot check and the insert happen under one lock, the same serialization
// the advisory lock provides in postgres.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*domain.TestDriveBooking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*domain.TestDriveBooking)}
}

func (r *fakeBookingRepo) CreateBooking(ctx context.Context, booking *domain.TestDriveBooking) (*domain.TestDriveBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sameDay []*domain.TestDriveBooking
	for _, b := range r.bookings {
		if b.CarID == booking.CarID && b.BookingDate.Equal(booking.BookingDate) {
			sameDay = append(sameDay, b)
		}
	}
	if domain.SlotTaken(sameDay, booking.StartTime, booking.EndTime) {
		return nil, domain.ErrSlotConflict
	}

	stored := *booking
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.bookings[booking.ID] = &stored
	return &stored, nil
}

func (r *fakeBookingRepo) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.TestDriveBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return b, nil
}

func (r *fakeBookingRepo) GetBookingsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.TestDriveBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TestDriveBooking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*domain.TestDriveBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.TestDriveBooking
	for _, b := range r.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return domain.ErrBookingNotFound
	}
	b.Status = status
	return nil
}

type fakeStorage struct {
	mu      sync.Mutex
	objects map[string][]byte

	uploadErr error
	removeErr error
	removed   []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string][]byte)}
}

func (s *fakeStorage) Upload(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return "", s.uploadErr
	}
	s.objects[path] = data
	return "http://storage.local/files/" + path, nil
}

func (s *fakeStorage) Remove(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeErr != nil {
		return s.removeErr
	}
	if _, ok := s.objects[path]; !ok {
		return errors.New("object not found")
	}
	delete(s.objects, path)
	s.removed = append(s.removed, path)
	return nil
}

func (s *fakeStorage) Open(ctx context.Context, path string) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, "", errors.New("object not found")
	}
	return data, "image/jpeg", nil
}

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return v, nil
}

func (c *fakeCache) Set(key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

type fakeVision struct {
	response string
	err      error
}

func (v *fakeVision) GenerateFromImage(ctx context.Context, image []byte, mimeType string, prompt string) (string, error) {
	return v.response, v.err
}

func (v *fakeVision) GenerateText(ctx context.Context, prompt string) (string, error) {
	return v.response, v.err
}
