package ports

import (
	"context"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"

	"github.com/google/uuid"
)

type CarRepository interface {
	CreateCar(ctx context.Context, car *domain.Car) (*domain.Car, error)
	GetCarByID(ctx context.Context, carID uuid.UUID) (*domain.Car, error)
	ListCars(ctx context.Context, filter domain.CarFilter) ([]*domain.Car, error)
	UpdateCarStatus(ctx context.Context, carID uuid.UUID, update domain.CarStatusUpdate) error
	// DeleteCar removes the row and cancels the car's active bookings in
	// the same transaction, returning the deleted listing so the caller
	// can clean up its stored images.
	DeleteCar(ctx context.Context, carID uuid.UUID) (*domain.Car, error)
}
