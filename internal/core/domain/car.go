package domain

import (
	"time"

	"github.com/google/uuid"
)

type CarStatus string

const (
	CarAvailable   CarStatus = "AVAILABLE"
	CarUnavailable CarStatus = "UNAVAILABLE"
	CarSold        CarStatus = "SOLD"
)

func (s CarStatus) Valid() bool {
	switch s {
	case CarAvailable, CarUnavailable, CarSold:
		return true
	}
	return false
}

// Car is a single inventory listing. The ID doubles as the storage folder
// key for its images (cars/{id}), so it is generated up front by the
// service, never by the database.
type Car struct {
	ID           uuid.UUID `json:"id"`
	Make         string    `json:"make" validate:"required,max=100"`
	Model        string    `json:"model" validate:"required,max=100"`
	Year         int       `json:"year"`
	Price        float64   `json:"price"`
	Mileage      int       `json:"mileage"`
	Color        string    `json:"color,omitempty" validate:"max=50"`
	FuelType     string    `json:"fuel_type"`
	Transmission string    `json:"transmission,omitempty" validate:"max=50"`
	BodyType     string    `json:"body_type,omitempty" validate:"max=50"`
	Seats        *int      `json:"seats,omitempty"`
	Description  string    `json:"description,omitempty"`
	Status       CarStatus `json:"status"`
	Featured     bool      `json:"featured"`
	Images       []string  `json:"images"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CarFilter narrows ListCars. Zero values mean "not filtered".
type CarFilter struct {
	Search   string
	Make     string
	BodyType string
	Color    string
	Status   CarStatus
	Featured *bool
	MinPrice float64
	MaxPrice float64
	Limit    int
	Offset   int
}

// CarStatusUpdate is a partial update: nil fields are left untouched.
type CarStatusUpdate struct {
	Status   *CarStatus
	Featured *bool
}
