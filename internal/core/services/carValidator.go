package services

import (
	"math"
	"strings"
	"time"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"
)

// CarFields is the raw listing input, manual or AI pre-filled, before it
// is allowed anywhere near the database.
type CarFields struct {
	Make         string           `json:"make"`
	Model        string           `json:"model"`
	Year         int              `json:"year"`
	Price        float64          `json:"price"`
	Mileage      int              `json:"mileage"`
	Color        string           `json:"color"`
	FuelType     string           `json:"fuel_type"`
	Transmission string           `json:"transmission"`
	BodyType     string           `json:"body_type"`
	Seats        *int             `json:"seats,omitempty"`
	Description  string           `json:"description"`
	Status       domain.CarStatus `json:"status"`
	Featured     bool             `json:"featured"`
}

// ValidateCarFields checks every field independently and reports all
// violations at once, so the form shows one deterministic error per field.
// On success it returns the trimmed, defaulted record.
func ValidateCarFields(in CarFields) (CarFields, domain.ValidationErrors) {
	var errs domain.ValidationErrors

	if strings.TrimSpace(in.Make) == "" {
		errs = append(errs, domain.FieldError{Field: "make", Message: "make is required"})
	}
	if strings.TrimSpace(in.Model) == "" {
		errs = append(errs, domain.FieldError{Field: "model", Message: "model is required"})
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price < 0 {
		errs = append(errs, domain.FieldError{Field: "price", Message: "price must be a non-negative number"})
	}
	if in.Mileage < 0 {
		errs = append(errs, domain.FieldError{Field: "mileage", Message: "mileage must be a non-negative integer"})
	}
	if strings.TrimSpace(in.FuelType) == "" {
		errs = append(errs, domain.FieldError{Field: "fuel_type", Message: "fuel type is required"})
	}
	maxYear := time.Now().Year() + 1
	if in.Year < 1900 || in.Year > maxYear {
		errs = append(errs, domain.FieldError{Field: "year", Message: "year is out of range"})
	}
	if in.Seats != nil && *in.Seats <= 0 {
		errs = append(errs, domain.FieldError{Field: "seats", Message: "seats must be a positive integer"})
	}
	if in.Status != "" && !in.Status.Valid() {
		errs = append(errs, domain.FieldError{Field: "status", Message: "unknown status"})
	}

	if len(errs) > 0 {
		return CarFields{}, errs
	}

	out := in
	out.Make = strings.TrimSpace(in.Make)
	out.Model = strings.TrimSpace(in.Model)
	out.Color = strings.TrimSpace(in.Color)
	out.FuelType = strings.TrimSpace(in.FuelType)
	out.Transmission = strings.TrimSpace(in.Transmission)
	out.BodyType = strings.TrimSpace(in.BodyType)
	out.Description = strings.TrimSpace(in.Description)
	if out.Status == "" {
		out.Status = domain.CarAvailable
	}
	return out, nil
}
