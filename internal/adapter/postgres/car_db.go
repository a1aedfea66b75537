package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type CarRepository struct {
	db *sql.DB
}

func NewCarRepository(db *sql.DB) *CarRepository {
	return &CarRepository{
		db,
	}
}

func (r *CarRepository) CreateCar(ctx context.Context, car *domain.Car) (*domain.Car, error) {
	query := `INSERT INTO cars (id, make, model, year, price, mileage, color, fuel_type, transmission, body_type, seats, description, status, featured, images)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		car.ID,
		car.Make,
		car.Model,
		car.Year,
		car.Price,
		car.Mileage,
		car.Color,
		car.FuelType,
		car.Transmission,
		car.BodyType,
		car.Seats,
		car.Description,
		car.Status,
		car.Featured,
		pq.Array(car.Images),
	).Scan(
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			case "23505":
				return nil, fmt.Errorf("car already exists")
			default:
				return nil, err
			}
		}
		return nil, err
	}
	return car, nil
}

func (r *CarRepository) GetCarByID(ctx context.Context, carID uuid.UUID) (*domain.Car, error) {
	query := `SELECT id, make, model, year, price, mileage, color, fuel_type, transmission, body_type, seats, description, status, featured, images, created_at, updated_at
	          FROM cars WHERE id = $1`

	car := &domain.Car{}
	err := r.db.QueryRowContext(ctx, query, carID).Scan(
		&car.ID,
		&car.Make,
		&car.Model,
		&car.Year,
		&car.Price,
		&car.Mileage,
		&car.Color,
		&car.FuelType,
		&car.Transmission,
		&car.BodyType,
		&car.Seats,
		&car.Description,
		&car.Status,
		&car.Featured,
		pq.Array(&car.Images),
		&car.CreatedAt,
		&car.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrCarNotFound
	}
	if err != nil {
		return nil, err
	}

	return car, nil
}

func (r *CarRepository) ListCars(ctx context.Context, filter domain.CarFilter) ([]*domain.Car, error) {
	query := `SELECT id, make, model, year, price, mileage, color, fuel_type, transmission, body_type, seats, description, status, featured, images, created_at, updated_at
	          FROM cars WHERE 1=1`

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (make ILIKE %s OR model ILIKE %s OR color ILIKE %s OR body_type ILIKE %s OR description ILIKE %s)", p, p, p, p, p)
	}
	if filter.Make != "" {
		query += " AND make ILIKE " + arg(filter.Make)
	}
	if filter.BodyType != "" {
		query += " AND body_type ILIKE " + arg(filter.BodyType)
	}
	if filter.Color != "" {
		query += " AND color ILIKE " + arg(filter.Color)
	}
	if filter.Status != "" {
		query += " AND status = " + arg(filter.Status)
	}
	if filter.Featured != nil {
		query += " AND featured = " + arg(*filter.Featured)
	}
	if filter.MinPrice > 0 {
		query += " AND price >= " + arg(filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		query += " AND price <= " + arg(filter.MaxPrice)
	}

	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT " + arg(filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + arg(filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cars []*domain.Car

	for rows.Next() {
		car := &domain.Car{}
		err := rows.Scan(
			&car.ID,
			&car.Make,
			&car.Model,
			&car.Year,
			&car.Price,
			&car.Mileage,
			&car.Color,
			&car.FuelType,
			&car.Transmission,
			&car.BodyType,
			&car.Seats,
			&car.Description,
			&car.Status,
			&car.Featured,
			pq.Array(&car.Images),
			&car.CreatedAt,
			&car.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		cars = append(cars, car)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return cars, nil
}

func (r *CarRepository) UpdateCarStatus(ctx context.Context, carID uuid.UUID, update domain.CarStatusUpdate) error {
	query := `UPDATE cars
		SET
			status = COALESCE($1, status),
			featured = COALESCE($2, featured),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $3`

	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	result, err := r.db.ExecContext(ctx, query, status, update.Featured, carID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrCarNotFound
	}
	return nil
}

// DeleteCar cancels the car's active bookings and removes the listing in
// one transaction, so no active booking is left dangling on a car that no
// longer exists.
func (r *CarRepository) DeleteCar(ctx context.Context, carID uuid.UUID) (*domain.Car, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`UPDATE test_drive_bookings SET status = $1, updated_at = CURRENT_TIMESTAMP
		 WHERE car_id = $2 AND status IN ($3, $4)`,
		domain.BookingCancelled, carID, domain.BookingPending, domain.BookingConfirmed,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel bookings for car: %w", err)
	}

	car := &domain.Car{}
	err = tx.QueryRowContext(ctx,
		`DELETE FROM cars WHERE id = $1
		 RETURNING id, make, model, year, price, mileage, color, fuel_type, transmission, body_type, seats, description, status, featured, images, created_at, updated_at`,
		carID,
	).Scan(
		&car.ID,
		&car.Make,
		&car.Model,
		&car.Year,
		&car.Price,
		&car.Mileage,
		&car.Color,
		&car.FuelType,
		&car.Transmission,
		&car.BodyType,
		&car.Seats,
		&car.Description,
		&car.Status,
		&car.Featured,
		pq.Array(&car.Images),
		&car.CreatedAt,
		&car.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, domain.ErrCarNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return car, nil
}
