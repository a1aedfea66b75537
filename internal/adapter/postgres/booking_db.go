package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vehiql/vehiql_car_marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BookingRepository struct {
	db *sql.DB
}

func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// CreateBooking inserts the booking inside a transaction that serializes
// writers per (car, date) with an advisory lock, then checks the requested
// window against that day's active bookings. The lock is what makes the
// overlap check race-proof: row locks alone cannot stop a concurrent
// transaction from inserting a new overlapping row the read never saw.
// The partial unique index on (car_id, booking_date, start_time) remains
// the backstop for identical slots, mapped to ErrSlotConflict.
func (r *BookingRepository) CreateBooking(ctx context.Context, booking *domain.TestDriveBooking) (*domain.TestDriveBooking, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Held until commit or rollback.
	_, err = tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`,
		booking.CarID.String()+"|"+booking.BookingDate.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT start_time, end_time, status FROM test_drive_bookings
		 WHERE car_id = $1 AND booking_date = $2 AND status IN ($3, $4)`,
		booking.CarID, booking.BookingDate, domain.BookingPending, domain.BookingConfirmed,
	)
	if err != nil {
		return nil, err
	}

	var existing []*domain.TestDriveBooking
	for rows.Next() {
		b := &domain.TestDriveBooking{}
		if err := rows.Scan(&b.StartTime, &b.EndTime, &b.Status); err != nil {
			rows.Close()
			return nil, err
		}
		existing = append(existing, b)
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if domain.SlotTaken(existing, booking.StartTime, booking.EndTime) {
		return nil, domain.ErrSlotConflict
	}

	query := `INSERT INTO test_drive_bookings (id, car_id, user_id, booking_date, start_time, end_time, status, notes)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		booking.ID,
		booking.CarID,
		booking.UserID,
		booking.BookingDate,
		booking.StartTime,
		booking.EndTime,
		booking.Status,
		booking.Notes,
	).Scan(
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			switch pqErr.Code {
			case "23505":
				return nil, domain.ErrSlotConflict
			case "23502":
				return nil, fmt.Errorf("required field is missing")
			default:
				return nil, err
			}
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *BookingRepository) GetBookingByID(ctx context.Context, bookingID uuid.UUID) (*domain.TestDriveBooking, error) {
	query := `SELECT id, car_id, user_id, booking_date, start_time, end_time, status, notes, created_at, updated_at
	          FROM test_drive_bookings WHERE id = $1`

	booking := &domain.TestDriveBooking{}
	err := r.db.QueryRowContext(ctx, query, bookingID).Scan(
		&booking.ID,
		&booking.CarID,
		&booking.UserID,
		&booking.BookingDate,
		&booking.StartTime,
		&booking.EndTime,
		&booking.Status,
		&booking.Notes,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func (r *BookingRepository) GetBookingsByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.TestDriveBooking, error) {
	query := `SELECT id, car_id, user_id, booking_date, start_time, end_time, status, notes, created_at, updated_at
	          FROM test_drive_bookings WHERE user_id = $1 ORDER BY booking_date DESC`

	return r.queryBookings(ctx, query, userID)
}

func (r *BookingRepository) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]*domain.TestDriveBooking, error) {
	query := `SELECT id, car_id, user_id, booking_date, start_time, end_time, status, notes, created_at, updated_at
	          FROM test_drive_bookings WHERE 1=1`

	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.CarID != uuid.Nil {
		query += " AND car_id = " + arg(filter.CarID)
	}
	if filter.UserID != uuid.Nil {
		query += " AND user_id = " + arg(filter.UserID)
	}
	if filter.Status != "" {
		query += " AND status = " + arg(filter.Status)
	}
	if !filter.Date.IsZero() {
		query += " AND booking_date = " + arg(filter.Date)
	}

	query += " ORDER BY booking_date DESC, start_time ASC"

	return r.queryBookings(ctx, query, args...)
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, status domain.BookingStatus) error {
	query := `UPDATE test_drive_bookings
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE id = $2`

	result, err := r.db.ExecContext(ctx, query, status, bookingID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return domain.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) queryBookings(ctx context.Context, query string, args ...interface{}) ([]*domain.TestDriveBooking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.TestDriveBooking

	for rows.Next() {
		booking := &domain.TestDriveBooking{}
		err := rows.Scan(
			&booking.ID,
			&booking.CarID,
			&booking.UserID,
			&booking.BookingDate,
			&booking.StartTime,
			&booking.EndTime,
			&booking.Status,
			&booking.Notes,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bookings, nil
}
