package reservation

import (
	"context"
	"database/sql"

	"cozycorner-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	CreateInSlot(ctx context.Context, res *Reservation) error
	GetByID(ctx context.Context, id uint) (*Reservation, error)
	ListByUser(ctx context.Context, userID uint) ([]Reservation, error)
	ListAll(ctx context.Context) ([]Reservation, error)
	UpdateInSlot(ctx context.Context, res *Reservation) error
	Cancel(ctx context.Context, id, userID uint) (*Reservation, error)
	UpdateStatus(ctx context.Context, id uint, status Status) error
	CountActive(ctx context.Context, date, timeSlot string) (int, error)
	Count(ctx context.Context) (int64, error)
	Recent(ctx context.Context, limit int) ([]Reservation, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const reservationColumns = `id, user_id, to_char(date, 'YYYY-MM-DD'), time, party_size,
	special_requests, status, created_at, updated_at`

func scanReservation(row interface{ Scan(...interface{}) error }) (*Reservation, error) {
	var res Reservation
	err := row.Scan(
		&res.ID, &res.UserID, &res.Date, &res.Time, &res.PartySize,
		&res.SpecialRequests, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// lockSlot takes a transaction-scoped advisory lock on the slot. Under READ
// COMMITTED two concurrent capacity counts could otherwise both see a free
// table; the lock serializes writers per (date, time).
func lockSlot(ctx context.Context, tx *sql.Tx, date, timeSlot string) error {
	_, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1 || ' ' || $2))`, date, timeSlot)
	return err
}

// CreateInSlot persists the reservation only while the slot still has
// capacity. The count and the insert run in one statement under the slot
// lock. Zero rows inserted means the slot is full.
func (r *repository) CreateInSlot(ctx context.Context, res *Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockSlot(ctx, tx, res.Date, res.Time); err != nil {
		return err
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO reservations (user_id, date, time, party_size, special_requests, status)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE (
			SELECT COUNT(*) FROM reservations
			WHERE date = $2 AND time = $3 AND status <> 'cancelled'
		) < $7
		RETURNING id, created_at, updated_at
	`, res.UserID, res.Date, res.Time, res.PartySize, res.SpecialRequests, res.Status, SlotCapacity)

	err = row.Scan(&res.ID, &res.CreatedAt, &res.UpdatedAt)
	if err == sql.ErrNoRows {
		return ErrSlotFull
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logger.FromCtx(ctx).Info("reservation created",
		zap.Uint("reservation_id", res.ID),
		zap.String("date", res.Date),
		zap.String("time", res.Time),
	)
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Reservation, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE id = $1`, id)

	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, *res)
	}
	return reservations, rows.Err()
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations WHERE user_id = $1 ORDER BY date DESC, time DESC`,
		userID)
}

func (r *repository) ListAll(ctx context.Context) ([]Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY date DESC, time DESC`)
}

// UpdateInSlot moves an owned, non-cancelled reservation to a new slot under
// the same capacity guard as creation. The count excludes the reservation
// itself so moving within a slot never self-conflicts.
func (r *repository) UpdateInSlot(ctx context.Context, res *Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := lockSlot(ctx, tx, res.Date, res.Time); err != nil {
		return err
	}

	row := tx.QueryRowContext(ctx, `
		UPDATE reservations
		SET date = $1, time = $2, party_size = $3, special_requests = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6 AND status <> 'cancelled'
		AND (
			SELECT COUNT(*) FROM reservations
			WHERE date = $1 AND time = $2 AND status <> 'cancelled' AND id <> $5
		) < $7
		RETURNING `+reservationColumns+`
	`, res.Date, res.Time, res.PartySize, res.SpecialRequests, res.ID, res.UserID, SlotCapacity)

	updated, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return ErrSlotFull
	}
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	*res = *updated
	return nil
}

// Cancel soft-cancels; the record survives so past slots keep their history.
func (r *repository) Cancel(ctx context.Context, id, userID uint) (*Reservation, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE reservations
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND status <> $1
		RETURNING `+reservationColumns+`
	`, StatusCancelled, id, userID)

	res, err := scanReservation(row)
	if err == sql.ErrNoRows {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE reservations SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReservationNotFound
	}
	return nil
}

func (r *repository) CountActive(ctx context.Context, date, timeSlot string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM reservations
		WHERE date = $1 AND time = $2 AND status <> 'cancelled'
	`, date, timeSlot).Scan(&count)
	return count, err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reservations`).Scan(&count)
	return count, err
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Reservation, error) {
	return r.list(ctx,
		`SELECT `+reservationColumns+` FROM reservations ORDER BY created_at DESC LIMIT $1`,
		limit)
}
