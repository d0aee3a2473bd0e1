package order

import (
	"context"
	"database/sql"
	"time"

	"cozycorner-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type StatusCount struct {
	Status Status `json:"status"`
	Count  int64  `json:"count"`
}

type TypeCount struct {
	OrderType Type  `json:"orderType"`
	Count     int64 `json:"count"`
}

type StatsSummary struct {
	DailyCount   int64         `json:"dailyCount"`
	DailyRevenue float64       `json:"dailyRevenue"`
	ByStatus     []StatusCount `json:"byStatus"`
	ByType       []TypeCount   `json:"byType"`
}

type RevenuePoint struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*Order, error)
	ListByUser(ctx context.Context, userID uint) ([]Order, error)
	ListAll(ctx context.Context) ([]Order, error)
	UpdateStatus(ctx context.Context, id uint, status Status) error
	AttachPaymentIntent(ctx context.Context, orderID uint, intentID string) error
	ApplyPaymentResult(ctx context.Context, paymentID string, paymentStatus PaymentStatus, status Status) (*Order, bool, error)
	CancelPending(ctx context.Context, orderID, userID uint) (*Order, error)
	Count(ctx context.Context) (int64, error)
	StatsSummary(ctx context.Context) (*StatsSummary, error)
	Recent(ctx context.Context, limit int) ([]Order, error)
	DailyRevenue(ctx context.Context, since time.Time) ([]RevenuePoint, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, user_id, total_amount, status, order_type,
	delivery_street, delivery_city, delivery_state, delivery_zip,
	special_instructions, payment_status, payment_id, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }) (*Order, error) {
	var o Order
	var street, city, state, zip sql.NullString
	err := row.Scan(
		&o.ID, &o.UserID, &o.TotalAmount, &o.Status, &o.OrderType,
		&street, &city, &state, &zip,
		&o.SpecialInstructions, &o.PaymentStatus, &o.PaymentID,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if street.Valid || city.Valid {
		o.DeliveryAddress = &DeliveryAddress{
			Street:  street.String,
			City:    city.String,
			State:   state.String,
			ZipCode: zip.String,
		}
	}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var street, city, state, zip sql.NullString
	if o.DeliveryAddress != nil {
		street = sql.NullString{String: o.DeliveryAddress.Street, Valid: true}
		city = sql.NullString{String: o.DeliveryAddress.City, Valid: true}
		state = sql.NullString{String: o.DeliveryAddress.State, Valid: true}
		zip = sql.NullString{String: o.DeliveryAddress.ZipCode, Valid: true}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (
			user_id, total_amount, status, order_type,
			delivery_street, delivery_city, delivery_state, delivery_zip,
			special_instructions, payment_status
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at, updated_at
	`,
		o.UserID, o.TotalAmount, o.Status, o.OrderType,
		street, city, state, zip,
		o.SpecialInstructions, o.PaymentStatus,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return err
	}

	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_items (order_id, menu_item_id, name, quantity, price, special_instructions)
			VALUES ($1,$2,$3,$4,$5,$6)
			RETURNING id
		`,
			item.OrderID, item.MenuItemID, item.Name, item.Quantity, item.Price, item.SpecialInstructions,
		).Scan(&item.ID)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) GetByPaymentID(ctx context.Context, paymentID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE payment_id = $1`, paymentID)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, menu_item_id, name, quantity, price, special_instructions
		FROM order_items WHERE order_id = $1 ORDER BY id
	`, o.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID,
			&item.Name, &item.Quantity, &item.Price, &item.SpecialInstructions); err != nil {
			return err
		}
		o.Items = append(o.Items, item)
	}
	return rows.Err()
}

func (r *repository) listOrders(ctx context.Context, query string, args ...interface{}) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`,
		userID)
}

func (r *repository) ListAll(ctx context.Context) ([]Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// AttachPaymentIntent stores the provider intent id on the order. The column
// carries a unique constraint, so a collision with another order surfaces as
// ErrDuplicatePaymentIntent.
func (r *repository) AttachPaymentIntent(ctx context.Context, orderID uint, intentID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET payment_id = $1, payment_status = $2, updated_at = NOW() WHERE id = $3`,
		intentID, PaymentProcessing, orderID)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicatePaymentIntent
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// ApplyPaymentResult performs the webhook-driven transition in one statement.
// The payment_status guard makes redelivery and out-of-order events no-ops:
// only orders still awaiting a result are touched. The bool reports whether
// a row actually changed.
func (r *repository) ApplyPaymentResult(ctx context.Context, paymentID string, paymentStatus PaymentStatus, status Status) (*Order, bool, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET payment_status = $1, status = $2, updated_at = NOW()
		WHERE payment_id = $3 AND payment_status IN ($4, $5)
		RETURNING `+orderColumns+`
	`, paymentStatus, status, paymentID, PaymentPending, PaymentProcessing)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		// Already reconciled, or unknown intent. Distinguish for the caller.
		existing, lookupErr := r.GetByPaymentID(ctx, paymentID)
		if lookupErr != nil {
			return nil, false, lookupErr
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	logger.FromCtx(ctx).Info("payment result applied",
		zap.String("payment_id", paymentID),
		zap.String("payment_status", string(paymentStatus)),
		zap.String("status", string(status)),
	)
	return o, true, nil
}

// CancelPending soft-cancels a customer's own order, but only while it is
// still pending and no payment intent has been attached.
func (r *repository) CancelPending(ctx context.Context, orderID, userID uint) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3 AND status = $4 AND payment_id IS NULL
		RETURNING `+orderColumns+`
	`, StatusCancelled, orderID, userID, StatusPending)

	o, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotCancellable
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

func (r *repository) StatsSummary(ctx context.Context) (*StatsSummary, error) {
	summary := &StatsSummary{}

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0)
		FROM orders WHERE created_at >= date_trunc('day', NOW())
	`).Scan(&summary.DailyCount, &summary.DailyRevenue)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM orders GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		summary.ByStatus = append(summary.ByStatus, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	typeRows, err := r.db.QueryContext(ctx,
		`SELECT order_type, COUNT(*) FROM orders GROUP BY order_type`)
	if err != nil {
		return nil, err
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var tc TypeCount
		if err := typeRows.Scan(&tc.OrderType, &tc.Count); err != nil {
			return nil, err
		}
		summary.ByType = append(summary.ByType, tc)
	}
	return summary, typeRows.Err()
}

func (r *repository) Recent(ctx context.Context, limit int) ([]Order, error) {
	return r.listOrders(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`,
		limit)
}

func (r *repository) DailyRevenue(ctx context.Context, since time.Time) ([]RevenuePoint, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(created_at, 'YYYY-MM-DD') AS day, SUM(total_amount)
		FROM orders
		WHERE created_at >= $1
		GROUP BY day
		ORDER BY day
	`, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []RevenuePoint
	for rows.Next() {
		var p RevenuePoint
		if err := rows.Scan(&p.Date, &p.Amount); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, rows.Err()
}
