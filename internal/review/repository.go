package review

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type Repository interface {
	Create(ctx context.Context, rev *Review) error
	GetByID(ctx context.Context, id uint) (*Review, error)
	ListApproved(ctx context.Context) ([]Review, error)
	Featured(ctx context.Context) ([]Review, error)
	Stats(ctx context.Context) (*Stats, error)
	ListByUser(ctx context.Context, userID uint) ([]Review, error)
	ListAll(ctx context.Context) ([]Review, error)
	Update(ctx context.Context, rev *Review) error
	Delete(ctx context.Context, id, userID uint) error
	Moderate(ctx context.Context, id uint, input ModerateInput, moderatorID uint) (*Review, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const reviewColumns = `r.id, r.user_id, u.name, r.order_id, r.rating, r.comment, r.images,
	r.status, r.moderation_comment, r.moderated_by, r.moderated_at, r.created_at, r.updated_at`

func scanReview(row interface{ Scan(...interface{}) error }) (*Review, error) {
	var rev Review
	var moderationComment sql.NullString
	err := row.Scan(
		&rev.ID, &rev.UserID, &rev.UserName, &rev.OrderID, &rev.Rating, &rev.Comment,
		pq.Array(&rev.Images),
		&rev.Status, &moderationComment, &rev.ModeratedBy, &rev.ModeratedAt,
		&rev.CreatedAt, &rev.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	rev.ModerationComment = moderationComment.String
	return &rev, nil
}

// Create inserts a pending review. The (user_id, order_id) unique index turns
// a second review for the same order into ErrDuplicateReview.
func (r *repository) Create(ctx context.Context, rev *Review) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO reviews (user_id, order_id, rating, comment, images, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, rev.UserID, rev.OrderID, rev.Rating, rev.Comment, pq.Array(rev.Images), rev.Status,
	).Scan(&rev.ID, &rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return ErrDuplicateReview
		}
		return err
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Review, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reviewColumns+` FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1
	`, id)

	rev, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func (r *repository) list(ctx context.Context, query string, args ...interface{}) ([]Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *rev)
	}
	return reviews, rows.Err()
}

func (r *repository) ListApproved(ctx context.Context) ([]Review, error) {
	return r.list(ctx, `
		SELECT `+reviewColumns+` FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.status = 'approved'
		ORDER BY r.created_at DESC
	`)
}

func (r *repository) Featured(ctx context.Context) ([]Review, error) {
	return r.list(ctx, `
		SELECT `+reviewColumns+` FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.status = 'approved' AND r.rating >= $1
		ORDER BY r.rating DESC, r.created_at DESC
		LIMIT $2
	`, FeaturedMinRating, FeaturedLimit)
}

func (r *repository) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		RatingDistribution: map[int]int64{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}

	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(ROUND(AVG(rating)::numeric, 1), 0), COUNT(*)
		FROM reviews WHERE status = 'approved'
	`).Scan(&stats.AverageRating, &stats.TotalReviews)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT rating, COUNT(*) FROM reviews
		WHERE status = 'approved'
		GROUP BY rating
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rating int
		var count int64
		if err := rows.Scan(&rating, &count); err != nil {
			return nil, err
		}
		stats.RatingDistribution[rating] = count
	}
	return stats, rows.Err()
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Review, error) {
	return r.list(ctx, `
		SELECT `+reviewColumns+` FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC
	`, userID)
}

func (r *repository) ListAll(ctx context.Context) ([]Review, error) {
	return r.list(ctx, `
		SELECT `+reviewColumns+` FROM reviews r
		JOIN users u ON u.id = r.user_id
		ORDER BY r.created_at DESC
	`)
}

// Update edits an owned review and resets it to pending for re-moderation.
func (r *repository) Update(ctx context.Context, rev *Review) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reviews
		SET rating = $1, comment = $2, images = $3, status = $4, updated_at = NOW()
		WHERE id = $5 AND user_id = $6
	`, rev.Rating, rev.Comment, pq.Array(rev.Images), StatusPending, rev.ID, rev.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	rev.Status = StatusPending
	return nil
}

func (r *repository) Delete(ctx context.Context, id, userID uint) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM reviews WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *repository) Moderate(ctx context.Context, id uint, input ModerateInput, moderatorID uint) (*Review, error) {
	now := time.Now()
	res, err := r.db.ExecContext(ctx, `
		UPDATE reviews
		SET status = $1, moderation_comment = $2, moderated_by = $3, moderated_at = $4, updated_at = NOW()
		WHERE id = $5
	`, input.Status, input.ModerationComment, moderatorID, now, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, ErrReviewNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&count)
	return count, err
}
