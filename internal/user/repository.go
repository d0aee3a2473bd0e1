package user

import (
	"context"
	"database/sql"

	"cozycorner-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, name, email, password, phone, role string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id uint) (User, error)
	ListAll(ctx context.Context) ([]User, error)
	UpdateRole(ctx context.Context, id uint, role string) (User, error)
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, password, phone, role string) (User, error) {
	log := logger.FromCtx(ctx)

	var u User
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (name, email, password, phone, role)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, name, email, password, phone, role, created_at`,
		name, email, password, phone, role,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Phone, &u.Role, &u.CreatedAt)

	if err != nil {
		log.Error("db: failed to insert user",
			zap.String("email", email),
			zap.Error(err),
		)
	}

	return u, err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, phone, role, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Phone, &u.Role, &u.CreatedAt)

	return u, err
}

func (r *repository) FindByID(ctx context.Context, id uint) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, password, phone, role, created_at FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Phone, &u.Role, &u.CreatedAt)

	return u, err
}

func (r *repository) ListAll(ctx context.Context) ([]User, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, phone, role, created_at FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *repository) UpdateRole(ctx context.Context, id uint, role string) (User, error) {
	var u User
	err := r.db.QueryRowContext(ctx,
		`UPDATE users SET role = $1 WHERE id = $2
		 RETURNING id, name, email, phone, role, created_at`,
		role, id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &u.CreatedAt)

	return u, err
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}
