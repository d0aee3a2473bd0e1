package menu

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

type Repository interface {
	List(ctx context.Context, filter *ListFilter) ([]MenuItem, error)
	Search(ctx context.Context, query string) ([]MenuItem, error)
	Featured(ctx context.Context) ([]MenuItem, error)
	GetByID(ctx context.Context, id uint) (*MenuItem, error)
	Create(ctx context.Context, item *MenuItem) error
	Update(ctx context.Context, item *MenuItem) error
	Delete(ctx context.Context, id uint) error
	CountAvailable(ctx context.Context) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const menuColumns = `id, name, description, price, category, image,
	vegetarian, vegan, gluten_free, spicy_level, available, popular`

func scanItem(row interface{ Scan(...interface{}) error }) (*MenuItem, error) {
	var m MenuItem
	err := row.Scan(
		&m.ID, &m.Name, &m.Description, &m.Price, &m.Category, &m.Image,
		&m.Dietary.Vegetarian, &m.Dietary.Vegan, &m.Dietary.GlutenFree,
		&m.SpicyLevel, &m.Available, &m.Popular,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repository) List(ctx context.Context, filter *ListFilter) ([]MenuItem, error) {
	query := `SELECT ` + menuColumns + ` FROM menu_items`

	var conditions []string
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter != nil {
		if filter.Category != nil {
			conditions = append(conditions, "category = "+arg(*filter.Category))
		}
		if filter.Vegetarian != nil {
			conditions = append(conditions, "vegetarian = "+arg(*filter.Vegetarian))
		}
		if filter.Vegan != nil {
			conditions = append(conditions, "vegan = "+arg(*filter.Vegan))
		}
		if filter.GlutenFree != nil {
			conditions = append(conditions, "gluten_free = "+arg(*filter.GlutenFree))
		}
		if filter.AvailableOnly {
			conditions = append(conditions, "available = TRUE")
		}
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY category, name"

	return r.queryItems(ctx, query, args...)
}

// Search matches name, description or category, case-insensitively, across
// available items only.
func (r *repository) Search(ctx context.Context, query string) ([]MenuItem, error) {
	pattern := "%" + query + "%"
	return r.queryItems(ctx,
		`SELECT `+menuColumns+` FROM menu_items
		 WHERE available = TRUE
		   AND (name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1)
		 ORDER BY name`, pattern)
}

func (r *repository) Featured(ctx context.Context) ([]MenuItem, error) {
	return r.queryItems(ctx,
		`SELECT `+menuColumns+` FROM menu_items
		 WHERE available = TRUE AND popular = TRUE
		 ORDER BY name LIMIT $1`, FeaturedItemsLimit)
}

func (r *repository) queryItems(ctx context.Context, query string, args ...interface{}) ([]MenuItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func (r *repository) GetByID(ctx context.Context, id uint) (*MenuItem, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id)

	m, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, ErrMenuItemNotFound
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (r *repository) Create(ctx context.Context, item *MenuItem) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO menu_items
			(name, description, price, category, image,
			 vegetarian, vegan, gluten_free, spicy_level, available, popular)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		 RETURNING id`,
		item.Name, item.Description, item.Price, item.Category, item.Image,
		item.Dietary.Vegetarian, item.Dietary.Vegan, item.Dietary.GlutenFree,
		item.SpicyLevel, item.Available, item.Popular,
	).Scan(&item.ID)
}

func (r *repository) Update(ctx context.Context, item *MenuItem) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE menu_items SET
			name = $1, description = $2, price = $3, category = $4, image = $5,
			vegetarian = $6, vegan = $7, gluten_free = $8,
			spicy_level = $9, available = $10, popular = $11
		 WHERE id = $12`,
		item.Name, item.Description, item.Price, item.Category, item.Image,
		item.Dietary.Vegetarian, item.Dietary.Vegan, item.Dietary.GlutenFree,
		item.SpicyLevel, item.Available, item.Popular, item.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMenuItemNotFound
	}
	return nil
}

func (r *repository) CountAvailable(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM menu_items WHERE available = TRUE`).Scan(&count)
	return count, err
}
