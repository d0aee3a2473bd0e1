package menu

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "description", "price", "category", "image",
		"vegetarian", "vegan", "gluten_free", "spicy_level", "available", "popular",
	})
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Unfiltered", func(t *testing.T) {
		rows := menuRows().
			AddRow(1, "Pancakes", "Fluffy stack", 8.50, "Breakfast", "/uploads/menu/p.jpg",
				true, false, false, 0, true, true).
			AddRow(2, "Espresso", "Double shot", 3.00, "Beverages", "/uploads/menu/e.jpg",
				true, true, true, 0, true, false)

		mock.ExpectQuery(`SELECT .* FROM menu_items ORDER BY category, name`).
			WillReturnRows(rows)

		items, err := repo.List(ctx, nil)
		assert.NoError(t, err)
		assert.Len(t, items, 2)
		assert.Equal(t, "Pancakes", items[0].Name)
		assert.True(t, items[0].Dietary.Vegetarian)
	})

	t.Run("CategoryAndAvailable", func(t *testing.T) {
		cat := CategoryDinner
		mock.ExpectQuery(`SELECT .* FROM menu_items WHERE category = \$1 AND available = TRUE ORDER BY category, name`).
			WithArgs(cat).
			WillReturnRows(menuRows())

		items, err := repo.List(ctx, &ListFilter{Category: &cat, AvailableOnly: true})
		assert.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("DBError", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM menu_items`).
			WillReturnError(errors.New("db error"))

		_, err := repo.List(ctx, nil)
		assert.Error(t, err)
	})
}

func TestRepository_Search(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("MatchesNameDescriptionCategory", func(t *testing.T) {
		rows := menuRows().
			AddRow(3, "Chicken Curry", "Spicy house curry", 12.00, "Dinner", "",
				false, false, true, 2, true, true)

		mock.ExpectQuery(`SELECT .* FROM menu_items\s+WHERE available = TRUE\s+AND \(name ILIKE \$1 OR description ILIKE \$1 OR category ILIKE \$1\)`).
			WithArgs("%curry%").
			WillReturnRows(rows)

		items, err := repo.Search(ctx, "curry")
		assert.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "Chicken Curry", items[0].Name)
	})

	t.Run("NoMatches", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM menu_items\s+WHERE available = TRUE`).
			WithArgs("%sushi%").
			WillReturnRows(menuRows())

		items, err := repo.Search(ctx, "sushi")
		assert.NoError(t, err)
		assert.Empty(t, items)
	})
}

func TestRepository_Featured(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	rows := menuRows().
		AddRow(1, "Pancakes", "Fluffy stack", 8.50, "Breakfast", "",
			true, false, false, 0, true, true).
		AddRow(4, "Ribeye", "12oz grass-fed", 28.00, "Dinner", "",
			false, false, true, 0, true, true)

	mock.ExpectQuery(`SELECT .* FROM menu_items\s+WHERE available = TRUE AND popular = TRUE\s+ORDER BY name LIMIT \$1`).
		WithArgs(FeaturedItemsLimit).
		WillReturnRows(rows)

	items, err := repo.Featured(ctx)
	assert.NoError(t, err)
	require.Len(t, items, 2)
	assert.True(t, items[0].Popular)
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)
	ctx := context.Background()

	t.Run("Found", func(t *testing.T) {
		rows := menuRows().
			AddRow(5, "Tiramisu", "House dessert", 6.25, "Dessert", "",
				true, false, false, 0, true, false)

		mock.ExpectQuery(`SELECT .* FROM menu_items WHERE id = \$1`).
			WithArgs(uint(5)).
			WillReturnRows(rows)

		item, err := repo.GetByID(ctx, 5)
		assert.NoError(t, err)
		assert.Equal(t, "Tiramisu", item.Name)
		assert.Equal(t, 6.25, item.Price)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(`SELECT .* FROM menu_items WHERE id = \$1`).
			WithArgs(uint(99)).
			WillReturnRows(menuRows())

		_, err := repo.GetByID(ctx, 99)
		assert.ErrorIs(t, err, ErrMenuItemNotFound)
	})
}

func TestRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	item := &MenuItem{
		Name:      "Club Sandwich",
		Price:     11.00,
		Category:  CategoryLunch,
		Available: true,
	}

	mock.ExpectQuery(`INSERT INTO menu_items`).
		WithArgs(item.Name, item.Description, item.Price, item.Category, item.Image,
			false, false, false, 0, true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	err = repo.Create(context.Background(), item)
	assert.NoError(t, err)
	assert.Equal(t, uint(3), item.ID)
}

func TestRepository_Update_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectExec(`UPDATE menu_items SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.Update(context.Background(), &MenuItem{ID: 42, Category: CategoryLunch})
	assert.ErrorIs(t, err, ErrMenuItemNotFound)
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM menu_items WHERE id = \$1`).
			WithArgs(uint(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), 1))
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectExec(`DELETE FROM menu_items WHERE id = \$1`).
			WithArgs(uint(2)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), 2), ErrMenuItemNotFound)
	})
}

func TestRepository_CountAvailable(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM menu_items WHERE available = TRUE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountAvailable(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int64(12), count)
}
