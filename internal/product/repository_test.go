package product

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var productColumns = []string{
	"id", "name", "description", "price", "category_id", "category_name",
	"images", "stock", "is_active", "created_at", "updated_at",
}

func productRow(id, name, categoryID string, price float64, stock int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(productColumns).
		AddRow(id, name, "", price, categoryID, "Kitchen", "{/assets/productImages/a.png}", stock, true, now, now)
}

func TestRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Success", func(t *testing.T) {
		now := time.Now()
		rows := sqlmock.NewRows(productColumns).
			AddRow("p1", "Red Mug", "ceramic", 10.0, "cat-1", "Kitchen", "{/a.png,/b.png}", 3, true, now, now).
			AddRow("p2", "Lamp", "", 20.0, "cat-2", "Lighting", nil, 0, false, now, now)
		mock.ExpectQuery("SELECT .* FROM products p LEFT JOIN categories c ON c.id = p.category_id ORDER BY p.created_at DESC").
			WillReturnRows(rows)

		res, err := repo.List(context.Background())

		require.NoError(t, err)
		require.Len(t, res, 2)
		assert.Equal(t, CategoryRef{ID: "cat-1", Name: "Kitchen"}, res[0].Category)
		assert.Equal(t, []string{"/a.png", "/b.png"}, res[0].Images)
		assert.Equal(t, []string{}, res[1].Images)
		assert.False(t, res[1].IsActive)
	})

	t.Run("Error", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products p").WillReturnError(errors.New("db down"))

		_, err := repo.List(context.Background())
		assert.Error(t, err)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	t.Run("Found", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products p .* WHERE p.id = \\$1").
			WithArgs("p1").
			WillReturnRows(productRow("p1", "Red Mug", "cat-1", 10, 3))

		p, err := repo.GetByID(context.Background(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Red Mug", p.Name)
		assert.Equal(t, 3, p.Stock)
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery("SELECT .* FROM products p .* WHERE p.id = \\$1").
			WithArgs("nope").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), "nope")
		assert.ErrorIs(t, err, ErrProductNotFound)
	})
}

func TestRepository_Create(t *testing.T) {
	stock := 3

	t.Run("Increments category count", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT name FROM categories WHERE id = \\$1").
			WithArgs("cat-1").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Kitchen"))
		mock.ExpectQuery("INSERT INTO products").
			WithArgs("Red Mug", "", 10.0, "cat-1", sqlmock.AnyArg(), 3, true).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p1"))
		mock.ExpectExec("UPDATE categories SET product_count").
			WithArgs(1, "cat-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT .* FROM products p .* WHERE p.id = \\$1").
			WithArgs("p1").
			WillReturnRows(productRow("p1", "Red Mug", "cat-1", 10, 3))
		mock.ExpectCommit()

		p, err := NewRepository(db).Create(context.Background(), CreateProductInput{
			Name: "Red Mug", Price: 10, CategoryID: "cat-1", Stock: &stock,
		})

		require.NoError(t, err)
		assert.Equal(t, "p1", p.ID)
		assert.Equal(t, "Kitchen", p.Category.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Defaults stock and active flag", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT name FROM categories").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Kitchen"))
		mock.ExpectQuery("INSERT INTO products").
			WithArgs("Bowl", "", 4.0, "cat-1", sqlmock.AnyArg(), 0, true).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p9"))
		mock.ExpectExec("UPDATE categories SET product_count").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT .* FROM products p").
			WillReturnRows(productRow("p9", "Bowl", "cat-1", 4, 0))
		mock.ExpectCommit()

		_, err = NewRepository(db).Create(context.Background(), CreateProductInput{
			Name: "Bowl", Price: 4, CategoryID: "cat-1",
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown category rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT name FROM categories").
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err = NewRepository(db).Create(context.Background(), CreateProductInput{
			Name: "Red Mug", Price: 10, CategoryID: "ghost",
		})

		assert.ErrorIs(t, err, ErrInvalidCategory)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRepository_Update(t *testing.T) {
	t.Run("Category change moves the count", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		newCat := "cat-2"
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT category_id FROM products WHERE id = \\$1 FOR UPDATE").
			WithArgs("p1").
			WillReturnRows(sqlmock.NewRows([]string{"category_id"}).AddRow("cat-1"))
		mock.ExpectQuery("SELECT name FROM categories WHERE id = \\$1").
			WithArgs("cat-2").
			WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Lighting"))
		mock.ExpectExec("UPDATE categories SET product_count").
			WithArgs(-1, "cat-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE categories SET product_count").
			WithArgs(1, "cat-2").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec("UPDATE products SET category_id = \\$1, updated_at = NOW\\(\\) WHERE id = \\$2").
			WithArgs("cat-2", "p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT .* FROM products p .* WHERE p.id = \\$1").
			WithArgs("p1").
			WillReturnRows(productRow("p1", "Red Mug", "cat-2", 10, 3))
		mock.ExpectCommit()

		p, err := NewRepository(db).Update(context.Background(), "p1", UpdateFields{CategoryID: &newCat})

		require.NoError(t, err)
		assert.Equal(t, "cat-2", p.Category.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Same category leaves counts alone", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		sameCat := "cat-1"
		price := 12.5
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT category_id FROM products").
			WillReturnRows(sqlmock.NewRows([]string{"category_id"}).AddRow("cat-1"))
		mock.ExpectExec("UPDATE products SET price = \\$1, category_id = \\$2, updated_at = NOW\\(\\) WHERE id = \\$3").
			WithArgs(12.5, "cat-1", "p1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("SELECT .* FROM products p").
			WillReturnRows(productRow("p1", "Red Mug", "cat-1", 12.5, 3))
		mock.ExpectCommit()

		_, err = NewRepository(db).Update(context.Background(), "p1", UpdateFields{Price: &price, CategoryID: &sameCat})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing product", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		name := "x"
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT category_id FROM products").WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err = NewRepository(db).Update(context.Background(), "nope", UpdateFields{Name: &name})

		assert.ErrorIs(t, err, ErrProductNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No fields", func(t *testing.T) {
		db, _, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		_, err = NewRepository(db).Update(context.Background(), "p1", UpdateFields{})
		assert.ErrorIs(t, err, ErrNoFields)
	})
}

func TestRepository_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .* FROM products p .* WHERE p.id = \\$1").
		WithArgs("p1").
		WillReturnRows(productRow("p1", "Red Mug", "cat-1", 10, 3))
	mock.ExpectExec("DELETE FROM products WHERE id = \\$1").
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE categories SET product_count").
		WithArgs(-1, "cat-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := NewRepository(db).Delete(context.Background(), "p1")

	require.NoError(t, err)
	assert.Equal(t, []string{"/assets/productImages/a.png"}, p.Images)
	assert.NoError(t, mock.ExpectationsWereMet())
}
