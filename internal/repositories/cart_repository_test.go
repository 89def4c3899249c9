package repository_test

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/storefront-checkout/internal/models"
	repository "github.com/aaravmahajanofficial/storefront-checkout/internal/repositories"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCartRepoTest(t *testing.T) (repository.CartRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err, "Failed to create sqlmock")

	t.Cleanup(func() {
		db.Close()
	})

	return repository.NewCartRepo(db), mock
}

// cartDoc matches a JSON cart item document argument.
type cartDoc struct {
	productID uuid.UUID
	quantity  int
	name      string
	unitPrice string
}

func (m cartDoc) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if !ok {
		return false
	}

	var item models.CartItem
	if err := json.Unmarshal(raw, &item); err != nil {
		return false
	}

	return item.ProductID == m.productID &&
		item.Quantity == m.quantity &&
		item.ProductName == m.name &&
		item.UnitPrice.Equal(decimal.RequireFromString(m.unitPrice))
}

var (
	upsertProfileSQL = regexp.QuoteMeta(`INSERT INTO user_profiles (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`)
	insertItemSQL    = regexp.QuoteMeta(`INSERT INTO cart_items (id, user_id, data, added_at) VALUES ($1, $2, $3, $4)`)
	incrementSQL     = `UPDATE products SET added_to_cart_count = added_to_cart_count \+ 1\s+WHERE id = \$1\s+RETURNING name, price`
)

func newCartItem(userID uuid.UUID) *models.CartItem {
	return &models.CartItem{
		UserID:    userID,
		ProductID: uuid.New(),
		Quantity:  2,
		Size:      "M",
		Color:     "White",
	}
}

func catalogueRow(name, price string) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"name", "price"}).AddRow(name, price)
}

func TestCartRepository_AddItem(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()

	t.Run("Success commits all three writes", func(t *testing.T) {
		// Arrange
		repo, mock := setupCartRepoTest(t)
		item := newCartItem(userID)

		mock.ExpectBegin()
		mock.ExpectExec(upsertProfileSQL).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(incrementSQL).WithArgs(item.ProductID).WillReturnRows(catalogueRow("Linen Shirt", "25.00"))
		mock.ExpectExec(insertItemSQL).
			WithArgs(sqlmock.AnyArg(), userID, cartDoc{productID: item.ProductID, quantity: 2, name: "Linen Shirt", unitPrice: "25"}, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act
		id, err := repo.AddItem(ctx, item)

		// Assert
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, id)
		assert.Equal(t, id, item.ID)
		assert.False(t, item.AddedAt.IsZero())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Catalogue price replaces the caller's", func(t *testing.T) {
		// Arrange
		repo, mock := setupCartRepoTest(t)
		item := newCartItem(userID)
		item.ProductName = "Anything"
		item.UnitPrice = decimal.RequireFromString("0.01")

		mock.ExpectBegin()
		mock.ExpectExec(upsertProfileSQL).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(incrementSQL).WithArgs(item.ProductID).WillReturnRows(catalogueRow("Linen Shirt", "25.00"))
		mock.ExpectExec(insertItemSQL).
			WithArgs(sqlmock.AnyArg(), userID, cartDoc{productID: item.ProductID, quantity: 2, name: "Linen Shirt", unitPrice: "25.00"}, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		// Act
		_, err := repo.AddItem(ctx, item)

		// Assert
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("25").Equal(item.UnitPrice))
		assert.Equal(t, "Linen Shirt", item.ProductName)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown product stores nothing", func(t *testing.T) {
		// Arrange
		repo, mock := setupCartRepoTest(t)
		item := newCartItem(userID)

		mock.ExpectBegin()
		mock.ExpectExec(upsertProfileSQL).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(incrementSQL).WithArgs(item.ProductID).WillReturnRows(sqlmock.NewRows([]string{"name", "price"}))
		mock.ExpectRollback()

		// Act
		id, err := repo.AddItem(ctx, item)

		// Assert
		require.ErrorIs(t, err, repository.ErrProductNotFound)
		assert.Equal(t, uuid.Nil, id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Counter failure rolls the profile back", func(t *testing.T) {
		// Arrange
		repo, mock := setupCartRepoTest(t)
		item := newCartItem(userID)
		dbErr := errors.New("deadlock detected")

		mock.ExpectBegin()
		mock.ExpectExec(upsertProfileSQL).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(incrementSQL).WithArgs(item.ProductID).WillReturnError(dbErr)
		mock.ExpectRollback()

		// Act
		id, err := repo.AddItem(ctx, item)

		// Assert
		require.ErrorIs(t, err, dbErr)
		assert.Equal(t, uuid.Nil, id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert failure rolls the counter back", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)
		item := newCartItem(userID)

		mock.ExpectBegin()
		mock.ExpectExec(upsertProfileSQL).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(incrementSQL).WillReturnRows(catalogueRow("Linen Shirt", "25.00"))
		mock.ExpectExec(insertItemSQL).WillReturnError(errors.New("disk full"))
		mock.ExpectRollback()

		_, err := repo.AddItem(ctx, item)

		require.ErrorContains(t, err, "failed to insert cart item")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Commit failure", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)
		item := newCartItem(userID)

		mock.ExpectBegin()
		mock.ExpectExec(upsertProfileSQL).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(incrementSQL).WillReturnRows(catalogueRow("Linen Shirt", "25.00"))
		mock.ExpectExec(insertItemSQL).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit().WillReturnError(sql.ErrConnDone)

		_, err := repo.AddItem(ctx, item)

		require.ErrorIs(t, err, sql.ErrConnDone)
	})
}

func TestCartRepository_ListItems(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	listSQL := regexp.QuoteMeta(`SELECT id, data, added_at FROM cart_items WHERE user_id = $1 ORDER BY added_at ASC`)

	t.Run("Malformed documents are dropped, not fatal", func(t *testing.T) {
		// Arrange
		repo, mock := setupCartRepoTest(t)
		good := newCartItem(userID)
		goodDoc, err := json.Marshal(good)
		require.NoError(t, err)

		goodID := uuid.New()
		addedAt := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows([]string{"id", "data", "added_at"}).
			AddRow(goodID.String(), goodDoc, addedAt).
			AddRow(uuid.NewString(), []byte(`{"quantity": "two"`), addedAt).
			AddRow(uuid.NewString(), []byte(`{"product_name": "ghost", "quantity": 0}`), addedAt)

		mock.ExpectQuery(listSQL).WithArgs(userID).WillReturnRows(rows)

		// Act
		items, dropped, err := repo.ListItems(ctx, userID)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 2, dropped)
		require.Len(t, items, 1)
		assert.Equal(t, goodID, items[0].ID)
		assert.Equal(t, userID, items[0].UserID)
		assert.Equal(t, good.ProductName, items[0].ProductName)
		assert.Equal(t, 2, items[0].Quantity)
		assert.True(t, good.UnitPrice.Equal(items[0].UnitPrice))
		assert.Equal(t, addedAt, items[0].AddedAt)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty cart", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)
		mock.ExpectQuery(listSQL).WithArgs(userID).WillReturnRows(sqlmock.NewRows([]string{"id", "data", "added_at"}))

		items, dropped, err := repo.ListItems(ctx, userID)

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.NotNil(t, items)
		assert.Zero(t, dropped)
	})

	t.Run("Query failure", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)
		mock.ExpectQuery(listSQL).WithArgs(userID).WillReturnError(sql.ErrConnDone)

		_, _, err := repo.ListItems(ctx, userID)

		require.ErrorIs(t, err, sql.ErrConnDone)
	})
}

func TestCartRepository_Mutations(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	itemID := uuid.New()
	deleteSQL := regexp.QuoteMeta(`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`)
	updateSQL := `UPDATE cart_items\s+SET data = jsonb_set\(data, '\{quantity\}', to_jsonb\(\$3::int\)\)\s+WHERE id = \$1 AND user_id = \$2`
	clearSQL := regexp.QuoteMeta(`DELETE FROM cart_items WHERE user_id = $1`)

	t.Run("Remove existing item", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)
		mock.ExpectExec(deleteSQL).WithArgs(itemID, userID).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.RemoveItem(ctx, userID, itemID))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Remove missing item", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)
		mock.ExpectExec(deleteSQL).WithArgs(itemID, userID).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.RemoveItem(ctx, userID, itemID), sql.ErrNoRows)
	})

	t.Run("Update quantity", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)
		mock.ExpectExec(updateSQL).WithArgs(itemID, userID, 5).WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateQuantity(ctx, userID, itemID, 5))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Update quantity of another user's item", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)
		mock.ExpectExec(updateSQL).WithArgs(itemID, userID, 5).WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.UpdateQuantity(ctx, userID, itemID, 5), sql.ErrNoRows)
	})

	t.Run("Zero quantity never reaches the database", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)

		require.Error(t, repo.UpdateQuantity(ctx, userID, itemID, 0))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Clear is a single batched delete", func(t *testing.T) {
		repo, mock := setupCartRepoTest(t)
		mock.ExpectExec(clearSQL).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 3))

		removed, err := repo.ClearCart(ctx, userID)

		require.NoError(t, err)
		assert.Equal(t, int64(3), removed)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

// capturedDoc records the document written by AddItem so a later list can
// replay it.
type capturedDoc struct {
	raw *[]byte
}

func (c capturedDoc) Match(v driver.Value) bool {
	raw, ok := v.([]byte)
	if ok {
		*c.raw = raw
	}

	return ok
}

func TestCartRepository_AddListRemove(t *testing.T) {
	ctx := t.Context()
	userID := uuid.New()
	listSQL := regexp.QuoteMeta(`SELECT id, data, added_at FROM cart_items WHERE user_id = $1 ORDER BY added_at ASC`)
	deleteSQL := regexp.QuoteMeta(`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`)

	// Arrange
	repo, mock := setupCartRepoTest(t)
	item := newCartItem(userID)

	var stored []byte

	mock.ExpectBegin()
	mock.ExpectExec(upsertProfileSQL).WithArgs(userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(incrementSQL).WithArgs(item.ProductID).WillReturnRows(catalogueRow("Linen Shirt", "25.00"))
	mock.ExpectExec(insertItemSQL).
		WithArgs(sqlmock.AnyArg(), userID, capturedDoc{raw: &stored}, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act: add
	id, err := repo.AddItem(ctx, item)
	require.NoError(t, err)

	mock.ExpectQuery(listSQL).WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "data", "added_at"}).AddRow(id.String(), stored, item.AddedAt))

	// Act: list
	items, dropped, err := repo.ListItems(ctx, userID)

	// Assert: exactly the inserted item
	require.NoError(t, err)
	assert.Zero(t, dropped)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, item.ProductID, items[0].ProductID)
	assert.Equal(t, item.ProductName, items[0].ProductName)
	assert.Equal(t, item.Quantity, items[0].Quantity)
	assert.Equal(t, item.Size, items[0].Size)
	assert.Equal(t, item.Color, items[0].Color)
	assert.True(t, item.UnitPrice.Equal(items[0].UnitPrice))

	mock.ExpectExec(deleteSQL).WithArgs(id, userID).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(listSQL).WithArgs(userID).WillReturnRows(sqlmock.NewRows([]string{"id", "data", "added_at"}))

	// Act: remove, then list again
	require.NoError(t, repo.RemoveItem(ctx, userID, id))
	items, _, err = repo.ListItems(ctx, userID)

	// Assert: empty
	require.NoError(t, err)
	assert.Empty(t, items)
	require.NoError(t, mock.ExpectationsWereMet())
}
