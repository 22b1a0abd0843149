package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/meridianprocure/storefront-backend/pkg/db/models"
	"github.com/meridianprocure/storefront-backend/pkg/enums"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  stripe_session_id TEXT NOT NULL UNIQUE,
  cart_session_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  customer_email TEXT,
  customer_name TEXT,
  company_name TEXT,
  location TEXT NOT NULL,
  total_pallets INTEGER NOT NULL,
  subtotal_cents INTEGER NOT NULL,
  shipping_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  lines TEXT,
  paid_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	conversions := `
CREATE TABLE IF NOT EXISTS conversions (
  id TEXT PRIMARY KEY,
  order_id TEXT,
  stripe_session_id TEXT NOT NULL,
  order_type TEXT NOT NULL,
  location TEXT NOT NULL,
  total_pallets INTEGER NOT NULL,
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  gclid TEXT,
  processed BOOLEAN NOT NULL DEFAULT 0,
  recorded_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(conversions).Error)
	return db
}

func newPendingOrder(t *testing.T, db *gorm.DB, sessionID string) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:              uuid.New(),
		StripeSessionID: sessionID,
		CartSessionID:   uuid.NewString(),
		Status:          enums.OrderStatusPending,
		Location:        "atlanta",
		TotalPallets:    200,
		SubtotalCents:   500000,
		ShippingCents:   30000,
		TotalCents:      530000,
		Currency:        "usd",
		Lines: []models.OrderLine{
			{ProductID: "grade-a", Name: "Grade A Pallet", Category: "grade-a", UnitPriceCents: 2500, Quantity: 200},
		},
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepositoryFindByStripeSessionID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	created := newPendingOrder(t, db, "cs_find_1")

	found, err := repo.FindByStripeSessionID(context.Background(), "cs_find_1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, enums.OrderStatusPending, found.Status)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, "grade-a", found.Lines[0].ProductID)
}

func TestRepositoryFindByStripeSessionID_notFound(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByStripeSessionID(context.Background(), "cs_never_created")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRepositoryMarkPaid(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	newPendingOrder(t, db, "cs_paid_1")
	paidAt := time.Date(2025, 8, 12, 15, 4, 5, 0, time.UTC)

	require.NoError(t, repo.MarkPaid(context.Background(), "cs_paid_1", paidAt))

	found, err := repo.FindByStripeSessionID(context.Background(), "cs_paid_1")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaid, found.Status)
	require.NotNil(t, found.PaidAt)
	assert.Equal(t, paidAt.Unix(), found.PaidAt.Unix())
}

func TestRepositoryUpdateStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	newPendingOrder(t, db, "cs_expire_1")

	require.NoError(t, repo.UpdateStatus(context.Background(), "cs_expire_1", enums.OrderStatusExpired))

	found, err := repo.FindByStripeSessionID(context.Background(), "cs_expire_1")
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusExpired, found.Status)
}

func TestRepositoryUpdateStatus_rejectsInvalidStatus(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	newPendingOrder(t, db, "cs_invalid_1")

	err := repo.UpdateStatus(context.Background(), "cs_invalid_1", enums.OrderStatus("shipped"))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRepositoryUpdateStatus_missingOrder(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	err := repo.UpdateStatus(context.Background(), "cs_missing_1", enums.OrderStatusExpired)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRepositoryCreateConversion(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := newPendingOrder(t, db, "cs_conv_1")

	conversion := &models.Conversion{
		ID:              uuid.New(),
		OrderID:         &order.ID,
		StripeSessionID: "cs_conv_1",
		OrderType:       "online_purchase",
		Location:        "Atlanta, GA",
		TotalPallets:    200,
		AmountCents:     530000,
		Currency:        "usd",
		GCLID:           "Cj0KCQjw-conv",
	}
	require.NoError(t, repo.CreateConversion(context.Background(), conversion))

	var stored models.Conversion
	require.NoError(t, db.First(&stored, "stripe_session_id = ?", "cs_conv_1").Error)
	assert.Equal(t, "online_purchase", stored.OrderType)
	assert.Equal(t, "Cj0KCQjw-conv", stored.GCLID)
	assert.False(t, stored.Processed)
	require.NotNil(t, stored.OrderID)
	assert.Equal(t, order.ID, *stored.OrderID)
}
