package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/meridianprocure/storefront-backend/pkg/db/models"
	"github.com/meridianprocure/storefront-backend/pkg/enums"
	pkgerrors "github.com/meridianprocure/storefront-backend/pkg/errors"
)

// Repository persists orders and their conversion events.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a new order row.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// FindByStripeSessionID loads the order for a checkout session.
func (r *Repository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).First(&order, "stripe_session_id = ?", sessionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no order for session %q", sessionID))
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// MarkPaid transitions the order to paid and stamps the payment time.
func (r *Repository) MarkPaid(ctx context.Context, sessionID string, paidAt time.Time) error {
	return r.updateStatus(ctx, sessionID, enums.OrderStatusPaid, &paidAt)
}

// UpdateStatus transitions the order's status.
func (r *Repository) UpdateStatus(ctx context.Context, sessionID string, status enums.OrderStatus) error {
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	return r.updateStatus(ctx, sessionID, status, nil)
}

func (r *Repository) updateStatus(ctx context.Context, sessionID string, status enums.OrderStatus, paidAt *time.Time) error {
	updates := map[string]any{"status": status}
	if paidAt != nil {
		updates["paid_at"] = *paidAt
	}
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("stripe_session_id = ?", sessionID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no order for session %q", sessionID))
	}
	return nil
}

// CreateConversion inserts a conversion event row.
func (r *Repository) CreateConversion(ctx context.Context, conversion *models.Conversion) error {
	if conversion == nil {
		return fmt.Errorf("conversion is required")
	}
	return r.db.WithContext(ctx).Create(conversion).Error
}
