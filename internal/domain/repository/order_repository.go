package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"github.com/mwenda/sokopos-api/pkg/pagination"
)

// OrderRepository defines the interface for order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByCode(ctx context.Context, code string) (*entity.Order, error)
	GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	// Delete removes the order row permanently. Only the createOrder saga
	// uses it, to compensate a partially committed checkout.
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	UpdateProcessStatus(ctx context.Context, id uuid.UUID, status enum.ProcessStatus) error
	// UpdatePaymentFields rewrites the tendered/change/payment_status columns
	// after a payment is appended.
	UpdatePaymentFields(ctx context.Context, id uuid.UUID, tendered, change int64, status enum.PaymentStatus) error
	Stats(ctx context.Context) ([]OrderStatRow, error)
}

// OrderStatRow is one row of the payment-status breakdown over non-void orders.
type OrderStatRow struct {
	PaymentStatus enum.PaymentStatus `json:"payment_status"`
	Count         int64              `json:"count"`
	TotalCents    int64              `json:"-"`
}

// MarshalJSON custom marshaler to convert cents to decimal for API responses
func (r OrderStatRow) MarshalJSON() ([]byte, error) {
	type Alias OrderStatRow
	return json.Marshal(&struct {
		Alias
		Total float64 `json:"total"`
	}{
		Alias: Alias(r),
		Total: float64(r.TotalCents) / 100,
	})
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination    *pagination.PaginationParams
	Search        string
	PaymentStatus *enum.PaymentStatus
	Type          *enum.OrderType
	CustomerID    *uuid.UUID
	RegisterID    *uuid.UUID
	StartDate     *time.Time
	EndDate       *time.Time
	SortBy        string
	SortOrder     string
}

// OrderLineItemRepository defines the interface for order line item data operations
type OrderLineItemRepository interface {
	CreateBatch(ctx context.Context, items []entity.OrderLineItem) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.OrderLineItem, error)
	// DeleteByOrderID removes all line items of an order permanently
	// (saga compensation only).
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error
}

// PaymentRepository defines the interface for payment data operations.
// Payments are append-only; there is no update.
type PaymentRepository interface {
	Create(ctx context.Context, payment *entity.Payment) error
	CreateBatch(ctx context.Context, payments []entity.Payment) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) ([]entity.Payment, error)
	SumByOrderID(ctx context.Context, orderID uuid.UUID) (int64, error)
	// DeleteByOrderID removes all payments of an order permanently
	// (saga compensation only).
	DeleteByOrderID(ctx context.Context, orderID uuid.UUID) error
}
