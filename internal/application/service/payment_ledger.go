package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"github.com/mwenda/sokopos-api/internal/domain/repository"
	"github.com/mwenda/sokopos-api/pkg/apperror"
)

// PaymentLedger records payments against orders and derives the order's
// payment state from the running tendered total. Status is never set
// directly: it is always recomputed from tendered vs the order total, so
// replaying the payment rows always reproduces the state.
type PaymentLedger struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
}

// NewPaymentLedger creates a new payment ledger
func NewPaymentLedger(paymentRepo repository.PaymentRepository, orderRepo repository.OrderRepository) *PaymentLedger {
	return &PaymentLedger{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
	}
}

// StatusFor derives the payment status from the tendered total. An order is
// paid once tendered covers the total, even when the total is zero.
func StatusFor(total, tendered int64) enum.PaymentStatus {
	switch {
	case tendered >= total:
		return enum.PaymentStatusPaid
	case tendered > 0:
		return enum.PaymentStatusPartiallyPaid
	default:
		return enum.PaymentStatusUnpaid
	}
}

// ChangeFor is the cash handed back to the customer: the overpayment, never
// negative.
func ChangeFor(total, tendered int64) int64 {
	if tendered > total {
		return tendered - total
	}
	return 0
}

// Record appends a payment to the order and rolls the order's tendered,
// change and payment status forward. Overpayment is accepted and surfaces as
// change; payments on void orders and non-positive amounts are rejected.
func (l *PaymentLedger) Record(ctx context.Context, orderID uuid.UUID, method string, value int64) (*entity.Order, error) {
	if value <= 0 {
		return nil, apperror.ErrNegativePayment
	}

	order, err := l.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.IsVoid() {
		return nil, apperror.ErrOrderVoid
	}

	payment := &entity.Payment{
		OrderID: orderID,
		Method:  method,
		Value:   value,
	}
	if err := l.paymentRepo.Create(ctx, payment); err != nil {
		return nil, err
	}

	tendered, err := l.paymentRepo.SumByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	order.Tendered = tendered
	order.Change = ChangeFor(order.Total, tendered)
	order.PaymentStatus = StatusFor(order.Total, tendered)

	if err := l.orderRepo.UpdatePaymentFields(ctx, order.ID, order.Tendered, order.Change, order.PaymentStatus); err != nil {
		return nil, err
	}

	return order, nil
}
