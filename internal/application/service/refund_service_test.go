package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/cache"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"github.com/mwenda/sokopos-api/pkg/apperror"
)

type refundFixture struct {
	service     *RefundService
	batchRepo   *memBatchRepo
	productRepo *memProductRepo
	refundRepo  *memRefundRepo
	lineRepo    *memRefundLineRepo
	orderID     uuid.UUID
	productID   uuid.UUID
	batchID     uuid.UUID
}

// newRefundFixture wires a refund service against in-memory repositories
// with one order whose product has 7 units left in its batch.
func newRefundFixture(t *testing.T) *refundFixture {
	t.Helper()

	batchRepo := newMemBatchRepo()
	productRepo := newMemProductRepo(batchRepo)
	orderRepo := newMemOrderRepo()
	lineRepo := newMemRefundLineRepo()
	refundRepo := newMemRefundRepo(lineRepo)

	svc := NewRefundService(refundRepo, lineRepo, orderRepo, productRepo, cache.NoopStockQuantityCache{})

	productID := uuid.New()
	productRepo.Create(context.Background(), &entity.Product{ID: productID, Name: "Milk", Quantity: 7})
	batchID := seedBatch(t, batchRepo, productID, "B1", date("2026-09-01"), 7)

	order := &entity.Order{Total: 7500, PaymentStatus: enum.PaymentStatusPaid}
	orderRepo.Create(context.Background(), order)

	return &refundFixture{
		service:     svc,
		batchRepo:   batchRepo,
		productRepo: productRepo,
		refundRepo:  refundRepo,
		lineRepo:    lineRepo,
		orderID:     order.ID,
		productID:   productID,
		batchID:     batchID,
	}
}

func (f *refundFixture) refundInput(quantity int, unitPrice int64) *CreateRefundInput {
	return &CreateRefundInput{
		OrderID: f.orderID,
		Reason:  "damaged packaging",
		Lines: []CreateRefundLine{
			{ProductID: f.productID, Quantity: quantity, UnitPrice: unitPrice},
		},
	}
}

func TestCreateRefundIsPending(t *testing.T) {
	f := newRefundFixture(t)

	refund, err := f.service.CreateRefund(context.Background(), f.refundInput(2, 2500))
	if err != nil {
		t.Fatalf("CreateRefund: %v", err)
	}
	if refund.Status != enum.RefundStatusPending {
		t.Errorf("status = %v, want pending", refund.Status)
	}
	if refund.TotalRefunded != 5000 {
		t.Errorf("total refunded = %d, want 5000", refund.TotalRefunded)
	}
	if len(refund.LineItems) != 1 || refund.LineItems[0].TotalPrice != 5000 {
		t.Errorf("line items = %+v", refund.LineItems)
	}

	// creating the refund must not touch stock
	if got := f.productRepo.quantity(f.productID); got != 7 {
		t.Errorf("aggregate quantity = %d, want 7", got)
	}
	if got := f.batchRepo.quantity(f.batchID); got != 7 {
		t.Errorf("batch quantity = %d, want 7", got)
	}
}

func TestCreateRefundValidation(t *testing.T) {
	f := newRefundFixture(t)

	if _, err := f.service.CreateRefund(context.Background(), &CreateRefundInput{OrderID: f.orderID}); err == nil {
		t.Error("expected error for refund without line items")
	}
	if _, err := f.service.CreateRefund(context.Background(), f.refundInput(0, 2500)); err == nil {
		t.Error("expected error for zero quantity")
	}
	_, err := f.service.CreateRefund(context.Background(), &CreateRefundInput{
		OrderID: uuid.New(),
		Lines:   []CreateRefundLine{{ProductID: f.productID, Quantity: 1, UnitPrice: 2500}},
	})
	assertNotFound(t, err)
}

func TestProcessRefundCreditsAggregateOnly(t *testing.T) {
	f := newRefundFixture(t)

	refund, err := f.service.CreateRefund(context.Background(), f.refundInput(2, 2500))
	if err != nil {
		t.Fatalf("CreateRefund: %v", err)
	}

	processed, err := f.service.ProcessRefund(context.Background(), refund.ID)
	if err != nil {
		t.Fatalf("ProcessRefund: %v", err)
	}
	if processed.Status != enum.RefundStatusCompleted {
		t.Errorf("status = %v, want completed", processed.Status)
	}
	if processed.ProcessedAt == nil {
		t.Error("processed refund has no processed_at timestamp")
	}

	// returned goods go back to the aggregate, never to a dated batch
	if got := f.productRepo.quantity(f.productID); got != 9 {
		t.Errorf("aggregate quantity = %d, want 9", got)
	}
	if got := f.batchRepo.quantity(f.batchID); got != 7 {
		t.Errorf("batch quantity = %d, want 7", got)
	}
}

func TestProcessRefundNotRepeatable(t *testing.T) {
	f := newRefundFixture(t)

	refund, err := f.service.CreateRefund(context.Background(), f.refundInput(2, 2500))
	if err != nil {
		t.Fatalf("CreateRefund: %v", err)
	}
	if _, err := f.service.ProcessRefund(context.Background(), refund.ID); err != nil {
		t.Fatalf("ProcessRefund: %v", err)
	}

	if _, err := f.service.ProcessRefund(context.Background(), refund.ID); !errors.Is(err, apperror.ErrRefundProcessed) {
		t.Errorf("second process error = %v, want ErrRefundProcessed", err)
	}
	if got := f.productRepo.quantity(f.productID); got != 9 {
		t.Errorf("aggregate quantity after repeated process = %d, want 9", got)
	}
}

func TestProcessRefundUnknown(t *testing.T) {
	f := newRefundFixture(t)

	_, err := f.service.ProcessRefund(context.Background(), uuid.New())
	assertNotFound(t, err)
}

func TestCreateRefundCompensatesOnLineItemFailure(t *testing.T) {
	f := newRefundFixture(t)
	f.lineRepo.fail = true

	if _, err := f.service.CreateRefund(context.Background(), f.refundInput(2, 2500)); err == nil {
		t.Fatal("CreateRefund succeeded, want failure")
	}

	// no orphan pending refund may survive the failed create
	if got := f.refundRepo.count(); got != 0 {
		t.Errorf("refunds persisted = %d, want 0", got)
	}
}

func TestProcessRefundCompensatesOnCreditFailure(t *testing.T) {
	f := newRefundFixture(t)

	otherID := uuid.New()
	f.productRepo.Create(context.Background(), &entity.Product{ID: otherID, Name: "Bread", Quantity: 10})

	refund, err := f.service.CreateRefund(context.Background(), &CreateRefundInput{
		OrderID: f.orderID,
		Reason:  "damaged packaging",
		Lines: []CreateRefundLine{
			{ProductID: f.productID, Quantity: 2, UnitPrice: 2500},
			{ProductID: otherID, Quantity: 2, UnitPrice: 1000},
		},
	})
	if err != nil {
		t.Fatalf("CreateRefund: %v", err)
	}

	// the second line's credit fails; the first line's credit must be
	// taken back and the refund left pending
	f.productRepo.failIncrementAt = 2
	if _, err := f.service.ProcessRefund(context.Background(), refund.ID); err == nil {
		t.Fatal("ProcessRefund succeeded, want failure")
	}
	if got := f.productRepo.quantity(f.productID); got != 7 {
		t.Errorf("aggregate quantity after failed process = %d, want 7", got)
	}
	if got := f.productRepo.quantity(otherID); got != 10 {
		t.Errorf("other aggregate quantity after failed process = %d, want 10", got)
	}
	current, err := f.service.GetRefund(context.Background(), refund.ID)
	if err != nil {
		t.Fatalf("GetRefund: %v", err)
	}
	if current.Status != enum.RefundStatusPending {
		t.Errorf("status after failed process = %v, want pending", current.Status)
	}

	// a retry after the fault clears credits each product exactly once
	f.productRepo.failIncrementAt = 0
	if _, err := f.service.ProcessRefund(context.Background(), refund.ID); err != nil {
		t.Fatalf("ProcessRefund retry: %v", err)
	}
	if got := f.productRepo.quantity(f.productID); got != 9 {
		t.Errorf("aggregate quantity after retry = %d, want 9", got)
	}
	if got := f.productRepo.quantity(otherID); got != 12 {
		t.Errorf("other aggregate quantity after retry = %d, want 12", got)
	}
}

func TestProcessRefundCompensatesOnUpdateFailure(t *testing.T) {
	f := newRefundFixture(t)

	refund, err := f.service.CreateRefund(context.Background(), f.refundInput(2, 2500))
	if err != nil {
		t.Fatalf("CreateRefund: %v", err)
	}

	f.refundRepo.failUpdate = true
	if _, err := f.service.ProcessRefund(context.Background(), refund.ID); err == nil {
		t.Fatal("ProcessRefund succeeded, want failure")
	}
	if got := f.productRepo.quantity(f.productID); got != 7 {
		t.Errorf("aggregate quantity after failed process = %d, want 7", got)
	}

	f.refundRepo.failUpdate = false
	processed, err := f.service.ProcessRefund(context.Background(), refund.ID)
	if err != nil {
		t.Fatalf("ProcessRefund retry: %v", err)
	}
	if processed.Status != enum.RefundStatusCompleted {
		t.Errorf("status after retry = %v, want completed", processed.Status)
	}
	if got := f.productRepo.quantity(f.productID); got != 9 {
		t.Errorf("aggregate quantity after retry = %d, want 9", got)
	}
}
