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

type orderFixture struct {
	service       *OrderService
	orderRepo     *memOrderRepo
	lineItemRepo  *memLineItemRepo
	paymentRepo   *memPaymentRepo
	deductionRepo *memDeductionRepo
	productRepo   *memProductRepo
	batchRepo     *memBatchRepo
	registerRepo  *memRegisterRepo
	customerRepo  *memCustomerRepo
	registerID    uuid.UUID
	productID     uuid.UUID
	batchID       uuid.UUID
}

// newOrderFixture wires an order service against in-memory repositories with
// one opened register and one product holding a batch of 10.
func newOrderFixture(t *testing.T, allowOversell bool) *orderFixture {
	t.Helper()

	batchRepo := newMemBatchRepo()
	productRepo := newMemProductRepo(batchRepo)
	orderRepo := newMemOrderRepo()
	lineItemRepo := newMemLineItemRepo()
	paymentRepo := newMemPaymentRepo()
	deductionRepo := newMemDeductionRepo()
	registerRepo := newMemRegisterRepo()
	customerRepo := newMemCustomerRepo()

	allocator := NewStockAllocator(batchRepo, productRepo, cache.NoopStockQuantityCache{})
	ledger := NewPaymentLedger(paymentRepo, orderRepo)

	svc := NewOrderService(
		orderRepo, lineItemRepo, paymentRepo, deductionRepo,
		productRepo, registerRepo, customerRepo, memSettingsRepo{},
		allocator, ledger, allowOversell,
	)

	productID := uuid.New()
	productRepo.Create(context.Background(), &entity.Product{ID: productID, Name: "Milk", Quantity: 10})
	batchID := seedBatch(t, batchRepo, productID, "B1", date("2026-09-01"), 10)

	operator := "Jane"
	register := &entity.Register{
		Name:     "Main Register",
		Status:   enum.RegisterStatusOpened,
		Operator: &operator,
	}
	registerRepo.Create(context.Background(), register)

	return &orderFixture{
		service:       svc,
		orderRepo:     orderRepo,
		lineItemRepo:  lineItemRepo,
		paymentRepo:   paymentRepo,
		deductionRepo: deductionRepo,
		productRepo:   productRepo,
		batchRepo:     batchRepo,
		registerRepo:  registerRepo,
		customerRepo:  customerRepo,
		registerID:    register.ID,
		productID:     productID,
		batchID:       batchID,
	}
}

func (f *orderFixture) cartInput(quantity int, unitPrice int64) *CreateOrderInput {
	return &CreateOrderInput{
		Type:       enum.OrderTypeInStore,
		RegisterID: f.registerID,
		Lines: []CreateOrderLine{
			{ProductID: f.productID, Quantity: quantity, UnitPrice: unitPrice},
		},
	}
}

func TestCreateOrderTotalsInvariant(t *testing.T) {
	f := newOrderFixture(t, false)

	input := f.cartInput(3, 2500)
	input.Lines[0].Discount = 100
	input.Lines[0].TaxValue = 400
	input.Discount = 500
	input.Shipping = 750

	result, err := f.service.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	order := result.Order

	// line total = 3*2500 - 100 + 400 = 7800
	if order.SubTotal != 7800 {
		t.Errorf("sub_total = %d, want 7800", order.SubTotal)
	}
	if want := order.SubTotal - order.Discount + order.Shipping; order.Total != want {
		t.Errorf("total = %d, want %d", order.Total, want)
	}
	if order.Total != 8050 {
		t.Errorf("total = %d, want 8050", order.Total)
	}
	if order.TaxValue != 400 {
		t.Errorf("tax_value = %d, want 400", order.TaxValue)
	}
	if order.PaymentStatus != enum.PaymentStatusUnpaid {
		t.Errorf("payment status = %v, want unpaid", order.PaymentStatus)
	}
	if order.Code == "" {
		t.Error("order code is empty")
	}
}

func TestCreateOrderZeroTotalIsPaid(t *testing.T) {
	f := newOrderFixture(t, false)

	// fully discounted cart, nothing tendered: nothing is owed
	input := f.cartInput(1, 2000)
	input.Discount = 2000

	result, err := f.service.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if result.Order.Total != 0 {
		t.Fatalf("total = %d, want 0", result.Order.Total)
	}
	if result.Order.PaymentStatus != enum.PaymentStatusPaid {
		t.Errorf("payment status = %v, want paid", result.Order.PaymentStatus)
	}
}

func TestCreateOrderAllocatesAndPays(t *testing.T) {
	f := newOrderFixture(t, false)

	input := f.cartInput(3, 2000)
	input.Payments = []CreateOrderPayment{{Method: "cash", Value: 10000}}

	result, err := f.service.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	order := result.Order

	if order.PaymentStatus != enum.PaymentStatusPaid {
		t.Errorf("payment status = %v, want paid", order.PaymentStatus)
	}
	if order.Change != 4000 {
		t.Errorf("change = %d, want 4000", order.Change)
	}

	deductions, _ := f.deductionRepo.GetByOrderID(context.Background(), order.ID)
	if len(deductions) != 1 || deductions[0].Quantity != 3 {
		t.Fatalf("deductions = %+v, want one of quantity 3", deductions)
	}
	if got := f.batchRepo.quantity(f.batchID); got != 7 {
		t.Errorf("batch quantity = %d, want 7", got)
	}
	if got := f.productRepo.quantity(f.productID); got != 7 {
		t.Errorf("aggregate quantity = %d, want 7", got)
	}
}

func TestCreateOrderSnapshotsBillingAddress(t *testing.T) {
	f := newOrderFixture(t, false)

	address := "14 Moi Avenue, Nairobi"
	customer := &entity.Customer{Name: "Wanjiku", BillingAddress: &address}
	f.customerRepo.Create(context.Background(), customer)

	input := f.cartInput(1, 2000)
	input.CustomerID = &customer.ID

	result, err := f.service.CreateOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if result.Order.BillingAddress == nil || *result.Order.BillingAddress != address {
		t.Errorf("billing address = %v, want %q", result.Order.BillingAddress, address)
	}
}

func TestCreateOrderRejectsOversoldCart(t *testing.T) {
	f := newOrderFixture(t, false)

	_, err := f.service.CreateOrder(context.Background(), f.cartInput(12, 2000))
	if !errors.Is(err, apperror.ErrInsufficientStock) {
		t.Fatalf("CreateOrder error = %v, want ErrInsufficientStock", err)
	}

	// Everything must be rolled back, including the allocated stock.
	if got := f.batchRepo.quantity(f.batchID); got != 10 {
		t.Errorf("batch quantity after rejection = %d, want 10", got)
	}
	if got := f.productRepo.quantity(f.productID); got != 10 {
		t.Errorf("aggregate quantity after rejection = %d, want 10", got)
	}
	orders, total, _ := f.orderRepo.List(context.Background(), nil)
	if total != 0 {
		t.Errorf("orders persisted = %v, want none", orders)
	}
}

func TestCreateOrderOversellAllowed(t *testing.T) {
	f := newOrderFixture(t, true)

	result, err := f.service.CreateOrder(context.Background(), f.cartInput(12, 2000))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if got := result.Shortfalls[f.productID]; got != 2 {
		t.Errorf("shortfall = %d, want 2", got)
	}
	if got := f.batchRepo.quantity(f.batchID); got != 0 {
		t.Errorf("batch quantity = %d, want 0", got)
	}
}

func TestCreateOrderCompensatesOnPaymentFailure(t *testing.T) {
	f := newOrderFixture(t, false)
	f.paymentRepo.fail = true

	input := f.cartInput(3, 2000)
	input.Payments = []CreateOrderPayment{{Method: "cash", Value: 6000}}

	_, err := f.service.CreateOrder(context.Background(), input)
	if err == nil {
		t.Fatal("CreateOrder succeeded, want failure")
	}

	if got := f.batchRepo.quantity(f.batchID); got != 10 {
		t.Errorf("batch quantity after compensation = %d, want 10", got)
	}
	if got := f.productRepo.quantity(f.productID); got != 10 {
		t.Errorf("aggregate quantity after compensation = %d, want 10", got)
	}
	_, total, _ := f.orderRepo.List(context.Background(), nil)
	if total != 0 {
		t.Errorf("orders persisted = %d, want 0", total)
	}
	deductions, _ := f.deductionRepo.GetByOrderID(context.Background(), uuid.Nil)
	if len(deductions) != 0 {
		t.Errorf("deductions persisted = %d, want 0", len(deductions))
	}
}

func TestCreateOrderRequiresOpenRegister(t *testing.T) {
	f := newOrderFixture(t, false)

	register, _ := f.registerRepo.GetByID(context.Background(), f.registerID)
	register.Status = enum.RegisterStatusClosed
	f.registerRepo.Update(context.Background(), register)

	_, err := f.service.CreateOrder(context.Background(), f.cartInput(1, 2000))
	if !errors.Is(err, apperror.ErrRegisterClosed) {
		t.Errorf("CreateOrder error = %v, want ErrRegisterClosed", err)
	}
}

func TestCreateOrderRejectsNegativePayment(t *testing.T) {
	f := newOrderFixture(t, false)

	input := f.cartInput(1, 2000)
	input.Payments = []CreateOrderPayment{{Method: "cash", Value: -100}}

	_, err := f.service.CreateOrder(context.Background(), input)
	if !errors.Is(err, apperror.ErrNegativePayment) {
		t.Errorf("CreateOrder error = %v, want ErrNegativePayment", err)
	}
}

func TestVoidOrder(t *testing.T) {
	f := newOrderFixture(t, false)

	result, err := f.service.CreateOrder(context.Background(), f.cartInput(3, 2000))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	voided, err := f.service.VoidOrder(context.Background(), result.Order.ID, "customer walked out")
	if err != nil {
		t.Fatalf("VoidOrder: %v", err)
	}
	if !voided.IsVoid() {
		t.Error("order is not void")
	}

	// Voiding does not reverse stock; only a processed refund does.
	if got := f.batchRepo.quantity(f.batchID); got != 7 {
		t.Errorf("batch quantity after void = %d, want 7", got)
	}

	if _, err := f.service.VoidOrder(context.Background(), result.Order.ID, "again"); !errors.Is(err, apperror.ErrOrderVoid) {
		t.Errorf("second void error = %v, want ErrOrderVoid", err)
	}
	if _, err := f.service.AddPayment(context.Background(), result.Order.ID, "cash", 1000); !errors.Is(err, apperror.ErrOrderVoid) {
		t.Errorf("payment on void order error = %v, want ErrOrderVoid", err)
	}
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newOrderFixture(t, false)

	result, err := f.service.CreateOrder(context.Background(), f.cartInput(1, 2000))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	updated, err := f.service.UpdateOrderStatus(context.Background(), result.Order.ID, enum.ProcessStatusCompleted)
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if updated.ProcessStatus != enum.ProcessStatusCompleted {
		t.Errorf("process status = %v, want completed", updated.ProcessStatus)
	}

	if _, err := f.service.UpdateOrderStatus(context.Background(), result.Order.ID, enum.ProcessStatus(99)); err == nil {
		t.Error("invalid status accepted")
	}
}

func TestGetOrderStatsSkipsVoid(t *testing.T) {
	f := newOrderFixture(t, false)

	if _, err := f.service.CreateOrder(context.Background(), &CreateOrderInput{
		Type:       enum.OrderTypeInStore,
		RegisterID: f.registerID,
		Lines:      []CreateOrderLine{{ProductID: f.productID, Quantity: 2, UnitPrice: 2000}},
		Payments:   []CreateOrderPayment{{Method: "cash", Value: 4000}},
	}); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	voided, err := f.service.CreateOrder(context.Background(), f.cartInput(1, 2000))
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if _, err := f.service.VoidOrder(context.Background(), voided.Order.ID, "mistake"); err != nil {
		t.Fatalf("VoidOrder: %v", err)
	}

	stats, err := f.service.GetOrderStats(context.Background())
	if err != nil {
		t.Fatalf("GetOrderStats: %v", err)
	}
	var count int64
	for _, row := range stats {
		count += row.Count
	}
	if count != 1 {
		t.Errorf("non-void orders counted = %d, want 1", count)
	}
}
