package service

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"github.com/mwenda/sokopos-api/internal/domain/repository"
	"github.com/mwenda/sokopos-api/pkg/apperror"
	"github.com/mwenda/sokopos-api/pkg/pagination"
	"github.com/mwenda/sokopos-api/pkg/utils"
)

// OrderService owns checkout. CreateOrder is a saga: every persisted step has
// a compensation, and any failure rolls back all earlier steps so the caller
// observes all-or-nothing.
type OrderService struct {
	orderRepo     repository.OrderRepository
	lineItemRepo  repository.OrderLineItemRepository
	paymentRepo   repository.PaymentRepository
	deductionRepo repository.BatchDeductionRepository
	productRepo   repository.ProductRepository
	registerRepo  repository.RegisterRepository
	customerRepo  repository.CustomerRepository
	settingsRepo  repository.SettingsRepository
	allocator     *StockAllocator
	ledger        *PaymentLedger
	allowOversell bool
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	lineItemRepo repository.OrderLineItemRepository,
	paymentRepo repository.PaymentRepository,
	deductionRepo repository.BatchDeductionRepository,
	productRepo repository.ProductRepository,
	registerRepo repository.RegisterRepository,
	customerRepo repository.CustomerRepository,
	settingsRepo repository.SettingsRepository,
	allocator *StockAllocator,
	ledger *PaymentLedger,
	allowOversell bool,
) *OrderService {
	return &OrderService{
		orderRepo:     orderRepo,
		lineItemRepo:  lineItemRepo,
		paymentRepo:   paymentRepo,
		deductionRepo: deductionRepo,
		productRepo:   productRepo,
		registerRepo:  registerRepo,
		customerRepo:  customerRepo,
		settingsRepo:  settingsRepo,
		allocator:     allocator,
		ledger:        ledger,
		allowOversell: allowOversell,
	}
}

// CreateOrderInput is the checkout payload. Monetary values are in cents.
type CreateOrderInput struct {
	Type       enum.OrderType
	RegisterID uuid.UUID
	CustomerID *uuid.UUID
	Discount   int64
	Shipping   int64
	Lines      []CreateOrderLine
	Payments   []CreateOrderPayment
}

// CreateOrderLine is one cart line.
type CreateOrderLine struct {
	ProductID uuid.UUID
	UnitID    *uuid.UUID
	Quantity  int
	UnitPrice int64
	Discount  int64
	TaxValue  int64
}

// CreateOrderPayment is money tendered at checkout.
type CreateOrderPayment struct {
	Method string
	Value  int64
}

// CreateOrderResult carries the created order plus any unmet quantities when
// overselling is allowed.
type CreateOrderResult struct {
	Order      *entity.Order     `json:"order"`
	Shortfalls map[uuid.UUID]int `json:"shortfalls,omitempty"`
}

// CreateOrder runs the checkout saga:
//
//	order -> line items -> stock allocation -> deductions -> payments
//
// Totals are exact cents arithmetic: line total = unit price x qty - discount
// + tax, order total = subtotal - discount + shipping. Stock comes out of
// batches in FEFO order; a cart the batches cannot cover is rejected unless
// overselling is enabled, in which case the shortfall is reported. Any step
// that fails undoes everything persisted before it.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*CreateOrderResult, error) {
	if len(input.Lines) == 0 {
		return nil, apperror.NewBadRequestError("Order must have at least one line item")
	}
	for _, p := range input.Payments {
		if p.Value <= 0 {
			return nil, apperror.ErrNegativePayment
		}
	}

	register, err := s.registerRepo.GetByID(ctx, input.RegisterID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, apperror.NewNotFoundError("Register")
	}
	if input.Type == enum.OrderTypeInStore && !register.IsOpened() {
		return nil, apperror.ErrRegisterClosed
	}

	var billingAddress *string
	if input.CustomerID != nil {
		customer, err := s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
		billingAddress = customer.BillingAddress
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, err
	}

	var subTotal, taxTotal int64
	lineItems := make([]entity.OrderLineItem, len(input.Lines))
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, apperror.NewBadRequestError("Line quantity must be positive")
		}
		product, err := s.productRepo.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return nil, apperror.NewNotFoundError("Product")
		}

		lineTotal := line.UnitPrice*int64(line.Quantity) - line.Discount + line.TaxValue
		lineItems[i] = entity.OrderLineItem{
			ID:         uuid.New(),
			ProductID:  line.ProductID,
			UnitID:     line.UnitID,
			Quantity:   line.Quantity,
			UnitPrice:  line.UnitPrice,
			Discount:   line.Discount,
			TaxValue:   line.TaxValue,
			TotalPrice: lineTotal,
		}
		subTotal += lineTotal
		taxTotal += line.TaxValue
	}

	total := subTotal - input.Discount + input.Shipping
	order := &entity.Order{
		Code:           utils.GenerateOrderCode(settings.OrderCodePrefix),
		Type:           input.Type,
		CustomerID:     input.CustomerID,
		RegisterID:     input.RegisterID,
		BillingAddress: billingAddress,
		SubTotal:       subTotal,
		Discount:       input.Discount,
		Shipping:       input.Shipping,
		TaxValue:       taxTotal,
		Total:          total,
		PaymentStatus:  StatusFor(total, 0),
		ProcessStatus:  enum.ProcessStatusPending,
	}
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	for i := range lineItems {
		lineItems[i].OrderID = order.ID
	}
	if err := s.lineItemRepo.CreateBatch(ctx, lineItems); err != nil {
		s.compensate(ctx, order.ID, nil, false, false)
		return nil, err
	}

	var allDeductions []entity.BatchDeduction
	shortfalls := make(map[uuid.UUID]int)
	for _, item := range lineItems {
		deductions, shortfall, err := s.allocator.Allocate(ctx, order.ID, item.ID, item.ProductID, item.UnitID, item.Quantity)
		allDeductions = append(allDeductions, deductions...)
		if err != nil {
			s.compensate(ctx, order.ID, allDeductions, false, false)
			return nil, err
		}
		if shortfall > 0 {
			if !s.allowOversell {
				s.compensate(ctx, order.ID, allDeductions, false, false)
				return nil, apperror.ErrInsufficientStock
			}
			log.Printf("Warning: order %s oversold product %s by %d", order.Code, item.ProductID, shortfall)
			shortfalls[item.ProductID] += shortfall
		}
	}

	if err := s.deductionRepo.CreateBatch(ctx, allDeductions); err != nil {
		s.compensate(ctx, order.ID, allDeductions, false, false)
		return nil, err
	}

	if len(input.Payments) > 0 {
		payments := make([]entity.Payment, len(input.Payments))
		var tendered int64
		for i, p := range input.Payments {
			payments[i] = entity.Payment{
				OrderID: order.ID,
				Method:  p.Method,
				Value:   p.Value,
			}
			tendered += p.Value
		}
		if err := s.paymentRepo.CreateBatch(ctx, payments); err != nil {
			s.compensate(ctx, order.ID, allDeductions, true, false)
			return nil, err
		}

		order.Tendered = tendered
		order.Change = ChangeFor(order.Total, tendered)
		order.PaymentStatus = StatusFor(order.Total, tendered)
		if err := s.orderRepo.UpdatePaymentFields(ctx, order.ID, order.Tendered, order.Change, order.PaymentStatus); err != nil {
			s.compensate(ctx, order.ID, allDeductions, true, true)
			return nil, err
		}
	}

	result := &CreateOrderResult{Order: order}
	if len(shortfalls) > 0 {
		result.Shortfalls = shortfalls
	}
	return result, nil
}

// compensate unwinds a partially committed checkout in reverse order. Each
// step is attempted even if an earlier one fails; failures are logged because
// there is nothing better to do with them at this point.
func (s *OrderService) compensate(ctx context.Context, orderID uuid.UUID, deductions []entity.BatchDeduction, deductionsPersisted, paymentsPersisted bool) {
	if paymentsPersisted {
		if err := s.paymentRepo.DeleteByOrderID(ctx, orderID); err != nil {
			log.Printf("Warning: compensation failed to delete payments for order %s: %v", orderID, err)
		}
	}
	if deductionsPersisted {
		if err := s.deductionRepo.DeleteByOrderID(ctx, orderID); err != nil {
			log.Printf("Warning: compensation failed to delete deductions for order %s: %v", orderID, err)
		}
	}
	if len(deductions) > 0 {
		if err := s.allocator.Restore(ctx, deductions); err != nil {
			log.Printf("Warning: compensation failed to restore stock for order %s: %v", orderID, err)
		}
	}
	if err := s.lineItemRepo.DeleteByOrderID(ctx, orderID); err != nil {
		log.Printf("Warning: compensation failed to delete line items for order %s: %v", orderID, err)
	}
	if err := s.orderRepo.Delete(ctx, orderID); err != nil {
		log.Printf("Warning: compensation failed to delete order %s: %v", orderID, err)
	}
}

// AddPayment appends a payment to an existing order.
func (s *OrderService) AddPayment(ctx context.Context, orderID uuid.UUID, method string, value int64) (*entity.Order, error) {
	return s.ledger.Record(ctx, orderID, method, value)
}

// GetOrder returns the order with line items, deductions and payments.
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	order, err := s.orderRepo.GetWithDetails(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// GetOrderByCode returns the order identified by its human-readable code.
func (s *OrderService) GetOrderByCode(ctx context.Context, code string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// ListOrders returns a filtered, paginated order listing.
func (s *OrderService) ListOrders(ctx context.Context, params *repository.OrderFilterParams) (*pagination.PaginatedResult[entity.Order], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()
	orders, total, err := s.orderRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(orders, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total)), nil
}

// UpdateOrderStatus moves the fulfilment status. Any valid status is
// accepted; there is no transition gating.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status enum.ProcessStatus) (*entity.Order, error) {
	if !status.Valid() {
		return nil, apperror.NewBadRequestError("Invalid process status")
	}
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.IsVoid() {
		return nil, apperror.ErrOrderVoid
	}
	if err := s.orderRepo.UpdateProcessStatus(ctx, id, status); err != nil {
		return nil, err
	}
	order.ProcessStatus = status
	return order, nil
}

// VoidOrder marks the order void. Stock is not reversed; a refund does that
// when the goods actually come back.
func (s *OrderService) VoidOrder(ctx context.Context, id uuid.UUID, reason string) (*entity.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if order.IsVoid() {
		return nil, apperror.ErrOrderVoid
	}

	order.PaymentStatus = enum.PaymentStatusVoid
	order.VoidReason = &reason
	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrderStats returns the count and revenue breakdown of non-void orders
// grouped by payment status.
func (s *OrderService) GetOrderStats(ctx context.Context) ([]repository.OrderStatRow, error) {
	return s.orderRepo.Stats(ctx)
}
