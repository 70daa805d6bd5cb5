package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"github.com/mwenda/sokopos-api/internal/domain/repository"
	"github.com/mwenda/sokopos-api/pkg/apperror"
	"github.com/mwenda/sokopos-api/pkg/notify"
)

var errForced = errors.New("forced failure")

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected a not found error, got nil")
	}
	if got := apperror.GetAppError(err).Code; got != http.StatusNotFound {
		t.Errorf("error code = %d, want 404 (%v)", got, err)
	}
}

// In-memory repository fakes. Each fake guards its state with a mutex so the
// concurrency tests exercise the same conditional-decrement contract the
// Postgres implementations provide.

type memBatchRepo struct {
	mu      sync.Mutex
	batches map[uuid.UUID]*entity.StockBatch
	seq     int
}

func newMemBatchRepo() *memBatchRepo {
	return &memBatchRepo{batches: make(map[uuid.UUID]*entity.StockBatch)}
}

func (r *memBatchRepo) Create(_ context.Context, batch *entity.StockBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if batch.ID == uuid.Nil {
		batch.ID = uuid.New()
	}
	r.seq++
	batch.CreatedAt = time.Unix(int64(r.seq), 0)
	clone := *batch
	r.batches[batch.ID] = &clone
	return nil
}

func (r *memBatchRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.StockBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch, ok := r.batches[id]
	if !ok {
		return nil, nil
	}
	clone := *batch
	return &clone, nil
}

func (r *memBatchRepo) ListForAllocation(_ context.Context, productID uuid.UUID, unitID *uuid.UUID) ([]entity.StockBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.StockBatch
	for _, batch := range r.batches {
		if batch.ProductID != productID || batch.Quantity <= 0 {
			continue
		}
		if unitID != nil && (batch.UnitID == nil || *batch.UnitID != *unitID) {
			continue
		}
		out = append(out, *batch)
	}
	sortFEFO(out)
	return out, nil
}

func (r *memBatchRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]entity.StockBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.StockBatch
	for _, batch := range r.batches {
		if batch.ProductID == productID {
			out = append(out, *batch)
		}
	}
	sortFEFO(out)
	return out, nil
}

func (r *memBatchRepo) DecrementQuantity(_ context.Context, id uuid.UUID, amount int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch, ok := r.batches[id]
	if !ok || batch.Quantity < amount {
		return false, nil
	}
	batch.Quantity -= amount
	return true, nil
}

func (r *memBatchRepo) IncrementQuantity(_ context.Context, id uuid.UUID, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if batch, ok := r.batches[id]; ok {
		batch.Quantity += amount
	}
	return nil
}

func (r *memBatchRepo) quantity(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if batch, ok := r.batches[id]; ok {
		return batch.Quantity
	}
	return -1
}

func (r *memBatchRepo) sumForProduct(productID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := 0
	for _, batch := range r.batches {
		if batch.ProductID == productID {
			total += batch.Quantity
		}
	}
	return total
}

// sortFEFO orders batches earliest expiry first, never-expiring last,
// insertion order as tiebreaker.
func sortFEFO(batches []entity.StockBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i].ExpiryDate, batches[j].ExpiryDate
		switch {
		case a == nil && b == nil:
			return batches[i].CreatedAt.Before(batches[j].CreatedAt)
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return batches[i].CreatedAt.Before(batches[j].CreatedAt)
		default:
			return a.Before(*b)
		}
	})
}

type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*entity.Product
	batches  *memBatchRepo

	// failIncrementAt makes the Nth IncrementQuantity call fail (1-based);
	// zero disables the fault.
	incrementCalls  int
	failIncrementAt int
}

func newMemProductRepo(batches *memBatchRepo) *memProductRepo {
	return &memProductRepo{products: make(map[uuid.UUID]*entity.Product), batches: batches}
}

func (r *memProductRepo) Create(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *memProductRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	clone := *product
	return &clone, nil
}

func (r *memProductRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Product
	for _, id := range ids {
		if product, ok := r.products[id]; ok {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *memProductRepo) Update(_ context.Context, product *entity.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *memProductRepo) ResyncQuantity(_ context.Context, id uuid.UUID) (int, error) {
	quantity := r.batches.sumForProduct(id)
	r.mu.Lock()
	defer r.mu.Unlock()
	if product, ok := r.products[id]; ok {
		product.Quantity = quantity
	}
	return quantity, nil
}

func (r *memProductRepo) IncrementQuantity(_ context.Context, id uuid.UUID, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.incrementCalls++
	if r.failIncrementAt > 0 && r.incrementCalls == r.failIncrementAt {
		return errForced
	}
	if product, ok := r.products[id]; ok {
		product.Quantity += amount
	}
	return nil
}

func (r *memProductRepo) DecrementQuantity(_ context.Context, id uuid.UUID, amount int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product, ok := r.products[id]; ok {
		product.Quantity -= amount
	}
	return nil
}

func (r *memProductRepo) GetLowStock(_ context.Context) ([]entity.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Product
	for _, product := range r.products {
		if product.Quantity <= product.QuantityAlert {
			out = append(out, *product)
		}
	}
	return out, nil
}

func (r *memProductRepo) quantity(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product, ok := r.products[id]; ok {
		return product.Quantity
	}
	return -1
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*entity.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[uuid.UUID]*entity.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	clone := *order
	return &clone, nil
}

func (r *memOrderRepo) GetByCode(_ context.Context, code string) (*entity.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, order := range r.orders {
		if order.Code == code {
			clone := *order
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memOrderRepo) GetWithDetails(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.GetByID(ctx, id)
}

func (r *memOrderRepo) Update(_ context.Context, order *entity.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *order
	r.orders[order.ID] = &clone
	return nil
}

func (r *memOrderRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.orders, id)
	return nil
}

func (r *memOrderRepo) List(_ context.Context, _ *repository.OrderFilterParams) ([]entity.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Order
	for _, order := range r.orders {
		out = append(out, *order)
	}
	return out, int64(len(out)), nil
}

func (r *memOrderRepo) UpdateProcessStatus(_ context.Context, id uuid.UUID, status enum.ProcessStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[id]; ok {
		order.ProcessStatus = status
	}
	return nil
}

func (r *memOrderRepo) UpdatePaymentFields(_ context.Context, id uuid.UUID, tendered, change int64, status enum.PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if order, ok := r.orders[id]; ok {
		order.Tendered = tendered
		order.Change = change
		order.PaymentStatus = status
	}
	return nil
}

func (r *memOrderRepo) Stats(_ context.Context) ([]repository.OrderStatRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[enum.PaymentStatus]*repository.OrderStatRow)
	for _, order := range r.orders {
		if order.IsVoid() {
			continue
		}
		row, ok := counts[order.PaymentStatus]
		if !ok {
			row = &repository.OrderStatRow{PaymentStatus: order.PaymentStatus}
			counts[order.PaymentStatus] = row
		}
		row.Count++
		row.TotalCents += order.Total
	}
	var out []repository.OrderStatRow
	for _, row := range counts {
		out = append(out, *row)
	}
	return out, nil
}

func (r *memOrderRepo) exists(id uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.orders[id]
	return ok
}

type memLineItemRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID][]entity.OrderLineItem
	fail  bool
}

func newMemLineItemRepo() *memLineItemRepo {
	return &memLineItemRepo{items: make(map[uuid.UUID][]entity.OrderLineItem)}
}

func (r *memLineItemRepo) CreateBatch(_ context.Context, items []entity.OrderLineItem) error {
	if r.fail {
		return errForced
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.items[item.OrderID] = append(r.items[item.OrderID], item)
	}
	return nil
}

func (r *memLineItemRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]entity.OrderLineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[orderID], nil
}

func (r *memLineItemRepo) DeleteByOrderID(_ context.Context, orderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, orderID)
	return nil
}

type memPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID][]entity.Payment
	fail     bool
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: make(map[uuid.UUID][]entity.Payment)}
}

func (r *memPaymentRepo) Create(_ context.Context, payment *entity.Payment) error {
	if r.fail {
		return errForced
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	r.payments[payment.OrderID] = append(r.payments[payment.OrderID], *payment)
	return nil
}

func (r *memPaymentRepo) CreateBatch(_ context.Context, payments []entity.Payment) error {
	if r.fail {
		return errForced
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, payment := range payments {
		r.payments[payment.OrderID] = append(r.payments[payment.OrderID], payment)
	}
	return nil
}

func (r *memPaymentRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]entity.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payments[orderID], nil
}

func (r *memPaymentRepo) SumByOrderID(_ context.Context, orderID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, payment := range r.payments[orderID] {
		total += payment.Value
	}
	return total, nil
}

func (r *memPaymentRepo) DeleteByOrderID(_ context.Context, orderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.payments, orderID)
	return nil
}

type memDeductionRepo struct {
	mu         sync.Mutex
	deductions map[uuid.UUID][]entity.BatchDeduction
	fail       bool
}

func newMemDeductionRepo() *memDeductionRepo {
	return &memDeductionRepo{deductions: make(map[uuid.UUID][]entity.BatchDeduction)}
}

func (r *memDeductionRepo) CreateBatch(_ context.Context, deductions []entity.BatchDeduction) error {
	if r.fail {
		return errForced
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range deductions {
		r.deductions[d.OrderID] = append(r.deductions[d.OrderID], d)
	}
	return nil
}

func (r *memDeductionRepo) GetByOrderID(_ context.Context, orderID uuid.UUID) ([]entity.BatchDeduction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.deductions[orderID], nil
}

func (r *memDeductionRepo) DeleteByOrderID(_ context.Context, orderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.deductions, orderID)
	return nil
}

type memRegisterRepo struct {
	mu        sync.Mutex
	registers map[uuid.UUID]*entity.Register
}

func newMemRegisterRepo() *memRegisterRepo {
	return &memRegisterRepo{registers: make(map[uuid.UUID]*entity.Register)}
}

func (r *memRegisterRepo) Create(_ context.Context, register *entity.Register) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if register.ID == uuid.Nil {
		register.ID = uuid.New()
	}
	clone := *register
	r.registers[register.ID] = &clone
	return nil
}

func (r *memRegisterRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Register, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	register, ok := r.registers[id]
	if !ok {
		return nil, nil
	}
	clone := *register
	return &clone, nil
}

func (r *memRegisterRepo) GetWithHistory(ctx context.Context, id uuid.UUID) (*entity.Register, error) {
	return r.GetByID(ctx, id)
}

func (r *memRegisterRepo) Claim(_ context.Context, id uuid.UUID, operator string, balance int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	register, ok := r.registers[id]
	if !ok || register.Status != enum.RegisterStatusClosed {
		return false, nil
	}
	register.Status = enum.RegisterStatusOpened
	register.Operator = &operator
	register.Balance = balance
	return true, nil
}

func (r *memRegisterRepo) Update(_ context.Context, register *entity.Register) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *register
	r.registers[register.ID] = &clone
	return nil
}

func (r *memRegisterRepo) List(_ context.Context) ([]entity.Register, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Register
	for _, register := range r.registers {
		out = append(out, *register)
	}
	return out, nil
}

type memHistoryRepo struct {
	mu      sync.Mutex
	entries []entity.RegisterHistoryEntry
}

func (r *memHistoryRepo) Create(_ context.Context, entry *entity.RegisterHistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *memHistoryRepo) ListByRegisterID(_ context.Context, registerID uuid.UUID) ([]entity.RegisterHistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.RegisterHistoryEntry
	for _, entry := range r.entries {
		if entry.RegisterID == registerID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type memRefundRepo struct {
	mu         sync.Mutex
	refunds    map[uuid.UUID]*entity.Refund
	lineItems  *memRefundLineRepo
	failUpdate bool
}

func newMemRefundRepo(lineItems *memRefundLineRepo) *memRefundRepo {
	return &memRefundRepo{refunds: make(map[uuid.UUID]*entity.Refund), lineItems: lineItems}
}

func (r *memRefundRepo) Create(_ context.Context, refund *entity.Refund) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if refund.ID == uuid.Nil {
		refund.ID = uuid.New()
	}
	clone := *refund
	clone.LineItems = nil
	r.refunds[refund.ID] = &clone
	return nil
}

func (r *memRefundRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Refund, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	refund, ok := r.refunds[id]
	if !ok {
		return nil, nil
	}
	clone := *refund
	return &clone, nil
}

func (r *memRefundRepo) GetWithLineItems(ctx context.Context, id uuid.UUID) (*entity.Refund, error) {
	refund, err := r.GetByID(ctx, id)
	if err != nil || refund == nil {
		return refund, err
	}
	items, _ := r.lineItems.GetByRefundID(ctx, id)
	refund.LineItems = items
	return refund, nil
}

func (r *memRefundRepo) Update(_ context.Context, refund *entity.Refund) error {
	if r.failUpdate {
		return errForced
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *refund
	clone.LineItems = nil
	r.refunds[refund.ID] = &clone
	return nil
}

func (r *memRefundRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.refunds, id)
	return nil
}

func (r *memRefundRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.refunds)
}

func (r *memRefundRepo) List(_ context.Context, params *repository.RefundFilterParams) ([]entity.Refund, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Refund
	for _, refund := range r.refunds {
		if params.OrderID != nil && refund.OrderID != *params.OrderID {
			continue
		}
		out = append(out, *refund)
	}
	return out, int64(len(out)), nil
}

type memRefundLineRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID][]entity.RefundLineItem
	fail  bool
}

func newMemRefundLineRepo() *memRefundLineRepo {
	return &memRefundLineRepo{items: make(map[uuid.UUID][]entity.RefundLineItem)}
}

func (r *memRefundLineRepo) CreateBatch(_ context.Context, items []entity.RefundLineItem) error {
	if r.fail {
		return errForced
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.items[item.RefundID] = append(r.items[item.RefundID], item)
	}
	return nil
}

func (r *memRefundLineRepo) GetByRefundID(_ context.Context, refundID uuid.UUID) ([]entity.RefundLineItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.items[refundID], nil
}

type memCustomerRepo struct {
	customers map[uuid.UUID]*entity.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[uuid.UUID]*entity.Customer)}
}

func (r *memCustomerRepo) Create(_ context.Context, customer *entity.Customer) error {
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	clone := *customer
	r.customers[customer.ID] = &clone
	return nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	clone := *customer
	return &clone, nil
}

type memSettingsRepo struct{}

func (memSettingsRepo) Get(_ context.Context) (*entity.StoreSettings, error) {
	return &entity.StoreSettings{
		ID:              uuid.New(),
		StoreName:       "Test Store",
		OrderCodePrefix: "ORD-",
		Currency:        "KES",
	}, nil
}

// memStockCache is an in-memory stand-in for the Redis quantity cache.
type memStockCache struct {
	mu     sync.Mutex
	values map[uuid.UUID]int
	fail   bool
}

func newMemStockCache() *memStockCache {
	return &memStockCache{values: make(map[uuid.UUID]int)}
}

func (c *memStockCache) Get(_ context.Context, productID uuid.UUID) (int, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return 0, false, errForced
	}
	quantity, ok := c.values[productID]
	return quantity, ok, nil
}

func (c *memStockCache) Set(_ context.Context, productID uuid.UUID, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errForced
	}
	c.values[productID] = quantity
	return nil
}

func (c *memStockCache) Invalidate(_ context.Context, productID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errForced
	}
	delete(c.values, productID)
	return nil
}

// recordingNotifier captures emitted events; optionally fails every send.
type recordingNotifier struct {
	mu     sync.Mutex
	events []string
	fail   bool
}

func (n *recordingNotifier) Send(_ context.Context, event notify.Event) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errForced
	}
	n.events = append(n.events, event.Type)
	return nil
}
