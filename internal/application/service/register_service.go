package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/mwenda/sokopos-api/internal/domain/entity"
	"github.com/mwenda/sokopos-api/internal/domain/enum"
	"github.com/mwenda/sokopos-api/internal/domain/repository"
	"github.com/mwenda/sokopos-api/pkg/apperror"
	"github.com/mwenda/sokopos-api/pkg/notify"
	"golang.org/x/crypto/bcrypt"
)

// RegisterService drives the cash drawer lifecycle. A register is operated by
// at most one person at a time; every balance movement writes an immutable
// history entry carrying the balance before and after, so the trail replays
// to the current balance.
type RegisterService struct {
	registerRepo repository.RegisterRepository
	historyRepo  repository.RegisterHistoryRepository
	notifier     notify.Notifier
}

// NewRegisterService creates a new register service
func NewRegisterService(
	registerRepo repository.RegisterRepository,
	historyRepo repository.RegisterHistoryRepository,
	notifier notify.Notifier,
) *RegisterService {
	return &RegisterService{
		registerRepo: registerRepo,
		historyRepo:  historyRepo,
		notifier:     notifier,
	}
}

// Open opens the register with an opening float and claims it for the
// operator. Fails when the register is already open or the operator PIN does
// not match.
func (s *RegisterService) Open(ctx context.Context, registerID uuid.UUID, operator, pin string, openingFloat int64) (*entity.Register, error) {
	if openingFloat < 0 {
		return nil, apperror.NewBadRequestError("Opening float cannot be negative")
	}

	register, err := s.registerRepo.GetByID(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, apperror.NewNotFoundError("Register")
	}
	if register.IsOpened() {
		return nil, apperror.ErrRegisterAlreadyOpen
	}

	if err := bcrypt.CompareHashAndPassword([]byte(register.OperatorPINHash), []byte(pin)); err != nil {
		return nil, apperror.ErrInvalidOperatorPIN
	}

	before := register.Balance
	claimed, err := s.registerRepo.Claim(ctx, register.ID, operator, openingFloat)
	if err != nil {
		return nil, err
	}
	if !claimed {
		// another operator opened it between the read and the claim
		return nil, apperror.ErrRegisterAlreadyOpen
	}
	register.Status = enum.RegisterStatusOpened
	register.Balance = openingFloat
	register.Operator = &operator

	entry := &entity.RegisterHistoryEntry{
		RegisterID:      register.ID,
		Action:          enum.RegisterActionOpening,
		TransactionType: enum.TransactionTypePositive,
		Value:           openingFloat,
		BalanceBefore:   before,
		BalanceAfter:    openingFloat,
	}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.emit(ctx, notify.EventRegisterOpened, register.ID, operator, openingFloat)

	return register, nil
}

// CashIn adds cash to an opened drawer.
func (s *RegisterService) CashIn(ctx context.Context, registerID uuid.UUID, value int64, description *string) (*entity.Register, error) {
	return s.move(ctx, registerID, enum.RegisterActionCashIn, value, description)
}

// CashOut removes cash from an opened drawer. Fails when the drawer does not
// hold enough.
func (s *RegisterService) CashOut(ctx context.Context, registerID uuid.UUID, value int64, description *string) (*entity.Register, error) {
	return s.move(ctx, registerID, enum.RegisterActionCashOut, value, description)
}

func (s *RegisterService) move(ctx context.Context, registerID uuid.UUID, action enum.RegisterAction, value int64, description *string) (*entity.Register, error) {
	if value <= 0 {
		return nil, apperror.NewBadRequestError("Value must be positive")
	}

	register, err := s.registerRepo.GetByID(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, apperror.NewNotFoundError("Register")
	}
	if !register.IsOpened() {
		return nil, apperror.ErrRegisterClosed
	}

	before := register.Balance
	txType := enum.TransactionTypePositive
	if action == enum.RegisterActionCashOut {
		if register.Balance < value {
			return nil, apperror.ErrInsufficientBalance
		}
		register.Balance -= value
		txType = enum.TransactionTypeNegative
	} else {
		register.Balance += value
	}

	if err := s.registerRepo.Update(ctx, register); err != nil {
		return nil, err
	}

	entry := &entity.RegisterHistoryEntry{
		RegisterID:      register.ID,
		Action:          action,
		TransactionType: txType,
		Description:     description,
		Value:           value,
		BalanceBefore:   before,
		BalanceAfter:    register.Balance,
	}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return register, nil
}

// Close closes the register, empties the drawer and releases the operator.
// The closing entry records the counted balance before the reset.
func (s *RegisterService) Close(ctx context.Context, registerID uuid.UUID) (*entity.Register, error) {
	register, err := s.registerRepo.GetByID(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, apperror.NewNotFoundError("Register")
	}
	if !register.IsOpened() {
		return nil, apperror.ErrRegisterClosed
	}

	closing := register.Balance
	closedBy := register.Operator
	register.Status = enum.RegisterStatusClosed
	register.Balance = 0
	register.Operator = nil

	if err := s.registerRepo.Update(ctx, register); err != nil {
		return nil, err
	}

	entry := &entity.RegisterHistoryEntry{
		RegisterID:      register.ID,
		Action:          enum.RegisterActionClosing,
		TransactionType: enum.TransactionTypeNegative,
		Value:           closing,
		BalanceBefore:   closing,
		BalanceAfter:    0,
	}
	if err := s.historyRepo.Create(ctx, entry); err != nil {
		return nil, err
	}

	operator := ""
	if closedBy != nil {
		operator = *closedBy
	}
	s.emit(ctx, notify.EventRegisterClosed, register.ID, operator, closing)

	return register, nil
}

// GetRegister returns the register with its full history.
func (s *RegisterService) GetRegister(ctx context.Context, registerID uuid.UUID) (*entity.Register, error) {
	register, err := s.registerRepo.GetWithHistory(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, apperror.NewNotFoundError("Register")
	}
	return register, nil
}

// ListRegisters returns all registers.
func (s *RegisterService) ListRegisters(ctx context.Context) ([]entity.Register, error) {
	return s.registerRepo.List(ctx)
}

// GetHistory returns the register's audit trail.
func (s *RegisterService) GetHistory(ctx context.Context, registerID uuid.UUID) ([]entity.RegisterHistoryEntry, error) {
	register, err := s.registerRepo.GetByID(ctx, registerID)
	if err != nil {
		return nil, err
	}
	if register == nil {
		return nil, apperror.NewNotFoundError("Register")
	}
	return s.historyRepo.ListByRegisterID(ctx, registerID)
}

// emit delivers a lifecycle event. Delivery is best-effort: a failed send is
// logged and never fails the register operation.
func (s *RegisterService) emit(ctx context.Context, eventType string, registerID uuid.UUID, operator string, value int64) {
	event := notify.Event{
		ID:         uuid.New(),
		Type:       eventType,
		RegisterID: registerID,
		Operator:   operator,
		Value:      value,
		OccurredAt: time.Now(),
	}
	if err := s.notifier.Send(ctx, event); err != nil {
		log.Printf("Warning: failed to send %s event for register %s: %v", eventType, registerID, err)
	}
}
