package expense

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/core/events"
	"github.com/karteek/splitcard/pkg/logger"
)

// RepositoryAPI persists expenses. Every mutating method also recomputes
// the owed balance of the affected friend(s) within the same transaction,
// so balances never drift from the expense rows.
type RepositoryAPI interface {
	Create(ctx context.Context, userID string, expense *Expense) error
	GetByID(ctx context.Context, userID, expenseID string) (*Expense, error)
	GetAll(ctx context.Context, userID string) ([]*Expense, error)
	GetByFriendID(ctx context.Context, userID, friendID string) ([]*Expense, error)
	// Update persists the expense; prevFriendID is the friend the expense
	// pointed at before the patch, so both sides get recomputed when the
	// expense moves between friends.
	Update(ctx context.Context, userID string, expense *Expense, prevFriendID string) error
	Delete(ctx context.Context, userID, expenseID string) error
}

// ReferenceChecker verifies that a friend or card referenced by an
// expense actually belongs to the user.
type ReferenceChecker interface {
	FriendExists(ctx context.Context, userID, friendID string) (bool, error)
	CardExists(ctx context.Context, userID, cardID string) (bool, error)
}

// CategoryValidator reports whether a category name is part of the
// catalogue.
type CategoryValidator interface {
	IsValidCategory(name string) bool
}

type ServiceAPI interface {
	CreateExpense(ctx context.Context, userID string, dto *CreateExpenseDTO) (*Expense, error)
	GetExpense(ctx context.Context, userID, expenseID string) (*Expense, error)
	GetExpenses(ctx context.Context, userID string) ([]*Expense, error)
	GetExpensesByFriend(ctx context.Context, userID, friendID string) ([]*Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, dto *UpdateExpenseDTO) (*Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error
	MarkAsPaid(ctx context.Context, userID, expenseID string) (*Expense, error)
}

type Service struct {
	repo       RepositoryAPI
	refs       ReferenceChecker
	categories CategoryValidator
	bus        *events.EventBus
}

func NewService(repo RepositoryAPI, refs ReferenceChecker, categories CategoryValidator, bus *events.EventBus) *Service {
	return &Service{
		repo:       repo,
		refs:       refs,
		categories: categories,
		bus:        bus,
	}
}

func (s *Service) CreateExpense(ctx context.Context, userID string, dto *CreateExpenseDTO) (*Expense, error) {
	log := logger.From(ctx)

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if err := s.checkReferences(ctx, userID, dto.FriendID, dto.CreditCardID); err != nil {
		return nil, err
	}
	if err := s.checkCategory(dto.Category); err != nil {
		return nil, err
	}

	now := time.Now()
	expenseDate := now
	if dto.ExpenseDate != nil {
		expenseDate = *dto.ExpenseDate
	}

	exp := &Expense{
		ID:           uuid.NewString(),
		FriendID:     dto.FriendID,
		CreditCardID: dto.CreditCardID,
		Description:  dto.Description,
		Amount:       dto.Amount,
		Tax:          dto.Tax,
		Interest:     dto.Interest,
		Category:     dto.Category,
		IsEMI:        dto.IsEMI,
		Status:       StatusPending,
		ExpenseDate:  expenseDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if dto.EMIDetails != nil {
		exp.EMIDetails = &EMIDetails{
			TotalAmount:     dto.EMIDetails.TotalAmount,
			MonthlyAmount:   dto.EMIDetails.MonthlyAmount,
			RemainingMonths: dto.EMIDetails.RemainingMonths,
			InterestRate:    dto.EMIDetails.InterestRate,
		}
	}

	if err := s.repo.Create(ctx, userID, exp); err != nil {
		log.Error("failed to create expense", "error", err)
		return nil, internal.NewInternalError("failed to create expense", err)
	}

	s.bus.Publish(ctx, events.NewExpenseChangedEvent(events.EventTypeExpenseCreated, exp.ID, exp.FriendID, userID, exp.TotalAmount()))
	log.Info("expense created", "expenseID", exp.ID, "friendID", exp.FriendID, "amount", exp.Amount)
	return exp, nil
}

func (s *Service) GetExpense(ctx context.Context, userID, expenseID string) (*Expense, error) {
	return s.repo.GetByID(ctx, userID, expenseID)
}

func (s *Service) GetExpenses(ctx context.Context, userID string) ([]*Expense, error) {
	return s.repo.GetAll(ctx, userID)
}

func (s *Service) GetExpensesByFriend(ctx context.Context, userID, friendID string) ([]*Expense, error) {
	return s.repo.GetByFriendID(ctx, userID, friendID)
}

func (s *Service) UpdateExpense(ctx context.Context, userID, expenseID string, dto *UpdateExpenseDTO) (*Expense, error) {
	log := logger.From(ctx)

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	exp, err := s.repo.GetByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	prevFriendID := exp.FriendID

	if dto.FriendID != nil && *dto.FriendID != exp.FriendID {
		ok, err := s.refs.FriendExists(ctx, userID, *dto.FriendID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check friend reference", err)
		}
		if !ok {
			return nil, internal.NewNotFoundError("friend not found", internal.ErrCodeFriendNotFound)
		}
		exp.FriendID = *dto.FriendID
	}
	if dto.CreditCardID != nil && *dto.CreditCardID != exp.CreditCardID {
		ok, err := s.refs.CardExists(ctx, userID, *dto.CreditCardID)
		if err != nil {
			return nil, internal.NewInternalError("failed to check card reference", err)
		}
		if !ok {
			return nil, internal.NewNotFoundError("credit card not found", internal.ErrCodeCardNotFound)
		}
		exp.CreditCardID = *dto.CreditCardID
	}
	if dto.Category != nil {
		if err := s.checkCategory(*dto.Category); err != nil {
			return nil, err
		}
		exp.Category = *dto.Category
	}
	if dto.Description != nil {
		exp.Description = *dto.Description
	}
	if dto.Amount != nil {
		exp.Amount = *dto.Amount
	}
	if dto.Tax != nil {
		exp.Tax = *dto.Tax
	}
	if dto.Interest != nil {
		exp.Interest = *dto.Interest
	}
	if dto.IsEMI != nil {
		exp.IsEMI = *dto.IsEMI
	}
	if dto.EMIDetails != nil {
		exp.EMIDetails = &EMIDetails{
			TotalAmount:     dto.EMIDetails.TotalAmount,
			MonthlyAmount:   dto.EMIDetails.MonthlyAmount,
			RemainingMonths: dto.EMIDetails.RemainingMonths,
			InterestRate:    dto.EMIDetails.InterestRate,
		}
	}
	if dto.Status != nil {
		exp.Status = *dto.Status
	}
	if dto.ExpenseDate != nil {
		exp.ExpenseDate = *dto.ExpenseDate
	}
	exp.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, userID, exp, prevFriendID); err != nil {
		log.Error("failed to update expense", "expenseID", expenseID, "error", err)
		return nil, internal.NewInternalError("failed to update expense", err)
	}

	s.bus.Publish(ctx, events.NewExpenseChangedEvent(events.EventTypeExpenseUpdated, exp.ID, exp.FriendID, userID, exp.TotalAmount()))
	return exp, nil
}

func (s *Service) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	log := logger.From(ctx)

	exp, err := s.repo.GetByID(ctx, userID, expenseID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, userID, expenseID); err != nil {
		log.Error("failed to delete expense", "expenseID", expenseID, "error", err)
		return internal.NewInternalError("failed to delete expense", err)
	}

	s.bus.Publish(ctx, events.NewExpenseChangedEvent(events.EventTypeExpenseDeleted, exp.ID, exp.FriendID, userID, exp.TotalAmount()))
	log.Info("expense deleted", "expenseID", expenseID)
	return nil
}

func (s *Service) MarkAsPaid(ctx context.Context, userID, expenseID string) (*Expense, error) {
	log := logger.From(ctx)

	exp, err := s.repo.GetByID(ctx, userID, expenseID)
	if err != nil {
		return nil, err
	}
	if exp.IsPaid() {
		return nil, internal.NewValidationError("expense is already paid", internal.ErrCodeInvalidExpenseStatus)
	}

	exp.MarkPaid()
	if err := s.repo.Update(ctx, userID, exp, exp.FriendID); err != nil {
		log.Error("failed to mark expense as paid", "expenseID", expenseID, "error", err)
		return nil, internal.NewInternalError("failed to mark expense as paid", err)
	}

	s.bus.Publish(ctx, events.NewExpenseChangedEvent(events.EventTypeExpensePaid, exp.ID, exp.FriendID, userID, exp.TotalAmount()))
	log.Info("expense marked as paid", "expenseID", expenseID, "friendID", exp.FriendID)
	return exp, nil
}

func (s *Service) checkReferences(ctx context.Context, userID, friendID, cardID string) error {
	ok, err := s.refs.FriendExists(ctx, userID, friendID)
	if err != nil {
		return internal.NewInternalError("failed to check friend reference", err)
	}
	if !ok {
		return internal.NewNotFoundError("friend not found", internal.ErrCodeFriendNotFound)
	}
	ok, err = s.refs.CardExists(ctx, userID, cardID)
	if err != nil {
		return internal.NewInternalError("failed to check card reference", err)
	}
	if !ok {
		return internal.NewNotFoundError("credit card not found", internal.ErrCodeCardNotFound)
	}
	return nil
}

func (s *Service) checkCategory(name string) error {
	if name == "" {
		return nil
	}
	if !s.categories.IsValidCategory(name) {
		return internal.NewValidationError("unknown expense category", internal.ErrCodeValidationFailed)
	}
	return nil
}
