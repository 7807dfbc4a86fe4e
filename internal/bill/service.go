package bill

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/category"
	billDatamodel "github.com/karteek/splitcard/internal/core/datamodel/bill"
	"github.com/karteek/splitcard/internal/core/events"
	"github.com/karteek/splitcard/pkg/logger"
)

// FinalizeOutcome reports what a single finalization pass did.
// AffectedFriendIDs lists the friends whose owed totals were recomputed
// because a transaction of theirs converted in this pass.
type FinalizeOutcome struct {
	Bill              *ProcessedBill `json:"bill"`
	ConvertedCount    int            `json:"converted_count"`
	ConvertedAmount   float64        `json:"converted_amount"`
	AffectedFriendIDs []string       `json:"affected_friend_ids,omitempty"`
}

// RepositoryAPI persists bills and runs finalization. Finalize executes
// as a single transaction: expense creation, conversion marking, friend
// balance recomputes, card balance adjustment and bill status all commit
// together or not at all.
type RepositoryAPI interface {
	Create(ctx context.Context, dm *billDatamodel.ProcessedBill) error
	GetByID(ctx context.Context, userID, billID string) (*billDatamodel.ProcessedBill, error)
	GetAll(ctx context.Context, userID string) ([]*billDatamodel.ProcessedBill, error)
	GetTransaction(ctx context.Context, userID, billID, transactionID string) (*billDatamodel.BillTransaction, error)
	UpdateTransaction(ctx context.Context, transaction *billDatamodel.BillTransaction) error
	Finalize(ctx context.Context, userID, billID, cardBalanceMode string) (*FinalizeOutcome, error)
}

// ReferenceChecker verifies friend and card references against the
// user's own records.
type ReferenceChecker interface {
	FriendExists(ctx context.Context, userID, friendID string) (bool, error)
	CardExists(ctx context.Context, userID, cardID string) (bool, error)
}

type ServiceAPI interface {
	UploadBill(ctx context.Context, userID string, dto *UploadBillDTO) (*ProcessedBill, error)
	CreateBill(ctx context.Context, userID string, dto *CreateBillDTO) (*ProcessedBill, error)
	GetBill(ctx context.Context, userID, billID string) (*ProcessedBill, error)
	GetBills(ctx context.Context, userID string) ([]*ProcessedBill, error)
	AssignTransaction(ctx context.Context, userID, billID, transactionID string, dto *AssignTransactionDTO) (*ProcessedBill, error)
	IgnoreTransaction(ctx context.Context, userID, billID, transactionID string) (*ProcessedBill, error)
	FinalizeBill(ctx context.Context, userID, billID string) (*FinalizeOutcome, error)
}

type Service struct {
	repo RepositoryAPI
	refs ReferenceChecker
	bus  *events.EventBus
	cfg  internal.BillConfig
	now  func() time.Time
}

func NewService(repo RepositoryAPI, refs ReferenceChecker, bus *events.EventBus, cfg internal.BillConfig) *Service {
	return &Service{
		repo: repo,
		refs: refs,
		bus:  bus,
		cfg:  cfg,
		now:  time.Now,
	}
}

func (s *Service) UploadBill(ctx context.Context, userID string, dto *UploadBillDTO) (*ProcessedBill, error) {
	log := logger.From(ctx)

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if err := s.checkCard(ctx, userID, dto.CreditCardID); err != nil {
		return nil, err
	}

	parsed := ParseStatement(dto.StatementText, s.now())
	if len(parsed) == 0 {
		return nil, internal.NewValidationError("no transactions could be parsed from the statement text", internal.ErrCodeValidationFailed)
	}

	transactions := make([]ManualTransactionDTO, len(parsed))
	for i, p := range parsed {
		d := p.Date
		transactions[i] = ManualTransactionDTO{
			Description: p.Description,
			Amount:      p.Amount,
			Category:    p.Category,
			Date:        &d,
		}
	}

	b, err := s.create(ctx, userID, dto.CreditCardID, dto.BillDate, dto.DueDate, dto.TotalAmount, transactions)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.NewBillParsedEvent(b.ID, b.CreditCardID, userID, len(b.Transactions)))
	log.Info("statement parsed into bill", "billID", b.ID, "transactions", len(b.Transactions))
	return b, nil
}

func (s *Service) CreateBill(ctx context.Context, userID string, dto *CreateBillDTO) (*ProcessedBill, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if err := s.checkCard(ctx, userID, dto.CreditCardID); err != nil {
		return nil, err
	}
	return s.create(ctx, userID, dto.CreditCardID, dto.BillDate, dto.DueDate, dto.TotalAmount, dto.Transactions)
}

func (s *Service) create(ctx context.Context, userID, cardID string, billDate, dueDate *time.Time, totalAmount *float64, transactions []ManualTransactionDTO) (*ProcessedBill, error) {
	log := logger.From(ctx)
	now := s.now()

	bd := now
	if billDate != nil {
		bd = *billDate
	}
	dd := bd.Add(DueDateOffset)
	if dueDate != nil {
		dd = *dueDate
	}

	var total float64
	if totalAmount != nil {
		total = *totalAmount
	} else {
		for _, t := range transactions {
			total += t.Amount
		}
	}

	dm := &billDatamodel.ProcessedBill{
		ID:           uuid.NewString(),
		UserID:       userID,
		CreditCardID: cardID,
		BillDate:     bd,
		DueDate:      dd,
		TotalAmount:  total,
		Status:       BillStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	dm.Transactions = make([]billDatamodel.BillTransaction, len(transactions))
	for i, t := range transactions {
		txCategory := t.Category
		if txCategory == "" {
			txCategory = category.GeneralCategory
		}
		date := now
		if t.Date != nil {
			date = *t.Date
		}
		dm.Transactions[i] = billDatamodel.BillTransaction{
			ID:              uuid.NewString(),
			BillID:          dm.ID,
			Position:        i,
			Description:     t.Description,
			Amount:          t.Amount,
			Category:        txCategory,
			Status:          TransactionStatusUnassigned,
			TransactionDate: date,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	if err := s.repo.Create(ctx, dm); err != nil {
		log.Error("failed to create bill", "error", err)
		return nil, internal.NewInternalError("failed to create bill", err)
	}
	return FromDataModel(dm), nil
}

func (s *Service) GetBill(ctx context.Context, userID, billID string) (*ProcessedBill, error) {
	dm, err := s.repo.GetByID(ctx, userID, billID)
	if err != nil {
		return nil, err
	}
	return FromDataModel(dm), nil
}

func (s *Service) GetBills(ctx context.Context, userID string) ([]*ProcessedBill, error) {
	dms, err := s.repo.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromDataModelSlice(dms), nil
}

func (s *Service) AssignTransaction(ctx context.Context, userID, billID, transactionID string, dto *AssignTransactionDTO) (*ProcessedBill, error) {
	log := logger.From(ctx)

	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	ok, err := s.refs.FriendExists(ctx, userID, dto.FriendID)
	if err != nil {
		return nil, internal.NewInternalError("failed to check friend reference", err)
	}
	if !ok {
		return nil, internal.NewNotFoundError("friend not found", internal.ErrCodeFriendNotFound)
	}

	tx, err := s.repo.GetTransaction(ctx, userID, billID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Status == TransactionStatusIgnored {
		return nil, internal.NewConflictError("transaction has been ignored and cannot be assigned", internal.ErrCodeTransactionIgnored)
	}
	if tx.Converted {
		return nil, internal.NewConflictError("transaction has already been converted to an expense", internal.ErrCodeInvalidBillStatus)
	}

	friendID := dto.FriendID
	tx.Status = TransactionStatusAssigned
	tx.AssignedFriendID = &friendID
	tx.UpdatedAt = s.now()

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		log.Error("failed to assign transaction", "billID", billID, "transactionID", transactionID, "error", err)
		return nil, internal.NewInternalError("failed to assign transaction", err)
	}
	return s.GetBill(ctx, userID, billID)
}

func (s *Service) IgnoreTransaction(ctx context.Context, userID, billID, transactionID string) (*ProcessedBill, error) {
	log := logger.From(ctx)

	tx, err := s.repo.GetTransaction(ctx, userID, billID, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Converted {
		return nil, internal.NewConflictError("transaction has already been converted to an expense", internal.ErrCodeInvalidBillStatus)
	}

	tx.Status = TransactionStatusIgnored
	tx.AssignedFriendID = nil
	tx.UpdatedAt = s.now()

	if err := s.repo.UpdateTransaction(ctx, tx); err != nil {
		log.Error("failed to ignore transaction", "billID", billID, "transactionID", transactionID, "error", err)
		return nil, internal.NewInternalError("failed to ignore transaction", err)
	}
	return s.GetBill(ctx, userID, billID)
}

// FinalizeBill converts the currently assigned, not-yet-converted
// transactions into pending expenses. It can be invoked repeatedly as
// more lines get assigned; already converted lines are never converted
// twice.
func (s *Service) FinalizeBill(ctx context.Context, userID, billID string) (*FinalizeOutcome, error) {
	log := logger.From(ctx)

	mode := s.cfg.CardBalanceMode
	if mode == "" {
		mode = internal.CardBalanceModeAssignedOnly
	}

	outcome, err := s.repo.Finalize(ctx, userID, billID, mode)
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.NewBillFinalizedEvent(
		outcome.Bill.ID,
		outcome.Bill.CreditCardID,
		userID,
		outcome.ConvertedCount,
		outcome.ConvertedAmount,
		outcome.Bill.Status,
	))
	for _, friendID := range outcome.AffectedFriendIDs {
		s.bus.Publish(ctx, events.NewBalanceRecomputedEvent(friendID, userID))
	}
	log.Info("bill finalized",
		"billID", billID,
		"converted", outcome.ConvertedCount,
		"amount", outcome.ConvertedAmount,
		"status", outcome.Bill.Status,
	)
	return outcome, nil
}

func (s *Service) checkCard(ctx context.Context, userID, cardID string) error {
	ok, err := s.refs.CardExists(ctx, userID, cardID)
	if err != nil {
		return internal.NewInternalError("failed to check card reference", err)
	}
	if !ok {
		return internal.NewNotFoundError("credit card not found", internal.ErrCodeCardNotFound)
	}
	return nil
}
