package card

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/karteek/splitcard/internal"
	cardDatamodel "github.com/karteek/splitcard/internal/core/datamodel/card"
	"github.com/karteek/splitcard/internal/core/events"
)

type RepositoryAPI interface {
	Create(c *cardDatamodel.CreditCard) error
	GetByID(userID, id string) (*cardDatamodel.CreditCard, error)
	GetAll(userID string) ([]*cardDatamodel.CreditCard, error)
	Update(c *cardDatamodel.CreditCard) error
	// Delete removes the card together with expenses and bills that
	// reference it, and recomputes the balances of every friend whose
	// expenses were swept away.
	Delete(userID, id string) error
}

type Service struct {
	repo   RepositoryAPI
	bus    *events.EventBus
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) CreateCard(userID string, dto CreateCardDTO) (*CreditCard, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	c := &cardDatamodel.CreditCard{
		ID:             uuid.NewString(),
		UserID:         userID,
		Name:           dto.Name,
		Bank:           dto.Bank,
		LastFourDigits: dto.LastFourDigits,
		CreditLimit:    dto.CreditLimit,
		CurrentBalance: dto.CurrentBalance,
		DueDate:        dto.DueDate,
		BillingDate:    dto.BillingDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.repo.Create(c); err != nil {
		s.logger.Error("failed to create card", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to create card", err)
	}

	s.logger.Info("card created", "card_id", c.ID, "user_id", userID, "bank", c.Bank)
	return FromDataModel(c), nil
}

func (s *Service) GetCard(userID, id string) (*CreditCard, error) {
	c, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(c), nil
}

func (s *Service) GetCards(userID string) ([]*CreditCard, error) {
	cards, err := s.repo.GetAll(userID)
	if err != nil {
		s.logger.Error("failed to list cards", "error", err, "user_id", userID)
		return nil, err
	}
	return FromDataModelSlice(cards), nil
}

func (s *Service) UpdateCard(userID, id string, dto UpdateCardDTO) (*CreditCard, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	c, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		c.Name = *dto.Name
	}
	if dto.Bank != nil {
		c.Bank = *dto.Bank
	}
	if dto.CreditLimit != nil {
		c.CreditLimit = *dto.CreditLimit
	}
	if dto.CurrentBalance != nil {
		c.CurrentBalance = *dto.CurrentBalance
	}
	if dto.DueDate != nil {
		c.DueDate = dto.DueDate
	}
	if dto.BillingDate != nil {
		c.BillingDate = dto.BillingDate
	}
	c.UpdatedAt = time.Now()

	if err := s.repo.Update(c); err != nil {
		s.logger.Error("failed to update card", "error", err, "card_id", id)
		return nil, internal.NewInternalError("failed to update card", err)
	}

	return FromDataModel(c), nil
}

func (s *Service) DeleteCard(ctx context.Context, userID, id string) error {
	if _, err := s.repo.GetByID(userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(userID, id); err != nil {
		s.logger.Error("failed to delete card", "error", err, "card_id", id)
		return internal.NewInternalError("failed to delete card", err)
	}

	s.logger.Info("card deleted with cascading expenses", "card_id", id, "user_id", userID)
	s.bus.Publish(ctx, events.NewExpenseChangedEvent(events.EventTypeCardDeleted, "", "", userID, 0))
	return nil
}
