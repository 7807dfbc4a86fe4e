package friend

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/core/events"
	friendDatamodel "github.com/karteek/splitcard/internal/core/datamodel/friend"
)

type RepositoryAPI interface {
	Create(f *friendDatamodel.Friend) error
	GetByID(userID, id string) (*friendDatamodel.Friend, error)
	GetAll(userID string) ([]*friendDatamodel.Friend, error)
	Update(f *friendDatamodel.Friend) error
	// Delete removes the friend and, through the schema's cascade, every
	// expense referencing it.
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

func (s *Service) CreateFriend(userID string, dto CreateFriendDTO) (*Friend, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	f := &friendDatamodel.Friend{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      dto.Name,
		Email:     dto.Email,
		Avatar:    dto.Avatar,
		TotalOwed: 0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(f); err != nil {
		s.logger.Error("failed to create friend", "error", err, "user_id", userID)
		return nil, internal.NewInternalError("failed to create friend", err)
	}

	s.logger.Info("friend created", "friend_id", f.ID, "user_id", userID)
	return FromDataModel(f), nil
}

func (s *Service) GetFriend(userID, id string) (*Friend, error) {
	f, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	return FromDataModel(f), nil
}

func (s *Service) GetFriends(userID string) ([]*Friend, error) {
	friends, err := s.repo.GetAll(userID)
	if err != nil {
		s.logger.Error("failed to list friends", "error", err, "user_id", userID)
		return nil, err
	}
	return FromDataModelSlice(friends), nil
}

func (s *Service) UpdateFriend(userID, id string, dto UpdateFriendDTO) (*Friend, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	f, err := s.repo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil {
		f.Name = *dto.Name
	}
	if dto.Email != nil {
		f.Email = dto.Email
	}
	if dto.Avatar != nil {
		f.Avatar = dto.Avatar
	}
	f.UpdatedAt = time.Now()

	if err := s.repo.Update(f); err != nil {
		s.logger.Error("failed to update friend", "error", err, "friend_id", id)
		return nil, internal.NewInternalError("failed to update friend", err)
	}

	return FromDataModel(f), nil
}

// DeleteFriend removes the friend and all expenses referencing it.
func (s *Service) DeleteFriend(ctx context.Context, userID, id string) error {
	if _, err := s.repo.GetByID(userID, id); err != nil {
		return err
	}

	if err := s.repo.Delete(userID, id); err != nil {
		s.logger.Error("failed to delete friend", "error", err, "friend_id", id)
		return internal.NewInternalError("failed to delete friend", err)
	}

	s.logger.Info("friend deleted with cascading expenses", "friend_id", id, "user_id", userID)
	s.bus.Publish(ctx, events.NewExpenseChangedEvent(events.EventTypeFriendDeleted, "", id, userID, 0))
	return nil
}
