package ledger

import (
	"context"
	"time"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/expense"
	"github.com/karteek/splitcard/internal/friend"
	"github.com/karteek/splitcard/pkg/logger"
)

// FriendLister is the slice of the friend service the aggregator needs.
type FriendLister interface {
	GetFriends(userID string) ([]*friend.Friend, error)
}

// ExpenseLister is the slice of the expense service the aggregator needs.
type ExpenseLister interface {
	GetExpenses(ctx context.Context, userID string) ([]*expense.Expense, error)
}

type ServiceAPI interface {
	GetSummary(ctx context.Context, userID string) (*Summary, error)
	GetFriendSummaries(ctx context.Context, userID string) ([]FriendSummary, error)
}

type Service struct {
	friends  FriendLister
	expenses ExpenseLister
	now      func() time.Time
}

func NewService(friends FriendLister, expenses ExpenseLister) *Service {
	return &Service{
		friends:  friends,
		expenses: expenses,
		now:      time.Now,
	}
}

func (s *Service) GetSummary(ctx context.Context, userID string) (*Summary, error) {
	friends, expenses, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary := Overall(friends, expenses, s.now())
	return &summary, nil
}

func (s *Service) GetFriendSummaries(ctx context.Context, userID string) ([]FriendSummary, error) {
	friends, expenses, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Aggregate(friends, expenses, s.now()), nil
}

func (s *Service) load(ctx context.Context, userID string) ([]*friend.Friend, []*expense.Expense, error) {
	log := logger.From(ctx)

	friends, err := s.friends.GetFriends(userID)
	if err != nil {
		log.Error("failed to load friends for aggregation", "error", err)
		return nil, nil, internal.NewInternalError("failed to load friends", err)
	}
	expenses, err := s.expenses.GetExpenses(ctx, userID)
	if err != nil {
		log.Error("failed to load expenses for aggregation", "error", err)
		return nil, nil, internal.NewInternalError("failed to load expenses", err)
	}
	return friends, expenses, nil
}
