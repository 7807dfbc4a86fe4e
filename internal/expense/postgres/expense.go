package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/karteek/splitcard/internal"
	cardDatamodel "github.com/karteek/splitcard/internal/core/datamodel/card"
	expenseDatamodel "github.com/karteek/splitcard/internal/core/datamodel/expense"
	friendDatamodel "github.com/karteek/splitcard/internal/core/datamodel/friend"
	"github.com/karteek/splitcard/internal/expense"
	friendPostgres "github.com/karteek/splitcard/internal/friend/postgres"
)

type ExpenseRepository struct {
	db *gorm.DB
}

func NewExpenseRepository(db *gorm.DB) expense.RepositoryAPI {
	return &ExpenseRepository{db: db}
}

func (r *ExpenseRepository) Create(ctx context.Context, userID string, exp *expense.Expense) error {
	dm := expense.ToDataModel(exp, userID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(dm).Error; err != nil {
			return err
		}
		return friendPostgres.RecalculateTotalOwed(tx, dm.FriendID)
	})
}

func (r *ExpenseRepository) GetByID(ctx context.Context, userID, expenseID string) (*expense.Expense, error) {
	var dm expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", expenseID, userID).
		First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrExpenseNotFound
		}
		return nil, err
	}
	return expense.FromDataModel(&dm), nil
}

func (r *ExpenseRepository) GetAll(ctx context.Context, userID string) ([]*expense.Expense, error) {
	var dms []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("expense_date DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(dms), nil
}

func (r *ExpenseRepository) GetByFriendID(ctx context.Context, userID, friendID string) ([]*expense.Expense, error) {
	var dms []*expenseDatamodel.Expense
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		Order("expense_date DESC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return expense.FromDataModelSlice(dms), nil
}

// Update saves the expense and recomputes the current friend's balance.
// When the expense moved between friends, the previous friend is
// recomputed as well so neither side keeps a stale total.
func (r *ExpenseRepository) Update(ctx context.Context, userID string, exp *expense.Expense, prevFriendID string) error {
	dm := expense.ToDataModel(exp, userID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(dm).Error; err != nil {
			return err
		}
		if err := friendPostgres.RecalculateTotalOwed(tx, dm.FriendID); err != nil {
			return err
		}
		if prevFriendID != "" && prevFriendID != dm.FriendID {
			return friendPostgres.RecalculateTotalOwed(tx, prevFriendID)
		}
		return nil
	})
}

func (r *ExpenseRepository) Delete(ctx context.Context, userID, expenseID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dm expenseDatamodel.Expense
		err := tx.Where("id = ? AND user_id = ?", expenseID, userID).First(&dm).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrExpenseNotFound
			}
			return err
		}
		if err := tx.Delete(&expenseDatamodel.Expense{}, "id = ?", dm.ID).Error; err != nil {
			return err
		}
		return friendPostgres.RecalculateTotalOwed(tx, dm.FriendID)
	})
}

// ReferenceRepository answers existence checks for the records an expense
// points at.
type ReferenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository returns the concrete type: both the expense and
// the bill package declare a checker interface it satisfies.
func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func (r *ReferenceRepository) FriendExists(ctx context.Context, userID, friendID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&friendDatamodel.Friend{}).
		Where("id = ? AND user_id = ?", friendID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ReferenceRepository) CardExists(ctx context.Context, userID, cardID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&cardDatamodel.CreditCard{}).
		Where("id = ? AND user_id = ?", cardID, userID).
		Count(&count).Error
	return count > 0, err
}
