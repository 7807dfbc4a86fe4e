package postgres

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/bill"
	billDatamodel "github.com/karteek/splitcard/internal/core/datamodel/bill"
	cardDatamodel "github.com/karteek/splitcard/internal/core/datamodel/card"
	expenseDatamodel "github.com/karteek/splitcard/internal/core/datamodel/expense"
	"github.com/karteek/splitcard/internal/expense"
	friendPostgres "github.com/karteek/splitcard/internal/friend/postgres"
)

type BillRepository struct {
	db *gorm.DB
}

func NewBillRepository(db *gorm.DB) bill.RepositoryAPI {
	return &BillRepository{db: db}
}

func (r *BillRepository) Create(ctx context.Context, dm *billDatamodel.ProcessedBill) error {
	return r.db.WithContext(ctx).Create(dm).Error
}

func (r *BillRepository) GetByID(ctx context.Context, userID, billID string) (*billDatamodel.ProcessedBill, error) {
	var dm billDatamodel.ProcessedBill
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ? AND user_id = ?", billID, userID).
		First(&dm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBillNotFound
		}
		return nil, err
	}
	return &dm, nil
}

func (r *BillRepository) GetAll(ctx context.Context, userID string) ([]*billDatamodel.ProcessedBill, error) {
	var dms []*billDatamodel.ProcessedBill
	err := r.db.WithContext(ctx).
		Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("user_id = ?", userID).
		Order("bill_date DESC").
		Find(&dms).Error
	return dms, err
}

func (r *BillRepository) GetTransaction(ctx context.Context, userID, billID, transactionID string) (*billDatamodel.BillTransaction, error) {
	// Ownership check goes through the bill: transactions carry no user
	// column of their own.
	var billRow billDatamodel.ProcessedBill
	err := r.db.WithContext(ctx).
		Select("id").
		Where("id = ? AND user_id = ?", billID, userID).
		First(&billRow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrBillNotFound
		}
		return nil, err
	}

	var tx billDatamodel.BillTransaction
	err = r.db.WithContext(ctx).
		Where("id = ? AND bill_id = ?", transactionID, billID).
		First(&tx).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrTransactionNotFound
		}
		return nil, err
	}
	return &tx, nil
}

func (r *BillRepository) UpdateTransaction(ctx context.Context, transaction *billDatamodel.BillTransaction) error {
	return r.db.WithContext(ctx).Save(transaction).Error
}

// Finalize converts the bill's assigned, not-yet-converted transactions
// into pending expenses inside one transaction. Friend balances are
// recomputed for every friend that received an expense, the card balance
// is adjusted per cardBalanceMode, and the bill status is rederived from
// the post-conversion transaction states.
func (r *BillRepository) Finalize(ctx context.Context, userID, billID, cardBalanceMode string) (*bill.FinalizeOutcome, error) {
	var outcome *bill.FinalizeOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var dm billDatamodel.ProcessedBill
		err := tx.Preload("Transactions", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
			Where("id = ? AND user_id = ?", billID, userID).
			First(&dm).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrBillNotFound
			}
			return err
		}

		now := time.Now()
		var (
			convertedCount  int
			convertedAmount float64
		)
		affectedFriends := make(map[string]struct{})

		for i := range dm.Transactions {
			t := &dm.Transactions[i]
			if t.Status != bill.TransactionStatusAssigned || t.Converted || t.AssignedFriendID == nil {
				continue
			}

			exp := &expenseDatamodel.Expense{
				ID:           uuid.NewString(),
				UserID:       userID,
				FriendID:     *t.AssignedFriendID,
				CreditCardID: dm.CreditCardID,
				Description:  t.Description,
				Amount:       t.Amount,
				Category:     t.Category,
				IsEMI:        false,
				Status:       expense.StatusPending,
				ExpenseDate:  t.TransactionDate,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Create(exp).Error; err != nil {
				return err
			}

			t.Converted = true
			t.UpdatedAt = now
			if err := tx.Model(&billDatamodel.BillTransaction{}).
				Where("id = ?", t.ID).
				Updates(map[string]interface{}{"converted": true, "updated_at": now}).Error; err != nil {
				return err
			}

			convertedCount++
			convertedAmount += t.Amount
			affectedFriends[*t.AssignedFriendID] = struct{}{}
		}

		for friendID := range affectedFriends {
			if err := friendPostgres.RecalculateTotalOwed(tx, friendID); err != nil {
				return err
			}
		}

		var charge float64
		switch cardBalanceMode {
		case internal.CardBalanceModeFullTotal:
			// Reference behavior: the full declared total on every
			// invocation, even when nothing new converted.
			charge = dm.TotalAmount
		default:
			charge = convertedAmount
		}
		if charge != 0 {
			if err := tx.Model(&cardDatamodel.CreditCard{}).
				Where("id = ? AND user_id = ?", dm.CreditCardID, userID).
				Updates(map[string]interface{}{
					"current_balance": gorm.Expr("current_balance + ?", charge),
					"updated_at":      now,
				}).Error; err != nil {
				return err
			}
		}

		domainBill := bill.FromDataModel(&dm)
		domainBill.RecomputeStatus()
		if err := tx.Model(&billDatamodel.ProcessedBill{}).
			Where("id = ?", dm.ID).
			Updates(map[string]interface{}{"status": domainBill.Status, "updated_at": now}).Error; err != nil {
			return err
		}
		domainBill.UpdatedAt = now

		friendIDs := make([]string, 0, len(affectedFriends))
		for friendID := range affectedFriends {
			friendIDs = append(friendIDs, friendID)
		}
		sort.Strings(friendIDs)

		outcome = &bill.FinalizeOutcome{
			Bill:              domainBill,
			ConvertedCount:    convertedCount,
			ConvertedAmount:   convertedAmount,
			AffectedFriendIDs: friendIDs,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}
