package postgres

import (
	"time"

	expenseDatamodel "github.com/karteek/splitcard/internal/core/datamodel/expense"
	friendDatamodel "github.com/karteek/splitcard/internal/core/datamodel/friend"
	"gorm.io/gorm"
)

// StatusPaid mirrors the expense domain constant; paid expenses never
// count toward a friend's owed total.
const statusPaid = "paid"

// RecalculateTotalOwed rewrites the friend's denormalized total_owed from
// the authoritative expense rows: sum of amount+tax+interest over non-paid
// expenses. The result is clamped at zero as a guard against drift between
// incremental updates and this materialized view.
//
// Callers are expected to run it inside the same transaction as the
// expense mutation so the view never commits out of step with its source.
func RecalculateTotalOwed(tx *gorm.DB, friendID string) error {
	var total float64
	err := tx.Model(&expenseDatamodel.Expense{}).
		Where("friend_id = ? AND status <> ?", friendID, statusPaid).
		Select("COALESCE(SUM(amount + tax + interest), 0)").
		Scan(&total).Error
	if err != nil {
		return err
	}

	if total < 0 {
		total = 0
	}

	return tx.Model(&friendDatamodel.Friend{}).
		Where("id = ?", friendID).
		Updates(map[string]interface{}{
			"total_owed": total,
			"updated_at": time.Now(),
		}).Error
}
