package postgres

import (
	"errors"
	"time"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/bill"
	billDatamodel "github.com/karteek/splitcard/internal/core/datamodel/bill"
	expenseDatamodel "github.com/karteek/splitcard/internal/core/datamodel/expense"
	friendDatamodel "github.com/karteek/splitcard/internal/core/datamodel/friend"
	"github.com/karteek/splitcard/internal/friend"
	"gorm.io/gorm"
)

type FriendRepository struct {
	db *gorm.DB
}

func NewFriendRepository(db *gorm.DB) friend.RepositoryAPI {
	return &FriendRepository{db: db}
}

func (r *FriendRepository) Create(f *friendDatamodel.Friend) error {
	return r.db.Create(f).Error
}

func (r *FriendRepository) GetByID(userID, id string) (*friendDatamodel.Friend, error) {
	var f friendDatamodel.Friend
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&f).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrFriendNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *FriendRepository) GetAll(userID string) ([]*friendDatamodel.Friend, error) {
	var friends []*friendDatamodel.Friend
	err := r.db.Where("user_id = ?", userID).
		Order("total_owed DESC").
		Find(&friends).Error
	return friends, err
}

// Delete removes the friend and its expenses in one transaction. The
// expense delete is explicit rather than relying on the FK cascade so the
// behavior holds on stores without referential actions (the sqlite test
// database among them).
func (r *FriendRepository) Delete(userID, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		// Statement lines still pointing at the friend would violate the
		// friends FK on delete. Unconverted ones go back to the pool;
		// converted ones keep their row but lose the assignment.
		if err := tx.Model(&billDatamodel.BillTransaction{}).
			Where("assigned_friend_id = ? AND converted = ?", id, false).
			Updates(map[string]interface{}{
				"assigned_friend_id": nil,
				"status":             bill.TransactionStatusUnassigned,
				"updated_at":         time.Now(),
			}).Error; err != nil {
			return err
		}
		if err := tx.Model(&billDatamodel.BillTransaction{}).
			Where("assigned_friend_id = ? AND converted = ?", id, true).
			Updates(map[string]interface{}{
				"assigned_friend_id": nil,
				"updated_at":         time.Now(),
			}).Error; err != nil {
			return err
		}
		if err := tx.Where("friend_id = ?", id).Delete(&expenseDatamodel.Expense{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&friendDatamodel.Friend{}).Error
	})
}

func (r *FriendRepository) Update(f *friendDatamodel.Friend) error {
	return r.db.Save(f).Error
}
