package postgres

import (
	"errors"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/card"
	billDatamodel "github.com/karteek/splitcard/internal/core/datamodel/bill"
	cardDatamodel "github.com/karteek/splitcard/internal/core/datamodel/card"
	expenseDatamodel "github.com/karteek/splitcard/internal/core/datamodel/expense"
	friendPostgres "github.com/karteek/splitcard/internal/friend/postgres"
	"gorm.io/gorm"
)

type CardRepository struct {
	db *gorm.DB
}

func NewCardRepository(db *gorm.DB) card.RepositoryAPI {
	return &CardRepository{db: db}
}

func (r *CardRepository) Create(c *cardDatamodel.CreditCard) error {
	return r.db.Create(c).Error
}

func (r *CardRepository) GetByID(userID, id string) (*cardDatamodel.CreditCard, error) {
	var c cardDatamodel.CreditCard
	err := r.db.Where("id = ? AND user_id = ?", id, userID).First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCardNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *CardRepository) GetAll(userID string) ([]*cardDatamodel.CreditCard, error) {
	var cards []*cardDatamodel.CreditCard
	err := r.db.Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&cards).Error
	return cards, err
}

func (r *CardRepository) Update(c *cardDatamodel.CreditCard) error {
	return r.db.Save(c).Error
}

// Delete removes the card, its expenses and its bills in one transaction,
// then recomputes every friend balance the swept expenses contributed to.
func (r *CardRepository) Delete(userID, id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var friendIDs []string
		err := tx.Model(&expenseDatamodel.Expense{}).
			Where("credit_card_id = ?", id).
			Distinct("friend_id").
			Pluck("friend_id", &friendIDs).Error
		if err != nil {
			return err
		}

		if err := tx.Where("credit_card_id = ?", id).Delete(&expenseDatamodel.Expense{}).Error; err != nil {
			return err
		}

		var billIDs []string
		err = tx.Model(&billDatamodel.ProcessedBill{}).
			Where("credit_card_id = ?", id).
			Pluck("id", &billIDs).Error
		if err != nil {
			return err
		}
		if len(billIDs) > 0 {
			if err := tx.Where("bill_id IN ?", billIDs).Delete(&billDatamodel.BillTransaction{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", billIDs).Delete(&billDatamodel.ProcessedBill{}).Error; err != nil {
				return err
			}
		}

		for _, friendID := range friendIDs {
			if err := friendPostgres.RecalculateTotalOwed(tx, friendID); err != nil {
				return err
			}
		}

		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&cardDatamodel.CreditCard{}).Error
	})
}
