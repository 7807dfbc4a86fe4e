package card

import "time"

type CreditCard struct {
	ID             string     `gorm:"primaryKey;type:uuid"`
	UserID         string     `gorm:"column:user_id;type:uuid;not null;index"`
	Name           string     `gorm:"not null"`
	Bank           string     `gorm:"not null"`
	LastFourDigits string     `gorm:"column:last_four_digits;size:4;not null"`
	CreditLimit    float64    `gorm:"column:credit_limit;not null;default:0"`
	CurrentBalance float64    `gorm:"column:current_balance;not null;default:0"`
	DueDate        *time.Time `gorm:"column:due_date"`
	BillingDate    *time.Time `gorm:"column:billing_date"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (CreditCard) TableName() string {
	return "credit_cards"
}
