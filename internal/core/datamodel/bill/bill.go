package bill

import "time"

// ProcessedBill is one credit-card statement cycle: a batch of candidate
// transactions waiting to be assigned to friends and finalized into expenses.
type ProcessedBill struct {
	ID           string            `gorm:"primaryKey;type:uuid"`
	UserID       string            `gorm:"column:user_id;type:uuid;not null;index"`
	CreditCardID string            `gorm:"column:credit_card_id;type:uuid;not null;index"`
	BillDate     time.Time         `gorm:"column:bill_date;type:date"`
	DueDate      time.Time         `gorm:"column:due_date;type:date"`
	TotalAmount  float64           `gorm:"column:total_amount;not null;default:0"`
	Status       string            `gorm:"not null;default:pending"`
	Transactions []BillTransaction `gorm:"foreignKey:BillID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at"`
	UpdatedAt    time.Time         `gorm:"column:updated_at"`
}

func (ProcessedBill) TableName() string {
	return "processed_bills"
}

// BillTransaction is a single statement line. Converted is tracked
// separately from Status so finalization stays idempotent: a transaction
// already converted into an expense is never converted again, even if the
// bill is finalized repeatedly.
type BillTransaction struct {
	ID               string    `gorm:"primaryKey;type:uuid"`
	BillID           string    `gorm:"column:bill_id;type:uuid;not null;index"`
	Position         int       `gorm:"not null;default:0"`
	Description      string    `gorm:"not null"`
	Amount           float64   `gorm:"not null"`
	Category         string    `gorm:"not null"`
	Status           string    `gorm:"not null;default:unassigned"`
	AssignedFriendID *string   `gorm:"column:assigned_friend_id;type:uuid"`
	Converted        bool      `gorm:"not null;default:false"`
	TransactionDate  time.Time `gorm:"column:transaction_date;type:date"`
	CreatedAt        time.Time `gorm:"column:created_at"`
	UpdatedAt        time.Time `gorm:"column:updated_at"`
}

func (BillTransaction) TableName() string {
	return "bill_transactions"
}
