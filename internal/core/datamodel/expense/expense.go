package expense

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// EMIDetails is a value object embedded in an expense when the charge is
// paid off in monthly installments. It has no lifecycle of its own.
type EMIDetails struct {
	TotalAmount     float64 `json:"total_amount"`
	MonthlyAmount   float64 `json:"monthly_amount"`
	RemainingMonths int     `json:"remaining_months"`
	InterestRate    float64 `json:"interest_rate"`
}

func (d EMIDetails) Value() (driver.Value, error) {
	return json.Marshal(d)
}

func (d *EMIDetails) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	case nil:
		return nil
	default:
		return errors.New("unsupported type for emi details")
	}
}

type Expense struct {
	ID           string      `gorm:"primaryKey;type:uuid"`
	UserID       string      `gorm:"column:user_id;type:uuid;not null;index"`
	FriendID     string      `gorm:"column:friend_id;type:uuid;not null;index"`
	CreditCardID string      `gorm:"column:credit_card_id;type:uuid;not null;index"`
	Description  string      `gorm:"not null"`
	Amount       float64     `gorm:"not null"`
	Tax          float64     `gorm:"not null;default:0"`
	Interest     float64     `gorm:"not null;default:0"`
	Category     string      `gorm:"not null"`
	IsEMI        bool        `gorm:"column:is_emi;not null;default:false"`
	EMIDetails   *EMIDetails `gorm:"column:emi_details;type:jsonb"`
	Status       string      `gorm:"not null;default:pending"`
	ExpenseDate  time.Time   `gorm:"column:expense_date;type:date"`
	CreatedAt    time.Time   `gorm:"column:created_at"`
	UpdatedAt    time.Time   `gorm:"column:updated_at"`
}

func (Expense) TableName() string {
	return "expenses"
}
