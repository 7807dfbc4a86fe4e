package expense

import (
	"time"

	expenseDatamodel "github.com/karteek/splitcard/internal/core/datamodel/expense"
)

// Expense status set. Statuses are a closed set; anything else is rejected
// at validation time.
const (
	StatusPending       = "pending"
	StatusPaid          = "paid"
	StatusOverdue       = "overdue"
	StatusPartiallyPaid = "partially_paid"
)

// OverdueAfter is how stale a pending expense must be before it counts as
// overdue in aggregations.
const OverdueAfter = 30 * 24 * time.Hour

type EMIDetails struct {
	TotalAmount     float64 `json:"total_amount"`
	MonthlyAmount   float64 `json:"monthly_amount"`
	RemainingMonths int     `json:"remaining_months"`
	InterestRate    float64 `json:"interest_rate"`
}

type Expense struct {
	ID           string      `json:"id"`
	FriendID     string      `json:"friend_id"`
	CreditCardID string      `json:"credit_card_id"`
	Description  string      `json:"description"`
	Amount       float64     `json:"amount"`
	Tax          float64     `json:"tax"`
	Interest     float64     `json:"interest"`
	Category     string      `json:"category"`
	IsEMI        bool        `json:"is_emi"`
	EMIDetails   *EMIDetails `json:"emi_details,omitempty"`
	Status       string      `json:"status"`
	ExpenseDate  time.Time   `json:"date"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TotalAmount is the quantity actually owed for this expense: the base
// amount plus its tax and interest components, never the amount alone.
func (e *Expense) TotalAmount() float64 {
	return e.Amount + e.Tax + e.Interest
}

func (e *Expense) IsPaid() bool {
	return e.Status == StatusPaid
}

// IsActiveEMI reports whether this is an installment plan still being
// paid off.
func (e *Expense) IsActiveEMI() bool {
	return e.IsEMI && e.Status != StatusPaid
}

// IsOverdue reports whether the expense is pending and older than the
// overdue window relative to now.
func (e *Expense) IsOverdue(now time.Time) bool {
	return e.Status == StatusPending && e.ExpenseDate.Before(now.Add(-OverdueAfter))
}

func (e *Expense) MarkPaid() {
	e.Status = StatusPaid
	e.UpdatedAt = time.Now()
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusPaid, StatusOverdue, StatusPartiallyPaid:
		return true
	}
	return false
}

func ToDataModel(e *Expense, userID string) *expenseDatamodel.Expense {
	dm := &expenseDatamodel.Expense{
		ID:           e.ID,
		UserID:       userID,
		FriendID:     e.FriendID,
		CreditCardID: e.CreditCardID,
		Description:  e.Description,
		Amount:       e.Amount,
		Tax:          e.Tax,
		Interest:     e.Interest,
		Category:     e.Category,
		IsEMI:        e.IsEMI,
		Status:       e.Status,
		ExpenseDate:  e.ExpenseDate,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.EMIDetails != nil {
		dm.EMIDetails = &expenseDatamodel.EMIDetails{
			TotalAmount:     e.EMIDetails.TotalAmount,
			MonthlyAmount:   e.EMIDetails.MonthlyAmount,
			RemainingMonths: e.EMIDetails.RemainingMonths,
			InterestRate:    e.EMIDetails.InterestRate,
		}
	}
	return dm
}

func FromDataModel(e *expenseDatamodel.Expense) *Expense {
	exp := &Expense{
		ID:           e.ID,
		FriendID:     e.FriendID,
		CreditCardID: e.CreditCardID,
		Description:  e.Description,
		Amount:       e.Amount,
		Tax:          e.Tax,
		Interest:     e.Interest,
		Category:     e.Category,
		IsEMI:        e.IsEMI,
		Status:       e.Status,
		ExpenseDate:  e.ExpenseDate,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
	if e.EMIDetails != nil {
		exp.EMIDetails = &EMIDetails{
			TotalAmount:     e.EMIDetails.TotalAmount,
			MonthlyAmount:   e.EMIDetails.MonthlyAmount,
			RemainingMonths: e.EMIDetails.RemainingMonths,
			InterestRate:    e.EMIDetails.InterestRate,
		}
	}
	return exp
}

func FromDataModelSlice(expenses []*expenseDatamodel.Expense) []*Expense {
	result := make([]*Expense, len(expenses))
	for i, e := range expenses {
		result[i] = FromDataModel(e)
	}
	return result
}
