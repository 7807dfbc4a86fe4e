package bill

import (
	"time"

	billDatamodel "github.com/karteek/splitcard/internal/core/datamodel/bill"
)

// Processed bill statuses.
const (
	BillStatusPending            = "pending"
	BillStatusPartiallyProcessed = "partially_processed"
	BillStatusProcessed          = "processed"
)

// Per-transaction statuses. Ignored is terminal: an ignored line is
// excluded from totals and from the fully-processed check, and cannot be
// assigned afterwards.
const (
	TransactionStatusUnassigned = "unassigned"
	TransactionStatusAssigned   = "assigned"
	TransactionStatusIgnored    = "ignored"
)

// DueDateOffset is how long after the bill date payment is due when the
// statement does not say.
const DueDateOffset = 30 * 24 * time.Hour

type Transaction struct {
	ID               string    `json:"id"`
	Position         int       `json:"position"`
	Description      string    `json:"description"`
	Amount           float64   `json:"amount"`
	Category         string    `json:"category"`
	Status           string    `json:"status"`
	AssignedFriendID *string   `json:"assigned_friend_id,omitempty"`
	Converted        bool      `json:"converted"`
	TransactionDate  time.Time `json:"date"`
}

type ProcessedBill struct {
	ID           string        `json:"id"`
	CreditCardID string        `json:"credit_card_id"`
	BillDate     time.Time     `json:"bill_date"`
	DueDate      time.Time     `json:"due_date"`
	TotalAmount  float64       `json:"total_amount"`
	Status       string        `json:"status"`
	Transactions []Transaction `json:"transactions"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// RecomputeStatus derives the bill status from its transactions. Ignored
// lines do not count against completion; a bill whose every line is
// ignored still ends up processed.
func (b *ProcessedBill) RecomputeStatus() {
	var unassigned, converted int
	for _, t := range b.Transactions {
		switch t.Status {
		case TransactionStatusUnassigned:
			unassigned++
		case TransactionStatusAssigned:
			if t.Converted {
				converted++
			}
		}
	}
	switch {
	case unassigned == 0 && allAssignedConverted(b.Transactions):
		b.Status = BillStatusProcessed
	case converted > 0:
		b.Status = BillStatusPartiallyProcessed
	default:
		b.Status = BillStatusPending
	}
}

func allAssignedConverted(transactions []Transaction) bool {
	for _, t := range transactions {
		if t.Status == TransactionStatusAssigned && !t.Converted {
			return false
		}
	}
	return true
}

func FromDataModel(dm *billDatamodel.ProcessedBill) *ProcessedBill {
	b := &ProcessedBill{
		ID:           dm.ID,
		CreditCardID: dm.CreditCardID,
		BillDate:     dm.BillDate,
		DueDate:      dm.DueDate,
		TotalAmount:  dm.TotalAmount,
		Status:       dm.Status,
		CreatedAt:    dm.CreatedAt,
		UpdatedAt:    dm.UpdatedAt,
	}
	b.Transactions = make([]Transaction, len(dm.Transactions))
	for i, t := range dm.Transactions {
		b.Transactions[i] = Transaction{
			ID:               t.ID,
			Position:         t.Position,
			Description:      t.Description,
			Amount:           t.Amount,
			Category:         t.Category,
			Status:           t.Status,
			AssignedFriendID: t.AssignedFriendID,
			Converted:        t.Converted,
			TransactionDate:  t.TransactionDate,
		}
	}
	return b
}

func FromDataModelSlice(dms []*billDatamodel.ProcessedBill) []*ProcessedBill {
	bills := make([]*ProcessedBill, len(dms))
	for i, dm := range dms {
		bills[i] = FromDataModel(dm)
	}
	return bills
}
