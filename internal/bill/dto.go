package bill

import (
	"errors"
	"strings"
	"time"
)

// UploadBillDTO is the free-text ingestion path: raw statement text to be
// run through the heuristic parser.
type UploadBillDTO struct {
	CreditCardID  string     `json:"credit_card_id"`
	StatementText string     `json:"statement_text"`
	BillDate      *time.Time `json:"bill_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	TotalAmount   *float64   `json:"total_amount,omitempty"`
}

func (dto *UploadBillDTO) Validate() error {
	if strings.TrimSpace(dto.CreditCardID) == "" {
		return errors.New("credit_card_id is required")
	}
	if strings.TrimSpace(dto.StatementText) == "" {
		return errors.New("statement_text is required")
	}
	if dto.TotalAmount != nil && *dto.TotalAmount < 0 {
		return errors.New("total_amount cannot be negative")
	}
	return nil
}

// ManualTransactionDTO is one caller-supplied statement line, bypassing
// the parser.
type ManualTransactionDTO struct {
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Category    string     `json:"category,omitempty"`
	Date        *time.Time `json:"date,omitempty"`
}

type CreateBillDTO struct {
	CreditCardID string                 `json:"credit_card_id"`
	BillDate     *time.Time             `json:"bill_date,omitempty"`
	DueDate      *time.Time             `json:"due_date,omitempty"`
	TotalAmount  *float64               `json:"total_amount,omitempty"`
	Transactions []ManualTransactionDTO `json:"transactions"`
}

func (dto *CreateBillDTO) Validate() error {
	if strings.TrimSpace(dto.CreditCardID) == "" {
		return errors.New("credit_card_id is required")
	}
	if len(dto.Transactions) == 0 {
		return errors.New("at least one transaction is required")
	}
	for _, t := range dto.Transactions {
		if strings.TrimSpace(t.Description) == "" {
			return errors.New("transaction description is required")
		}
		if t.Amount <= 0 {
			return errors.New("transaction amount must be greater than zero")
		}
	}
	if dto.TotalAmount != nil && *dto.TotalAmount < 0 {
		return errors.New("total_amount cannot be negative")
	}
	return nil
}

type AssignTransactionDTO struct {
	FriendID string `json:"friend_id"`
}

func (dto *AssignTransactionDTO) Validate() error {
	if strings.TrimSpace(dto.FriendID) == "" {
		return errors.New("friend_id is required")
	}
	return nil
}
