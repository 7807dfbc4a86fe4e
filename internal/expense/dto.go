package expense

import (
	"errors"
	"strings"
	"time"
)

type EMIDetailsDTO struct {
	TotalAmount     float64 `json:"total_amount"`
	MonthlyAmount   float64 `json:"monthly_amount"`
	RemainingMonths int     `json:"remaining_months"`
	InterestRate    float64 `json:"interest_rate"`
}

type CreateExpenseDTO struct {
	FriendID     string         `json:"friend_id"`
	CreditCardID string         `json:"credit_card_id"`
	Description  string         `json:"description"`
	Amount       float64        `json:"amount"`
	Tax          float64        `json:"tax"`
	Interest     float64        `json:"interest"`
	Category     string         `json:"category"`
	IsEMI        bool           `json:"is_emi"`
	EMIDetails   *EMIDetailsDTO `json:"emi_details,omitempty"`
	ExpenseDate  *time.Time     `json:"date,omitempty"`
}

func (dto *CreateExpenseDTO) Validate() error {
	if strings.TrimSpace(dto.FriendID) == "" {
		return errors.New("friend_id is required")
	}
	if strings.TrimSpace(dto.CreditCardID) == "" {
		return errors.New("credit_card_id is required")
	}
	if strings.TrimSpace(dto.Description) == "" {
		return errors.New("description is required")
	}
	if dto.Amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	if dto.Tax < 0 {
		return errors.New("tax cannot be negative")
	}
	if dto.Interest < 0 {
		return errors.New("interest cannot be negative")
	}
	if dto.IsEMI && dto.EMIDetails == nil {
		return errors.New("emi_details is required for EMI expenses")
	}
	if dto.EMIDetails != nil {
		if dto.EMIDetails.TotalAmount <= 0 {
			return errors.New("emi total_amount must be greater than zero")
		}
		if dto.EMIDetails.MonthlyAmount <= 0 {
			return errors.New("emi monthly_amount must be greater than zero")
		}
		if dto.EMIDetails.RemainingMonths < 0 {
			return errors.New("emi remaining_months cannot be negative")
		}
	}
	return nil
}

// UpdateExpenseDTO carries a partial patch. Nil fields are left untouched;
// a patch with no fields set is rejected.
type UpdateExpenseDTO struct {
	FriendID     *string        `json:"friend_id,omitempty"`
	CreditCardID *string        `json:"credit_card_id,omitempty"`
	Description  *string        `json:"description,omitempty"`
	Amount       *float64       `json:"amount,omitempty"`
	Tax          *float64       `json:"tax,omitempty"`
	Interest     *float64       `json:"interest,omitempty"`
	Category     *string        `json:"category,omitempty"`
	IsEMI        *bool          `json:"is_emi,omitempty"`
	EMIDetails   *EMIDetailsDTO `json:"emi_details,omitempty"`
	Status       *string        `json:"status,omitempty"`
	ExpenseDate  *time.Time     `json:"date,omitempty"`
}

func (dto *UpdateExpenseDTO) Validate() error {
	if dto.FriendID == nil && dto.CreditCardID == nil && dto.Description == nil &&
		dto.Amount == nil && dto.Tax == nil && dto.Interest == nil &&
		dto.Category == nil && dto.IsEMI == nil && dto.EMIDetails == nil &&
		dto.Status == nil && dto.ExpenseDate == nil {
		return errors.New("at least one field must be provided")
	}
	if dto.FriendID != nil && strings.TrimSpace(*dto.FriendID) == "" {
		return errors.New("friend_id cannot be empty")
	}
	if dto.CreditCardID != nil && strings.TrimSpace(*dto.CreditCardID) == "" {
		return errors.New("credit_card_id cannot be empty")
	}
	if dto.Description != nil && strings.TrimSpace(*dto.Description) == "" {
		return errors.New("description cannot be empty")
	}
	if dto.Amount != nil && *dto.Amount <= 0 {
		return errors.New("amount must be greater than zero")
	}
	if dto.Tax != nil && *dto.Tax < 0 {
		return errors.New("tax cannot be negative")
	}
	if dto.Interest != nil && *dto.Interest < 0 {
		return errors.New("interest cannot be negative")
	}
	if dto.Status != nil && !IsValidStatus(*dto.Status) {
		return errors.New("invalid status")
	}
	return nil
}
