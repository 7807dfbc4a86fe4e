package card

import (
	"errors"
	"strings"
	"time"

	cardDatamodel "github.com/karteek/splitcard/internal/core/datamodel/card"
)

type CreditCard struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Bank           string     `json:"bank"`
	LastFourDigits string     `json:"last_four_digits"`
	CreditLimit    float64    `json:"credit_limit"`
	CurrentBalance float64    `json:"current_balance"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	BillingDate    *time.Time `json:"billing_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// AvailableCredit is the limit remaining after the current balance.
func (c *CreditCard) AvailableCredit() float64 {
	remaining := c.CreditLimit - c.CurrentBalance
	if remaining < 0 {
		return 0
	}
	return remaining
}

type CreateCardDTO struct {
	Name           string     `json:"name"`
	Bank           string     `json:"bank"`
	LastFourDigits string     `json:"last_four_digits"`
	CreditLimit    float64    `json:"credit_limit"`
	CurrentBalance float64    `json:"current_balance"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	BillingDate    *time.Time `json:"billing_date,omitempty"`
}

func (dto CreateCardDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(dto.Bank) == "" {
		return errors.New("bank is required")
	}
	if len(dto.LastFourDigits) != 4 {
		return errors.New("last four digits must be exactly 4 characters")
	}
	for _, ch := range dto.LastFourDigits {
		if ch < '0' || ch > '9' {
			return errors.New("last four digits must be numeric")
		}
	}
	if dto.CreditLimit < 0 {
		return errors.New("credit limit cannot be negative")
	}
	if dto.CurrentBalance < 0 {
		return errors.New("current balance cannot be negative")
	}
	return nil
}

type UpdateCardDTO struct {
	Name           *string    `json:"name,omitempty"`
	Bank           *string    `json:"bank,omitempty"`
	CreditLimit    *float64   `json:"credit_limit,omitempty"`
	CurrentBalance *float64   `json:"current_balance,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	BillingDate    *time.Time `json:"billing_date,omitempty"`
}

func (dto UpdateCardDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if dto.CreditLimit != nil && *dto.CreditLimit < 0 {
		return errors.New("credit limit cannot be negative")
	}
	if dto.CurrentBalance != nil && *dto.CurrentBalance < 0 {
		return errors.New("current balance cannot be negative")
	}
	return nil
}

func FromDataModel(c *cardDatamodel.CreditCard) *CreditCard {
	return &CreditCard{
		ID:             c.ID,
		Name:           c.Name,
		Bank:           c.Bank,
		LastFourDigits: c.LastFourDigits,
		CreditLimit:    c.CreditLimit,
		CurrentBalance: c.CurrentBalance,
		DueDate:        c.DueDate,
		BillingDate:    c.BillingDate,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func FromDataModelSlice(cards []*cardDatamodel.CreditCard) []*CreditCard {
	result := make([]*CreditCard, len(cards))
	for i, c := range cards {
		result[i] = FromDataModel(c)
	}
	return result
}
