package friend

import (
	"errors"
	"strings"
	"time"

	friendDatamodel "github.com/karteek/splitcard/internal/core/datamodel/friend"
)

type Friend struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	TotalOwed float64   `json:"total_owed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateFriendDTO struct {
	Name   string  `json:"name"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

func (dto CreateFriendDTO) Validate() error {
	if strings.TrimSpace(dto.Name) == "" {
		return errors.New("name is required")
	}
	if dto.Email != nil && !strings.Contains(*dto.Email, "@") {
		return errors.New("email is invalid")
	}
	return nil
}

// UpdateFriendDTO is a partial patch; nil fields are left untouched.
// TotalOwed is deliberately absent: it is derived state and only the
// ledger recompute may write it.
type UpdateFriendDTO struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}

func (dto UpdateFriendDTO) Validate() error {
	if dto.Name != nil && strings.TrimSpace(*dto.Name) == "" {
		return errors.New("name cannot be empty")
	}
	return nil
}

func FromDataModel(f *friendDatamodel.Friend) *Friend {
	return &Friend{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Avatar:    f.Avatar,
		TotalOwed: f.TotalOwed,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

func FromDataModelSlice(friends []*friendDatamodel.Friend) []*Friend {
	result := make([]*Friend, len(friends))
	for i, f := range friends {
		result[i] = FromDataModel(f)
	}
	return result
}
