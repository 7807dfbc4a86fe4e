package postgres

import (
	"errors"

	"github.com/karteek/splitcard/internal/auth"
	userDatamodel "github.com/karteek/splitcard/internal/core/datamodel/user"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetCredentials(email string) (string, string, bool, error) {
	var u userDatamodel.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", "", false, errors.New("user not found")
		}
		return "", "", false, err
	}
	return u.PasswordHash, u.ID, u.IsActive, nil
}

func (r *Repository) GetUser(userID string) (*auth.User, error) {
	var u userDatamodel.User
	err := r.db.Where("id = ? AND is_active = ?", userID, true).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("user not found")
		}
		return nil, err
	}
	return &auth.User{ID: u.ID, Email: u.Email, Name: u.Name}, nil
}
