package friend

import "time"

// Friend is a person who can owe money to the owning user.
//
// TotalOwed is a denormalized materialized view over the friend's non-paid
// expenses. It is recomputed from the expense table after every expense
// mutation, never trusted incrementally.
type Friend struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	UserID    string    `gorm:"column:user_id;type:uuid;not null;index"`
	Name      string    `gorm:"not null"`
	Email     *string   `gorm:"column:email"`
	Avatar    *string   `gorm:"column:avatar"`
	TotalOwed float64   `gorm:"column:total_owed;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Friend) TableName() string {
	return "friends"
}
