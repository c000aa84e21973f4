package domain

import (
	"time"

	"github.com/google/uuid"
)

// Account is a tracker account (credit card, checking, savings, cash).
// The plan engine only reads accounts; CRUD lives elsewhere in the tracker.
type Account struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null"`
	Type      string    `json:"type" gorm:"type:varchar(20);not null;index"`
	Currency  string    `json:"currency" gorm:"type:varchar(3);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name
func (Account) TableName() string {
	return "accounts"
}
