package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a ledger entry. Expense amounts are stored positive with
// Type marking the direction.
//
// PlanID is the payment-plan claim: NULL means unclaimed, non-NULL means the
// transaction funds that plan. The plan repository writes it inside the plan
// creation transaction and clears it on cancellation.
type Transaction struct {
	ID          uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	AccountID   uuid.UUID       `json:"account_id" gorm:"type:uuid;not null;index"`
	Type        string          `json:"type" gorm:"type:varchar(20);not null;index"`
	Amount      decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	Currency    string          `json:"currency" gorm:"type:varchar(3);not null"`
	Description string          `json:"description" gorm:"type:varchar(255)"`
	OccurredAt  time.Time       `json:"occurred_at" gorm:"not null;index"`
	PlanID      *uuid.UUID      `json:"plan_id,omitempty" gorm:"type:uuid;index"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (Transaction) TableName() string {
	return "transactions"
}
