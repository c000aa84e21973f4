package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the lifecycle state of a scheduled payment.
// OVERDUE is derived from (dueDate, status, now); the stored column is a
// cached projection refreshed by the sweep, never the source of truth.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusOverdue PaymentStatus = "OVERDUE"
	PaymentStatusPaid    PaymentStatus = "PAID"
)

// IsValid checks if the status is a known PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusOverdue, PaymentStatusPaid:
		return true
	}
	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

// PlanPayment is one scheduled payment of a plan. All payments of a plan are
// created together and are never deleted.
type PlanPayment struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;primaryKey"`
	PlanID         uuid.UUID       `json:"plan_id" gorm:"type:uuid;not null;index;uniqueIndex:idx_plan_payment_number,priority:1"`
	PaymentNumber  int             `json:"payment_number" gorm:"not null;uniqueIndex:idx_plan_payment_number,priority:2"`
	DueDate        time.Time       `json:"due_date" gorm:"not null;index"`
	Principal      decimal.Decimal `json:"principal_amount" gorm:"type:decimal(20,4);not null"`
	Fee            decimal.Decimal `json:"fee_amount" gorm:"type:decimal(20,4);not null"`
	Interest       decimal.Decimal `json:"interest_amount" gorm:"type:decimal(20,4);not null"`
	Total          decimal.Decimal `json:"total_amount" gorm:"type:decimal(20,4);not null"`
	RemainingAfter decimal.Decimal `json:"remaining_after" gorm:"type:decimal(20,4);not null"`
	Status         PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;index"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// TableName specifies the table name
func (PlanPayment) TableName() string {
	return "plan_payments"
}

// Unpaid reports whether the payment still awaits settlement
func (p *PlanPayment) Unpaid() bool {
	return p.Status != PaymentStatusPaid
}

// ObservedStatus derives the read-time status: an unpaid payment whose due
// date has passed is observed as OVERDUE regardless of the stored column.
func (p *PlanPayment) ObservedStatus(now time.Time) PaymentStatus {
	if p.Unpaid() && p.DueDate.Before(DateOf(now)) {
		return PaymentStatusOverdue
	}
	return p.Status
}
