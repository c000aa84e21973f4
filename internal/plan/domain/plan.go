package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentType selects the scheduling algorithm for a plan
type PaymentType string

const (
	PaymentTypeInstallment PaymentType = "INSTALLMENT"
	PaymentTypeRevolving   PaymentType = "REVOLVING"
)

// IsValid checks if the payment type is known
func (t PaymentType) IsValid() bool {
	return t == PaymentTypeInstallment || t == PaymentTypeRevolving
}

// PlanStatus is the lifecycle state of a plan
type PlanStatus string

const (
	PlanStatusActive    PlanStatus = "ACTIVE"
	PlanStatusCompleted PlanStatus = "COMPLETED"
	PlanStatusCancelled PlanStatus = "CANCELLED"
)

// IsValid checks if the status is a known PlanStatus
func (s PlanStatus) IsValid() bool {
	switch s {
	case PlanStatusActive, PlanStatusCompleted, PlanStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true once no further payment mutation is permitted
func (s PlanStatus) IsTerminal() bool {
	return s == PlanStatusCompleted || s == PlanStatusCancelled
}

// PlanTransactionLink records which ledger transactions funded a plan.
// Link rows are immutable once written; they survive cancellation as audit.
type PlanTransactionLink struct {
	PlanID        uuid.UUID       `json:"plan_id" gorm:"type:uuid;primaryKey"`
	TransactionID uuid.UUID       `json:"transaction_id" gorm:"type:uuid;primaryKey"`
	Amount        decimal.Decimal `json:"amount" gorm:"type:decimal(20,4);not null"`
	Currency      string          `json:"currency" gorm:"type:varchar(3);not null"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TableName specifies the table name
func (PlanTransactionLink) TableName() string {
	return "plan_transaction_links"
}

// PaymentPlan is a credit card repayment plan: one or more expense
// transactions converted into a structured schedule of payments.
// Plans are never deleted, only cancelled.
type PaymentPlan struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	AccountID uuid.UUID `json:"account_id" gorm:"type:uuid;not null;index"`
	Currency  string    `json:"currency" gorm:"type:varchar(3);not null"`

	PaymentType        PaymentType     `json:"payment_type" gorm:"type:varchar(20);not null;index"`
	TotalInstallments  int             `json:"total_installments,omitempty"`
	InstallmentFeeRate decimal.Decimal `json:"installment_fee_rate" gorm:"type:decimal(8,6);not null"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment" gorm:"type:decimal(20,4);not null"`
	AnnualInterestRate decimal.Decimal `json:"annual_interest_rate" gorm:"type:decimal(8,6);not null"`

	OriginalAmount        decimal.Decimal `json:"original_amount" gorm:"type:decimal(20,4);not null"`
	TotalWithCharges      decimal.Decimal `json:"total_with_charges" gorm:"type:decimal(20,4);not null"`
	RemainingAmount       decimal.Decimal `json:"remaining_amount" gorm:"type:decimal(20,4);not null"`
	CompletedInstallments int             `json:"completed_installments"`
	Status                PlanStatus      `json:"status" gorm:"type:varchar(20);not null;index"`
	StartDate             time.Time       `json:"start_date" gorm:"not null"`
	NextPaymentDate       *time.Time      `json:"next_payment_date,omitempty"`

	// Version supports optimistic concurrency for callers outside the
	// row-locked repository path
	Version int64 `json:"version" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Payments []PlanPayment         `json:"payments,omitempty" gorm:"foreignKey:PlanID"`
	Links    []PlanTransactionLink `json:"links,omitempty" gorm:"foreignKey:PlanID"`
}

// TableName specifies the table name
func (PaymentPlan) TableName() string {
	return "payment_plans"
}

// NewPaymentPlan materializes a plan and its full payment set from a
// generated schedule. The plan starts ACTIVE with the balance untouched.
func NewPaymentPlan(accountID uuid.UUID, currency string, params PlanParameters, principal decimal.Decimal, schedule *Schedule, funding []TransactionInfo, startDate time.Time) *PaymentPlan {
	planID := uuid.New()

	payments := make([]PlanPayment, 0, len(schedule.Lines))
	for _, line := range schedule.Lines {
		payments = append(payments, PlanPayment{
			ID:             uuid.New(),
			PlanID:         planID,
			PaymentNumber:  line.Number,
			DueDate:        line.DueDate,
			Principal:      line.Principal,
			Fee:            line.Fee,
			Interest:       line.Interest,
			Total:          line.Total,
			RemainingAfter: line.RemainingAfter,
			Status:         PaymentStatusPending,
		})
	}

	links := make([]PlanTransactionLink, 0, len(funding))
	for _, txn := range funding {
		links = append(links, PlanTransactionLink{
			PlanID:        planID,
			TransactionID: txn.ID,
			Amount:        txn.Amount,
			Currency:      txn.Currency,
		})
	}

	firstDue := payments[0].DueDate

	plan := &PaymentPlan{
		ID:                 planID,
		AccountID:          accountID,
		Currency:           currency,
		PaymentType:        params.PaymentType,
		InstallmentFeeRate: params.InstallmentFeeRate,
		MonthlyPayment:     params.MonthlyPayment,
		AnnualInterestRate: params.AnnualInterestRate,
		OriginalAmount:     principal,
		TotalWithCharges:   schedule.TotalWithCharges,
		RemainingAmount:    schedule.TotalWithCharges,
		Status:             PlanStatusActive,
		StartDate:          startDate,
		NextPaymentDate:    &firstDue,
		Payments:           payments,
		Links:              links,
	}

	if params.PaymentType == PaymentTypeInstallment {
		plan.TotalInstallments = params.TotalInstallments
	} else {
		// Revolving plans derive their period count from the schedule
		plan.TotalInstallments = len(payments)
	}
	return plan
}

// PaymentByID finds a payment belonging to this plan
func (p *PaymentPlan) PaymentByID(paymentID uuid.UUID) *PlanPayment {
	for i := range p.Payments {
		if p.Payments[i].ID == paymentID {
			return &p.Payments[i]
		}
	}
	return nil
}

// ApplyPayment marks one payment as paid and cascades the plan-level state:
// balance decrement, installment counter, next due date, and the
// ACTIVE→COMPLETED transition when the last payment settles.
func (p *PaymentPlan) ApplyPayment(paymentID uuid.UUID, paidAt time.Time) (*PlanPayment, error) {
	if p.Status == PlanStatusCancelled {
		return nil, NewInvalidStateError("PLAN_CANCELLED", "cannot mark payments on a cancelled plan")
	}
	if p.Status == PlanStatusCompleted {
		return nil, NewInvalidStateError("PLAN_COMPLETED", "plan is already completed")
	}

	payment := p.PaymentByID(paymentID)
	if payment == nil {
		return nil, NewNotFoundError("PAYMENT_NOT_FOUND", "payment does not belong to this plan")
	}
	if payment.Status == PaymentStatusPaid {
		return nil, NewInvalidStateError("PAYMENT_ALREADY_PAID", "payment is already paid")
	}

	payment.Status = PaymentStatusPaid
	payment.PaidAt = &paidAt

	p.RemainingAmount = p.RemainingAmount.Sub(payment.Total)
	if p.RemainingAmount.IsNegative() {
		p.RemainingAmount = decimal.Zero
	}
	p.CompletedInstallments++

	p.recomputeNextPaymentDate()
	if p.NextPaymentDate == nil {
		p.Status = PlanStatusCompleted
	}
	return payment, nil
}

// Cancel transitions the plan to its terminal CANCELLED state. Payment rows
// keep their history as-is but stop mutating.
func (p *PaymentPlan) Cancel() error {
	if p.Status == PlanStatusCompleted {
		return NewInvalidStateError("PLAN_COMPLETED", "cannot cancel a completed plan")
	}
	if p.Status == PlanStatusCancelled {
		return NewInvalidStateError("PLAN_CANCELLED", "plan is already cancelled")
	}
	p.Status = PlanStatusCancelled
	p.NextPaymentDate = nil
	return nil
}

// recomputeNextPaymentDate sets the due date of the earliest unpaid payment,
// or nil when none remain
func (p *PaymentPlan) recomputeNextPaymentDate() {
	var next *time.Time
	for i := range p.Payments {
		payment := &p.Payments[i]
		if !payment.Unpaid() {
			continue
		}
		if next == nil || payment.DueDate.Before(*next) {
			due := payment.DueDate
			next = &due
		}
	}
	p.NextPaymentDate = next
}
