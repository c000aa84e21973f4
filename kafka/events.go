package kafka

import "time"

// PlanCreatedEvent is emitted when a payment plan has been persisted
type PlanCreatedEvent struct {
	EventID           string    `json:"event_id"`
	EventType         string    `json:"event_type"`
	PlanID            string    `json:"plan_id"`
	AccountID         string    `json:"account_id"`
	PaymentType       string    `json:"payment_type"`
	Principal         string    `json:"principal"`
	TotalWithCharges  string    `json:"total_with_charges"`
	Currency          string    `json:"currency"`
	TotalInstallments int       `json:"total_installments"`
	Timestamp         time.Time `json:"timestamp"`
}

// PaymentPaidEvent is emitted when a scheduled payment is settled
type PaymentPaidEvent struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	PlanID        string    `json:"plan_id"`
	PaymentID     string    `json:"payment_id"`
	PaymentNumber int       `json:"payment_number"`
	Amount        string    `json:"amount"`
	Currency      string    `json:"currency"`
	PlanStatus    string    `json:"plan_status"`
	Timestamp     time.Time `json:"timestamp"`
}

// PlanCompletedEvent is emitted when the last payment of a plan settles
type PlanCompletedEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	PlanID    string    `json:"plan_id"`
	AccountID string    `json:"account_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PlanCancelledEvent is emitted when a plan is cancelled
type PlanCancelledEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	PlanID    string    `json:"plan_id"`
	AccountID string    `json:"account_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentsOverdueEvent is emitted by the sweep when pending payments
// have crossed their due date
type PaymentsOverdueEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	MarkedCount int64     `json:"marked_count"`
	AsOf        time.Time `json:"as_of"`
	Timestamp   time.Time `json:"timestamp"`
}

// Event types
const (
	EventTypePlanCreated     = "plan.created"
	EventTypePaymentPaid     = "plan.payment_paid"
	EventTypePlanCompleted   = "plan.completed"
	EventTypePlanCancelled   = "plan.cancelled"
	EventTypePaymentsOverdue = "plan.payments_overdue"
)

// Kafka topics
const (
	TopicPlanEvents = "plan-events"
)
