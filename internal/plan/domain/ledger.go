package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountType classifies ledger accounts
type AccountType string

const (
	AccountTypeCreditCard AccountType = "CREDIT_CARD"
	AccountTypeChecking   AccountType = "CHECKING"
	AccountTypeSavings    AccountType = "SAVINGS"
	AccountTypeCash       AccountType = "CASH"
)

// TransactionType classifies ledger transactions
type TransactionType string

const (
	TransactionTypeExpense  TransactionType = "EXPENSE"
	TransactionTypeIncome   TransactionType = "INCOME"
	TransactionTypeTransfer TransactionType = "TRANSFER"
)

// TransactionInfo is the plan engine's read view of a ledger transaction
type TransactionInfo struct {
	ID        uuid.UUID
	AccountID uuid.UUID
	Amount    decimal.Decimal
	Currency  string
	Type      TransactionType
	PlanID    *uuid.UUID
}

// AlreadyPlanned reports whether the transaction is claimed by a plan
func (t TransactionInfo) AlreadyPlanned() bool {
	return t.PlanID != nil
}

// AccountInfo is the plan engine's read view of a ledger account
type AccountInfo struct {
	ID   uuid.UUID
	Type AccountType
}

// LedgerDirectory looks up transactions and accounts owned by the ledger.
// The plan engine only reads through it; the transaction→plan linkage is
// written by the plan repository inside the plan creation transaction.
type LedgerDirectory interface {
	TransactionByID(ctx context.Context, id uuid.UUID) (*TransactionInfo, error)
	AccountByID(ctx context.Context, id uuid.UUID) (*AccountInfo, error)
}
