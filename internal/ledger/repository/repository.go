package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	ledgerdomain "github.com/lienduong188/finance-tracker-sub000/internal/ledger/domain"
	plandomain "github.com/lienduong188/finance-tracker-sub000/internal/plan/domain"
)

// GormLedgerDirectory reads accounts and transactions for the plan engine.
// Implements plandomain.LedgerDirectory.
type GormLedgerDirectory struct {
	db *gorm.DB
}

// NewGormLedgerDirectory creates a new ledger directory
func NewGormLedgerDirectory(db *gorm.DB) *GormLedgerDirectory {
	return &GormLedgerDirectory{db: db}
}

func (r *GormLedgerDirectory) AutoMigrate() error {
	return r.db.AutoMigrate(&ledgerdomain.Account{}, &ledgerdomain.Transaction{})
}

// TransactionByID looks up a single transaction
func (r *GormLedgerDirectory) TransactionByID(ctx context.Context, id uuid.UUID) (*plandomain.TransactionInfo, error) {
	var txn ledgerdomain.Transaction
	err := r.db.WithContext(ctx).First(&txn, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, plandomain.NewNotFoundError("TRANSACTION_NOT_FOUND", "transaction not found")
		}
		return nil, plandomain.NewInfrastructureError("LEDGER_READ_FAILED", "failed to load transaction", err)
	}

	return &plandomain.TransactionInfo{
		ID:        txn.ID,
		AccountID: txn.AccountID,
		Amount:    txn.Amount,
		Currency:  txn.Currency,
		Type:      plandomain.TransactionType(txn.Type),
		PlanID:    txn.PlanID,
	}, nil
}

// AccountByID looks up a single account
func (r *GormLedgerDirectory) AccountByID(ctx context.Context, id uuid.UUID) (*plandomain.AccountInfo, error) {
	var account ledgerdomain.Account
	err := r.db.WithContext(ctx).First(&account, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, plandomain.NewNotFoundError("ACCOUNT_NOT_FOUND", "account not found")
		}
		return nil, plandomain.NewInfrastructureError("LEDGER_READ_FAILED", "failed to load account", err)
	}

	return &plandomain.AccountInfo{
		ID:   account.ID,
		Type: plandomain.AccountType(account.Type),
	}, nil
}
