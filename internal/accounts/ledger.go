package accounts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/metrics"
)

// Entry describes one journal line to mirror onto a payment method's account.
type Entry struct {
	TenantID        uuid.UUID
	PaymentMethodID uuid.UUID
	Type            enums.TransactionType
	Amount          decimal.Decimal
	Description     string
	ReferenceType   enums.ReferenceType
	ReferenceID     uuid.UUID
	OccurredAt      time.Time
}

// Ledger mirrors money movements onto accounts inside the caller's
// transaction. Mirroring is best effort: a payment method without an account
// is skipped, never an error, so order bookkeeping can proceed regardless.
type Ledger interface {
	Record(ctx context.Context, tx *gorm.DB, entry Entry) (bool, error)
	Reverse(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, refType enums.ReferenceType, refID uuid.UUID) (bool, error)
}

type ledger struct {
	repo    Repository
	metrics *metrics.LedgerMetrics
}

// NewLedger builds the account mirroring ledger. Metrics may be nil.
func NewLedger(repo Repository, m *metrics.LedgerMetrics) (Ledger, error) {
	if repo == nil {
		return nil, errors.New("accounts repository required")
	}
	return &ledger{repo: repo, metrics: m}, nil
}

func (l *ledger) Record(ctx context.Context, tx *gorm.DB, entry Entry) (bool, error) {
	started := time.Now()
	applied, err := l.record(ctx, tx, entry)
	l.metrics.ObserveDuration("record", time.Since(started))
	switch {
	case err != nil:
		l.metrics.IncFailure("record")
	case applied:
		l.metrics.IncApplied("record")
	default:
		l.metrics.IncSkipped("record")
	}
	return applied, err
}

func (l *ledger) record(ctx context.Context, tx *gorm.DB, entry Entry) (bool, error) {
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for ledger record")
	}
	if entry.TenantID == uuid.Nil || entry.PaymentMethodID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "tenant and payment method required")
	}
	if !entry.Type.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "invalid transaction type")
	}
	if entry.Amount.LessThanOrEqual(decimal.Zero) {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "transaction amount must be positive")
	}

	repo := l.repo.WithTx(tx)
	account, err := repo.FindByPaymentMethodForUpdate(ctx, entry.TenantID, entry.PaymentMethodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load account")
	}

	occurredAt := entry.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}
	refID := entry.ReferenceID
	txn := &models.AccountTransaction{
		TenantID:      entry.TenantID,
		AccountID:     account.ID,
		Type:          entry.Type,
		Amount:        entry.Amount,
		Description:   entry.Description,
		ReferenceType: entry.ReferenceType,
		ReferenceID:   &refID,
		OccurredAt:    occurredAt,
	}
	txn.ID = uuid.New()
	if err := repo.CreateTransaction(ctx, txn); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write journal entry")
	}

	delta := entry.Amount
	if entry.Type == enums.TransactionTypeDebit {
		delta = delta.Neg()
	}
	if err := repo.AdjustBalance(ctx, account.ID, delta); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "adjust account balance")
	}
	return true, nil
}

func (l *ledger) Reverse(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, refType enums.ReferenceType, refID uuid.UUID) (bool, error) {
	started := time.Now()
	applied, err := l.reverse(ctx, tx, tenantID, refType, refID)
	l.metrics.ObserveDuration("reverse", time.Since(started))
	switch {
	case err != nil:
		l.metrics.IncFailure("reverse")
	case applied:
		l.metrics.IncApplied("reverse")
	default:
		l.metrics.IncSkipped("reverse")
	}
	return applied, err
}

func (l *ledger) reverse(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID, refType enums.ReferenceType, refID uuid.UUID) (bool, error) {
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for ledger reverse")
	}
	if tenantID == uuid.Nil || refID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "tenant and reference required")
	}

	repo := l.repo.WithTx(tx)
	txns, err := repo.FindTransactionsByReference(ctx, tenantID, refType, refID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load journal entries")
	}
	if len(txns) == 0 {
		return false, nil
	}

	for _, txn := range txns {
		delta := txn.Amount
		if txn.Type == enums.TransactionTypeCredit {
			delta = delta.Neg()
		}
		if err := repo.AdjustBalance(ctx, txn.AccountID, delta); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore account balance")
		}
		if err := repo.DeleteTransaction(ctx, txn.ID); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove journal entry")
		}
	}
	return true, nil
}
