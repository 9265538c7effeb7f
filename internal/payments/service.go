package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/internal/accounts"
	"github.com/ordercash/ordercash-backend/internal/orders"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the payment lifecycle against order balances and the
// mirrored cash accounts. All three operations move the order balance and the
// account journal in one transaction.
type Service interface {
	Apply(ctx context.Context, input ApplyInput) (*models.Payment, error)
	Edit(ctx context.Context, input EditInput) (*models.Payment, error)
	Delete(ctx context.Context, input DeleteInput) error
	Get(ctx context.Context, tenantID, paymentID uuid.UUID) (*models.Payment, error)
	ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]models.Payment, error)
}

// ApplyInput records a received payment against an order.
type ApplyInput struct {
	TenantID        uuid.UUID
	ActorID         uuid.UUID
	OrderID         uuid.UUID
	PaymentMethodID uuid.UUID
	Amount          decimal.Decimal
	Notes           *string
}

// EditInput corrects a recorded payment; nil fields stay unchanged.
type EditInput struct {
	TenantID        uuid.UUID
	ActorID         uuid.UUID
	PaymentID       uuid.UUID
	Amount          *decimal.Decimal
	PaymentMethodID *uuid.UUID
	Notes           *string
}

// DeleteInput removes a recorded payment.
type DeleteInput struct {
	TenantID  uuid.UUID
	ActorID   uuid.UUID
	PaymentID uuid.UUID
}

type service struct {
	repo       Repository
	ordersRepo orders.Repository
	ledger     accounts.Ledger
	tx         txRunner
	metrics    *metrics.PaymentMetrics
}

// NewService builds a payments service with the required dependencies.
// Metrics may be nil.
func NewService(repo Repository, ordersRepo orders.Repository, ledger accounts.Ledger, tx txRunner, m *metrics.PaymentMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("account ledger required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:       repo,
		ordersRepo: ordersRepo,
		ledger:     ledger,
		tx:         tx,
		metrics:    m,
	}, nil
}

func (s *service) Apply(ctx context.Context, input ApplyInput) (*models.Payment, error) {
	if input.TenantID == uuid.Nil || input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and order id required")
	}
	if input.PaymentMethodID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method id required")
	}
	if input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	var created *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		if _, err := repo.FindPaymentMethod(ctx, input.TenantID, input.PaymentMethodID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
		}

		order, err := lockOrder(ctx, ordersRepo, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot take payments")
		}
		if input.Amount.GreaterThan(order.Balance) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment exceeds order balance").
				WithDetails(map[string]any{"balance": order.Balance})
		}

		payment := &models.Payment{
			TenantID:        input.TenantID,
			OrderID:         order.ID,
			PaymentMethodID: input.PaymentMethodID,
			Amount:          input.Amount,
			Notes:           input.Notes,
		}
		payment.ID = uuid.New()
		if input.ActorID != uuid.Nil {
			actor := input.ActorID
			payment.RegisteredBy = &actor
		}
		if _, err := repo.Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment")
		}

		balance := order.Balance.Sub(input.Amount)
		if err := s.rebalanceOrder(ctx, ordersRepo, order, balance, input.ActorID, nil); err != nil {
			return err
		}

		if _, err := s.ledger.Record(ctx, tx, accounts.Entry{
			TenantID:        input.TenantID,
			PaymentMethodID: input.PaymentMethodID,
			Type:            enums.TransactionTypeCredit,
			Amount:          input.Amount,
			Description:     fmt.Sprintf("payment on order #%d", order.Number),
			ReferenceType:   enums.ReferenceTypePayment,
			ReferenceID:     payment.ID,
		}); err != nil {
			return err
		}

		created = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncApplied()
	return created, nil
}

func (s *service) Edit(ctx context.Context, input EditInput) (*models.Payment, error) {
	if input.TenantID == uuid.Nil || input.PaymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and payment id required")
	}
	if input.Amount == nil && input.PaymentMethodID == nil && input.Notes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nothing to edit")
	}
	if input.Amount != nil && input.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}

	var updated *models.Payment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		payment, err := lockPayment(ctx, repo, input.TenantID, input.PaymentID)
		if err != nil {
			return err
		}

		newAmount := payment.Amount
		if input.Amount != nil {
			newAmount = *input.Amount
		}
		newMethodID := payment.PaymentMethodID
		if input.PaymentMethodID != nil {
			newMethodID = *input.PaymentMethodID
			if _, err := repo.FindPaymentMethod(ctx, input.TenantID, newMethodID); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment method")
			}
		}

		order, err := lockOrder(ctx, ordersRepo, input.TenantID, payment.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot be edited")
		}
		// The new amount cannot exceed what the order could ever owe.
		if newAmount.GreaterThan(order.Balance.Add(payment.Amount)) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "payment exceeds order balance").
				WithDetails(map[string]any{"balance": order.Balance})
		}

		delta := newAmount.Sub(payment.Amount)
		if !delta.IsZero() {
			balance := order.Balance.Sub(delta)
			if err := s.rebalanceOrder(ctx, ordersRepo, order, balance, input.ActorID, nil); err != nil {
				return err
			}
		}

		// Amount corrections adjust the account that originally took the
		// money. Reassigning the payment's method does not move historical
		// balance between accounts.
		if !delta.IsZero() {
			if _, err := s.ledger.Reverse(ctx, tx, input.TenantID, enums.ReferenceTypePayment, payment.ID); err != nil {
				return err
			}
			if _, err := s.ledger.Record(ctx, tx, accounts.Entry{
				TenantID:        input.TenantID,
				PaymentMethodID: payment.PaymentMethodID,
				Type:            enums.TransactionTypeCredit,
				Amount:          newAmount,
				Description:     fmt.Sprintf("payment on order #%d (edited)", order.Number),
				ReferenceType:   enums.ReferenceTypePayment,
				ReferenceID:     payment.ID,
			}); err != nil {
				return err
			}
		}

		updates := map[string]any{
			"amount":            newAmount,
			"payment_method_id": newMethodID,
		}
		if input.Notes != nil {
			updates["notes"] = *input.Notes
		}
		if err := repo.Update(ctx, payment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment")
		}

		payment.Amount = newAmount
		payment.PaymentMethodID = newMethodID
		if input.Notes != nil {
			payment.Notes = input.Notes
		}
		updated = payment
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncEdited()
	return updated, nil
}

func (s *service) Delete(ctx context.Context, input DeleteInput) error {
	if input.TenantID == uuid.Nil || input.PaymentID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant and payment id required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ordersRepo := s.ordersRepo.WithTx(tx)

		payment, err := lockPayment(ctx, repo, input.TenantID, input.PaymentID)
		if err != nil {
			return err
		}
		order, err := lockOrder(ctx, ordersRepo, input.TenantID, payment.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot be edited")
		}

		balance := order.Balance.Add(payment.Amount)
		reason := "payment deleted"
		if err := s.rebalanceOrder(ctx, ordersRepo, order, balance, input.ActorID, &reason); err != nil {
			return err
		}

		if _, err := s.ledger.Reverse(ctx, tx, input.TenantID, enums.ReferenceTypePayment, payment.ID); err != nil {
			return err
		}
		if err := repo.Delete(ctx, payment.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete payment")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.IncDeleted()
	return nil
}

func (s *service) Get(ctx context.Context, tenantID, paymentID uuid.UUID) (*models.Payment, error) {
	if tenantID == uuid.Nil || paymentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and payment id required")
	}
	payment, err := s.repo.FindByID(ctx, tenantID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}

func (s *service) ListByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]models.Payment, error) {
	if tenantID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and order id required")
	}
	payments, err := s.repo.ListByOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return payments, nil
}

// rebalanceOrder writes the new balance and settles the commercial status,
// recording a history row when the status flips.
func (s *service) rebalanceOrder(ctx context.Context, ordersRepo orders.Repository, order *models.Order, balance decimal.Decimal, actorID uuid.UUID, reason *string) error {
	updates := map[string]any{
		"balance": balance,
	}
	nextStatus := orders.SettleStatus(order.Status, balance)
	if nextStatus != order.Status {
		updates["status"] = nextStatus
		if nextStatus == enums.OrderStatusCompleted {
			updates["completed_at"] = time.Now().UTC()
		} else {
			updates["completed_at"] = nil
		}
		entry := &models.OrderStatusHistory{
			TenantID:   order.TenantID,
			OrderID:    order.ID,
			Field:      "status",
			FromStatus: string(order.Status),
			ToStatus:   string(nextStatus),
			Reason:     reason,
		}
		entry.ID = uuid.New()
		if actorID != uuid.Nil {
			actor := actorID
			entry.ActorID = &actor
		}
		if err := ordersRepo.CreateStatusHistory(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record status change")
		}
	}
	if err := ordersRepo.Update(ctx, order.ID, updates); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order balance")
	}
	order.Balance = balance
	order.Status = nextStatus
	return nil
}

func lockOrder(ctx context.Context, ordersRepo orders.Repository, tenantID, orderID uuid.UUID) (*models.Order, error) {
	order, err := ordersRepo.FindByIDForUpdate(ctx, tenantID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func lockPayment(ctx context.Context, repo Repository, tenantID, paymentID uuid.UUID) (*models.Payment, error) {
	payment, err := repo.FindByIDForUpdate(ctx, tenantID, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
	}
	return payment, nil
}
