package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/ordercash/ordercash-backend/internal/sequence"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/metrics"
	"github.com/ordercash/ordercash-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Order, error)
	Get(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error)
	List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error)
	ReplaceItems(ctx context.Context, input ReplaceItemsInput) (*models.Order, error)
	Cancel(ctx context.Context, input CancelInput) error
	SetOperationalStatus(ctx context.Context, input SetOperationalStatusInput) (*models.Order, error)
	History(ctx context.Context, tenantID, orderID uuid.UUID) ([]models.OrderStatusHistory, error)
}

type service struct {
	repo       Repository
	tx         txRunner
	seq        sequence.Allocator
	metrics    *metrics.OrderMetrics
	seqRetries int
}

// NewService builds an orders service with the required dependencies.
// Metrics may be nil.
func NewService(repo Repository, tx txRunner, seq sequence.Allocator, m *metrics.OrderMetrics, seqRetries int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if seq == nil {
		return nil, fmt.Errorf("sequence allocator required")
	}
	if seqRetries <= 0 {
		seqRetries = 3
	}
	return &service{
		repo:       repo,
		tx:         tx,
		seq:        seq,
		metrics:    m,
		seqRetries: seqRetries,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Order, error) {
	if input.TenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.TaxRate.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tax rate cannot be negative")
	}
	if input.Discount.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount cannot be negative")
	}
	items, subtotal, err := buildItems(input.TenantID, input.Items)
	if err != nil {
		return nil, err
	}
	taxAmount, total := computeTotals(subtotal, input.TaxRate, input.Discount)
	if total.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order value")
	}

	var created *models.Order
	for attempt := 0; attempt < s.seqRetries; attempt++ {
		created = nil
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			number, err := s.seq.Next(ctx, tx, input.TenantID, enums.SequenceSeriesOrders)
			if err != nil {
				return err
			}

			order := &models.Order{
				TenantID:          input.TenantID,
				Number:            number,
				CustomerID:        input.CustomerID,
				Status:            enums.OrderStatusActive,
				OperationalStatus: enums.OperationalStatusPending,
				Subtotal:          subtotal,
				TaxRate:           input.TaxRate,
				TaxAmount:         taxAmount,
				Discount:          input.Discount,
				Total:             total,
				Balance:           total,
				Notes:             input.Notes,
			}
			order.ID = uuid.New()
			if input.ActorID != uuid.Nil {
				actor := input.ActorID
				order.RegisteredBy = &actor
			}
			if _, err := repo.Create(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}

			for i := range items {
				items[i].OrderID = order.ID
			}
			if err := repo.CreateItems(ctx, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
			}
			if err := recordStatusChange(ctx, repo, order, "status", "", string(enums.OrderStatusActive), input.ActorID, nil); err != nil {
				return err
			}

			order.Items = items
			created = order
			return nil
		})
		if err == nil || pkgerrors.As(err).Code() != pkgerrors.CodeConflict {
			break
		}
		s.metrics.IncSequenceConflict()
	}
	if err != nil {
		return nil, err
	}
	s.metrics.IncCreated()
	return created, nil
}

func (s *service) Get(ctx context.Context, tenantID, orderID uuid.UUID) (*models.Order, error) {
	if tenantID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and order id required")
	}
	order, err := s.repo.FindByID(ctx, tenantID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, params pagination.Params, filters ListFilters) (*OrderList, error) {
	if tenantID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant id required")
	}
	list, err := s.repo.List(ctx, tenantID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) ReplaceItems(ctx context.Context, input ReplaceItemsInput) (*models.Order, error) {
	if input.TenantID == uuid.Nil || input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and order id required")
	}
	items, subtotal, err := buildItems(input.TenantID, input.Items)
	if err != nil {
		return nil, err
	}

	var updated *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := lockOrder(ctx, repo, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot be edited")
		}

		taxAmount, total := computeTotals(subtotal, order.TaxRate, order.Discount)
		if total.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "discount exceeds order value")
		}

		// Rebase against what has actually been paid; a balance never goes
		// below zero when items shrink under the paid amount.
		paid := order.Total.Sub(order.Balance)
		balance := total.Sub(paid)
		if balance.IsNegative() {
			balance = decimal.Zero
		}

		updates := map[string]any{
			"subtotal":   subtotal,
			"tax_amount": taxAmount,
			"total":      total,
			"balance":    balance,
		}
		nextStatus := SettleStatus(order.Status, balance)
		if nextStatus != order.Status {
			applyStatusChange(updates, nextStatus)
			if err := recordStatusChange(ctx, repo, order, "status", string(order.Status), string(nextStatus), input.ActorID, nil); err != nil {
				return err
			}
			s.observeStatusChange(nextStatus)
		}

		if err := repo.DeleteItems(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove order items")
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order totals")
		}

		order.Subtotal = subtotal
		order.TaxAmount = taxAmount
		order.Total = total
		order.Balance = balance
		order.Status = nextStatus
		order.Items = items
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	if input.TenantID == uuid.Nil || input.OrderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "tenant and order id required")
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cancellation reason required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := lockOrder(ctx, repo, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return nil
		}

		count, err := repo.CountPayments(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count payments")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "orders with payments cannot be cancelled")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":              enums.OrderStatusCancelled,
			"balance":             decimal.Zero,
			"cancellation_reason": reason,
			"cancelled_at":        now,
		}
		if err := recordStatusChange(ctx, repo, order, "status", string(order.Status), string(enums.OrderStatusCancelled), input.ActorID, &reason); err != nil {
			return err
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.IncCancelled()
	return nil
}

func (s *service) SetOperationalStatus(ctx context.Context, input SetOperationalStatusInput) (*models.Order, error) {
	if input.TenantID == uuid.Nil || input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and order id required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown operational status")
	}

	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := lockOrder(ctx, repo, input.TenantID, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusCancelled {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cancelled orders cannot move through the pipeline")
		}
		if order.OperationalStatus == input.Target {
			updated = order
			return nil
		}
		if !order.OperationalStatus.CanStepTo(input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "pipeline moves one step at a time")
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"operational_status": input.Target,
		}
		if input.Target == enums.OperationalStatusDelivered {
			updates["delivered_at"] = now
		} else if order.OperationalStatus == enums.OperationalStatusDelivered {
			updates["delivered_at"] = nil
		}
		if err := recordStatusChange(ctx, repo, order, "operational_status", string(order.OperationalStatus), string(input.Target), input.ActorID, nil); err != nil {
			return err
		}

		// Delivery closes the order once nothing is owed.
		nextStatus := order.Status
		if input.Target == enums.OperationalStatusDelivered {
			nextStatus = SettleStatus(order.Status, order.Balance)
		}
		if nextStatus != order.Status {
			applyStatusChange(updates, nextStatus)
			if err := recordStatusChange(ctx, repo, order, "status", string(order.Status), string(nextStatus), input.ActorID, nil); err != nil {
				return err
			}
			s.observeStatusChange(nextStatus)
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update operational status")
		}

		order.OperationalStatus = input.Target
		order.Status = nextStatus
		if input.Target == enums.OperationalStatusDelivered {
			order.DeliveredAt = &now
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) History(ctx context.Context, tenantID, orderID uuid.UUID) ([]models.OrderStatusHistory, error) {
	if tenantID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tenant and order id required")
	}
	entries, err := s.repo.FindStatusHistory(ctx, tenantID, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status history")
	}
	return entries, nil
}

func (s *service) observeStatusChange(next enums.OrderStatus) {
	switch next {
	case enums.OrderStatusCompleted:
		s.metrics.IncCompleted()
	case enums.OrderStatusActive:
		s.metrics.IncReopened()
	}
}

func buildItems(tenantID uuid.UUID, inputs []ItemInput) ([]models.OrderItem, decimal.Decimal, error) {
	if len(inputs) == 0 {
		return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "at least one item required")
	}

	items := make([]models.OrderItem, 0, len(inputs))
	subtotal := decimal.Zero
	for _, in := range inputs {
		description := strings.TrimSpace(in.Description)
		if description == "" {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item description required")
		}
		if in.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be positive")
		}
		if in.UnitPrice.IsNegative() {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "item unit price cannot be negative")
		}
		amount := in.Quantity.Mul(in.UnitPrice).Round(2)
		item := models.OrderItem{
			TenantID:    tenantID,
			Description: description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			Amount:      amount,
		}
		item.ID = uuid.New()
		items = append(items, item)
		subtotal = subtotal.Add(amount)
	}
	return items, subtotal, nil
}

func computeTotals(subtotal, taxRate, discount decimal.Decimal) (taxAmount, total decimal.Decimal) {
	taxAmount = subtotal.Mul(taxRate).Round(2)
	total = subtotal.Add(taxAmount).Sub(discount)
	return taxAmount, total
}

// SettleStatus resolves the commercial status against the balance: a paid-off
// order completes, a completed order with money newly owed reopens. Cancelled
// orders never move.
func SettleStatus(current enums.OrderStatus, balance decimal.Decimal) enums.OrderStatus {
	switch current {
	case enums.OrderStatusActive:
		if balance.LessThanOrEqual(decimal.Zero) {
			return enums.OrderStatusCompleted
		}
	case enums.OrderStatusCompleted:
		if balance.GreaterThan(decimal.Zero) {
			return enums.OrderStatusActive
		}
	}
	return current
}

func applyStatusChange(updates map[string]any, next enums.OrderStatus) {
	updates["status"] = next
	if next == enums.OrderStatusCompleted {
		updates["completed_at"] = time.Now().UTC()
	} else {
		updates["completed_at"] = nil
	}
}

func lockOrder(ctx context.Context, repo Repository, tenantID, orderID uuid.UUID) (*models.Order, error) {
	order, err := repo.FindByIDForUpdate(ctx, tenantID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func recordStatusChange(ctx context.Context, repo Repository, order *models.Order, field, from, to string, actorID uuid.UUID, reason *string) error {
	entry := &models.OrderStatusHistory{
		TenantID:   order.TenantID,
		OrderID:    order.ID,
		Field:      field,
		FromStatus: from,
		ToStatus:   to,
		Reason:     reason,
	}
	entry.ID = uuid.New()
	if actorID != uuid.Nil {
		actor := actorID
		entry.ActorID = &actor
	}
	if err := repo.CreateStatusHistory(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record status change")
	}
	return nil
}
