package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/api/validators"
	"github.com/ordercash/ordercash-backend/internal/expenses"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

type expenseCreateRequest struct {
	SupplierID      *uuid.UUID      `json:"supplier_id,omitempty"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id" validate:"required"`
	Category        string          `json:"category,omitempty" validate:"omitempty,max=120"`
	Description     string          `json:"description" validate:"required,min=1,max=500"`
	Amount          decimal.Decimal `json:"amount" validate:"required"`
}

type expenseResponse struct {
	ID              uuid.UUID       `json:"id"`
	Number          int64           `json:"number"`
	SupplierID      *uuid.UUID      `json:"supplier_id,omitempty"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Category        string          `json:"category"`
	Description     string          `json:"description"`
	Amount          decimal.Decimal `json:"amount"`
	RegisteredBy    *uuid.UUID      `json:"registered_by,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type expenseListResponse struct {
	Expenses   []expenseResponse `json:"expenses"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func toExpenseResponse(expense *models.Expense) expenseResponse {
	return expenseResponse{
		ID:              expense.ID,
		Number:          expense.Number,
		SupplierID:      expense.SupplierID,
		PaymentMethodID: expense.PaymentMethodID,
		Category:        expense.Category,
		Description:     expense.Description,
		Amount:          expense.Amount,
		RegisteredBy:    expense.RegisteredBy,
		CreatedAt:       expense.CreatedAt,
	}
}

// ExpensesCreate registers an outgoing payment and debits the paying account.
func ExpensesCreate(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req expenseCreateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Create(r.Context(), expenses.CreateInput{
			TenantID:        tenantID,
			ActorID:         actorFromRequest(r),
			SupplierID:      req.SupplierID,
			PaymentMethodID: req.PaymentMethodID,
			Category:        validators.SanitizeString(req.Category, 120),
			Description:     validators.SanitizeString(req.Description, 500),
			Amount:          req.Amount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, toExpenseResponse(expense))
	}
}

// ExpensesGet returns one expense.
func ExpensesGet(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		expenseID, err := parseUUIDParam(r, "expenseID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		expense, err := svc.Get(r.Context(), tenantID, expenseID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toExpenseResponse(expense))
	}
}

// ExpensesList returns a cursor page of expenses, newest first.
func ExpensesList(svc expenses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "expenses service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := svc.List(r.Context(), tenantID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := expenseListResponse{
			Expenses:   make([]expenseResponse, 0, len(list.Expenses)),
			NextCursor: list.NextCursor,
		}
		for i := range list.Expenses {
			out.Expenses = append(out.Expenses, toExpenseResponse(&list.Expenses[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
