package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ordercash/ordercash-backend/api/responses"
	"github.com/ordercash/ordercash-backend/internal/accounts"
	"github.com/ordercash/ordercash-backend/pkg/db/models"
	"github.com/ordercash/ordercash-backend/pkg/enums"
	pkgerrors "github.com/ordercash/ordercash-backend/pkg/errors"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

type accountResponse struct {
	ID              uuid.UUID       `json:"id"`
	PaymentMethodID uuid.UUID       `json:"payment_method_id"`
	Name            string          `json:"name"`
	Balance         decimal.Decimal `json:"balance"`
	CreatedAt       time.Time       `json:"created_at"`
}

type accountTransactionResponse struct {
	ID            uuid.UUID             `json:"id"`
	Type          enums.TransactionType `json:"type"`
	Amount        decimal.Decimal       `json:"amount"`
	Description   string                `json:"description"`
	ReferenceType enums.ReferenceType   `json:"reference_type"`
	ReferenceID   *uuid.UUID            `json:"reference_id,omitempty"`
	OccurredAt    time.Time             `json:"occurred_at"`
}

type accountTransactionsResponse struct {
	Transactions []accountTransactionResponse `json:"transactions"`
	NextCursor   string                       `json:"next_cursor,omitempty"`
}

func toAccountResponse(account *models.Account) accountResponse {
	return accountResponse{
		ID:              account.ID,
		PaymentMethodID: account.PaymentMethodID,
		Name:            account.Name,
		Balance:         account.Balance,
		CreatedAt:       account.CreatedAt,
	}
}

// AccountsList returns every account for the tenant with its live balance.
func AccountsList(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.List(r.Context(), tenantID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]accountResponse, 0, len(rows))
		for i := range rows {
			out = append(out, toAccountResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AccountsGet returns one account.
func AccountsGet(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accountID, err := parseUUIDParam(r, "accountID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		account, err := svc.Get(r.Context(), tenantID, accountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, toAccountResponse(account))
	}
}

// AccountTransactions pages through an account's journal, newest first.
func AccountTransactions(svc accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "accounts service unavailable"))
			return
		}

		tenantID, err := tenantFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		accountID, err := parseUUIDParam(r, "accountID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListTransactions(r.Context(), accounts.ListTransactionsInput{
			TenantID:  tenantID,
			AccountID: accountID,
			Limit:     params.Limit,
			Cursor:    params.Cursor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := accountTransactionsResponse{
			Transactions: make([]accountTransactionResponse, 0, len(page.Transactions)),
			NextCursor:   page.NextCursor,
		}
		for _, txn := range page.Transactions {
			out.Transactions = append(out.Transactions, accountTransactionResponse{
				ID:            txn.ID,
				Type:          txn.Type,
				Amount:        txn.Amount,
				Description:   txn.Description,
				ReferenceType: txn.ReferenceType,
				ReferenceID:   txn.ReferenceID,
				OccurredAt:    txn.OccurredAt,
			})
		}
		responses.WriteSuccess(w, out)
	}
}
