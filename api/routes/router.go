package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ordercash/ordercash-backend/api/controllers"
	"github.com/ordercash/ordercash-backend/api/middleware"
	"github.com/ordercash/ordercash-backend/internal/accounts"
	"github.com/ordercash/ordercash-backend/internal/customers"
	"github.com/ordercash/ordercash-backend/internal/expenses"
	"github.com/ordercash/ordercash-backend/internal/orders"
	"github.com/ordercash/ordercash-backend/internal/paymentmethods"
	"github.com/ordercash/ordercash-backend/internal/payments"
	"github.com/ordercash/ordercash-backend/internal/suppliers"
	"github.com/ordercash/ordercash-backend/internal/tenants"
	"github.com/ordercash/ordercash-backend/pkg/authz"
	"github.com/ordercash/ordercash-backend/pkg/config"
	"github.com/ordercash/ordercash-backend/pkg/logger"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Tenants        tenants.Service
	Customers      customers.Service
	Suppliers      suppliers.Service
	PaymentMethods paymentmethods.Service
	Accounts       accounts.Service
	Orders         orders.Service
	Payments       payments.Service
	Expenses       expenses.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cacheP controllers.Pinger,
	metricsRegistry *prometheus.Registry,
	checker authz.Checker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, controllers.ReadinessDeps(dbP, cacheP)))
	})

	if metricsRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(metricsRegistry, promhttp.HandlerOpts{}))
	}

	guard := func(resource, action string) func(http.Handler) http.Handler {
		return middleware.Authorize(checker, resource, action, logg)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity(cfg.JWT, cfg.App.IsDev(), logg))

		r.Route("/tenants", func(r chi.Router) {
			r.With(guard("tenants", "provision")).Post("/", controllers.TenantsProvision(svcs.Tenants, logg))
			r.With(guard("tenants", "read")).Get("/me", controllers.TenantsGetCurrent(svcs.Tenants, logg))
		})

		r.Route("/customers", func(r chi.Router) {
			r.With(guard("customers", "write")).Post("/", controllers.CustomersCreate(svcs.Customers, logg))
			r.With(guard("customers", "read")).Get("/", controllers.CustomersList(svcs.Customers, logg))
			r.With(guard("customers", "read")).Get("/{customerID}", controllers.CustomersGet(svcs.Customers, logg))
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.With(guard("suppliers", "write")).Post("/", controllers.SuppliersCreate(svcs.Suppliers, logg))
			r.With(guard("suppliers", "read")).Get("/", controllers.SuppliersList(svcs.Suppliers, logg))
			r.With(guard("suppliers", "read")).Get("/{supplierID}", controllers.SuppliersGet(svcs.Suppliers, logg))
			r.With(guard("suppliers", "write")).Delete("/{supplierID}", controllers.SuppliersDelete(svcs.Suppliers, logg))
		})

		r.Route("/payment-methods", func(r chi.Router) {
			r.With(guard("payment_methods", "write")).Post("/", controllers.PaymentMethodsCreate(svcs.PaymentMethods, logg))
			r.With(guard("payment_methods", "read")).Get("/", controllers.PaymentMethodsList(svcs.PaymentMethods, logg))
			r.With(guard("payment_methods", "read")).Get("/{methodID}", controllers.PaymentMethodsGet(svcs.PaymentMethods, logg))
		})

		r.Route("/accounts", func(r chi.Router) {
			r.With(guard("accounts", "read")).Get("/", controllers.AccountsList(svcs.Accounts, logg))
			r.With(guard("accounts", "read")).Get("/{accountID}", controllers.AccountsGet(svcs.Accounts, logg))
			r.With(guard("accounts", "read")).Get("/{accountID}/transactions", controllers.AccountTransactions(svcs.Accounts, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(guard("orders", "write")).Post("/", controllers.OrdersCreate(svcs.Orders, logg))
			r.With(guard("orders", "read")).Get("/", controllers.OrdersList(svcs.Orders, logg))
			r.With(guard("orders", "read")).Get("/{orderID}", controllers.OrdersGet(svcs.Orders, logg))
			r.With(guard("orders", "write")).Put("/{orderID}/items", controllers.OrdersReplaceItems(svcs.Orders, logg))
			r.With(guard("orders", "cancel")).Post("/{orderID}/cancel", controllers.OrdersCancel(svcs.Orders, logg))
			r.With(guard("orders", "write")).Post("/{orderID}/operational-status", controllers.OrdersSetOperationalStatus(svcs.Orders, logg))
			r.With(guard("orders", "read")).Get("/{orderID}/history", controllers.OrdersHistory(svcs.Orders, logg))
			r.With(guard("payments", "write")).Post("/{orderID}/payments", controllers.PaymentsApply(svcs.Payments, logg))
			r.With(guard("payments", "read")).Get("/{orderID}/payments", controllers.PaymentsListByOrder(svcs.Payments, logg))
		})

		r.Route("/payments", func(r chi.Router) {
			r.With(guard("payments", "read")).Get("/{paymentID}", controllers.PaymentsGet(svcs.Payments, logg))
			r.With(guard("payments", "write")).Patch("/{paymentID}", controllers.PaymentsEdit(svcs.Payments, logg))
			r.With(guard("payments", "write")).Delete("/{paymentID}", controllers.PaymentsDelete(svcs.Payments, logg))
		})

		r.Route("/expenses", func(r chi.Router) {
			r.With(guard("expenses", "write")).Post("/", controllers.ExpensesCreate(svcs.Expenses, logg))
			r.With(guard("expenses", "read")).Get("/", controllers.ExpensesList(svcs.Expenses, logg))
			r.With(guard("expenses", "read")).Get("/{expenseID}", controllers.ExpensesGet(svcs.Expenses, logg))
		})
	})

	return r
}
