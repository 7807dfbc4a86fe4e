package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/auth"
	"github.com/karteek/splitcard/internal/bill"
	"github.com/karteek/splitcard/internal/card"
	"github.com/karteek/splitcard/internal/category"
	"github.com/karteek/splitcard/internal/expense"
	"github.com/karteek/splitcard/internal/friend"
	"github.com/karteek/splitcard/internal/ledger"
	"github.com/karteek/splitcard/internal/transport/middleware"
	"github.com/karteek/splitcard/internal/transport/swagger"
	"github.com/karteek/splitcard/internal/user"
)

// Handlers bundles everything RegisterAllRoutes mounts. Nil entries are
// skipped, which keeps partial wiring possible in tests.
type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Category *category.Handler
	Friend   *friend.Handler
	Card     *card.Handler
	Expense  *expense.Handler
	Bill     *bill.Handler
	Ledger   *ledger.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, cfg *internal.Config, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	if cfg.Observability.Metrics.Enabled {
		router.Use(middleware.Metrics)
		router.Handle(cfg.Observability.Metrics.Path, middleware.MetricsHandler())
	}

	// OpenAPI spec and Swagger UI live outside the API prefix.
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if h.Auth != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", h.Auth.Login)
				sr.Post("/refresh", h.Auth.RefreshToken)
			})
		}

		if h.User != nil {
			r.Post("/signup", h.User.Signup)
		}

		// Category catalogue is public: it seeds client pickers before login.
		if h.Category != nil {
			r.Get("/categories", h.Category.GetCategories)
		}

		if h.Auth == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			if h.User != nil {
				pr.Get("/users/me", h.User.GetCurrentUser)
			}

			if h.Friend != nil {
				pr.Route("/friends", func(fr chi.Router) {
					fr.Post("/", h.Friend.CreateFriend)
					fr.Get("/", h.Friend.GetFriends)
					fr.Get("/{id}", h.Friend.GetFriend)
					fr.Patch("/{id}", h.Friend.UpdateFriend)
					fr.Delete("/{id}", h.Friend.DeleteFriend)
				})
			}

			if h.Card != nil {
				pr.Route("/cards", func(cr chi.Router) {
					cr.Post("/", h.Card.CreateCard)
					cr.Get("/", h.Card.GetCards)
					cr.Get("/{id}", h.Card.GetCard)
					cr.Patch("/{id}", h.Card.UpdateCard)
					cr.Delete("/{id}", h.Card.DeleteCard)
				})
			}

			if h.Expense != nil {
				pr.Route("/expenses", func(er chi.Router) {
					er.Post("/", h.Expense.CreateExpense)
					er.Get("/", h.Expense.GetExpenses)
					er.Get("/{id}", h.Expense.GetExpense)
					er.Patch("/{id}", h.Expense.UpdateExpense)
					er.Delete("/{id}", h.Expense.DeleteExpense)
					er.Patch("/{id}/pay", h.Expense.MarkAsPaid)
				})
			}

			if h.Bill != nil {
				pr.Route("/bills", func(br chi.Router) {
					br.Post("/upload", h.Bill.UploadBill)
					br.Post("/", h.Bill.CreateBill)
					br.Get("/", h.Bill.GetBills)
					br.Get("/{id}", h.Bill.GetBill)
					br.Patch("/{id}/transactions/{transactionID}/assign", h.Bill.AssignTransaction)
					br.Patch("/{id}/transactions/{transactionID}/ignore", h.Bill.IgnoreTransaction)
					br.Post("/{id}/finalize", h.Bill.FinalizeBill)
				})
			}

			if h.Ledger != nil {
				pr.Route("/ledger", func(lr chi.Router) {
					lr.Get("/summary", h.Ledger.GetSummary)
					lr.Get("/friends", h.Ledger.GetFriendSummaries)
				})
			}
		})
	})
}
