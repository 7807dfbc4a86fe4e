package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/karteek/splitcard/internal"
	"github.com/karteek/splitcard/internal/auth"
	authPostgres "github.com/karteek/splitcard/internal/auth/postgres"
	"github.com/karteek/splitcard/internal/bill"
	billPostgres "github.com/karteek/splitcard/internal/bill/postgres"
	"github.com/karteek/splitcard/internal/card"
	cardPostgres "github.com/karteek/splitcard/internal/card/postgres"
	"github.com/karteek/splitcard/internal/category"
	categoryPostgres "github.com/karteek/splitcard/internal/category/postgres"
	"github.com/karteek/splitcard/internal/core/events"
	"github.com/karteek/splitcard/internal/expense"
	expensePostgres "github.com/karteek/splitcard/internal/expense/postgres"
	"github.com/karteek/splitcard/internal/friend"
	friendPostgres "github.com/karteek/splitcard/internal/friend/postgres"
	"github.com/karteek/splitcard/internal/ledger"
	"github.com/karteek/splitcard/internal/transport/middleware"
	"github.com/karteek/splitcard/internal/transport/rest"
	"github.com/karteek/splitcard/internal/user"
	userPostgres "github.com/karteek/splitcard/internal/user/postgres"
	"github.com/karteek/splitcard/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(os.Getenv("APP_ENV"))
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm shares the sqlx pool rather than opening a second one.
	gormDB, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(lg)
	registerEventSubscribers(bus, lg)

	tokenGen := auth.NewJWTTokenGenerator(
		config.Security.AccessTokenSecret,
		config.Security.RefreshTokenSecret,
		config.Security.AccessTokenDuration,
		config.Security.RefreshTokenDuration,
	)
	authService := auth.NewService(authPostgres.NewRepository(gormDB), tokenGen)
	userService := user.NewService(userPostgres.NewUserRepository(gormDB), config.Security.BCryptCost, lg)
	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(gormDB), lg)
	friendService := friend.NewService(friendPostgres.NewFriendRepository(gormDB), bus, lg)
	cardService := card.NewService(cardPostgres.NewCardRepository(gormDB), bus, lg)

	refRepo := expensePostgres.NewReferenceRepository(gormDB)
	expenseService := expense.NewService(expensePostgres.NewExpenseRepository(gormDB), refRepo, categoryService, bus)
	billService := bill.NewService(billPostgres.NewBillRepository(gormDB), refRepo, bus, config.Bill)
	ledgerService := ledger.NewService(friendService, expenseService)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB, rest.Handlers{
		Auth:     auth.NewHandler(authService),
		User:     user.NewHandler(userService),
		Category: category.NewHandler(categoryService),
		Friend:   friend.NewHandler(friendService),
		Card:     card.NewHandler(cardService),
		Expense:  expense.NewHandler(expenseService),
		Bill:     bill.NewHandler(billService),
		Ledger:   ledger.NewHandler(ledgerService),
	}, config, lg)

	return &Dependencies{
		Config: config,
		Logger: lg,
		DB:     db,
		Router: router,
	}, nil
}

// registerEventSubscribers wires the ledger events into observability:
// every domain event bumps a counter and leaves a log line.
func registerEventSubscribers(bus *events.EventBus, lg *slog.Logger) {
	eventTypes := []string{
		events.EventTypeExpenseCreated,
		events.EventTypeExpenseUpdated,
		events.EventTypeExpenseDeleted,
		events.EventTypeExpensePaid,
		events.EventTypeBillParsed,
		events.EventTypeBillFinalized,
		events.EventTypeFriendDeleted,
		events.EventTypeCardDeleted,
		events.EventTypeBalanceRecomputed,
	}
	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, func(ctx context.Context, event events.Event) error {
			middleware.DomainEvents.WithLabelValues(event.EventType()).Inc()
			lg.Debug("domain event", "event_type", event.EventType(), "event_id", event.EventID())
			return nil
		})
	}
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
