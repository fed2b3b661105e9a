package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lixing-Zhang/restaurant-pos/internal/auth"
	"github.com/Lixing-Zhang/restaurant-pos/internal/cart"
	"github.com/Lixing-Zhang/restaurant-pos/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-pos/internal/config"
	"github.com/Lixing-Zhang/restaurant-pos/internal/events"
	"github.com/Lixing-Zhang/restaurant-pos/internal/floor"
	"github.com/Lixing-Zhang/restaurant-pos/internal/handlers"
	"github.com/Lixing-Zhang/restaurant-pos/internal/media"
	"github.com/Lixing-Zhang/restaurant-pos/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-pos/internal/receipt"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository"
	"github.com/Lixing-Zhang/restaurant-pos/internal/repository/postgres"
	"github.com/Lixing-Zhang/restaurant-pos/internal/service"
	"github.com/Lixing-Zhang/restaurant-pos/pkg/logger"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
)

// stores are the repositories behind the services, in memory or in postgres
type stores struct {
	menu       repository.MenuRepository
	categories repository.CategoryRepository
	orders     repository.OrderRepository
	floors     repository.FloorRepository
	staff      repository.StaffRepository
	sales      repository.SalesRepository
	db         *postgres.DB
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, log *slog.Logger) (*stores, error) {
	if cfg.URL == "" {
		log.Info("using in-memory storage")
		return &stores{
			menu:       repository.NewInMemoryMenuRepository(),
			categories: repository.NewInMemoryCategoryRepository(),
			orders:     repository.NewInMemoryOrderRepository(),
			floors:     repository.NewInMemoryFloorRepository(),
			staff:      repository.NewInMemoryStaffRepository(),
			sales:      repository.NewInMemorySalesRepository(),
		}, nil
	}

	db, err := postgres.Connect(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Seed(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("using postgres storage")
	return &stores{
		menu:       postgres.NewMenuRepository(db),
		categories: postgres.NewCategoryRepository(db),
		orders:     postgres.NewOrderRepository(db),
		floors:     postgres.NewFloorRepository(db),
		staff:      postgres.NewStaffRepository(db),
		sales:      postgres.NewSalesRepository(db),
		db:         db,
	}, nil
}

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize structured logger
	log := logger.NewWithFormat(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	log.Info("starting restaurant pos server",
		"port", cfg.Server.Port,
		"host", cfg.Server.Host,
		"log_level", cfg.LogLevel,
	)

	ctx := context.Background()
	checks := make(map[string]handlers.HealthCheck)

	// Initialize repositories
	st, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer st.db.Close()
	if st.db != nil {
		checks["postgres"] = st.db.Ping
	}

	// Sessions live in redis when configured so they survive restarts
	var sessions auth.SessionStore = auth.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Error("failed to connect to redis", "addr", cfg.Redis.Addr, "error", err)
			os.Exit(1)
		}
		sessions = auth.NewRedisStore(rdb)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.Info("sessions stored in redis", "addr", cfg.Redis.Addr)
	}

	// Domain events go to the broker when one is configured
	var publisher events.Publisher = events.NopPublisher{}
	var sources []floor.EventSource
	if cfg.Broker.URL != "" {
		client, err := events.Dial(cfg.Broker.URL, cfg.Broker.Exchange, log)
		if err != nil {
			log.Error("failed to connect to broker", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		sources = append(sources, events.NewTableSource(client, cfg.Broker.FloorQueue))
		log.Info("publishing events", "exchange", cfg.Broker.Exchange, "floor_queue", cfg.Broker.FloorQueue)
	}

	// Initialize services
	hub := floor.NewHub(log, cfg.Server.AllowedOrigins)
	floorService := service.NewFloorService(st.floors, hub, publisher, log)
	menuService := service.NewMenuService(st.menu, st.categories, media.NewThumbnailer(media.DefaultSize), log)
	categoryService := service.NewCategoryService(st.categories, st.menu, log)
	orderService := service.NewOrderService(st.orders, st.menu, st.floors, publisher, log)
	staffService := service.NewStaffService(st.staff, log)
	reportService := service.NewReportService(st.sales, st.orders, log)

	checkouts := checkout.NewManager(checkout.Options{
		PaymentDelay: cfg.Checkout.PaymentDelay,
		OnPaid:       service.SaleRecorder(st.sales, publisher, log),
		Logger:       log,
	})
	renderer := receipt.NewRenderer(cfg.Receipt.RestaurantName)
	spooler := receipt.NewSpooler(renderer, receipt.DirPrinter{Dir: cfg.Receipt.SpoolDir}, log)
	cartService := service.NewCartService(cart.NewStore(cfg.Checkout.TaxRate), st.menu, checkouts, log)
	checkoutService := service.NewCheckoutService(checkouts, renderer, spooler, log)

	authService, err := auth.NewService(cfg.Auth, sessions, log)
	if err != nil {
		log.Error("failed to initialize auth", "error", err)
		os.Exit(1)
	}

	// Table events from the simulator and the broker
	if cfg.Floor.Simulation {
		sources = append(sources, floor.NewRandomSource(floorService, cfg.Floor, log))
		log.Info("floor simulation enabled", "interval", cfg.Floor.Interval)
	}
	runCtx, stopRunner := context.WithCancel(ctx)
	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		if len(sources) == 0 {
			return
		}
		if err := floor.NewRunner(floorService, log, sources...).Run(runCtx); err != nil {
			log.Error("floor event runner failed", "error", err)
		}
	}()

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(log, checks)
	authHandler := handlers.NewAuthHandler(authService, log)
	menuHandler := handlers.NewMenuHandler(menuService, log)
	categoryHandler := handlers.NewCategoryHandler(categoryService, log)
	cartHandler := handlers.NewCartHandler(cartService, log)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, log)
	orderHandler := handlers.NewOrderHandler(orderService, log)
	floorHandler := handlers.NewFloorHandler(floorService, log)
	staffHandler := handlers.NewStaffHandler(staffService, log)
	reportHandler := handlers.NewReportHandler(reportService, log)

	// Create router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Register health check endpoint
	r.Get("/health", healthHandler.ServeHTTP)

	requireSession := middleware.RequireSession(authService)

	// The websocket outlives any request timeout
	r.With(requireSession).Get("/api/floors/ws", hub.ServeHTTP)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(middleware.SimulatedLatency(cfg.Mock.Latency))

		// Auth endpoints
		limiter := middleware.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)
		r.Route("/auth", func(r chi.Router) {
			r.Use(limiter.Limit)
			r.Post("/login", authHandler.Login)
			r.Post("/login/mobile", authHandler.LoginMobile)
			r.Post("/signup", authHandler.Signup)
			r.Post("/password/forgot", authHandler.ForgotPassword)
			r.Post("/password/reset", authHandler.ResetPassword)
			r.Get("/session", authHandler.Session)
			r.Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			// Menu endpoints
			r.Get("/menu-items", menuHandler.ListItems)
			r.Get("/menu-items/categories", menuHandler.CategoryNames)
			r.Post("/menu-items", menuHandler.CreateItem)
			r.Get("/menu-items/{id}", menuHandler.GetItem)
			r.Put("/menu-items/{id}", menuHandler.UpdateItem)
			r.Patch("/menu-items/{id}/availability", menuHandler.ToggleAvailability)
			r.Delete("/menu-items/{id}", menuHandler.DeleteItem)
			r.Get("/categories", categoryHandler.List)
			r.Post("/categories", categoryHandler.Create)
			r.Delete("/categories/{id}", categoryHandler.Delete)

			// Cart and checkout endpoints
			r.Post("/carts", cartHandler.Create)
			r.Route("/carts/{cartId}", func(r chi.Router) {
				r.Get("/", cartHandler.Get)
				r.Delete("/", cartHandler.Delete)
				r.Post("/items", cartHandler.AddItem)
				r.Delete("/items", cartHandler.Clear)
				r.Patch("/items/{itemId}", cartHandler.UpdateQuantity)
				r.Delete("/items/{itemId}", cartHandler.RemoveItem)
				r.Put("/drawer", cartHandler.SetDrawer)
				r.Post("/checkout", cartHandler.Checkout)
			})
			r.Route("/checkout/{sessionId}", func(r chi.Router) {
				r.Get("/", checkoutHandler.Get)
				r.Post("/confirm", checkoutHandler.Confirm)
				r.Post("/cancel", checkoutHandler.Cancel)
				r.Post("/reset", checkoutHandler.Reset)
				r.Get("/receipt", checkoutHandler.Receipt)
				r.Get("/print", checkoutHandler.PrintStatus)
				r.Post("/print", checkoutHandler.Print)
			})

			// Order endpoints
			r.Get("/orders", orderHandler.ListOrders)
			r.Post("/orders", orderHandler.CreateOrder)
			r.Get("/orders/{id}", orderHandler.GetOrder)
			r.Put("/orders/{id}", orderHandler.UpdateOrder)
			r.Patch("/orders/{id}/status", orderHandler.ChangeStatus)
			r.Post("/orders/{id}/advance", orderHandler.AdvanceStatus)

			// Floor endpoints
			r.Get("/floors", floorHandler.ListFloors)
			r.Post("/floors", floorHandler.CreateFloor)
			r.Get("/floors/active", floorHandler.ActiveFloor)
			r.Put("/floors/active", floorHandler.SetActiveFloor)
			r.Get("/floors/{floorId}", floorHandler.GetFloor)
			r.Get("/floors/{floorId}/summary", floorHandler.Summary)
			r.Post("/floors/{floorId}/tables", floorHandler.AddTable)
			r.Post("/tables/{tableId}/start", floorHandler.StartOrder)
			r.Post("/tables/{tableId}/billing", floorHandler.MarkBilling)
			r.Post("/tables/{tableId}/clear", floorHandler.ClearTable)

			// Staff and reports
			r.Get("/staff", staffHandler.ListStaff)
			r.Get("/reports/sales", reportHandler.SalesReport)
		})
	})

	// Create HTTP server
	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("server listening", "address", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	stopRunner()

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	select {
	case <-runnerDone:
	case <-shutdownCtx.Done():
		log.Warn("floor event runner did not stop in time")
	}

	log.Info("server stopped gracefully")
}
