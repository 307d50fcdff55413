package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"saferoute/internal/alert"
	"saferoute/internal/api"
	"saferoute/internal/config"
	"saferoute/internal/graph"
	"saferoute/internal/safety"
	"saferoute/internal/store"
	"saferoute/internal/websocket"
	pkgdatabase "saferoute/pkg/database"
)

// Application coordinates all system components
// Clean dependency injection pattern with proper initialization order
type Application struct {
	config     *config.Config
	store      *store.Manager
	roadGraph  *graph.Graph
	provider   *safety.Provider
	mailer     *alert.SMTPMailer
	registry   *websocket.Registry
	wsHandler  *websocket.Handler
	apiServer  *api.Server
	httpServer *http.Server
}

// NewApplication creates a new application instance with all components initialized
// Component initialization follows strict dependency order:
// Store → Graph → Provider → Mailer → Registry → WebSocket → API → HTTP
func NewApplication(cfg *config.Config) (*Application, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}

	// Validate configuration before component initialization
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	// STEP 1: Initialize the store (foundation layer)
	dbConfig := &pkgdatabase.Config{
		DatabasePath:    cfg.Database.Path,
		MaxConnections:  10,
		ConnMaxLifetime: cfg.Database.Timeout,
		ConnMaxIdleTime: cfg.Database.Timeout / 3,
		MigrationsPath:  cfg.Database.MigrationsPath,
	}

	storeManager, err := store.NewManager(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	// STEP 1.5: Apply database migrations to ensure schema is up to date
	migrationManager := pkgdatabase.NewMigrationManager(storeManager.GetDB(), dbConfig.MigrationsPath)
	if err := migrationManager.ApplyMigrations(); err != nil {
		storeManager.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	log.Println("Database migrations applied successfully")

	// STEP 2: Load the embedded road graph
	roadGraph, err := graph.LoadDelhi()
	if err != nil {
		storeManager.Close()
		return nil, fmt.Errorf("failed to load road graph: %w", err)
	}
	log.Printf("Road graph loaded: %d nodes", roadGraph.Len())

	// STEP 3: Initialize the safety score provider adapter
	provider := safety.NewProvider(cfg.Safety.ProviderURL, cfg.Safety.FetchTimeout, nil)

	// STEP 4: Initialize the alert mailer
	mailer := alert.NewSMTPMailer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.From,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	// STEP 5: Initialize WebSocket registry for connection tracking
	registry := websocket.NewRegistry()

	// STEP 6: Initialize WebSocket handler with all session dependencies
	wsHandler := websocket.NewHandler(registry, storeManager, provider, mailer, roadGraph, cfg.Safety.AlertThreshold)

	// STEP 7: Initialize API server
	apiServer := api.NewServer(storeManager, registry)

	// STEP 8: Setup HTTP server with API, WebSocket and metrics endpoints
	mux := http.NewServeMux()
	mux.Handle("/api/", apiServer)
	mux.Handle("/health", apiServer)
	mux.HandleFunc("/ws", wsHandler.HandleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      mux,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	return &Application{
		config:     cfg,
		store:      storeManager,
		roadGraph:  roadGraph,
		provider:   provider,
		mailer:     mailer,
		registry:   registry,
		wsHandler:  wsHandler,
		apiServer:  apiServer,
		httpServer: httpServer,
	}, nil
}

// Start begins application execution
// Startup coordination ensures all components ready before serving
func (app *Application) Start(ctx context.Context) error {
	log.Printf("Starting SafeRoute application on %s", app.httpServer.Addr)

	// Background rate-limiter cleanup for the connection handler
	app.wsHandler.StartCleanup(ctx)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Verify server is ready before returning
	select {
	case err := <-serverErrCh:
		return err
	case <-time.After(100 * time.Millisecond):
		// Server started successfully
		log.Printf("SafeRoute application started successfully")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop gracefully shuts down the application
// Shutdown coordination ensures proper resource cleanup
// Reverse dependency order: HTTP → WebSocket sessions → Store
func (app *Application) Stop(ctx context.Context) error {
	log.Printf("Shutting down SafeRoute application")

	// STEP 1: Stop accepting new connections
	if err := app.httpServer.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	// STEP 2: Close remaining WebSocket connections
	// Each connection close drives its session's disconnect safety check
	app.registry.CloseAll()

	// STEP 3: Close database connections
	if err := app.store.Close(); err != nil {
		log.Printf("Store shutdown error: %v", err)
	}

	log.Printf("SafeRoute application shutdown complete")
	return nil
}

// GetAddr returns the server address for external connections
func (app *Application) GetAddr() string {
	return app.httpServer.Addr
}
