package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"graca-pdv/internal/cart"
	"graca-pdv/internal/config"
	"graca-pdv/internal/database"
	custommiddleware "graca-pdv/internal/middleware"
	"graca-pdv/internal/receipt"
	"graca-pdv/internal/repository"
	"graca-pdv/internal/service"
	"graca-pdv/internal/transport"
)

type Server struct {
	*http.Server
	config   *config.Config
	logger   *zap.Logger
	db       database.Service
	registry *cart.Registry
	sessions *transport.SessionHandler
}

func NewServer(cfg *config.Config, logger *zap.Logger, db database.Service) *Server {
	// Create router
	router := chi.NewRouter()

	// Add basic middleware
	for _, mw := range custommiddleware.DefaultMiddlewareStack() {
		router.Use(mw)
	}
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(cfg.Server))

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		health := db.Health()
		status := http.StatusOK
		if health["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		custommiddleware.RespondWithJSON(w, status, health)
	})

	// Initialize repositories
	productRepo := repository.NewProductRepository(db.DB())
	saleRepo := repository.NewSaleRepository(db.DB())
	reportRepo := repository.NewReportRepository(db.DB())

	// Initialize services
	catalogService := service.NewCatalogService(productRepo, logger)
	salesService := service.NewSalesService(saleRepo, receipt.Store{
		Name:    cfg.Store.Name,
		Contact: cfg.Store.Contact,
	}, logger)
	reportService := service.NewReportService(reportRepo, logger)
	registry := cart.NewRegistry(catalogService, salesService, logger)

	// Initialize handlers
	productHandler := transport.NewProductHandler(catalogService, logger)
	sessionHandler := transport.NewSessionHandler(registry, cfg.Store.NoticeTTL, logger)
	saleHandler := transport.NewSaleHandler(salesService, cfg.Store.ReceiptDir, logger)
	reportHandler := transport.NewReportHandler(reportService, logger)

	// Register routes
	productHandler.RegisterRoutes(router)
	sessionHandler.RegisterRoutes(router)
	saleHandler.RegisterRoutes(router)
	reportHandler.RegisterRoutes(router)

	server := &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config:   cfg,
		logger:   logger,
		db:       db,
		registry: registry,
		sessions: sessionHandler,
	}

	return server
}

// Close returns the stock held by open carts and closes the store
func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	s.sessions.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.registry.CloseAll(ctx); err != nil {
		s.logger.Error("Failed to release open carts", zap.Error(err))
	}

	// Close database connection
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
