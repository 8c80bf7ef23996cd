package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	api "github.com/joelcalolo/MoFleet-sub000/internal/api/grpc"
	"github.com/joelcalolo/MoFleet-sub000/internal/api/grpc/interceptor"
	httpapi "github.com/joelcalolo/MoFleet-sub000/internal/api/http"
	"github.com/joelcalolo/MoFleet-sub000/internal/app"
	"github.com/joelcalolo/MoFleet-sub000/internal/config"
	"github.com/joelcalolo/MoFleet-sub000/internal/logger"
	"github.com/joelcalolo/MoFleet-sub000/internal/service"
)

func main() {
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	migrate := flag.Bool("migrate", false, "Apply the database schema before serving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger.Initialize(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output)
	logger.Info("Starting MoFleet reservation server...", "log_level", cfg.Log.Level, "store", cfg.Store.Backend)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := app.OpenBackend(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "error", err)
		log.Fatalf("Failed to open store: %v", err)
	}
	defer backend.Close()

	if *migrate {
		if err := backend.Migrate(ctx); err != nil {
			logger.Error("Failed to apply schema", "error", err)
			log.Fatalf("Failed to apply schema: %v", err)
		}
		logger.Info("Database schema applied")
	}

	stores := backend.Stores
	reservationSvc := service.NewReservationService(stores.Reservations, stores.Vehicles, stores.Customers, stores.Handovers, app.NewNotifier(cfg))
	vehicleSvc := service.NewVehicleService(stores.Vehicles)
	customerSvc := service.NewCustomerService(stores.Customers)

	lis, err := net.Listen("tcp", cfg.GetServerAddress())
	if err != nil {
		logger.Error("Failed to listen", "error", err, "address", cfg.GetServerAddress())
		log.Fatalf("Failed to listen: %v", err)
	}

	s := grpc.NewServer(interceptor.Chain(cfg.RequestTimeout()))
	api.RegisterReservationServiceServer(s, api.NewHandler(reservationSvc, vehicleSvc, customerSvc))
	// Register reflection service for grpcurl
	reflection.Register(s)

	var httpServer *http.Server
	if addr := cfg.GetHTTPAddress(); addr != "" {
		httpServer = &http.Server{
			Addr:              addr,
			Handler:           httpapi.NewRouter(httpapi.NewHandler(reservationSvc, backend.Health), cfg.RequestTimeout()),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("HTTP server listening", "address", addr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("HTTP server error", "error", err)
			}
		}()
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down...")
		if httpServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error("HTTP shutdown error", "error", err)
			}
		}
		s.GracefulStop()
	}()

	logger.Info("gRPC server listening", "address", cfg.GetServerAddress())
	if err := s.Serve(lis); err != nil {
		logger.Error("Failed to serve gRPC", "error", err)
		log.Fatalf("Failed to serve: %v", err)
	}
	logger.Info("Server stopped. Goodbye!")
}
