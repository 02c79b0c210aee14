package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"schedule_web/backend/internal/admin"
	"schedule_web/backend/internal/backendapi"
	"schedule_web/backend/internal/entity"
	"schedule_web/backend/internal/gateway"
	"schedule_web/backend/internal/gateway/handlers"
	"schedule_web/backend/internal/gateway/session"
	"schedule_web/backend/internal/localstore"
	"schedule_web/backend/internal/shared"
	"schedule_web/backend/internal/timetable"
)

// emptySchedule stands in for the backend when running offline.
type emptySchedule struct{}

func (emptySchedule) FetchSchedule(ctx context.Context) ([]timetable.Entry, error) {
	return []timetable.Entry{}, nil
}

func main() {
	log.Println("INFO: Starting Schedule Web...")

	// Load environment variables
	if err := shared.LoadEnv(".env"); err != nil {
		log.Println("INFO: continuing with system environment variables")
	}

	// 1. Load Configuration
	cfg, err := shared.LoadWebConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}
	shared.ConfigureLogging(cfg)
	if shared.IsDevelopment(cfg) {
		shared.PrintWebConfig(cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Metrics Registry
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// 3. Optional Redis lookup cache
	var cache *backendapi.LookupCache
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := redisClient.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			log.Printf("WARN: Redis at %s unreachable, lookup cache disabled: %v", cfg.Redis.Addr, err)
			redisClient.Close()
			redisClient = nil
		} else {
			cache = backendapi.NewLookupCache(redisClient, cfg.Redis.LookupTTL)
			log.Printf("INFO: Lookup cache on Redis %s (ttl %s)", cfg.Redis.Addr, cfg.Redis.LookupTTL)
		}
	}

	// 4. Storage: REST backend, or MongoDB / memory when offline
	var src admin.Source
	var client *backendapi.Client
	var mongoClient *mongo.Client
	var schedule timetable.Source = emptySchedule{}
	var pinger gateway.Pinger

	if !shared.Offline(cfg) {
		client, err = backendapi.New(backendapi.Config{
			BaseURL:        cfg.Backend.URL,
			Timeout:        cfg.Backend.Timeout,
			CSRFCookieName: cfg.Backend.CSRFCookieName,
		}, backendapi.NewMetrics(registry), cache)
		if err != nil {
			log.Fatalf("FATAL: Failed to create backend client: %v", err)
		}
		src.Backend = client
		schedule = client
		pinger = client
	} else if cfg.MongoDB.URI != "" {
		var db *mongo.Database
		mongoClient, db, err = shared.ConnectMongoDB(ctx, shared.DefaultMongoConfig(cfg.MongoDB.URI, cfg.MongoDB.Database))
		if err != nil {
			log.Fatalf("FATAL: Failed to connect to MongoDB: %v", err)
		}
		src.Local = localstore.New(db)
	}
	log.Printf("INFO: Admin storage mode: %s", src.Mode())

	// 5. Sessions
	sessions := session.NewStore(session.Factory{
		Pages:  func() map[string]entity.Page { return admin.NewPages(src) },
		Viewer: func() *timetable.Viewer { return timetable.NewViewer(schedule) },
	}, cfg.Security.SessionTTL, shared.IsProduction(cfg))
	registry.MustRegister(sessions.Collector())
	go sessions.Run(ctx, time.Minute)

	// 6. Setup Routes and Middleware
	templates, err := handlers.ParseTemplates()
	if err != nil {
		log.Fatalf("FATAL: Failed to parse templates: %v", err)
	}
	router := gateway.SetupRoutes(gateway.Deps{
		Config:      cfg,
		Backend:     client,
		Sessions:    sessions,
		Templates:   templates,
		Gatherer:    registry,
		StorageMode: src.Mode(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 7. gRPC Health Server fed by the backend probe
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)

	probe := gateway.NewProbe(pinger, healthServer, cfg.Backend.Timeout)
	go probe.Run(ctx, cfg.ProbeInterval)

	listener, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatalf("FATAL: Failed to listen on port %s: %v", cfg.GRPCPort, err)
	}

	// 8. Start Servers
	go func() {
		log.Printf("INFO: Health service listening on port %s", cfg.GRPCPort)
		if err := grpcServer.Serve(listener); err != nil {
			log.Printf("ERROR: gRPC server error: %v", err)
		}
	}()
	go func() {
		log.Printf("INFO: Schedule Web listening on port %s", cfg.HTTPPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("FATAL: HTTP server error: %v", err)
		}
	}()

	// 9. Graceful Shutdown
	<-ctx.Done()
	log.Println("INFO: Shutting down Schedule Web...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP shutdown: %v", err)
	}
	healthServer.Shutdown()
	grpcServer.GracefulStop()

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Printf("ERROR: closing Redis: %v", err)
		}
	}
	if mongoClient != nil {
		if err := shared.DisconnectMongoDB(mongoClient); err != nil {
			log.Printf("ERROR: disconnecting from MongoDB: %v", err)
		}
	}

	log.Println("INFO: Schedule Web stopped.")
}
