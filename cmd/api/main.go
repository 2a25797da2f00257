package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/medroute/navigator/internal/adapters/cache"
	"github.com/medroute/navigator/internal/adapters/database"
	"github.com/medroute/navigator/internal/adapters/providers/geolocation"
	"github.com/medroute/navigator/internal/api/handlers"
	"github.com/medroute/navigator/internal/api/routes"
	"github.com/medroute/navigator/internal/application/services"
	"github.com/medroute/navigator/internal/domain/entities"
	"github.com/medroute/navigator/internal/domain/providers"
	"github.com/medroute/navigator/internal/infrastructure/clients/facilityapi"
	"github.com/medroute/navigator/internal/infrastructure/clients/redis"
	"github.com/medroute/navigator/internal/infrastructure/clients/sqlite"
	"github.com/medroute/navigator/internal/infrastructure/observability"
	"github.com/medroute/navigator/pkg/config"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(
			ctx,
			cfg.OTEL.ServiceName,
			cfg.OTEL.ServiceVersion,
			cfg.OTEL.Endpoint,
		)
		if err != nil {
			log.Warn().Err(err).Msg("failed to set up OpenTelemetry")
		} else {
			defer func() {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := shutdown(shutdownCtx); err != nil {
					log.Error().Err(err).Msg("error shutting down OpenTelemetry")
				}
			}()
			log.Info().Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	// Embedded database for appointments and triage assessments
	dbClient, err := sqlite.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer dbClient.Close()
	log.Info().Str("path", cfg.Database.Path).Msg("database initialized")

	// Redis cache with in-process LRU fallback when unavailable
	var cacheProvider providers.CacheProvider
	redisClient, err := redis.NewClient(&cfg.Redis)
	if err != nil {
		log.Warn().Err(err).Msg("Redis unavailable, using in-process cache")
		cacheProvider, err = cache.NewMemoryAdapter()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize memory cache")
		}
	} else {
		defer redisClient.Close()
		cacheProvider = cache.NewRedisAdapter(redisClient)
		log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis cache initialized")
	}

	defaultLocation := entities.Location{
		Lat: cfg.Geolocation.DefaultLat,
		Lng: cfg.Geolocation.DefaultLng,
	}
	geoProvider := geolocation.NewStaticProvider(defaultLocation)

	facilityClient := facilityapi.NewClientWithTimeout(cfg.FacilityAPI.BaseURL, cfg.FacilityAPI.Timeout)

	appointmentRepo := database.NewAppointmentAdapter(dbClient)
	triageRepo := database.NewTriageAdapter(dbClient)

	routingService := services.NewRoutingService(facilityClient, cacheProvider, geoProvider, cfg.Routing).
		WithMetrics(metrics)
	triageService := services.NewTriageService(triageRepo)
	appointmentService := services.NewAppointmentService(appointmentRepo)

	routingHandler := handlers.NewRoutingHandler(routingService, defaultLocation)
	triageHandler := handlers.NewTriageHandler(triageService)
	appointmentHandler := handlers.NewAppointmentHandler(appointmentService)
	systemHandler := handlers.NewSystemHandler(appointmentService, triageService)
	geolocationHandler := handlers.NewGeolocationHandler(geoProvider)

	router := routes.NewRouter(
		routingHandler,
		triageHandler,
		appointmentHandler,
		systemHandler,
		geolocationHandler,
		metrics,
	)

	handler := router.SetupRoutes()

	serverAddr := cfg.Server.ListenAddr()
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	log.Info().Msg("server stopped")
}
