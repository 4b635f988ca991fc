package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/doctora/clinic-api/internal/config"
	"github.com/doctora/clinic-api/internal/email"
	appointmenthandler "github.com/doctora/clinic-api/internal/handler/appointment"
	authhandler "github.com/doctora/clinic-api/internal/handler/auth"
	availabilityhandler "github.com/doctora/clinic-api/internal/handler/availability"
	doctorhandler "github.com/doctora/clinic-api/internal/handler/doctor"
	healthhandler "github.com/doctora/clinic-api/internal/handler/health"
	specialtyhandler "github.com/doctora/clinic-api/internal/handler/specialty"
	userhandler "github.com/doctora/clinic-api/internal/handler/user"
	"github.com/doctora/clinic-api/internal/middleware"
	"github.com/doctora/clinic-api/internal/repository/postgres"
	"github.com/doctora/clinic-api/internal/router"
	appointmentservice "github.com/doctora/clinic-api/internal/service/appointment"
	authservice "github.com/doctora/clinic-api/internal/service/auth"
	availabilityservice "github.com/doctora/clinic-api/internal/service/availability"
	doctorservice "github.com/doctora/clinic-api/internal/service/doctor"
	specialtyservice "github.com/doctora/clinic-api/internal/service/specialty"
	userservice "github.com/doctora/clinic-api/internal/service/user"
	"github.com/doctora/clinic-api/pkg/auth"
	"github.com/doctora/clinic-api/pkg/logger"
	"github.com/doctora/clinic-api/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.New(&logger.Config{
		Level:      logger.ParseLevel(cfg.Logging.Level),
		TimeFormat: time.RFC3339,
		Pretty:     cfg.Logging.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	specialtyRepo := postgres.NewSpecialtyRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	bookingRepo := postgres.NewBookingInfoRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Infrastructure
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	hasher := security.NewBcryptHasher(0)

	var emailSvc email.Service
	if cfg.SMTP.Enabled {
		emailSvc = email.NewSMTPService(cfg.SMTP)
	} else {
		emailSvc = email.NewNoopService(appLogger)
	}

	// Services
	authSvc := authservice.NewService(userRepo, hasher, jwtSvc, appLogger)
	userSvc := userservice.NewService(userRepo, appLogger)
	specialtySvc := specialtyservice.NewService(specialtyRepo, doctorRepo, appLogger)
	availabilitySvc := availabilityservice.NewService(availabilityRepo, doctorRepo, outboxRepo, db, appLogger)
	appointmentSvc := appointmentservice.NewService(appointmentRepo, doctorRepo, userRepo, bookingRepo, outboxRepo, db, emailSvc, appLogger)
	doctorSvc := doctorservice.NewService(doctorRepo, specialtyRepo, userRepo, availabilitySvc, appointmentSvc, db, appLogger)

	// Handlers
	handlers := router.Handlers{
		Health:       healthhandler.NewHandler(db),
		Auth:         authhandler.NewHandler(authSvc),
		User:         userhandler.NewHandler(userSvc),
		Doctor:       doctorhandler.NewHandler(doctorSvc),
		Specialty:    specialtyhandler.NewHandler(specialtySvc),
		Availability: availabilityhandler.NewHandler(availabilitySvc, doctorSvc),
		Appointment:  appointmenthandler.NewHandler(appointmentSvc, doctorSvc),
	}

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORS.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.AllowedOrigins
	}

	r := router.NewRouter(
		middleware.NewAuthMiddleware(jwtSvc),
		handlers,
		router.Config{
			RateLimit: middleware.RateLimiterConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			},
			CORS:           corsCfg,
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
			MetricsPrefix:  "clinic_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	appLogger.Info("server exited properly")
}
