// Entry point: loads configuration, wires dependencies and starts the HTTP
// server plus the background email consumer.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/talenthub/competency-api/internal/config"
	"github.com/talenthub/competency-api/internal/database"
	"github.com/talenthub/competency-api/internal/handler"
	"github.com/talenthub/competency-api/internal/queue"
	"github.com/talenthub/competency-api/internal/ratelimit"
	"github.com/talenthub/competency-api/internal/repository"
	"github.com/talenthub/competency-api/internal/router"
	"github.com/talenthub/competency-api/internal/service"
	"github.com/talenthub/competency-api/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	db, err := database.Open(database.Config{
		User: cfg.DBUser, Pass: cfg.DBPass,
		Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.DBConnLifeMin) * time.Minute,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	// Shared counters when Redis is configured, per-process otherwise.
	var store ratelimit.Store
	if rdb := config.NewRedisClient(); rdb != nil {
		store = ratelimit.NewRedisStore(rdb)
		log.Info().Msg("rate limiter backed by redis")
	} else {
		store = ratelimit.NewLocalStore()
		log.Info().Msg("rate limiter using in-process counters")
	}
	limiter := ratelimit.New(store)
	rates := config.LoadRateLimitConfig()

	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	verifyRepo := repository.NewVerificationRepo(db)
	auditRepo := repository.NewAuditRepo(db)
	employeeRepo := repository.NewEmployeeRepo(db)
	competencyRepo := repository.NewCompetencyRepo(db)
	careerPathRepo := repository.NewCareerPathRepo(db)

	recorder := service.NewRecorder(auditRepo, service.UTCNow)
	mailer := service.NewMailer(cfg, service.UTCNow)

	authSvc := service.NewAuthService(userRepo, tokenRepo, verifyRepo, recorder, mailer,
		service.AuthConfig{
			JWTSecret:  cfg.JWTSecret,
			AccessTTL:  time.Duration(cfg.AccessTTLMin) * time.Minute,
			RefreshTTL: time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour,
			VerifyTTL:  time.Duration(cfg.VerifyTTLHours) * time.Hour,
			BcryptCost: cfg.BcryptCost,
		}, service.UTCNow, log)
	userSvc := service.NewUserService(userRepo, tokenRepo, employeeRepo, recorder, cfg.BcryptCost, service.UTCNow)
	employeeSvc := service.NewEmployeeService(employeeRepo, competencyRepo, userRepo, recorder)
	competencySvc := service.NewCompetencyService(competencyRepo, recorder)
	careerPathSvc := service.NewCareerPathService(careerPathRepo, competencyRepo, recorder)
	gapSvc := service.NewGapService(employeeRepo, careerPathRepo, competencyRepo, recorder)

	e := echo.New()
	e.HideBanner = true
	router.Register(e, router.Deps{
		DB:        db,
		JWTSecret: cfg.JWTSecret,
		Limiter:   limiter,
		Rates:     rates,

		Auth:         handler.NewAuthHandler(authSvc, cfg.CookieSecure),
		Users:        handler.NewUserHandler(userSvc),
		Employees:    handler.NewEmployeeHandler(employeeSvc),
		Competencies: handler.NewCompetencyHandler(competencySvc),
		CareerPaths:  handler.NewCareerPathHandler(careerPathSvc),
		Gap:          handler.NewGapHandler(gapSvc, authSvc),
		Audit:        handler.NewAuditHandler(auditRepo),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Queued email delivery needs a consumer draining the broker.
	if cfg.AMQPURL != "" {
		var direct service.Mailer = service.ConsoleMailer{BaseURL: cfg.SMTP.BaseURL}
		if cfg.SMTP.Enabled {
			direct = service.NewSMTPMailer(cfg.SMTP)
		}
		go queue.StartVerificationConsumer(ctx, cfg.AMQPURL, direct)
	}

	go func() {
		addr := ":" + cfg.Port
		log.Info().Str("addr", addr).Str("env", cfg.Env).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
