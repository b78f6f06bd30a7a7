package main

import (
	"fmt"
	"os"

	"github.com/nurpe/haulops-billing/internal/auth"
	"github.com/nurpe/haulops-billing/internal/config"
	"github.com/nurpe/haulops-billing/internal/db"
	"github.com/nurpe/haulops-billing/internal/excel"
	httphandler "github.com/nurpe/haulops-billing/internal/http"
	"github.com/nurpe/haulops-billing/internal/http/middleware"
	"github.com/nurpe/haulops-billing/internal/logger"
	"github.com/nurpe/haulops-billing/internal/pdf"
	"github.com/nurpe/haulops-billing/internal/rate"
	"github.com/nurpe/haulops-billing/internal/repository"
	"github.com/nurpe/haulops-billing/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg.DB.DSN, cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns, cfg.DB.ConnMaxLifetime, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	rateRepo := repository.NewRateRepository(database)
	jobRepo := repository.NewJobRepository(database)

	policy := rate.StandardPolicy{
		WaitHourlyRate: cfg.Pricing.WaitHourlyRate,
		NightPercent:   cfg.Pricing.NightSurchargePct,
	}

	quoteService := service.NewQuoteService(rateRepo, jobRepo, policy)
	jobService := service.NewJobService(jobRepo)
	reportService := service.NewReportService(jobRepo, quoteService, excel.NewGenerator(), pdf.NewGenerator())

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(quoteService, jobService, reportService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting billing service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
