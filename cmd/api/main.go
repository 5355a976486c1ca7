package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/inkpress/printdesk/internal/config"
	"github.com/inkpress/printdesk/internal/handlers"
	"github.com/inkpress/printdesk/internal/repository"
	"github.com/inkpress/printdesk/internal/services"
	xhttp "github.com/inkpress/printdesk/pkg/http"
	"github.com/inkpress/printdesk/pkg/logger"
	"github.com/inkpress/printdesk/pkg/pg"
	"github.com/inkpress/printdesk/pkg/prom"
	"github.com/inkpress/printdesk/pkg/redis"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {

	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	// transport
	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Server.ReadBufferSize = 1024 * 16
	s.Server.WriteBufferSize = 1024 * 16
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 10))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := false
	if config.Get().AppEnv == "dev" {
		pgDebug = true
	}
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	// The shop keeps working without redis, just without the summary cache.
	var cache services.Cache
	if config.Get().RedisAddr != "" {
		redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
			Addrs:      []string{config.Get().RedisAddr},
			ClientName: "default",
			DB:         config.Get().RedisDatabase,
			Username:   config.Get().RedisUsername,
			Password:   config.Get().RedisPassword,
		})
		if err != nil {
			logger.Warn("failed connecting to redis, summary cache disabled", "error", err)
		} else {
			cache = redisAdap
		}
	}

	host, _ := os.Hostname()
	if err := prom.Create(host, config.Get().AppEnv, config.Get().PromNamespace); err != nil {
		logger.Error("failed to register metrics", "error", err)
		return
	}
	if config.Get().AppDebugMetricsAddr != "" {
		go prom.ListenAndServer(config.Get().AppDebugMetricsAddr, config.Get().AppDebugMetricsURI)
	}

	transactionRepo := repository.NewTransactionRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	// services
	cacheTTL := time.Duration(config.Get().SummaryCacheTTL) * time.Second
	transactionService := services.NewTransactionService(transactionRepo, cache)
	orderService := services.NewOrderService(orderRepo, transactionRepo, cache)
	reportService := services.NewReportService(transactionRepo, cache, cacheTTL)
	importService := services.NewImportService(transactionRepo, cache)
	healthService := services.NewHealthService()

	// handlers
	transactionHandler := handlers.NewTransactionHandler(transactionService)
	orderHandler := handlers.NewOrderHandler(orderService)
	reportHandler := handlers.NewReportHandler(reportService)
	importHandler := handlers.NewImportHandler(importService, config.Get().LegacyCSVPath)
	healthHandler := handlers.NewHealthHandler(healthService)

	handlers.RegisterTransactionRoutes(s.Router, transactionHandler)
	handlers.RegisterOrderRoutes(s.Router, orderHandler)
	handlers.RegisterReportRoutes(s.Router, reportHandler)
	handlers.RegisterImportRoutes(s.Router, importHandler)
	handlers.RegisterHealthRoutes(s.Router, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		var err = s.ListenAndServe(config.Get().HttpListenAddr)
		if err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()
	logger.Info("printdesk api started", "addr", config.Get().HttpListenAddr, "version", version)

	select {
	case <-c:
		s.Shutdown()
	}
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
