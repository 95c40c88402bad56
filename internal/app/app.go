package app

import (
	"net/http"

	"osca-hub-go/internal/config"
	"osca-hub-go/internal/db"
	accountsdomain "osca-hub-go/internal/domain/accounts"
	appointmentsdomain "osca-hub-go/internal/domain/appointments"
	benefitsdomain "osca-hub-go/internal/domain/benefits"
	documentsdomain "osca-hub-go/internal/domain/documents"
	seniorsdomain "osca-hub-go/internal/domain/seniors"
	syncdomain "osca-hub-go/internal/domain/sync"
	"osca-hub-go/internal/repository/inmemory"
	accountsrepo "osca-hub-go/internal/repository/postgres/accounts"
	appointmentsrepo "osca-hub-go/internal/repository/postgres/appointments"
	benefitsrepo "osca-hub-go/internal/repository/postgres/benefits"
	documentsrepo "osca-hub-go/internal/repository/postgres/documents"
	seniorsrepo "osca-hub-go/internal/repository/postgres/seniors"
	syncrepo "osca-hub-go/internal/repository/postgres/sync"
	"osca-hub-go/internal/transport/httpserver"
	"osca-hub-go/internal/transport/httpserver/handler"
	"osca-hub-go/pkg/logger"

	"gorm.io/gorm"
)

type App struct {
	cfg        config.Config
	httpServer *http.Server
	db         *gorm.DB
}

func New(log logger.Logger) (*App, error) {
	log.Info("app: loading config")
	cfg, err := config.Load(log)
	if err != nil {
		return nil, err
	}

	log.Info("app: initializing database")
	dbConn, err := db.NewPostgres(cfg.DB, log)
	if err != nil {
		return nil, err
	}

	log.Info("app: running migrations")
	if err := db.Migrate(dbConn); err != nil {
		return nil, err
	}

	accountsService := accountsdomain.NewService(
		accountsrepo.NewPostgres(dbConn),
		cfg.Auth.JWTSecret,
		cfg.Auth.TokenValidity,
	)

	var seniorsCache seniorsdomain.ListCache
	if cfg.SeniorsCache.Enabled {
		seniorsCache = inmemory.NewInMemorySeniorsCache()
	}
	seniorsService := seniorsdomain.NewService(
		seniorsrepo.NewPostgres(dbConn),
		accountsService,
		seniorsCache,
		cfg.SeniorsCache.TTL,
	)

	appointmentsService := appointmentsdomain.NewService(appointmentsrepo.NewPostgres(dbConn), seniorsService)
	benefitsService := benefitsdomain.NewService(benefitsrepo.NewPostgres(dbConn), seniorsService)
	documentsService := documentsdomain.NewService(documentsrepo.NewPostgres(dbConn), seniorsService)
	syncService := syncdomain.NewService(syncrepo.NewPostgres(dbConn), seniorsService, appointmentsService)

	handlers := handler.New(
		accountsService,
		seniorsService,
		appointmentsService,
		benefitsService,
		documentsService,
		syncService,
		log,
	)

	log.Info("app: initializing router")
	router := httpserver.NewRouter(cfg, handlers, accountsService, log)

	log.Info("app: initializing http server")
	srv := httpserver.New(cfg, router)

	return &App{
		cfg:        cfg,
		httpServer: srv,
		db:         dbConn,
	}, nil
}

func (a *App) HTTPServer() *http.Server {
	return a.httpServer
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	sqlDB, err := a.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
