package main

import (
	"database/sql"
	"net/http"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	server "stayloft/internal/adapters/http_server"
	"stayloft/internal/adapters/observability"
	redisad "stayloft/internal/adapters/redis"
	"stayloft/internal/adapters/tokens"
	"stayloft/internal/app"
	"stayloft/internal/shared"
	mysqlrepo "stayloft/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	codec := tokens.New(cfg.JWTSecret, cfg.TokenTTL)

	handlers := &server.Handlers{
		Identity:   app.NewIdentityService(repo.Users(), codec),
		Apartments: app.NewApartmentService(repo.Apartments(), repo.Users(), cache, cfg.CacheTTL, cfg.ListCacheTTL),
		Bookings:   app.NewBookingService(repo.Bookings()),
		Tokens:     codec,
		ListRate:   cfg.ListRatePerMin,
	}

	// http
	srv := server.New()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(handlers)

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux()}

	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server failed")
	}
}
