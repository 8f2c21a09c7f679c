package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/phuslu/log"
	"github.com/rs/zerolog"

	"nuha.dev/gf22tracker/internal/config"
	"nuha.dev/gf22tracker/internal/monitoring"
	"nuha.dev/gf22tracker/internal/store"
	"nuha.dev/gf22tracker/internal/store/impl/memstore"
	"nuha.dev/gf22tracker/internal/store/impl/natsstore"
	"nuha.dev/gf22tracker/internal/store/impl/pgstore"
	"nuha.dev/gf22tracker/internal/webapp"
)

func main() {
	config_path := flag.String("config", "", "path to config file (yaml, toml or json)")
	flag.Parse()

	conf, err := config.Load(*config_path)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	setupLogger(conf)
	access := accessLogger(conf)

	ctx := context.Background()
	var st store.LocationStore
	var pool *pgxpool.Pool
	if conf.MockStore {
		log.Warn().Msg("using in-memory store, data is lost on exit")
		st = memstore.NewStore(access)
	} else {
		pool, err = pgxpool.Connect(ctx, conf.DbUrl)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to database")
		}
		defer pool.Close()
		pg := pgstore.NewStore(pool, conf.Table)
		err = pg.EnsureSchema(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("creating schema")
		}
		st = pg
	}

	if conf.NatsUrl != "" {
		nc, err := nats.Connect(conf.NatsUrl, nats.Name("gf22tracker"), nats.MaxReconnects(-1))
		if err != nil {
			log.Fatal().Err(err).Str("url", conf.NatsUrl).Msg("connecting to nats")
		}
		defer nc.Drain()
		st = natsstore.NewStore(st, nc, conf.NatsSubject)
	}

	api := webapp.NewApi(st, &webapp.ApiConfig{
		ListenAddr:        conf.ListenAddr(),
		ProxyProtocol:     conf.ProxyProtocol,
		TrustProxyHeaders: conf.TrustProxyHeaders,
		UpdateRateLimit:   conf.UpdateRateLimit,
		AccessLogger:      &access,
	})
	errc := make(chan error, 1)
	go func() {
		errc <- api.Run()
	}()

	var mon *monitoring.MonitoringServer
	if conf.MonAddress != "" {
		mon = monitoring.NewMonApi(&monitoring.MonitoringConfig{ListenAddr: conf.MonAddress})
		go mon.Run()
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
	case err := <-errc:
		if err != nil {
			log.Error().Err(err).Msg("api-server stopped")
		}
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := api.Shutdown(sctx); err != nil {
		log.Error().Err(err).Msg("api-server shutdown")
	}
	if mon != nil {
		if err := mon.Shutdown(sctx); err != nil {
			log.Error().Err(err).Msg("monitoring shutdown")
		}
	}
}

func setupLogger(conf *config.Config) {
	log.DefaultLogger.Level = log.ParseLevel(conf.LogLevel)
	switch {
	case conf.LogFile != "":
		log.DefaultLogger.Writer = &log.FileWriter{
			Filename:   conf.LogFile,
			MaxSize:    100 << 20,
			MaxBackups: 7,
			LocalTime:  true,
		}
	case log.IsTerminal(os.Stderr.Fd()):
		log.DefaultLogger.Writer = &log.ConsoleWriter{
			ColorOutput:    true,
			QuoteString:    true,
			EndWithMessage: true,
		}
	}
}

func accessLogger(conf *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(conf.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	if conf.LogFile != "" {
		f, err := os.OpenFile(conf.LogFile+".access", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			log.Fatal().Err(err).Msg("opening access log")
		}
		return zerolog.New(f).Level(level).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
