package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/phuslu/log"

	"nuha.dev/gf22tracker/internal/config"
	"nuha.dev/gf22tracker/internal/store/impl/pgstore"
)

// initdb creates the locations table and its indexes, then exits.
func main() {
	config_path := flag.String("config", "", "path to config file")
	print_only := flag.Bool("print", false, "print the schema instead of applying it")
	flag.Parse()

	conf, err := config.Load(*config_path)
	if err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	if *print_only {
		fmt.Println(pgstore.Schema(conf.Table))
		return
	}
	pool, err := pgxpool.Connect(context.Background(), conf.DbUrl)
	if err != nil {
		log.Fatal().Err(err).Msg("connecting to database")
	}
	defer pool.Close()
	err = pgstore.NewStore(pool, conf.Table).EnsureSchema(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("creating schema")
	}
	log.Info().Str("table", conf.Table).Msg("schema applied")
}
