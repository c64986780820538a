package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/evia-dev/comedor-access/backend/internal/config"
	"github.com/evia-dev/comedor-access/backend/internal/registry"
	"github.com/evia-dev/comedor-access/backend/internal/repository"
	"github.com/evia-dev/comedor-access/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operation to run (1: default shifts, 2: random subjects)")
	flag.IntVar(&n, "n", 0, "number of subjects to insert (op 2; defaults to config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("failed to create database pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open does not touch the network, so ping explicitly
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation specified")
	case 1:
		reg := registry.New(repo, nil)
		count := seed.SeedShifts(reg)
		slog.Info("shifts inserted", slog.Int("count", count))
	case 2:
		if n <= 0 {
			n = cfg.Seed.SubjectCount
		}
		count := seed.SeedSubjects(repo, n)
		slog.Info("subjects inserted", slog.Int("count", count))
	default:
		slog.Error("unknown operation")
	}
}
