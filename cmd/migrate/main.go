package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"bookscanner/internal/catalog"
	"bookscanner/internal/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

func main() {
	var (
		command    = flag.String("command", "up", "Migration command: up, down, status, create")
		name       = flag.String("name", "", "Name for 'create' command")
		configPath = flag.String("config", "", "path to a YAML config file")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dir := migrationsDir(cfg.Database.Driver)

	if *command == "create" {
		if *name == "" {
			log.Fatal("Name is required for 'create' command")
		}
		if err := goose.Create(nil, dir, *name, "sql"); err != nil {
			log.Fatalf("Failed to create migration: %v", err)
		}
		fmt.Printf("Migration created: %s\n", *name)
		return
	}

	db, closeDB, err := openDB(context.Background(), cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		log.Fatalf("Failed to connect to database (%s): %v", catalog.RedactDSN(cfg.Database.DSN), err)
	}
	defer closeDB()

	goose.SetBaseFS(nil)
	if err := goose.SetDialect(gooseDialect(cfg.Database.Driver)); err != nil {
		log.Fatalf("Failed to set dialect: %v", err)
	}

	switch *command {
	case "up":
		if err := goose.Up(db, dir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		fmt.Println("Migrations applied successfully")
	case "down":
		if err := goose.Down(db, dir); err != nil {
			log.Fatalf("Failed to rollback migrations: %v", err)
		}
		fmt.Println("Migrations rolled back successfully")
	case "status":
		if err := goose.Status(db, dir); err != nil {
			log.Fatalf("Failed to check migration status: %v", err)
		}
	default:
		log.Fatalf("Unknown command: %s. Use: up, down, status, create", *command)
	}
}

func openDB(ctx context.Context, driver, dsn string) (*sql.DB, func(), error) {
	if driver == catalog.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, nil, err
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, nil, err
		}
		return db, func() { db.Close() }, nil
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	db := stdlib.OpenDBFromPool(pool)
	return db, func() {
		db.Close()
		pool.Close()
	}, nil
}
