package main

import (
	"context"
	"database/sql"
	"embed"
	"flag"
	"log"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rockspoon/soajs.oauth/internal/config"
	mysqlmigrations "github.com/rockspoon/soajs.oauth/migrations/mysql"
	pgmigrations "github.com/rockspoon/soajs.oauth/migrations/postgres"

	_ "github.com/go-sql-driver/mysql"
)

// Aplica las migraciones embebidas del driver configurado, en orden
// ascendente de nombre de archivo. Son idempotentes (IF NOT EXISTS).
func main() {
	configPath := flag.String("config", "", "path to YAML config (env overrides apply)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config load: %v", err)
	}

	ctx := context.Background()

	switch cfg.Storage.Driver {
	case "mysql":
		dsn := cfg.Storage.MySQL.DSN
		if dsn == "" {
			dsn = cfg.Storage.DSN
		}
		db, err := sql.Open(cfg.Storage.MySQL.DriverName, dsn)
		if err != nil {
			log.Fatalf("mysql open: %v", err)
		}
		defer db.Close()
		apply(mysqlmigrations.FS, mysqlmigrations.Dir, func(stmt string) error {
			_, err := db.ExecContext(ctx, stmt)
			return err
		})
	default:
		pool, err := pgxpool.New(ctx, cfg.Storage.DSN)
		if err != nil {
			log.Fatalf("pgxpool: %v", err)
		}
		defer pool.Close()
		apply(pgmigrations.FS, pgmigrations.Dir, func(stmt string) error {
			_, err := pool.Exec(ctx, stmt)
			return err
		})
	}

	log.Println("migrations completed.")
}

func apply(fsys embed.FS, dir string, exec func(string) error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		log.Fatalf("read migrations: %v", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	log.Printf("applying %d migration file(s)...", len(names))
	for _, name := range names {
		b, err := fsys.ReadFile(dir + "/" + name)
		if err != nil {
			log.Fatalf("read %s: %v", name, err)
		}
		if err := exec(string(b)); err != nil {
			log.Fatalf("exec %s: %v", name, err)
		}
		log.Printf("applied %s", name)
	}
}
