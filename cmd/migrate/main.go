// Command migrate applies the embedded goose migrations.
//
// Usage:
//
//	migrate [up|down|status|version]
//
// The database DSN comes from the application config (DATABASE_DSN or
// config.yaml). Default command is "up".
package main

import (
	"database/sql"
	"flag"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver for database/sql
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"github.com/adaptivelang/srs-backend/internal/config"
	"github.com/adaptivelang/srs-backend/migrations"
)

func main() {
	_ = godotenv.Load()
	flag.Parse()

	command := "up"
	if flag.NArg() > 0 {
		command = flag.Arg(0)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("set dialect: %v", err)
	}

	if err := goose.Run(command, db, "."); err != nil {
		log.Fatalf("goose %s: %v", command, err)
	}
}
