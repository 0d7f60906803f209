package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/Yapcheekian/shrt/config"
	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

// bootstrap applies the schema migrations in MIGRATIONS_DIR to the configured
// postgres database.
func main() {
	down := flag.Bool("down", false, "roll back the most recent migration")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("config.Load failed", err.Error())
		os.Exit(1)
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN())
	if err != nil {
		fmt.Println("sql.Open failed", err.Error())
		os.Exit(1)
	}
	defer db.Close()

	migrations := &migrate.FileMigrationSource{
		Dir: cfg.MigrationsDir,
	}

	direction, limit := migrate.Up, 0
	if *down {
		direction, limit = migrate.Down, 1
	}

	n, err := migrate.ExecMax(db, "postgres", migrations, direction, limit)
	if err != nil {
		fmt.Println("migrate failed: ", err.Error())
		os.Exit(1)
	}

	fmt.Printf("Applied %d migrations\n", n)
}
