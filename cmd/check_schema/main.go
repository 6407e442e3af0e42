package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"taskmaster/internal/config"
	"taskmaster/internal/db"
	"taskmaster/internal/logger"
	"taskmaster/internal/repository"
)

func main() {
	cfg := config.LoadDatabase()
	pool := db.Connect(cfg.DatabaseURL, db.Options{MinConns: 1, MaxConns: 2})
	defer pool.Close()

	reports, err := repository.CheckSchema(context.Background(), pool)
	if err != nil {
		logger.Fatal("schema check failed", "error", err)
	}

	ok := true
	for _, r := range reports {
		switch {
		case !r.Exists:
			ok = false
			fmt.Printf("%s: table not found\n", r.Table)
		case len(r.Missing) > 0:
			ok = false
			fmt.Printf("%s: missing columns: %s\n", r.Table, strings.Join(r.Missing, ", "))
		default:
			fmt.Printf("%s: ok\n", r.Table)
		}
		if len(r.Legacy) > 0 {
			fmt.Printf("%s: warning: legacy columns present: %s\n", r.Table, strings.Join(r.Legacy, ", "))
		}
	}

	if !ok {
		os.Exit(1)
	}
}
