package main

import (
	"context"
	"flag"
	"fmt"

	"taskmaster/internal/config"
	"taskmaster/internal/db"
	"taskmaster/internal/logger"
	"taskmaster/internal/migrations"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations")
	flag.Parse()

	if !*apply {
		names, err := migrations.Names()
		if err != nil {
			logger.Fatal("list migrations", "error", err)
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg := config.LoadDatabase()
	pool := db.Connect(cfg.DatabaseURL, db.Options{MinConns: 1, MaxConns: 2})
	defer pool.Close()

	err := migrations.Apply(context.Background(), pool, func(name string) {
		fmt.Printf("applied %s\n", name)
	})
	if err != nil {
		logger.Fatal("migration failed", "error", err)
	}
}
