package main

import (
	"context"
	"flag"
	"log"

	"github.com/prperemyshlev/siteauth/internal/config"
	"github.com/prperemyshlev/siteauth/migrations"
	"github.com/prperemyshlev/siteauth/pkg/database"
)

func main() {
	down := flag.Bool("down", false, "roll back all migrations instead of applying them")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	pg, err := database.NewPostgres(cfg.Postgres.DSN(), database.PoolOptions{})
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	if *down {
		if err := migrations.Down(pg.DB); err != nil {
			log.Fatalf("Failed to roll back migrations: %v", err)
		}
		log.Println("Migrations rolled back")
		return
	}

	if err := migrations.Up(pg.DB); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}
	log.Println("Migrations applied")
}
