package main

import (
	"errors"
	"fmt"
	"os"

	"course-catalog-go/internal/storage"
	"github.com/ardanlabs/conf"
	"github.com/golang-migrate/migrate/v4"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

type Config struct {
	StoragePath string `conf:"env:STORAGE_PATH,flag:storage-path,help:local storage file to migrate"`
	Direction   string `conf:"default:up,flag:direction,help:up applies pending migrations, down rolls all of them back"`
}

func main() {
	log.SetLevel(log.InfoLevel)
	log.Println("starting migrate")

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	var cfg Config
	if err := conf.Parse(os.Args[1:], "CATALOG", &cfg); err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			usage, err := conf.Usage("CATALOG", &cfg)
			if err != nil {
				log.Fatalf("generating usage: %v", err)
			}
			fmt.Println(usage)
			return
		}
		log.Fatalf("parsing config: %v", err)
	}

	if cfg.StoragePath == "" {
		log.Fatal("a storage path is required (--storage-path or CATALOG_STORAGE_PATH)")
	}

	log.Println("Opening local storage:", cfg.StoragePath)

	db, err := storage.Open(cfg.StoragePath)
	if err != nil {
		log.Fatalf("failed to open local storage: %v", err)
	}

	defer func() {
		if err := db.Close(); err != nil {
			log.Errorf("closing local storage: %v", err)
		}
	}()

	m, err := storage.NewMigrator(db)
	if err != nil {
		log.Fatal(err)
	}

	switch cfg.Direction {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	default:
		log.Fatalf("unknown direction %q, want up or down", cfg.Direction)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}

	fmt.Println("Migrations complete!")
}
