package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"mediavault/internal/config"
	"mediavault/internal/database"
	"mediavault/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}

	codes := repository.NewTempCodeRepository(db)
	removed, err := codes.DeleteExpired(context.Background())
	if err != nil {
		log.Fatalf("cleanup temp_codes failed: %v", err)
	}

	log.Printf("auth cleanup completed: temp_codes=%d", removed)
}
