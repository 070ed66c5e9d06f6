package main

import (
	"errors"
	"log"
	"os"
	"path/filepath"

	"sanction-bot/bot"
	"sanction-bot/config"
	"sanction-bot/handlers"
	sanctions_db "sanction-bot/utils/database/sanctions"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingToken) {
			log.Fatal("Error: BOT_TOKEN environment variable not set")
		}
		log.Fatalf("Error loading config: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	store, err := sanctions_db.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Error initializing sanction database: %v", err)
	}

	b, err := bot.New(cfg, store)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}

	handlers.Register(b)

	b.Run()

	b.Close()
}
