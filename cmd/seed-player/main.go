package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/playmatatu/slimepool/internal/auth"
	"github.com/playmatatu/slimepool/internal/config"
	"github.com/playmatatu/slimepool/internal/database"
	"github.com/playmatatu/slimepool/internal/players"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.Connect(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	name := os.Getenv("SEED_PLAYER_NAME")
	if name == "" {
		name = "tester"
		log.Printf("Using default player name: %s", name)
	}

	pin := os.Getenv("SEED_PLAYER_PIN")
	if pin == "" {
		pin = "1234"
		log.Printf("WARNING: Using default PIN. Set SEED_PLAYER_PIN for anything shared!")
	}
	if err := auth.ValidatePIN(pin); err != nil {
		log.Fatalf("Invalid PIN: %v", err)
	}

	hash, err := auth.HashPIN(pin)
	if err != nil {
		log.Fatalf("Failed to hash PIN: %v", err)
	}

	repo := players.NewRepository(db)
	p, err := repo.Create(context.Background(), name, hash)
	if errors.Is(err, players.ErrNameTaken) {
		log.Fatalf("Player %q already exists", name)
	}
	if err != nil {
		log.Fatalf("Failed to create player: %v", err)
	}

	log.Printf("Player created: id=%d name=%s", p.ID, p.DisplayName)
	log.Println("Log in with POST /api/v1/players/login")
}
