package models

import (
	"database/sql"
	"time"

	"github.com/playmatatu/slimepool/internal/game"
)

// Player represents a user in the system
type Player struct {
	ID          int    `db:"id" json:"id"`
	DisplayName string `db:"display_name" json:"display_name"`
	PINHash     string `db:"pin_hash" json:"-"`
	TotalMoney  int    `db:"total_money" json:"total_money"`
	BestRound   int    `db:"best_round" json:"best_round"`
	GamesPlayed int    `db:"games_played" json:"games_played"`
	game.Levels
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	LastActive sql.NullTime `db:"last_active" json:"last_active,omitempty"`
}

// GameResult is one finished game
type GameResult struct {
	ID        int       `db:"id" json:"id"`
	PlayerID  int       `db:"player_id" json:"player_id"`
	SessionID string    `db:"session_id" json:"session_id"`
	Money     int       `db:"money" json:"money"`
	Round     int       `db:"round" json:"round"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LeaderboardEntry is one row of the public leaderboard
type LeaderboardEntry struct {
	PlayerID    int    `db:"player_id" json:"player_id"`
	DisplayName string `db:"display_name" json:"display_name"`
	BestRound   int    `db:"best_round" json:"best_round"`
	TotalMoney  int    `db:"total_money" json:"total_money"`
	GamesPlayed int    `db:"games_played" json:"games_played"`
}
