package players

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/slimepool/internal/models"
	"github.com/playmatatu/slimepool/internal/session"
)

var (
	ErrNotFound  = errors.New("player not found")
	ErrNameTaken = errors.New("display name already taken")
)

const playerColumns = `id, display_name, pin_hash, total_money, best_round, games_played,
	max_speed_level, starting_mass_level, profitability_level, sliding_level, aim_assist_level,
	created_at, last_active`

// Repository stores player profiles and game results in PostgreSQL.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new player with an already hashed PIN.
func (r *Repository) Create(ctx context.Context, name, pinHash string) (*models.Player, error) {
	var p models.Player
	err := r.db.GetContext(ctx, &p,
		`INSERT INTO players (display_name, pin_hash, created_at) VALUES ($1, $2, NOW()) RETURNING `+playerColumns,
		name, pinHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("insert player: %w", err)
	}
	log.Printf("[DB] Created player %d (%s)", p.ID, p.DisplayName)
	return &p, nil
}

func (r *Repository) GetByName(ctx context.Context, name string) (*models.Player, error) {
	var p models.Player
	err := r.db.GetContext(ctx, &p, `SELECT `+playerColumns+` FROM players WHERE display_name=$1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	var p models.Player
	err := r.db.GetContext(ctx, &p, `SELECT `+playerColumns+` FROM players WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveProgress stores the levels and totals a player carries between games.
func (r *Repository) SaveProgress(ctx context.Context, p session.Progress) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE players SET
			total_money = $1,
			best_round = GREATEST(best_round, $2),
			max_speed_level = $3,
			starting_mass_level = $4,
			profitability_level = $5,
			sliding_level = $6,
			aim_assist_level = $7,
			last_active = NOW()
		WHERE id = $8`,
		p.TotalMoney, p.BestRound,
		p.Levels.MaxSpeed, p.Levels.StartingMass, p.Levels.Profitability, p.Levels.Sliding, p.Levels.AimAssist,
		p.PlayerID)
	if err != nil {
		return fmt.Errorf("save progress for player %d: %w", p.PlayerID, err)
	}
	return nil
}

// RecordResult stores a finished game and bumps the player's counters.
func (r *Repository) RecordResult(ctx context.Context, res session.Result) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO game_results (player_id, session_id, money, round, created_at) VALUES ($1, $2, $3, $4, NOW())`,
		res.PlayerID, res.SessionID, res.Money, res.Round); err != nil {
		return fmt.Errorf("insert game result: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE players SET games_played = games_played + 1, best_round = GREATEST(best_round, $1), last_active = NOW() WHERE id = $2`,
		res.Round, res.PlayerID); err != nil {
		return fmt.Errorf("update player %d: %w", res.PlayerID, err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("[DB] Recorded result for player %d: round=%d money=%d", res.PlayerID, res.Round, res.Money)
	return nil
}

// Results returns a player's most recent games.
func (r *Repository) Results(ctx context.Context, playerID, limit int) ([]models.GameResult, error) {
	results := []models.GameResult{}
	err := r.db.SelectContext(ctx, &results,
		`SELECT id, player_id, session_id, money, round, created_at FROM game_results WHERE player_id=$1 ORDER BY created_at DESC LIMIT $2`,
		playerID, limit)
	return results, err
}

// Leaderboard ranks players by best round, then banked money.
func (r *Repository) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	entries := []models.LeaderboardEntry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id AS player_id, display_name, best_round, total_money, games_played
		FROM players
		WHERE games_played > 0
		ORDER BY best_round DESC, total_money DESC, id ASC
		LIMIT $1`, limit)
	return entries, err
}

// ProgressOf returns what a new session starts from for p.
func ProgressOf(p *models.Player) session.Progress {
	return session.Progress{
		PlayerID:   p.ID,
		Levels:     p.Levels,
		TotalMoney: p.TotalMoney,
		BestRound:  p.BestRound,
	}
}
