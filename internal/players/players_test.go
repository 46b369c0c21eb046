package players

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/playmatatu/slimepool/internal/game"
	"github.com/playmatatu/slimepool/internal/session"
)

func newMockRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(sqlx.NewDb(db, "postgres")), mock
}

var playerRowColumns = []string{
	"id", "display_name", "pin_hash", "total_money", "best_round", "games_played",
	"max_speed_level", "starting_mass_level", "profitability_level", "sliding_level", "aim_assist_level",
	"created_at", "last_active",
}

func TestCreatePlayer(t *testing.T) {
	repo, mock := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO players`).
		WithArgs("gloop", "hash").
		WillReturnRows(sqlmock.NewRows(playerRowColumns).
			AddRow(1, "gloop", "hash", 0, 0, 0, 0, 0, 0, 0, 0, now, nil))

	p, err := repo.Create(context.Background(), "gloop", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID != 1 || p.DisplayName != "gloop" || p.PINHash != "hash" {
		t.Errorf("player = %+v", p)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestCreatePlayerNameTaken(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`INSERT INTO players`).
		WithArgs("gloop", "hash").
		WillReturnError(&pq.Error{Code: "23505"})

	if _, err := repo.Create(context.Background(), "gloop", "hash"); !errors.Is(err, ErrNameTaken) {
		t.Errorf("err = %v, want ErrNameTaken", err)
	}
}

func TestGetByNameReadsLevels(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM players WHERE display_name=\$1`).
		WithArgs("gloop").
		WillReturnRows(sqlmock.NewRows(playerRowColumns).
			AddRow(3, "gloop", "hash", 42, 9, 5, 1, 2, 3, 4, 0, time.Now(), time.Now()))

	p, err := repo.GetByName(context.Background(), "gloop")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	want := game.Levels{MaxSpeed: 1, StartingMass: 2, Profitability: 3, Sliding: 4}
	if p.Levels != want {
		t.Errorf("levels = %+v, want %+v", p.Levels, want)
	}
	if !p.LastActive.Valid {
		t.Error("last_active should be set")
	}

	prog := ProgressOf(p)
	if prog.PlayerID != 3 || prog.TotalMoney != 42 || prog.BestRound != 9 || prog.Levels != want {
		t.Errorf("progress = %+v", prog)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT .+ FROM players WHERE id=\$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(playerRowColumns))

	if _, err := repo.GetByID(context.Background(), 7); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveProgress(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(`UPDATE players SET`).
		WithArgs(15, 6, 1, 0, 2, 0, 3, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.SaveProgress(context.Background(), session.Progress{
		PlayerID:   4,
		Levels:     game.Levels{MaxSpeed: 1, Profitability: 2, AimAssist: 3},
		TotalMoney: 15,
		BestRound:  6,
	})
	if err != nil {
		t.Fatalf("SaveProgress: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordResultUsesTransaction(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO game_results`).
		WithArgs(2, "sess_abc", 11, 7).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE players SET games_played = games_played \+ 1`).
		WithArgs(7, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.RecordResult(context.Background(), session.Result{
		SessionID: "sess_abc",
		PlayerID:  2,
		Money:     11,
		Round:     7,
	})
	if err != nil {
		t.Fatalf("RecordResult: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestRecordResultRollsBackOnFailure(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO game_results`).WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	if err := repo.RecordResult(context.Background(), session.Result{PlayerID: 2}); err == nil {
		t.Fatal("expected an error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLeaderboard(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(`SELECT id AS player_id, display_name, best_round, total_money, games_played`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"player_id", "display_name", "best_round", "total_money", "games_played"}).
			AddRow(1, "gloop", 12, 300, 4).
			AddRow(2, "blob", 9, 800, 10))

	entries, err := repo.Leaderboard(context.Background(), 10)
	if err != nil {
		t.Fatalf("Leaderboard: %v", err)
	}
	if len(entries) != 2 || entries[0].DisplayName != "gloop" || entries[1].TotalMoney != 800 {
		t.Errorf("entries = %+v", entries)
	}
}
