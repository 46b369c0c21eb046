package migrations

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindLatestMigrationVersion(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"000001_init.up.sql",
		"000001_init.down.sql",
		"000007_results_index.up.sql",
		"000009_pending.down.sql",
		"notes.txt",
	} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "000042_dir.up.sql"), 0o755); err != nil {
		t.Fatal(err)
	}

	if got := findLatestMigrationVersion(dir); got != 7 {
		t.Errorf("latest = %d, want 7", got)
	}
	if got := findLatestMigrationVersion(filepath.Join(dir, "missing")); got != 0 {
		t.Errorf("missing dir = %d, want 0", got)
	}
}

func TestRepositoryMigrationsPresent(t *testing.T) {
	if got := findLatestMigrationVersion(filepath.Join("..", "..", DefaultDir)); got < 1 {
		t.Errorf("expected at least one up migration in %s, got %d", DefaultDir, got)
	}
}

func TestRunMigrationsRequiresURL(t *testing.T) {
	if err := RunMigrations("", ""); err == nil {
		t.Error("expected an error for an empty database URL")
	}
}
