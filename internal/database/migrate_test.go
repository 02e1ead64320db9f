package database

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"finlearn/internal/config"
	"finlearn/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const migrationsDir = "../../database/migrations"

func TestMain(m *testing.M) {
	if err := logger.Initialize(config.LoggerConfig{Level: "error"}); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

func TestMigrationFilesArePaired(t *testing.T) {
	entries, err := os.ReadDir(migrationsDir)
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	assert.Equal(t, ups, downs, "every up migration needs a matching down migration")
}

func TestRunMigrations_RejectsUnknownDirection(t *testing.T) {
	err := RunMigrations("pgx5://nobody@127.0.0.1:1/none", migrationsDir, Direction("sideways"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migration direction")
}

// TestRunMigrations_UpDown needs a disposable database in
// APP_TEST_MIGRATE_URL (pgx5:// scheme).
func TestRunMigrations_UpDown(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping migration round trip in short mode.")
	}
	url := os.Getenv("APP_TEST_MIGRATE_URL")
	if url == "" {
		t.Skip("APP_TEST_MIGRATE_URL not set")
	}
	dir, err := filepath.Abs(migrationsDir)
	require.NoError(t, err)

	require.NoError(t, RunMigrations(url, dir, Up))
	require.NoError(t, RunMigrations(url, dir, Up), "re-applying a current schema is not an error")
	require.NoError(t, RunMigrations(url, dir, Down))
	require.NoError(t, RunMigrations(url, dir, Up))
}
