package cli_test

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/santhoseks/openmrs-core/internal/cli"
	"github.com/santhoseks/openmrs-core/internal/config"
	"github.com/santhoseks/openmrs-core/internal/repository/sql"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := sql.StartDB(t.Context(), config.DB{
		Driver: config.DriverSQLite,
		Path:   fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

// execute runs the command line against db and returns what it printed.
func execute(t *testing.T, db *gorm.DB, cfg *config.Config, args ...string) (string, error) {
	t.Helper()

	if cfg == nil {
		cfg = &config.Config{}
	}

	out := &bytes.Buffer{}
	cmd := cli.NewRootCmd(cli.WithDB(db), cli.WithConfig(cfg))
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(t.Context())

	return out.String(), err
}

func writeFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fieldtypes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}
