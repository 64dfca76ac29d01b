// Package testutil provisions throwaway Postgres schemas for integration
// tests.
package testutil

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"testing"
	"time"

	"betking-casino/internal/config"
	"betking-casino/internal/store"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var schemaNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// TestDSN reports the Postgres DSN used by integration tests.
func TestDSN() (string, error) {
	cfg, err := config.LoadTest()
	if err != nil {
		return "", err
	}
	return cfg.Postgres()
}

// OpenTestStore returns a Store bound to a fresh schema with every up
// migration applied in order. The schema is dropped when the test ends.
// The test is skipped when TEST_POSTGRES_DSN is unset.
func OpenTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn, err := TestDSN()
	if err != nil {
		t.Skipf("skip postgres test: %v", err)
	}
	ctx := context.Background()
	schema := fmt.Sprintf("casino_test_%d", time.Now().UnixNano())

	if err := execDDL(ctx, dsn, "CREATE SCHEMA %s", schema); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	t.Cleanup(func() {
		if err := execDDL(context.Background(), dsn, "DROP SCHEMA %s CASCADE", schema); err != nil {
			t.Logf("drop schema %s: %v", schema, err)
		}
	})

	st, err := store.New(withSearchPath(dsn, schema))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(st.Close)

	files, err := upMigrations()
	if err != nil {
		t.Fatalf("find migrations: %v", err)
	}
	for _, f := range files {
		sql, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := st.Pool.Exec(ctx, string(sql)); err != nil {
			t.Fatalf("apply %s: %v", filepath.Base(f), err)
		}
	}
	return st
}

func execDDL(ctx context.Context, dsn, format, schema string) error {
	if !schemaNamePattern.MatchString(schema) {
		return fmt.Errorf("schema %q does not match required pattern", schema)
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return err
	}
	defer pool.Close()
	_, err = pool.Exec(ctx, fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()))
	return err
}

// upMigrations walks up from the working directory to the first
// migrations/ folder and returns its *.up.sql files sorted by name.
func upMigrations() ([]string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	for {
		files, _ := filepath.Glob(filepath.Join(dir, "migrations", "*.up.sql"))
		if len(files) > 0 {
			sort.Strings(files)
			return files, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("no migrations directory above working dir")
		}
		dir = parent
	}
}

func withSearchPath(dsn, schema string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn + " search_path=" + schema
	}
	q := u.Query()
	q.Set("search_path", schema)
	u.RawQuery = q.Encode()
	return u.String()
}
