package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tabletpos/internal/position"
	"github.com/roach88/tabletpos/internal/tablet"
	"github.com/roach88/tabletpos/internal/testutil"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func quietRecomputer() *position.Recomputer {
	return position.New(position.Options{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
}

// seedTablet inserts tablet t1 with the given units, markups and nodes.
func seedTablet(t *testing.T, s *Store, units []tablet.EpigraphicUnit, markups []tablet.Markup, nodes []tablet.DiscourseNode) {
	t.Helper()
	ctx := context.Background()
	err := s.WithTx(ctx, func(tx *Tx) error {
		if err := tx.InsertTablet(ctx, tablet.Tablet{ID: testutil.DefaultTablet, Designation: "BM 12345"}); err != nil {
			return err
		}
		for _, u := range units {
			if err := tx.InsertUnit(ctx, u); err != nil {
				return err
			}
		}
		for _, m := range markups {
			if err := tx.InsertMarkup(ctx, m); err != nil {
				return err
			}
		}
		for _, n := range nodes {
			if err := tx.InsertNode(ctx, n); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func unitIDs(units []tablet.EpigraphicUnit) []string {
	ids := make([]string, len(units))
	for i, u := range units {
		ids[i] = u.ID
	}
	return ids
}

func nodeIDs(nodes []tablet.DiscourseNode) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("failed to get table info for %q: %v", table, err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue any
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			t.Fatalf("failed to scan column info: %v", err)
		}
		columns = append(columns, name)
	}
	return columns
}

func getTableIndexes(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='index' AND tbl_name=?", table)
	if err != nil {
		t.Fatalf("failed to get indexes for %q: %v", table, err)
	}
	defer rows.Close()

	var indexes []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan index name: %v", err)
		}
		indexes = append(indexes, name)
	}
	return indexes
}
