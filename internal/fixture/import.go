package fixture

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tabletpos/internal/store"
)

// Import writes rows into st in one transaction. An existing tablet with the
// same ID is replaced, so re-importing a fixture is repeatable.
func Import(ctx context.Context, st *store.Store, rows Rows) error {
	return st.WithTx(ctx, func(tx *store.Tx) error {
		return WriteRows(ctx, tx, rows)
	})
}

// WriteRows replaces the tablet in rows inside tx.
func WriteRows(ctx context.Context, tx *store.Tx, rows Rows) error {
	if _, err := tx.ReadTablet(ctx, rows.Tablet.ID); err == nil {
		if err := tx.DeleteTablet(ctx, rows.Tablet.ID); err != nil {
			return err
		}
	} else if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("read tablet %s: %w", rows.Tablet.ID, err)
	}

	if err := tx.InsertTablet(ctx, rows.Tablet); err != nil {
		return err
	}
	for _, u := range rows.Units {
		if err := tx.InsertUnit(ctx, u); err != nil {
			return err
		}
	}
	for _, m := range rows.Markups {
		if err := tx.InsertMarkup(ctx, m); err != nil {
			return err
		}
	}
	for _, n := range rows.Nodes {
		if err := tx.InsertNode(ctx, n); err != nil {
			return err
		}
	}
	return nil
}
