package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/tabletpos/internal/position"
)

// ErrTabletNotFound is returned when a recompute names a tablet that has no row.
var ErrTabletNotFound = errors.New("tablet not found")

// RecomputeTablet runs rc over one tablet inside a single transaction.
// Either every changed row is committed or none is.
func (s *Store) RecomputeTablet(ctx context.Context, rc *position.Recomputer, tabletID string) (position.Report, error) {
	var report position.Report
	err := s.WithTx(ctx, func(tx *Tx) error {
		r, err := recomputeIn(ctx, tx, rc, tabletID)
		report = r
		return err
	})
	if err != nil {
		return position.Report{}, err
	}
	return report, nil
}

// EditTablet applies fn and then recomputes tabletID in the same
// transaction. A failing edit or recompute rolls back both, so an edit is
// never committed without its renumbering.
func (s *Store) EditTablet(ctx context.Context, rc *position.Recomputer, tabletID string, fn func(tx *Tx) error) (position.Report, error) {
	var report position.Report
	err := s.WithTx(ctx, func(tx *Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		r, err := recomputeIn(ctx, tx, rc, tabletID)
		report = r
		return err
	})
	if err != nil {
		return position.Report{}, err
	}
	return report, nil
}

func recomputeIn(ctx context.Context, tx *Tx, rc *position.Recomputer, tabletID string) (position.Report, error) {
	if _, err := tx.ReadTablet(ctx, tabletID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return position.Report{}, fmt.Errorf("recompute %s: %w", tabletID, ErrTabletNotFound)
		}
		return position.Report{}, fmt.Errorf("read tablet %s: %w", tabletID, err)
	}
	return rc.Recompute(ctx, tx, tabletID)
}

// RecomputeAll recomputes every tablet in ID order, one transaction per
// tablet. It stops at the first failing tablet; tablets before it stay
// committed.
func (s *Store) RecomputeAll(ctx context.Context, rc *position.Recomputer) ([]position.Report, error) {
	ids, err := s.ListTabletIDs(ctx)
	if err != nil {
		return nil, err
	}

	reports := make([]position.Report, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		r, err := s.RecomputeTablet(ctx, rc, id)
		if err != nil {
			return reports, err
		}
		reports = append(reports, r)
	}
	return reports, nil
}
