package store

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/JonMunkholm/csvport/internal/models"
)

// RecordTransfer stores the outcome of one export or import run.
func RecordTransfer(ctx context.Context, db bun.IDB, t *models.Transfer) error {
	if _, err := db.NewInsert().Model(t).Exec(ctx); err != nil {
		return fmt.Errorf("record transfer: %w", err)
	}
	return nil
}

// RecentTransfers returns up to limit runs, newest first.
func RecentTransfers(ctx context.Context, db bun.IDB, limit int) ([]models.Transfer, error) {
	var ts []models.Transfer
	q := db.NewSelect().Model(&ts).OrderExpr("?TableAlias.started_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select transfers: %w", err)
	}
	return ts, nil
}
