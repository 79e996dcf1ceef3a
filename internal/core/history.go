package core

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JonMunkholm/csvport/internal/logging"
	"github.com/JonMunkholm/csvport/internal/models"
	"github.com/JonMunkholm/csvport/internal/store"
)

// beginRun assigns a run id, stores it in the context and logs the start.
func (s *Service) beginRun(ctx context.Context, key string, dir Direction, strategy Strategy, path string) (context.Context, *RunResult, *slog.Logger) {
	res := &RunResult{
		RunID:     uuid.NewString(),
		Entity:    key,
		Direction: dir,
		Strategy:  strategy,
		Path:      path,
		StartedAt: s.now(),
	}
	ctx = logging.WithRunID(ctx, res.RunID)
	logger := logging.WithFields(ctx,
		"entity", key,
		"direction", dir,
		"strategy", strategy,
		"file", path,
	)
	logger.Info(string(dir) + " started")
	return ctx, res, logger
}

// finishRun logs the outcome and records it in csv_transfers. A failure to
// record is logged and does not replace the run's own error.
func (s *Service) finishRun(ctx context.Context, res *RunResult, logger *slog.Logger, runErr error) {
	finished := s.now()
	res.Duration = finished.Sub(res.StartedAt)

	t := &models.Transfer{
		ID:         res.RunID,
		Entity:     res.Entity,
		Direction:  string(res.Direction),
		Strategy:   string(res.Strategy),
		FileName:   res.Path,
		Rows:       res.Rows,
		StartedAt:  res.StartedAt,
		FinishedAt: finished,
	}

	if runErr != nil {
		t.Error = runErr.Error()
		logger.Error(string(res.Direction)+" failed",
			"error", runErr,
			"rows", res.Rows,
			"duration", res.Duration,
		)
	} else {
		logger.Info(string(res.Direction)+" completed",
			"rows", res.Rows,
			"inserted", res.Inserted,
			"duration", res.Duration,
		)
	}

	// The run's context may already be cancelled.
	if err := store.RecordTransfer(context.WithoutCancel(ctx), s.store.DB, t); err != nil {
		logger.Warn("failed to record transfer", "error", err)
	}
}
