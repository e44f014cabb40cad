package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jask/agentwallet/internal/database"
	"github.com/jask/agentwallet/internal/database/repository"
)

// MaintenanceService keeps the local review journal bounded.
type MaintenanceService struct {
	DB *sql.DB
}

// PruneJournal drops journal entries older than retention and compacts the file when
// anything was removed. A non-positive retention keeps everything.
func (s *MaintenanceService) PruneJournal(ctx context.Context, retention time.Duration) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	if retention <= 0 {
		return 0, nil
	}
	cutoff := database.Now().Add(-retention)
	n, err := repository.NewReviewEventRepo(s.DB).DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune journal: %w", err)
	}
	if n > 0 {
		_, _ = s.DB.ExecContext(ctx, "VACUUM")
		zerolog.Ctx(ctx).Info().Int64("removed", n).Time("cutoff", cutoff).Msg("pruned review journal")
	}
	return n, nil
}
