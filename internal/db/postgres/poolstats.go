package postgres

import (
	"context"
	"time"

	"github.com/jusunglee/kyrlat/internal/db"
	"github.com/jusunglee/kyrlat/internal/metrics"
)

// ExportPoolStats periodically copies pgxpool stats into the DBPool gauges
// until ctx is done. It returns immediately for non-PostgreSQL repositories.
func ExportPoolStats(ctx context.Context, repo db.Repository, every time.Duration) {
	pg, ok := repo.(*Repository)
	if !ok {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s := pg.PoolStats()
			metrics.DBPoolTotalConns.Set(float64(s.TotalConns()))
			metrics.DBPoolIdleConns.Set(float64(s.IdleConns()))
			metrics.DBPoolAcquiredConns.Set(float64(s.AcquiredConns()))
			metrics.DBPoolMaxConns.Set(float64(s.MaxConns()))
		case <-ctx.Done():
			return
		}
	}
}
