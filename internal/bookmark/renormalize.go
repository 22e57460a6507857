package bookmark

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/store"
)

// RenormalizeReport summarizes a renormalize pass over every bookmark owner
type RenormalizeReport struct {
	Users     int
	Rewritten int64
	Failed    int64
}

// RenormalizeAll compacts the order indexes of every user owning bookmarks, workers users at a time.
// A failing user is logged and counted, the pass carries on with the others.
func RenormalizeAll(ctx context.Context, st store.Store, svc Service, workers int, queueSize int) (*RenormalizeReport, error) {
	owners, err := st.ListBookmarkOwners(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmark owners: %w", err)
	}

	if workers <= 0 {
		workers = 1
	}
	pool := pond.NewPool(workers, pond.WithQueueSize(queueSize), pond.WithContext(ctx))

	var rewritten, failed atomic.Int64
	for _, userID := range owners {
		pool.Submit(func() {
			n, err := svc.Renormalize(ctx, userID)
			if err != nil {
				failed.Add(1)
				logger.ErrorCtx(ctx, fmt.Errorf("failed to renormalize bookmarks: %w", err), zap.String("userID", userID))
				return
			}
			rewritten.Add(int64(n))
		})
	}
	pool.StopAndWait()

	report := &RenormalizeReport{
		Users:     len(owners),
		Rewritten: rewritten.Load(),
		Failed:    failed.Load(),
	}
	logger.InfoCtx(ctx, "Renormalized bookmarks",
		zap.Int("users", report.Users),
		zap.Int64("rewritten", report.Rewritten),
		zap.Int64("failed", report.Failed),
	)

	return report, ctx.Err()
}
