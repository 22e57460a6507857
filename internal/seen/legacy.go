package seen

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/feral-file/ff-ugc/internal/logger"
	"github.com/feral-file/ff-ugc/internal/store"
)

// ImportReport summarizes a legacy sentinel import
type ImportReport struct {
	// Users is the number of users that had at least one legacy sentinel row
	Users int
	// Rows is the number of legacy sentinel rows folded and deleted
	Rows int
	// Advanced is the number of watermarks moved forward by a legacy value
	Advanced int
}

// maxMergeHops bounds how far a chain of merged identities is followed
const maxMergeHops = 16

// ImportLegacySentinels folds the watermarks that older deployments kept as ugc_submissions rows
// into seen_watermarks, keeping the later value per user, and deletes those rows. Rows owned by a
// merged away identity land on the identity it was merged into. Each user is imported in its own
// transaction so the command can be re-run after a failure.
func ImportLegacySentinels(ctx context.Context, st store.Store, tracker Tracker) (*ImportReport, error) {
	rows, err := st.ListLegacySentinels(ctx)
	if err != nil {
		return nil, err
	}

	type legacy struct {
		latest time.Time
		ids    []string
	}
	byUser := make(map[string]*legacy)
	var users []string
	survivors := make(map[string]string)
	for _, row := range rows {
		userID, ok := survivors[row.UserID]
		if !ok {
			userID, err = survivorOf(ctx, st, row.UserID)
			if err != nil {
				return nil, err
			}
			survivors[row.UserID] = userID
		}

		l, ok := byUser[userID]
		if !ok {
			l = &legacy{}
			byUser[userID] = l
			users = append(users, userID)
		}
		if row.CreatedAt.After(l.latest) {
			l.latest = row.CreatedAt
		}
		l.ids = append(l.ids, row.ID)
	}

	report := &ImportReport{}
	for _, userID := range users {
		l := byUser[userID]
		advanced := false

		err := st.WithTx(ctx, func(tx store.Store) error {
			current, err := tx.FindSentinel(ctx, userID)
			if err != nil {
				return err
			}
			if current == nil || l.latest.After(current.LastSeenAt) {
				if err := tx.UpsertSentinel(ctx, userID, l.latest); err != nil {
					return err
				}
				advanced = true
			}

			for _, id := range l.ids {
				if err := tx.DeleteUGCSubmission(ctx, id); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return report, err
		}

		report.Users++
		report.Rows += len(l.ids)
		if advanced {
			report.Advanced++
			if tracker != nil {
				tracker.Invalidate(userID)
			}
		}

		logger.DebugCtx(ctx, "Imported legacy seen sentinels",
			zap.String("userID", userID),
			zap.Int("rows", len(l.ids)),
			zap.Bool("advanced", advanced))
	}

	return report, nil
}

// survivorOf follows merged_into_id from userID to the live identity holding its records.
// Ids without an identity row are returned unchanged.
func survivorOf(ctx context.Context, st store.Store, userID string) (string, error) {
	current := userID
	for range maxMergeHops {
		ident, err := st.FindIdentity(ctx, current)
		if err != nil {
			return "", fmt.Errorf("failed to find identity: %w", err)
		}
		if ident == nil || !ident.Tombstoned || ident.MergedIntoID == nil {
			return current, nil
		}
		current = *ident.MergedIntoID
	}

	return "", fmt.Errorf("merge chain of identity %s is longer than %d", userID, maxMergeHops)
}
