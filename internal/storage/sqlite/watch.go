package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/julianstephens/seasonal/internal/constants"
	"github.com/julianstephens/seasonal/internal/logger"
	"github.com/julianstephens/seasonal/internal/storage"
)

// Watch polls document revisions and emits an event for every document whose
// revision moved, including writes made by other processes. The channel is
// closed when ctx is done or the store is closed.
func (s *Store) Watch(ctx context.Context) (<-chan storage.Event, error) {
	db := s.db
	if db == nil {
		return nil, storage.ErrNotInitialized
	}

	seen, err := revisions(ctx, db)
	if err != nil {
		return nil, err
	}

	events := make(chan storage.Event, constants.WatchBufferSize)

	go func() {
		defer close(events)

		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.closed:
				return
			case <-ticker.C:
			}

			current, err := revisions(ctx, db)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logger.Warn("Failed to poll document revisions", "error", err)
				continue
			}

			for ref, rev := range current {
				if seen[ref] == rev {
					continue
				}
				select {
				case events <- storage.Event{Type: storage.EventDocumentChanged, Ref: ref}:
					seen[ref] = rev
				default:
					// Consumer is behind; keep the old revision so the next
					// poll reports this document again.
				}
			}
		}
	}()

	return events, nil
}

func revisions(ctx context.Context, db *sql.DB) (map[storage.DocRef]int64, error) {
	rows, err := db.QueryContext(ctx, "SELECT collection, id, revision FROM documents")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	revs := make(map[storage.DocRef]int64)
	for rows.Next() {
		var (
			ref storage.DocRef
			rev int64
		)
		if err := rows.Scan(&ref.Collection, &ref.ID, &rev); err != nil {
			return nil, err
		}
		revs[ref] = rev
	}
	return revs, rows.Err()
}
