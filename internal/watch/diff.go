// Package watch implements the wallet-watch loop: it periodically re-fetches
// recent transfer activity for every watched address and turns the repeated
// full snapshots into an incremental stream of new-since-last-seen events.
package watch

import (
	"eth-token-sentry/internal/domain"
	"eth-token-sentry/internal/storage"
)

// Diff computes strictly-newer transfer events against per-(subscriber,
// address) cursors. Cursors only move forward, and only on success; a cycle
// whose fetch failed never reaches Advance, so the next cycle re-derives the
// same baseline and nothing is lost.
type Diff struct {
	cursors storage.CursorStore
}

// NewDiff creates a diff engine over the given cursor store.
func NewDiff(cursors storage.CursorStore) *Diff {
	return &Diff{cursors: cursors}
}

// Advance feeds one freshly fetched, newest-first page of transfers through
// the cursor for (sub, address) and returns the strictly newer events,
// oldest-first.
//
// The first call for a pair seeds the cursor to the newest record's
// timestamp and returns nothing: the first cycle establishes a baseline, it
// does not notify on pre-existing history. Subsequent calls return the
// maximal prefix of fresh records whose timestamp strictly exceeds the
// cursor, then advance the cursor to the newest returned timestamp.
func (d *Diff) Advance(sub domain.SubscriberID, address string, fresh []domain.TokenTransfer) []domain.TokenTransfer {
	if len(fresh) == 0 {
		return nil
	}

	cursor, ok := d.cursors.Get(sub, address)
	if !ok {
		d.cursors.Put(sub, address, fresh[0].TimeStamp)
		return nil
	}

	// Records are contiguous-descending, so the first non-newer record
	// ends the scan.
	var prefix []domain.TokenTransfer
	for _, rec := range fresh {
		if rec.TimeStamp <= cursor {
			break
		}
		prefix = append(prefix, rec)
	}
	if len(prefix) == 0 {
		return nil
	}

	d.cursors.Put(sub, address, prefix[0].TimeStamp)

	// Reverse so the caller notifies in chronological order.
	for i, j := 0, len(prefix)-1; i < j; i, j = i+1, j-1 {
		prefix[i], prefix[j] = prefix[j], prefix[i]
	}
	return prefix
}
