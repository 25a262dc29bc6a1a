package conversation

import (
	"context"
	"fmt"
)

// Store persists per-user conversation histories for a single AI provider.
// Providers never share a keyspace: a user switching providers starts a
// fresh history under the new provider's store.
//
// Concurrency contract: operations on different keys do not block each
// other. Operations on the same key are last-writer-wins; the upstream
// webhook is assumed to serialize deliveries per user.
type Store interface {
	// Get returns the stored history for userID. found is false when the
	// key has never been written ("never talked"); err is non-nil only on
	// a real storage failure. The two are never conflated: a store outage
	// must not read as an empty history.
	Get(ctx context.Context, userID string) (msgs History, found bool, err error)

	// Put overwrites the stored history for userID. The write is durable
	// before Put returns; there is no write-behind buffering.
	Put(ctx context.Context, userID string, msgs History) error

	// Clear resets the stored history to the empty sequence. Equivalent to
	// Put(userID, History{}).
	Clear(ctx context.Context, userID string) error
}

// StorageError wraps a failure reading or writing the history store so
// callers can tell it apart from provider/network failures.
type StorageError struct {
	Op  string // "get", "put" or "clear"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("conversation store %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
