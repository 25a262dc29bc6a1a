// Package badgerstore persists conversation histories in an embedded
// BadgerDB. This is the default backend: it needs no external service and
// gives the same "open a local db file" deployment shape as the rest of
// the bridge.
package badgerstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"whatsapp-ai-bridge/pkg/conversation"
)

// Open opens (or creates) the BadgerDB directory shared by all provider
// stores. SyncWrites is on so a Put is durable before it returns.
func Open(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).
		WithSyncWrites(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return db, nil
}

// OpenInMemory opens a throwaway in-memory instance. Test use only.
func OpenInMemory() (*badger.DB, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	return badger.Open(opts)
}

// Store is a conversation.Store over a shared BadgerDB, namespaced per
// provider. Keys are "<namespace>/<userID>", so two providers opened on
// the same db never share a keyspace.
type Store struct {
	db        *badger.DB
	namespace string
}

var _ conversation.Store = (*Store)(nil)

func New(db *badger.DB, namespace string) *Store {
	return &Store{db: db, namespace: namespace}
}

func (s *Store) key(userID string) []byte {
	return []byte(s.namespace + "/" + userID)
}

func (s *Store) Get(ctx context.Context, userID string) (conversation.History, bool, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key(userID))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &conversation.StorageError{Op: "get", Err: err}
	}

	var msgs conversation.History
	if err := json.Unmarshal(raw, &msgs); err != nil {
		return nil, false, &conversation.StorageError{Op: "get", Err: err}
	}
	return msgs, true, nil
}

func (s *Store) Put(ctx context.Context, userID string, msgs conversation.History) error {
	if msgs == nil {
		msgs = conversation.History{}
	}
	raw, err := json.Marshal(msgs)
	if err != nil {
		return &conversation.StorageError{Op: "put", Err: err}
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key(userID), raw)
	})
	if err != nil {
		return &conversation.StorageError{Op: "put", Err: err}
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.Put(ctx, userID, conversation.History{})
}
