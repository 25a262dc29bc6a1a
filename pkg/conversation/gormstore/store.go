// Package gormstore persists conversation histories in Postgres through
// GORM. Selected when a DB connection string is configured; deployments
// that want their chat state in the main database instead of a local
// BadgerDB directory use this backend.
package gormstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"whatsapp-ai-bridge/pkg/conversation"
)

// ConversationThread is the storage row for one user's history under one
// provider. Turns are kept as a JSONB document; the store is a key-value
// mapping, not a relational model of individual messages.
type ConversationThread struct {
	Provider  string         `gorm:"primaryKey;size:32"`
	UserId    string         `gorm:"primaryKey;size:64"`
	Turns     datatypes.JSON `gorm:"type:jsonb"`
	UpdatedAt time.Time
}

// Migrate creates the conversation_threads table if needed.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&ConversationThread{})
}

// Store is a conversation.Store backed by Postgres. The provider column
// keeps per-provider keyspaces disjoint inside the shared table.
type Store struct {
	db       *gorm.DB
	provider string
}

var _ conversation.Store = (*Store)(nil)

func New(db *gorm.DB, provider string) *Store {
	return &Store{db: db, provider: provider}
}

func (s *Store) Get(ctx context.Context, userID string) (conversation.History, bool, error) {
	var row ConversationThread
	err := s.db.WithContext(ctx).
		Where("provider = ? AND user_id = ?", s.provider, userID).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &conversation.StorageError{Op: "get", Err: err}
	}

	var msgs conversation.History
	if err := json.Unmarshal(row.Turns, &msgs); err != nil {
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
	row := ConversationThread{
		Provider: s.provider,
		UserId:   userID,
		Turns:    datatypes.JSON(raw),
	}
	err = s.db.WithContext(ctx).Save(&row).Error
	if err != nil {
		return &conversation.StorageError{Op: "put", Err: err}
	}
	return nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	return s.Put(ctx, userID, conversation.History{})
}
