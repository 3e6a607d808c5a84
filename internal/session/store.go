package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/storage/local"
)

const collectionSessions = "sessions"

// FileStore persists sessions as JSON documents
type FileStore struct {
	store *local.Store
}

// NewFileStore creates a new JSON session store under basePath
func NewFileStore(basePath string) (*FileStore, error) {
	store, err := local.NewStore(basePath)
	if err != nil {
		return nil, fmt.Errorf("create local store: %w", err)
	}
	return &FileStore{store: store}, nil
}

// Save persists a session
func (s *FileStore) Save(_ context.Context, sess *Session) error {
	return s.store.Save(collectionSessions, sess.ID.String(), sess)
}

// Get retrieves a session by ID
func (s *FileStore) Get(_ context.Context, id string) (*Session, error) {
	if _, err := ParseID(id); err != nil {
		return nil, domain.ErrSessionNotFound
	}

	var sess Session
	if err := s.store.Load(collectionSessions, id, &sess); err != nil {
		if errors.Is(err, local.ErrNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return &sess, nil
}

// Delete removes a session
func (s *FileStore) Delete(_ context.Context, id string) error {
	if _, err := ParseID(id); err != nil {
		return domain.ErrSessionNotFound
	}

	if err := s.store.Delete(collectionSessions, id); err != nil {
		if errors.Is(err, local.ErrNotFound) {
			return domain.ErrSessionNotFound
		}
		return err
	}
	return nil
}

// List returns all session IDs
func (s *FileStore) List(_ context.Context) ([]string, error) {
	return s.store.List(collectionSessions)
}
