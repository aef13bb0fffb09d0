// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package memstore provides an in-memory comment store with no
// persistence. It is suitable for tests and for short-lived embedding
// where comments do not need to survive the process.
package memstore

import (
	"context"
	"sync"

	"github.com/threadworks/commentable/comment"
	"github.com/threadworks/commentable/pointer"
	"github.com/threadworks/commentable/store"
)

// Store is an in-memory store.Store implementation. It is safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	table *store.Table
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{table: store.NewTable()}
}

// Save implements store.Store.
func (s *Store) Save(ctx context.Context, c comment.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.Put(c)
	return nil
}

// FindByID implements store.Store.
func (s *Store) FindByID(ctx context.Context, id string) (*comment.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.table.Get(id)
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// FindByPointer implements store.Store.
func (s *Store) FindByPointer(ctx context.Context, p pointer.Pointer) ([]comment.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.ByPointerKey(p.Serialize()), nil
}

// FindByAuthor implements store.Store.
func (s *Store) FindByAuthor(ctx context.Context, authorID string) ([]comment.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.ByAuthor(authorID), nil
}

// Delete implements store.Store.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.table.Remove(id), nil
}

// Search implements store.Store.
func (s *Store) Search(ctx context.Context, query string) ([]comment.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Search(query), nil
}

// Recent implements store.Store.
func (s *Store) Recent(ctx context.Context, limit int) ([]comment.Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table.Recent(limit), nil
}

// Clear implements store.Store.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.Clear()
	return nil
}

// Close implements store.Store. An in-memory store holds no resources.
func (s *Store) Close() error { return nil }
