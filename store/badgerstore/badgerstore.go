// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package badgerstore provides the persistent comment store, backed by an
// embedded BadgerDB key-value slot.
//
// The whole store state (primary comment map plus both secondary indexes)
// is serialized as one JSON blob under a single configurable key and
// rewritten on every mutation. There is no write batching: a store method
// that returns without error has already flushed its state, so no caller
// observes a half-updated index.
//
// A corrupt blob found at load time is never fatal: it is logged, counted
// in metrics, and the store starts empty. Losing a local cache of
// comments is recoverable; refusing to start is not.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/threadworks/commentable/comment"
	"github.com/threadworks/commentable/internal/logging"
	"github.com/threadworks/commentable/metrics"
	"github.com/threadworks/commentable/pointer"
	"github.com/threadworks/commentable/store"
)

// DefaultKey is the storage slot used when Options.Key is empty.
const DefaultKey = "commentable:comments"

// Options configures a badger-backed store.
type Options struct {
	// Path is the directory BadgerDB stores its files in. Ignored when
	// DB is set.
	Path string

	// Key is the storage slot the comment blob lives under.
	// Default: DefaultKey. Distinct keys isolate independent comment
	// namespaces inside one database.
	Key string

	// DB is an already-open BadgerDB instance to share. When set, Close
	// leaves the database open for its owner.
	DB *badger.DB

	// InMemory opens BadgerDB without files. Only consulted when DB is
	// nil; useful for tests.
	InMemory bool
}

// Store is the persistent store.Store implementation. It is safe for
// concurrent use within one process; two processes sharing one database
// do not observe each other's in-flight mutations (last writer wins).
type Store struct {
	mu    sync.RWMutex
	table *store.Table
	db    *badger.DB
	key   []byte
	ownDB bool
}

// Open creates a store per opts and loads any previously persisted state.
func Open(opts Options) (*Store, error) {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}

	db := opts.DB
	ownDB := false
	if db == nil {
		badgerOpts := badger.DefaultOptions(opts.Path).WithLogger(nil)
		if opts.InMemory {
			badgerOpts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
		}
		var err error
		db, err = badger.Open(badgerOpts)
		if err != nil {
			return nil, fmt.Errorf("open badger at %q: %w", opts.Path, err)
		}
		ownDB = true
	}

	s := &Store{
		table: store.NewTable(),
		db:    db,
		key:   []byte(opts.Key),
		ownDB: ownDB,
	}
	s.load()
	return s, nil
}

// load reads the persisted blob into the table. Malformed data is logged
// and discarded; the store starts empty rather than failing.
func (s *Store) load() {
	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		s.discardCorrupt(err)
		return
	}
	if blob == nil {
		return
	}

	var snap store.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		s.discardCorrupt(err)
		return
	}
	if err := s.table.Load(snap); err != nil {
		s.discardCorrupt(err)
	}
}

func (s *Store) discardCorrupt(err error) {
	metrics.StoreLoadFailures.Inc()
	log := logging.Logger()
	log.Error().
		Str("component", "badgerstore").
		Str("key", string(s.key)).
		Err(err).
		Msg("discarding corrupt comment blob, starting empty")
	s.table.Clear()
}

// persist writes the current table state to the storage slot. Must be
// called with s.mu held for writing.
func (s *Store) persist() error {
	blob, err := json.Marshal(s.table.Snapshot())
	if err != nil {
		return fmt.Errorf("marshal comment blob: %w", err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.key, blob)
	})
	if err != nil {
		return fmt.Errorf("persist comment blob: %w", err)
	}
	return nil
}

// Save implements store.Store. The in-memory state and the persisted blob
// are both updated before Save returns.
func (s *Store) Save(ctx context.Context, c comment.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table.Put(c)
	return s.persist()
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
	if !s.table.Remove(id) {
		return false, nil
	}
	if err := s.persist(); err != nil {
		return false, err
	}
	return true, nil
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
	return s.persist()
}

// Close implements store.Store. The underlying database is closed only
// when this store opened it.
func (s *Store) Close() error {
	if !s.ownDB {
		return nil
	}
	return s.db.Close()
}
