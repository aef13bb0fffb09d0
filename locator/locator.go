// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package locator hands out the one shared comment service for
// production wiring: constructed lazily on first access, configured from
// the environment, backed by the persistent store under the configured
// namespace key.
//
// This is convenience, not the primary API. Code that wants control over
// its dependencies - and every test - should construct its own instance
// explicitly:
//
//	svc := service.New(memstore.New())
//
// which isolates state structurally instead of relying on Reset. Reset
// exists for the cases stuck with the shared instance.
package locator

import (
	"fmt"
	"sync"

	"github.com/threadworks/commentable/internal/config"
	"github.com/threadworks/commentable/internal/logging"
	"github.com/threadworks/commentable/service"
	"github.com/threadworks/commentable/store"
	"github.com/threadworks/commentable/store/badgerstore"
	"github.com/threadworks/commentable/store/memstore"
)

var (
	mu     sync.Mutex
	shared *service.Service
	backer store.Store
)

// Service returns the process-wide comment service, constructing it on
// first call. Construction loads configuration, initializes logging per
// that configuration, and opens the persistent store; a construction
// failure leaves no shared instance behind, so a later call retries.
func Service() (*service.Service, error) {
	mu.Lock()
	defer mu.Unlock()

	if shared != nil {
		return shared, nil
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("locator: %w", err)
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	var st store.Store
	if cfg.Storage.InMemory {
		st = memstore.New()
	} else {
		st, err = badgerstore.Open(badgerstore.Options{
			Path: cfg.Storage.Path,
			Key:  cfg.Storage.Key,
		})
		if err != nil {
			return nil, fmt.Errorf("locator: %w", err)
		}
	}

	backer = st
	shared = service.New(st)
	return shared, nil
}

// Reset closes the backing store and drops the shared instance; the next
// Service call constructs a fresh one. Observers subscribed to the old
// instance's bus are not carried over.
func Reset() error {
	mu.Lock()
	defer mu.Unlock()

	shared = nil
	if backer == nil {
		return nil
	}
	err := backer.Close()
	backer = nil
	if err != nil {
		return fmt.Errorf("locator: closing store: %w", err)
	}
	return nil
}
