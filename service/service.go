// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package service orchestrates the comment lifecycle on top of a store:
// creation, mutation, thread derivation, bulk resolution and the
// pass-through queries. Every successful mutation publishes an event on
// the notification bus.
//
// Construct a Service explicitly with New for full control (and for test
// isolation); the locator package provides the shared production
// instance.
//
// Not-found follows the store convention: lookups on unknown ids return
// (nil, nil) or (false, nil), never an error. Errors mean the backing
// store itself failed.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/threadworks/commentable/bus"
	"github.com/threadworks/commentable/comment"
	"github.com/threadworks/commentable/internal/logging"
	"github.com/threadworks/commentable/metrics"
	"github.com/threadworks/commentable/pointer"
	"github.com/threadworks/commentable/store"
)

// ErrNilPointer is returned by operations handed a nil pointer.
var ErrNilPointer = errors.New("nil pointer")

// Service owns comment lifecycle and thread derivation. It never reaches
// into store internals; all index maintenance belongs to the store.
type Service struct {
	store store.Store
	bus   *bus.Bus[Event]
	log   zerolog.Logger
}

// New creates a service over the given store with a fresh notification
// bus.
func New(st store.Store) *Service {
	return &Service{
		store: st,
		bus:   bus.New[Event](),
		log:   logging.With().Str("component", "service").Logger(),
	}
}

// Bus returns the service's notification bus. Observers subscribe to the
// Event* topics and unsubscribe with the returned function on teardown.
func (s *Service) Bus() *bus.Bus[Event] { return s.bus }

// newCommentID generates a globally unique comment id: a time-based
// prefix for rough ordering plus a random suffix so rapid sequential
// calls cannot collide.
func newCommentID() string {
	return fmt.Sprintf("c%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// CreateComment persists a new comment attached to p and emits
// comment:created. parentID is the id of the comment being replied to,
// empty for top-level comments. Content is stored as-is: emptiness checks
// are the caller's concern.
func (s *Service) CreateComment(ctx context.Context, p pointer.Pointer, content, authorID, parentID string) (*comment.Comment, error) {
	if p == nil {
		return nil, ErrNilPointer
	}

	c := comment.Comment{
		ID:        newCommentID(),
		Pointer:   p,
		Content:   content,
		AuthorID:  authorID,
		CreatedAt: time.Now(),
		ParentID:  parentID,
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	metrics.CommentsCreated.Inc()
	s.bus.Publish(EventCommentCreated, Event{Type: EventCommentCreated, Comment: &c})
	return &c, nil
}

// Reply creates a comment under the same pointer as the parent, with
// ParentID set. It returns (nil, nil) when the parent does not exist.
func (s *Service) Reply(ctx context.Context, parentID, content, authorID string) (*comment.Comment, error) {
	parent, err := s.store.FindByID(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("reply: %w", err)
	}
	if parent == nil {
		return nil, nil
	}
	return s.CreateComment(ctx, parent.Pointer, content, authorID, parent.ID)
}

// GetComment returns the comment with the given id, or (nil, nil).
func (s *Service) GetComment(ctx context.Context, id string) (*comment.Comment, error) {
	return s.store.FindByID(ctx, id)
}

// GetComments returns every comment attached to p, oldest first.
func (s *Service) GetComments(ctx context.Context, p pointer.Pointer) ([]comment.Comment, error) {
	if p == nil {
		return nil, ErrNilPointer
	}
	return s.store.FindByPointer(ctx, p)
}

// UpdateComment replaces a comment's content, stamps UpdatedAt, persists
// and emits comment:updated. Unknown ids are a no-op returning (nil, nil).
func (s *Service) UpdateComment(ctx context.Context, id, content string) (*comment.Comment, error) {
	c, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}
	if c == nil {
		return nil, nil
	}

	now := time.Now()
	c.Content = content
	c.UpdatedAt = &now
	if err := s.store.Save(ctx, *c); err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	metrics.CommentsUpdated.Inc()
	s.bus.Publish(EventCommentUpdated, Event{Type: EventCommentUpdated, Comment: c})
	return c, nil
}

// DeleteComment removes a comment, emitting comment:deleted only on
// success. Deleting an unknown id reports (false, nil). Deletion is
// terminal: nothing references the id afterwards.
func (s *Service) DeleteComment(ctx context.Context, id string) (bool, error) {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}
	if !ok {
		return false, nil
	}

	metrics.CommentsDeleted.Inc()
	s.bus.Publish(EventCommentDeleted, Event{Type: EventCommentDeleted, CommentID: id})
	return true, nil
}

// GetThread materializes the thread view for p, or (nil, nil) when no
// comments exist. Threads are recomputed on every read, never stored.
func (s *Service) GetThread(ctx context.Context, p pointer.Pointer) (*comment.Thread, error) {
	if p == nil {
		return nil, ErrNilPointer
	}
	comments, err := s.store.FindByPointer(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("get thread: %w", err)
	}
	return comment.DeriveThread(p, comments), nil
}

// ResolveThread marks every comment attached to p resolved and emits
// thread:resolved. The bulk update is not transactional: writes are
// applied one comment at a time and the first failure aborts the
// remainder, leaving the already-written subset resolved. Callers should
// re-read the thread after a failure rather than assume atomicity.
func (s *Service) ResolveThread(ctx context.Context, p pointer.Pointer) error {
	if err := s.setThreadResolved(ctx, p, true); err != nil {
		return err
	}
	metrics.ThreadsResolved.Inc()
	s.bus.Publish(EventThreadResolved, Event{Type: EventThreadResolved, Pointer: p})
	return nil
}

// UnresolveThread clears the resolved flag on every comment attached to p
// and emits thread:unresolved. Same partial-failure semantics as
// ResolveThread.
func (s *Service) UnresolveThread(ctx context.Context, p pointer.Pointer) error {
	if err := s.setThreadResolved(ctx, p, false); err != nil {
		return err
	}
	metrics.ThreadsUnresolved.Inc()
	s.bus.Publish(EventThreadUnresolved, Event{Type: EventThreadUnresolved, Pointer: p})
	return nil
}

func (s *Service) setThreadResolved(ctx context.Context, p pointer.Pointer, resolved bool) error {
	if p == nil {
		return ErrNilPointer
	}
	comments, err := s.store.FindByPointer(ctx, p)
	if err != nil {
		return fmt.Errorf("resolve thread: %w", err)
	}

	now := time.Now()
	for _, c := range comments {
		c.Resolved = resolved
		c.UpdatedAt = &now
		if err := s.store.Save(ctx, c); err != nil {
			s.log.Error().
				Str("comment_id", c.ID).
				Str("pointer", p.Serialize()).
				Err(err).
				Msg("bulk resolve aborted mid-thread")
			return fmt.Errorf("resolve thread: comment %q: %w", c.ID, err)
		}
	}
	return nil
}

// GetCommentsByPointers fetches comments for each pointer sequentially,
// keyed by the pointer's serialized form. Correctness over throughput:
// this is N store lookups, not one batched query.
func (s *Service) GetCommentsByPointers(ctx context.Context, pointers []pointer.Pointer) (map[string][]comment.Comment, error) {
	out := make(map[string][]comment.Comment, len(pointers))
	for _, p := range pointers {
		if p == nil {
			return nil, ErrNilPointer
		}
		comments, err := s.store.FindByPointer(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("comments for %q: %w", p.Serialize(), err)
		}
		out[p.Serialize()] = comments
	}
	return out, nil
}

// GetThreadsByPointers derives the thread for each pointer sequentially,
// keyed by the pointer's serialized form. Pointers without comments are
// omitted.
func (s *Service) GetThreadsByPointers(ctx context.Context, pointers []pointer.Pointer) (map[string]*comment.Thread, error) {
	out := make(map[string]*comment.Thread, len(pointers))
	for _, p := range pointers {
		if p == nil {
			return nil, ErrNilPointer
		}
		th, err := s.GetThread(ctx, p)
		if err != nil {
			return nil, err
		}
		if th != nil {
			out[p.Serialize()] = th
		}
	}
	return out, nil
}

// SearchComments passes through to the store's case-insensitive
// substring search.
func (s *Service) SearchComments(ctx context.Context, query string) ([]comment.Comment, error) {
	return s.store.Search(ctx, query)
}

// GetCommentsByAuthor passes through to the store's author index.
func (s *Service) GetCommentsByAuthor(ctx context.Context, authorID string) ([]comment.Comment, error) {
	return s.store.FindByAuthor(ctx, authorID)
}

// GetRecentComments passes through to the store, newest first.
func (s *Service) GetRecentComments(ctx context.Context, limit int) ([]comment.Comment, error) {
	return s.store.Recent(ctx, limit)
}
