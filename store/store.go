// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package store defines the comment persistence contract and the
// serialized layout shared by its implementations.
//
// Two implementations ship with the library: store/memstore (ephemeral,
// for tests and short-lived embedding) and store/badgerstore (persistent,
// backed by an embedded BadgerDB key-value slot). Both maintain the same
// indexes: a primary map from comment id to comment, plus secondary
// indexes by serialized pointer and by author id. The secondary indexes
// are kept exactly consistent with the primary on every Save and Delete,
// before the method returns; empty index entries are pruned, never left
// behind.
//
// Not-found is a normal outcome, not an error: FindByID returns
// (nil, nil) and Delete returns (false, nil) for unknown ids. Errors are
// reserved for structural failures such as a backing-store write that
// did not complete.
package store

import (
	"context"

	"github.com/threadworks/commentable/comment"
	"github.com/threadworks/commentable/pointer"
)

// Store persists comments and answers the lookups the comment service
// needs. Implementations must keep their secondary indexes consistent
// with the primary map on every mutation.
type Store interface {
	// Save inserts or replaces a comment by id.
	Save(ctx context.Context, c comment.Comment) error

	// FindByID returns the comment with the given id, or (nil, nil) when
	// no such comment exists.
	FindByID(ctx context.Context, id string) (*comment.Comment, error)

	// FindByPointer returns every comment attached to the pointer,
	// keyed by the pointer's serialized form.
	FindByPointer(ctx context.Context, p pointer.Pointer) ([]comment.Comment, error)

	// FindByAuthor returns every comment written by the author.
	FindByAuthor(ctx context.Context, authorID string) ([]comment.Comment, error)

	// Delete removes a comment and prunes it from both secondary
	// indexes. It reports false for unknown ids without error.
	Delete(ctx context.Context, id string) (bool, error)

	// Search returns comments whose content contains the query,
	// case-insensitively.
	Search(ctx context.Context, query string) ([]comment.Comment, error)

	// Recent returns up to limit comments, newest first by creation time.
	Recent(ctx context.Context, limit int) ([]comment.Comment, error)

	// Clear removes every comment and index entry.
	Clear(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
