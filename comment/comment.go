// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package comment defines the comment domain model: the persisted Comment
// record and the derived, never-persisted Thread view.
package comment

import (
	"sort"
	"time"

	"github.com/threadworks/commentable/pointer"
)

// Comment is a single remark attached to a pointer. Once persisted it is
// owned by the store; callers treat instances as immutable snapshots and
// re-fetch before mutating.
type Comment struct {
	// ID is globally unique across all comments.
	ID string `json:"id"`

	// Pointer addresses the target this comment is attached to.
	Pointer pointer.Pointer `json:"-"`

	// Content is the comment's plain text. Rich formatting is a
	// caller-owned concern and is never persisted here.
	Content string `json:"content"`

	// AuthorID identifies who wrote the comment.
	AuthorID string `json:"authorId"`

	// CreatedAt is when the comment was created.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is when the content was last changed, nil if never.
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`

	// ParentID is the id of the comment this one replies to, empty for
	// top-level comments.
	ParentID string `json:"parentId,omitempty"`

	// Resolved marks this comment as addressed. A thread is resolved
	// only when every one of its comments is.
	Resolved bool `json:"resolved,omitempty"`
}

// LastActivity returns UpdatedAt when set, CreatedAt otherwise.
func (c Comment) LastActivity() time.Time {
	if c.UpdatedAt != nil {
		return *c.UpdatedAt
	}
	return c.CreatedAt
}

// Thread is the aggregate view of every comment sharing one pointer.
// It is recomputed on every read and never stored.
type Thread struct {
	// ID is derived deterministically from the pointer.
	ID string `json:"id"`

	// Pointer addresses the discussed target.
	Pointer pointer.Pointer `json:"-"`

	// Comments holds the thread's comments sorted by creation time
	// ascending.
	Comments []Comment `json:"comments"`

	// Resolved is true iff every comment in the thread is resolved.
	Resolved bool `json:"resolved"`

	// CreatedAt is the earliest comment's creation time.
	CreatedAt time.Time `json:"createdAt"`

	// UpdatedAt is the latest activity across all comments.
	UpdatedAt time.Time `json:"updatedAt"`
}

// ThreadID returns the deterministic thread id for a pointer.
func ThreadID(p pointer.Pointer) string {
	return "thread-" + p.Serialize()
}

// DeriveThread materializes the thread view for the given pointer from
// the comments attached to it. It returns nil when no comments exist.
func DeriveThread(p pointer.Pointer, comments []Comment) *Thread {
	if len(comments) == 0 {
		return nil
	}

	sorted := make([]Comment, len(comments))
	copy(sorted, comments)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].CreatedAt.Equal(sorted[j].CreatedAt) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].CreatedAt.Before(sorted[j].CreatedAt)
	})

	resolved := true
	createdAt := sorted[0].CreatedAt
	updatedAt := sorted[0].LastActivity()
	for _, c := range sorted {
		if !c.Resolved {
			resolved = false
		}
		if c.CreatedAt.Before(createdAt) {
			createdAt = c.CreatedAt
		}
		if la := c.LastActivity(); la.After(updatedAt) {
			updatedAt = la
		}
	}

	return &Thread{
		ID:        ThreadID(p),
		Pointer:   p,
		Comments:  sorted,
		Resolved:  resolved,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}
