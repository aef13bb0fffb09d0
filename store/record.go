// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package store

import (
	"fmt"
	"time"

	"github.com/threadworks/commentable/comment"
	"github.com/threadworks/commentable/pointer"
)

// timeLayout is the serialized form of comment timestamps. Nanosecond
// precision preserves the creation ordering of rapidly created comments
// across a persistence round trip.
const timeLayout = time.RFC3339Nano

// Record is the serialized form of one comment inside a Snapshot. Dates
// are ISO strings and the pointer is its canonical envelope; both are
// reconstituted on load.
type Record struct {
	ID        string `json:"id"`
	Pointer   string `json:"pointer"`
	Content   string `json:"content"`
	AuthorID  string `json:"authorId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	ParentID  string `json:"parentId,omitempty"`
	Resolved  bool   `json:"resolved,omitempty"`
}

// Snapshot is the persisted state layout: the primary comment map plus
// both secondary indexes, serialized together as one JSON blob under a
// single storage key.
type Snapshot struct {
	Comments     map[string]Record   `json:"comments"`
	PointerIndex map[string][]string `json:"pointerIndex"`
	AuthorIndex  map[string][]string `json:"authorIndex"`
}

// EncodeRecord converts a comment into its serialized record form.
func EncodeRecord(c comment.Comment) Record {
	r := Record{
		ID:        c.ID,
		Pointer:   c.Pointer.Serialize(),
		Content:   c.Content,
		AuthorID:  c.AuthorID,
		CreatedAt: c.CreatedAt.Format(timeLayout),
		ParentID:  c.ParentID,
		Resolved:  c.Resolved,
	}
	if c.UpdatedAt != nil {
		r.UpdatedAt = c.UpdatedAt.Format(timeLayout)
	}
	return r
}

// Decode reconstitutes the comment this record serializes: dates are
// parsed back into time values and the pointer envelope is deserialized
// through the pointer registry.
func (r Record) Decode() (comment.Comment, error) {
	p, err := pointer.Deserialize(r.Pointer)
	if err != nil {
		return comment.Comment{}, fmt.Errorf("decode comment %q: %w", r.ID, err)
	}

	createdAt, err := time.Parse(timeLayout, r.CreatedAt)
	if err != nil {
		return comment.Comment{}, fmt.Errorf("decode comment %q: createdAt: %w", r.ID, err)
	}

	c := comment.Comment{
		ID:        r.ID,
		Pointer:   p,
		Content:   r.Content,
		AuthorID:  r.AuthorID,
		CreatedAt: createdAt,
		ParentID:  r.ParentID,
		Resolved:  r.Resolved,
	}

	if r.UpdatedAt != "" {
		updatedAt, err := time.Parse(timeLayout, r.UpdatedAt)
		if err != nil {
			return comment.Comment{}, fmt.Errorf("decode comment %q: updatedAt: %w", r.ID, err)
		}
		c.UpdatedAt = &updatedAt
	}

	return c, nil
}
