// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package store

import (
	"sort"
	"strings"

	"github.com/threadworks/commentable/comment"
)

// Table is the in-memory indexed comment state shared by the store
// implementations: the primary id map plus the pointer and author
// secondary indexes. A Table is not goroutine-safe; the owning store
// serializes access.
type Table struct {
	comments  map[string]comment.Comment
	byPointer map[string]map[string]struct{}
	byAuthor  map[string]map[string]struct{}
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		comments:  make(map[string]comment.Comment),
		byPointer: make(map[string]map[string]struct{}),
		byAuthor:  make(map[string]map[string]struct{}),
	}
}

// Put inserts or replaces a comment and updates both secondary indexes.
func (t *Table) Put(c comment.Comment) {
	// Replacing a comment whose pointer or author changed must not leave
	// a stale index entry behind.
	if old, ok := t.comments[c.ID]; ok {
		t.unindex(old)
	}

	t.comments[c.ID] = c
	addToIndex(t.byPointer, c.Pointer.Serialize(), c.ID)
	addToIndex(t.byAuthor, c.AuthorID, c.ID)
}

// Get returns the comment with the given id.
func (t *Table) Get(id string) (comment.Comment, bool) {
	c, ok := t.comments[id]
	return c, ok
}

// Remove deletes a comment and prunes it from both secondary indexes,
// reporting whether it existed.
func (t *Table) Remove(id string) bool {
	c, ok := t.comments[id]
	if !ok {
		return false
	}
	delete(t.comments, id)
	t.unindex(c)
	return true
}

func (t *Table) unindex(c comment.Comment) {
	removeFromIndex(t.byPointer, c.Pointer.Serialize(), c.ID)
	removeFromIndex(t.byAuthor, c.AuthorID, c.ID)
}

// ByPointerKey returns the comments indexed under a serialized pointer,
// ordered by creation time ascending.
func (t *Table) ByPointerKey(key string) []comment.Comment {
	return t.collect(t.byPointer[key], byCreatedAsc)
}

// ByAuthor returns the comments written by an author, ordered by creation
// time ascending.
func (t *Table) ByAuthor(authorID string) []comment.Comment {
	return t.collect(t.byAuthor[authorID], byCreatedAsc)
}

// Search returns comments whose content contains the query,
// case-insensitively, ordered by creation time ascending.
func (t *Table) Search(query string) []comment.Comment {
	needle := strings.ToLower(query)
	var out []comment.Comment
	for _, c := range t.comments {
		if strings.Contains(strings.ToLower(c.Content), needle) {
			out = append(out, c)
		}
	}
	byCreatedAsc(out)
	return out
}

// Recent returns up to limit comments, newest first.
func (t *Table) Recent(limit int) []comment.Comment {
	if limit <= 0 {
		return nil
	}
	out := make([]comment.Comment, 0, len(t.comments))
	for _, c := range t.comments {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Len returns the number of stored comments.
func (t *Table) Len() int { return len(t.comments) }

// Clear drops every comment and index entry.
func (t *Table) Clear() {
	t.comments = make(map[string]comment.Comment)
	t.byPointer = make(map[string]map[string]struct{})
	t.byAuthor = make(map[string]map[string]struct{})
}

// Snapshot serializes the table into the persisted blob layout. Index id
// lists are sorted so the blob is deterministic for identical state.
func (t *Table) Snapshot() Snapshot {
	snap := Snapshot{
		Comments:     make(map[string]Record, len(t.comments)),
		PointerIndex: make(map[string][]string, len(t.byPointer)),
		AuthorIndex:  make(map[string][]string, len(t.byAuthor)),
	}
	for id, c := range t.comments {
		snap.Comments[id] = EncodeRecord(c)
	}
	for key, ids := range t.byPointer {
		snap.PointerIndex[key] = sortedIDs(ids)
	}
	for key, ids := range t.byAuthor {
		snap.AuthorIndex[key] = sortedIDs(ids)
	}
	return snap
}

// Load replaces the table's state with a decoded snapshot. The secondary
// indexes are rebuilt from the primary records rather than trusted from
// the blob, so a consistent state is guaranteed after load. Any record
// that fails to decode aborts the load and leaves the table empty.
func (t *Table) Load(snap Snapshot) error {
	t.Clear()
	for _, r := range snap.Comments {
		c, err := r.Decode()
		if err != nil {
			t.Clear()
			return err
		}
		t.Put(c)
	}
	return nil
}

func (t *Table) collect(ids map[string]struct{}, order func([]comment.Comment)) []comment.Comment {
	if len(ids) == 0 {
		return []comment.Comment{}
	}
	out := make([]comment.Comment, 0, len(ids))
	for id := range ids {
		if c, ok := t.comments[id]; ok {
			out = append(out, c)
		}
	}
	order(out)
	return out
}

func byCreatedAsc(comments []comment.Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID < comments[j].ID
		}
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
}

func addToIndex(index map[string]map[string]struct{}, key, id string) {
	set, ok := index[key]
	if !ok {
		set = make(map[string]struct{})
		index[key] = set
	}
	set[id] = struct{}{}
}

// removeFromIndex drops id from the key's set, pruning the set itself
// when it becomes empty.
func removeFromIndex(index map[string]map[string]struct{}, key, id string) {
	set, ok := index[key]
	if !ok {
		return
	}
	delete(set, id)
	if len(set) == 0 {
		delete(index, key)
	}
}

func sortedIDs(ids map[string]struct{}) []string {
	out := make([]string, 0, len(ids))
	for id := range ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
