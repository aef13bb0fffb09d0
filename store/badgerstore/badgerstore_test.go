// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package badgerstore

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/threadworks/commentable/comment"
	"github.com/threadworks/commentable/pointer"
)

// openTestStore opens a store over a fresh on-disk database under a
// temp directory that the test framework removes afterwards.
func openTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := Open(Options{Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testComment(id string, p pointer.Pointer, content, author string) comment.Comment {
	return comment.Comment{
		ID:        id,
		Pointer:   p,
		Content:   content,
		AuthorID:  author,
		CreatedAt: time.Now(),
	}
}

func TestSaveFindDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := pointer.NewEntityPointer("task", "t1")

	if err := s.Save(ctx, testComment("c1", p, "hello", "u1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := s.FindByID(ctx, "c1")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got == nil || got.Content != "hello" {
		t.Errorf("FindByID() = %v, want saved comment", got)
	}

	ok, err := s.Delete(ctx, "c1")
	if err != nil || !ok {
		t.Fatalf("Delete() = (%v, %v), want (true, nil)", ok, err)
	}
	if got, _ := s.FindByPointer(ctx, p); len(got) != 0 {
		t.Error("deleted comment still indexed by pointer")
	}
	if got, _ := s.FindByAuthor(ctx, "u1"); len(got) != 0 {
		t.Error("deleted comment still indexed by author")
	}

	ok, err = s.Delete(ctx, "nonexistent")
	if err != nil || ok {
		t.Errorf("Delete(nonexistent) = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	p := pointer.NewEntityPointer("document", "d1")
	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 987654321, time.UTC)

	s, err := Open(Options{Path: dir})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	c := comment.Comment{
		ID:        "c1",
		Pointer:   p,
		Content:   "survives restarts",
		AuthorID:  "u1",
		CreatedAt: createdAt,
		Resolved:  true,
	}
	if err := s.Save(ctx, c); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(Options{Path: dir})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer reopened.Close()

	got, err := reopened.FindByID(ctx, "c1")
	if err != nil {
		t.Fatalf("FindByID() after reopen error = %v", err)
	}
	if got == nil {
		t.Fatal("comment not persisted across reopen")
	}
	if got.Content != "survives restarts" || !got.Resolved {
		t.Errorf("persisted fields lost: %+v", got)
	}
	// Dates come back as real time values, at full precision.
	if !got.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, createdAt)
	}
	if !got.Pointer.Equal(p) {
		t.Error("pointer lost across reopen")
	}

	// Indexes are rebuilt from the blob.
	if byPointer, _ := reopened.FindByPointer(ctx, p); len(byPointer) != 1 {
		t.Errorf("pointer index not rebuilt, got %d comments", len(byPointer))
	}
	if byAuthor, _ := reopened.FindByAuthor(ctx, "u1"); len(byAuthor) != 1 {
		t.Errorf("author index not rebuilt, got %d comments", len(byAuthor))
	}
}

func TestCorruptBlobStartsEmpty(t *testing.T) {
	dir := t.TempDir()

	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(DefaultKey), []byte("{this is not json"))
	})
	if err != nil {
		t.Fatalf("seeding corrupt blob: %v", err)
	}

	// Opening over the corrupt slot must not fail, only lose the data.
	s, err := Open(Options{DB: db})
	if err != nil {
		t.Fatalf("Open() over corrupt blob error = %v", err)
	}
	defer s.Close()
	defer db.Close()

	got, err := s.FindByID(context.Background(), "anything")
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if got != nil {
		t.Errorf("store not empty after corrupt load: %v", got)
	}

	// The store remains writable afterwards.
	p := pointer.NewEntityPointer("task", "t1")
	if err := s.Save(context.Background(), testComment("c1", p, "fresh", "u1")); err != nil {
		t.Errorf("Save() after corrupt load error = %v", err)
	}
}

func TestSharedDBNotClosed(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	defer db.Close()

	s, err := Open(Options{DB: db, Key: "tenant-a:comments"})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// The injected database must still be usable after the store closes.
	err = db.View(func(txn *badger.Txn) error { return nil })
	if err != nil {
		t.Errorf("shared db unusable after store Close: %v", err)
	}
}

func TestDistinctKeysIsolateNamespaces(t *testing.T) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		t.Fatalf("badger.Open() error = %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	a, err := Open(Options{DB: db, Key: "a:comments"})
	if err != nil {
		t.Fatalf("Open(a) error = %v", err)
	}
	b, err := Open(Options{DB: db, Key: "b:comments"})
	if err != nil {
		t.Fatalf("Open(b) error = %v", err)
	}

	p := pointer.NewEntityPointer("task", "t1")
	if err := a.Save(ctx, testComment("c1", p, "only in a", "u1")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if got, _ := b.FindByID(ctx, "c1"); got != nil {
		t.Error("comment leaked across storage keys")
	}
}

func TestSearchAndRecent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := pointer.NewEntityPointer("task", "t1")

	first := comment.Comment{ID: "c1", Pointer: p, Content: "apple pie", AuthorID: "u1", CreatedAt: time.Now()}
	second := comment.Comment{ID: "c2", Pointer: p, Content: "banana split", AuthorID: "u1", CreatedAt: time.Now().Add(time.Second)}
	for _, c := range []comment.Comment{first, second} {
		if err := s.Save(ctx, c); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	found, err := s.Search(ctx, "APPLE")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(found) != 1 || found[0].ID != "c1" {
		t.Errorf("Search(APPLE) = %v, want exactly c1", found)
	}

	recent, err := s.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "c2" {
		t.Errorf("Recent(1) = %v, want newest comment c2", recent)
	}
}
