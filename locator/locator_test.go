// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package locator

import (
	"context"
	"testing"

	"github.com/threadworks/commentable/pointer"
)

func TestServiceIsShared(t *testing.T) {
	t.Setenv("COMMENTABLE_STORAGE_PATH", t.TempDir())
	t.Cleanup(func() { Reset() })

	first, err := Service()
	if err != nil {
		t.Fatalf("Service() error = %v", err)
	}
	second, err := Service()
	if err != nil {
		t.Fatalf("second Service() error = %v", err)
	}
	if first != second {
		t.Error("Service() returned distinct instances within one process")
	}
}

func TestResetGivesFreshInstance(t *testing.T) {
	t.Setenv("COMMENTABLE_STORAGE_PATH", t.TempDir())
	t.Cleanup(func() { Reset() })

	first, err := Service()
	if err != nil {
		t.Fatalf("Service() error = %v", err)
	}

	if err := Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	second, err := Service()
	if err != nil {
		t.Fatalf("Service() after Reset error = %v", err)
	}
	if first == second {
		t.Error("Reset() did not drop the shared instance")
	}
}

func TestInMemoryWiring(t *testing.T) {
	t.Setenv("COMMENTABLE_STORAGE_IN_MEMORY", "true")
	t.Cleanup(func() { Reset() })

	svc, err := Service()
	if err != nil {
		t.Fatalf("Service() error = %v", err)
	}

	p := pointer.NewEntityPointer("task", "t1")
	if _, err := svc.CreateComment(context.Background(), p, "hello", "u1", ""); err != nil {
		t.Fatalf("CreateComment() through locator error = %v", err)
	}

	comments, err := svc.GetComments(context.Background(), p)
	if err != nil {
		t.Fatalf("GetComments() error = %v", err)
	}
	if len(comments) != 1 {
		t.Errorf("got %d comments, want 1", len(comments))
	}
}
