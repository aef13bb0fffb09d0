// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package relay

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/threadworks/commentable/pointer"
	"github.com/threadworks/commentable/service"
	"github.com/threadworks/commentable/store/memstore"
)

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relayed message")
		return nil
	}
}

func TestRelayCommentCreated(t *testing.T) {
	svc := service.New(memstore.New())
	r := New(svc)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := r.Subscribe(ctx, TopicCommentCreated)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	p := pointer.NewEntityPointer("task", "t1")
	created, err := svc.CreateComment(ctx, p, "hello", "u1", "")
	if err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}

	msg := receive(t, ch)

	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Type != service.EventCommentCreated {
		t.Errorf("payload.Type = %q, want %q", payload.Type, service.EventCommentCreated)
	}
	if payload.Comment == nil || payload.Comment.ID != created.ID {
		t.Errorf("payload comment = %+v, want id %q", payload.Comment, created.ID)
	}
	if got := msg.Metadata.Get("event_type"); got != service.EventCommentCreated {
		t.Errorf("event_type metadata = %q", got)
	}

	// The relayed pointer envelope round-trips through the registry.
	rp, err := pointer.Deserialize(payload.Comment.Pointer)
	if err != nil {
		t.Fatalf("Deserialize(relayed pointer) error = %v", err)
	}
	if !rp.Equal(p) {
		t.Error("relayed pointer not equal to original")
	}
}

func TestRelayThreadResolved(t *testing.T) {
	svc := service.New(memstore.New())
	r := New(svc)
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := r.Subscribe(ctx, TopicThreadResolved)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	p := pointer.NewEntityPointer("task", "t1")
	if _, err := svc.CreateComment(ctx, p, "x", "u1", ""); err != nil {
		t.Fatalf("CreateComment() error = %v", err)
	}
	if err := svc.ResolveThread(ctx, p); err != nil {
		t.Fatalf("ResolveThread() error = %v", err)
	}

	msg := receive(t, ch)

	var payload Payload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Pointer != p.Serialize() {
		t.Errorf("payload.Pointer = %q, want %q", payload.Pointer, p.Serialize())
	}
}

func TestRelayCloseDetaches(t *testing.T) {
	svc := service.New(memstore.New())
	r := New(svc)

	if err := r.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Mutations after Close must not panic the service's publish path.
	if _, err := svc.CreateComment(context.Background(), pointer.NewEntityPointer("task", "t1"), "x", "u1", ""); err != nil {
		t.Fatalf("CreateComment() after relay close error = %v", err)
	}
	if got := svc.Bus().ListenerCount(service.EventCommentCreated); got != 0 {
		t.Errorf("relay left %d listeners attached after Close", got)
	}
}
