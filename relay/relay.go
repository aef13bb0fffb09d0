// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package relay bridges the notification bus onto a Watermill in-process
// Pub/Sub, for consumers that prefer message-channel consumption over
// callback subscription (reactive view layers, background projections).
//
// The relay subscribes to every service event and republishes it as a
// JSON message on a per-event topic. Unlike the bus, delivery through
// the relay is asynchronous: a consumer holding a subscription channel
// races with the mutation that produced the event and must refetch
// current state from the service rather than trust the payload to be the
// latest word.
//
// The core never depends on this package; it is wiring for consumers.
package relay

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/threadworks/commentable/internal/logging"
	"github.com/threadworks/commentable/service"
	"github.com/threadworks/commentable/store"
)

// Message topics published by the relay, one per service event.
const (
	TopicCommentCreated   = "comment.created"
	TopicCommentUpdated   = "comment.updated"
	TopicCommentDeleted   = "comment.deleted"
	TopicThreadResolved   = "thread.resolved"
	TopicThreadUnresolved = "thread.unresolved"
)

// topicFor maps a bus event type onto its relay topic.
var topicFor = map[string]string{
	service.EventCommentCreated:   TopicCommentCreated,
	service.EventCommentUpdated:   TopicCommentUpdated,
	service.EventCommentDeleted:   TopicCommentDeleted,
	service.EventThreadResolved:   TopicThreadResolved,
	service.EventThreadUnresolved: TopicThreadUnresolved,
}

// Payload is the JSON body of a relayed message. Comment is present on
// comment.created and comment.updated, CommentID on comment.deleted, and
// Pointer (the canonical envelope) on the thread topics.
type Payload struct {
	Type      string        `json:"type"`
	Comment   *store.Record `json:"comment,omitempty"`
	CommentID string        `json:"commentId,omitempty"`
	Pointer   string        `json:"pointer,omitempty"`
}

// Relay republishes service events as Watermill messages.
type Relay struct {
	pubsub *gochannel.GoChannel
	unsubs []func()
}

// New attaches a relay to the service's bus. Close detaches it.
func New(svc *service.Service) *Relay {
	r := &Relay{
		pubsub: gochannel.NewGoChannel(gochannel.Config{}, newLoggerAdapter()),
	}

	for eventType := range topicFor {
		unsub := svc.Bus().Subscribe(eventType, r.forward)
		r.unsubs = append(r.unsubs, unsub)
	}
	return r
}

// Subscribe returns a channel of messages for one relay topic. Consumers
// must Ack or Nack every message; the subscription ends when ctx is
// cancelled or the relay closes.
func (r *Relay) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return r.pubsub.Subscribe(ctx, topic)
}

// forward converts one bus event into a message and publishes it.
func (r *Relay) forward(e service.Event) {
	payload := Payload{Type: e.Type, CommentID: e.CommentID}
	if e.Comment != nil {
		rec := store.EncodeRecord(*e.Comment)
		payload.Comment = &rec
	}
	if e.Pointer != nil {
		payload.Pointer = e.Pointer.Serialize()
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log := logging.Logger()
		log.Error().
			Str("component", "relay").
			Str("event", e.Type).
			Err(err).
			Msg("dropping event: marshal failed")
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), body)
	msg.Metadata.Set("event_type", e.Type)

	if err := r.pubsub.Publish(topicFor[e.Type], msg); err != nil {
		log := logging.Logger()
		log.Error().
			Str("component", "relay").
			Str("event", e.Type).
			Err(err).
			Msg("dropping event: publish failed")
	}
}

// Close detaches the relay from the bus and closes the Pub/Sub, ending
// every open subscription.
func (r *Relay) Close() error {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
	return r.pubsub.Close()
}
