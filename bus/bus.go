// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package bus provides the in-process notification channel decoupling the
// comment service from its observers.
//
// The bus is a minimal typed publish/subscribe primitive. Handlers run
// synchronously, in subscription order, on the publishing goroutine. Each
// handler runs inside a recover so one panicking subscriber can neither
// stop the remaining subscribers nor escape Publish; the panic is logged
// and swallowed. This isolation is the bus's key correctness property:
// any number of independent observers share one service with no direct
// references between them.
package bus

import (
	"sync"

	"github.com/threadworks/commentable/internal/logging"
)

// Handler consumes one published event.
type Handler[E any] func(event E)

// subscription is one registered handler on one topic.
type subscription[E any] struct {
	id   uint64
	fn   Handler[E]
	once bool
}

// Bus is a typed publish/subscribe channel. The zero value is not usable;
// create instances with New. A Bus is safe for concurrent use, though the
// core's scheduling model is cooperative: handlers for one Publish always
// complete before Publish returns.
type Bus[E any] struct {
	mu     sync.Mutex
	nextID uint64
	topics map[string][]subscription[E]
}

// New creates an empty bus.
func New[E any]() *Bus[E] {
	return &Bus[E]{topics: make(map[string][]subscription[E])}
}

// Subscribe registers a handler for a topic and returns its unsubscribe
// function. Handlers on the same topic run in subscription order. The
// returned function is idempotent.
func (b *Bus[E]) Subscribe(topic string, fn Handler[E]) (unsubscribe func()) {
	return b.subscribe(topic, fn, false)
}

// Once registers a handler that is removed immediately before its first
// invocation, so it observes at most one event. The returned unsubscribe
// function cancels a pending once-handler.
func (b *Bus[E]) Once(topic string, fn Handler[E]) (unsubscribe func()) {
	return b.subscribe(topic, fn, true)
}

func (b *Bus[E]) subscribe(topic string, fn Handler[E], once bool) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.topics[topic] = append(b.topics[topic], subscription[E]{id: id, fn: fn, once: once})

	return func() { b.remove(topic, id) }
}

// remove drops the subscription with the given id, reporting whether it
// was still registered.
func (b *Bus[E]) remove(topic string, id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.topics[topic]
	for i, s := range subs {
		if s.id == id {
			b.topics[topic] = append(subs[:i:i], subs[i+1:]...)
			if len(b.topics[topic]) == 0 {
				delete(b.topics, topic)
			}
			return true
		}
	}
	return false
}

// Publish delivers the event to every handler subscribed to the topic, in
// subscription order, synchronously. Publish never panics: a panicking
// handler is recovered and logged, and delivery continues with the next
// handler.
func (b *Bus[E]) Publish(topic string, event E) {
	b.mu.Lock()
	subs := make([]subscription[E], len(b.topics[topic]))
	copy(subs, b.topics[topic])
	b.mu.Unlock()

	for _, s := range subs {
		if s.once {
			// A once-handler fires at most once even when the same event
			// is being delivered concurrently: only the remover runs it.
			if !b.remove(topic, s.id) {
				continue
			}
		}
		invoke(topic, s.fn, event)
	}
}

// invoke runs one handler with panic isolation.
func invoke[E any](topic string, fn Handler[E], event E) {
	defer func() {
		if r := recover(); r != nil {
			log := logging.Logger()
			log.Error().
				Str("component", "bus").
				Str("topic", topic).
				Interface("panic", r).
				Msg("subscriber panicked during emit")
		}
	}()
	fn(event)
}

// ListenerCount returns the number of handlers subscribed to a topic.
func (b *Bus[E]) ListenerCount(topic string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.topics[topic])
}

// RemoveAll drops every handler for the given topics, or every handler on
// the bus when called with no arguments.
func (b *Bus[E]) RemoveAll(topics ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(topics) == 0 {
		b.topics = make(map[string][]subscription[E])
		return
	}
	for _, topic := range topics {
		delete(b.topics, topic)
	}
}
