// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package pointer

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Quote is a previously captured text excerpt plus its source metadata.
// Quotes are produced by whatever selection mechanism the embedding
// application uses; this package only carries them.
type Quote struct {
	// ID identifies the captured excerpt.
	ID string `json:"id"`

	// Text is the excerpt's plain text.
	Text string `json:"text"`

	// SourceDocument names the document the excerpt was taken from.
	SourceDocument string `json:"sourceDocument"`

	// AuthorID is who captured the excerpt.
	AuthorID string `json:"authorId"`

	// CreatedAt is when the excerpt was captured.
	CreatedAt time.Time `json:"createdAt"`
}

// QuotePointer addresses a captured text excerpt for quote-anchored
// discussion.
//
// The serialized envelope carries only the quote id, not the excerpt
// itself. A QuotePointer rehydrated through Deserialize therefore holds a
// placeholder Quote with empty text; callers needing the real excerpt
// must re-resolve it, for example through a QuoteResolver.
type QuotePointer struct {
	id    string
	quote Quote
}

// quoteEnvelope is the serialized form of a QuotePointer.
type quoteEnvelope struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// NewQuotePointer creates a pointer wrapping the given quote.
func NewQuotePointer(id string, quote Quote) QuotePointer {
	return QuotePointer{id: id, quote: quote}
}

// Quote returns the wrapped excerpt. After deserialization this is a
// placeholder with empty text until re-resolved.
func (p QuotePointer) Quote() Quote { return p.quote }

// ID implements Pointer.
func (p QuotePointer) ID() string { return p.id }

// Type implements Pointer.
func (p QuotePointer) Type() string { return TypeQuote }

// Serialize implements Pointer.
func (p QuotePointer) Serialize() string {
	data, err := json.Marshal(quoteEnvelope{Type: TypeQuote, ID: p.id})
	if err != nil {
		// The envelope is two plain strings; marshaling cannot fail.
		panic(fmt.Sprintf("serialize quote pointer: %v", err))
	}
	return string(data)
}

// Equal implements Pointer.
func (p QuotePointer) Equal(other Pointer) bool { return Equal(p, other) }

// Describe implements Pointer. The excerpt's text is the description
// excerpt and its source document is the location.
func (p QuotePointer) Describe(ctx context.Context) (Description, error) {
	return Description{
		Title:    "Quoted text",
		Excerpt:  p.quote.Text,
		Location: p.quote.SourceDocument,
	}, nil
}

// DeserializeQuotePointer parses the envelope produced by
// QuotePointer.Serialize. The returned pointer wraps a placeholder quote
// whose text is empty; the original excerpt is not recoverable from the
// envelope alone.
func DeserializeQuotePointer(data string) (QuotePointer, error) {
	var env quoteEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return QuotePointer{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type != TypeQuote {
		return QuotePointer{}, fmt.Errorf("%w: expected %q, got %q", ErrMalformed, TypeQuote, env.Type)
	}
	return QuotePointer{id: env.ID, quote: Quote{ID: env.ID}}, nil
}

// QuoteResolver looks up the full excerpt for a quote id. It is the
// follow-up resolution step for deserialized QuotePointers, which carry
// only a placeholder quote.
type QuoteResolver interface {
	ResolveQuote(ctx context.Context, id string) (Quote, error)
}

// Resolve returns a copy of the pointer carrying the full quote looked up
// through r. The receiver is unchanged.
func (p QuotePointer) Resolve(ctx context.Context, r QuoteResolver) (QuotePointer, error) {
	q, err := r.ResolveQuote(ctx, p.id)
	if err != nil {
		return QuotePointer{}, fmt.Errorf("resolve quote %q: %w", p.id, err)
	}
	return QuotePointer{id: p.id, quote: q}, nil
}
