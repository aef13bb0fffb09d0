// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package pointer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-json"
)

// Pointer variant discriminators for the variants shipped with the library.
const (
	TypeEntity = "entity"
	TypeQuote  = "quote"
)

// Pointer-related errors.
var (
	// ErrMalformed indicates input that is not a valid pointer envelope.
	ErrMalformed = errors.New("malformed pointer")

	// ErrUnknownType indicates an envelope whose type has no registered
	// deserializer.
	ErrUnknownType = errors.New("unknown pointer type")
)

// Description is a read-only, display-oriented summary of a pointer's
// target. It carries no behavior and must not be used for identity.
type Description struct {
	// Title is a short human-readable name for the target.
	Title string `json:"title"`

	// Excerpt is a fragment of the target's content, when one exists.
	Excerpt string `json:"excerpt"`

	// Location says where the target lives (a document name, an entity path).
	Location string `json:"location"`
}

// Pointer identifies a commentable target.
//
// Implementations must be immutable value types: every method is
// read-only and two pointers with the same Type and ID are
// interchangeable regardless of how they were constructed.
type Pointer interface {
	// ID is the pointer-local identity, unique within its Type.
	ID() string

	// Type is the variant discriminator ("entity", "quote", ...).
	Type() string

	// Serialize returns the canonical JSON envelope for this pointer.
	// The result is used as an index key and must round-trip through
	// Deserialize.
	Serialize() string

	// Equal reports whether other addresses the same target.
	// Equality is Type + ID, never object identity.
	Equal(other Pointer) bool

	// Describe returns a display-oriented summary of the target. It may
	// consult external data sources and must not mutate any state.
	Describe(ctx context.Context) (Description, error)
}

// Equal reports whether a and b address the same target. Either side may
// be nil; two nils are not equal (there is no target to agree on).
func Equal(a, b Pointer) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Type() == b.Type() && a.ID() == b.ID()
}

// DeserializeFunc parses one variant's envelope back into a Pointer.
type DeserializeFunc func(data string) (Pointer, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]DeserializeFunc{
		TypeEntity: func(data string) (Pointer, error) { return DeserializeEntityPointer(data) },
		TypeQuote:  func(data string) (Pointer, error) { return DeserializeQuotePointer(data) },
	}
)

// Register installs a deserializer for a pointer type, making the type
// resolvable through Deserialize. Registering a type twice replaces the
// previous deserializer; applications adding their own pointer kinds
// should register them before any stored data is loaded.
func Register(pointerType string, fn DeserializeFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[pointerType] = fn
}

// Deserialize parses a canonical envelope produced by any registered
// variant's Serialize. It dispatches on the "type" discriminator.
func Deserialize(data string) (Pointer, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(data), &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if probe.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	registryMu.RLock()
	fn, ok := registry[probe.Type]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, probe.Type)
	}
	return fn(data)
}
