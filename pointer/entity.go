// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package pointer

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

// EntityPointer addresses a whole application entity (a task, a document,
// a project) for entity-level discussion.
type EntityPointer struct {
	entityType string
	entityID   string
}

// entityEnvelope is the serialized form of an EntityPointer.
type entityEnvelope struct {
	Type       string `json:"type"`
	EntityType string `json:"entityType"`
	EntityID   string `json:"entityId"`
}

// NewEntityPointer creates a pointer for the entity of the given type and id.
func NewEntityPointer(entityType, entityID string) EntityPointer {
	return EntityPointer{entityType: entityType, entityID: entityID}
}

// EntityType returns the kind of entity being addressed.
func (p EntityPointer) EntityType() string { return p.entityType }

// EntityID returns the entity's own identifier.
func (p EntityPointer) EntityID() string { return p.entityID }

// ID implements Pointer. The id is "<entityType>-<entityID>", unique
// within the entity variant.
func (p EntityPointer) ID() string { return p.entityType + "-" + p.entityID }

// Type implements Pointer.
func (p EntityPointer) Type() string { return TypeEntity }

// Serialize implements Pointer.
func (p EntityPointer) Serialize() string {
	data, err := json.Marshal(entityEnvelope{
		Type:       TypeEntity,
		EntityType: p.entityType,
		EntityID:   p.entityID,
	})
	if err != nil {
		// The envelope is three plain strings; marshaling cannot fail.
		panic(fmt.Sprintf("serialize entity pointer: %v", err))
	}
	return string(data)
}

// Equal implements Pointer.
func (p EntityPointer) Equal(other Pointer) bool { return Equal(p, other) }

// Describe implements Pointer. The description is synthesized from the
// entity type and id; no external lookup is performed.
func (p EntityPointer) Describe(ctx context.Context) (Description, error) {
	return Description{
		Title:    fmt.Sprintf("%s %s", p.entityType, p.entityID),
		Excerpt:  fmt.Sprintf("Discussion on %s %s", p.entityType, p.entityID),
		Location: p.entityType + "/" + p.entityID,
	}, nil
}

// DeserializeEntityPointer parses the envelope produced by
// EntityPointer.Serialize.
func DeserializeEntityPointer(data string) (EntityPointer, error) {
	var env entityEnvelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		return EntityPointer{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type != TypeEntity {
		return EntityPointer{}, fmt.Errorf("%w: expected %q, got %q", ErrMalformed, TypeEntity, env.Type)
	}
	return NewEntityPointer(env.EntityType, env.EntityID), nil
}
