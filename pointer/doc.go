// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

/*
Package pointer addresses the thing a comment is attached to.

A Pointer is a small, immutable value identifying any commentable target:
a whole application entity (task, document, project) or a captured text
quotation. Two variants ship with the library:

  - EntityPointer: whole-entity discussion ("task t1", "document d9")
  - QuotePointer: discussion anchored to a quoted text excerpt

The comment service never inspects pointer internals; it calls Serialize,
Equal and Describe polymorphically. New target kinds are added by
implementing Pointer and registering a deserializer with Register - no
service changes required.

# Serialization

Serialize produces a canonical JSON envelope of the form

	{"type":"entity","entityType":"task","entityId":"t1"}

which doubles as the store's pointer index key. Deserialize is the
inverse and dispatches on the "type" discriminator. Malformed input
returns an error, never panics; lookups treat a failed parse as "no
such pointer".

# Equality

Pointers are equal iff they share a type and an id. Equality never
depends on object identity, so two independently deserialized copies of
the same pointer compare equal.
*/
package pointer
