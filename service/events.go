// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package service

import (
	"github.com/threadworks/commentable/comment"
	"github.com/threadworks/commentable/pointer"
)

// Bus topics emitted by the service, one per mutation kind. UI surfaces
// subscribe to these, compare the event's pointer against the pointer(s)
// they display, and refetch through GetComments or GetThread.
const (
	EventCommentCreated   = "comment:created"
	EventCommentUpdated   = "comment:updated"
	EventCommentDeleted   = "comment:deleted"
	EventThreadResolved   = "thread:resolved"
	EventThreadUnresolved = "thread:unresolved"
)

// Event is the payload published on the notification bus. Which fields
// are set depends on Type: created and updated carry the Comment,
// deleted carries the CommentID, and the thread events carry the Pointer.
type Event struct {
	// Type is the topic the event was published under.
	Type string

	// Comment is the created or updated comment snapshot.
	Comment *comment.Comment

	// CommentID is the id of the deleted comment.
	CommentID string

	// Pointer addresses the thread that was resolved or unresolved.
	Pointer pointer.Pointer
}
