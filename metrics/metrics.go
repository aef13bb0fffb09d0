// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

// Package metrics exposes Prometheus instrumentation for the commenting
// core. Embedding applications that already serve a Prometheus registry
// get these series for free; applications that do not can ignore the
// package entirely.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CommentsCreated counts comments created through the service.
	CommentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commentable_comments_created_total",
			Help: "Total number of comments created",
		},
	)

	// CommentsUpdated counts content updates applied to existing comments.
	CommentsUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commentable_comments_updated_total",
			Help: "Total number of comment content updates",
		},
	)

	// CommentsDeleted counts comments deleted through the service.
	CommentsDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commentable_comments_deleted_total",
			Help: "Total number of comments deleted",
		},
	)

	// ThreadsResolved counts successful bulk thread resolutions.
	ThreadsResolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commentable_threads_resolved_total",
			Help: "Total number of threads resolved",
		},
	)

	// ThreadsUnresolved counts successful bulk thread un-resolutions.
	ThreadsUnresolved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commentable_threads_unresolved_total",
			Help: "Total number of threads unresolved",
		},
	)

	// StoreLoadFailures counts persistent-store startups that found a
	// corrupt blob and fell back to an empty store. A nonzero value means
	// data was lost, not that the process failed.
	StoreLoadFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "commentable_store_load_failures_total",
			Help: "Total number of store loads that discarded a corrupt blob",
		},
	)
)
