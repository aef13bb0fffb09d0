// Commentable - Universal Commenting for Go Applications
// Copyright 2026 Threadworks
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/threadworks/commentable

package relay

import (
	"github.com/ThreeDotsLabs/watermill"
	"github.com/rs/zerolog"

	"github.com/threadworks/commentable/internal/logging"
)

// loggerAdapter routes Watermill's internal logging into zerolog so the
// relay logs through the same pipeline as the rest of the library.
type loggerAdapter struct {
	log zerolog.Logger
}

func newLoggerAdapter() watermill.LoggerAdapter {
	return &loggerAdapter{
		log: logging.With().Str("component", "relay").Logger(),
	}
}

func (a *loggerAdapter) event(e *zerolog.Event, msg string, fields watermill.LogFields) {
	for k, v := range fields {
		e = e.Interface(k, v)
	}
	e.Msg(msg)
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.event(a.log.Error().Err(err), msg, fields)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.event(a.log.Info(), msg, fields)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.event(a.log.Debug(), msg, fields)
}

func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.event(a.log.Trace(), msg, fields)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	ctx := a.log.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &loggerAdapter{log: ctx.Logger()}
}
