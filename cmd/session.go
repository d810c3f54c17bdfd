// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 majektom

package cmd

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/majektom/satel-integra-integration-protocol/internal/link"
)

// session is an open connection with a running link
type session struct {
	conn   Connection
	link   *link.Link
	info   string
	cancel context.CancelFunc
	errCh  chan error
}

// linkOptions builds link options from the loaded configuration
func linkOptions(extra ...link.Option) []link.Option {
	opts := []link.Option{
		link.WithLogger(logger),
		link.WithRateLimit(cfg.Link.RateLimit),
		link.WithIdleReset(cfg.Link.IdleReset),
	}
	return append(opts, extra...)
}

// openSession connects to the panel and starts reading in the background
func openSession(ctx context.Context, extra ...link.Option) (*session, error) {
	conn, info, err := OpenConnection(cfg.Connection)
	if err != nil {
		return nil, err
	}

	l := link.New(conn, linkOptions(extra...)...)
	runCtx, cancel := context.WithCancel(ctx)

	s := &session{
		conn:   conn,
		link:   l,
		info:   info,
		cancel: cancel,
		errCh:  make(chan error, 1),
	}

	go func() {
		s.errCh <- l.Run(runCtx)
	}()

	logger.Info("connected", zap.String("connection", info))
	return s, nil
}

// Close stops the link and closes the connection. It returns the link's
// exit error unless that was a plain cancellation.
func (s *session) Close() error {
	s.cancel()
	runErr := <-s.errCh
	closeErr := s.conn.Close()
	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, link.ErrClosed) {
		return runErr
	}
	return closeErr
}

// closeSession closes s and reports its error through errp. When errp
// already holds an error the close error is logged instead.
func closeSession(s *session, errp *error) {
	err := s.Close()
	if err == nil {
		return
	}
	if *errp == nil {
		*errp = fmt.Errorf("connection: %w", err)
		return
	}
	logger.Warn("session close failed", zap.Error(err))
}
