package client

import (
	"context"
	"time"

	"github.com/leofalp/switchboard/core/chat"
)

// NewTimeoutMiddleware bounds each exchange with a per-call deadline. For
// streaming the deadline covers the whole stream, not just the connection:
// the cancel is released when the consumer finishes or abandons the
// iterator.
func NewTimeoutMiddleware(timeout time.Duration) MiddlewareConfig {
	return MiddlewareConfig{
		Send: func(next SendFunc) SendFunc {
			return func(ctx context.Context, call *Call) (*chat.Response, error) {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				defer cancel()
				return next(ctx, call)
			}
		},
		Stream: func(next StreamFunc) StreamFunc {
			return func(ctx context.Context, call *Call) (*chat.Stream, error) {
				ctx, cancel := context.WithTimeout(ctx, timeout)
				stream, err := next(ctx, call)
				if err != nil {
					cancel()
					return nil, err
				}
				return wrapStreamCancel(stream, cancel), nil
			}
		},
	}
}

// wrapStreamCancel ties a cancel func to the stream's lifetime so the
// deadline's resources are released however consumption ends.
func wrapStreamCancel(stream *chat.Stream, cancel context.CancelFunc) *chat.Stream {
	return chat.NewStream(func(yield func(chat.Fragment, error) bool) {
		defer cancel()
		for fragment, err := range stream.Iter() {
			if !yield(fragment, err) {
				return
			}
			if err != nil || fragment.Done {
				return
			}
		}
	})
}
