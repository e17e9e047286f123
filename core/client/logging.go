package client

import (
	"context"

	"go.uber.org/zap"

	"github.com/leofalp/switchboard/core/chat"
	"github.com/leofalp/switchboard/internal/utils"
)

const logTruncateLen = 500

// NewLoggingMiddleware logs every exchange through the given logger: one
// line when the call starts, one when it settles. Request payloads are
// logged only at debug level, truncated. A nil logger disables the
// middleware rather than failing.
func NewLoggingMiddleware(logger *zap.Logger) MiddlewareConfig {
	if logger == nil {
		logger = zap.NewNop()
	}

	return MiddlewareConfig{
		Send: func(next SendFunc) SendFunc {
			return func(ctx context.Context, call *Call) (*chat.Response, error) {
				logSendStart(logger, call)

				timer := utils.NewTimer()
				response, err := next(ctx, call)
				duration := timer.Stop()

				if err != nil {
					logger.Error("chat send failed",
						zap.String("provider", call.Def.ID),
						zap.String("model", call.Built.Model),
						zap.Duration("duration", duration),
						zap.Error(err))
					return nil, err
				}

				fields := []zap.Field{
					zap.String("provider", response.Provider),
					zap.String("model", response.Model),
					zap.Duration("duration", duration),
				}
				if response.Usage != nil {
					fields = append(fields,
						zap.Int("input_tokens", response.Usage.InputTokens),
						zap.Int("output_tokens", response.Usage.OutputTokens))
				}
				if response.Cost != nil {
					fields = append(fields,
						zap.Float64("cost_usd", *response.Cost),
						zap.String("cost_source", response.CostSource))
				}

				if !response.OK() {
					logger.Warn("chat send returned an error response",
						append(fields, zap.String("error_message", response.ErrorMessage))...)
				} else {
					logger.Info("chat send completed", fields...)
				}
				return response, nil
			}
		},
		Stream: func(next StreamFunc) StreamFunc {
			return func(ctx context.Context, call *Call) (*chat.Stream, error) {
				logger.Info("chat stream",
					zap.String("provider", call.Def.ID),
					zap.String("model", call.Built.Model))

				timer := utils.NewTimer()
				stream, err := next(ctx, call)
				if err != nil {
					logger.Error("chat stream failed to open",
						zap.String("provider", call.Def.ID),
						zap.String("model", call.Built.Model),
						zap.Error(err))
					return nil, err
				}
				return wrapStreamLogging(stream, logger, call, timer), nil
			}
		},
	}
}

func logSendStart(logger *zap.Logger, call *Call) {
	logger.Info("chat send",
		zap.String("provider", call.Def.ID),
		zap.String("model", call.Built.Model),
		zap.Int("messages", len(call.Request.Messages)))

	if entry := logger.Check(zap.DebugLevel, "chat send payload"); entry != nil {
		fields := []zap.Field{zap.String("provider", call.Def.ID)}
		if len(call.Request.Messages) > 0 {
			first := call.Request.Messages[0]
			fields = append(fields,
				zap.String("first_role", string(first.Role)),
				zap.String("first_content", utils.TruncateString(first.Content, logTruncateLen)))
		}
		entry.Write(fields...)
	}
}

// wrapStreamLogging observes a stream without changing what flows through
// it, logging a settlement line when the consumer finishes, abandons the
// loop, or hits an error.
func wrapStreamLogging(stream *chat.Stream, logger *zap.Logger, call *Call, timer *utils.Timer) *chat.Stream {
	return chat.NewStream(func(yield func(chat.Fragment, error) bool) {
		fragments := 0
		for fragment, err := range stream.Iter() {
			if err != nil {
				logger.Error("chat stream failed",
					zap.String("provider", call.Def.ID),
					zap.String("model", call.Built.Model),
					zap.Duration("duration", timer.Stop()),
					zap.Int("fragments", fragments),
					zap.Error(err))
				yield(fragment, err)
				return
			}
			if fragment.Text != "" {
				fragments++
			}

			// Consumers commonly break on the Done fragment; that still
			// counts as a completed stream, not an abandoned one.
			delivered := yield(fragment, nil)
			if fragment.Done {
				logger.Info("chat stream completed",
					zap.String("provider", call.Def.ID),
					zap.String("model", call.Built.Model),
					zap.Duration("duration", timer.Stop()),
					zap.Int("fragments", fragments))
				return
			}
			if !delivered {
				logger.Info("chat stream abandoned",
					zap.String("provider", call.Def.ID),
					zap.String("model", call.Built.Model),
					zap.Duration("duration", timer.Stop()),
					zap.Int("fragments", fragments))
				return
			}
		}
	})
}
