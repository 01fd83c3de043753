// Package logging defines the context-aware structured logger used by the
// gateway services. Arguments after the message are key/value pairs:
//
//	log.Info(ctx, "[sms][send] ok", "mobile", mobile)
package logging

import "context"

type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	// With returns a child logger that always carries the given pairs.
	With(args ...any) Logger
}
