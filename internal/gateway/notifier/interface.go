package notifier

import (
	"context"

	"moonwatch/internal/logger"
)

// TextNotifier defines a minimal text notification interface.
// Callers depend on it rather than on a concrete sender such as Telegram.
type TextNotifier interface {
	SendText(ctx context.Context, text string) error
}

// Noop drops every message.
type Noop struct{}

func (Noop) SendText(context.Context, string) error { return nil }

// Deliver renders msg and hands it to n. Delivery is best-effort: a failure
// is logged and reported to the caller as false, never as an error.
func Deliver(ctx context.Context, n TextNotifier, msg StructuredMessage) bool {
	if n == nil {
		return false
	}
	if err := n.SendText(ctx, msg.RenderMarkdown()); err != nil {
		logger.Errorf("notification %q failed: %v", msg.Title, err)
		return false
	}
	return true
}
