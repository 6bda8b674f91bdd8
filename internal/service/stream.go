package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/Abdulkaium05/echo-backend/internal/hub"
)

// runStream drives one live subscription: push the current view immediately,
// then re-load and push on every hub signal until the caller's context is
// done. The channel closes and the hub slot is released on exit, whichever
// side ends first.
func runStream[T any](ctx context.Context, sub *hub.Subscription, out chan T, load func(context.Context) (T, error), log *zap.SugaredLogger) {
	defer close(out)
	defer sub.Cancel()

	push := func() bool {
		view, err := load(ctx)
		if err != nil {
			// transient read failures skip one frame rather than killing
			// the stream
			log.Warnw("stream reload failed", "err", err)
			return true
		}
		select {
		case out <- view:
			return true
		case <-ctx.Done():
			return false
		}
	}

	if !push() {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Notify():
			if !ok {
				return
			}
			if !push() {
				return
			}
		}
	}
}
