package i18n

import (
	"context"
	"time"
)

// Readiness is anything that signals when it becomes usable
type Readiness interface {
	Ready() <-chan struct{}
}

// WaitReady blocks until r is ready, ctx is done or timeout elapses.
// It reports whether r became ready.
func WaitReady(ctx context.Context, r Readiness, timeout time.Duration) bool {
	if r == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case <-r.Ready():
		return true
	case <-ctx.Done():
		return false
	}
}

// Resolve waits for l and returns a Translator for lang, or Unavailable(lang)
// when l did not become ready in time.
func Resolve(ctx context.Context, l *Localizer, lang string, timeout time.Duration) Translator {
	if l == nil || !WaitReady(ctx, l, timeout) {
		return Unavailable(lang)
	}
	if lang == "" {
		lang = l.Language()
	}
	return l.For(lang)
}
