package ai

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// ModelHolder caches the detected model id. The zero value is empty and ready to use.
type ModelHolder struct {
	id atomic.Pointer[string]
}

// Get returns the cached model id.
func (h *ModelHolder) Get() (string, bool) {
	id := h.id.Load()
	if id == nil {
		return "", false
	}
	return *id, true
}

// Set replaces the cached model id.
func (h *ModelHolder) Set(id string) {
	h.id.Store(&id)
}

// Resolve returns the cached model id, running detect when none is cached.
// Concurrent callers may both detect; the last one wins.
func (h *ModelHolder) Resolve(ctx context.Context, detect func(context.Context) (string, error)) (string, error) {
	if id, ok := h.Get(); ok {
		return id, nil
	}

	id, err := detect(ctx)
	if err != nil {
		slog.Error("[ERRO] Não foi possível detectar modelo", slog.String("error", err.Error()))
		return "", err
	}
	h.Set(id)
	return id, nil
}
