package cart

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"graca-pdv/internal/domain"
)

// Registry owns the open cart sessions, one per front-end window
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	catalog  Catalog
	sales    SaleRecorder
	logger   *zap.Logger
}

// NewRegistry creates an empty session registry
func NewRegistry(catalog Catalog, sales SaleRecorder, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		catalog:  catalog,
		sales:    sales,
		logger:   logger,
	}
}

// Open starts a new empty cart session
func (r *Registry) Open() *Session {
	session := NewSession(r.catalog, r.sales, r.logger)

	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()

	r.logger.Info("Cart session opened", zap.String("session_id", session.ID))
	return session
}

// Get returns the open session with id
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()

	if !ok {
		return nil, &domain.NotFoundError{Entity: "cart session", Key: id}
	}
	return session, nil
}

// Close releases every reservation held by the session and discards it. The
// session stays registered when a release fails so it can be retried.
func (r *Registry) Close(ctx context.Context, id string) error {
	session, err := r.Get(id)
	if err != nil {
		return err
	}

	if err := session.Clear(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()

	r.logger.Info("Cart session closed", zap.String("session_id", id))
	return nil
}

// CloseAll closes every open session, used on shutdown
func (r *Registry) CloseAll(ctx context.Context) error {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	var firstErr error
	for _, id := range ids {
		if err := r.Close(ctx, id); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Len is the number of open sessions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
