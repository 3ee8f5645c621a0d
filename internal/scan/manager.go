package scan

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/skener/internal/decoder"
	"github.com/erazemk/skener/internal/model"
)

// ProductLoader supplies the product list a new session starts with.
type ProductLoader interface {
	LoadProducts(ctx context.Context) ([]model.Product, error)
}

// Backend is implemented by the store: loaded list, search and transaction creation.
type Backend interface {
	ProductLoader
	Catalog
	TransactionService
}

// ManagerConfig holds what every session a Manager starts shares.
type ManagerConfig struct {
	Backend        Backend
	Cooldown       time.Duration
	Now            func() time.Time
	Camera         decoder.Camera
	Decoder        decoder.Decoder
	DecodeInterval time.Duration
}

// Manager is the registry of open scanning sessions.
type Manager struct {
	cfg ManagerConfig

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager returns an empty registry.
func NewManager(cfg ManagerConfig) *Manager {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Manager{cfg: cfg, sessions: make(map[string]*Session)}
}

// Start opens a session for txType owned by the given user.
func (m *Manager) Start(ctx context.Context, txType string, owner int64) (*Session, error) {
	if !model.ValidTransactionType(txType) {
		return nil, fmt.Errorf("%w: unknown transaction type %q", ErrInvalidField, txType)
	}
	products, err := m.cfg.Backend.LoadProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading products: %w", err)
	}

	s := NewSession(Config{
		TransactionType: txType,
		Owner:           owner,
		Products:        products,
		Catalog:         m.cfg.Backend,
		Transactions:    m.cfg.Backend,
		Loader:          m.cfg.Backend,
		Cooldown:        m.cfg.Cooldown,
		Now:             m.cfg.Now,
		Camera:          m.cfg.Camera,
		Decoder:         m.cfg.Decoder,
		DecodeInterval:  m.cfg.DecodeInterval,
	})

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("session started", "session", s.ID, "type", txType, "owner", owner, "products", len(products))
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Close removes and closes a session.
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	s.Close()
	slog.Info("session closed", "session", id)
	return nil
}

// Sweep closes sessions idle for longer than idle and returns how many it closed.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.cfg.Now().Add(-idle)

	m.mu.Lock()
	var stale []*Session
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range stale {
		s.Close()
		slog.Info("session expired", "session", s.ID)
	}
	return len(stale)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// CloseAll closes every session, for shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for _, s := range all {
		s.Close()
	}
}
