package schema

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"
)

// Store holds the current schema snapshot. Reload swaps in a freshly loaded
// Definition; callers holding an older snapshot keep using it unchanged.
type Store struct {
	path    string
	current atomic.Pointer[Definition]
	logger  *zap.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a logger for reload events.
func WithLogger(l *zap.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a store. When path is empty the built-in definition is used
// and Reload is a no-op.
func NewStore(path string, opts ...StoreOption) (*Store, error) {
	s := &Store{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	if path == "" {
		s.current.Store(Default())
		return s, nil
	}
	def, err := Load(path)
	if err != nil {
		return nil, err
	}
	s.current.Store(def)
	return s, nil
}

// NewStaticStore wraps an already loaded definition.
func NewStaticStore(def *Definition) *Store {
	s := &Store{logger: zap.NewNop()}
	s.current.Store(def)
	return s
}

// Path returns the schema file path, or "" for the built-in definition.
func (s *Store) Path() string {
	return s.path
}

// Current returns the active snapshot.
func (s *Store) Current() *Definition {
	return s.current.Load()
}

// Swap replaces the active snapshot.
func (s *Store) Swap(def *Definition) {
	if def == nil {
		return
	}
	s.current.Store(def)
}

// Reload re-reads the schema file. On failure the previous snapshot stays active.
func (s *Store) Reload() error {
	if s.path == "" {
		return errors.New("schema store has no file to reload")
	}
	def, err := Load(s.path)
	if err != nil {
		s.logger.Warn("schema reload failed, keeping previous definition", zap.String("path", s.path), zap.Error(err))
		return err
	}
	s.current.Store(def)
	s.logger.Info("schema reloaded",
		zap.String("path", s.path),
		zap.Int("targets", len(def.Targets)),
		zap.Int("operators", len(def.Operators)),
	)
	return nil
}
