// Package catalog is the read, update, and delete facade over the creature
// store. It validates proposed changes, applies them onto the stored record,
// and turns version conflicts into types.ErrConcurrentModification.
//
// The service holds no locks of its own. Concurrent callers coordinate through
// the store's version-checked Save; a lost race is reported, never retried.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/mesh-intelligence/dexhub/internal/logging"
	"github.com/mesh-intelligence/dexhub/internal/metrics"
	"github.com/mesh-intelligence/dexhub/pkg/types"
)

// Operation names recorded in metrics and logs.
const (
	OpList   = "list"
	OpGet    = "get"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Store is the part of types.Store the service needs.
type Store interface {
	Count(ctx context.Context) (int, error)
	Get(ctx context.Context, id int64) (*types.Creature, error)
	Fetch(ctx context.Context) ([]types.Creature, error)
	Save(ctx context.Context, c *types.Creature) error
	Delete(ctx context.Context, id int64) error
}

// Service implements the catalog operations.
type Service struct {
	store   Store
	logger  *log.Logger
	metrics *metrics.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger for catalog events.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records operation outcomes in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: log.Default()}
	for _, o := range opts {
		o(s)
	}
	s.logger = logging.Component(s.logger, "catalog")
	return s
}

// ListAll returns every creature ordered by ID.
func (s *Service) ListAll(ctx context.Context) ([]types.Creature, error) {
	all, err := s.store.Fetch(ctx)
	s.record(OpList, err)
	if err != nil {
		return nil, fmt.Errorf("listing creatures: %w", err)
	}
	return all, nil
}

// Get returns the creature with the given ID, or types.ErrNotFound.
func (s *Service) Get(ctx context.Context, id int64) (*types.Creature, error) {
	if id <= 0 {
		s.record(OpGet, types.ErrInvalidID)
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidID, id)
	}
	c, err := s.store.Get(ctx, id)
	s.record(OpGet, err)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Update applies the name, types, and image URL of proposed onto the creature
// with the given ID and persists it with a version check.
//
// proposed.ID, proposed.Version, and proposed.Image.ID are ignored. A blank
// name or empty type set fails with *types.InvalidFieldError before the store
// is read. If another writer saved the record between the read and the write,
// Update returns types.ErrConcurrentModification and the stored record is left
// as the other writer saved it.
func (s *Service) Update(ctx context.Context, id int64, proposed types.Creature) (*types.Creature, error) {
	if err := proposed.Validate(); err != nil {
		s.record(OpUpdate, err)
		return nil, err
	}
	if id <= 0 {
		s.record(OpUpdate, types.ErrInvalidID)
		return nil, fmt.Errorf("%w: %d", types.ErrInvalidID, id)
	}

	existing, err := s.store.Get(ctx, id)
	if err != nil {
		s.record(OpUpdate, err)
		return nil, err
	}

	next := existing.Clone()
	next.Name = proposed.Name
	next.Types = types.NewTypeSet(proposed.Types...)
	next.Image = types.Image{ID: existing.ID, URL: proposed.Image.URL}

	err = s.store.Save(ctx, next)
	if errors.Is(err, types.ErrStaleVersion) {
		err = types.ErrConcurrentModification
		s.logger.Warn("update lost a version race", "id", id, "read_version", existing.Version)
	}
	s.record(OpUpdate, err)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("updated creature", "id", id, "version", next.Version)
	return next, nil
}

// Delete removes the creature with the given ID together with its types and
// image, or returns types.ErrNotFound.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		s.record(OpDelete, types.ErrInvalidID)
		return fmt.Errorf("%w: %d", types.ErrInvalidID, id)
	}
	err := s.store.Delete(ctx, id)
	s.record(OpDelete, err)
	if err != nil {
		return err
	}
	s.logger.Info("deleted creature", "id", id)

	if s.metrics != nil {
		if n, err := s.store.Count(ctx); err == nil {
			s.metrics.SetRecords(n)
		}
	}
	return nil
}

func (s *Service) record(op string, err error) {
	s.metrics.Operation(op, Outcome(err))
	if err != nil && Outcome(err) == metrics.OutcomeError {
		s.logger.Error("catalog operation failed", "op", op, "err", err)
	}
}

// Outcome classifies an operation error for metrics and exit codes.
func Outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.Is(err, types.ErrNotFound):
		return metrics.OutcomeNotFound
	case errors.Is(err, types.ErrInvalidField), errors.Is(err, types.ErrInvalidID):
		return metrics.OutcomeInvalid
	case errors.Is(err, types.ErrConcurrentModification):
		return metrics.OutcomeConflict
	default:
		return metrics.OutcomeError
	}
}
