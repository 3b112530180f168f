// Package host defines how strategies are handed to the runtime that feeds them candles.
// Registration is explicit: a strategy and its declarative settings are passed together.
package host

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/vadiminshakov/rsivolume/config"
	"github.com/vadiminshakov/rsivolume/internal/domain"
)

var (
	// ErrStrategyNotFound is returned by Get for unknown names.
	ErrStrategyNotFound = errors.New("strategy not registered")
	// ErrDuplicateStrategy is returned when a name is registered twice.
	ErrDuplicateStrategy = errors.New("strategy already registered")
)

// Strategy computes indicator and signal columns for a candle series of one pair.
type Strategy interface {
	Populate(ctx context.Context, pair domain.Pair, series domain.CandleSeries) (*domain.Frame, error)
}

// Registration strategy together with the settings the host applies around its signals.
type Registration struct {
	Name     string
	Strategy Strategy
	Config   config.HostConfig
}

// Registry keeps registered strategies by name.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Registration
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Registration)}
}

// Register validates and stores a registration.
func (r *Registry) Register(reg Registration) error {
	if reg.Name == "" {
		return errors.New("strategy name is required")
	}
	if reg.Strategy == nil {
		return errors.Errorf("strategy %s is nil", reg.Name)
	}
	if err := reg.Config.Validate(); err != nil {
		return errors.Wrapf(err, "invalid host config for %s", reg.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.strategies[reg.Name]; ok {
		return errors.Wrap(ErrDuplicateStrategy, reg.Name)
	}
	r.strategies[reg.Name] = reg
	return nil
}

// Get returns the registration for name.
func (r *Registry) Get(name string) (Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reg, ok := r.strategies[name]
	if !ok {
		return Registration{}, errors.Wrap(ErrStrategyNotFound, name)
	}
	return reg, nil
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
