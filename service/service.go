// Package service assembles a journey runtime from configuration: the
// logger, the state store, the journey registry and the instance provider.
//
//	svc, err := service.New(&cfg)
//	svc.MustRegister(journey.DescriptorFor[*AddPerson]("add-person"), coordinator.Hooks{})
//	router.GET("/add-person/name", journeyhttp.Journey(svc.Provider(), "add-person", journeyhttp.StartsJourney()), nameHandler)
package service

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/x-govuk/questions/coordinator"
	"github.com/x-govuk/questions/journey"
	"github.com/x-govuk/questions/observability"
	"github.com/x-govuk/questions/state"
)

const (
	observerSlog       = "slog"
	observerPrometheus = "prometheus"
)

// Option configures a Service after config-driven initialization.
type Option func(*options)

type options struct {
	logger     *slog.Logger
	store      *state.JSONStore
	types      *state.TypeRegistry
	registerer prometheus.Registerer
	observers  []observability.Observer
}

// WithLogger overrides the logger built from the log config.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithStore overrides the config-created store. Its codec's type registry
// is used for journey state types.
func WithStore(s *state.JSONStore) Option {
	return func(o *options) { o.store = s }
}

// WithTypes sets the type registry for the config-created store.
func WithTypes(t *state.TypeRegistry) Option {
	return func(o *options) { o.types = t }
}

// WithRegisterer sets where the prometheus observer registers its metrics.
// Defaults to prometheus.DefaultRegisterer.
func WithRegisterer(r prometheus.Registerer) Option {
	return func(o *options) { o.registerer = r }
}

// WithObserver adds an observer alongside the configured ones.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// Service is a configured journey runtime.
type Service struct {
	logger   *slog.Logger
	store    *state.JSONStore
	registry *coordinator.Registry
	provider *coordinator.Provider
	observer observability.Observer
	metrics  *observability.PrometheusObserver
}

// New creates a Service from configuration.
func New(cfg *Config, opts ...Option) (*Service, error) {
	o := options{registerer: prometheus.DefaultRegisterer}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := o.logger
	if logger == nil {
		logger = NewLogger(cfg.Log, os.Stderr)
	}

	store := o.store
	if store == nil {
		types := o.types
		if types == nil {
			types = state.NewTypeRegistry()
		}

		stateCfg := cfg.State
		if stateCfg.Badger.Logger == nil {
			stateCfg.Badger.Logger = logger.With("component", "badger")
		}

		var err error
		store, err = state.NewStore(&stateCfg, state.NewCodec(types))
		if err != nil {
			return nil, fmt.Errorf("failed to create state store: %w", err)
		}
	}

	svc := &Service{
		logger:   logger,
		store:    store,
		registry: coordinator.NewRegistry(store.Codec().Types()),
	}

	observers := make([]observability.Observer, 0, len(cfg.Observers)+len(o.observers))
	for _, name := range cfg.Observers {
		switch name {
		case observerSlog:
			observers = append(observers, observability.NewSlogObserver(logger))
		case observerPrometheus:
			metrics, err := observability.NewPrometheusObserver(o.registerer)
			if err != nil {
				store.Close()
				return nil, err
			}
			svc.metrics = metrics
			observers = append(observers, metrics)
		default:
			obs, err := observability.GetObserver(name)
			if err != nil {
				store.Close()
				return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
			observers = append(observers, obs)
		}
	}
	observers = append(observers, o.observers...)

	svc.observer = observability.Combine(observers...)

	svc.provider = coordinator.NewProvider(svc.registry, store, svc.observer)

	logger.Debug("journey service initialized",
		"backend", cfg.State.Backend,
		"observers", cfg.Observers)

	return svc, nil
}

// Register adds a journey to the service's registry.
func (s *Service) Register(d *journey.Descriptor, hooks coordinator.Hooks) error {
	if err := s.registry.Register(d, hooks); err != nil {
		return err
	}
	s.logger.Debug("journey registered", "journey", d.Name(), "state_type", journey.TypeName(d.StateType()))
	return nil
}

// MustRegister is like Register but panics on error.
func (s *Service) MustRegister(d *journey.Descriptor, hooks coordinator.Hooks) {
	if err := s.Register(d, hooks); err != nil {
		panic(err)
	}
}

func (s *Service) Logger() *slog.Logger { return s.logger }

func (s *Service) Store() *state.JSONStore { return s.store }

func (s *Service) Registry() *coordinator.Registry { return s.registry }

func (s *Service) Provider() *coordinator.Provider { return s.provider }

func (s *Service) Observer() observability.Observer { return s.observer }

// Metrics returns the prometheus observer, or nil when it is not configured.
func (s *Service) Metrics() *observability.PrometheusObserver { return s.metrics }

// Close releases the state store's backend.
func (s *Service) Close() error {
	return s.store.Close()
}

// NewLogger builds a slog.Logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
