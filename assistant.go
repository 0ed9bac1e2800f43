package mbtassist

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/mbtassist/internal/validator"
	"github.com/aretw0/mbtassist/pkg/adapters/memory"
	"github.com/aretw0/mbtassist/pkg/domain"
	"github.com/aretw0/mbtassist/pkg/generator"
	"github.com/aretw0/mbtassist/pkg/ports"
	"github.com/aretw0/mbtassist/pkg/project"
)

// lockTTL bounds how long Save and Open hold a project lock.
const lockTTL = 10 * time.Second

// Assistant is the high-level entry point of the library. It owns the
// model being edited and ties it to a project store and a generator.
//
// The Graph returned by Graph is live and not synchronized; use Update when
// the Assistant is shared between goroutines.
type Assistant struct {
	mu      sync.RWMutex
	name    string
	graph   *domain.Graph
	layout  *project.Layout
	store   ports.ProjectStore
	locker  ports.ProjectLocker
	logger  *slog.Logger
	genOpts []generator.Option
}

// Option defines a functional option for configuring the Assistant.
type Option func(*Assistant)

// WithLogger sets the structured logger used by the Assistant and its generator.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Assistant) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithStore replaces the default in-memory project store.
func WithStore(store ports.ProjectStore) Option {
	return func(a *Assistant) {
		a.store = store
	}
}

// WithLocker serializes Save and Open of the same project across processes.
func WithLocker(l ports.ProjectLocker) Option {
	return func(a *Assistant) {
		a.locker = l
	}
}

// WithObserver registers a generation observer (e.g. observability.Metrics).
func WithObserver(o generator.Observer) Option {
	return func(a *Assistant) {
		a.genOpts = append(a.genOpts, generator.WithObserver(o))
	}
}

// WithSentinel overrides the placeholder for missing input or expected result.
func WithSentinel(s string) Option {
	return func(a *Assistant) {
		a.genOpts = append(a.genOpts, generator.WithSentinel(s))
	}
}

// WithMaxPaths bounds the number of generated test cases. Zero means unlimited.
func WithMaxPaths(n int) Option {
	return func(a *Assistant) {
		a.genOpts = append(a.genOpts, generator.WithMaxPaths(n))
	}
}

// WithGraph starts from an existing model instead of an empty one.
func WithGraph(g *domain.Graph) Option {
	return func(a *Assistant) {
		if g != nil {
			a.graph = g
		}
	}
}

// New creates an Assistant with an empty model and an in-memory store.
func New(opts ...Option) *Assistant {
	a := &Assistant{
		graph:  domain.NewGraph(),
		store:  memory.NewStore(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Graph returns the live model.
func (a *Assistant) Graph() *domain.Graph {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.graph
}

// Name returns the name of the project last saved or opened.
func (a *Assistant) Name() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.name
}

// Update runs fn with exclusive access to the model.
func (a *Assistant) Update(fn func(g *domain.Graph) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fn(a.graph)
}

// Generate enumerates every path from the initial state and formats the
// test cases. The model is read-locked for the whole traversal.
func (a *Assistant) Generate() generator.Result {
	a.mu.RLock()
	defer a.mu.RUnlock()
	opts := append([]generator.Option{generator.WithLogger(a.logger)}, a.genOpts...)
	return generator.New(a.graph, opts...).Generate()
}

// Validate lints the model.
func (a *Assistant) Validate() validator.Report {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return validator.Validate(a.graph)
}

// Save stores the model under name. The layout is optional; when nil, the
// layout of the last opened project is kept.
func (a *Assistant) Save(ctx context.Context, name string, layout *project.Layout) error {
	return a.withLock(ctx, name, func(ctx context.Context) error {
		a.mu.Lock()
		defer a.mu.Unlock()
		if layout != nil {
			a.layout = layout
		}
		doc := project.FromGraph(name, a.graph, a.layout)
		if err := a.store.Save(ctx, name, doc); err != nil {
			return fmt.Errorf("failed to save project %q: %w", name, err)
		}
		a.name = name
		a.logger.Info("project saved", "project", name, "nodes", len(doc.Nodes), "transitions", len(doc.Transitions))
		return nil
	})
}

// Open replaces the model with the project stored under name and returns
// its layout.
func (a *Assistant) Open(ctx context.Context, name string) (*project.Layout, error) {
	var layout *project.Layout
	err := a.withLock(ctx, name, func(ctx context.Context) error {
		doc, err := a.store.Load(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to open project %q: %w", name, err)
		}
		g, l, err := doc.Graph()
		if err != nil {
			return err
		}

		a.mu.Lock()
		defer a.mu.Unlock()
		a.graph, a.layout, a.name = g, l, name
		layout = l
		a.logger.Debug("project opened", "project", name, "nodes", g.NodeCount())
		return nil
	})
	return layout, err
}

// Projects lists the stored project names.
func (a *Assistant) Projects(ctx context.Context) ([]string, error) {
	return a.store.List(ctx)
}

func (a *Assistant) withLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	if a.locker == nil {
		return fn(ctx)
	}
	unlock, err := a.locker.Lock(ctx, "project:"+name, lockTTL)
	if err != nil {
		return fmt.Errorf("failed to lock project %q: %w", name, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			a.logger.Warn("failed to release project lock", "project", name, "error", err)
		}
	}()
	return fn(ctx)
}
