package theme

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/shared"
)

var (
	// ErrNotReady is returned by [Synchronizer.SetTheme] before resolution completes.
	ErrNotReady = errors.New("theme not resolved yet")
	// ErrClosed is returned once the synchronizer has been detached.
	ErrClosed = errors.New("theme synchronizer closed")
)

// DefaultSaveTimeout bounds each background backend write.
const DefaultSaveTimeout = 10 * time.Second

// Store is a local place a theme string is kept (the cookie or the local key/value store).
type Store interface {
	Load() (string, bool, error)
	Save(theme models.Theme) error
}

// Backend is the authoritative preference for a signed-in user.
type Backend interface {
	GetTheme(ctx context.Context) (models.Theme, bool, error)
	SaveTheme(ctx context.Context, theme models.Theme) error
}

// Document receives the theme attribute used for rendering.
type Document interface {
	ApplyTheme(theme models.Theme)
}

// Session is the resolved session the synchronizer depends on.
type Session interface {
	Done() <-chan struct{}
	IsAuthenticated() bool
}

// State is the synchronizer's lifecycle.
type State int

const (
	Uninitialized State = iota
	Resolving
	Ready
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Resolving:
		return "resolving"
	case Ready:
		return "ready"
	}
	return "unknown"
}

// Options wires a [Synchronizer]. Any of Cookie, Local, Backend and Document may be nil.
type Options struct {
	Session     Session
	Cookie      Store
	Local       Store
	Backend     Backend
	Document    Document
	Logger      *log.Logger
	SaveTimeout time.Duration
}

// Synchronizer resolves and propagates the theme.
type Synchronizer struct {
	mu         sync.Mutex
	state      State
	current    models.Theme
	generation uint64
	closed     bool
	ready      chan struct{}

	saveMu  sync.Mutex
	saveSeq atomic.Uint64
	saves   sync.WaitGroup

	opts   Options
	logger *log.Logger
}

// New creates a synchronizer in the Uninitialized state.
func New(opts Options) *Synchronizer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.SaveTimeout <= 0 {
		opts.SaveTimeout = DefaultSaveTimeout
	}
	return &Synchronizer{
		current: models.DefaultTheme,
		ready:   make(chan struct{}),
		opts:    opts,
		logger:  opts.Logger,
	}
}

// State returns the lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the effective theme.
func (s *Synchronizer) Current() models.Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Ready is closed once resolution has been applied.
func (s *Synchronizer) Ready() <-chan struct{} {
	return s.ready
}

// Resolve runs the one-time resolution. Later calls return the current theme without doing any work.
//
// It blocks until the session is resolved or ctx ends; a canceled wait returns the synchronizer to
// Uninitialized so resolution can be retried.
func (s *Synchronizer) Resolve(ctx context.Context) (models.Theme, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return "", ErrClosed
	}
	if s.state != Uninitialized {
		current := s.current
		s.mu.Unlock()
		return current, nil
	}
	s.state = Resolving
	gen := s.generation
	s.mu.Unlock()

	if s.opts.Session != nil {
		select {
		case <-s.opts.Session.Done():
		case <-ctx.Done():
			s.mu.Lock()
			if s.generation == gen {
				s.state = Uninitialized
			}
			s.mu.Unlock()
			return "", ctx.Err()
		}
	}

	resolved := models.DefaultTheme
	if t, ok := s.load("cookie", s.opts.Cookie); ok {
		resolved = t
	}
	if t, ok := s.load("local", s.opts.Local); ok {
		resolved = t
	}

	authenticated := s.opts.Session != nil && s.opts.Session.IsAuthenticated()
	initBackend := false
	if authenticated && s.opts.Backend != nil {
		if s.opts.Document != nil && s.attached(gen) {
			s.opts.Document.ApplyTheme(resolved)
		}

		t, ok, err := s.opts.Backend.GetTheme(ctx)
		switch {
		case err != nil:
			s.logger.Warn("failed to fetch theme, keeping local value", "theme", resolved, "error", err)
		case ok:
			resolved = t
		default:
			initBackend = true
		}
	}

	s.mu.Lock()
	if s.closed || s.generation != gen {
		s.mu.Unlock()
		s.logger.Debug("discarding theme resolution for detached synchronizer")
		return "", ErrClosed
	}
	s.current = resolved
	s.apply(resolved)
	s.state = Ready
	close(s.ready)
	s.mu.Unlock()

	if initBackend {
		s.persist(resolved)
	}
	return resolved, nil
}

// SetTheme applies theme everywhere locally and, when authenticated, saves it to the backend in the background.
func (s *Synchronizer) SetTheme(theme models.Theme) error {
	if !theme.Valid() {
		return fmt.Errorf("%w: theme %q", shared.ErrInvalidArgument, theme)
	}

	s.mu.Lock()
	switch {
	case s.closed:
		s.mu.Unlock()
		return ErrClosed
	case s.state != Ready:
		s.mu.Unlock()
		return ErrNotReady
	}
	s.current = theme
	s.apply(theme)
	s.mu.Unlock()

	if s.opts.Session != nil && s.opts.Session.IsAuthenticated() {
		s.persist(theme)
	}
	return nil
}

// Toggle switches to the opposite theme and returns it.
func (s *Synchronizer) Toggle() (models.Theme, error) {
	next := s.Current().Opposite()
	if err := s.SetTheme(next); err != nil {
		return "", err
	}
	return next, nil
}

// Wait blocks until every background save has finished.
func (s *Synchronizer) Wait() {
	s.saves.Wait()
}

// Close detaches the synchronizer. A resolution still in flight discards its result.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.generation++
}

func (s *Synchronizer) attached(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.generation == gen
}

func (s *Synchronizer) load(name string, store Store) (models.Theme, bool) {
	if store == nil {
		return "", false
	}
	raw, ok, err := store.Load()
	if err != nil {
		s.logger.Warn("failed to read theme", "source", name, "error", err)
		return "", false
	}
	if !ok {
		return "", false
	}
	return models.ParseTheme(raw)
}

// apply must be called with s.mu held.
func (s *Synchronizer) apply(theme models.Theme) {
	if s.opts.Document != nil {
		s.opts.Document.ApplyTheme(theme)
	}
	if s.opts.Cookie != nil {
		if err := s.opts.Cookie.Save(theme); err != nil {
			s.logger.Warn("failed to store theme", "source", "cookie", "error", err)
		}
	}
	if s.opts.Local != nil {
		if err := s.opts.Local.Save(theme); err != nil {
			s.logger.Warn("failed to store theme", "source", "local", "error", err)
		}
	}
}

// persist saves theme to the backend on a detached context. Only the newest pending value is written.
func (s *Synchronizer) persist(theme models.Theme) {
	if s.opts.Backend == nil {
		return
	}

	seq := s.saveSeq.Add(1)
	s.saves.Add(1)
	go func() {
		defer s.saves.Done()

		s.saveMu.Lock()
		defer s.saveMu.Unlock()
		if seq != s.saveSeq.Load() {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.SaveTimeout)
		defer cancel()
		if err := s.opts.Backend.SaveTheme(ctx, theme); err != nil {
			s.logger.Warn("failed to save theme", "theme", theme, "error", err)
		}
	}()
}
