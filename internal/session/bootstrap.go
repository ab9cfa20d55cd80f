package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/travelers/internal/models"
	"github.com/desertthunder/travelers/internal/services"
)

// Resolver is the part of the backend the bootstrapper talks to.
type Resolver interface {
	Me(ctx context.Context) (*models.UserProfile, error)
	Refresh(ctx context.Context) ([]*http.Cookie, error)
}

// State is the bootstrapper's guard.
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

// Outcome reports how a run ended.
type Outcome int

const (
	// Pending is reported before the bootstrapper reaches Ready.
	Pending Outcome = iota
	// FromCandidate means the server-supplied user was accepted.
	FromCandidate
	// Authenticated means the first who-am-I returned a user.
	Authenticated
	// Refreshed means who-am-I succeeded after a session refresh.
	Refreshed
	// Cleared means an explicit no-session outcome emptied the store.
	Cleared
	// Preserved means a transient failure left the store unchanged.
	Preserved
	// Skipped is returned to every invocation after the first.
	Skipped
)

func (o Outcome) String() string {
	return [...]string{"pending", "from-candidate", "authenticated", "refreshed", "cleared", "preserved", "skipped"}[o]
}

// Bootstrapper resolves the session exactly once.
type Bootstrapper struct {
	mu       sync.Mutex
	state    State
	outcome  Outcome
	done     chan struct{}
	store    *Store
	resolver Resolver
	logger   *log.Logger
}

// NewBootstrapper creates a bootstrapper in the Uninitialized state.
func NewBootstrapper(store *Store, resolver Resolver, logger *log.Logger) *Bootstrapper {
	if logger == nil {
		logger = log.Default()
	}
	return &Bootstrapper{
		done:     make(chan struct{}),
		store:    store,
		resolver: resolver,
		logger:   logger,
	}
}

// State returns the current guard state.
func (b *Bootstrapper) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Outcome returns the result of the completed run, or [Pending].
func (b *Bootstrapper) Outcome() Outcome {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outcome
}

// Done is closed when the bootstrapper reaches Ready.
func (b *Bootstrapper) Done() <-chan struct{} {
	return b.done
}

// Store returns the container this bootstrapper writes to.
func (b *Bootstrapper) Store() *Store {
	return b.store
}

// Run executes the bootstrap sequence. It never fails; the result is folded into the store and reported as an
// [Outcome].
//
// candidate is the optional server-supplied user: a *models.UserProfile, raw JSON ([]byte or json.RawMessage)
// or an already decoded JSON value. nil (including a typed nil pointer) means no candidate.
func (b *Bootstrapper) Run(ctx context.Context, candidate any) Outcome {
	b.mu.Lock()
	if b.state != Uninitialized {
		b.mu.Unlock()
		return Skipped
	}
	b.state = Resolving
	b.mu.Unlock()

	b.store.SetLoading(true)

	outcome := Pending
	defer func() {
		b.store.SetLoading(false)
		b.store.MarkSynchronized()

		b.mu.Lock()
		b.state = Ready
		b.outcome = outcome
		close(b.done)
		b.mu.Unlock()
	}()

	outcome = b.resolve(ctx, candidate)
	b.logger.Debug("session resolved", "outcome", outcome, "authenticated", b.store.Snapshot().IsAuthenticated())
	return outcome
}

func (b *Bootstrapper) resolve(ctx context.Context, candidate any) Outcome {
	if present(candidate) {
		user, err := normalizeCandidate(candidate)
		if err != nil {
			b.logger.Debug("server candidate rejected", "error", err)
			b.store.Clear()
			return Cleared
		}
		b.store.SetUser(user)
		return FromCandidate
	}

	user, err := b.resolver.Me(ctx)
	if err == nil {
		b.store.SetUser(user)
		return Authenticated
	}
	if services.IsTransient(err) {
		return b.preserve("who-am-i", err)
	}
	b.logger.Debug("no session from who-am-i", "error", err)

	if _, err := b.resolver.Refresh(ctx); err != nil {
		if services.IsTransient(err) {
			return b.preserve("refresh", err)
		}
		b.logger.Debug("refresh rejected", "error", err)
		b.store.Clear()
		return Cleared
	}

	user, err = b.resolver.Me(ctx)
	if err == nil {
		b.store.SetUser(user)
		return Refreshed
	}
	if services.IsTransient(err) {
		return b.preserve("who-am-i after refresh", err)
	}
	b.logger.Debug("no session after refresh", "error", err)
	b.store.Clear()
	return Cleared
}

func (b *Bootstrapper) preserve(step string, err error) Outcome {
	b.logger.Warn("backend unreachable, keeping session", "step", step, "error", err)
	return Preserved
}

func present(candidate any) bool {
	switch c := candidate.(type) {
	case nil:
		return false
	case *models.UserProfile:
		return c != nil
	case []byte:
		return len(c) > 0
	case json.RawMessage:
		return len(c) > 0
	}
	return true
}

func normalizeCandidate(candidate any) (*models.UserProfile, error) {
	switch c := candidate.(type) {
	case *models.UserProfile:
		if c.ID == "" {
			return nil, models.ErrInvalidProfile
		}
		return c, nil
	case []byte:
		return models.NormalizeUser(c)
	case json.RawMessage:
		return models.NormalizeUser(c)
	}
	return models.NormalizeUserValue(candidate)
}

// IsAuthenticated reports whether the store currently holds a user.
func (b *Bootstrapper) IsAuthenticated() bool {
	return b.store.Snapshot().IsAuthenticated()
}
