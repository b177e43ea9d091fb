// Package auth holds the authentication state machine and route guard that
// sit between the session store and the backend gateway.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/leaflens/leaflens/internal/gateway"
	"github.com/leaflens/leaflens/internal/models"
	"github.com/leaflens/leaflens/internal/session"
	"go.uber.org/zap"
)

// State is the controller's view of the current user.
type State int

const (
	// StateUnknown is the initial state before the first credential check.
	StateUnknown State = iota
	// StateChecking marks an echo-check or login in flight.
	StateChecking
	// StateAuthenticated means the backend accepted the stored credentials.
	StateAuthenticated
	// StateAnonymous means no valid session exists.
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	case StateAnonymous:
		return "anonymous"
	}
	return "unknown"
}

// Gateway is the slice of the backend client the controller needs.
type Gateway interface {
	Login(ctx context.Context, email, secret string) (models.Session, error)
}

// defaultProtectedRoutes mirror the pages that require a signed-in user.
var defaultProtectedRoutes = []string{"/dashboard", "/feedback", "/identify"}

// Controller drives the Unknown → Checking → {Authenticated, Anonymous}
// state machine and protects routes.
type Controller struct {
	mu              sync.Mutex
	state           State
	user            models.User
	serverAvailable bool
	redirectPath    string
	protected       []string

	store session.Store
	gw    Gateway
	log   *zap.Logger
}

// NewController wires the controller to a session store and gateway.
func NewController(store session.Store, gw Gateway, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		state:           StateUnknown,
		serverAvailable: true,
		protected:       defaultProtectedRoutes,
		store:           store,
		gw:              gw,
		log:             log,
	}
}

// State returns the current auth state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// User returns the authenticated user, if any.
func (c *Controller) User() (models.User, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.user, c.state == StateAuthenticated
}

// ServerAvailable reports whether the last credential check reached the
// backend. It does not affect the state machine; an unreachable server still
// resolves to Anonymous.
func (c *Controller) ServerAvailable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.serverAvailable
}

// Bootstrap echo-checks any stored credentials against the backend and
// resolves the initial Unknown state. Invalid stored credentials are
// discarded; an unreachable server keeps them for the next run.
func (c *Controller) Bootstrap(ctx context.Context) error {
	c.setState(StateChecking)

	sess, ok := c.store.Get()
	if !ok {
		c.resolve(StateAnonymous, models.User{}, true)
		return nil
	}

	fresh, err := c.gw.Login(ctx, sess.Email, sess.CredentialSecret)
	if err != nil {
		var authErr *gateway.AuthError
		if errors.As(err, &authErr) && authErr.Kind == gateway.AuthUnreachable {
			c.log.Warn("auth server unreachable, continuing anonymously", zap.Error(err))
			c.resolve(StateAnonymous, models.User{}, false)
			return err
		}
		c.log.Info("stored credentials rejected, clearing session", zap.String("email", sess.Email))
		_ = c.store.Clear()
		c.resolve(StateAnonymous, models.User{}, true)
		return err
	}

	if err := c.store.Set(fresh); err != nil {
		c.log.Warn("failed to refresh stored session", zap.Error(err))
	}
	c.resolve(StateAuthenticated, models.User{
		Username: fresh.Username,
		Email:    fresh.Email,
		IsAdmin:  fresh.IsAdmin,
	}, true)
	return nil
}

// Login validates inputs locally, authenticates against the backend, and
// persists the session on success.
func (c *Controller) Login(ctx context.Context, email, secret string) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	if err := ValidatePassword(secret); err != nil {
		return err
	}

	c.setState(StateChecking)

	sess, err := c.gw.Login(ctx, email, secret)
	if err != nil {
		var authErr *gateway.AuthError
		if errors.As(err, &authErr) && authErr.Kind == gateway.AuthUnreachable {
			c.resolve(StateAnonymous, models.User{}, false)
		} else {
			c.resolve(StateAnonymous, models.User{}, true)
		}
		return err
	}

	if err := c.store.Set(sess); err != nil {
		c.log.Warn("failed to persist session", zap.Error(err))
	}
	c.resolve(StateAuthenticated, models.User{
		Username: sess.Username,
		Email:    sess.Email,
		IsAdmin:  sess.IsAdmin,
	}, true)
	return nil
}

// Logout is a synchronous Authenticated → Anonymous transition. The backend
// keeps no session state, so no round-trip is needed.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateAnonymous
	c.user = models.User{}
	if err := c.store.Clear(); err != nil {
		c.log.Warn("failed to clear session store", zap.Error(err))
	}
}

// Session returns the stored session for authenticated requests.
func (c *Controller) Session() (models.Session, bool) {
	return c.store.Get()
}

// GuardRoute decides whether route may be entered in the current state. When
// an anonymous user hits a protected route the attempted path is remembered
// (first one wins) for a one-shot replay after the next successful login,
// and true is returned to signal a redirect to the login flow.
func (c *Controller) GuardRoute(route string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StateAnonymous || !c.isProtected(route) {
		return false
	}
	if c.redirectPath == "" {
		c.redirectPath = route
	}
	return true
}

// ConsumeRedirect returns the remembered post-login path and forgets it.
func (c *Controller) ConsumeRedirect() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.redirectPath == "" {
		return "", false
	}
	path := c.redirectPath
	c.redirectPath = ""
	return path, true
}

func (c *Controller) isProtected(route string) bool {
	for _, p := range c.protected {
		if route == p || strings.HasPrefix(route, p+"/") {
			return true
		}
	}
	return false
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

func (c *Controller) resolve(s State, u models.User, serverAvailable bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.user = u
	c.serverAvailable = serverAvailable
}
