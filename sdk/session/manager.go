package session

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/greenorbit/phaseout/internal/retries"
	"github.com/greenorbit/phaseout/sdk/authx"
	"github.com/greenorbit/phaseout/sdk/identity"
	"github.com/greenorbit/phaseout/sdk/meta"
)

const (
	defaultOperationTimeout = 15 * time.Second
	defaultRefreshInterval  = 5 * time.Minute
	defaultAdminLandingPath = "/admin"
	defaultUserLandingPath  = "/dashboard"
	defaultSignInPath       = "/login"
)

// User-facing messages. Each names an outcome the user can act on; transport
// detail belongs in logs, not here.
const (
	msgCheckInProgress = "Another authentication operation is already in " +
		"progress."
	msgGatewayUnreachable = "Unable to verify your session. Please try again."
	msgSessionExpired     = "Your session has expired. Please sign in again."
	msgProfileMissing     = "Account data not found. Your account setup may " +
		"be incomplete."
	msgProfileUnavailable = "Unable to load your account data. Please try " +
		"again."
	msgAccountLocked = "Your account has been locked. Please contact an " +
		"administrator."
	msgAccountUnverified = "Your account is pending approval by an " +
		"administrator."
	msgSignOutIncomplete = "You have been signed out locally, but the " +
		"identity gateway could not be reached."
)

// ProfileGetter is the narrow view of the profiles API the session manager
// requires. authx.ProfilesClient satisfies it.
type ProfileGetter interface {
	Get(context.Context, string) (authx.Profile, error)
}

// Session is the authenticated user's identity as established by a completed
// check: the gateway's answer merged with the user's profile record.
type Session struct {
	// UserID is the gateway's immutable identifier for the user.
	UserID string
	// Name is the user's display name, per their profile.
	Name string
	// Email is the user's email address.
	Email string
	// Role is the user's authoritative role, per their profile.
	Role authx.Role
	// Verified indicates the user's profile has been approved by an
	// administrator. It is always true on a Session the manager exposes; an
	// unverified user never reaches the authenticated state.
	Verified bool
	// Created indicates when the user's profile was created.
	Created *time.Time
}

// LoginOptions represents useful, optional settings for a Login operation.
type LoginOptions struct {
	// CheckOnly, if true, validates any existing gateway session instead of
	// presenting credentials. Email and password arguments are ignored.
	CheckOnly bool
	// ReturnTo optionally specifies where the caller should navigate after a
	// successful login, overriding the role-based landing path.
	ReturnTo string
}

// Result conveys the outcome of a session operation to the caller in terms
// suitable for direct presentation.
type Result struct {
	// Success indicates whether the operation left the manager authenticated.
	Success bool
	// Message is a user-facing explanation of the outcome, when one is
	// warranted.
	Message string
	// RedirectTo indicates where the caller should navigate next, when the
	// operation implies navigation.
	RedirectTo string
}

// ManagerOptions represents useful, optional settings for a session Manager.
type ManagerOptions struct {
	// OperationTimeout bounds every gateway and profile round trip a single
	// operation performs. The default is 15 seconds.
	OperationTimeout time.Duration
	// RefreshInterval is the period of the background re-validation loop. The
	// default is five minutes.
	RefreshInterval time.Duration
	// AdminLandingPath is where administrators land after login. The default is
	// "/admin".
	AdminLandingPath string
	// UserLandingPath is where ordinary users land after login. The default is
	// "/dashboard".
	UserLandingPath string
	// Logger, if specified, receives the manager's diagnostic output.
	Logger *zap.Logger
}

// Manager owns all client-side session state and is the only component
// permitted to transition it. Every authentication-affecting operation funnels
// through the Manager; consumers observe state through its accessors and
// Subscribe and never mutate it directly.
type Manager struct {
	gateway          identity.Gateway
	profiles         ProfileGetter
	mirror           *Mirror
	logger           *zap.Logger
	operationTimeout time.Duration
	refreshInterval  time.Duration
	adminLandingPath string
	userLandingPath  string

	mu      sync.Mutex
	state   AuthState
	session *Session
	// gen increments whenever session state is invalidated. An in-flight
	// check resolves only if gen is unchanged since the check began, so a
	// logout or a newer check can never be overwritten by a stale result.
	gen          uint64
	initialized  bool
	expiryNotice bool
	subscribers  map[uint64]chan AuthState
	nextSubID    uint64
}

// NewManager returns a session Manager backed by the specified gateway client
// and profile getter. The mirror is optional; a nil mirror simply disables
// local session mirroring.
func NewManager(
	gateway identity.Gateway,
	profiles ProfileGetter,
	mirror *Mirror,
	opts *ManagerOptions,
) *Manager {
	if opts == nil {
		opts = &ManagerOptions{}
	}
	if opts.OperationTimeout == 0 {
		opts.OperationTimeout = defaultOperationTimeout
	}
	if opts.RefreshInterval == 0 {
		opts.RefreshInterval = defaultRefreshInterval
	}
	if opts.AdminLandingPath == "" {
		opts.AdminLandingPath = defaultAdminLandingPath
	}
	if opts.UserLandingPath == "" {
		opts.UserLandingPath = defaultUserLandingPath
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{
		gateway:          gateway,
		profiles:         profiles,
		mirror:           mirror,
		logger:           opts.Logger.Named("session"),
		operationTimeout: opts.OperationTimeout,
		refreshInterval:  opts.RefreshInterval,
		adminLandingPath: opts.AdminLandingPath,
		userLandingPath:  opts.UserLandingPath,
		state:            StateInitial,
		subscribers:      map[uint64]chan AuthState{},
	}
}

// State returns the manager's current state.
func (m *Manager) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Current returns a copy of the current session, or nil if none exists.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	session := *m.session
	return &session
}

// IsAuthenticated indicates whether a session is currently established.
func (m *Manager) IsAuthenticated() bool {
	return m.State() == StateAuthenticated
}

// ExpiryNotice indicates whether an established (or mirrored) session was
// found to have expired and the user has not yet been told.
func (m *Manager) ExpiryNotice() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expiryNotice
}

// ClearExpiryNotice acknowledges the expiry notice. Callers invoke this after
// surfacing the notice so it is shown exactly once per expiry.
func (m *Manager) ClearExpiryNotice() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiryNotice = false
}

// Subscribe registers for state change notifications. Every transition is
// delivered to the returned channel. The channel is buffered; a subscriber
// that falls far enough behind misses intermediate states, but always receives
// a later notification it can reconcile from with State. The returned function
// cancels the subscription.
func (m *Manager) Subscribe() (<-chan AuthState, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSubID
	m.nextSubID++
	ch := make(chan AuthState, 8)
	m.subscribers[id] = ch
	return ch, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subscribers, id)
	}
}

// Initialize establishes the manager's real state at startup: it consults the
// local mirror, then validates any existing gateway session. It is invoked
// once; subsequent invocations are no-ops.
func (m *Manager) Initialize(ctx context.Context) Result {
	m.mu.Lock()
	if m.initialized {
		state := m.state
		m.mu.Unlock()
		return Result{Success: state == StateAuthenticated}
	}
	m.initialized = true
	m.mu.Unlock()
	return m.check(ctx, true)
}

// Login authenticates with the specified credentials, or, with
// LoginOptions.CheckOnly, validates any existing gateway session instead. A
// check that is already in flight causes the new one to be dropped rather
// than queued.
func (m *Manager) Login(
	ctx context.Context,
	email string,
	password string,
	opts *LoginOptions,
) Result {
	if opts == nil {
		opts = &LoginOptions{}
	}
	if opts.CheckOnly {
		return m.check(ctx, false)
	}

	gen, prevState, prevSession, ok := m.beginCheck()
	if !ok {
		return Result{Message: msgCheckInProgress}
	}
	ctx, cancel := context.WithTimeout(ctx, m.operationTimeout)
	defer cancel()

	gwSession, err := m.gateway.SignIn(ctx, email, password)
	if err != nil {
		if credsErr, isCredsErr :=
			errors.Cause(err).(*identity.ErrInvalidCredentials); isCredsErr {
			// A rejection is a verdict, not a failure. The pre-login state still
			// holds.
			m.resolve(gen, prevState, prevSession)
			return Result{Message: credsErr.Reason}
		}
		m.logger.Warn("sign-in failed", zap.Error(err))
		m.failCheck(gen)
		return Result{Message: msgGatewayUnreachable}
	}

	return m.admit(ctx, gen, gwSession, opts.ReturnTo)
}

// RefreshSession re-validates the current session against the gateway.
func (m *Manager) RefreshSession(ctx context.Context) Result {
	return m.check(ctx, false)
}

// RunRefreshLoop periodically re-validates the session until the specified
// context is canceled. While the manager is unauthenticated the loop idles; it
// does retry out of the error state, since that state is transient by
// definition.
func (m *Manager) RunRefreshLoop(ctx context.Context) {
	ticker := time.NewTicker(m.refreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			state := m.State()
			if state != StateAuthenticated && state != StateError {
				continue
			}
			result := m.RefreshSession(ctx)
			if !result.Success {
				m.logger.Debug(
					"background refresh did not confirm a session",
					zap.String("message", result.Message),
				)
			}
		case <-ctx.Done():
			return
		}
	}
}

// Logout ends the session. Local state is cleared synchronously and
// unconditionally before any network activity, so the caller observes an
// unauthenticated manager the moment Logout returns-- and in-flight checks
// from before the logout can no longer resurrect the session. Gateway
// sign-out happens afterward, with a retry; its failure is reported but never
// resurrects local state.
func (m *Manager) Logout(ctx context.Context) Result {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.session = nil
	m.setStateLocked(StateLoggingOut)
	m.mu.Unlock()

	if m.mirror != nil {
		if err := m.mirror.Clear(); err != nil {
			m.logger.Warn("error clearing session mirror", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, m.operationTimeout)
	defer cancel()
	err := retries.ManageRetries(
		ctx,
		"sign out of gateway",
		2,
		2*time.Second,
		func() (bool, error) {
			if signOutErr := m.gateway.SignOut(ctx); signOutErr != nil {
				return true, signOutErr
			}
			return false, nil
		},
	)
	// Whatever the gateway said, the token must not outlive the logout.
	m.gateway.SetToken(nil)

	m.resolve(gen, StateUnauthenticated, nil)
	if err != nil {
		m.logger.Warn("error signing out of gateway", zap.Error(err))
		return Result{
			Success:    true,
			Message:    msgSignOutIncomplete,
			RedirectTo: defaultSignInPath,
		}
	}
	return Result{Success: true, RedirectTo: defaultSignInPath}
}

// check validates any existing gateway session and resolves the manager's
// state accordingly.
func (m *Manager) check(ctx context.Context, consultMirror bool) Result {
	gen, prevState, _, ok := m.beginCheck()
	if !ok {
		return Result{Message: msgCheckInProgress}
	}

	// The mirror is advisory: it never establishes a session, but it tells us
	// whether finding none would be surprising.
	expected := prevState == StateAuthenticated
	if consultMirror && m.mirror != nil {
		mirrorActive, err := m.mirror.Active()
		if err != nil {
			m.logger.Warn("error reading session mirror", zap.Error(err))
		} else if mirrorActive {
			expected = true
		}
	}

	ctx, cancel := context.WithTimeout(ctx, m.operationTimeout)
	defer cancel()

	gwSession, err := m.gateway.Session(ctx)
	if err != nil {
		m.logger.Warn("error checking gateway session", zap.Error(err))
		m.failCheck(gen)
		return Result{Message: msgGatewayUnreachable}
	}
	if gwSession == nil {
		if m.mirror != nil {
			if err = m.mirror.Clear(); err != nil {
				m.logger.Warn("error clearing session mirror", zap.Error(err))
			}
		}
		m.resolve(gen, StateUnauthenticated, nil)
		if expected {
			m.noteExpiry()
			return Result{Message: msgSessionExpired, RedirectTo: defaultSignInPath}
		}
		return Result{}
	}

	return m.admit(ctx, gen, gwSession, "")
}

// admit takes a live gateway session the rest of the way to the authenticated
// state: it loads the user's profile, enforces verification and lock status,
// and resolves. A gateway session whose owner fails those checks is
// invalidated server-side so it cannot be replayed.
func (m *Manager) admit(
	ctx context.Context,
	gen uint64,
	gwSession *identity.GatewaySession,
	returnTo string,
) Result {
	profile, err := m.profiles.Get(ctx, gwSession.UserID)
	if err != nil {
		switch errors.Cause(err).(type) {
		case *meta.ErrNotFound:
			m.logger.Warn(
				"authenticated user has no profile record",
				zap.String("userID", gwSession.UserID),
			)
			m.reject(ctx, gen)
			return Result{Message: msgProfileMissing}
		case *meta.ErrAuthorization:
			// The API server refuses locked accounts outright.
			m.reject(ctx, gen)
			return Result{Message: msgAccountLocked}
		}
		m.logger.Warn(
			"error retrieving profile",
			zap.String("userID", gwSession.UserID),
			zap.Error(err),
		)
		m.failCheck(gen)
		return Result{Message: msgProfileUnavailable}
	}

	if profile.Locked != nil {
		m.reject(ctx, gen)
		return Result{Message: msgAccountLocked}
	}
	if !profile.Verified {
		m.reject(ctx, gen)
		return Result{Message: msgAccountUnverified}
	}

	session := &Session{
		UserID:   profile.ID,
		Name:     profile.Name,
		Email:    profile.Email,
		Role:     profile.Role,
		Verified: profile.Verified,
		Created:  profile.Created,
	}
	if session.Name == "" {
		session.Name = gwSession.Name
	}
	if session.Email == "" {
		session.Email = gwSession.Email
	}

	if !m.resolve(gen, StateAuthenticated, session) {
		// Superseded while in flight, most likely by a logout.
		return Result{Message: msgCheckInProgress}
	}

	// Mark the mirror only after the result was applied, so a superseded check
	// cannot leave a mirrored session behind.
	if m.mirror != nil {
		if err = m.mirror.MarkActive(); err != nil {
			m.logger.Warn("error updating session mirror", zap.Error(err))
		}
	}

	redirectTo := returnTo
	if redirectTo == "" {
		if session.Role == authx.RoleAdmin {
			redirectTo = m.adminLandingPath
		} else {
			redirectTo = m.userLandingPath
		}
	}
	return Result{Success: true, RedirectTo: redirectTo}
}

// failCheck resolves a check that could not reach a verdict. The error state
// never retains a session: an identity the check failed to confirm must not
// survive it, locally or in the mirror.
func (m *Manager) failCheck(gen uint64) {
	if m.mirror != nil {
		if err := m.mirror.Clear(); err != nil {
			m.logger.Warn("error clearing session mirror", zap.Error(err))
		}
	}
	m.resolve(gen, StateError, nil)
}

// reject destroys a gateway session the application has decided not to honor,
// then resolves to the unauthenticated state.
func (m *Manager) reject(ctx context.Context, gen uint64) {
	if err := m.gateway.Invalidate(ctx); err != nil {
		m.logger.Warn("error invalidating gateway session", zap.Error(err))
	}
	m.gateway.SetToken(nil)
	if m.mirror != nil {
		if err := m.mirror.Clear(); err != nil {
			m.logger.Warn("error clearing session mirror", zap.Error(err))
		}
	}
	m.resolve(gen, StateUnauthenticated, nil)
}

// beginCheck transitions to the checking state and returns a generation that
// the eventual resolve must present. It fails when a check or logout is
// already in flight; concurrent checks are dropped, never queued.
func (m *Manager) beginCheck() (uint64, AuthState, *Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateChecking || m.state == StateLoggingOut {
		return 0, m.state, nil, false
	}
	m.gen++
	prevState := m.state
	var prevSession *Session
	if m.session != nil {
		session := *m.session
		prevSession = &session
	}
	m.setStateLocked(StateChecking)
	return m.gen, prevState, prevSession, true
}

// resolve completes a check begun with beginCheck. It reports whether the
// result was applied; a result whose generation has been superseded is
// discarded.
func (m *Manager) resolve(gen uint64, state AuthState, session *Session) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		return false
	}
	m.session = session
	if state == StateAuthenticated {
		m.expiryNotice = false
	}
	m.setStateLocked(state)
	return true
}

func (m *Manager) noteExpiry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expiryNotice = true
}

// setStateLocked sets the state and notifies subscribers. Callers must hold
// m.mu.
func (m *Manager) setStateLocked(state AuthState) {
	if m.state == state {
		return
	}
	m.state = state
	for _, ch := range m.subscribers {
		select {
		case ch <- state:
		default:
			// The subscriber is not keeping up. It will reconcile from a later
			// notification.
		}
	}
}
