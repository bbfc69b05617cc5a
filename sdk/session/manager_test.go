package session

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/greenorbit/phaseout/sdk/authx"
	"github.com/greenorbit/phaseout/sdk/identity"
	"github.com/greenorbit/phaseout/sdk/meta"
)

const (
	testUserID   = "3e8c9f5a-7d31-4a1b-9c6e-2f0d8b4a5c17"
	testEmail    = "greta@coalfreefuture.org"
	testName     = "Greta"
	testPassword = "opensesame"
)

type fakeGateway struct {
	SessionFn func(context.Context) (*identity.GatewaySession, error)
	SignInFn  func(
		context.Context,
		string,
		string,
	) (*identity.GatewaySession, error)
	SignOutFn    func(context.Context) error
	InvalidateFn func(context.Context) error

	mu              sync.Mutex
	signOutCalls    int
	invalidateCalls int
	token           *oauth2.Token
}

func (f *fakeGateway) Session(
	ctx context.Context,
) (*identity.GatewaySession, error) {
	if f.SessionFn != nil {
		return f.SessionFn(ctx)
	}
	return nil, nil
}

func (f *fakeGateway) SignIn(
	ctx context.Context,
	email string,
	secret string,
) (*identity.GatewaySession, error) {
	if f.SignInFn != nil {
		return f.SignInFn(ctx, email, secret)
	}
	return nil, &identity.ErrInvalidCredentials{Reason: "no sign-in behavior"}
}

func (f *fakeGateway) SignOut(ctx context.Context) error {
	f.mu.Lock()
	f.signOutCalls++
	f.mu.Unlock()
	if f.SignOutFn != nil {
		return f.SignOutFn(ctx)
	}
	return nil
}

func (f *fakeGateway) Invalidate(ctx context.Context) error {
	f.mu.Lock()
	f.invalidateCalls++
	f.mu.Unlock()
	if f.InvalidateFn != nil {
		return f.InvalidateFn(ctx)
	}
	return nil
}

func (f *fakeGateway) Token() *oauth2.Token {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func (f *fakeGateway) SetToken(token *oauth2.Token) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

func (f *fakeGateway) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOutCalls, f.invalidateCalls
}

type fakeProfiles struct {
	GetFn func(context.Context, string) (authx.Profile, error)
}

func (f *fakeProfiles) Get(
	ctx context.Context,
	id string,
) (authx.Profile, error) {
	if f.GetFn != nil {
		return f.GetFn(ctx, id)
	}
	return authx.Profile{}, &meta.ErrNotFound{Type: "Profile", ID: id}
}

func testGatewaySession() *identity.GatewaySession {
	return &identity.GatewaySession{
		UserID:      testUserID,
		Email:       testEmail,
		Name:        testName,
		AccessToken: "opaque-access-token",
		Expires:     time.Now().Add(time.Hour),
	}
}

func testProfile(role authx.Role) authx.Profile {
	return authx.Profile{
		ObjectMeta: meta.ObjectMeta{ID: testUserID},
		Name:       testName,
		Email:      testEmail,
		Role:       role,
		Verified:   true,
	}
}

func verifiedProfileGetter(role authx.Role) *fakeProfiles {
	return &fakeProfiles{
		GetFn: func(_ context.Context, id string) (authx.Profile, error) {
			return testProfile(role), nil
		},
	}
}

func TestManagerInitializeWithNoSession(t *testing.T) {
	gateway := &fakeGateway{}
	manager := NewManager(gateway, &fakeProfiles{}, nil, nil)
	require.Equal(t, StateInitial, manager.State())
	result := manager.Initialize(context.Background())
	require.False(t, result.Success)
	require.Empty(t, result.Message)
	require.Equal(t, StateUnauthenticated, manager.State())
	require.False(t, manager.ExpiryNotice())
	// Initialize is once only
	result = manager.Initialize(context.Background())
	require.False(t, result.Success)
	require.Equal(t, StateUnauthenticated, manager.State())
}

func TestManagerLogin(t *testing.T) {
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			email string,
			secret string,
		) (*identity.GatewaySession, error) {
			require.Equal(t, testEmail, email)
			require.Equal(t, testPassword, secret)
			return testGatewaySession(), nil
		},
	}
	manager :=
		NewManager(gateway, verifiedProfileGetter(authx.RoleUser), nil, nil)
	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.True(t, result.Success)
	require.Equal(t, "/dashboard", result.RedirectTo)
	require.Equal(t, StateAuthenticated, manager.State())
	require.True(t, manager.IsAuthenticated())
	session := manager.Current()
	require.NotNil(t, session)
	require.Equal(t, testUserID, session.UserID)
	require.Equal(t, testEmail, session.Email)
	require.Equal(t, authx.RoleUser, session.Role)
	require.True(t, session.Verified)
}

func TestManagerLoginRedirects(t *testing.T) {
	testCases := []struct {
		name               string
		role               authx.Role
		opts               *LoginOptions
		expectedRedirectTo string
	}{
		{
			name:               "user lands on the dashboard",
			role:               authx.RoleUser,
			expectedRedirectTo: "/dashboard",
		},
		{
			name:               "admin lands on the admin console",
			role:               authx.RoleAdmin,
			expectedRedirectTo: "/admin",
		},
		{
			name:               "return-to overrides the landing path",
			role:               authx.RoleAdmin,
			opts:               &LoginOptions{ReturnTo: "/countries/DEU"},
			expectedRedirectTo: "/countries/DEU",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			gateway := &fakeGateway{
				SignInFn: func(
					_ context.Context,
					_ string,
					_ string,
				) (*identity.GatewaySession, error) {
					return testGatewaySession(), nil
				},
			}
			manager :=
				NewManager(gateway, verifiedProfileGetter(testCase.role), nil, nil)
			result := manager.Login(
				context.Background(),
				testEmail,
				testPassword,
				testCase.opts,
			)
			require.True(t, result.Success)
			require.Equal(t, testCase.expectedRedirectTo, result.RedirectTo)
		})
	}
}

func TestManagerLoginWithInvalidCredentials(t *testing.T) {
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			_ string,
			_ string,
		) (*identity.GatewaySession, error) {
			return nil, &identity.ErrInvalidCredentials{
				Reason: "Invalid login credentials",
			}
		},
	}
	manager := NewManager(gateway, &fakeProfiles{}, nil, nil)
	manager.Initialize(context.Background())
	require.Equal(t, StateUnauthenticated, manager.State())
	result :=
		manager.Login(context.Background(), testEmail, "wrong password", nil)
	require.False(t, result.Success)
	require.Contains(t, result.Message, "Invalid login credentials")
	// A rejection restores the pre-login state
	require.Equal(t, StateUnauthenticated, manager.State())
	require.Nil(t, manager.Current())
}

func TestManagerLoginWithMissingProfile(t *testing.T) {
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			_ string,
			_ string,
		) (*identity.GatewaySession, error) {
			return testGatewaySession(), nil
		},
	}
	manager := NewManager(gateway, &fakeProfiles{}, nil, nil)
	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.False(t, result.Success)
	require.Contains(t, result.Message, "Account data not found")
	require.Equal(t, StateUnauthenticated, manager.State())
	_, invalidateCalls := gateway.counts()
	require.Equal(t, 1, invalidateCalls)
	require.Nil(t, gateway.Token())
}

func TestManagerLoginWithUnverifiedProfile(t *testing.T) {
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			_ string,
			_ string,
		) (*identity.GatewaySession, error) {
			return testGatewaySession(), nil
		},
	}
	profiles := &fakeProfiles{
		GetFn: func(_ context.Context, id string) (authx.Profile, error) {
			profile := testProfile(authx.RoleUser)
			profile.Verified = false
			return profile, nil
		},
	}
	manager := NewManager(gateway, profiles, nil, nil)
	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.False(t, result.Success)
	require.Contains(t, result.Message, "pending approval")
	require.Equal(t, StateUnauthenticated, manager.State())
	_, invalidateCalls := gateway.counts()
	require.Equal(t, 1, invalidateCalls)
}

func TestManagerLoginWithLockedProfile(t *testing.T) {
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			_ string,
			_ string,
		) (*identity.GatewaySession, error) {
			return testGatewaySession(), nil
		},
	}
	profiles := &fakeProfiles{
		GetFn: func(_ context.Context, id string) (authx.Profile, error) {
			profile := testProfile(authx.RoleUser)
			now := time.Now()
			profile.Locked = &now
			return profile, nil
		},
	}
	manager := NewManager(gateway, profiles, nil, nil)
	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.False(t, result.Success)
	require.Contains(t, result.Message, "locked")
	require.Equal(t, StateUnauthenticated, manager.State())
	_, invalidateCalls := gateway.counts()
	require.Equal(t, 1, invalidateCalls)
}

func TestManagerConcurrentChecksAreDropped(t *testing.T) {
	release := make(chan struct{})
	gateway := &fakeGateway{
		SessionFn: func(
			_ context.Context,
		) (*identity.GatewaySession, error) {
			<-release
			return nil, nil
		},
	}
	manager := NewManager(gateway, &fakeProfiles{}, nil, nil)
	states, unsubscribe := manager.Subscribe()
	defer unsubscribe()

	firstDone := make(chan Result)
	go func() {
		firstDone <- manager.RefreshSession(context.Background())
	}()
	require.Equal(t, StateChecking, <-states)

	// A second check while one is in flight is dropped, not queued
	result := manager.RefreshSession(context.Background())
	require.False(t, result.Success)
	require.Contains(t, result.Message, "already in progress")

	close(release)
	result = <-firstDone
	require.False(t, result.Success)
	require.Equal(t, StateUnauthenticated, manager.State())
}

func TestManagerCheckTimesOutAndRecovers(t *testing.T) {
	mirrorPath := filepath.Join(t.TempDir(), "mirror.db")
	mirror, err := OpenMirror(mirrorPath, 0)
	require.NoError(t, err)
	defer mirror.Close()

	healthy := true
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			_ string,
			_ string,
		) (*identity.GatewaySession, error) {
			return testGatewaySession(), nil
		},
		SessionFn: func(
			ctx context.Context,
		) (*identity.GatewaySession, error) {
			if healthy {
				return testGatewaySession(), nil
			}
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	manager := NewManager(
		gateway,
		verifiedProfileGetter(authx.RoleUser),
		mirror,
		&ManagerOptions{OperationTimeout: 10 * time.Millisecond},
	)
	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.True(t, result.Success)

	healthy = false
	result = manager.RefreshSession(context.Background())
	require.False(t, result.Success)
	require.Contains(t, result.Message, "try again")
	require.Equal(t, StateError, manager.State())
	// A session the check could not confirm does not linger, locally or in
	// the mirror
	require.Nil(t, manager.Current())
	active, err := mirror.Active()
	require.NoError(t, err)
	require.False(t, active)

	// The error state is recoverable
	healthy = true
	result = manager.RefreshSession(context.Background())
	require.True(t, result.Success)
	require.Equal(t, StateAuthenticated, manager.State())
	require.NotNil(t, manager.Current())
}

func TestManagerLoginLogoutLoginRoundTrip(t *testing.T) {
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			email string,
			secret string,
		) (*identity.GatewaySession, error) {
			require.Equal(t, testEmail, email)
			require.Equal(t, testPassword, secret)
			return testGatewaySession(), nil
		},
	}
	manager :=
		NewManager(gateway, verifiedProfileGetter(authx.RoleUser), nil, nil)

	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.True(t, result.Success)
	first := manager.Current()
	require.NotNil(t, first)

	result = manager.Logout(context.Background())
	require.True(t, result.Success)
	require.Equal(t, StateUnauthenticated, manager.State())
	require.Nil(t, manager.Current())

	// The same credentials establish an equivalent session
	result =
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.True(t, result.Success)
	require.Equal(t, StateAuthenticated, manager.State())
	second := manager.Current()
	require.NotNil(t, second)
	require.Equal(t, first.UserID, second.UserID)
	require.Equal(t, first.Email, second.Email)
	require.Equal(t, first.Role, second.Role)
}

func TestManagerLogoutClearsStateBeforeGatewaySignOut(t *testing.T) {
	var manager *Manager
	var stateAtSignOut AuthState
	var authenticatedAtSignOut bool
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			_ string,
			_ string,
		) (*identity.GatewaySession, error) {
			return testGatewaySession(), nil
		},
	}
	gateway.SignOutFn = func(_ context.Context) error {
		stateAtSignOut = manager.State()
		authenticatedAtSignOut = manager.IsAuthenticated()
		return nil
	}
	manager =
		NewManager(gateway, verifiedProfileGetter(authx.RoleUser), nil, nil)
	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.True(t, result.Success)

	result = manager.Logout(context.Background())
	require.True(t, result.Success)
	require.Equal(t, "/login", result.RedirectTo)
	// Local state was already gone when the gateway was contacted
	require.Equal(t, StateLoggingOut, stateAtSignOut)
	require.False(t, authenticatedAtSignOut)
	require.Equal(t, StateUnauthenticated, manager.State())
	require.Nil(t, manager.Current())
	require.Nil(t, gateway.Token())
	signOutCalls, _ := gateway.counts()
	require.Equal(t, 1, signOutCalls)
}

func TestManagerLogoutSucceedsWhenGatewayIsUnreachable(t *testing.T) {
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			_ string,
			_ string,
		) (*identity.GatewaySession, error) {
			return testGatewaySession(), nil
		},
		SignOutFn: func(_ context.Context) error {
			return context.DeadlineExceeded
		},
	}
	manager := NewManager(
		gateway,
		verifiedProfileGetter(authx.RoleUser),
		nil,
		&ManagerOptions{OperationTimeout: 50 * time.Millisecond},
	)
	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.True(t, result.Success)

	result = manager.Logout(context.Background())
	// Logout never fails locally
	require.True(t, result.Success)
	require.Contains(t, result.Message, "signed out locally")
	require.Equal(t, StateUnauthenticated, manager.State())
	require.Nil(t, gateway.Token())
	signOutCalls, _ := gateway.counts()
	require.GreaterOrEqual(t, signOutCalls, 1)
}

func TestManagerLogoutSupersedesInFlightCheck(t *testing.T) {
	release := make(chan struct{})
	gateway := &fakeGateway{
		SessionFn: func(
			_ context.Context,
		) (*identity.GatewaySession, error) {
			<-release
			return testGatewaySession(), nil
		},
	}
	manager :=
		NewManager(gateway, verifiedProfileGetter(authx.RoleUser), nil, nil)
	states, unsubscribe := manager.Subscribe()
	defer unsubscribe()

	checkDone := make(chan Result)
	go func() {
		checkDone <- manager.RefreshSession(context.Background())
	}()
	require.Equal(t, StateChecking, <-states)

	logoutResult := manager.Logout(context.Background())
	require.True(t, logoutResult.Success)
	require.Equal(t, StateUnauthenticated, manager.State())

	// The check completes with a live gateway session, but its result is stale
	// and must not resurrect the session
	close(release)
	checkResult := <-checkDone
	require.False(t, checkResult.Success)
	require.Equal(t, StateUnauthenticated, manager.State())
	require.Nil(t, manager.Current())
}

func TestManagerExpiryNotice(t *testing.T) {
	mirrorPath := filepath.Join(t.TempDir(), "mirror.db")
	mirror, err := OpenMirror(mirrorPath, 0)
	require.NoError(t, err)
	defer mirror.Close()
	// A previous run believed a session was active
	require.NoError(t, mirror.MarkActive())

	gateway := &fakeGateway{} // reports no session
	manager := NewManager(gateway, &fakeProfiles{}, mirror, nil)
	result := manager.Initialize(context.Background())
	require.False(t, result.Success)
	require.Contains(t, result.Message, "expired")
	require.Equal(t, "/login", result.RedirectTo)
	require.Equal(t, StateUnauthenticated, manager.State())
	require.True(t, manager.ExpiryNotice())

	// The notice is shown once
	manager.ClearExpiryNotice()
	require.False(t, manager.ExpiryNotice())

	// The disagreement also cleared the mirror
	active, err := mirror.Active()
	require.NoError(t, err)
	require.False(t, active)
}

func TestManagerMirrorFollowsSession(t *testing.T) {
	mirrorPath := filepath.Join(t.TempDir(), "mirror.db")
	mirror, err := OpenMirror(mirrorPath, 0)
	require.NoError(t, err)
	defer mirror.Close()

	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			_ string,
			_ string,
		) (*identity.GatewaySession, error) {
			return testGatewaySession(), nil
		},
	}
	manager :=
		NewManager(gateway, verifiedProfileGetter(authx.RoleUser), mirror, nil)
	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.True(t, result.Success)
	active, err := mirror.Active()
	require.NoError(t, err)
	require.True(t, active)

	result = manager.Logout(context.Background())
	require.True(t, result.Success)
	active, err = mirror.Active()
	require.NoError(t, err)
	require.False(t, active)
}

func TestManagerSubscribe(t *testing.T) {
	gateway := &fakeGateway{
		SignInFn: func(
			_ context.Context,
			_ string,
			_ string,
		) (*identity.GatewaySession, error) {
			return testGatewaySession(), nil
		},
	}
	manager :=
		NewManager(gateway, verifiedProfileGetter(authx.RoleUser), nil, nil)
	states, unsubscribe := manager.Subscribe()

	result :=
		manager.Login(context.Background(), testEmail, testPassword, nil)
	require.True(t, result.Success)
	require.Equal(t, StateChecking, <-states)
	require.Equal(t, StateAuthenticated, <-states)

	unsubscribe()
	manager.Logout(context.Background())
	select {
	case state, ok := <-states:
		require.False(t, ok, "received %s after unsubscribing", state)
	default:
	}
}
