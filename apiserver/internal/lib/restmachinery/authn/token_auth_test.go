package authn

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	goOidc "github.com/coreos/go-oidc"
	"github.com/stretchr/testify/require"

	"github.com/greenorbit/phaseout/apiserver/internal/authx"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/crypto"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

const (
	testIngestToken = "foooooooooooooooooooo"
	testSubjectID   = "3e8c9f5a-7d31-4a1b-9c6e-2f0d8b4a5c17"
)

type fakeTokenVerifier struct {
	VerifyFn func(
		ctx context.Context,
		rawToken string,
	) (*goOidc.IDToken, error)
}

func (f *fakeTokenVerifier) Verify(
	ctx context.Context,
	rawToken string,
) (*goOidc.IDToken, error) {
	return f.VerifyFn(ctx, rawToken)
}

func rejectAllVerifier() *fakeTokenVerifier {
	return &fakeTokenVerifier{
		VerifyFn: func(
			_ context.Context,
			_ string,
		) (*goOidc.IDToken, error) {
			return nil, fmt.Errorf("token is malformed")
		},
	}
}

func acceptAllVerifier() *fakeTokenVerifier {
	return &fakeTokenVerifier{
		VerifyFn: func(
			_ context.Context,
			_ string,
		) (*goOidc.IDToken, error) {
			return &goOidc.IDToken{
				Subject: testSubjectID,
				Expiry:  time.Now().Add(time.Hour),
			}, nil
		},
	}
}

func TestTokenAuthFilterWithHeaderMissing(t *testing.T) {
	a := NewTokenAuthFilter(
		rejectAllVerifier(),
		nil,
		crypto.ShortSHA("", testIngestToken),
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	rr := httptest.NewRecorder()
	handlerCalled := false
	a.Decorate(func(http.ResponseWriter, *http.Request) {
		handlerCalled = true
	})(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, handlerCalled)
}

func TestTokenAuthFilterWithHeaderNotBearer(t *testing.T) {
	a := NewTokenAuthFilter(
		rejectAllVerifier(),
		nil,
		crypto.ShortSHA("", testIngestToken),
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.Header.Add("Authorization", "Digest foo")
	rr := httptest.NewRecorder()
	handlerCalled := false
	a.Decorate(func(http.ResponseWriter, *http.Request) {
		handlerCalled = true
	})(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, handlerCalled)
}

func TestTokenAuthFilterWithTokenInvalid(t *testing.T) {
	a := NewTokenAuthFilter(
		rejectAllVerifier(),
		nil,
		crypto.ShortSHA("", testIngestToken),
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.Header.Add("Authorization", "Bearer foo")
	rr := httptest.NewRecorder()
	handlerCalled := false
	a.Decorate(func(http.ResponseWriter, *http.Request) {
		handlerCalled = true
	})(rr, req)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.False(t, handlerCalled)
}

func TestTokenAuthFilterWithIngestToken(t *testing.T) {
	a := NewTokenAuthFilter(
		rejectAllVerifier(),
		nil,
		crypto.ShortSHA("", testIngestToken),
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.Header.Add(
		"Authorization",
		fmt.Sprintf("Bearer %s", testIngestToken),
	)
	rr := httptest.NewRecorder()
	var handlerCalled bool
	a.Decorate(func(_ http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		principal := authx.PrincipalFromContext(r.Context())
		require.IsType(t, &authx.Ingester{}, principal)
	})(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, handlerCalled)
}

func TestTokenAuthFilterWithVerifiedProfile(t *testing.T) {
	a := NewTokenAuthFilter(
		acceptAllVerifier(),
		func(_ context.Context, id string) (authx.Profile, error) {
			return authx.Profile{
				ObjectMeta: meta.ObjectMeta{ID: id},
				Role:       authx.RoleUser,
				Verified:   true,
			}, nil
		},
		crypto.ShortSHA("", testIngestToken),
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.Header.Add("Authorization", "Bearer gateway-issued")
	rr := httptest.NewRecorder()
	var handlerCalled bool
	a.Decorate(func(_ http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		subject, ok :=
			authx.PrincipalFromContext(r.Context()).(*authx.Subject)
		require.True(t, ok)
		require.Equal(t, testSubjectID, subject.ID)
		require.NotNil(t, subject.Profile)
		require.True(t, subject.Profile.Verified)
	})(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, handlerCalled)
}

func TestTokenAuthFilterWithMissingProfile(t *testing.T) {
	a := NewTokenAuthFilter(
		acceptAllVerifier(),
		func(_ context.Context, id string) (authx.Profile, error) {
			return authx.Profile{}, &meta.ErrNotFound{Type: "Profile", ID: id}
		},
		crypto.ShortSHA("", testIngestToken),
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.Header.Add("Authorization", "Bearer gateway-issued")
	rr := httptest.NewRecorder()
	var handlerCalled bool
	a.Decorate(func(_ http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		subject, ok :=
			authx.PrincipalFromContext(r.Context()).(*authx.Subject)
		require.True(t, ok)
		require.Equal(t, testSubjectID, subject.ID)
		// The subject proceeds, but without a profile
		require.Nil(t, subject.Profile)
	})(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, handlerCalled)
}

func TestTokenAuthFilterWithLockedProfile(t *testing.T) {
	now := time.Now()
	a := NewTokenAuthFilter(
		acceptAllVerifier(),
		func(_ context.Context, id string) (authx.Profile, error) {
			return authx.Profile{
				ObjectMeta: meta.ObjectMeta{ID: id},
				Verified:   true,
				Locked:     &now,
			}, nil
		},
		crypto.ShortSHA("", testIngestToken),
	)
	req, err := http.NewRequest(http.MethodGet, "/", nil)
	require.NoError(t, err)
	req.Header.Add("Authorization", "Bearer gateway-issued")
	rr := httptest.NewRecorder()
	handlerCalled := false
	a.Decorate(func(http.ResponseWriter, *http.Request) {
		handlerCalled = true
	})(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.False(t, handlerCalled)
}
