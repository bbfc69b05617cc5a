package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

const (
	testUserID   = "3e8c9f5a-7d31-4a1b-9c6e-2f0d8b4a5c17"
	testEmail    = "greta@coalfreefuture.org"
	testName     = "Greta"
	testPassword = "opensesame"
	testClientID = "phaseout-dashboard"
)

type fakeGatewayServer struct {
	*httptest.Server
	accessToken  string
	signOutCalls int
	revokeCalls  int
}

func newFakeGatewayServer(t *testing.T) *fakeGatewayServer {
	f := &fakeGatewayServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		grantType := r.FormValue("grant_type")
		if grantType == "password" &&
			(r.FormValue("username") != testEmail ||
				r.FormValue("password") != testPassword) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(
				w,
				`{"error":"invalid_grant",`+
					`"error_description":"Invalid login credentials"}`,
			)
			return
		}
		f.accessToken = newSignedToken(t, time.Now().Add(time.Hour))
		w.Header().Set("Content-Type", "application/json")
		respBytes, err := json.Marshal(
			map[string]interface{}{
				"access_token":  f.accessToken,
				"token_type":    "bearer",
				"refresh_token": "refresh-opaque",
				"expires_in":    3600,
			},
		)
		require.NoError(t, err)
		w.Write(respBytes) // nolint: errcheck
	})
	mux.HandleFunc(
		"/oauth/userinfo",
		func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") !=
				fmt.Sprintf("Bearer %s", f.accessToken) || f.accessToken == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(
				w,
				`{"sub":%q,"email":%q,"name":%q}`,
				testUserID,
				testEmail,
				testName,
			)
		},
	)
	mux.HandleFunc(
		"/oauth/logout",
		func(w http.ResponseWriter, r *http.Request) {
			f.signOutCalls++
			f.accessToken = ""
			w.WriteHeader(http.StatusNoContent)
		},
	)
	mux.HandleFunc(
		"/oauth/revoke",
		func(w http.ResponseWriter, r *http.Request) {
			f.revokeCalls++
			f.accessToken = ""
			w.WriteHeader(http.StatusOK)
		},
	)
	f.Server = httptest.NewServer(mux)
	return f
}

func newSignedToken(t *testing.T, expires time.Time) string {
	token, err := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.MapClaims{
			"sub":   testUserID,
			"email": testEmail,
			"role":  "admin",
			"exp":   expires.Unix(),
		},
	).SignedString([]byte("test-signing-secret"))
	require.NoError(t, err)
	return token
}

func TestGatewaySignIn(t *testing.T) {
	server := newFakeGatewayServer(t)
	defer server.Close()
	gateway := NewGateway(server.URL, testClientID, false)
	session, err := gateway.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, testUserID, session.UserID)
	require.Equal(t, testEmail, session.Email)
	require.Equal(t, testName, session.Name)
	require.Equal(t, "admin", session.Role)
	require.NotNil(t, gateway.Token())
}

func TestGatewaySignInWithInvalidCredentials(t *testing.T) {
	server := newFakeGatewayServer(t)
	defer server.Close()
	gateway := NewGateway(server.URL, testClientID, false)
	session, err :=
		gateway.SignIn(context.Background(), testEmail, "wrong password")
	require.Nil(t, session)
	require.Error(t, err)
	credsErr, ok := err.(*ErrInvalidCredentials)
	require.True(t, ok)
	require.Contains(t, credsErr.Reason, "Invalid login credentials")
	require.Nil(t, gateway.Token())
}

func TestGatewaySessionWithNoToken(t *testing.T) {
	server := newFakeGatewayServer(t)
	defer server.Close()
	gateway := NewGateway(server.URL, testClientID, false)
	session, err := gateway.Session(context.Background())
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestGatewaySessionWithRejectedToken(t *testing.T) {
	server := newFakeGatewayServer(t)
	defer server.Close()
	gateway := NewGateway(server.URL, testClientID, false)
	// A token the gateway has never heard of
	gateway.SetToken(
		&oauth2.Token{
			AccessToken: newSignedToken(t, time.Now().Add(time.Hour)),
			Expiry:      time.Now().Add(time.Hour),
		},
	)
	session, err := gateway.Session(context.Background())
	require.NoError(t, err)
	require.Nil(t, session)
	require.Nil(t, gateway.Token())
}

func TestGatewaySignOut(t *testing.T) {
	server := newFakeGatewayServer(t)
	defer server.Close()
	gateway := NewGateway(server.URL, testClientID, false)
	_, err := gateway.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NoError(t, gateway.SignOut(context.Background()))
	require.Equal(t, 1, server.signOutCalls)
	require.Nil(t, gateway.Token())
	session, err := gateway.Session(context.Background())
	require.NoError(t, err)
	require.Nil(t, session)
}

func TestGatewayInvalidate(t *testing.T) {
	server := newFakeGatewayServer(t)
	defer server.Close()
	gateway := NewGateway(server.URL, testClientID, false)
	_, err := gateway.SignIn(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NoError(t, gateway.Invalidate(context.Background()))
	require.Equal(t, 1, server.revokeCalls)
	require.Nil(t, gateway.Token())
}
