package identity

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// GatewaySession represents a live session with the remote identity gateway.
// It is a snapshot: the gateway remains the source of truth and a
// GatewaySession must never, by itself, be treated as proof of access.
type GatewaySession struct {
	// UserID is the gateway's immutable identifier for the authenticated user.
	UserID string
	// Email is the email address the user authenticated with.
	Email string
	// Name is the display name the gateway has on record, if any.
	Name string
	// Role is an advisory role hint carried in the access token. Authoritative
	// role information lives in the user's profile record.
	Role string
	// AccessToken is the bearer token to present to the phaseout API server.
	AccessToken string
	// Expires indicates when the access token expires.
	Expires time.Time
}

// Gateway is the client-side interface to the remote identity gateway-- the
// hosted service that owns credentials, session issuance, and sign-out. All
// of its operations require a network round trip; callers must bound them
// with a context deadline.
type Gateway interface {
	// Session retrieves the current session from the gateway. It is idempotent
	// and side-effect-free, except that an expired token is transparently
	// refreshed when the gateway permits it. A nil session and nil error
	// indicate, unambiguously, that the gateway reports no live session.
	Session(ctx context.Context) (*GatewaySession, error)
	// SignIn performs credential authentication. A rejection by the gateway is
	// returned as an *ErrInvalidCredentials; any other error indicates the
	// gateway could not be consulted at all.
	SignIn(ctx context.Context, email, secret string) (*GatewaySession, error)
	// SignOut ends the current session at the gateway. Sign-out is eventually
	// consistent server-side; immediately after a successful SignOut the
	// gateway may still briefly report a live session.
	SignOut(ctx context.Context) error
	// Invalidate revokes the current session's tokens server-side. Unlike
	// SignOut it is used to destroy a session the application decided it never
	// should have created-- e.g. one belonging to an unverified user.
	Invalidate(ctx context.Context) error
	// Token returns the gateway token currently held by the client, if any.
	// This exists so callers can persist a session across process restarts.
	Token() *oauth2.Token
	// SetToken replaces the gateway token held by the client. A nil token
	// leaves the client with no session.
	SetToken(*oauth2.Token)
}

type gateway struct {
	oauth2Config *oauth2.Config
	userInfoURL  string
	signOutURL   string
	revokeURL    string
	httpClient   *http.Client
	tokenMu      sync.Mutex
	token        *oauth2.Token
}

// NewGateway returns a client for the remote identity gateway at the
// specified address.
func NewGateway(
	address string,
	clientID string,
	allowInsecure bool,
) Gateway {
	address = strings.TrimSuffix(address, "/")
	return &gateway{
		oauth2Config: &oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				TokenURL: fmt.Sprintf("%s/oauth/token", address),
			},
		},
		userInfoURL: fmt.Sprintf("%s/oauth/userinfo", address),
		signOutURL:  fmt.Sprintf("%s/oauth/logout", address),
		revokeURL:   fmt.Sprintf("%s/oauth/revoke", address),
		httpClient: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: allowInsecure, // nolint: gosec
				},
			},
		},
	}
}

func (g *gateway) Session(ctx context.Context) (*GatewaySession, error) {
	g.tokenMu.Lock()
	token := g.token
	g.tokenMu.Unlock()
	if token == nil {
		return nil, nil
	}

	if !token.Valid() {
		// The access token has expired. If the gateway issued a refresh token,
		// the oauth2 token source will transparently attempt a refresh grant.
		if token.RefreshToken == "" {
			g.SetToken(nil)
			return nil, nil
		}
		refreshed, err :=
			g.oauth2Config.TokenSource(g.oauth2Context(ctx), token).Token()
		if err != nil {
			if isGrantRejection(err) {
				// The gateway no longer honors this session.
				g.SetToken(nil)
				return nil, nil
			}
			return nil, errors.Wrap(err, "error refreshing gateway token")
		}
		g.SetToken(refreshed)
		token = refreshed
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodGet,
		g.userInfoURL,
		nil,
	)
	if err != nil {
		return nil, errors.Wrap(err, "error creating gateway session request")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving session from gateway")
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized ||
		resp.StatusCode == http.StatusForbidden {
		// The gateway no longer recognizes the token.
		g.SetToken(nil)
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf(
			"received %d from gateway retrieving session",
			resp.StatusCode,
		)
	}
	userInfo := struct {
		Subject string `json:"sub"`
		Email   string `json:"email"`
		Name    string `json:"name"`
	}{}
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "error reading gateway session response")
	}
	if err = json.Unmarshal(bodyBytes, &userInfo); err != nil {
		return nil, errors.Wrap(err, "error unmarshaling gateway session response")
	}

	session := &GatewaySession{
		UserID:      userInfo.Subject,
		Email:       userInfo.Email,
		Name:        userInfo.Name,
		AccessToken: token.AccessToken,
		Expires:     token.Expiry,
	}
	// Claims in the access token are advisory only, so a malformed token is
	// not, by itself, grounds for rejecting the gateway's answer.
	if claims, err := parseAccessTokenClaims(token.AccessToken); err == nil {
		session.Role = claims.Role
		if session.UserID == "" {
			session.UserID = claims.Subject
		}
	}
	return session, nil
}

func (g *gateway) SignIn(
	ctx context.Context,
	email string,
	secret string,
) (*GatewaySession, error) {
	token, err := g.oauth2Config.PasswordCredentialsToken(
		g.oauth2Context(ctx),
		email,
		secret,
	)
	if err != nil {
		if isGrantRejection(err) {
			return nil, &ErrInvalidCredentials{
				Reason: grantRejectionReason(err),
			}
		}
		return nil, errors.Wrap(err, "error signing in to gateway")
	}
	g.SetToken(token)
	session, err := g.Session(ctx)
	if err != nil {
		return nil, err
	}
	if session == nil {
		// The gateway issued a token it will not honor. Treat it the same as any
		// other gateway-side failure.
		return nil, errors.New("gateway issued a token but reports no session")
	}
	return session, nil
}

func (g *gateway) SignOut(ctx context.Context) error {
	g.tokenMu.Lock()
	token := g.token
	g.tokenMu.Unlock()
	if token == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.signOutURL,
		nil,
	)
	if err != nil {
		return errors.Wrap(err, "error creating gateway sign-out request")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "error signing out of gateway")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusNoContent &&
		resp.StatusCode != http.StatusUnauthorized {
		return errors.Errorf("received %d from gateway signing out", resp.StatusCode)
	}
	g.SetToken(nil)
	return nil
}

func (g *gateway) Invalidate(ctx context.Context) error {
	g.tokenMu.Lock()
	token := g.token
	g.tokenMu.Unlock()
	if token == nil {
		return nil
	}
	form := url.Values{}
	form.Set("token", token.RefreshToken)
	form.Set("token_type_hint", "refresh_token")
	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		g.revokeURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return errors.Wrap(err, "error creating gateway revocation request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token.AccessToken))
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "error revoking gateway session")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusNoContent {
		return errors.Errorf(
			"received %d from gateway revoking session",
			resp.StatusCode,
		)
	}
	g.SetToken(nil)
	return nil
}

func (g *gateway) Token() *oauth2.Token {
	g.tokenMu.Lock()
	defer g.tokenMu.Unlock()
	return g.token
}

func (g *gateway) SetToken(token *oauth2.Token) {
	g.tokenMu.Lock()
	defer g.tokenMu.Unlock()
	g.token = token
}

// oauth2Context returns a context that directs the oauth2 package to use this
// client's underlying HTTP client, so that TLS settings apply to grant
// requests too.
func (g *gateway) oauth2Context(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, g.httpClient)
}

func isGrantRejection(err error) bool {
	retrieveErr, ok := errors.Cause(err).(*oauth2.RetrieveError)
	if !ok {
		return false
	}
	return retrieveErr.Response.StatusCode == http.StatusBadRequest ||
		retrieveErr.Response.StatusCode == http.StatusUnauthorized ||
		retrieveErr.Response.StatusCode == http.StatusForbidden
}

func grantRejectionReason(err error) string {
	retrieveErr, ok := errors.Cause(err).(*oauth2.RetrieveError)
	if !ok {
		return "The gateway rejected the supplied credentials."
	}
	body := struct {
		Description string `json:"error_description"`
	}{}
	if jsonErr := json.Unmarshal(retrieveErr.Body, &body); jsonErr == nil &&
		body.Description != "" {
		return body.Description
	}
	return "The gateway rejected the supplied credentials."
}
