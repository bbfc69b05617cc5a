package authn

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/greenorbit/phaseout/apiserver/internal/authx"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/crypto"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/oidc"
	"github.com/greenorbit/phaseout/apiserver/internal/lib/restmachinery"
	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// FindProfileFn is the signature for any function that can retrieve a profile
// by gateway user ID.
type FindProfileFn func(ctx context.Context, id string) (authx.Profile, error)

type tokenAuthFilter struct {
	verifier          oidc.TokenVerifier
	findProfile       FindProfileFn
	hashedIngestToken string
}

// NewTokenAuthFilter returns an implementation of restmachinery.Filter that
// authenticates bearer tokens: the shared data-ingest token by comparing
// salted hashes, and everything else as a gateway-issued token verified
// against the gateway's signing keys.
func NewTokenAuthFilter(
	verifier oidc.TokenVerifier,
	findProfile FindProfileFn,
	hashedIngestToken string,
) restmachinery.Filter {
	return &tokenAuthFilter{
		verifier:          verifier,
		findProfile:       findProfile,
		hashedIngestToken: hashedIngestToken,
	}
}

func (t *tokenAuthFilter) Decorate(handle http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		headerValue := r.Header.Get("Authorization")
		if headerValue == "" {
			t.writeResponse(
				w,
				http.StatusUnauthorized,
				&meta.ErrAuthentication{
					Reason: `"Authorization" header is missing.`,
				},
			)
			return
		}
		headerValueTokens := strings.SplitN(headerValue, " ", 2)
		if len(headerValueTokens) != 2 || headerValueTokens[0] != "Bearer" {
			t.writeResponse(
				w,
				http.StatusUnauthorized,
				&meta.ErrAuthentication{
					Reason: `"Authorization" header is malformed.`,
				},
			)
			return
		}
		token := headerValueTokens[1]

		// Is it the data-ingest pipeline's token?
		if t.hashedIngestToken != "" &&
			crypto.ShortSHA("", token) == t.hashedIngestToken {
			ctx := authx.ContextWithPrincipal(r.Context(), authx.GetIngester())
			handle(w, r.WithContext(ctx))
			return
		}

		idToken, err := t.verifier.Verify(r.Context(), token)
		if err != nil {
			t.writeResponse(
				w,
				http.StatusUnauthorized,
				&meta.ErrAuthentication{
					Reason: "Session could not be verified.",
				},
			)
			return
		}

		subject := &authx.Subject{
			ID: idToken.Subject,
		}
		profile, err := t.findProfile(r.Context(), idToken.Subject)
		if err != nil {
			if _, isNotFound :=
				errors.Cause(err).(*meta.ErrNotFound); !isNotFound {
				t.writeResponse(
					w,
					http.StatusInternalServerError,
					&meta.ErrInternalServer{},
				)
				return
			}
			// The gateway knows this user but no profile exists yet. The subject
			// proceeds profileless; the authorizer permits them self-reads only.
		} else {
			if profile.Locked != nil {
				t.writeResponse(
					w,
					http.StatusForbidden,
					&meta.ErrAuthorization{},
				)
				return
			}
			subject.Profile = &profile
		}

		ctx := authx.ContextWithPrincipal(r.Context(), subject)
		handle(w, r.WithContext(ctx))
	}
}

func (t *tokenAuthFilter) writeResponse(
	w http.ResponseWriter,
	statusCode int,
	response interface{},
) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	responseBody, _ := json.Marshal(response) // nolint: errcheck
	w.Write(responseBody)                     // nolint: errcheck
}
