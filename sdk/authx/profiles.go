package authx

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/greenorbit/phaseout/sdk/internal/restmachinery"
	"github.com/greenorbit/phaseout/sdk/meta"
)

// Role determines what a profile's owner is permitted to do within the
// dashboard.
type Role string

const (
	// RoleUser is the ordinary dashboard user role.
	RoleUser Role = "user"
	// RoleAdmin enables profile administration and dataset upserts.
	RoleAdmin Role = "admin"
)

// Profile represents the application's own record of a user, keyed by the
// identity gateway's user ID. The gateway owns credentials; the profile owns
// everything else-- display name, role, and the verification flag that gates
// access for otherwise-authenticated users.
type Profile struct {
	meta.ObjectMeta `json:"metadata"`
	// Name is the user's display name.
	Name string `json:"name"`
	// Email is the email address registered with the identity gateway.
	Email string `json:"email"`
	// Role determines the user's permissions within the dashboard.
	Role Role `json:"role"`
	// Verified indicates whether an administrator has approved this user for
	// access. An unverified user is never permitted past sign-in.
	Verified bool `json:"verified"`
	// Locked indicates when, if ever, access for this user was revoked.
	Locked *time.Time `json:"locked"`
}

// MarshalJSON amends Profile instances with type metadata.
func (p Profile) MarshalJSON() ([]byte, error) {
	type Alias Profile
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "Profile",
			},
			Alias: (Alias)(p),
		},
	)
}

// ProfileList is an ordered and pageable list of Profiles.
type ProfileList struct {
	meta.ListMeta `json:"metadata"`
	Items         []Profile `json:"items,omitempty"`
}

// MarshalJSON amends ProfileList instances with type metadata.
func (p ProfileList) MarshalJSON() ([]byte, error) {
	type Alias ProfileList
	return json.Marshal(
		struct {
			meta.TypeMeta `json:",inline"`
			Alias         `json:",inline"`
		}{
			TypeMeta: meta.TypeMeta{
				APIVersion: meta.APIVersion,
				Kind:       "ProfileList",
			},
			Alias: (Alias)(p),
		},
	)
}

// TokenFn supplies the bearer token to present with each request. Profile
// routes are authenticated with gateway-issued tokens, which rotate as
// sessions are refreshed, so a static token would grow stale.
type TokenFn func() string

// ProfilesClient is the specialized client for managing Profiles.
type ProfilesClient interface {
	// Create adds a new profile record.
	Create(context.Context, Profile) (Profile, error)
	// Get retrieves a single profile by the gateway user ID it is keyed by.
	Get(context.Context, string) (Profile, error)
	// List returns a ProfileList.
	List(context.Context, meta.ListOptions) (ProfileList, error)
	// Lock revokes dashboard access for a single profile.
	Lock(context.Context, string) error
	// Unlock restores dashboard access for a single profile.
	Unlock(context.Context, string) error
	// Verify marks a profile as approved for access.
	Verify(context.Context, string) error
}

type profilesClient struct {
	*restmachinery.BaseClient
	tokenFn TokenFn
}

// NewProfilesClient returns a specialized client for managing Profiles.
func NewProfilesClient(
	apiAddress string,
	tokenFn TokenFn,
	allowInsecure bool,
) ProfilesClient {
	return &profilesClient{
		BaseClient: &restmachinery.BaseClient{
			APIAddress: apiAddress,
			HTTPClient: &http.Client{
				Transport: &http.Transport{
					TLSClientConfig: &tls.Config{
						InsecureSkipVerify: allowInsecure, // nolint: gosec
					},
				},
			},
		},
		tokenFn: tokenFn,
	}
}

func (p *profilesClient) Create(
	ctx context.Context,
	profile Profile,
) (Profile, error) {
	createdProfile := Profile{}
	return createdProfile, p.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPost,
			Path:        "v2/profiles",
			AuthHeaders: p.authHeaders(),
			ReqBodyObj:  profile,
			SuccessCode: http.StatusCreated,
			RespObj:     &createdProfile,
		},
	)
}

func (p *profilesClient) Get(
	ctx context.Context,
	id string,
) (Profile, error) {
	profile := Profile{}
	return profile, p.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        fmt.Sprintf("v2/profiles/%s", id),
			AuthHeaders: p.authHeaders(),
			SuccessCode: http.StatusOK,
			RespObj:     &profile,
		},
	)
}

func (p *profilesClient) List(
	ctx context.Context,
	opts meta.ListOptions,
) (ProfileList, error) {
	profiles := ProfileList{}
	queryParams := map[string]string{}
	if opts.Continue != "" {
		queryParams["continue"] = opts.Continue
	}
	if opts.Limit != 0 {
		queryParams["limit"] = fmt.Sprintf("%d", opts.Limit)
	}
	return profiles, p.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodGet,
			Path:        "v2/profiles",
			AuthHeaders: p.authHeaders(),
			QueryParams: queryParams,
			SuccessCode: http.StatusOK,
			RespObj:     &profiles,
		},
	)
}

func (p *profilesClient) Lock(ctx context.Context, id string) error {
	return p.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPut,
			Path:        fmt.Sprintf("v2/profiles/%s/lock", id),
			AuthHeaders: p.authHeaders(),
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *profilesClient) Unlock(ctx context.Context, id string) error {
	return p.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodDelete,
			Path:        fmt.Sprintf("v2/profiles/%s/lock", id),
			AuthHeaders: p.authHeaders(),
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *profilesClient) Verify(ctx context.Context, id string) error {
	return p.ExecuteRequest(
		ctx,
		restmachinery.OutboundRequest{
			Method:      http.MethodPut,
			Path:        fmt.Sprintf("v2/profiles/%s/verification", id),
			AuthHeaders: p.authHeaders(),
			SuccessCode: http.StatusOK,
		},
	)
}

func (p *profilesClient) authHeaders() map[string]string {
	if p.tokenFn == nil {
		return nil
	}
	return map[string]string{
		"Authorization": fmt.Sprintf("Bearer %s", p.tokenFn()),
	}
}
