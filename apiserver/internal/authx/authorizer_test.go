package authx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

func TestAuthorizeWithNoPrincipal(t *testing.T) {
	err := Authorize(context.Background(), RoleUser)
	require.Error(t, err)
	require.IsType(t, &meta.ErrAuthorization{}, err)
}

func TestAuthorizeIngester(t *testing.T) {
	ctx := ContextWithPrincipal(context.Background(), GetIngester())
	require.NoError(t, Authorize(ctx, RoleIngest))

	// The ingest principal is not a user of any kind.
	err := Authorize(ctx, RoleUser, RoleAdmin)
	require.Error(t, err)
	require.IsType(t, &meta.ErrAuthorization{}, err)
}

func TestAuthorizeSubject(t *testing.T) {
	testCases := []struct {
		name       string
		profile    *Profile
		roles      []Role
		authorized bool
	}{
		{
			name:       "subject with no profile",
			profile:    nil,
			roles:      []Role{RoleUser},
			authorized: false,
		},
		{
			name: "unverified subject",
			profile: &Profile{
				Role:     RoleUser,
				Verified: false,
			},
			roles:      []Role{RoleUser},
			authorized: false,
		},
		{
			name: "verified user requiring user role",
			profile: &Profile{
				Role:     RoleUser,
				Verified: true,
			},
			roles:      []Role{RoleUser},
			authorized: true,
		},
		{
			name: "verified user requiring admin role",
			profile: &Profile{
				Role:     RoleUser,
				Verified: true,
			},
			roles:      []Role{RoleAdmin},
			authorized: false,
		},
		{
			name: "admin requiring user role",
			profile: &Profile{
				Role:     RoleAdmin,
				Verified: true,
			},
			roles:      []Role{RoleUser},
			authorized: true,
		},
		{
			name: "verified user requiring ingest role",
			profile: &Profile{
				Role:     RoleUser,
				Verified: true,
			},
			roles:      []Role{RoleIngest},
			authorized: false,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := ContextWithPrincipal(
				context.Background(),
				&Subject{
					ID:      "e9f1d40c-6a52-4e9b-8d3f-1b7c5a2e8f90",
					Profile: testCase.profile,
				},
			)
			err := Authorize(ctx, testCase.roles...)
			if testCase.authorized {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
				require.IsType(t, &meta.ErrAuthorization{}, err)
			}
		})
	}
}

func TestAuthorizeSelfOrAdmin(t *testing.T) {
	const id = "e9f1d40c-6a52-4e9b-8d3f-1b7c5a2e8f90"

	// A subject may act on their own record even without a profile.
	ctx := ContextWithPrincipal(
		context.Background(),
		&Subject{ID: id},
	)
	require.NoError(t, AuthorizeSelfOrAdmin(ctx, id))

	// But not on anyone else's.
	err := AuthorizeSelfOrAdmin(ctx, "someone-else")
	require.Error(t, err)
	require.IsType(t, &meta.ErrAuthorization{}, err)

	// An admin may act on anyone's record.
	ctx = ContextWithPrincipal(
		context.Background(),
		&Subject{
			ID: "a-different-admin",
			Profile: &Profile{
				Role:     RoleAdmin,
				Verified: true,
			},
		},
	)
	require.NoError(t, AuthorizeSelfOrAdmin(ctx, id))
}
