package authx

import (
	"context"

	"github.com/greenorbit/phaseout/apiserver/internal/meta"
)

// AuthorizeFn is the signature for any function that can check whether the
// principal associated with a context holds one of the specified roles.
type AuthorizeFn func(ctx context.Context, roles ...Role) error

// Authorize checks whether the principal associated with the specified
// context holds one of the specified roles. RoleAdmin satisfies a RoleUser
// requirement; the ingest principal satisfies only RoleIngest.
func Authorize(ctx context.Context, roles ...Role) error {
	switch p := PrincipalFromContext(ctx).(type) {
	case *Ingester:
		for _, role := range roles {
			if role == RoleIngest {
				return nil
			}
		}
	case *Subject:
		if p.Profile == nil || !p.Profile.Verified {
			return &meta.ErrAuthorization{}
		}
		for _, role := range roles {
			if p.Profile.Role == role ||
				(role == RoleUser && p.Profile.Role == RoleAdmin) {
				return nil
			}
		}
	}
	return &meta.ErrAuthorization{}
}

// AuthorizeSelfOrAdmin checks whether the principal associated with the
// specified context is the subject identified by id, or an administrator. A
// subject may act on their own record even before their profile exists or is
// verified; this is what lets a freshly signed-up user discover their own
// account status.
func AuthorizeSelfOrAdmin(ctx context.Context, id string) error {
	if subject, ok := PrincipalFromContext(ctx).(*Subject); ok &&
		subject.ID == id {
		return nil
	}
	return Authorize(ctx, RoleAdmin)
}
