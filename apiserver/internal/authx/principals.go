package authx

import "context"

type principalContextKey struct{}

// Principal is an abstract identity on whose behalf a request is made.
type Principal interface{}

// Ingester is the Principal representing the data-ingest pipeline, which
// authenticates with a shared token rather than a gateway session.
type Ingester struct{}

var ingester = &Ingester{}

// GetIngester returns the Principal representing the data-ingest pipeline.
func GetIngester() *Ingester {
	return ingester
}

// Subject is the Principal representing a human user authenticated by the
// identity gateway. Profile is nil when the gateway knows the user but no
// profile record exists yet; such a subject may read their own (absent)
// profile and nothing else.
type Subject struct {
	// ID is the gateway's immutable identifier for the user.
	ID string
	// Profile is the user's profile record, if one exists.
	Profile *Profile
}

// ContextWithPrincipal returns a context.Context that has been augmented with
// the provided Principal.
func ContextWithPrincipal(
	ctx context.Context,
	principal Principal,
) context.Context {
	return context.WithValue(ctx, principalContextKey{}, principal)
}

// PrincipalFromContext extracts a Principal from the provided context.Context
// and returns it.
func PrincipalFromContext(ctx context.Context) Principal {
	return ctx.Value(principalContextKey{})
}
