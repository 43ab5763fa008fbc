package auth

import (
	"context"

	"storefront/internal/domain"
)

type contextKey string

const principalContextKey contextKey = "storefront/internal/auth/principal"

// WithPrincipal stores the authenticated caller for downstream handlers.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

// PrincipalFromContext retrieves the caller stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(domain.Principal)
	if !ok || p.ID == "" {
		return domain.Principal{}, false
	}
	return p, true
}
