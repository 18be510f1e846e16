package domain

import "context"

type principalKey struct{}

// AnonymousPrincipal is recorded when a request carries no identity.
const AnonymousPrincipal = "anonymous"

// ContextPrincipal carries the authenticated identity through request context.
type ContextPrincipal struct {
	Name    string
	Subject string
}

// WithPrincipal stores a ContextPrincipal in the context.
func WithPrincipal(ctx context.Context, p ContextPrincipal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the ContextPrincipal from the context.
func PrincipalFromContext(ctx context.Context) (ContextPrincipal, bool) {
	p, ok := ctx.Value(principalKey{}).(ContextPrincipal)
	return p, ok
}

// PrincipalName returns the caller's name or AnonymousPrincipal.
func PrincipalName(ctx context.Context) string {
	if p, ok := PrincipalFromContext(ctx); ok && p.Name != "" {
		return p.Name
	}
	return AnonymousPrincipal
}
