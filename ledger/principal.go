package ledger

import "context"

// Principal identifies the caller of a ledger operation. Its contents are
// opaque to the ledger; only equality matters.
type Principal string

// AnonymousPrincipal is used when the context carries no caller.
const AnonymousPrincipal Principal = "2vxsx-fae"

type callerKey struct{}

// WithCaller returns a copy of ctx carrying p as the caller identity.
func WithCaller(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, callerKey{}, p)
}

// Caller returns the caller identity stored in ctx, or AnonymousPrincipal.
func Caller(ctx context.Context) Principal {
	if p, ok := ctx.Value(callerKey{}).(Principal); ok && p != "" {
		return p
	}
	return AnonymousPrincipal
}
