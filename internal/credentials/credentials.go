// Package credentials carries the caller's Authorization header from the
// inbound request to the store client that forwards it.
package credentials

import "context"

type authorizationKey struct{}

func WithAuthorization(ctx context.Context, authorization string) context.Context {
	return context.WithValue(ctx, authorizationKey{}, authorization)
}

// Authorization returns the forwarded header value, or "" when none was set.
func Authorization(ctx context.Context) string {
	v, _ := ctx.Value(authorizationKey{}).(string)
	return v
}
