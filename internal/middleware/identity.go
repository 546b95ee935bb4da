package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// IdentityHeader carries the caller's anonymous identity. The gateway
// trusts it as-is: possession of an identity string is the whole
// authentication model of this core.
const IdentityHeader = "X-Identity"

type identityCtxKey struct{}

// NewIdentity returns a middleware that reads the identity header, minting
// a fresh identity when the header is absent. The identity — existing or
// new — is placed in the request context and echoed back in the response
// header so a first-time client can persist it.
func NewIdentity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := r.Header.Get(IdentityHeader)
			if identity == "" {
				identity = uuid.NewString()
			}
			w.Header().Set(IdentityHeader, identity)

			ctx := context.WithValue(r.Context(), identityCtxKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom returns the identity stored in the context by NewIdentity,
// or "" when the middleware did not run.
func IdentityFrom(ctx context.Context) string {
	identity, _ := ctx.Value(identityCtxKey{}).(string)
	return identity
}
