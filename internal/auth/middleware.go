package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// contextKey is a typed key for context values to avoid collisions.
type contextKey string

const identityKey contextKey = "identity"

// Protect wraps next with identity resolution and role authorization.
// The resolved Identity is stored in the request context for handlers.
func Protect(resolver *Resolver, gate *Gate, next http.HandlerFunc, allowed ...Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity, err := resolver.Resolve(r.Context(), r.Header.Get("Authorization"), r.Header.Get("X-Debug-Role"))
		if err != nil {
			writeError(w, err)
			return
		}
		if err := gate.Authorize(identity, allowed...); err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), identityKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// writeError emits the same {"error": ...} envelope handlers use, so
// rejected requests look uniform to clients.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(HTTPStatus(err))
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

// FromContext extracts the resolved identity placed by Protect.
func FromContext(ctx context.Context) (Identity, error) {
	identity, ok := ctx.Value(identityKey).(Identity)
	if !ok {
		return Identity{}, fmt.Errorf("identity not found in request context")
	}
	return identity, nil
}

// WithIdentity returns a context carrying identity. Test helper and the
// seam for non-HTTP callers.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}
