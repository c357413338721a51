package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// Caller roles within an organization. Domain-identity changes require the
// owner role; everything else needs membership only.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// CallerContextKey is the key for storing the authenticated caller.
type CallerContextKey struct{}

// Caller holds the authenticated user and organization resolved by the
// upstream auth layer. Session handling itself is not this service's job;
// the gateway forwards the resolved identity in headers.
type Caller struct {
	UserID  uuid.UUID
	OrgID   uuid.UUID
	OrgName string
	Role    string
}

// IsOwner reports whether the caller holds the elevated role.
func (c *Caller) IsOwner() bool {
	return c.Role == RoleOwner
}

// CallerFromRequest reads the forwarded identity headers. Returns nil when
// the request carries no authenticated caller.
func CallerFromRequest(r *http.Request) *Caller {
	userID, err := uuid.Parse(r.Header.Get("X-User-ID"))
	if err != nil {
		return nil
	}
	orgID, err := uuid.Parse(r.Header.Get("X-Organization-ID"))
	if err != nil {
		return nil
	}

	role := r.Header.Get("X-User-Role")
	if role == "" {
		role = RoleMember
	}

	return &Caller{
		UserID:  userID,
		OrgID:   orgID,
		OrgName: r.Header.Get("X-Organization-Name"),
		Role:    role,
	}
}

// RequireCallerMiddleware rejects requests without an authenticated caller
// and injects the caller into the request context.
func RequireCallerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := CallerFromRequest(r)
		if caller == nil {
			writeJSONError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), CallerContextKey{}, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCallerFromContext retrieves the caller from the request context.
func GetCallerFromContext(ctx context.Context) *Caller {
	if caller, ok := ctx.Value(CallerContextKey{}).(*Caller); ok {
		return caller
	}
	return nil
}
