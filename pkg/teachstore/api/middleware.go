package api

import (
	"context"
	"net/http"

	"github.com/edustack/teachstore/pkg/teachstore"
	"github.com/edustack/teachstore/pkg/teachstore/auth"
)

type contextKey string

const actorKey contextKey = "actor"

// RequireActor runs after the token verifier: it turns verified claims into
// a teachstore.Actor on the request context, rejecting requests whose token
// is missing or invalid.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, err := auth.ActorFromContext(r.Context())
		if err != nil {
			respondMessage(w, r, http.StatusUnauthorized, "authentication required")
			return
		}
		ctx := context.WithValue(r.Context(), actorKey, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole rejects requests whose actor holds none of the given roles.
func RequireRole(roles ...teachstore.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor := actorFrom(r)
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondMessage(w, r, http.StatusForbidden, "insufficient role")
		})
	}
}

// actorFrom returns the actor placed on the context by RequireActor. Routes
// not behind RequireActor see a zero actor.
func actorFrom(r *http.Request) teachstore.Actor {
	actor, _ := r.Context().Value(actorKey).(teachstore.Actor)
	return actor
}
