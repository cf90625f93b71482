package middleware

import (
	"net/http"

	"gitea.com/go-chi/session"
	"github.com/ohaus/element-audit/userctx"
)

// Actor puts the session's user id and display name into the request
// context so the mutation path can attribute log entries. Requests without
// a session user pass through unattributed; the audit log models the actor
// as nullable.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := session.GetSession(r)

		ctx := r.Context()
		if id, ok := sess.Get("user_id").(int64); ok {
			ctx = userctx.SetActorID(ctx, id)
		}
		if name, ok := sess.Get("user_name").(string); ok {
			ctx = userctx.SetActorName(ctx, name)
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
