package middleware

import (
	"net/http"

	"github.com/google/uuid"

	id "nestly/pkg/domain"
	"nestly/pkg/requestcontext"
)

// RequestID assigns a correlation ID to each request, honoring an inbound
// X-Request-ID header so upstream proxies can trace calls end to end.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ActorID lifts the authenticated user from the X-Actor-ID header into the
// request context. Session handling lives in the marketplace gateway; by the
// time requests reach this service the actor has already been authenticated
// and is forwarded as a trusted header.
func ActorID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("X-Actor-ID")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		actorID, err := id.ParseUserID(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := requestcontext.WithUserID(r.Context(), actorID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
