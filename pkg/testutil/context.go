package testutil

import (
	"net/http"
	"time"

	id "nestly/pkg/domain"
	"nestly/pkg/requestcontext"
)

// WithActor adds an acting user to the request, both as the trusted header
// the middleware reads and directly in the context for handlers tested
// without the middleware stack. An invalid UUID only sets the header.
func WithActor(req *http.Request, userID string) *http.Request {
	req.Header.Set("X-Actor-ID", userID)
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithRequestTime pins the request clock.
func WithRequestTime(req *http.Request, ts time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), ts))
}
