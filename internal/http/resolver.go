package httpx

import (
	"net/http"

	"github.com/kristasoft/guestauth/internal/service"
)

// ResolveToken extracts a candidate session token from the request.
// Precedence: chatbot session cookie, then the session header, then the
// clientSessionId query parameter. An empty result is not an error; it is
// the trigger for guest provisioning.
func ResolveToken(r *http.Request) string {
	if c, err := r.Cookie(CookieChatbotSession); err == nil && c.Value != "" {
		return c.Value
	}
	if v := r.Header.Get(HeaderSessionID); v != "" {
		return v
	}
	return r.URL.Query().Get(QueryClientSession)
}

// cookieOrHeaderToken extracts the token from cookie or header only,
// matching the carriers the logout and attribute endpoints accept.
func cookieOrHeaderToken(r *http.Request) string {
	if c, err := r.Cookie(CookieChatbotSession); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(HeaderSessionID)
}

// RouteFor classifies a request path for the Authenticator.
func RouteFor(path string) service.Route {
	switch path {
	case PathLogin:
		return service.RouteLogin
	case PathUpsertAttrs:
		return service.RouteAttributeUpsert
	default:
		return service.RouteOther
	}
}
