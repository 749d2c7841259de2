package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/kristasoft/guestauth/config"
	domainauth "github.com/kristasoft/guestauth/internal/domain/auth"
	"github.com/kristasoft/guestauth/internal/ports"
	"github.com/kristasoft/guestauth/internal/service"
)

// LoginServiceInterface defines the login orchestration operations the
// handlers depend on.
type LoginServiceInterface interface {
	Login(ctx context.Context, input service.LoginInput) (domainauth.AuthResponse, error)
	Payload(ctx context.Context, token string) (domainauth.AuthResponse, error)
	Logout(ctx context.Context, token string) error
	LogoutV1(ctx context.Context, token string) error
}

// AuthenticatorInterface resolves the calling account for a request.
type AuthenticatorInterface interface {
	Resolve(ctx context.Context, input service.ResolveInput) (service.ResolveResult, error)
}

// AttributeServiceInterface validates and writes account attributes.
type AttributeServiceInterface interface {
	Upsert(ctx context.Context, accountID string, attrs map[string]*string) error
}

// AuthHandlers provides the guest authentication HTTP endpoints.
type AuthHandlers struct {
	Login      LoginServiceInterface
	Authn      AuthenticatorInterface
	Attributes AttributeServiceInterface
	Guest      config.GuestConfig
	HTTP       config.HTTPConfig
	Logger     *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// HandleLogin handles guest login.
// POST /login with an optional JSON object of custom attributes.
func (h *AuthHandlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	token := ResolveToken(r)

	resolved, err := h.Authn.Resolve(r.Context(), service.ResolveInput{
		Route: service.RouteLogin,
		Token: token,
	})
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	var custom map[string]any
	if !DecodeJSONAllowEmpty(w, r, &custom) {
		return
	}

	payload, err := h.Login.Login(r.Context(), service.LoginInput{
		CallerAccountID:     resolved.AccountID,
		PresentedToken:      token,
		FromPlatformChannel: r.Header.Get(HeaderSource) != "",
		CustomAttributes:    custom,
	})
	if err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	h.setSessionCookies(w, r, payload.ClientSessionID)
	w.Header().Set(HeaderSessionID, payload.ClientSessionID)
	WriteJSON(w, http.StatusOK, payload)
}

// HandleUpsertAttributes handles attribute updates for the session's
// account. POST /upsertPersonAttributes with a JSON attribute map.
//
// The route authenticates as the platform's own account, bypassing
// guest-session resolution; the presented token only selects which
// account's attributes to write.
func (h *AuthHandlers) HandleUpsertAttributes(w http.ResponseWriter, r *http.Request) {
	if _, err := h.Authn.Resolve(r.Context(), service.ResolveInput{Route: RouteFor(r.URL.Path)}); err != nil {
		h.writeAuthError(w, r, err)
		return
	}

	token := cookieOrHeaderToken(r)
	if token == "" {
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "missing_session_id",
			Err:     service.ErrMissingSessionID,
		})
		return
	}

	payload, err := h.Login.Payload(r.Context(), token)
	if err != nil {
		if errors.Is(err, ports.ErrPayloadNotFound) {
			WriteError(w, ErrorParams{
				Code:    http.StatusUnauthorized,
				ErrCode: "invalid_session",
				Err:     errors.New("no active session for the presented id"),
			})
			return
		}
		h.writeAuthError(w, r, err)
		return
	}

	var attrs map[string]*string
	if !DecodeJSON(w, r, &attrs) {
		return
	}

	if err := h.Attributes.Upsert(r.Context(), payload.AccountID, attrs); err != nil {
		var unknown *service.UnknownAttributeError
		if errors.As(err, &unknown) {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "unknown_attributes",
				Err:     unknown,
			})
			return
		}
		h.writeAuthError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// logoutRequest is the body of the explicit-id logout endpoint.
type logoutRequest struct {
	ClientSessionID string `json:"clientSessionId"`
}

// HandleLogout handles the explicit-id logout.
// POST /logout with a JSON body carrying clientSessionId.
func (h *AuthHandlers) HandleLogout(w http.ResponseWriter, r *http.Request) {
	var req logoutRequest
	if !DecodeJSONAllowEmpty(w, r, &req) {
		return
	}

	if err := h.Login.Logout(r.Context(), req.ClientSessionID); err != nil {
		if errors.Is(err, service.ErrMissingSessionID) {
			WriteError(w, ErrorParams{
				Code:    http.StatusBadRequest,
				ErrCode: "missing_session_id",
				Err:     err,
			})
			return
		}
		h.writeAuthError(w, r, err)
		return
	}

	WriteText(w, http.StatusOK, "user logged out successfully")
}

// HandleLogoutV1 handles the cookie/header logout. It always succeeds
// and expires both session cookies on the client.
// POST /v1/logout.
func (h *AuthHandlers) HandleLogoutV1(w http.ResponseWriter, r *http.Request) {
	token := cookieOrHeaderToken(r)
	if err := h.Login.LogoutV1(r.Context(), token); err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", slog.Any("error", err))
	}

	h.expireSessionCookies(w, r)
	WriteText(w, http.StatusOK, "user logged out successfully")
}

// HandleType reports the authentication scheme this service implements.
// GET /type.
func (h *AuthHandlers) HandleType(w http.ResponseWriter, _ *http.Request) {
	WriteText(w, http.StatusOK, AuthenticationType)
}

// writeAuthError maps service failures onto the response taxonomy:
// rejected guest domains are authorization failures, recognized client
// errors are 400s, everything else is a generic 500.
func (h *AuthHandlers) writeAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ports.ErrDomainNotAllowed):
		WriteError(w, ErrorParams{
			Code:    http.StatusForbidden,
			ErrCode: "domain_not_allowed",
			Err:     err,
		})
	case service.IsClientError(err):
		WriteError(w, ErrorParams{
			Code:    http.StatusBadRequest,
			ErrCode: "invalid_request",
			Err:     err,
		})
	default:
		h.logger().ErrorContext(r.Context(), "authentication failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		WriteError(w, ErrorParams{
			Code:    http.StatusInternalServerError,
			ErrCode: "authentication_failed",
			Err:     errors.New("authentication failed"),
		})
	}
}

// setSessionCookies emits the session cookie and the context cookie for
// a freshly issued token. The session cookie is scoped to the caller's
// mount path; the context cookie is host-wide.
func (h *AuthHandlers) setSessionCookies(w http.ResponseWriter, r *http.Request, token string) {
	callerURI, err := resolveCallerURI(r.Header.Get(HeaderCallerURI), h.HTTP.BaseURL)
	path := "/"
	if err != nil {
		h.logger().WarnContext(r.Context(), "unparseable caller URI, scoping cookie to root",
			slog.Any("error", err))
	} else {
		path = cookiePath(callerURI)
	}

	ttl := time.Duration(h.Guest.SessionTTLMinutes) * time.Minute
	expires := time.Now().Add(ttl)

	w.Header().Add("Set-Cookie", formatCookie(cookieParams{
		Name:    CookieChatbotSession,
		Value:   token,
		Path:    path,
		Domain:  h.HTTP.CookieDomain,
		MaxAge:  int(ttl.Seconds()),
		Expires: expires,
	}))
	w.Header().Add("Set-Cookie", formatCookie(cookieParams{
		Name:    CookieContext,
		Value:   contextCookieValue(token),
		Path:    "/",
		Domain:  h.HTTP.CookieDomain,
		MaxAge:  int(ttl.Seconds()),
		Expires: expires,
	}))
}

// expireSessionCookies clears both session-carrying cookies.
func (h *AuthHandlers) expireSessionCookies(w http.ResponseWriter, r *http.Request) {
	path := "/"
	if callerURI, err := resolveCallerURI(r.Header.Get(HeaderCallerURI), h.HTTP.BaseURL); err == nil {
		path = cookiePath(callerURI)
	}
	w.Header().Add("Set-Cookie", expiredCookie(CookieChatbotSession, path, h.HTTP.CookieDomain))
	w.Header().Add("Set-Cookie", expiredCookie(CookieContext, "/", h.HTTP.CookieDomain))
}
