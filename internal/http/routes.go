package httpx

import (
	"log/slog"
	"net/http"

	"github.com/kristasoft/guestauth/config"
	"github.com/kristasoft/guestauth/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Login      *service.LoginService
	Authn      *service.Authenticator
	Attributes *service.AttributeService
	Guest      config.GuestConfig
	HTTP       config.HTTPConfig
	Logger     *slog.Logger
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Login:      services.Login,
		Authn:      services.Authn,
		Attributes: services.Attributes,
		Guest:      services.Guest,
		HTTP:       services.HTTP,
		Logger:     services.Logger,
	}
	registerAuthRoutes(mux, authHandlers)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	return CORS()(mux)
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers) {
	mux.HandleFunc("POST "+PathLogin, h.HandleLogin)
	mux.HandleFunc("POST "+PathUpsertAttrs, h.HandleUpsertAttributes)
	mux.HandleFunc("POST "+PathLogout, h.HandleLogout)
	mux.HandleFunc("POST "+PathLogoutV1, h.HandleLogoutV1)
	mux.HandleFunc("GET "+PathType, h.HandleType)
	mux.HandleFunc("GET "+PathAuthenticatorJS, authenticatorScriptHandler)
}
