package httpx

// Session token carriers, in resolution precedence order.
const (
	// CookieChatbotSession carries the session token for browser clients.
	CookieChatbotSession = "chatbotSessionId"

	// HeaderSessionID carries the session token for non-cookie clients.
	HeaderSessionID = "Chatbot-Session-Id"

	// QueryClientSession is the query-parameter fallback carrier.
	QueryClientSession = "clientSessionId"
)

// Request headers set by the hosting platform.
const (
	// HeaderSource marks logins originating from the platform's own channel.
	HeaderSource = "source"

	// HeaderCallerURI is the URI the client reached the appliance on; the
	// session cookie path is derived from it.
	HeaderCallerURI = "caller_uri"
)

// CookieContext is the secondary context cookie consumed by the chatbot
// client; its value is a URL-encoded JSON object holding the session id.
const CookieContext = "X-Krista-Context"

// Endpoint paths. These are the public contract other layers depend on.
const (
	PathLogin           = "/login"
	PathLogout          = "/logout"
	PathLogoutV1        = "/v1/logout"
	PathUpsertAttrs     = "/upsertPersonAttributes"
	PathType            = "/type"
	PathAuthenticatorJS = "/authenticator.js"
)

// AuthenticationType identifies this authentication scheme to the host.
const AuthenticationType = "Guest Authentication"
