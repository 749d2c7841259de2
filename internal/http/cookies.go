package httpx

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// cookieParams groups the attributes of a session-carrying cookie.
type cookieParams struct {
	Name    string
	Value   string
	Path    string
	Domain  string
	MaxAge  int
	Expires time.Time
}

// formatCookie renders a Set-Cookie value. Guest sessions are exchanged
// cross-site by the chatbot embed, so SameSite=None with Secure is
// required.
func formatCookie(p cookieParams) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s=%s; ", p.Name, p.Value)
	fmt.Fprintf(&b, "Path=%s; ", p.Path)
	if p.Domain != "" {
		fmt.Fprintf(&b, "Domain=%s; ", p.Domain)
	}
	fmt.Fprintf(&b, "Max-Age=%d; ", p.MaxAge)
	fmt.Fprintf(&b, "Expires=%s; ", p.Expires.UTC().Format(http.TimeFormat))
	b.WriteString("Secure; HttpOnly; SameSite=None")
	return b.String()
}

// expiredCookie renders a Set-Cookie value that clears the named cookie.
func expiredCookie(name, path, domain string) string {
	return formatCookie(cookieParams{
		Name:    name,
		Value:   "",
		Path:    path,
		Domain:  domain,
		MaxAge:  0,
		Expires: time.Unix(0, 0),
	})
}

// contextCookieValue encodes the session id as the URL-encoded JSON
// object the chatbot client reads from the context cookie.
func contextCookieValue(token string) string {
	payload, err := json.Marshal(map[string]string{"clientSessionId": token})
	if err != nil {
		// A map[string]string cannot fail to marshal.
		return ""
	}
	return url.QueryEscape(string(payload))
}

// resolveCallerURI parses the caller_uri header, falling back to the
// configured base URL.
func resolveCallerURI(callerURI, baseURL string) (*url.URL, error) {
	raw := strings.TrimSpace(callerURI)
	if raw == "" {
		raw = baseURL
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse caller URI %q: %w", raw, err)
	}
	return u, nil
}

// cookiePath derives the session cookie path from the caller URI: the
// last three path segments, matching where the appliance mounts this
// extension. Shorter paths fall back to the root.
func cookiePath(u *url.URL) string {
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 3 || parts[0] == "" {
		return "/"
	}
	return "/" + strings.Join(parts[len(parts)-3:], "/") + "/"
}
