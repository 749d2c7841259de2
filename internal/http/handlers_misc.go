package httpx

import (
	"embed"
	"io"
	"net/http"
)

//go:embed assets/authenticator.js
var assetsFS embed.FS

const healthResponse = `{"status":"ok"}`

// healthHandler returns a simple 200 OK status for readiness/liveness checks.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.WriteString(w, healthResponse); err != nil {
		// Nothing more to do if the client connection is gone.
		return
	}
}

// authenticatorScriptHandler serves the embedded client bootstrap script
// the chatbot widget loads to drive the login flow.
func authenticatorScriptHandler(w http.ResponseWriter, _ *http.Request) {
	script, err := assetsFS.ReadFile("assets/authenticator.js")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/javascript; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(script); err != nil {
		return
	}
}
