package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const (
	NXAPIUser     = "admin"
	NXAPIPassword = "Admin_1234!"

	// SlowCommand blocks until the caller gives up.
	SlowCommand = "show tech-support"
)

// NewNXAPIServer starts a TLS server speaking the NX-API JSON-RPC dialect.
// Commands found in bodies answer with that body, anything else with a CLI
// error object.
func NewNXAPIServer(t *testing.T, bodies map[string]any) *httptest.Server {
	t.Helper()

	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != NXAPIUser || pass != NXAPIPassword {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req struct {
			Params struct {
				Cmd string `json:"cmd"`
			} `json:"params"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}

		if req.Params.Cmd == SlowCommand {
			<-r.Context().Done()
			return
		}

		w.Header().Set("Content-Type", "application/json-rpc")
		body, ok := bodies[req.Params.Cmd]
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]any{
				"jsonrpc": "2.0",
				"error": map[string]any{
					"code":    -32602,
					"message": "Invalid params",
					"data":    map[string]any{"msg": "Input CLI command error"},
				},
				"id": 1,
			})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"result":  map[string]any{"body": body},
			"id":      1,
		})
	}))
	t.Cleanup(server.Close)
	return server
}
