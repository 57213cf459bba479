package nxapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sandevgo/devterm/internal/config"
	"github.com/sandevgo/devterm/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string, timeout time.Duration) *Client {
	return NewClient(&config.NXAPIConfig{
		Endpoint: url,
		Username: "admin",
		Password: "Admin_1234!",
		Timeout:  timeout,
		Insecure: true,
	})
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}
}

func TestClient_Execute(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		want     string
		wantKind core.FaultKind
		wantBody string
	}{
		{
			name:    "string body returned verbatim",
			handler: jsonHandler(http.StatusOK, `{"jsonrpc":"2.0","result":{"body":"Cisco NX-OS\n"},"id":1}`),
			want:    "Cisco NX-OS\n",
		},
		{
			name:    "object body is indented with key order kept",
			handler: jsonHandler(http.StatusOK, `{"result":{"body":{"host_name":"sbx-n9kv","kickstart_ver_str":"9.3(3)","uptime":{"days":3}}}}`),
			want: "{\n" +
				"  \"host_name\": \"sbx-n9kv\",\n" +
				"  \"kickstart_ver_str\": \"9.3(3)\",\n" +
				"  \"uptime\": {\n" +
				"    \"days\": 3\n" +
				"  }\n" +
				"}",
		},
		{
			name:    "array body keeps unicode and html characters",
			handler: jsonHandler(http.StatusOK, `{"result":{"body":["스위치","<a&b>"]}}`),
			want:    "[\n  \"스위치\",\n  \"<a&b>\"\n]",
		},
		{
			name:    "escaped unicode in object body is decoded",
			handler: jsonHandler(http.StatusOK, `{"result":{"body":{"name":"\uc2a4\uc704\uce58","desc":"a\u0026b \"q\""}}}`),
			want:    "{\n  \"name\": \"스위치\",\n  \"desc\": \"a&b \\\"q\\\"\"\n}",
		},
		{
			name:    "empty containers and numbers kept",
			handler: jsonHandler(http.StatusOK, `{"result":{"body":{"TABLE_intf":[],"attrs":{},"mtu":1.50e3,"up":true,"vrf":null}}}`),
			want:    "{\n  \"TABLE_intf\": [],\n  \"attrs\": {},\n  \"mtu\": 1.50e3,\n  \"up\": true,\n  \"vrf\": null\n}",
		},
		{
			name:    "escaped unicode in error data is decoded",
			handler: jsonHandler(http.StatusOK, `{"error":{"code":400,"message":"\u043e\u0448\u0438\u0431\u043a\u0430","data":{"msg":"\u00e9chec"}}}`),
			want:    "NX-API Error: ошибка (Code: 400)\nData: {\"msg\":\"échec\"}",
		},
		{
			name:    "scalar body keeps its json spelling",
			handler: jsonHandler(http.StatusOK, `{"result":{"body":42}}`),
			want:    "42",
		},
		{
			name:    "error object is displayable output",
			handler: jsonHandler(http.StatusOK, `{"error":{"code":-32602,"message":"Invalid params","data":{"msg":"% Invalid command"}},"id":1}`),
			want:    "NX-API Error: Invalid params (Code: -32602)\nData: {\"msg\":\"% Invalid command\"}",
		},
		{
			name:    "error object without fields",
			handler: jsonHandler(http.StatusOK, `{"error":{"unexpected":true}}`),
			want:    "NX-API Error: Unknown error (Code: N/A)\nData: ",
		},
		{
			name:    "neither result nor error",
			handler: jsonHandler(http.StatusOK, `{"jsonrpc":"2.0","id":1}`),
			want:    unknownFormat,
		},
		{
			name:    "result without body",
			handler: jsonHandler(http.StatusOK, `{"result":{"msg":"ok"}}`),
			want:    unknownFormat,
		},
		{
			name:    "top level array",
			handler: jsonHandler(http.StatusOK, `[1,2,3]`),
			want:    unknownFormat,
		},
		{
			name:     "error member that is not an object",
			handler:  jsonHandler(http.StatusOK, `{"error":"boom"}`),
			wantKind: core.RemoteInternalError,
		},
		{
			name:     "body is not json",
			handler:  jsonHandler(http.StatusOK, `<html>oops</html>`),
			wantKind: core.RemoteMalformedResponse,
			wantBody: "<html>oops</html>",
		},
		{
			name:     "empty body",
			handler:  jsonHandler(http.StatusOK, ``),
			wantKind: core.RemoteMalformedResponse,
		},
		{
			name:     "server error",
			handler:  jsonHandler(http.StatusInternalServerError, `internal failure`),
			wantKind: core.RemoteRejected,
			wantBody: "internal failure",
		},
		{
			name:     "redirect is not followed",
			handler:  http.RedirectHandler("/elsewhere", http.StatusFound).ServeHTTP,
			wantKind: core.RemoteRejected,
		},
		{
			name: "html rejection rendered as text",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/html")
				w.WriteHeader(http.StatusForbidden)
				fmt.Fprint(w, `<html><body><h1>403 Forbidden</h1><p>Access denied</p></body></html>`)
			},
			wantKind: core.RemoteRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewTLSServer(tt.handler)
			defer server.Close()

			got, err := newTestClient(server.URL, 5*time.Second).Execute(context.Background(), "show version")

			if tt.wantKind != 0 {
				require.Error(t, err)
				var fault *core.Fault
				require.True(t, errors.As(err, &fault), "expected *core.Fault, got %T", err)
				assert.Equal(t, tt.wantKind, fault.Kind)
				if tt.wantBody != "" {
					assert.Equal(t, tt.wantBody, fault.Body)
				}
				assert.Empty(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_RequestEnvelope(t *testing.T) {
	var (
		gotReq    Request
		gotRaw    map[string]any
		gotUser   string
		gotPass   string
		gotAuthOK bool
		gotCT     string
		gotMethod string
		gotUA     string
	)
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCT = r.Header.Get("Content-Type")
		gotUA = r.Header.Get("User-Agent")
		gotUser, gotPass, gotAuthOK = r.BasicAuth()
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotReq)
		_ = json.Unmarshal(data, &gotRaw)
		jsonHandler(http.StatusOK, `{"result":{"body":"ok"}}`)(w, r)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 5*time.Second).Execute(context.Background(), " show clock ")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, ContentType, gotCT)
	assert.Contains(t, gotUA, "devterm")
	assert.True(t, gotAuthOK)
	assert.Equal(t, "admin", gotUser)
	assert.Equal(t, "Admin_1234!", gotPass)

	assert.Equal(t, NewRequest(" show clock "), gotReq)
	assert.Equal(t, map[string]any{
		"jsonrpc": "2.0",
		"method":  "cli",
		"params":  map[string]any{"cmd": " show clock ", "version": float64(1)},
		"id":      float64(1),
	}, gotRaw)
}

func TestClient_AuthenticationFailure(t *testing.T) {
	server := httptest.NewTLSServer(jsonHandler(http.StatusUnauthorized, `{"error":"unauthorized"}`))
	defer server.Close()

	_, err := newTestClient(server.URL, 5*time.Second).Execute(context.Background(), "show version")

	var fault *core.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, core.RemoteRejected, fault.Kind)
	assert.Equal(t, http.StatusUnauthorized, fault.StatusCode)
	assert.True(t, fault.AuthFailed())
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	_, err := newTestClient(server.URL, 100*time.Millisecond).Execute(context.Background(), "show version")

	var fault *core.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, core.RemoteUnavailable, fault.Kind)
}

func TestClient_ConnectionRefused(t *testing.T) {
	server := httptest.NewTLSServer(jsonHandler(http.StatusOK, `{}`))
	url := server.URL
	server.Close()

	_, err := newTestClient(url, time.Second).Execute(context.Background(), "show version")

	var fault *core.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, core.RemoteUnavailable, fault.Kind)
}

func TestClient_CertificateVerification(t *testing.T) {
	server := httptest.NewTLSServer(jsonHandler(http.StatusOK, `{"result":{"body":"ok"}}`))
	defer server.Close()

	client := NewClient(&config.NXAPIConfig{
		Endpoint: server.URL,
		Timeout:  time.Second,
		Insecure: false,
	})
	_, err := client.Execute(context.Background(), "show version")

	var fault *core.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, core.RemoteUnavailable, fault.Kind)
}

func TestClient_CancelledContextIsNotAFault(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := newTestClient(server.URL, 5*time.Second).Execute(ctx, "show version")
	require.ErrorIs(t, err, context.Canceled)

	var fault *core.Fault
	assert.False(t, errors.As(err, &fault))
}

func TestClient_ResponseTooLarge(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"result":{"body":"`))
		_, _ = w.Write(bytes.Repeat([]byte("a"), maxResponseSize))
		_, _ = w.Write([]byte(`"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL, 10*time.Second).Execute(context.Background(), "show tech-support")

	var fault *core.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, core.RemoteInternalError, fault.Kind)
	assert.Contains(t, fault.Error(), "response too large")
	assert.Empty(t, fault.Body)
}
