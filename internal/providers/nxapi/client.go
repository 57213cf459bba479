// Package nxapi executes CLI commands on a Cisco NX-OS switch through the
// NX-API JSON-RPC endpoint.
package nxapi

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sandevgo/devterm/internal/config"
	"github.com/sandevgo/devterm/internal/core"
	"github.com/sandevgo/devterm/pkg/log"
)

const maxResponseSize = 8 << 20 // 8MB

var _ core.Executor = (*Client)(nil)

// Client is safe for concurrent use; it holds no per-call state.
type Client struct {
	client   *http.Client
	endpoint string
	username string
	password string
}

func NewClient(cfg *config.NXAPIConfig) *Client {
	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        16,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: cfg.Insecure, //nolint:gosec
				},
			},
			// A redirect is reported as a rejection rather than followed.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		endpoint: cfg.Endpoint,
		username: cfg.Username,
		password: cfg.Password,
	}
}

// Close drops idle keep-alive connections to the endpoint.
func (c *Client) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

// Execute runs one CLI command. Error objects returned by the switch are
// part of the output text; only failures of the exchange itself are faults.
// If ctx is cancelled the context error is returned unwrapped.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	logger := log.FromCtx(ctx)

	payload, err := json.Marshal(NewRequest(command))
	if err != nil {
		return "", &core.Fault{Kind: core.RemoteInternalError, Err: fmt.Errorf("marshal: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &core.Fault{Kind: core.RemoteInternalError, Err: fmt.Errorf("create request: %w", err)}
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Type", ContentType)
	req.Header.Set("User-Agent", core.DevtermUserAgent)

	logger.Info().Str("endpoint", c.endpoint).Str("command", command).Msg("sending nx-api command")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Error().Err(err).Msg("nx-api request failed")
		return "", &core.Fault{Kind: core.RemoteUnavailable, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize+1))
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		logger.Error().Err(err).Msg("nx-api response read failed")
		return "", &core.Fault{Kind: core.RemoteUnavailable, Err: fmt.Errorf("read body: %w", err)}
	}

	if len(data) > maxResponseSize {
		logger.Error().Int("limit", maxResponseSize).Msg("nx-api response too large")
		return "", &core.Fault{
			Kind: core.RemoteInternalError,
			Err:  fmt.Errorf("response too large: exceeds %d bytes", maxResponseSize),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fault := &core.Fault{
			Kind:       core.RemoteRejected,
			StatusCode: resp.StatusCode,
			Body:       bodyText(resp.Header, data),
			Err:        fmt.Errorf("http %d", resp.StatusCode),
		}
		if fault.AuthFailed() {
			logger.Error().Str("user", c.username).Msg("nx-api authentication failed")
		} else {
			logger.Error().Int("status", resp.StatusCode).Str("body", fault.Body).Msg("nx-api rejected request")
		}
		return "", fault
	}

	out, err := parseResponse(data)
	if err != nil {
		logger.Error().Err(err).Str("command", command).Msg("nx-api response unusable")
		return "", err
	}
	return out, nil
}

// parseResponse maps a 2xx body to output text.
func parseResponse(data []byte) (string, error) {
	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return "", &core.Fault{Kind: core.RemoteMalformedResponse, Body: string(data), Err: fmt.Errorf("decode: %w", err)}
	}

	var envelope response
	if err := json.Unmarshal(data, &envelope); err != nil {
		// Valid JSON, but not an object.
		return unknownFormat, nil
	}

	if truthy(envelope.Result) {
		var result map[string]json.RawMessage
		if err := json.Unmarshal(envelope.Result, &result); err == nil {
			if body, ok := result["body"]; ok {
				return renderBody(body), nil
			}
		}
	}

	if truthy(envelope.Error) {
		var rpcErr map[string]json.RawMessage
		if err := json.Unmarshal(envelope.Error, &rpcErr); err != nil {
			return "", &core.Fault{Kind: core.RemoteInternalError, Err: errors.New("error member is not an object: " + string(envelope.Error))}
		}
		return formatRPCError(rpcErr), nil
	}

	return unknownFormat, nil
}
