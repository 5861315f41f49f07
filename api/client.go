package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"asistenciaBot/logger"
)

// TokenSource yields the bearer token of the chat's current session, or ""
// when the chat is not logged in.
type TokenSource interface {
	Token(chatID int64) string
}

// AuthFailureHandler is invoked when an authenticated request comes back
// 401. It must clear the chat's session and send it back to the login
// prompt; call sites cannot suppress it.
type AuthFailureHandler interface {
	AuthFailure(ctx context.Context, chatID int64)
}

// Client is the gateway to the primary REST API. Every request runs under
// the caller's context, carries the chat's bearer token when one exists and
// is never retried.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *logger.Logger

	mu            sync.RWMutex
	onAuthFailure AuthFailureHandler
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource, log *logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		tokens:  tokens,
		logger:  log,
	}
}

// SetAuthFailureHandler wires the global 401 teardown. Set once during
// application configuration, after store and bot exist.
func (c *Client) SetAuthFailureHandler(h AuthFailureHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthFailure = h
}

func (c *Client) authFailureHandler() AuthFailureHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onAuthFailure
}

func (c *Client) do(ctx context.Context, chatID int64, method, path string, in, out interface{}) error {
	return c.doRequest(ctx, chatID, method, path, in, out, true)
}

func (c *Client) doRequest(ctx context.Context, chatID int64, method, path string, in, out interface{}, withAuth bool) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	var token string
	if withAuth {
		token = c.tokens.Token(chatID)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		var errBody errorBody
		_ = json.NewDecoder(resp.Body).Decode(&errBody)

		// A 401 on an authenticated request means the token is dead: the
		// session is cleared globally. Login itself carries no token and
		// is recovered at the login prompt.
		if token != "" {
			c.logger.Warnf("Token rejected for chat %d on %s %s, tearing session down", chatID, method, path)
			if h := c.authFailureHandler(); h != nil {
				h.AuthFailure(ctx, chatID)
			}
		}
		return &AuthenticationError{Mensaje: errBody.Mensaje}
	}

	if resp.StatusCode >= 300 {
		var errBody errorBody
		_ = json.NewDecoder(resp.Body).Decode(&errBody)
		c.logger.Debugf("API %s %s returned %d: %s", method, path, resp.StatusCode, errBody.Mensaje)
		return mapError(resp.StatusCode, errBody)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}
	return nil
}

func (c *Client) get(ctx context.Context, chatID int64, path string, out interface{}) error {
	return c.do(ctx, chatID, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, chatID int64, path string, in, out interface{}) error {
	return c.do(ctx, chatID, http.MethodPost, path, in, out)
}

func (c *Client) postNoAuth(ctx context.Context, chatID int64, path string, in, out interface{}) error {
	return c.doRequest(ctx, chatID, http.MethodPost, path, in, out, false)
}

func (c *Client) put(ctx context.Context, chatID int64, path string, in, out interface{}) error {
	return c.do(ctx, chatID, http.MethodPut, path, in, out)
}

func (c *Client) patch(ctx context.Context, chatID int64, path string, in, out interface{}) error {
	return c.do(ctx, chatID, http.MethodPatch, path, in, out)
}

func (c *Client) delete(ctx context.Context, chatID int64, path string) error {
	return c.do(ctx, chatID, http.MethodDelete, path, nil, nil)
}
