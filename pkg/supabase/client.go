// Package supabase is a lightweight client for the Supabase auth (GoTrue) and
// row (PostgREST) APIs. It uses raw HTTP calls rather than an SDK.
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrNotConfigured is returned when the project URL or API key is missing.
var ErrNotConfigured = errors.New("supabase: not configured")

// APIError is a non-2xx response from Supabase. Message is the human readable
// text the service returned and is safe to show to users.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("supabase: status %d", e.Status)
}

// noRowsCode is the PostgREST code for "single object requested, zero rows returned".
const noRowsCode = "PGRST116"

// IsNotFound reports whether err means the requested row does not exist.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == noRowsCode || apiErr.Status == http.StatusNotFound
}

// Client talks to one Supabase project.
type Client struct {
	BaseURL    string
	AnonKey    string
	ServiceKey string // service_role key; used for server-side calls without a user token

	httpClient *http.Client
	log        *logrus.Logger
}

// NewClient returns a Client for the project at baseURL.
func NewClient(baseURL, anonKey, serviceKey string) *Client {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		AnonKey:    anonKey,
		ServiceKey: serviceKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithLogger replaces the logger used for outbound request logs.
func (c *Client) WithLogger(log *logrus.Logger) *Client {
	c.log = log
	return c
}

// Configured reports whether the client has enough settings to make calls.
func (c *Client) Configured() bool {
	return c.BaseURL != "" && c.AnonKey != ""
}

// apiKey is the project key sent in the apikey header.
func (c *Client) apiKey() string {
	if c.AnonKey != "" {
		return c.AnonKey
	}
	return c.ServiceKey
}

// bearer picks the Authorization token: the caller's access token when given,
// otherwise the service key, otherwise the anon key.
func (c *Client) bearer(accessToken string) string {
	switch {
	case accessToken != "":
		return accessToken
	case c.ServiceKey != "":
		return c.ServiceKey
	default:
		return c.AnonKey
	}
}

type request struct {
	method      string
	path        string
	query       string
	accessToken string
	body        any
	headers     map[string]string
}

// do sends req and decodes a JSON response into out (when out is non-nil).
func (c *Client) do(ctx context.Context, req request, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var body io.Reader
	if req.body != nil {
		b, err := json.Marshal(req.body)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	endpoint := c.BaseURL + req.path
	if req.query != "" {
		endpoint += "?" + req.query
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("apikey", c.apiKey())
	httpReq.Header.Set("Authorization", "Bearer "+c.bearer(req.accessToken))
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.headers {
		httpReq.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	fields := logrus.Fields{
		"method":      req.method,
		"path":        req.path,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		c.log.WithFields(fields).WithError(err).Warn("supabase request failed")
		return err
	}
	defer resp.Body.Close()
	fields["status"] = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		apiErr := decodeError(resp.StatusCode, raw)
		c.log.WithFields(fields).WithField("code", apiErr.Code).Warn(apiErr.Error())
		return apiErr
	}
	c.log.WithFields(fields).Debug("supabase request")

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// decodeError understands both the GoTrue and PostgREST error envelopes.
func decodeError(status int, raw []byte) *APIError {
	var env struct {
		// PostgREST
		Code    any    `json:"code"`
		Message string `json:"message"`
		// GoTrue
		ErrorCode        string `json:"error_code"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(raw, &env); err != nil {
		apiErr.Message = strings.TrimSpace(string(raw))
		return apiErr
	}

	switch code := env.Code.(type) {
	case string:
		apiErr.Code = code
	}
	if apiErr.Code == "" {
		apiErr.Code = env.ErrorCode
	}
	if apiErr.Code == "" {
		apiErr.Code = env.Error
	}

	for _, m := range []string{env.Msg, env.Message, env.ErrorDescription, env.Error} {
		if m != "" {
			apiErr.Message = m
			break
		}
	}
	return apiErr
}

// Ping checks that the project's auth service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, request{method: http.MethodGet, path: "/auth/v1/health"}, nil)
}
