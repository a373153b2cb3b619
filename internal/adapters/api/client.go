// Package api is the client for the Goal Forge REST backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"

	"github.com/PabloGalante/goal-forge/internal/domain"
	"github.com/PabloGalante/goal-forge/internal/observability"
)

const maxBodyBytes = 1 << 20

// TokenFunc returns the bearer token of the signed-in user, or "".
type TokenFunc func(ctx context.Context) string

type Client struct {
	baseURL string
	http    *http.Client
	token   TokenFunc
	limiter *rate.Limiter
	log     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithToken(fn TokenFunc) Option {
	return func(c *Client) { c.token = fn }
}

// WithRateLimit caps outgoing API calls. rps <= 0 disables the limit.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   func(context.Context) string { return "" },
		log:     observability.Logger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With("component", "api", "base_url", c.baseURL)
	return c
}

func (c *Client) Name() string { return "remote" }

// Ping reports whether GET /ping answered 200. Every other outcome,
// including transport errors and timeouts, is false.
func (c *Client) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ping", nil)
	if err != nil {
		return false
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug("ping failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	return resp.StatusCode == http.StatusOK
}

// Check lets the client act as a liveness.Checker.
func (c *Client) Check(ctx context.Context) bool {
	return c.Ping(ctx)
}

// request describes one authenticated API call.
type request struct {
	op       string // span and error label
	method   string
	path     string
	in       any
	out      any
	fallback string // message when a rejection carries no readable body
}

func (c *Client) do(ctx context.Context, r request) error {
	ctx, span := observability.StartSpan(ctx, "api."+r.op,
		attribute.String("http.method", r.method),
		attribute.String("http.path", r.path),
	)
	defer span.End()

	token := c.token(ctx)
	if token == "" {
		return domain.ErrNotAuthenticated
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &domain.TransportFailure{Op: r.op, Err: err}
		}
	}

	var body io.Reader
	if r.in != nil {
		b, err := json.Marshal(r.in)
		if err != nil {
			return fmt.Errorf("encoding %s request: %w", r.op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("building %s request: %w", r.op, err)
	}
	if r.in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if id := observability.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, "transport failure")
		c.log.Warn("api call failed", "op", r.op, "error", err)
		return &domain.TransportFailure{Op: r.op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		return &domain.TransportFailure{Op: r.op, Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rej := rejection(resp.StatusCode, data, r.fallback)
		span.SetStatus(otelcodes.Error, rej.Message)
		c.log.Warn("api call rejected", "op", r.op, "status", resp.StatusCode, "message", rej.Message)
		return rej
	}

	if r.out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, r.out); err != nil {
			return fmt.Errorf("decoding %s response: %w", r.op, err)
		}
	}
	return nil
}

// rejection extracts the backend's message: the JSON "message" field, then
// "error", then the raw body text, then fallback.
func rejection(status int, body []byte, fallback string) *domain.RemoteRejection {
	rej := &domain.RemoteRejection{Status: status, Message: fallback}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Message != "":
			rej.Message = payload.Message
		case payload.Error != "":
			rej.Message = payload.Error
		}
		return rej
	}

	if text := strings.TrimSpace(string(body)); text != "" {
		rej.Message = text
	}
	return rej
}

func goalPath(id domain.GoalID, suffix string) string {
	return "/api/goals/" + url.PathEscape(string(id)) + suffix
}
