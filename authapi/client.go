package authapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/fintrack/sessionkit/store"
)

// maxErrorBody bounds how much of a failure payload is read.
const maxErrorBody = 64 << 10

// Paths locates the four exchange endpoints relative to the base URL.
type Paths struct {
	Login   string
	Refresh string
	Verify  string
	Logout  string
}

// DefaultPaths returns the conventional endpoint layout.
func DefaultPaths() Paths {
	return Paths{
		Login:   "/auth/google",
		Refresh: "/auth/refresh",
		Verify:  "/auth/verify",
		Logout:  "/auth/logout",
	}
}

// Client talks to the credential exchange. It holds no session state;
// every call that needs a bearer credential receives it explicitly.
type Client struct {
	base  *url.URL
	paths Paths
	http  *http.Client
	log   zerolog.Logger
}

// NewClient creates a Client for the exchange at baseURL. A nil httpClient
// falls back to http.DefaultClient; note the exchange client must NOT be
// wrapped in the authorization pipeline, or refresh would recurse.
func NewClient(baseURL string, paths Paths, httpClient *http.Client, log zerolog.Logger) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q: scheme and host required", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{base: base, paths: paths, http: httpClient, log: log}, nil
}

// Login exchanges an external identity token for an access token.
func (c *Client) Login(ctx context.Context, externalToken string) (*TokenResponse, error) {
	if externalToken == "" {
		return nil, errors.New("empty external token")
	}
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, c.paths.Login, "", LoginRequest{Token: externalToken}, &out); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return &out, nil
}

// Refresh exchanges the current (possibly expired) access token for a new
// one. The server accepts recently expired tokens on this endpoint only.
func (c *Client) Refresh(ctx context.Context, accessToken string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.do(ctx, http.MethodPost, c.paths.Refresh, accessToken, nil, &out); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return &out, nil
}

// Verify confirms the stored token against the server and returns the
// authoritative user snapshot.
func (c *Client) Verify(ctx context.Context, accessToken string) (*store.UserSnapshot, error) {
	var out store.UserSnapshot
	if err := c.do(ctx, http.MethodGet, c.paths.Verify, accessToken, nil, &out); err != nil {
		return nil, fmt.Errorf("verify: %w", err)
	}
	return &out, nil
}

// Logout tells the server to revoke the session. Best effort: callers
// proceed with local logout whether or not this succeeds.
func (c *Client) Logout(ctx context.Context, accessToken string) error {
	if err := c.do(ctx, http.MethodPost, c.paths.Logout, accessToken, nil, nil); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path, bearer string, in, out any) error {
	target := c.base.JoinPath(strings.TrimPrefix(path, "/"))

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// No status code exists: this is a transport failure, not a
		// StatusError.
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		se := decodeStatusError(resp)
		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("message", se.Message).
			Msg("exchange call rejected")
		return se
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeStatusError builds a StatusError from a non-2xx response,
// tolerating empty and non-JSON bodies.
func decodeStatusError(resp *http.Response) *StatusError {
	se := &StatusError{Status: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return se
	}

	parsed := ParseErrorBody(data)
	se.Message = parsed.Message
	se.Detail = parsed.Detail
	se.Fields = parsed.Fields
	return se
}
