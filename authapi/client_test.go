package authapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, DefaultPaths(), srv.Client(), zerolog.Nop())
	if err != nil {
		t.Fatalf("client init failed: %v", err)
	}
	return c
}

func TestLoginDecodesTokenResponse(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/google" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token != "valid-google-token" {
			t.Errorf("unexpected login body: %+v (%v)", req, err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"abc","expires_in":3600,"user":{"id":"u1","email":"alice@example.com"}}`)
	}))

	resp, err := c.Login(context.Background(), "valid-google-token")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if resp.AccessToken != "abc" || resp.ExpiresIn != 3600 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.User.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", resp.User)
	}
}

func TestLoginRejectsEmptyToken(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("server must not be reached")
	}))
	if _, err := c.Login(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty token")
	}
}

func TestRefreshSendsBearer(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer old-token" {
			t.Errorf("authorization header = %q", got)
		}
		fmt.Fprint(w, `{"access_token":"new-token","expires_in":3600,"user":{"id":"u1"}}`)
	}))

	resp, err := c.Refresh(context.Background(), "old-token")
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	if resp.AccessToken != "new-token" {
		t.Fatalf("unexpected token: %q", resp.AccessToken)
	}
}

func TestStatusErrorCarriesServerPayload(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message":"validation failed","errors":{"amount":["must be positive"],"date":["required"]}}`)
	}))

	_, err := c.Verify(context.Background(), "tok")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", se.Status)
	}
	if got := se.FieldDetail(); got != "amount: must be positive; date: required" {
		t.Fatalf("field detail = %q", got)
	}
}

func TestStatusErrorToleratesNonJSONBody(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		fmt.Fprint(w, "<html>upstream dead</html>")
	}))

	err := c.Logout(context.Background(), "tok")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Status != http.StatusBadGateway || se.Message != "" {
		t.Fatalf("unexpected status error: %+v", se)
	}
}

func TestTransportFailureIsNotStatusError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // connection refused from here on

	c, err := NewClient(srv.URL, DefaultPaths(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("client init failed: %v", err)
	}

	_, err = c.Login(context.Background(), "tok")
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Fatalf("transport failure must not be a StatusError")
	}
}

func TestExpiryFromToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	token := unsignedJWT(t, map[string]any{"sub": "u1", "exp": exp})

	got, ok := ExpiryFromToken(token)
	if !ok {
		t.Fatalf("expected exp claim")
	}
	if got.Unix() != exp {
		t.Fatalf("exp = %v, want %v", got.Unix(), exp)
	}

	if _, ok := ExpiryFromToken("opaque-token"); ok {
		t.Fatalf("opaque token must not yield an expiry")
	}
	if _, ok := ExpiryFromToken(unsignedJWT(t, map[string]any{"sub": "u1"})); ok {
		t.Fatalf("token without exp must not yield an expiry")
	}
}

// unsignedJWT builds a syntactically valid JWT with an empty signature.
func unsignedJWT(t *testing.T, claims map[string]any) string {
	t.Helper()

	encode := func(v any) string {
		data, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal jwt part: %v", err)
		}
		return base64.RawURLEncoding.EncodeToString(data)
	}
	header := encode(map[string]string{"alg": "none", "typ": "JWT"})
	return header + "." + encode(claims) + "."
}
