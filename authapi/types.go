package authapi

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/fintrack/sessionkit/store"
)

// LoginRequest carries the external identity token (e.g. a Google ID
// token) to the login endpoint. The token is opaque to this library.
type LoginRequest struct {
	Token string `json:"token"`
}

// TokenResponse is the success payload of login and refresh.
type TokenResponse struct {
	AccessToken string             `json:"access_token"`
	ExpiresIn   int64              `json:"expires_in"`
	User        store.UserSnapshot `json:"user"`
}

// errorBody is the JSON shape servers use for failures.
type errorBody struct {
	Message string              `json:"message"`
	Detail  string              `json:"detail"`
	Errors  map[string][]string `json:"errors"`
}

// ParsedErrorBody is the decoded failure payload, for callers that peek
// at a response body themselves (the normalization stage).
type ParsedErrorBody struct {
	Message string
	Detail  string
	Fields  map[string][]string
}

// ParseErrorBody decodes a server failure payload, tolerating non-JSON
// bodies (everything stays empty).
func ParseErrorBody(data []byte) ParsedErrorBody {
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ParsedErrorBody{}
	}
	return ParsedErrorBody{Message: body.Message, Detail: body.Detail, Fields: body.Errors}
}

// StatusError is a non-2xx answer from the API. Status is always set;
// Message, Detail, and Fields are filled from the response body when the
// server supplied them. UserMessage is populated by the normalization
// stage of the pipeline and may be empty here.
type StatusError struct {
	Status      int
	Message     string
	Detail      string
	Fields      map[string][]string
	UserMessage string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

// FieldDetail flattens the per-field validation errors into one line,
// fields in stable order: "amount: must be positive; date: required".
func (e *StatusError) FieldDetail() string {
	if len(e.Fields) == 0 {
		return ""
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+strings.Join(e.Fields[name], ", "))
	}
	return strings.Join(parts, "; ")
}
