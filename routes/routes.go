// Package routes classifies outgoing request paths as public or protected
// and marks routes that must not drive the busy indicator.
//
// Classification is compiled once from explicit path prefixes and matched
// on whole path segments. "/auth/login" matches "/auth/login" and
// "/auth/login/google" but never "/accounts/auth/login-history": substring
// accidents cannot demote a protected endpoint.
package routes

import (
	"fmt"
	"strings"
)

type route struct {
	segments []string
}

func (r route) matches(segments []string) bool {
	if len(segments) < len(r.segments) {
		return false
	}
	for i, s := range r.segments {
		if segments[i] != s {
			return false
		}
	}
	return true
}

// Table is an immutable classification of endpoint paths. Build it once at
// configuration time with [New]; lookups are allocation-light and safe for
// concurrent use.
type Table struct {
	public          []route
	indicatorExempt []route
}

// New compiles the public and indicator-exempt prefix sets. Every entry
// must be a rooted path like "/auth/login".
func New(public, indicatorExempt []string) (*Table, error) {
	compile := func(kind string, paths []string) ([]route, error) {
		out := make([]route, 0, len(paths))
		for _, p := range paths {
			if !strings.HasPrefix(p, "/") {
				return nil, fmt.Errorf("%s route %q: must start with /", kind, p)
			}
			segs := split(p)
			if len(segs) == 0 {
				return nil, fmt.Errorf("%s route %q: empty path", kind, p)
			}
			out = append(out, route{segments: segs})
		}
		return out, nil
	}

	public_, err := compile("public", public)
	if err != nil {
		return nil, err
	}
	exempt, err := compile("indicator-exempt", indicatorExempt)
	if err != nil {
		return nil, err
	}
	return &Table{public: public_, indicatorExempt: exempt}, nil
}

// Public reports whether path needs no attached credential.
func (t *Table) Public(path string) bool {
	return match(t.public, path)
}

// IndicatorExempt reports whether a call to path must not flicker the
// global busy indicator (health checks, silent refresh).
func (t *Table) IndicatorExempt(path string) bool {
	return match(t.indicatorExempt, path)
}

// PublicCount returns the number of compiled public routes.
func (t *Table) PublicCount() int { return len(t.public) }

// ExemptCount returns the number of compiled indicator-exempt routes.
func (t *Table) ExemptCount() int { return len(t.indicatorExempt) }

func match(set []route, path string) bool {
	segs := split(path)
	for _, r := range set {
		if r.matches(segs) {
			return true
		}
	}
	return false
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}
