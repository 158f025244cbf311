package sessionkit

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	API     APIConfig
	Storage StorageConfig
	Refresh RefreshConfig
	Routes  RoutesConfig
	Events  EventConfig
	Metrics MetricsConfig
}

// APIConfig locates the credential exchange.
type APIConfig struct {
	BaseURL     string
	LoginPath   string
	RefreshPath string
	VerifyPath  string
	LogoutPath  string
	HealthPath  string
}

// StorageConfig tunes store construction done by the builder.
type StorageConfig struct {
	// RedisPrefix namespaces the two Redis keys when the builder creates
	// the store from a Redis client.
	RedisPrefix string
}

// RefreshConfig tunes expiry handling.
type RefreshConfig struct {
	// ExpiryMargin treats a token as expired this long before its actual
	// deadline, so a request issued just before expiry does not arrive
	// with a dead credential.
	ExpiryMargin time.Duration
}

// RoutesConfig lists endpoint classifications as rooted path prefixes.
// The exchange paths from APIConfig are always public and always
// indicator-exempt; they do not need to be repeated here.
type RoutesConfig struct {
	Public          []string
	IndicatorExempt []string
}

// EventConfig controls the session-event dispatcher.
type EventConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls metric collection.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: conventional exchange
// paths, a 30 second expiry margin, events and metrics enabled.
func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			LoginPath:   "/auth/google",
			RefreshPath: "/auth/refresh",
			VerifyPath:  "/auth/verify",
			LogoutPath:  "/auth/logout",
			HealthPath:  "/health",
		},
		Refresh: RefreshConfig{
			ExpiryMargin: 30 * time.Second,
		},
		Routes: RoutesConfig{
			Public: []string{"/auth/register"},
		},
		Events: EventConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func defaultConfig() Config { return DefaultConfig() }

// Validate checks the configuration for contradictions. Called by
// [Builder.Build]; exposed for callers that assemble Config by hand.
func (c Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API.BaseURL required")
	}
	for name, p := range map[string]string{
		"LoginPath":   c.API.LoginPath,
		"RefreshPath": c.API.RefreshPath,
		"VerifyPath":  c.API.VerifyPath,
		"LogoutPath":  c.API.LogoutPath,
	} {
		if p == "" {
			return fmt.Errorf("API.%s required", name)
		}
		if !strings.HasPrefix(p, "/") {
			return fmt.Errorf("API.%s %q: must start with /", name, p)
		}
	}
	if c.API.HealthPath != "" && !strings.HasPrefix(c.API.HealthPath, "/") {
		return fmt.Errorf("API.HealthPath %q: must start with /", c.API.HealthPath)
	}
	if c.Refresh.ExpiryMargin < 0 {
		return errors.New("Refresh.ExpiryMargin must not be negative")
	}
	if c.Events.Enabled && c.Events.BufferSize < 0 {
		return errors.New("Events.BufferSize must not be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Routes.Public = append([]string(nil), cfg.Routes.Public...)
	out.Routes.IndicatorExempt = append([]string(nil), cfg.Routes.IndicatorExempt...)
	return out
}

// publicRoutes is the union of configured public routes and the exchange
// paths that are public by construction.
func (c Config) publicRoutes() []string {
	out := append([]string(nil), c.Routes.Public...)
	for _, p := range []string{c.API.LoginPath, c.API.RefreshPath, c.API.HealthPath} {
		if p != "" && !containsRoute(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// indicatorExemptRoutes is the union of configured exempt routes, the
// health check, and the silent refresh path.
func (c Config) indicatorExemptRoutes() []string {
	out := append([]string(nil), c.Routes.IndicatorExempt...)
	for _, p := range []string{c.API.RefreshPath, c.API.HealthPath} {
		if p != "" && !containsRoute(out, p) {
			out = append(out, p)
		}
	}
	return out
}

func containsRoute(set []string, p string) bool {
	for _, s := range set {
		if s == p {
			return true
		}
	}
	return false
}
