package sessionkit

import (
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fintrack/sessionkit/authapi"
	"github.com/fintrack/sessionkit/internal/event"
	internalmetrics "github.com/fintrack/sessionkit/internal/metrics"
	"github.com/fintrack/sessionkit/routes"
	"github.com/fintrack/sessionkit/store"
)

// Builder assembles a [Session]. Construction is allocation-only until
// Build; no I/O happens before the first Session method call.
type Builder struct {
	config Config

	store       store.Store
	redisClient redis.UniversalClient
	httpClient  *http.Client
	sink        EventSink
	logger      zerolog.Logger
	onIndicator func(visible bool)
	now         func() time.Time

	built bool
}

// New creates a Builder with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

// WithConfig replaces the configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL sets the exchange base URL, keeping the rest of the config.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithStore sets the credential store. Exactly one of WithStore or
// WithRedis is required.
func (b *Builder) WithStore(s store.Store) *Builder {
	b.store = s
	return b
}

// WithRedis backs the credential store with Redis, namespaced by
// Config.Storage.RedisPrefix.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redisClient = client
	return b
}

// WithHTTPClient sets the http.Client used for exchange calls. It must be
// a plain client, not one wrapped in the authorization pipeline, or
// refresh would recurse into its own recovery stage.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.httpClient = c
	return b
}

// WithEventSink sets the receiver for session-lifecycle events.
func (b *Builder) WithEventSink(sink EventSink) *Builder {
	b.sink = sink
	return b
}

// WithLogger sets the structured logger. Defaults to a no-op logger.
func (b *Builder) WithLogger(log zerolog.Logger) *Builder {
	b.logger = log
	return b
}

// WithIndicatorCallback registers the visibility callback for the busy
// indicator (true on first acquire, false when the count returns to zero).
func (b *Builder) WithIndicatorCallback(fn func(visible bool)) *Builder {
	b.onIndicator = fn
	return b
}

// WithClock overrides the wall clock, for tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and wires the Session.
func (b *Builder) Build() (*Session, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	credStore := b.store
	if credStore == nil {
		if b.redisClient == nil {
			return nil, errors.New("credential store required (WithStore or WithRedis)")
		}
		credStore = store.NewRedisStore(b.redisClient, cfg.Storage.RedisPrefix)
	}

	table, err := routes.New(cfg.publicRoutes(), cfg.indicatorExemptRoutes())
	if err != nil {
		return nil, err
	}

	api, err := authapi.NewClient(cfg.API.BaseURL, authapi.Paths{
		Login:   cfg.API.LoginPath,
		Refresh: cfg.API.RefreshPath,
		Verify:  cfg.API.VerifyPath,
		Logout:  cfg.API.LogoutPath,
	}, b.httpClient, b.logger)
	if err != nil {
		return nil, err
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	s := &Session{
		cfg:       cfg,
		store:     credStore,
		api:       api,
		indicator: NewIndicator(b.onIndicator),
		routes:    table,
		log:       b.logger,
		now:       now,
		state:     StateUnauthenticated,
	}
	s.events = event.NewDispatcher(event.Config{
		Enabled:    cfg.Events.Enabled,
		BufferSize: cfg.Events.BufferSize,
		DropIfFull: cfg.Events.DropIfFull,
	}, b.sink)
	s.metrics = internalmetrics.New(internalmetrics.Config{Enabled: cfg.Metrics.Enabled})

	if reporter, ok := credStore.(store.CorruptReporter); ok {
		reporter.SetCorruptHook(func() {
			s.metrics.Inc(internalmetrics.MetricStoreCorruptCleared)
		})
	}

	b.built = true

	return s, nil
}
