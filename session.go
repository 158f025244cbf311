package sessionkit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/fintrack/sessionkit/authapi"
	"github.com/fintrack/sessionkit/internal/event"
	internalmetrics "github.com/fintrack/sessionkit/internal/metrics"
	"github.com/fintrack/sessionkit/routes"
	"github.com/fintrack/sessionkit/store"
)

// Session owns the process-wide session state: who is authenticated,
// whether a login is in flight, and the last login error. It is the single
// writer of the credential store and the single read path the authorization
// pipeline uses for tokens.
//
// Session instances are built once through [Builder.Build] and are safe
// for concurrent use afterwards.
type Session struct {
	cfg       Config
	store     store.Store
	api       *authapi.Client
	indicator *Indicator
	routes    *routes.Table
	events    *event.Dispatcher
	metrics   *internalmetrics.Metrics
	log       zerolog.Logger
	now       func() time.Time

	mu      sync.Mutex
	state   State
	user    *UserSnapshot
	loading bool
	lastErr string
	refresh *refreshCall

	verifyWG sync.WaitGroup
}

// Snapshot returns a copy of the observable session state.
func (s *Session) Snapshot() SessionSnapshot {
	if s == nil {
		return SessionSnapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionSnapshot{
		State:     s.state,
		User:      s.user.Clone(),
		Loading:   s.loading,
		LastError: s.lastErr,
	}
}

// Initialize restores the session from the credential store. A valid
// stored credential is adopted optimistically: the session reports the
// stored user immediately and enters [StateVerifying] while the exchange
// confirms the token in the background. Verification failure ends the
// session without any caller involvement.
func (s *Session) Initialize(ctx context.Context) (SessionSnapshot, error) {
	if s == nil || s.api == nil {
		return SessionSnapshot{}, ErrNotReady
	}

	cred, err := s.store.LoadValid(ctx, s.now(), s.cfg.Refresh.ExpiryMargin)
	if err != nil {
		s.log.Warn().Err(err).Msg("credential store unreachable during init")
	}
	if cred == nil {
		s.mu.Lock()
		s.state = StateUnauthenticated
		s.user = nil
		s.mu.Unlock()
		return s.Snapshot(), nil
	}

	user := cred.User
	s.mu.Lock()
	s.state = StateVerifying
	s.user = &user
	s.loading = true
	s.mu.Unlock()

	// The verification must outlive the caller's context: navigation away
	// from the splash screen should not strand the session in Verifying.
	vctx := context.WithoutCancel(ctx)
	s.verifyWG.Add(1)
	go func() {
		defer s.verifyWG.Done()
		s.verifyStored(vctx, cred.AccessToken)
	}()

	return s.Snapshot(), nil
}

func (s *Session) verifyStored(ctx context.Context, accessToken string) {
	fresh, err := s.api.Verify(ctx, accessToken)
	if err != nil {
		cause := fmt.Errorf("%w: %w", ErrVerifyRejected, err)
		s.metricInc(internalmetrics.MetricVerifyFailure)
		s.emit(ctx, EventVerifyFailure, "", "", false, cause, nil)
		s.forceLogout(ctx, "verify_failed", cause)
		return
	}

	user := *fresh
	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = &user
	s.loading = false
	s.mu.Unlock()

	s.metricInc(internalmetrics.MetricVerifySuccess)
	s.emit(ctx, EventVerifySuccess, user.ID, user.Email, true, nil, nil)
	s.log.Debug().Str("user_id", user.ID).Msg("stored session verified")
}

// Login exchanges an external identity token for a session. On failure the
// current session, if any, is left untouched: failing to log in is not the
// same as losing a session. The returned error matches [ErrLoginRejected]
// and, when the server answered, an [*authapi.StatusError].
func (s *Session) Login(ctx context.Context, externalToken string) (*UserSnapshot, error) {
	if s == nil || s.api == nil {
		return nil, ErrNotReady
	}

	s.mu.Lock()
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	resp, err := s.api.Login(ctx, externalToken)
	if err != nil {
		return nil, s.loginFailed(ctx, err)
	}

	cred, err := s.credentialFrom(resp)
	if err != nil {
		return nil, s.loginFailed(ctx, err)
	}

	if err := s.store.Save(ctx, cred); err != nil {
		// The session still works for this process; it just will not
		// survive a restart.
		s.log.Warn().Err(err).Msg("credential save failed, session is memory-only")
	}

	user := cred.User
	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = &user
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()

	s.metricInc(internalmetrics.MetricLoginSuccess)
	s.emit(ctx, EventLoginSuccess, user.ID, user.Email, true, nil, nil)
	s.log.Info().Str("user_id", user.ID).Msg("login succeeded")

	return user.Clone(), nil
}

func (s *Session) loginFailed(ctx context.Context, cause error) error {
	msg := "login failed"
	var se *authapi.StatusError
	if errors.As(cause, &se) && se.Message != "" {
		msg = se.Message
	}

	s.mu.Lock()
	s.loading = false
	s.lastErr = msg
	s.mu.Unlock()

	s.metricInc(internalmetrics.MetricLoginFailure)
	s.emit(ctx, EventLoginFailure, "", "", false, cause, nil)
	s.log.Info().Err(cause).Msg("login rejected")

	return fmt.Errorf("%w: %w", ErrLoginRejected, cause)
}

// Logout ends the session. The remote revocation is best effort; local
// state and storage are cleared regardless. The emitted [EventLogout] is
// the navigation collaborator's cue to return to the login screen.
func (s *Session) Logout(ctx context.Context) {
	if s == nil {
		return
	}

	userID, email := s.currentIdentity()

	if cred, _ := s.store.Load(ctx); cred != nil {
		if err := s.api.Logout(ctx, cred.AccessToken); err != nil {
			s.log.Debug().Err(err).Msg("remote logout failed, proceeding locally")
		}
	}

	s.clearLocal(ctx)
	s.metricInc(internalmetrics.MetricLogout)
	s.emit(ctx, EventLogout, userID, email, true, nil, nil)
}

// forceLogout ends the session after an implicit failure (refresh or
// verify). Silent by policy: the user did nothing wrong, their session
// simply expired.
func (s *Session) forceLogout(ctx context.Context, reason string, cause error) {
	userID, email := s.currentIdentity()

	s.clearLocal(ctx)
	s.metricInc(internalmetrics.MetricForcedLogout)
	s.emit(ctx, EventForcedLogout, userID, email, false, cause, map[string]string{"reason": reason})
	s.log.Info().Str("reason", reason).Msg("session ended")
}

func (s *Session) clearLocal(ctx context.Context) {
	if err := s.store.Clear(ctx); err != nil {
		s.log.Warn().Err(err).Msg("credential clear failed")
	}

	s.mu.Lock()
	s.state = StateUnauthenticated
	s.user = nil
	s.loading = false
	s.lastErr = ""
	s.mu.Unlock()
}

func (s *Session) currentIdentity() (userID, email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return "", ""
	}
	return s.user.ID, s.user.Email
}

// credentialFrom computes the wall-clock expiry for an exchange response.
// expires_in wins when present; otherwise the exp claim of the access
// token is used.
func (s *Session) credentialFrom(resp *authapi.TokenResponse) (*Credential, error) {
	if resp.AccessToken == "" {
		return nil, errors.New("exchange returned empty access token")
	}

	var expires time.Time
	if resp.ExpiresIn > 0 {
		expires = s.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	} else {
		exp, ok := authapi.ExpiryFromToken(resp.AccessToken)
		if !ok {
			return nil, errors.New("exchange response carries no expiry")
		}
		expires = exp
	}

	return &store.Credential{
		AccessToken: resp.AccessToken,
		ExpiresAt:   expires.UnixMilli(),
		User:        resp.User,
	}, nil
}

// ResetIndicator forces the busy indicator to zero. Navigation teardown
// calls this so an abandoned request cannot leave the indicator stuck.
func (s *Session) ResetIndicator() {
	if s == nil {
		return
	}
	if s.indicator.Visible() {
		s.metricInc(internalmetrics.MetricIndicatorReset)
	}
	s.indicator.Reset()
}

// Indicator returns the session's busy-indicator counter.
func (s *Session) Indicator() *Indicator {
	if s == nil {
		return nil
	}
	return s.indicator
}

// Routes returns the compiled endpoint classification table.
func (s *Session) Routes() *routes.Table {
	if s == nil {
		return nil
	}
	return s.routes
}

// RefreshPath returns the exchange's refresh endpoint path. The recovery
// stage uses it to exempt refresh calls from 401 recovery.
func (s *Session) RefreshPath() string {
	if s == nil {
		return ""
	}
	return s.cfg.API.RefreshPath
}

// Metrics returns the live counter set. Pipeline stages use it to record
// events the Session itself does not observe, such as re-issued requests.
func (s *Session) Metrics() *Metrics {
	if s == nil {
		return nil
	}
	return s.metrics
}

// MetricsSnapshot returns a deep copy of all pipeline counters.
func (s *Session) MetricsSnapshot() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return s.metrics.Snapshot()
}

// EventsDropped reports how many session events were discarded because the
// dispatcher buffer was full.
func (s *Session) EventsDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.events.Dropped()
}

// Close waits for any background verification and drains the event
// dispatcher. The session remains queryable but stops emitting.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.verifyWG.Wait()
	s.events.Close()
}

func (s *Session) metricInc(id internalmetrics.MetricID) {
	if s == nil {
		return
	}
	s.metrics.Inc(id)
}

func (s *Session) emit(ctx context.Context, typ, userID, email string, success bool, cause error, meta map[string]string) {
	if s == nil || s.events == nil {
		return
	}
	ev := event.Event{
		Timestamp: s.now(),
		Type:      typ,
		UserID:    userID,
		Email:     email,
		Success:   success,
		Metadata:  meta,
	}
	if cause != nil {
		ev.Error = cause.Error()
	}
	s.events.Emit(ctx, ev)
}
