package sessionkit

import (
	"context"
	"fmt"

	internalmetrics "github.com/fintrack/sessionkit/internal/metrics"
)

// refreshCall is the in-flight refresh slot. The first caller to observe
// expiry performs the exchange; everyone arriving while done is open waits
// for the same result instead of issuing a redundant remote call.
type refreshCall struct {
	done chan struct{}
	cred *Credential
	err  error
}

// Refresh exchanges the stored token for a fresh one. Concurrent calls are
// collapsed into a single remote refresh whose result every caller shares.
// A rejected refresh always ends the session; there is no state where the
// process believes itself authenticated with a token it cannot refresh.
func (s *Session) Refresh(ctx context.Context) (*Credential, error) {
	if s == nil || s.api == nil {
		return nil, ErrNotReady
	}

	s.mu.Lock()
	if call := s.refresh; call != nil {
		s.mu.Unlock()
		s.metricInc(internalmetrics.MetricRefreshDeduped)
		select {
		case <-call.done:
			return call.cred.Clone(), call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	call := &refreshCall{done: make(chan struct{})}
	s.refresh = call
	s.mu.Unlock()

	// Detached from the winning caller's context: a caller that navigates
	// away must not cancel the refresh every waiter depends on.
	call.cred, call.err = s.doRefresh(context.WithoutCancel(ctx))

	s.mu.Lock()
	s.refresh = nil
	s.mu.Unlock()
	close(call.done)

	return call.cred.Clone(), call.err
}

func (s *Session) doRefresh(ctx context.Context) (*Credential, error) {
	cur, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("credential store unreachable during refresh")
	}
	if cur == nil {
		s.metricInc(internalmetrics.MetricRefreshFailure)
		s.forceLogout(ctx, "no_stored_token", ErrNoToken)
		return nil, ErrNoToken
	}

	resp, err := s.api.Refresh(ctx, cur.AccessToken)
	if err != nil {
		return nil, s.refreshFailed(ctx, cur.User.ID, cur.User.Email, err)
	}

	cred, err := s.credentialFrom(resp)
	if err != nil {
		return nil, s.refreshFailed(ctx, cur.User.ID, cur.User.Email, err)
	}

	if err := s.store.Save(ctx, cred); err != nil {
		s.log.Warn().Err(err).Msg("credential save failed after refresh")
	}

	user := cred.User
	s.mu.Lock()
	s.state = StateAuthenticated
	s.user = &user
	s.mu.Unlock()

	s.metricInc(internalmetrics.MetricRefreshSuccess)
	s.emit(ctx, EventRefreshSuccess, user.ID, user.Email, true, nil, nil)
	s.log.Debug().Str("user_id", user.ID).Msg("credential refreshed")

	return cred.Clone(), nil
}

func (s *Session) refreshFailed(ctx context.Context, userID, email string, cause error) error {
	s.metricInc(internalmetrics.MetricRefreshFailure)
	s.emit(ctx, EventRefreshFailure, userID, email, false, cause, nil)
	s.forceLogout(ctx, "refresh_rejected", cause)
	return fmt.Errorf("%w: %w", ErrRefreshRejected, cause)
}

// ValidToken returns the stored access token if it is still inside its
// validity window. An expired credential is cleared as a side effect: this
// read path never hands out a token the store itself considers dead.
func (s *Session) ValidToken(ctx context.Context) (string, bool) {
	if s == nil {
		return "", false
	}

	cred, err := s.store.Load(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("credential store unreachable")
		return "", false
	}
	if cred == nil {
		return "", false
	}
	if cred.ExpiredBy(s.now(), s.cfg.Refresh.ExpiryMargin) {
		if err := s.store.Clear(ctx); err != nil {
			s.log.Warn().Err(err).Msg("expired credential clear failed")
		}
		s.metricInc(internalmetrics.MetricTokenExpiredCleared)
		s.log.Debug().Err(ErrTokenExpired).Msg("expired credential cleared on read")
		return "", false
	}
	return cred.AccessToken, true
}
