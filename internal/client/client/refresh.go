package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// RefreshState is the state of the token refresh flow.
type RefreshState int32

const (
	StateIdle RefreshState = iota
	StateRefreshing
)

func (s RefreshState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	}
	return fmt.Sprintf("RefreshState(%d)", int32(s))
}

const refreshKey = "refresh"

var errNoRefreshToken = errors.New("no refresh token stored")

func (c *HTTPClient) State() RefreshState {
	return RefreshState(c.state.Load())
}

// RefreshTokens exchanges the stored refresh token for a new pair.
func (c *HTTPClient) RefreshTokens(ctx context.Context) error {
	return c.refresh(ctx)
}

// refresh runs the refresh flow, sharing one in-flight call between all
// concurrent callers. The flow itself is detached from the cancellation of
// whichever caller started it.
func (c *HTTPClient) refresh(ctx context.Context) error {
	ch := c.refreshGroup.DoChan(refreshKey, func() (any, error) {
		return nil, c.refreshOnce(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *HTTPClient) refreshOnce(ctx context.Context) error {
	c.state.Store(int32(StateRefreshing))
	defer c.state.Store(int32(StateIdle))

	rt, ok, err := c.tokens.Refresh(ctx)
	if err != nil {
		return c.expire(ctx, fmt.Errorf("load refresh token: %w", err))
	}
	if !ok {
		return c.expire(ctx, errNoRefreshToken)
	}

	req := apiRequest{
		method: http.MethodPost,
		path:   "/auth/refresh",
		body:   models.RefreshRequest{RefreshToken: rt},
	}
	payload, err := encodeBody(req.body)
	if err != nil {
		return c.expire(ctx, err)
	}

	resp, _, err := c.send(ctx, req, payload, false)
	if err != nil {
		return c.expire(ctx, err)
	}

	var pair models.TokenPair
	if err := c.decode(resp, &pair); err != nil {
		return c.expire(ctx, err)
	}
	if pair.AccessToken == "" {
		return c.expire(ctx, errors.New("refresh response has no access token"))
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = rt
	}

	if err := c.tokens.Set(ctx, pair); err != nil {
		// the new pair is still held in memory
		c.logger.Warn(ctx, "failed to persist refreshed tokens", "error", err)
	}

	c.logger.Info(ctx, "access token refreshed")
	return nil
}

// expire drops the stored credentials and reports the session as gone.
func (c *HTTPClient) expire(ctx context.Context, cause error) error {
	c.logger.Warn(ctx, "token refresh failed", "error", cause)

	if err := c.tokens.Clear(ctx); err != nil {
		c.logger.Error(ctx, "failed to clear tokens", "error", err)
	}
	if c.onAuthRequired != nil {
		c.onAuthRequired(ctx)
	}

	if errors.Is(cause, common.ErrNetwork) {
		return fmt.Errorf("%w: %w", common.ErrAuthRequired, cause)
	}
	return fmt.Errorf("%w: %v", common.ErrAuthRequired, cause)
}
