package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/netx"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

// AuthRequiredFunc is called after the session has been dropped because the
// credentials could not be refreshed.
type AuthRequiredFunc func(ctx context.Context)

// HTTPClient talks to the task backend over HTTP+JSON.
type HTTPClient struct {
	baseURL        string
	http           *http.Client
	tokens         TokenStore
	logger         logging.Logger
	onAuthRequired AuthRequiredFunc

	refreshGroup singleflight.Group
	state        atomic.Int32
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

func WithAuthRequiredHandler(fn AuthRequiredFunc) Option {
	return func(c *HTTPClient) { c.onAuthRequired = fn }
}

// New creates a client for the backend at baseURL. A trailing slash on
// baseURL is ignored.
func New(baseURL string, tokens TokenStore, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		tokens:  tokens,
		logger:  logging.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetAuthRequiredHandler replaces the hook run when the session expires.
func (c *HTTPClient) SetAuthRequiredHandler(fn AuthRequiredFunc) {
	c.onAuthRequired = fn
}

// apiRequest describes one call relative to the base URL.
type apiRequest struct {
	method string
	path   string
	query  string
	body   any
	header http.Header
}

func (r apiRequest) String() string {
	return r.method + " " + r.path
}

// do sends req with the current access token. A 401 triggers one refresh and
// one retry; any other non-2xx status is returned as *HTTPError.
func (c *HTTPClient) do(ctx context.Context, req apiRequest, out any) error {
	payload, err := encodeBody(req.body)
	if err != nil {
		return err
	}

	resp, used, err := c.send(ctx, req, payload, true)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		discard(resp)

		if err := c.ensureFresh(ctx, used); err != nil {
			return err
		}

		resp, _, err = c.send(ctx, req, payload, true)
		if err != nil {
			return err
		}
	}

	return c.decode(resp, out)
}

// ensureFresh makes sure the stored access token is newer than used, running
// the refresh flow unless another caller already rotated it.
func (c *HTTPClient) ensureFresh(ctx context.Context, used string) error {
	current, ok, err := c.tokens.Access(ctx)
	if err == nil && ok && current != used {
		return nil
	}
	return c.refresh(ctx)
}

func (c *HTTPClient) send(ctx context.Context, req apiRequest, payload []byte, auth bool) (*http.Response, string, error) {
	u := c.baseURL + req.path
	if req.query != "" {
		u += "?" + req.query
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, u, body)
	if err != nil {
		return nil, "", fmt.Errorf("build request %s: %w", req, err)
	}

	httpReq.Header.Set(common.ContentTypeHeader, common.ContentTypeJSON)
	for k, vs := range req.header {
		httpReq.Header.Del(k)
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	httpReq.Header.Set(common.RequestIDHeader, uuid.NewString())

	var token string
	if auth {
		t, ok, err := c.tokens.Access(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("load access token: %w", err)
		}
		if ok {
			token = t
			httpReq.Header.Set(common.AuthorizationHeader, common.BearerPrefix+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		if netx.IsTransportError(err) {
			c.logger.Warn(ctx, "api request failed", "request", req.String(), "error", err)
			return nil, "", fmt.Errorf("%w: %s: %v", common.ErrNetwork, req, err)
		}
		return nil, "", fmt.Errorf("%s: %w", req, err)
	}

	c.logger.Debug(ctx, "api request",
		"request", req.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", httpReq.Header.Get(common.RequestIDHeader),
	)
	return resp, token, nil
}

// decode consumes resp. Non-2xx statuses become *HTTPError. A 204 leaves out
// untouched; any other empty body is an error when out is set.
func (c *HTTPClient) decode(resp *http.Response, out any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newHTTPError(resp, readDetail(resp.Body))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("decode response: %w", ErrEmptyResponse)
		}
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func encodeBody(body any) ([]byte, error) {
	if body == nil {
		return nil, nil
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return b, nil
}

func readDetail(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(b) == 0 {
		return ""
	}
	var apiErr models.APIError
	if json.Unmarshal(b, &apiErr) == nil {
		return apiErr.Detail
	}
	return ""
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
