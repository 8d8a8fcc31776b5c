package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/client/storage"
	"github.com/dmitrijs2005/gophtasks/internal/client/tokenstore"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/testutil/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *tokenstore.Store {
	t.Helper()
	db, err := storage.Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return tokenstore.New(db)
}

type env struct {
	api    *fakeapi.Server
	tokens *tokenstore.Store
	client *HTTPClient
	expiry atomic.Int32
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{api: fakeapi.New(t), tokens: newStore(t)}
	e.api.AddUser("u1", "a@b.com", "secret1")
	e.client = New(e.api.URL, e.tokens, WithAuthRequiredHandler(func(context.Context) {
		e.expiry.Add(1)
	}))
	return e
}

func (e *env) login(t *testing.T) models.TokenPair {
	t.Helper()
	pair, err := e.client.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, e.tokens.Set(context.Background(), pair))
	return pair
}

func TestHTTPClient_ListSendsBearerToken(t *testing.T) {
	e := newEnv(t)
	pair := e.login(t)

	res, err := e.client.ListTasks(context.Background(), "u1", models.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Tasks)

	reqs := e.api.RequestsTo(http.MethodGet, "/api/u1/")
	require.Len(t, reqs, 1)
	assert.Equal(t, "limit=50&offset=0", reqs[0].RawQuery)
	assert.Equal(t, "Bearer "+pair.AccessToken, reqs[0].Authorization)
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestHTTPClient_ListWithCompletedFilter(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.api.AddTask("u1", models.Task{Title: "open"})
	e.api.AddTask("u1", models.Task{Title: "done", Completed: true})

	done := true
	res, err := e.client.ListTasks(context.Background(), "u1", models.ListOptions{Limit: 10, Completed: &done})
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)
	assert.Equal(t, "done", res.Tasks[0].Title)
	assert.Equal(t, 1, res.Total)

	reqs := e.api.RequestsTo(http.MethodGet, "/api/u1/")
	require.Len(t, reqs, 1)
	assert.Equal(t, "limit=10&offset=0&completed=true", reqs[0].RawQuery)
}

func TestHTTPClient_RefreshesOnceAndRetries(t *testing.T) {
	e := newEnv(t)
	old := e.login(t)
	e.api.AddTask("u1", models.Task{Title: "buy milk"})
	e.api.ExpireAccessTokens()

	res, err := e.client.ListTasks(context.Background(), "u1", models.ListOptions{})
	require.NoError(t, err)
	require.Len(t, res.Tasks, 1)

	assert.Equal(t, 1, e.api.RefreshCalls())
	reqs := e.api.RequestsTo(http.MethodGet, "/api/u1/")
	require.Len(t, reqs, 2)
	assert.Equal(t, "Bearer "+old.AccessToken, reqs[0].Authorization)
	assert.NotEqual(t, reqs[0].Authorization, reqs[1].Authorization)
	assert.NotEqual(t, reqs[0].RequestID, reqs[1].RequestID)

	access, ok, err := e.tokens.Access(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Bearer "+access, reqs[1].Authorization)

	refresh, _, err := e.tokens.Refresh(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, old.RefreshToken, refresh)
	assert.Equal(t, StateIdle, e.client.State())
	assert.Zero(t, e.expiry.Load())
}

func TestHTTPClient_RefreshFailureClearsSession(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.api.ExpireAccessTokens()
	e.api.RevokeRefreshTokens()

	_, err := e.client.ListTasks(context.Background(), "u1", models.ListOptions{})
	require.ErrorIs(t, err, common.ErrAuthRequired)

	_, ok, err := e.tokens.Access(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = e.tokens.Refresh(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, int32(1), e.expiry.Load())
	assert.Len(t, e.api.RequestsTo(http.MethodGet, "/api/u1/"), 1, "original request must not be retried")
}

func TestHTTPClient_NoRefreshTokenRequiresAuth(t *testing.T) {
	e := newEnv(t)

	_, err := e.client.ListTasks(context.Background(), "u1", models.ListOptions{})
	require.ErrorIs(t, err, common.ErrAuthRequired)
	assert.Zero(t, e.api.RefreshCalls())
	assert.Equal(t, int32(1), e.expiry.Load())

	reqs := e.api.RequestsTo(http.MethodGet, "/api/u1/")
	require.Len(t, reqs, 1)
	assert.Empty(t, reqs[0].Authorization)
}

func TestHTTPClient_UnauthorizedRetryIsHTTPError(t *testing.T) {
	var refreshes, calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth/refresh" {
			refreshes.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"access_token":"T2","refresh_token":"R2"}`))
			return
		}
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	}))
	t.Cleanup(srv.Close)

	tokens := newStore(t)
	require.NoError(t, tokens.Set(context.Background(), models.TokenPair{AccessToken: "T1", RefreshToken: "R1"}))
	c := New(srv.URL, tokens)

	_, err := c.GetTask(context.Background(), "u1", "7")
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.False(t, errors.Is(err, common.ErrAuthRequired))
	assert.Equal(t, int32(1), refreshes.Load())
	assert.Equal(t, int32(2), calls.Load())

	access, _, err := tokens.Access(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "T2", access)
}

func TestHTTPClient_NonAuthErrorsAreNotRetried(t *testing.T) {
	e := newEnv(t)
	e.login(t)

	_, err := e.client.GetTask(context.Background(), "u1", "42")
	require.Error(t, err)

	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.StatusCode)
	assert.Equal(t, "Task not found", he.Detail)
	assert.Contains(t, err.Error(), "API request failed: Not Found")
	assert.ErrorIs(t, err, common.ErrNotFound)

	e.api.FailNext(http.MethodGet, "/api/u1/", http.StatusInternalServerError)
	_, err = e.client.ListTasks(context.Background(), "u1", models.ListOptions{})
	assert.Equal(t, http.StatusInternalServerError, StatusCode(err))

	assert.Len(t, e.api.RequestsTo(http.MethodGet, "/api/u1/42"), 1)
	assert.Len(t, e.api.RequestsTo(http.MethodGet, "/api/u1/"), 1)
	assert.Zero(t, e.api.RefreshCalls())
}

func TestHTTPClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	tokens := newStore(t)
	require.NoError(t, tokens.Set(context.Background(), models.TokenPair{AccessToken: "T1", RefreshToken: "R1"}))
	c := New(url, tokens)

	_, err := c.ListTasks(context.Background(), "u1", models.ListOptions{})
	require.ErrorIs(t, err, common.ErrNetwork)
	assert.Contains(t, err.Error(), "network error")

	_, ok, err := tokens.Access(context.Background())
	require.NoError(t, err)
	assert.True(t, ok, "a transport failure must not drop the session")
}

func TestHTTPClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.api.ExpireAccessTokens()
	release := e.api.HoldRefresh()
	t.Cleanup(release)

	const n = 5
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = e.client.ListTasks(context.Background(), "u1", models.ListOptions{})
		}()
	}

	require.Eventually(t, func() bool {
		return len(e.api.RequestsTo(http.MethodGet, "/api/u1/")) == n && e.api.RefreshCalls() == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateRefreshing, e.client.State())

	time.Sleep(50 * time.Millisecond)
	release()
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, 1, e.api.RefreshCalls())
	assert.Len(t, e.api.RequestsTo(http.MethodGet, "/api/u1/"), 2*n)
	assert.Equal(t, StateIdle, e.client.State())
}

func TestHTTPClient_CallerCancelDuringRefresh(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	e.api.ExpireAccessTokens()
	release := e.api.HoldRefresh()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := e.client.ListTasks(ctx, "u1", models.ListOptions{})
		errc <- err
	}()

	require.Eventually(t, func() bool { return e.api.RefreshCalls() == 1 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	err := <-errc
	require.ErrorIs(t, err, context.Canceled)

	release()
	require.Eventually(t, func() bool { return e.client.State() == StateIdle }, 2*time.Second, 5*time.Millisecond)

	_, ok, err := e.tokens.Access(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, e.expiry.Load())
}

func TestHTTPClient_LoginFailure(t *testing.T) {
	e := newEnv(t)

	_, err := e.client.Login(context.Background(), models.LoginRequest{Email: "a@b.com", Password: "wrong"})
	require.ErrorIs(t, err, ErrLoginFailed)
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Zero(t, e.api.RefreshCalls())
	assert.Zero(t, e.expiry.Load())
}

func TestHTTPClient_TaskMutations(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	ctx := context.Background()

	high := models.PriorityHigh
	desc := "  2 litres  "
	created, err := e.client.CreateTask(ctx, "u1", models.TaskCreate{Title: " buy milk ", Description: &desc, Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, "buy milk", created.Title)
	assert.Equal(t, "2 litres", created.Description)
	assert.Equal(t, models.PriorityHigh, created.Priority)
	assert.NotEmpty(t, created.ID)

	title := "buy oat milk"
	updated, err := e.client.UpdateTask(ctx, "u1", created.ID, models.TaskUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, updated.Title)
	assert.Equal(t, "2 litres", updated.Description)

	puts := e.api.RequestsTo(http.MethodPut, "/api/u1/"+created.ID.String())
	require.Len(t, puts, 1)
	assert.JSONEq(t, `{"title":"buy oat milk"}`, string(puts[0].Body))

	toggled, err := e.client.ToggleTask(ctx, "u1", created.ID, true)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)

	got, err := e.client.GetTask(ctx, "u1", created.ID)
	require.NoError(t, err)
	assert.True(t, got.Completed)

	require.NoError(t, e.client.DeleteTask(ctx, "u1", created.ID))
	assert.Empty(t, e.api.Tasks("u1"))
}

func TestHTTPClient_InvalidPayloadSendsNothing(t *testing.T) {
	e := newEnv(t)
	e.login(t)
	before := len(e.api.Requests())

	_, err := e.client.CreateTask(context.Background(), "u1", models.TaskCreate{Title: "   "})
	require.ErrorIs(t, err, common.ErrValidation)

	long := strings.Repeat("x", models.MaxTitleLength+1)
	_, err = e.client.UpdateTask(context.Background(), "u1", "1", models.TaskUpdate{Title: &long})
	require.ErrorIs(t, err, common.ErrValidation)

	assert.Len(t, e.api.Requests(), before)
}

func TestHTTPClient_RequiresUser(t *testing.T) {
	e := newEnv(t)

	_, err := e.client.ListTasks(context.Background(), "", models.ListOptions{})
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Empty(t, e.api.Requests())
}

func TestHTTPClient_EmptySuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL, newStore(t))
	ctx := context.Background()

	_, err := c.ToggleTask(ctx, "u1", "1", true)
	require.ErrorIs(t, err, ErrEmptyResponse)

	_, err = c.GetTask(ctx, "u1", "1")
	require.ErrorIs(t, err, ErrEmptyResponse)

	require.NoError(t, c.DeleteTask(ctx, "u1", "1"), "no result is expected from a delete")
}

func TestHTTPClient_EscapesPathAndMergesHeaders(t *testing.T) {
	var gotPath, gotCT, gotCustom string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotCT = r.Header.Get("Content-Type")
		gotCustom = r.Header.Get("X-Trace")
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL+"/", newStore(t))
	err := c.do(context.Background(), apiRequest{
		method: http.MethodDelete,
		path:   taskPath("a/b", "1 2"),
		header: http.Header{"X-Trace": {"abc"}},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "/api/a%2Fb/1%202", gotPath)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "abc", gotCustom)
}

func TestRefreshState_String(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "refreshing", StateRefreshing.String())
	assert.Equal(t, "RefreshState(9)", RefreshState(9).String())
}
