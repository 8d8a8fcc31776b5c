package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/client"
	"github.com/dmitrijs2005/gophtasks/internal/client/config"
	"github.com/dmitrijs2005/gophtasks/internal/client/services"
	"github.com/dmitrijs2005/gophtasks/internal/client/session"
	"github.com/dmitrijs2005/gophtasks/internal/client/storage"
	"github.com/dmitrijs2005/gophtasks/internal/client/taskcache"
	"github.com/dmitrijs2005/gophtasks/internal/client/tokenstore"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
)

// Streams are the terminal streams the App talks to.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

type App struct {
	config *config.Config
	auth   services.AuthService
	tasks  services.TaskService
	logger logging.Logger

	in     io.Reader
	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	closers []func() error
}

// NewApp opens the local database and builds the client stack for cfg. The
// stored session, if any, is restored without contacting the server.
func NewApp(ctx context.Context, cfg *config.Config, streams Streams) (*App, error) {
	logger := logging.New(streams.Err, cfg.LogLevel, cfg.LogFormat)

	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	a := newApp(cfg, streams, logger)
	a.closers = append(a.closers, db.Close)

	tokens := tokenstore.New(db)
	api := client.New(cfg.ServerBaseURL, tokens,
		client.WithTimeout(cfg.RequestTimeout),
		client.WithLogger(logger),
	)
	sess := session.New(api, tokens, logger)
	api.SetAuthRequiredHandler(sess.Expire)

	cache := taskcache.New(api, sess,
		taskcache.WithNotifier(taskcache.NotifierFunc(a.notify)),
		taskcache.WithLogger(logger),
	)
	a.auth = services.NewAuthService(sess, cache)
	a.tasks = services.NewTaskService(api, sess, cache, cfg.PageSize, logger)

	if err := a.auth.Init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func newApp(cfg *config.Config, streams Streams, logger logging.Logger) *App {
	return &App{
		config: cfg,
		logger: logger,
		in:     streams.In,
		reader: bufio.NewReader(streams.In),
		out:    streams.Out,
		now:    time.Now,
	}
}

// Close releases the local database.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.auth.Whoami()
	return ok
}

func (a *App) status() string {
	if u, ok := a.auth.Whoami(); ok {
		return u.Email
	}
	return "signed out"
}

func (a *App) notify(n taskcache.Notification) {
	if n.Level == taskcache.LevelError {
		fmt.Fprintln(a.out, "! "+n.Message)
		return
	}
	fmt.Fprintln(a.out, n.Message)
}
