package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/internal/config"
	"github.com/aretw0/switchboard/internal/logging"
	"github.com/aretw0/switchboard/pkg/adapters/amqp"
	"github.com/aretw0/switchboard/pkg/adapters/file"
	httpadapter "github.com/aretw0/switchboard/pkg/adapters/http"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/adapters/mock"
	"github.com/aretw0/switchboard/pkg/adapters/process"
	redisadapter "github.com/aretw0/switchboard/pkg/adapters/redis"
	"github.com/aretw0/switchboard/pkg/adapters/sqlstore"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/handlers"
	"github.com/aretw0/switchboard/pkg/observability"
	"github.com/aretw0/switchboard/pkg/persistence/middleware"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/registry"
	"github.com/aretw0/switchboard/pkg/routing"
	"github.com/redis/go-redis/v9"
)

// AppOptions are the command-line overrides applied on top of the config file.
type AppOptions struct {
	ConfigPath string
	Debug      bool
	// LogWriter receives logs (os.Stderr by default, keeping stdout for results).
	LogWriter io.Writer
	// Metrics and Streams are only wired when the caller serves HTTP.
	Metrics bool
	Streams bool
}

// App bundles an orchestrator with the collaborators built from config.
type App struct {
	Config       *config.Config
	Logger       *slog.Logger
	Orchestrator *switchboard.Orchestrator
	Deps         routing.Deps
	Metrics      *observability.Metrics
	Streams      *httpadapter.StreamManager

	closers []func(context.Context) error
}

// NewApp loads configuration and builds an App from it.
func NewApp(opts AppOptions) (*App, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		cfg.Log.Level = "debug"
	}
	logger, err := createLogger(opts.LogWriter, cfg.Log)
	if err != nil {
		return nil, err
	}
	return BuildApp(cfg, logger, opts)
}

// BuildApp wires the orchestrator from an already loaded configuration.
func BuildApp(cfg *config.Config, logger *slog.Logger, opts AppOptions) (*App, error) {
	app := &App{Config: cfg, Logger: logger}

	ok := false
	defer func() {
		if !ok {
			_ = app.Close(context.Background())
		}
	}()

	// 1. Collaborators referenced by the routing table
	mailer, err := app.createMailer()
	if err != nil {
		return nil, err
	}
	tools, err := app.createRegistry()
	if err != nil {
		return nil, err
	}
	app.Deps = routing.Deps{Tools: tools, Mailers: map[string]ports.Mailer{}}
	if mailer != nil {
		app.Deps.Mailers["default"] = mailer
	}

	// 2. Handlers: routing table when configured, stock registry otherwise
	hs, err := app.loadHandlers()
	if err != nil {
		return nil, err
	}

	// 3. Transcript
	store, err := app.createStore()
	if err != nil {
		return nil, err
	}
	if store, err = app.wrapStore(store); err != nil {
		return nil, err
	}

	// 4. Hooks
	hookSets := []domain.LifecycleHooks{observability.LoggingHooks(logger)}
	if opts.Metrics {
		app.Metrics = observability.NewMetrics()
		hookSets = append(hookSets, app.Metrics.Hooks())
	}
	if opts.Streams {
		app.Streams = httpadapter.NewStreamManager()
		hookSets = append(hookSets, app.Streams.Hooks())
	}

	swOpts := []switchboard.Option{
		switchboard.WithLogger(logger),
		switchboard.WithTranscriptStore(store),
		switchboard.WithLifecycleHooks(observability.Combine(hookSets...)),
	}

	// 5. Tracing
	if cfg.Tracing.Enabled {
		shutdown, err := app.setupTracing()
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, shutdown)
	}

	// 6. Cross-replica serialization
	if cfg.Lock.Enabled {
		client := app.redisClient()
		swOpts = append(swOpts, switchboard.WithDistributedLocker(redisadapter.NewLocker(client, ""), cfg.Lock.Key, cfg.Lock.TTL))
	}

	orch, err := switchboard.New(hs, swOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing orchestrator: %w", err)
	}
	app.Orchestrator = orch
	// The orchestrator owns the store from here on.
	app.closers = append([]func(context.Context) error{func(context.Context) error { return orch.Close() }}, app.closers...)

	ok = true
	return app, nil
}

// createRegistry starts from the canned tools and adds the executables of tools.file.
func (a *App) createRegistry() (*registry.Registry, error) {
	reg := registry.NewMockRegistry()
	path := a.Config.Tools.File
	if path == "" {
		return reg, nil
	}
	tools, err := process.LoadTools(path)
	if err != nil {
		return nil, err
	}
	for _, t := range tools {
		reg.Register(t.Name, process.NewSource(t, filepath.Dir(path)))
	}
	a.Logger.Info("Process tools registered", "path", path, "tools", len(tools))
	return reg, nil
}

func (a *App) loadHandlers() ([]ports.Handler, error) {
	if a.Config.Routing.File == "" {
		return handlers.Default(), nil
	}
	hs, err := routing.LoadHandlers(a.Config.Routing.File, a.Deps)
	if err != nil {
		return nil, fmt.Errorf("error loading routing table: %w", err)
	}
	a.Logger.Info("Routing table loaded", "path", a.Config.Routing.File, "handlers", len(hs))
	return hs, nil
}

func (a *App) createStore() (ports.TranscriptStore, error) {
	tc := a.Config.Transcript
	switch tc.Backend {
	case "file":
		var opts []file.Option
		if tc.Capacity > 0 {
			opts = append(opts, file.WithMaxEntries(tc.Capacity))
		}
		return file.New(tc.File, opts...), nil
	case "redis":
		opts := []redisadapter.Option{redisadapter.WithName(tc.Name), redisadapter.WithTTL(tc.TTL)}
		if tc.Capacity > 0 {
			opts = append(opts, redisadapter.WithMaxLen(int64(tc.Capacity)))
		}
		return redisadapter.NewFromClient(a.newRedisClient(), opts...), nil
	case "sqlite":
		return sqlstore.Open(sqlstore.DriverSQLite, tc.DSN, sqlstore.WithName(tc.Name))
	case "mysql":
		return sqlstore.Open(sqlstore.DriverMySQL, tc.DSN, sqlstore.WithName(tc.Name))
	default:
		var opts []memory.Option
		if tc.Capacity > 0 {
			opts = append(opts, memory.WithCapacity(tc.Capacity))
		}
		return memory.NewTranscript(opts...), nil
	}
}

// wrapStore applies redaction, then encryption, as configured.
func (a *App) wrapStore(store ports.TranscriptStore) (ports.TranscriptStore, error) {
	tc := a.Config.Transcript
	var mws []middleware.Middleware

	patterns := append([]string(nil), tc.Redact...)
	if tc.RedactPII {
		patterns = append(patterns, middleware.DefaultPIIPatterns...)
	}
	if len(patterns) > 0 {
		mw, err := middleware.NewPIIMiddleware(patterns)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		mws = append(mws, mw)
	}

	if tc.EncryptionKey != "" {
		keys, err := middleware.ParseKeys(tc.EncryptionKey, tc.FallbackKeys...)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("transcript.encryption_key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(keys)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		mws = append(mws, mw)
	}

	return middleware.Chain(store, mws...), nil
}

func (a *App) createMailer() (ports.Mailer, error) {
	switch a.Config.Mailer.Backend {
	case "mock":
		return &mock.Mailer{}, nil
	case "rabbitmq":
		m, err := amqp.NewMailer(amqp.Config{URL: a.Config.RabbitMQ.URL, Queue: a.Config.Mailer.Queue, Durable: true})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return m.Close() })
		return m, nil
	default:
		return nil, nil
	}
}

// NewQueue opens the configured job queue. The caller closes it.
func (a *App) NewQueue() (ports.JobQueue, error) {
	qc := a.Config.Queue
	switch qc.Backend {
	case "redis":
		return redisadapter.NewQueue(a.newRedisClient(), qc.Name, 0, redisadapter.WithLogger(a.Logger)), nil
	case "rabbitmq":
		return amqp.NewQueue(amqp.Config{
			URL:      a.Config.RabbitMQ.URL,
			Queue:    qc.Name,
			Prefetch: a.Config.RabbitMQ.Prefetch,
			Durable:  true,
		}, amqp.WithLogger(a.Logger))
	default:
		return memory.NewQueue(qc.Size), nil
	}
}

// newRedisClient returns a client owned by its single consumer, which closes it.
func (a *App) newRedisClient() *redis.Client {
	rc := a.Config.Redis
	return redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
}

// redisClient returns a client closed together with the App.
func (a *App) redisClient() *redis.Client {
	client := a.newRedisClient()
	a.closers = append(a.closers, func(context.Context) error { return client.Close() })
	return client
}

func (a *App) setupTracing() (func(context.Context) error, error) {
	path := a.Config.Tracing.File
	if path == "" {
		return observability.SetupTracing("switchboard", switchboard.Version, os.Stderr)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	shutdown, err := observability.SetupTracing("switchboard", switchboard.Version, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return func(ctx context.Context) error {
		return errors.Join(shutdown(ctx), f.Close())
	}, nil
}

// Close releases everything the App opened, in order.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for _, c := range a.closers {
		if err := c(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func createLogger(w io.Writer, lc config.LogConfig) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level, err := logging.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(w, level, lc.Format), nil
}
