package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/goliatone/go-transfers/components/admin"
	"github.com/goliatone/go-transfers/components/chat"
	"github.com/goliatone/go-transfers/components/dashboard"
	"github.com/goliatone/go-transfers/components/session"
	"github.com/goliatone/go-transfers/components/web"
	"github.com/goliatone/go-transfers/components/web/gorouter"
	"github.com/goliatone/go-transfers/components/web/httpapi"
	"github.com/goliatone/go-transfers/pkg/activity"
	"github.com/goliatone/go-transfers/pkg/activity/usersink"
	"github.com/goliatone/go-transfers/pkg/config"
	"github.com/goliatone/go-transfers/pkg/logging"
	"github.com/goliatone/go-transfers/pkg/telemetry"
)

const shutdownTimeout = 5 * time.Second

type serveCmd struct {
	Addr          string `help:"Listen address (overrides TRANSFERS_ADDR)."`
	LogLevel      string `name:"log-level" help:"Log level (overrides TRANSFERS_LOG_LEVEL)."`
	Fixtures      string `type:"path" help:"Fixtures YAML file (overrides TRANSFERS_FIXTURES)."`
	Transport     string `default:"gorouter" enum:"gorouter,http" help:"HTTP stack: go-router on fiber, or net/http."`
	SecureCookies bool   `name:"secure-cookies" help:"Mark the session cookie Secure."`
	NoMetrics     bool   `name:"no-metrics" help:"Do not start the Prometheus listener."`
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cmd.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, _, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	recorders := telemetry.Multi{telemetry.NewZapRecorder(logger.Named("telemetry"))}
	if !cmd.NoMetrics {
		prom, err := telemetry.NewPrometheusRecorder(telemetry.MetricsConfig{})
		if err != nil {
			return err
		}
		recorders = append(recorders, prom)
		go serveMetrics(ctx, cfg.MetricsAddr, logger)
	}

	app, closeApp, err := buildApp(ctx, cfg, recorders, logger)
	if err != nil {
		return err
	}
	defer closeApp()

	logger.Info("transfers ready",
		zap.String("addr", cfg.Addr),
		zap.String("transport", cmd.Transport),
		zap.String("admin", cfg.Admin.Email),
	)
	if cmd.Transport == "http" {
		return serveHTTP(ctx, cfg.Addr, httpapi.New(app), cmd.SecureCookies)
	}
	return serveRouter(ctx, cfg.Addr, app, cmd.SecureCookies)
}

func (cmd *serveCmd) apply(cfg *config.Config) {
	if cmd.Addr != "" {
		cfg.Addr = cmd.Addr
	}
	if cmd.LogLevel != "" {
		cfg.LogLevel = cmd.LogLevel
	}
	if cmd.Fixtures != "" {
		cfg.Fixtures = cmd.Fixtures
	}
}

func buildApp(ctx context.Context, cfg config.Config, recorder telemetry.Recorder, logger *zap.Logger) (*web.App, func(), error) {
	kv, err := session.OpenSQLiteKV(cfg.SessionDB)
	if err != nil {
		return nil, nil, err
	}
	closeKV := func() {
		if err := kv.Close(); err != nil {
			logger.Warn("close session db", zap.Error(err))
		}
	}
	fail := func(err error) (*web.App, func(), error) {
		closeKV()
		return nil, nil, err
	}

	sessions, err := session.NewManager(session.Options{
		KV:        kv,
		Admin:     session.Credentials{Email: cfg.Admin.Email, Password: cfg.Admin.Password},
		MockUser:  session.DefaultMockUser(),
		Telemetry: recorder,
	})
	if err != nil {
		return fail(err)
	}
	tokens, err := session.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return fail(err)
	}

	fixtures, err := loadFixtures(cfg.Fixtures)
	if err != nil {
		return fail(err)
	}
	hooks := activity.Hooks{usersink.Hook{Sink: activityLog{logger: logger.Named("activity")}}}
	store, err := admin.NewStore(admin.Options{
		Fixtures:    fixtures,
		Credentials: admin.Credentials{Email: cfg.Admin.Email, Password: cfg.Admin.Password},
		Telemetry:   recorder,
		Activity:    activity.NewEmitter(hooks, activity.Config{Enabled: cfg.Activity}),
	})
	if err != nil {
		return fail(err)
	}

	renderer, err := web.NewTemplateRenderer()
	if err != nil {
		return fail(err)
	}
	location, err := cfg.Location()
	if err != nil {
		return fail(err)
	}
	charts := dashboard.NewEChartsRenderer(
		dashboard.WithChartCache(dashboard.NewChartCache(cfg.ChartTTL)),
		dashboard.WithChartTheme(cfg.ChartTheme),
		dashboard.WithChartAssetsHost(cfg.ChartAssets),
	)
	app, err := web.NewApp(web.Options{
		Sessions:  sessions,
		Tokens:    tokens,
		Admin:     store,
		Chat:      chat.NewHub(chat.HubOptions{Telemetry: recorder}),
		Dashboard: dashboard.NewService(dashboard.Options{Charts: charts, Telemetry: recorder}),
		Renderer:  renderer,
		Logger:    logger,
		Telemetry: recorder,
		Location:  location,
	})
	if err != nil {
		return fail(err)
	}
	logger.Debug("fixtures loaded", zap.String("source", fixtures.Source), zap.Any("collections", fixtures.Summary()))
	return app, closeKV, nil
}

func serveRouter(ctx context.Context, addr string, app *web.App, secure bool) error {
	server := gorouter.NewServer()
	if err := gorouter.Register(gorouter.Config[*fiber.App]{
		Router:        server.Router(),
		App:           app,
		SecureCookies: secure,
	}); err != nil {
		return fmt.Errorf("transfers: register routes: %w", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- server.Serve(addr) }()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func serveHTTP(ctx context.Context, addr string, handlers *httpapi.Handlers, secure bool) error {
	handlers.SecureCookies = secure
	server := &http.Server{
		Addr:              addr,
		Handler:           handlers.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return listen(ctx, server)
}

func serveMetrics(ctx context.Context, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	if err := listen(ctx, server); err != nil {
		logger.Error("metrics listener", zap.Error(err))
	}
}

func listen(ctx context.Context, server *http.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- server.ListenAndServe() }()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// activityLog is a go-users activity sink that writes records to the log.
type activityLog struct {
	logger *zap.Logger
}

func (l activityLog) Log(_ context.Context, record types.ActivityRecord) error {
	l.logger.Info("activity",
		zap.String("verb", record.Verb),
		zap.String("object_type", record.ObjectType),
		zap.String("object_id", record.ObjectID),
		zap.String("channel", record.Channel),
		zap.Stringer("actor_id", record.ActorID),
		zap.Time("occurred_at", record.OccurredAt),
	)
	return nil
}
