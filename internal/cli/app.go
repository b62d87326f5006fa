package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vijay-prabhu/inboxdomains/internal/cache"
	"github.com/vijay-prabhu/inboxdomains/internal/config"
	"github.com/vijay-prabhu/inboxdomains/internal/email"
	"github.com/vijay-prabhu/inboxdomains/internal/email/gmail"
	"github.com/vijay-prabhu/inboxdomains/internal/fetcher"
	"github.com/vijay-prabhu/inboxdomains/internal/logging"
	"github.com/vijay-prabhu/inboxdomains/internal/metrics"
)

var _ fetcher.Recorder = (*metrics.Fetch)(nil)

// app holds what every command needs
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    cache.Store
	provider *gmail.Provider
	metrics  *metrics.Fetch
}

func loadApp() (*app, error) {
	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	// Ensure directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		store:    store,
		provider: gmail.New(cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath),
		metrics:  metrics.New(),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn("failed to close cache", zap.Error(err))
	}
	_ = a.log.Sync()
}

// connect builds the Gmail client when a token is saved. Without a token it
// does nothing, and the fetch reports the missing sign-in itself.
func (a *app) connect(ctx context.Context) error {
	if !a.provider.IsAuthenticated() {
		return nil
	}
	if err := a.provider.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}
	return nil
}

func (a *app) controller() *fetcher.Controller {
	opts := fetcher.OptionsFromConfig(a.cfg)
	opts.Recorder = a.metrics
	return fetcher.New(a.provider, a.store, opts, a.log)
}

// exportMetrics writes the metrics textfile when one is configured
func (a *app) exportMetrics() {
	path := a.cfg.Metrics.TextfilePath
	if path == "" {
		return
	}
	if err := a.metrics.WriteTextfile(path); err != nil {
		a.log.Warn("failed to write metrics textfile", zap.String("path", path), zap.Error(err))
	}
}

// friendly rewrites errors the user can act on
func friendly(err error) error {
	if errors.Is(err, email.ErrNotAuthenticated) {
		return fmt.Errorf("%w (run 'inboxdomains auth login' first)", err)
	}
	return err
}
