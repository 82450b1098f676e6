// Package handlers implements the business logic for CLI commands.
//
// Handlers are called by the command definitions in the commands package.
// They load configuration, build the store client and orchestrator, run one
// operation and render its report. Construction goes through package-level
// factory variables so tests can swap in a fake store.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/imamik/rtctl/internal/config"
	"github.com/imamik/rtctl/internal/logging"
	"github.com/imamik/rtctl/internal/orchestration"
	"github.com/imamik/rtctl/internal/platform/contrail"
	"github.com/imamik/rtctl/internal/routetarget"
)

// Globals are the persistent flags shared by all commands. Empty or zero
// values leave the file and environment settings in place.
type Globals struct {
	ConfigPath      string
	APIServer       string
	APIPort         int
	Username        string
	Password        string
	AuthToken       string
	TenantID        string
	Output          string
	MetricsTextfile string
	Verbose         bool
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig reads the config file and environment.
	loadConfig = config.Load

	// loadTimeouts reads timing settings from the environment.
	loadTimeouts = config.LoadTimeouts

	// newLogger builds the process logger.
	newLogger = logging.New

	// newStore creates the config store client.
	newStore = func(cfg *config.Config, t *config.Timeouts, log logr.Logger, m *contrail.Metrics) contrail.ConfigStore {
		creds := contrail.Credentials{Username: cfg.Username, Password: cfg.Password, Token: cfg.AuthToken}
		return contrail.NewRealClient(cfg.BaseURL(), creds,
			contrail.WithTimeouts(t), contrail.WithLogger(log), contrail.WithMetrics(m),
			contrail.WithRateLimiter(newLimiter(t.RateLimit)))
	}

	// newAllocator creates the route-target key allocator.
	newAllocator = func() *routetarget.Allocator {
		return routetarget.NewAllocator(routetarget.RandomJitter)
	}

	// writeTextfile writes gathered metrics in the node-exporter textfile format.
	writeTextfile = prometheus.WriteToTextfile

	// stdout and stderr receive reports and warnings.
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// newLimiter paces store requests at perSecond; zero or less disables pacing.
func newLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

// session holds what one command invocation needs.
type session struct {
	cfg      *config.Config
	timeouts *config.Timeouts
	log      logr.Logger
	registry *prometheus.Registry
	store    contrail.ConfigStore
	metrics  *orchestration.Metrics
}

func newSession(g Globals) (*session, error) {
	cfg, err := resolveConfig(g)
	if err != nil {
		return nil, err
	}
	log := newLogger(cfg.Verbose)
	timeouts := loadTimeouts()
	registry := prometheus.NewRegistry()
	return &session{
		cfg:      cfg,
		timeouts: timeouts,
		log:      log,
		registry: registry,
		store:    newStore(cfg, timeouts, log, contrail.NewMetrics(registry)),
		metrics:  orchestration.NewMetrics(registry),
	}, nil
}

// resolveConfig layers flags over the file and environment and validates
// the result.
func resolveConfig(g Globals) (*config.Config, error) {
	cfg, err := loadConfig(g.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.APIServer != "" {
		cfg.APIServer = g.APIServer
	}
	if g.APIPort != 0 {
		cfg.APIPort = g.APIPort
	}
	if g.Username != "" {
		cfg.Username = g.Username
	}
	if g.Password != "" {
		cfg.Password = g.Password
	}
	if g.AuthToken != "" {
		cfg.AuthToken = g.AuthToken
	}
	if g.TenantID != "" {
		cfg.TenantID = g.TenantID
	}
	if g.Output != "" {
		cfg.Output = g.Output
	}
	if g.MetricsTextfile != "" {
		cfg.MetricsTextfile = g.MetricsTextfile
	}
	cfg.Verbose = cfg.Verbose || g.Verbose

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", contrail.ErrInvalidArgument, err)
	}
	return cfg, nil
}

func (s *session) orchestrator() *orchestration.Orchestrator {
	return orchestration.New(s.store,
		orchestration.WithAllocator(newAllocator()),
		orchestration.WithSettleDelay(s.timeouts.SettleDelay),
		orchestration.WithLogger(s.log),
		orchestration.WithMetrics(s.metrics))
}

// close flushes metrics to the textfile when one is configured.
func (s *session) close() {
	if s.cfg.MetricsTextfile == "" {
		return
	}
	if err := writeTextfile(s.cfg.MetricsTextfile, s.registry); err != nil {
		s.log.Error(err, "failed to write metrics textfile", "path", s.cfg.MetricsTextfile)
	}
}

// runOperation runs op, renders its result and prints warnings. Warnings do
// not fail the command.
func runOperation(ctx context.Context, g Globals,
	op func(ctx context.Context, o *orchestration.Orchestrator) (*orchestration.Result, error),
) error {
	s, err := newSession(g)
	if err != nil {
		return err
	}
	defer s.close()

	res, err := op(ctx, s.orchestrator())
	if err != nil {
		if res != nil && res.Reached != orchestration.StateResolving {
			fmt.Fprintf(stderr, "%s stopped after %s; re-run the same command to resume\n", res.Operation, res.Reached)
		}
		return err
	}
	if err := writeResult(stdout, s.cfg.Output, res); err != nil {
		return err
	}
	for _, w := range res.Warnings {
		fmt.Fprintln(stderr, "Warning:", w)
	}
	return nil
}
