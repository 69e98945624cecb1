package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/config"
	"github.com/tessro/roam/internal/controller"
	"github.com/tessro/roam/internal/logging"
	"github.com/tessro/roam/internal/metrics"
	"github.com/tessro/roam/internal/version"
)

// app holds what every command needs once flags and config are resolved.
type app struct {
	cfg     *config.Config
	client  *api.Client
	ctrl    *controller.Controller
	metrics *metrics.Metrics
	cleanup []func()
}

// current is set by setupApp before any command runs.
var current *app

// setupApp loads config, applies flag overrides, starts logging and metrics,
// and builds the backend client and controller.
func setupApp(cmd *cobra.Command, args []string) error {
	closeApp()

	cfg, err := config.Load(configPath, ".")
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server = serverURL
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a := &app{cfg: cfg, metrics: metrics.New()}

	closeLog, err := logging.Setup(logging.Options{Level: logging.ParseLevel(cfg.GetLogLevel())})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	a.cleanup = append(a.cleanup, closeLog)
	slog.Info("roam starting", "version", version.Version, "command", cmd.CommandPath(), "server", cfg.GetServer())

	client, err := api.New(cfg.GetServer(), cfg.ClientOptions(a.metrics))
	if err != nil {
		a.close()
		return fmt.Errorf("create client: %w", err)
	}
	a.client = client
	a.ctrl = controller.New(client)
	a.cleanup = append(a.cleanup, a.ctrl.Subscribe(a.recordRefreshFailures))

	if addr := cfg.GetMetricsAddr(); addr != "" {
		bound, err := a.metrics.Serve(cmd.Context(), addr)
		if err != nil {
			a.close()
			return fmt.Errorf("start metrics listener on %s: %w", addr, err)
		}
		slog.Debug("metrics listener started", "addr", bound.String())
	}

	current = a
	return nil
}

// recordRefreshFailures counts list fetches that failed during a refresh.
func (a *app) recordRefreshFailures(ch controller.Change) {
	if ch.Type != controller.DocumentsRefreshed {
		return
	}
	failed := map[api.Kind]error{
		api.KindPlan:   ch.Refresh.Plans,
		api.KindTodo:   ch.Refresh.Todos,
		api.KindBudget: ch.Refresh.Budgets,
	}
	for kind, err := range failed {
		if err != nil {
			a.metrics.RefreshFailed(kind)
		}
	}
}

func (a *app) close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
}

// closeApp releases the resources of the last setupApp.
func closeApp() {
	if current != nil {
		current.close()
		current = nil
	}
}

// errNotReady means a command ran without setupApp.
var errNotReady = errors.New("cli: not initialized")

func getApp() (*app, error) {
	if current == nil {
		return nil, errNotReady
	}
	return current, nil
}
