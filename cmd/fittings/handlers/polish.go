// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imamik/fittings/internal/config"
	"github.com/imamik/fittings/internal/logging"
	hcloud_internal "github.com/imamik/fittings/internal/platform/hcloud"
	"github.com/imamik/fittings/internal/polish"
	"github.com/imamik/fittings/internal/report"
)

// DefaultPlanFile is the plan looked up when --plan is not given.
const DefaultPlanFile = "fittings.yaml"

// PolishOptions carries the polish command flags.
type PolishOptions struct {
	PlanPath        string
	Reap            string
	Concurrency     int
	MetricsTextfile string
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newNodeAPI creates the control plane client.
	newNodeAPI = func(token string) hcloud_internal.NodeAPI {
		return hcloud_internal.NewRealClient(token, hcloud_internal.WithTimeouts(config.LoadTimeouts()))
	}

	// newReportWriter picks the report destination.
	newReportWriter = report.NewWriter

	// loadPlan loads the fittings plan (for testing injection).
	loadPlan = config.LoadPlan

	// retryPolicy builds the disk retry policy (for testing injection).
	retryPolicy = polish.DefaultRetryPolicy
)

// Polish applies the plan's declared settings to live servers and writes
// the spit report.
//
// The workflow:
//  1. Loads and validates the plan
//  2. Checks HCLOUD_TOKEN and the report destination before touching any node
//  3. Resolves each facility's nodes to live servers and polishes them
//  4. Writes the report, even when the run was interrupted
//  5. Optionally writes Prometheus metrics to a textfile
func Polish(ctx context.Context, opts PolishOptions) error {
	logger := logging.WithComponent("polish")

	plan, err := loadPlan(planPath(opts.PlanPath))
	if err != nil {
		return err
	}

	token := strings.TrimSpace(os.Getenv("HCLOUD_TOKEN"))
	if token == "" {
		return config.ConfigurationError.New("HCLOUD_TOKEN environment variable is required")
	}

	target := opts.Reap
	if target == "" {
		target = plan.ReapTarget()
	}
	writer, err := newReportWriter(ctx, target)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger = logging.WithRunID(logger, runID)

	api := newNodeAPI(token)
	metrics := polish.NewMetrics()
	polisher := polish.NewPolisher(polish.NewCloudUpdater(api),
		polish.WithLogger(logger),
		polish.WithMetrics(metrics),
		polish.WithRetryPolicy(retryPolicy()),
	)
	run := polish.NewRun(polisher,
		polish.WithRunID(runID),
		polish.WithConcurrency(opts.Concurrency),
		polish.WithRunLogger(logger),
	)
	inventory := polish.NewInventory(api, logger)

	runErr := reconcileFacilities(ctx, plan, inventory, run, logger)

	// The report is flushed even after an interruption so applied changes
	// are never lost.
	if err := writer.Write(context.WithoutCancel(ctx), run.Report()); err != nil {
		return errors.Join(runErr, err)
	}
	logger.Info().Str("reap", writer.Target()).Int("nodes", run.Report().Len()).Msg("report written")

	if opts.MetricsTextfile != "" {
		if err := metrics.WriteTextfile(opts.MetricsTextfile); err != nil {
			logger.Warn().Err(err).Msg("unable to write metrics")
		}
	}

	return runErr
}

func reconcileFacilities(ctx context.Context, plan *config.Plan, inventory *polish.Inventory, run *polish.Run, logger zerolog.Logger) error {
	for i := range plan.Facilities {
		facility := &plan.Facilities[i]
		logger.Info().Str("facility", facility.String()).Int("nodes", len(facility.Nodes)).Msg("polishing facility")

		nodes, err := inventory.Resolve(ctx, facility.NodeNames())
		if err != nil {
			return err
		}
		if err := run.Reconcile(ctx, nodes, facility.SettingsByNode()); err != nil {
			return err
		}
	}
	return nil
}

func planPath(path string) string {
	if path == "" {
		return DefaultPlanFile
	}
	return path
}
