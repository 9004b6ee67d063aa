package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/fittings/cmd/fittings/handlers"
)

// Polish returns the command that adjusts live servers to the plan.
//
// Optional flags:
//
//	--plan, -p: Path to the fittings plan (default: fittings.yaml)
//	--reap: Report destination, overriding the plan's reap setting
//	--concurrency: Number of nodes polished at once (default: 1)
//	--metrics-textfile: Write Prometheus metrics to this file
//
// Environment variables:
//
//	HCLOUD_TOKEN: Hetzner Cloud API token (required)
//	FITTINGS_RETRY_INTERVAL, FITTINGS_RETRY_MAX_ATTEMPTS, FITTINGS_RETRY_MAX_ELAPSED: disk retry budget
//	FITTINGS_S3_*: object storage credentials for s3:// report targets
func Polish() *cobra.Command {
	var opts handlers.PolishOptions

	cmd := &cobra.Command{
		Use:   "polish",
		Short: "Apply declared settings to live servers",
		Long: `Apply the settings declared in a fittings plan to live servers.

Each node is polished in four phases: cpu and memory, additional disks,
monitoring, and glue (network membership). Invalid values are logged and
skipped. Disks are retried while the server is busy. Every change that was
applied is written to the spit report.

Examples:
  # Polish using fittings.yaml in the current directory
  fittings polish

  # Polish four nodes at a time and keep the report in object storage
  fittings polish -p prod.yaml --concurrency 4 --reap s3://ops/spit.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Polish(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.PlanPath, "plan", "p", handlers.DefaultPlanFile, "Path to the fittings plan")
	cmd.Flags().StringVar(&opts.Reap, "reap", "", "Report destination: file path or s3://bucket/key (default: plan's reap or spit.yaml)")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 1, "Number of nodes polished at once")
	cmd.Flags().StringVar(&opts.MetricsTextfile, "metrics-textfile", "", "Write Prometheus metrics to this file")

	return cmd
}
