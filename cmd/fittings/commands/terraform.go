package commands

import (
	"github.com/spf13/cobra"

	"github.com/imamik/fittings/cmd/fittings/handlers"
)

// Terraform returns the terraform command group.
//
// Environment variables:
//
//	TERRAFORM_PATH: location of the terraform binary (required)
func Terraform() *cobra.Command {
	var planPath string

	cmd := &cobra.Command{
		Use:   "terraform",
		Short: "Run the plan's terraform step",
	}
	cmd.PersistentFlags().StringVarP(&planPath, "plan", "p", handlers.DefaultPlanFile, "Path to the fittings plan")

	apply := &cobra.Command{
		Use:   "apply",
		Short: "Write the plan's parameters to .tfvars and apply",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.TerraformApply(cmd.Context(), planPath)
		},
	}

	graph := &cobra.Command{
		Use:   "graph [dir]",
		Short: "Write the terraform dependency graph to multicloud.dot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return handlers.TerraformGraph(cmd.Context(), planPath, dir)
		},
	}

	cmd.AddCommand(apply, graph)
	return cmd
}
