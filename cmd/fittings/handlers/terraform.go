package handlers

import (
	"context"
	"path/filepath"

	"github.com/imamik/fittings/internal/config"
	"github.com/imamik/fittings/internal/logging"
	"github.com/imamik/fittings/internal/terraform"
)

// newTerraform locates the terraform binary (for testing injection).
var newTerraform = terraform.New

// TerraformApply writes the plan's terraform parameters to .tfvars and runs
// terraform apply in the plan's tf_path.
func TerraformApply(ctx context.Context, planFile string) error {
	logger := logging.WithComponent("terraform")

	plan, err := loadPlan(planPath(planFile))
	if err != nil {
		return err
	}
	if plan.Terraform == nil {
		return config.ConfigurationError.New("fittings plan %s has no terraform section", planPath(planFile))
	}

	tf, err := newTerraform(filepath.Dir(planPath(planFile)), logger)
	if err != nil {
		return err
	}
	return tf.Build(ctx, terraform.SettingsFromPlan(plan.Terraform))
}

// TerraformGraph writes the terraform dependency graph of dir to
// dir/multicloud.dot. An empty dir means the plan's tf_path, or the plan's
// directory without a terraform section.
func TerraformGraph(ctx context.Context, planFile, dir string) error {
	logger := logging.WithComponent("terraform")
	workDir := filepath.Dir(planPath(planFile))

	if dir == "" {
		dir = workDir
		plan, err := loadPlan(planPath(planFile))
		if err != nil {
			return err
		}
		if plan.Terraform != nil && plan.Terraform.Path != "" {
			dir = plan.Terraform.Path
		}
	}

	tf, err := newTerraform(workDir, logger)
	if err != nil {
		return err
	}
	_, err = tf.Graph(ctx, dir)
	return err
}
