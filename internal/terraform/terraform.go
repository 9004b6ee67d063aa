// Package terraform drives the terraform binary for the optional
// infrastructure step of a fittings plan.
package terraform

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/imamik/fittings/internal/config"
	"github.com/imamik/fittings/internal/util/prerequisites"
)

// EnvPath names the variable holding the terraform binary location.
const EnvPath = "TERRAFORM_PATH"

const (
	varFileName   = ".tfvars"
	graphFileName = "multicloud.dot"
)

// Settings selects the terraform configuration to apply.
type Settings struct {
	// Path is the configuration directory. Empty means the working directory.
	Path       string
	Parameters map[string]string
}

// SettingsFromPlan converts the plan's terraform block.
func SettingsFromPlan(tf *config.Terraform) Settings {
	if tf == nil {
		return Settings{}
	}
	return Settings{Path: tf.Path, Parameters: tf.Parameters}
}

// Terraform runs terraform commands against a working directory.
type Terraform struct {
	bin     string
	workDir string
	logger  zerolog.Logger
}

// New locates the binary named by TERRAFORM_PATH. A missing variable or
// binary is a configuration error.
func New(workDir string, logger zerolog.Logger) (*Terraform, error) {
	bin := os.Getenv(EnvPath)
	if bin == "" {
		return nil, config.ConfigurationError.New("could not locate terraform binary, please set %s", EnvPath)
	}

	results := prerequisites.Check([]prerequisites.Tool{prerequisites.TerraformTool(bin)})
	if results.HasErrors() {
		return nil, config.ConfigurationError.Wrap(results.Error(), "could not locate terraform binary, please check %s", EnvPath)
	}

	logger.Debug().Str("bin", bin).Str("version", results.Results[0].ToolVersion()).Msg("terraform located")
	return &Terraform{bin: bin, workDir: workDir, logger: logger}, nil
}

// Build writes the parameters as <path>/.tfvars and applies the
// configuration without prompting.
func (t *Terraform) Build(ctx context.Context, s Settings) error {
	dir := s.Path
	if dir == "" {
		dir = t.workDir
	}

	varFile := filepath.Join(dir, varFileName)
	if err := os.WriteFile(varFile, renderVars(s.Parameters), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", varFile, err)
	}

	if _, err := t.run(ctx, "apply", dir, "-input=false", "-var-file="+varFile); err != nil {
		return err
	}
	t.logger.Info().Str("path", dir).Int("parameters", len(s.Parameters)).Msg("terraform applied")
	return nil
}

// Graph writes the dependency graph of the configuration in dir to
// <dir>/multicloud.dot and returns that path.
func (t *Terraform) Graph(ctx context.Context, dir string) (string, error) {
	if dir == "" {
		dir = t.workDir
	}

	out, err := t.run(ctx, "graph", dir)
	if err != nil {
		return "", err
	}

	dotFile := filepath.Join(dir, graphFileName)
	if err := os.WriteFile(dotFile, out, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", dotFile, err)
	}
	t.logger.Info().Str("file", dotFile).Msg("terraform graph written")
	return dotFile, nil
}

func (t *Terraform) run(ctx context.Context, command, dir string, flags ...string) ([]byte, error) {
	args := append([]string{command}, flags...)
	args = append(args, dir)
	t.logger.Debug().Strs("args", args).Msg("running terraform")

	var stdout, stderr bytes.Buffer
	// #nosec G204 - binary comes from TERRAFORM_PATH, arguments are fixed
	cmd := exec.CommandContext(ctx, t.bin, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("terraform %s failed: %w: %s", command, err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

// renderVars renders parameters as sorted `key = "value"` lines. Template
// sequences are escaped so values are taken literally.
func renderVars(params map[string]string) []byte {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	escaper := strings.NewReplacer("${", "$${", "%{", "%%{")
	var buf bytes.Buffer
	for _, k := range keys {
		fmt.Fprintf(&buf, "%s = %s\n", k, strconv.Quote(escaper.Replace(params[k])))
	}
	return buf.Bytes()
}
