// Package prerequisites checks that external tools fittings shells out to
// are installed before any node is touched.
package prerequisites

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Tool represents a client tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Path, when set, is the exact location of the binary and PATH is not searched.
	Path string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string

	// InstallURL provides a URL for installation instructions.
	InstallURL string
}

// TerraformTool describes the terraform binary. path is the value of
// TERRAFORM_PATH and may be empty.
func TerraformTool(path string) Tool {
	return Tool{
		Name:        "terraform",
		Path:        path,
		Required:    true,
		Description: "Required for the terraform apply and graph commands",
		InstallURL:  "https://developer.hashicorp.com/terraform/install",
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool    Tool
	Found   bool
	Path    string
	Version string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if !tool.Required {
			continue
		}
		where := tool.Name
		if tool.Path != "" {
			where = tool.Path
		}
		missing = append(missing, fmt.Sprintf("%s (%s)", where, tool.InstallURL))
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
}

// Check verifies that the specified tools are available.
func Check(tools []Tool) *CheckResults {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		if path, ok := locate(tool); ok {
			result.Found = true
			result.Path = path
		} else {
			results.Missing = append(results.Missing, tool)
		}

		results.Results = append(results.Results, result)
	}

	return results
}

// ToolVersion attempts to get the version of a located tool.
// Returns empty string if version cannot be determined.
func (r CheckResult) ToolVersion() string {
	if !r.Found {
		return ""
	}
	// Common version flags to try
	for _, flag := range []string{"version", "--version", "-v"} {
		// #nosec G204 - path comes from a located Tool, not user input
		output, err := exec.Command(r.Path, flag).Output()
		if err == nil {
			lines := strings.Split(string(output), "\n")
			return strings.TrimSpace(lines[0])
		}
	}
	return ""
}

func locate(tool Tool) (string, bool) {
	if tool.Path == "" {
		path, err := exec.LookPath(tool.Name)
		return path, err == nil
	}

	info, err := os.Stat(tool.Path)
	if err != nil || info.IsDir() || info.Mode().Perm()&0o111 == 0 {
		return "", false
	}
	return tool.Path, true
}
