// Package apiscan holds the apiscan CLI's leaf subcommands: scan and
// sandbox-check. Grounded on the teacher's per-command subpackage
// layout (one package per command group, a package-level
// *cobra.Command variable the root wires in via AddCommand).
package apiscan

import (
	"fmt"
	"os"

	"github.com/trailwatch/apiscan/pkg/checker"
	"gopkg.in/yaml.v3"
)

// loadCheckerConfig reads and decodes a checker.Config from a YAML file
// at path.
func loadCheckerConfig(path string) (checker.Config, error) {
	var cfg checker.Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading catalogue %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing catalogue %s: %w", path, err)
	}
	return cfg, nil
}
