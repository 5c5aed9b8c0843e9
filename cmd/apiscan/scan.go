package apiscan

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/trailwatch/apiscan/pkg/checker"
	"github.com/trailwatch/apiscan/pkg/demangle"
	"github.com/trailwatch/apiscan/pkg/scan"
	"github.com/trailwatch/apiscan/pkg/scanlog"
)

var (
	scanBinary      string
	scanObjects     []string
	scanCatalogue   string
	scanVerbose     bool
	scanDebugUsages bool
)

// ScanCmd runs a full scan: parse the linked binary, walk the given
// object files and archives, and report every discovered API usage plus
// every possible exported API.
var ScanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan a linked binary and its object files for API usage",
	Long: `scan reconstructs the symbol reference graph between a linked binary and
the unlinked object files (and .a/.rlib archives) that were combined to
produce it, and reports which configured API categories each source
package uses.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if scanBinary == "" {
			return fmt.Errorf("--binary is required")
		}
		if scanCatalogue == "" {
			return fmt.Errorf("--catalogue is required")
		}

		cfg, err := loadCheckerConfig(scanCatalogue)
		if err != nil {
			return err
		}
		c := checker.FromConfig(cfg)

		var debugWriter io.Writer = io.Discard
		if scanVerbose {
			debugWriter = os.Stderr
		}
		log := scanlog.New(os.Stderr, debugWriter)

		outputs, timer, err := scan.Objects(scanBinary, scanObjects, c, demangle.Default, log, scan.Options{Debug: scanDebugUsages})
		if err != nil {
			return err
		}
		_ = timer

		problems := outputs.ToProblems()
		info := color.New(color.FgCyan)
		warn := color.New(color.FgYellow, color.Bold)
		for _, p := range problems {
			if p.Info {
				info.Println(p.Text)
			} else {
				warn.Println(p.Text)
			}
		}
		fmt.Fprintf(os.Stdout, "%d usages, %d possible exports\n", len(outputs.ApiUsages), len(outputs.PossibleExports))
		return nil
	},
}

func init() {
	ScanCmd.Flags().StringVar(&scanBinary, "binary", "", "path to the linked binary")
	ScanCmd.Flags().StringSliceVar(&scanObjects, "objects", nil, "paths to unlinked object files and archives")
	ScanCmd.Flags().StringVar(&scanCatalogue, "catalogue", "", "path to the API catalogue/package-index YAML config")
	ScanCmd.Flags().BoolVarP(&scanVerbose, "verbose", "v", false, "enable debug-level logging")
	ScanCmd.Flags().BoolVar(&scanDebugUsages, "debug-usage-data", false, "attach bin/object-file/section provenance to every reported usage")
}
