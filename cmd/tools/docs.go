package tools

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsOutput string

// docsCmd generates Markdown documentation for the apiscan CLI itself,
// adapted from the teacher's docsCmd: same "docs module"-style leaf
// command under ToolsCmd, same --output flag, but dumping real cobra
// command documentation via cobra/doc instead of a hand-rolled
// supportedModules map of Cucaracha module doc strings.
var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Generate Markdown documentation for the apiscan CLI",
	Long: `docs writes one Markdown file per apiscan command (and subcommand) into
the given output directory, via cobra's documentation generator.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if docsOutput == "" {
			return fmt.Errorf("--output is required")
		}
		if err := os.MkdirAll(docsOutput, 0o755); err != nil {
			return fmt.Errorf("creating output directory %s: %w", docsOutput, err)
		}
		return doc.GenMarkdownTree(cmd.Root(), docsOutput)
	},
}

func init() {
	ToolsCmd.AddCommand(docsCmd)
	docsCmd.Flags().StringVarP(&docsOutput, "output", "o", "", "output directory for generated Markdown docs")
}
