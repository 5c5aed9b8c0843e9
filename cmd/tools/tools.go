// Package tools holds miscellaneous apiscan CLI tooling subcommands.
//
// Grounded on the teacher's cmd/tools/tools.go package-level ToolsCmd +
// AddCommand(docsCmd) wiring.
package tools

import (
	"github.com/spf13/cobra"
)

// ToolsCmd groups miscellaneous apiscan tooling subcommands.
var ToolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "apiscan miscellaneous tools",
}

func init() {
}
