package apiscan

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/trailwatch/apiscan/pkg/sandbox"
)

var (
	sandboxAllowRead []string
	sandboxExtraArgs []string
)

// SandboxCheckCmd materializes a Bubblewrap sandbox from the given
// allow-read paths and extra args and prints the resulting argument
// vector, without spawning anything. Useful for auditing what a real
// `scan` invocation's build step would be granted access to.
var SandboxCheckCmd = &cobra.Command{
	Use:   "sandbox-check",
	Short: "Print the bubblewrap argument vector for a given sandbox policy",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := sandbox.Config{
			Kind:      sandbox.Bubblewrap,
			AllowRead: sandboxAllowRead,
			ExtraArgs: sandboxExtraArgs,
		}
		built, err := sandbox.FromConfig(cfg)
		if err != nil {
			return err
		}
		bw, ok := built.(*sandbox.BubblewrapSandbox)
		if !ok {
			return fmt.Errorf("unexpected sandbox type %T", built)
		}

		label := color.New(color.FgGreen, color.Bold)
		label.Println("bwrap")
		for _, arg := range bw.Args() {
			fmt.Println("  " + arg)
		}
		return nil
	},
}

func init() {
	SandboxCheckCmd.Flags().StringSliceVar(&sandboxAllowRead, "allow-read", nil, "additional read-only bind paths")
	SandboxCheckCmd.Flags().StringSliceVar(&sandboxExtraArgs, "extra-arg", nil, "extra bubblewrap arguments, appended verbatim")
}
