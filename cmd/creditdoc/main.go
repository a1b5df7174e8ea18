// Command creditdoc is the operator tool for checking templates and loan schedules offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "creditdoc",
		Short:         "Credit document tooling",
		Long:          `Computes repayment schedules and validates or renders .docx templates without the API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newScheduleCmd(), newValidateCmd(), newRenderCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
