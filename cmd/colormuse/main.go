package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "colormuse",
		Short: "ColorMuse Books CLI - previews, proofs and configuration",
		Long: `colormuse runs the storefront's building blocks from the command line.

Examples:
  colormuse preview --prompt "sea animals"
  colormuse book --prompt "dinosaurs" --out dinosaurs.pdf
  colormuse schema
  colormuse config`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newPreviewCmd())
	root.AddCommand(newBookCmd())
	root.AddCommand(newSchemaCmd())
	root.AddCommand(newConfigCmd())
	return root
}
