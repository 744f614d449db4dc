package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
)

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the shipping form",
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(checkout.ShippingFormSchema())
		},
	}
}
