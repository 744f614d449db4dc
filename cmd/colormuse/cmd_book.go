package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/colormuse/colormuse-books/internal/domain/book"
	"github.com/colormuse/colormuse-books/internal/interfaces/web"
)

func newBookCmd() *cobra.Command {
	var (
		prompt         string
		out            string
		assets         string
		storefrontFile string
	)
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Write the PDF proof of a preview",
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := generatePreview(storefrontFile, prompt)
			if err != nil {
				return err
			}

			var source fs.FS = web.Root()
			if assets != "" {
				source = os.DirFS(assets)
			}
			data, err := book.NewBuilder(source, "").Build(context.Background(), set)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d pages to %s\n", set.Len()+1, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Coloring book theme")
	cmd.Flags().StringVarP(&out, "out", "o", "colormuse-proof.pdf", "Output file")
	cmd.Flags().StringVar(&assets, "assets", "", "Directory the sample page references resolve against (defaults to the bundled pages)")
	cmd.Flags().StringVar(&storefrontFile, "storefront", "", "Storefront YAML overlay")
	return cmd
}
