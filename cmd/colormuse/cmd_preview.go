package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/colormuse/colormuse-books/internal/config"
	"github.com/colormuse/colormuse-books/internal/domain/preview"
)

func newPreviewCmd() *cobra.Command {
	var (
		prompt         string
		asJSON         bool
		storefrontFile string
	)
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Print the page references of a preview",
		Long:  `Generate a preview for a theme. Without --prompt the theme is asked interactively.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set, err := generatePreview(storefrontFile, prompt)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(set)
			}
			fmt.Fprintf(out, "Theme: %s\n", set.Prompt)
			for i, page := range set.Pages {
				fmt.Fprintf(out, "%2d  %s\n", i+1, page)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "Coloring book theme")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the preview as JSON")
	cmd.Flags().StringVar(&storefrontFile, "storefront", "", "Storefront YAML overlay")
	return cmd
}

// generatePreview asks for the theme when prompt is empty.
func generatePreview(storefrontFile, prompt string) (*preview.PreviewSet, error) {
	storefront, err := loadStorefront(storefrontFile)
	if err != nil {
		return nil, err
	}
	gen, err := preview.NewGenerator(storefront.SamplePool, storefront.PageCount)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(prompt) == "" {
		if prompt, err = askTheme(); err != nil {
			return nil, err
		}
	}
	return gen.Generate(prompt)
}

func askTheme() (string, error) {
	var theme string
	err := survey.AskOne(&survey.Input{
		Message: "Describe your coloring book theme:",
		Help:    "For example: sea animals, dinosaurs in space",
	}, &theme, survey.WithValidator(survey.Required))
	if err != nil {
		return "", fmt.Errorf("read theme: %w", err)
	}
	return theme, nil
}

// loadStorefront returns the bundled storefront with the optional YAML overlay applied.
func loadStorefront(path string) (config.Storefront, error) {
	defaults := config.Storefront{
		Price:      "29.99",
		Currency:   "USD",
		Label:      "Custom AI Coloring Book",
		PageCount:  preview.DefaultPageCount,
		SamplePool: preview.DefaultPool,
	}
	if strings.TrimSpace(path) == "" {
		return defaults, nil
	}
	overlay, err := config.LoadStorefrontFile(path)
	if err != nil {
		return config.Storefront{}, err
	}
	merged := defaults.Merge(overlay)
	if err := merged.Validate(); err != nil {
		return config.Storefront{}, errors.Join(fmt.Errorf("invalid storefront file %s", path), err)
	}
	return merged, nil
}
