package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Storefront describes what the page sells and which sample pages it cycles through.
type Storefront struct {
	Price      string   `env:"PRICE" envDefault:"29.99" yaml:"price"`
	Currency   string   `env:"CURRENCY" envDefault:"USD" yaml:"currency"`
	Label      string   `env:"LABEL" envDefault:"Custom AI Coloring Book" yaml:"label"`
	PageCount  int      `env:"PAGE_COUNT" envDefault:"25" yaml:"page_count"`
	SamplePool []string `env:"SAMPLE_POOL" envSeparator:"," envDefault:"assets/page1.png,assets/page2.png,assets/page3.png" yaml:"sample_pool"`
}

// LoadStorefrontFile reads a YAML storefront overlay.
func LoadStorefrontFile(path string) (Storefront, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Storefront{}, fmt.Errorf("read storefront file %s: %w", path, err)
	}
	var overlay Storefront
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return Storefront{}, fmt.Errorf("parse storefront file %s: %w", path, err)
	}
	return overlay, nil
}

// Merge returns s with every non-zero field of overlay applied on top.
func (s Storefront) Merge(overlay Storefront) Storefront {
	out := s
	if strings.TrimSpace(overlay.Price) != "" {
		out.Price = strings.TrimSpace(overlay.Price)
	}
	if strings.TrimSpace(overlay.Currency) != "" {
		out.Currency = strings.ToUpper(strings.TrimSpace(overlay.Currency))
	}
	if strings.TrimSpace(overlay.Label) != "" {
		out.Label = strings.TrimSpace(overlay.Label)
	}
	if overlay.PageCount > 0 {
		out.PageCount = overlay.PageCount
	}
	if len(overlay.SamplePool) > 0 {
		out.SamplePool = append([]string(nil), overlay.SamplePool...)
	}
	return out
}

// Validate checks the storefront values are usable.
func (s Storefront) Validate() error {
	price, err := s.PriceDecimal()
	if err != nil {
		return err
	}
	if !price.IsPositive() {
		return fmt.Errorf("storefront price must be positive, got %s", s.Price)
	}
	if len(strings.TrimSpace(s.Currency)) != 3 {
		return fmt.Errorf("storefront currency must be a 3 letter code, got %q", s.Currency)
	}
	if s.PageCount <= 0 {
		return fmt.Errorf("storefront page_count must be positive")
	}
	if len(s.SamplePool) == 0 {
		return fmt.Errorf("storefront sample_pool must not be empty")
	}
	for i, ref := range s.SamplePool {
		if strings.TrimSpace(ref) == "" {
			return fmt.Errorf("storefront sample_pool[%d] is empty", i)
		}
	}
	return nil
}

// PriceDecimal parses the configured price.
func (s Storefront) PriceDecimal() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(s.Price))
	if err != nil {
		return decimal.Zero, fmt.Errorf("storefront price %q: %w", s.Price, err)
	}
	return price, nil
}
