package preview

import (
	"context"
	"errors"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

// ErrMissingTheme is returned when the prompt is empty after trimming.
var ErrMissingTheme = platformerrors.NewError(context.Background(), platformerrors.LayerDomain,
	platformerrors.ErrorTypeValidation, "missing theme description", nil, "preview-missing-theme")

// Generator maps a theme prompt to a fixed-length preview set.
//
// It stands in for a real generation backend: the prompt only has to be present,
// its content never influences which pages are returned.
type Generator struct {
	pool      []string
	pageCount int
	policy    *bluemonday.Policy
	now       func() time.Time
}

// NewGenerator creates a generator cycling through pool. A nil pool or a
// non-positive page count falls back to the bundled defaults.
func NewGenerator(pool []string, pageCount int) (*Generator, error) {
	if len(pool) == 0 {
		pool = DefaultPool
	}
	if pageCount <= 0 {
		pageCount = DefaultPageCount
	}
	cleaned := make([]string, 0, len(pool))
	for _, ref := range pool {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			return nil, errors.New("sample pool contains an empty reference")
		}
		cleaned = append(cleaned, ref)
	}
	return &Generator{
		pool:      cleaned,
		pageCount: pageCount,
		policy:    bluemonday.StrictPolicy(),
		now:       time.Now,
	}, nil
}

// Generate validates the prompt and returns pageCount entries where entry i is pool[i mod len(pool)].
func (g *Generator) Generate(prompt string) (*PreviewSet, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return nil, ErrMissingTheme
	}

	pages := make([]string, g.pageCount)
	for i := range pages {
		pages[i] = g.pool[i%len(g.pool)]
	}

	return &PreviewSet{
		Prompt:      g.sanitize(trimmed),
		Pages:       pages,
		GeneratedAt: g.now().UTC(),
	}, nil
}

// Pool returns a copy of the sample references.
func (g *Generator) Pool() []string {
	return append([]string(nil), g.pool...)
}

// PageCount returns the number of pages each preview holds.
func (g *Generator) PageCount() int {
	return g.pageCount
}

// maxSanitizePasses bounds how many layers of entity encoding are peeled off a prompt.
const maxSanitizePasses = 4

// sanitize strips markup so the theme can be echoed back as plain text.
// Entities are decoded before each pass, so encoded tags are stripped too.
// The result is a fixed point: sanitizing it again changes nothing.
func (g *Generator) sanitize(prompt string) string {
	current := prompt
	for i := 0; i < maxSanitizePasses; i++ {
		cleaned := g.policy.Sanitize(html.UnescapeString(current))
		plain := html.UnescapeString(cleaned)
		if plain == current {
			return strings.TrimSpace(plain)
		}
		current = plain
	}
	return strings.TrimSpace(g.policy.Sanitize(current))
}
