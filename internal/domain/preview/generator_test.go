package preview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colormuse/colormuse-books/internal/utils/platformerrors"
)

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(nil, 0)
	require.NoError(t, err)
	return g
}

func TestGenerate_CyclesPool(t *testing.T) {
	g := newTestGenerator(t)

	prompts := []string{"sea animals", "  dinosaurs  ", "x", "robots\tin space\n"}
	for _, prompt := range prompts {
		t.Run(prompt, func(t *testing.T) {
			set, err := g.Generate(prompt)
			require.NoError(t, err)
			require.Len(t, set.Pages, 25)
			for i, page := range set.Pages {
				assert.Equal(t, DefaultPool[i%3], page, "position %d", i)
			}
		})
	}
}

func TestGenerate_SeaAnimalsScenario(t *testing.T) {
	g := newTestGenerator(t)

	set, err := g.Generate("sea animals")
	require.NoError(t, err)

	assert.Equal(t, 25, set.Len())
	assert.Equal(t, []string{"assets/page1.png", "assets/page2.png", "assets/page3.png", "assets/page1.png"}, set.Pages[:4])
	assert.Equal(t, "assets/page1.png", set.Pages[24])
	assert.Equal(t, "sea animals", set.Prompt)
	assert.False(t, set.GeneratedAt.IsZero())
}

func TestGenerate_RejectsEmptyPrompt(t *testing.T) {
	g := newTestGenerator(t)

	for _, prompt := range []string{"", "   ", "\t\n"} {
		set, err := g.Generate(prompt)
		assert.Nil(t, set)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMissingTheme))
		assert.True(t, platformerrors.IsErrorType(err, platformerrors.ErrorTypeValidation))
	}
}

func TestGenerate_StripsMarkupFromPrompt(t *testing.T) {
	g := newTestGenerator(t)

	tests := []struct {
		name   string
		prompt string
		want   string
	}{
		{name: "tags", prompt: `<script>alert(1)</script>cats & <b>dogs</b>`, want: "cats & dogs"},
		{name: "encoded tags", prompt: `&lt;script&gt;alert(1)&lt;/script&gt;cats`, want: "cats"},
		{name: "double encoded tags", prompt: `&amp;lt;b&amp;gt;owls&amp;lt;/b&amp;gt;`, want: "owls"},
		{name: "plain comparison", prompt: `cats < dogs`, want: "cats < dogs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := g.Generate(tt.prompt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Prompt)
			assert.NotContains(t, set.Prompt, "<script")
			assert.NotContains(t, set.Prompt, "<b>")
		})
	}
}

func TestNewGenerator_CustomPool(t *testing.T) {
	g, err := NewGenerator([]string{"a.png", "b.png"}, 5)
	require.NoError(t, err)

	set, err := g.Generate("theme")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png", "a.png", "b.png", "a.png"}, set.Pages)
	assert.Equal(t, 5, g.PageCount())
	assert.Equal(t, []string{"a.png", "b.png"}, g.Pool())
}

func TestNewGenerator_RejectsBlankReference(t *testing.T) {
	_, err := NewGenerator([]string{"a.png", " "}, 3)
	assert.Error(t, err)
}
