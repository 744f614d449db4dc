package preview

import "time"

// DefaultPageCount is the number of pages in a coloring book preview.
const DefaultPageCount = 25

// DefaultPool lists the bundled sample pages the generator cycles through.
var DefaultPool = []string{
	"assets/page1.png",
	"assets/page2.png",
	"assets/page3.png",
}

// PreviewSet is an ordered set of page references produced by one generation request.
// Positions carry no identity; a new generation replaces the whole set.
type PreviewSet struct {
	Prompt      string    `json:"prompt"`
	Pages       []string  `json:"pages"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Len returns the number of pages in the set.
func (s *PreviewSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Pages)
}
