package session

import (
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/colormuse/colormuse-books/internal/domain/checkout"
	"github.com/colormuse/colormuse-books/internal/domain/preview"
)

// State is everything one browser session knows about the page.
// A fresh State is the page right after load.
type State struct {
	ID                  string              `json:"id"`
	Preview             *preview.PreviewSet `json:"preview,omitempty"`
	OrderSectionVisible bool                `json:"order_section_visible"`
	Checkout            checkout.State      `json:"checkout"`
	Notices             []checkout.Notice   `json:"notices,omitempty"`
	CreatedAt           time.Time           `json:"created_at"`
	UpdatedAt           time.Time           `json:"updated_at"`
}

// NewID returns a new session id.
func NewID() string {
	return ulid.Make().String()
}

// NewState returns the initial page state for id.
func NewState(id string, now time.Time) *State {
	return &State{
		ID:        id,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

// Notify queues a notice for the next render.
func (s *State) Notify(level checkout.NoticeLevel, message string) {
	s.Notices = append(s.Notices, checkout.Notice{Level: level, Message: message})
}

// DrainNotices returns the queued notices and clears the queue.
func (s *State) DrainNotices() []checkout.Notice {
	notices := s.Notices
	s.Notices = nil
	return notices
}

// Clone returns a deep copy so callers never share slices or pointers with a store.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	out := *s
	if s.Preview != nil {
		p := *s.Preview
		p.Pages = append([]string(nil), s.Preview.Pages...)
		out.Preview = &p
	}
	if s.Checkout.Payment != nil {
		pay := *s.Checkout.Payment
		out.Checkout.Payment = &pay
	}
	if s.Checkout.Widget.Button != nil {
		btn := *s.Checkout.Widget.Button
		out.Checkout.Widget.Button = &btn
	}
	if s.Notices != nil {
		out.Notices = append([]checkout.Notice(nil), s.Notices...)
	}
	return &out
}
