package checkout

import (
	"fmt"
	"time"
)

// ModalState is the order modal visibility.
type ModalState int

const (
	ModalClosed ModalState = iota
	ModalOpen
)

func (s ModalState) String() string {
	switch s {
	case ModalOpen:
		return "open"
	default:
		return "closed"
	}
}

// MarshalText encodes the state as "open" or "closed".
func (s ModalState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText accepts "open" or "closed".
func (s *ModalState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "open":
		*s = ModalOpen
	case "closed", "":
		*s = ModalClosed
	default:
		return fmt.Errorf("unknown modal state %q", string(text))
	}
	return nil
}

// WidgetState tracks the payment button for one page session.
// Rendered is set once and never cleared.
type WidgetState struct {
	Rendered        bool            `json:"rendered"`
	ContainerHidden bool            `json:"container_hidden"`
	Button          *RenderedButton `json:"button,omitempty"`
}

// State is the checkout part of a page session.
type State struct {
	Modal       ModalState     `json:"modal"`
	Draft       OrderForm      `json:"draft"`
	FormVisible bool           `json:"form_visible"`
	Widget      WidgetState    `json:"widget"`
	Payment     *PaymentRecord `json:"payment,omitempty"`
}

// ShowShippingForm reports whether the shipping form should be displayed.
// Without a rendered button there is no way to pay, so the form is shown directly.
func (s State) ShowShippingForm() bool {
	return s.FormVisible || !s.Widget.Rendered
}

// NoticeLevel classifies a user notification.
type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

// Notice is a message shown to the user once.
type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
}

// Notifier receives user notifications.
type Notifier interface {
	Notify(level NoticeLevel, message string)
}

// Confirmation is an accepted shipping submission.
type Confirmation struct {
	Reference   string         `json:"reference"`
	Form        OrderForm      `json:"form"`
	Payment     *PaymentRecord `json:"payment,omitempty"`
	SubmittedAt time.Time      `json:"submitted_at"`
}
