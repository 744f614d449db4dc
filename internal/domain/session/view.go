package session

import (
	"github.com/colormuse/colormuse-books/internal/domain/checkout"
)

// View is the read model the page template renders.
type View struct {
	SessionID           string
	Prompt              string
	Pages               []string
	OrderSectionVisible bool
	ModalOpen           bool
	Draft               checkout.OrderForm
	ShowShippingForm    bool
	ShowPaymentButton   bool
	Button              *checkout.RenderedButton
	PaymentAvailable    bool
	Paid                bool
	PayerGivenName      string
	Price               string
	Currency            string
	Label               string
	Notices             []checkout.Notice
}

func (p *Page) buildView(st *State, notices []checkout.Notice) *View {
	offer := p.widget.Offer()
	v := &View{
		SessionID:           st.ID,
		OrderSectionVisible: st.OrderSectionVisible,
		ModalOpen:           st.Checkout.Modal == checkout.ModalOpen,
		Draft:               st.Checkout.Draft,
		ShowShippingForm:    st.Checkout.ShowShippingForm(),
		ShowPaymentButton:   st.Checkout.Widget.Rendered && !st.Checkout.Widget.ContainerHidden,
		PaymentAvailable:    p.widget.Available(),
		Price:               offer.AmountValue(),
		Currency:            offer.Currency,
		Label:               offer.Label,
		Notices:             notices,
	}
	if st.Checkout.Widget.Button != nil {
		btn := *st.Checkout.Widget.Button
		v.Button = &btn
	}
	if st.Preview != nil {
		v.Prompt = st.Preview.Prompt
		v.Pages = append([]string(nil), st.Preview.Pages...)
	}
	if st.Checkout.Payment != nil {
		v.Paid = true
		v.PayerGivenName = st.Checkout.Payment.PayerGivenName
	}
	return v
}
