package checkout

import (
	"github.com/shopspring/decimal"
)

// FixedPrice is the price attached to every coloring book order.
var FixedPrice = decimal.RequireFromString("29.99")

const (
	DefaultCurrency   = "USD"
	DefaultOrderLabel = "Custom AI Coloring Book"
)

// Offer is what every order buys. It is fixed per deployment, never per order.
type Offer struct {
	Price    decimal.Decimal
	Currency string
	Label    string
}

// DefaultOffer returns the 29.99 USD custom coloring book.
func DefaultOffer() Offer {
	return Offer{
		Price:    FixedPrice,
		Currency: DefaultCurrency,
		Label:    DefaultOrderLabel,
	}
}

// AmountValue renders the price the way payment providers expect it ("29.99").
func (o Offer) AmountValue() string {
	return o.Price.StringFixed(2)
}

// DisplayPrice renders the price for the page ("29.99 USD").
func (o Offer) DisplayPrice() string {
	return o.AmountValue() + " " + o.Currency
}

// OrderRequest describes the single purchase unit sent to the payment provider.
func (o Offer) OrderRequest(requestID string) OrderRequest {
	return OrderRequest{
		Intent:    IntentCapture,
		RequestID: requestID,
		PurchaseUnits: []PurchaseUnit{{
			Amount:      o.Price,
			Currency:    o.Currency,
			Description: o.Label,
		}},
	}
}
