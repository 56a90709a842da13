// Package payments creates hosted checkout sessions for confirmed
// bookings.  The payment provider's hosted page owns the actual payment
// flow; this service only opens a session and records its identifier on
// the booking.
package payments

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// Session is the subset of a created checkout session handed back to
// the client: the session ID for reconciliation and the URL to redirect
// the customer to.
type Session struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SessionInput describes the booking being paid for.
type SessionInput struct {
	BookingReference string
	Description      string
	AmountCents      int64
	Currency         string
}

// Client wraps the Stripe checkout session API.
type Client struct {
	successURL string
	cancelURL  string
}

// NewClient configures the Stripe API key and returns a Client.  The
// success and cancel URLs are where the hosted page sends the customer
// afterwards.
func NewClient(apiKey, successURL, cancelURL string) *Client {
	stripe.Key = apiKey
	return &Client{successURL: successURL, cancelURL: cancelURL}
}

// CreateSession opens a hosted checkout session for one booking.  The
// booking reference rides along as the client reference ID so webhook
// reconciliation (out of scope here) can map the payment back.
func (c *Client) CreateSession(ctx context.Context, in SessionInput) (*Session, error) {
	if in.AmountCents <= 0 {
		return nil, fmt.Errorf("payments: non-positive amount for booking %s", in.BookingReference)
	}
	currency := in.Currency
	if currency == "" {
		currency = "usd"
	}
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(c.successURL),
		CancelURL:         stripe.String(c.cancelURL),
		ClientReferenceID: stripe.String(in.BookingReference),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(currency),
					UnitAmount: stripe.Int64(in.AmountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(in.Description),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.Context = ctx
	s, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("payments: create checkout session: %w", err)
	}
	return &Session{ID: s.ID, URL: s.URL}, nil
}
