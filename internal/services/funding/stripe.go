// Package funding tokenizes external card funding for deposits. The
// token is obtained before the ledger credit is applied, so a declined
// card never reaches the ledger engine.
package funding

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/token"
)

type CardDetails struct {
	Number      string `json:"number"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
	CVC         string `json:"cvc"`
}

// Source turns card details into an opaque funding reference.
type Source interface {
	Tokenize(ctx context.Context, card CardDetails) (string, error)
}

type stripeSource struct{}

// NewStripeSource configures the Stripe client with the given secret
// key and returns a card tokenizer backed by it.
func NewStripeSource(apiKey string) Source {
	stripe.Key = apiKey
	return &stripeSource{}
}

func (s *stripeSource) Tokenize(_ context.Context, card CardDetails) (string, error) {
	params := &stripe.TokenParams{
		Card: &stripe.CardParams{
			Number:   &card.Number,
			ExpMonth: &card.ExpiryMonth,
			ExpYear:  &card.ExpiryYear,
			CVC:      &card.CVC,
		},
	}

	stripeToken, err := token.New(params)
	if err != nil {
		return "", fmt.Errorf("card tokenization failed: %w", err)
	}
	return stripeToken.ID, nil
}
