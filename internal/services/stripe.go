package services

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

// StripeGateway débite les cartes via un PaymentIntent confirmé immédiatement.
type StripeGateway struct {
	currency string
}

func NewStripeGateway(secretKey, currency string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{currency: currency}
}

func (g *StripeGateway) Charge(ctx context.Context, amountCents int64, paymentMethodID, orderID string) (string, error) {
	if paymentMethodID == "" {
		return "", fmt.Errorf("paymentMethodId requis pour un paiement par carte: %w", ErrInvalidInput)
	}

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(g.currency),
		PaymentMethod: stripe.String(paymentMethodID),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_id", orderID)
	params.SetIdempotencyKey("order-" + orderID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: %w", err)
	}
	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return "", fmt.Errorf("paiement carte non abouti (%s): %w", pi.Status, ErrPaymentUnavailable)
	}
	return pi.ID, nil
}
