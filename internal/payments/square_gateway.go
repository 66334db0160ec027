package payments

import (
	"context"
	"fmt"

	sq "github.com/square/square-go-sdk"

	"github.com/quickbite-dev/quickbite-backend/pkg/square"
)

// squareGateway adapts the Square client to the Gateway interface.
type squareGateway struct {
	client   *square.Client
	currency string
}

// NewSquareGateway wraps the shared Square client as a payment gateway.
func NewSquareGateway(client *square.Client, currency string) (Gateway, error) {
	if client == nil {
		return nil, fmt.Errorf("square client required")
	}
	if currency == "" {
		currency = "INR"
	}
	return &squareGateway{client: client, currency: currency}, nil
}

func (g *squareGateway) CreatePayment(ctx context.Context, params GatewayCreateParams) (*GatewayPayment, error) {
	currency := params.Currency
	if currency == "" {
		currency = g.currency
	}
	payment, err := g.client.CreatePayment(ctx, square.PaymentCreateParams{
		AmountCents:    params.AmountCents,
		Currency:       currency,
		LocationID:     g.client.LocationID(),
		SourceID:       params.SourceID,
		IdempotencyKey: params.IdempotencyKey,
		ReferenceID:    params.ReferenceID,
	})
	if err != nil {
		return nil, err
	}
	return fromSquarePayment(payment), nil
}

func (g *squareGateway) GetPayment(ctx context.Context, paymentID string) (*GatewayPayment, error) {
	payment, err := g.client.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	return fromSquarePayment(payment), nil
}

func fromSquarePayment(payment *sq.Payment) *GatewayPayment {
	if payment == nil {
		return nil
	}
	out := &GatewayPayment{}
	if id := payment.GetID(); id != nil {
		out.ID = *id
	}
	if status := payment.GetStatus(); status != nil {
		out.Status = *status
	}
	if money := payment.GetAmountMoney(); money != nil {
		if amount := money.GetAmount(); amount != nil {
			out.AmountCents = *amount
		}
		if currency := money.GetCurrency(); currency != nil {
			out.Currency = string(*currency)
		}
	}
	if receipt := payment.GetReceiptURL(); receipt != nil {
		out.ReceiptURL = *receipt
	}
	return out
}
