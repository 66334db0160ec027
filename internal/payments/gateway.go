package payments

import "context"

// GatewayPayment is the provider-neutral view of a payment attempt.
type GatewayPayment struct {
	ID          string
	Status      string
	AmountCents int64
	Currency    string
	ReceiptURL  string
}

// GatewayCreateParams carries the charge request to the provider.
type GatewayCreateParams struct {
	AmountCents    int64
	Currency       string
	SourceID       string
	ReferenceID    string
	IdempotencyKey string
}

// Gateway abstracts the card payment provider so the service can be tested
// without network calls.
type Gateway interface {
	CreatePayment(ctx context.Context, params GatewayCreateParams) (*GatewayPayment, error)
	GetPayment(ctx context.Context, paymentID string) (*GatewayPayment, error)
}

// Provider payment states this service reacts to.
const (
	gatewayStatusCompleted = "COMPLETED"
	gatewayStatusApproved  = "APPROVED"
)

func gatewaySettled(status string) bool {
	return status == gatewayStatusCompleted || status == gatewayStatusApproved
}
