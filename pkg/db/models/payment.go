package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickbite-dev/quickbite-backend/pkg/enums"
)

// Payment is the online payment attempt attached to an order. COD orders
// never get a row here.
type Payment struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	UserID            uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status            enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'created'"`
	AmountCents       int64               `gorm:"column:amount_cents;not null"`
	Currency          string              `gorm:"column:currency;type:text;not null;default:'INR'"`
	GatewayPaymentID  string              `gorm:"column:gateway_payment_id;type:text;not null"`
	GatewayReceiptURL *string             `gorm:"column:gateway_receipt_url"`
	FailureReason     *string             `gorm:"column:failure_reason"`
	VerifiedAt        *time.Time          `gorm:"column:verified_at"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (Payment) TableName() string {
	return "payments"
}
