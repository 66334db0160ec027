package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickbite-dev/quickbite-backend/pkg/enums"
	"github.com/quickbite-dev/quickbite-backend/pkg/types"
)

// Order is a customer order placed at checkout.
type Order struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus      `gorm:"column:status;type:order_status;not null;default:'pending'"`
	PaymentMethod   enums.PaymentMethod    `gorm:"column:payment_method;type:payment_method;not null"`
	DeliveryAddress *types.DeliveryAddress `gorm:"column:delivery_address;type:jsonb"`
	TotalCents      int64                  `gorm:"column:total_cents;not null"`
	Currency        string                 `gorm:"column:currency;type:text;not null;default:'INR'"`
	AgentName       *string                `gorm:"column:agent_name"`
	AgentPhone      *string                `gorm:"column:agent_phone"`
	Items           []OrderItem            `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment         *Payment               `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	DeliveredAt     *time.Time             `gorm:"column:delivered_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}
