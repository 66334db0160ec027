package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a line captured from the cart at placement time. Name, price
// and shop identity are denormalized so later menu edits do not rewrite
// history.
type OrderItem struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ItemID         string    `gorm:"column:item_id;type:text;not null"`
	Name           string    `gorm:"column:name;type:text;not null"`
	UnitPriceCents int64     `gorm:"column:unit_price_cents;not null"`
	Quantity       int       `gorm:"column:quantity;not null"`
	ImageURL       *string   `gorm:"column:image_url"`
	ShopID         *string   `gorm:"column:shop_id"`
	ShopName       *string   `gorm:"column:shop_name"`
	OwnerID        *string   `gorm:"column:owner_id"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
