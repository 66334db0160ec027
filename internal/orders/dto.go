package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/quickbite-dev/quickbite-backend/pkg/db/models"
	"github.com/quickbite-dev/quickbite-backend/pkg/enums"
	"github.com/quickbite-dev/quickbite-backend/pkg/types"
)

// LineInput is one cart line captured at placement.
type LineInput struct {
	ItemID         string
	Name           string
	UnitPriceCents int64
	Quantity       int
	ImageURL       string
	ShopID         string
	ShopName       string
	OwnerID        string
}

// PlaceInput carries everything needed to persist an order.
type PlaceInput struct {
	UserID          uuid.UUID
	Items           []LineInput
	PaymentMethod   enums.PaymentMethod
	DeliveryAddress types.DeliveryAddress
	Currency        string
}

// AgentDTO is the courier contact surfaced on tracked orders.
type AgentDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

// ItemDTO is one order line as returned to clients.
type ItemDTO struct {
	ItemID         string `json:"itemId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	ImageURL       string `json:"imageUrl,omitempty"`
	ShopID         string `json:"shopId,omitempty"`
	OwnerID        string `json:"ownerId,omitempty"`
}

// DTO is the client-facing order shape. RestaurantName comes from the lines'
// captured shop name so lists and detail views can label the order.
type DTO struct {
	ID              uuid.UUID              `json:"id"`
	Status          enums.OrderStatus      `json:"status"`
	PaymentMethod   enums.PaymentMethod    `json:"paymentMethod"`
	DeliveryAddress *types.DeliveryAddress `json:"deliveryAddress,omitempty"`
	TotalCents      int64                  `json:"totalCents"`
	Currency        string                 `json:"currency"`
	RestaurantName  string                 `json:"restaurantName,omitempty"`
	Items           []ItemDTO              `json:"items"`
	Agent           *AgentDTO              `json:"agent,omitempty"`
	DeliveredAt     *time.Time             `json:"deliveredAt,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
}

func toDTO(order *models.Order) *DTO {
	if order == nil {
		return nil
	}

	var restaurantName string
	items := make([]ItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		dto := ItemDTO{
			ItemID:         item.ItemID,
			Name:           item.Name,
			UnitPriceCents: item.UnitPriceCents,
			Quantity:       item.Quantity,
		}
		if item.ImageURL != nil {
			dto.ImageURL = *item.ImageURL
		}
		if item.ShopID != nil {
			dto.ShopID = *item.ShopID
		}
		if item.OwnerID != nil {
			dto.OwnerID = *item.OwnerID
		}
		if restaurantName == "" && item.ShopName != nil {
			restaurantName = *item.ShopName
		}
		items = append(items, dto)
	}

	dto := &DTO{
		ID:              order.ID,
		Status:          order.Status,
		PaymentMethod:   order.PaymentMethod,
		DeliveryAddress: order.DeliveryAddress,
		TotalCents:      order.TotalCents,
		Currency:        order.Currency,
		RestaurantName:  restaurantName,
		Items:           items,
		DeliveredAt:     order.DeliveredAt,
		CreatedAt:       order.CreatedAt,
	}
	if order.AgentName != nil {
		agent := &AgentDTO{Name: *order.AgentName}
		if order.AgentPhone != nil {
			agent.Phone = *order.AgentPhone
		}
		dto.Agent = agent
	}
	return dto
}
