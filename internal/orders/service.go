package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickbite-dev/quickbite-backend/pkg/db/models"
	"github.com/quickbite-dev/quickbite-backend/pkg/enums"
	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
	"github.com/quickbite-dev/quickbite-backend/pkg/outbox"
	"github.com/quickbite-dev/quickbite-backend/pkg/types"
)

const defaultCurrency = "INR"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service exposes order placement and lifecycle operations.
type Service interface {
	Place(ctx context.Context, input PlaceInput) (*DTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]DTO, error)
	GetForUser(ctx context.Context, id, userID uuid.UUID) (*DTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*DTO, error)
	AssignAgent(ctx context.Context, id uuid.UUID, name, phone string) (*DTO, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	events outboxEmitter
	logg   *logger.Logger
}

// NewService builds an orders service backed by the provided stack.
func NewService(repo Repository, tx txRunner, events outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{repo: repo, tx: tx, events: events, logg: logg}, nil
}

// Place persists the order with its lines and queues the placement event,
// all inside one transaction. The total is computed server-side from the
// captured lines.
func (s *service) Place(ctx context.Context, input PlaceInput) (*DTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	if !input.PaymentMethod.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}
	if strings.TrimSpace(input.DeliveryAddress.Text) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address is required")
	}

	var total int64
	for _, line := range input.Items {
		if strings.TrimSpace(line.ItemID) == "" || strings.TrimSpace(line.Name) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order line is missing item id or name")
		}
		if line.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order line quantity must be at least 1")
		}
		if line.UnitPriceCents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "order line price must not be negative")
		}
		total += types.LineTotalCents(line.UnitPriceCents, line.Quantity)
	}

	currency := strings.ToUpper(strings.TrimSpace(input.Currency))
	if currency == "" {
		currency = defaultCurrency
	}

	address := input.DeliveryAddress
	order := &models.Order{
		ID:              uuid.New(),
		UserID:          input.UserID,
		Status:          enums.OrderStatusPending,
		PaymentMethod:   input.PaymentMethod,
		DeliveryAddress: &address,
		TotalCents:      total,
		Currency:        currency,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order")
		}

		items := make([]models.OrderItem, 0, len(input.Items))
		for _, line := range input.Items {
			item := models.OrderItem{
				ID:             uuid.New(),
				OrderID:        order.ID,
				ItemID:         line.ItemID,
				Name:           line.Name,
				UnitPriceCents: line.UnitPriceCents,
				Quantity:       line.Quantity,
			}
			if trimmed := strings.TrimSpace(line.ImageURL); trimmed != "" {
				item.ImageURL = &trimmed
			}
			if trimmed := strings.TrimSpace(line.ShopID); trimmed != "" {
				item.ShopID = &trimmed
			}
			if trimmed := strings.TrimSpace(line.ShopName); trimmed != "" {
				item.ShopName = &trimmed
			}
			if trimmed := strings.TrimSpace(line.OwnerID); trimmed != "" {
				item.OwnerID = &trimmed
			}
			items = append(items, item)
		}
		if err := repo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating order items")
		}
		order.Items = items

		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID},
			Data: map[string]any{
				"status":        order.Status,
				"paymentMethod": order.PaymentMethod,
				"totalCents":    order.TotalCents,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(logCtx, "order placed")
	}
	return toDTO(order), nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID) ([]DTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing orders")
	}
	dtos := make([]DTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *toDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) GetForUser(ctx context.Context, id, userID uuid.UUID) (*DTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	order, err := s.repo.FindByIDAndUser(ctx, id, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	return toDTO(order), nil
}

// UpdateStatus advances the order exactly one step forward. Skipping stages
// or moving backwards is rejected.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, next enums.OrderStatus) (*DTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot move order from %s to %s", order.Status, next)).
			WithDetails(map[string]string{"current": order.Status.String(), "requested": next.String()})
	}

	var deliveredAt *time.Time
	if next == enums.OrderStatusDelivered {
		now := time.Now()
		deliveredAt = &now
	}

	previous := order.Status
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateStatus(ctx, id, next, deliveredAt); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating order status")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderStatusChanged,
			AggregateType: enums.AggregateOrder,
			AggregateID:   id,
			Data: map[string]any{
				"from": previous,
				"to":   next,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	order.Status = next
	order.DeliveredAt = deliveredAt
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id": id.String(),
			"from":     previous.String(),
			"to":       next.String(),
		})
		s.logg.Info(logCtx, "order status updated")
	}
	return toDTO(order), nil
}

// AssignAgent records the courier handling the order.
func (s *service) AssignAgent(ctx context.Context, id uuid.UUID, name, phone string) (*DTO, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "agent name is required")
	}

	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	if err := s.repo.UpdateAgent(ctx, id, name, strings.TrimSpace(phone)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assigning agent")
	}

	order.AgentName = &name
	if trimmed := strings.TrimSpace(phone); trimmed != "" {
		order.AgentPhone = &trimmed
	}
	return toDTO(order), nil
}
