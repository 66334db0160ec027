package payments

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
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// orderLoader is the slice of the orders repository this service needs.
type orderLoader interface {
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Order, error)
}

// CreateInput starts an online payment for an order.
type CreateInput struct {
	OrderID  uuid.UUID
	UserID   uuid.UUID
	SourceID string
}

// VerifyInput checks an order's payment with the provider.
type VerifyInput struct {
	OrderID uuid.UUID
	UserID  uuid.UUID
}

// DTO is the client-facing payment shape.
type DTO struct {
	ID               uuid.UUID           `json:"id"`
	OrderID          uuid.UUID           `json:"orderId"`
	Status           enums.PaymentStatus `json:"status"`
	AmountCents      int64               `json:"amountCents"`
	Currency         string              `json:"currency"`
	GatewayPaymentID string              `json:"gatewayPaymentId"`
	ReceiptURL       string              `json:"receiptUrl,omitempty"`
	VerifiedAt       *time.Time          `json:"verifiedAt,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// Service exposes the online payment flow.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*DTO, error)
	Verify(ctx context.Context, input VerifyInput) (*DTO, error)
}

type service struct {
	repo    Repository
	orders  orderLoader
	gateway Gateway
	tx      txRunner
	events  outboxEmitter
	logg    *logger.Logger
}

// NewService builds a payments service backed by the provided stack.
func NewService(repo Repository, orders orderLoader, gateway Gateway, tx txRunner, events outboxEmitter, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order loader required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	return &service{
		repo:    repo,
		orders:  orders,
		gateway: gateway,
		tx:      tx,
		events:  events,
		logg:    logg,
	}, nil
}

// Create charges the provided source for the order total and records the
// attempt. Only online orders without an existing payment are chargeable.
func (s *service) Create(ctx context.Context, input CreateInput) (*DTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}
	if strings.TrimSpace(input.SourceID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment source is required")
	}

	order, err := s.orders.FindByIDAndUser(ctx, input.OrderID, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}
	if order.PaymentMethod != enums.PaymentMethodOnline {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not payable online")
	}

	if _, err := s.repo.FindByOrderID(ctx, input.OrderID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "payment already exists for order")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking existing payment")
	}

	gw, err := s.gateway.CreatePayment(ctx, GatewayCreateParams{
		AmountCents: order.TotalCents,
		Currency:    order.Currency,
		SourceID:    input.SourceID,
		ReferenceID: order.ID.String(),
	})
	if err != nil {
		return nil, err
	}

	payment := &models.Payment{
		ID:               uuid.New(),
		OrderID:          order.ID,
		UserID:           input.UserID,
		Status:           enums.PaymentStatusCreated,
		AmountCents:      order.TotalCents,
		Currency:         order.Currency,
		GatewayPaymentID: gw.ID,
	}
	if gw.ReceiptURL != "" {
		payment.GatewayReceiptURL = &gw.ReceiptURL
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording payment")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentCreated,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID},
			Data: map[string]any{
				"orderId":     order.ID,
				"amountCents": payment.AmountCents,
			},
			Version: 1,
		})
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":   order.ID.String(),
			"payment_id": payment.ID.String(),
		})
		s.logg.Info(logCtx, "payment created")
	}
	return toPaymentDTO(payment), nil
}

// Verify asks the provider for the payment's final state. A settled payment
// is marked verified; anything else marks the attempt failed.
func (s *service) Verify(ctx context.Context, input VerifyInput) (*DTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id is required")
	}

	order, err := s.orders.FindByIDAndUser(ctx, input.OrderID, input.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading order")
	}

	payment, err := s.repo.FindByOrderID(ctx, order.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no payment recorded for order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading payment")
	}
	if payment.Status == enums.PaymentStatusVerified {
		return toPaymentDTO(payment), nil
	}

	gw, err := s.gateway.GetPayment(ctx, payment.GatewayPaymentID)
	if err != nil {
		return nil, err
	}

	if !gatewaySettled(gw.Status) {
		reason := fmt.Sprintf("gateway status %s", gw.Status)
		markErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.MarkFailed(ctx, payment.ID, reason); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking payment failed")
			}
			return s.events.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventPaymentFailed,
				AggregateType: enums.AggregatePayment,
				AggregateID:   payment.ID,
				Data:          map[string]any{"orderId": order.ID, "reason": reason},
				Version:       1,
			})
		})
		if markErr != nil {
			return nil, markErr
		}
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "payment not completed").
			WithDetails(map[string]string{"gatewayStatus": gw.Status})
	}

	verifiedAt := time.Now()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.MarkVerified(ctx, payment.ID, verifiedAt, gw.ReceiptURL); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marking payment verified")
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventPaymentVerified,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Actor:         &outbox.ActorRef{UserID: input.UserID},
			Data:          map[string]any{"orderId": order.ID},
			Version:       1,
		})
	})
	if err != nil {
		return nil, err
	}

	payment.Status = enums.PaymentStatusVerified
	payment.VerifiedAt = &verifiedAt
	if gw.ReceiptURL != "" {
		payment.GatewayReceiptURL = &gw.ReceiptURL
	}
	if s.logg != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{
			"order_id":   order.ID.String(),
			"payment_id": payment.ID.String(),
		})
		s.logg.Info(logCtx, "payment verified")
	}
	return toPaymentDTO(payment), nil
}

func toPaymentDTO(payment *models.Payment) *DTO {
	if payment == nil {
		return nil
	}
	dto := &DTO{
		ID:               payment.ID,
		OrderID:          payment.OrderID,
		Status:           payment.Status,
		AmountCents:      payment.AmountCents,
		Currency:         payment.Currency,
		GatewayPaymentID: payment.GatewayPaymentID,
		VerifiedAt:       payment.VerifiedAt,
		CreatedAt:        payment.CreatedAt,
	}
	if payment.GatewayReceiptURL != nil {
		dto.ReceiptURL = *payment.GatewayReceiptURL
	}
	return dto
}
