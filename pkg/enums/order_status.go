package enums

import "fmt"

// OrderStatus tracks the delivery lifecycle of a placed order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusOutForDelivery,
	OrderStatusDelivered,
}

var orderStatusRank = map[OrderStatus]int{
	OrderStatusPending:        0,
	OrderStatusPreparing:      1,
	OrderStatusOutForDelivery: 2,
	OrderStatusDelivered:      3,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether next is the immediate forward step.
// Orders never move backwards and never skip stages.
func (o OrderStatus) CanTransitionTo(next OrderStatus) bool {
	current, ok := orderStatusRank[o]
	if !ok {
		return false
	}
	target, ok := orderStatusRank[next]
	if !ok {
		return false
	}
	return target == current+1
}

// IsTerminal reports whether the order has reached its final state.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
