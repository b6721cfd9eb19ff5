package enums

import (
	"fmt"
	"strings"
)

// OrderStatus tracks the lifecycle of a delivery order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusAssigned   OrderStatus = "assigned"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusNRP        OrderStatus = "nrp"
	OrderStatusReturned   OrderStatus = "returned"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusAssigned,
	OrderStatusDelivered,
	OrderStatusNRP,
	OrderStatusReturned,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// Scanner clients send the French labels the paper bordereaux carry.
var orderStatusAliases = map[string]OrderStatus{
	"expédié": OrderStatusShipped,
	"expedie": OrderStatusShipped,
	"livré":   OrderStatusDelivered,
	"livre":   OrderStatusDelivered,
	"retour":  OrderStatusReturned,
	"annulé":  OrderStatusCancelled,
	"annule":  OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusReturned, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// RequiresNote reports whether a transition into this status needs a reason.
func (s OrderStatus) RequiresNote() bool {
	return s == OrderStatusNRP || s == OrderStatusReturned
}

// ParseOrderStatus converts raw input, including French wire labels, into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if status, ok := orderStatusAliases[normalized]; ok {
		return status, nil
	}
	for _, candidate := range validOrderStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
