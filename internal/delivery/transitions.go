package delivery

import (
	"github.com/colisdirect/colisdirect-backend/pkg/enums"
)

// allowedTransitions is the full order-status transition table. Claims move
// shipped → assigned through the claim path, not through ApplyTransition.
var allowedTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:    {enums.OrderStatusConfirmed, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusProcessing, enums.OrderStatusCancelled},
	enums.OrderStatusProcessing: {enums.OrderStatusShipped, enums.OrderStatusCancelled},
	enums.OrderStatusShipped:    {enums.OrderStatusDelivered, enums.OrderStatusCancelled, enums.OrderStatusRefunded},
	enums.OrderStatusAssigned:   {enums.OrderStatusDelivered, enums.OrderStatusNRP, enums.OrderStatusReturned},
	// NRP is recyclable: the agent may retry the delivery or give up.
	enums.OrderStatusNRP: {enums.OrderStatusAssigned, enums.OrderStatusDelivered, enums.OrderStatusReturned},
}

// agentTransitions lists the targets a delivery agent may apply to an order
// they hold; everything else requires admin or manager.
var agentTransitions = map[enums.OrderStatus]bool{
	enums.OrderStatusDelivered: true,
	enums.OrderStatusNRP:       true,
	enums.OrderStatusReturned:  true,
	enums.OrderStatusAssigned:  true,
}

func canTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
