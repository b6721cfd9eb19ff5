package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOrderClaimed       NotificationType = "order_claimed"
	NotificationTypeBordereauClaimed   NotificationType = "bordereau_claimed"
	NotificationTypeOrderStatusChanged NotificationType = "order_status_changed"
	NotificationTypeDepositDeclared    NotificationType = "deposit_declared"
	NotificationTypeDepositResolved    NotificationType = "deposit_resolved"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderClaimed,
	NotificationTypeBordereauClaimed,
	NotificationTypeOrderStatusChanged,
	NotificationTypeDepositDeclared,
	NotificationTypeDepositResolved,
}

// IsValid reports whether the value is a known NotificationType.
func (t NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw input into a NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
