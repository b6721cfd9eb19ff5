package enums

import "fmt"

// DepositStatus maps to the deposit_status enum in Postgres.
type DepositStatus string

const (
	DepositStatusPending   DepositStatus = "pending"
	DepositStatusConfirmed DepositStatus = "confirmed"
	DepositStatusRejected  DepositStatus = "rejected"
)

var validDepositStatuses = []DepositStatus{
	DepositStatusPending,
	DepositStatusConfirmed,
	DepositStatusRejected,
}

// String implements fmt.Stringer.
func (s DepositStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DepositStatus.
func (s DepositStatus) IsValid() bool {
	for _, candidate := range validDepositStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsResolution reports whether the status is a valid resolution decision.
func (s DepositStatus) IsResolution() bool {
	return s == DepositStatusConfirmed || s == DepositStatusRejected
}

// ParseDepositStatus converts raw input into a DepositStatus.
func ParseDepositStatus(value string) (DepositStatus, error) {
	for _, candidate := range validDepositStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid deposit status %q", value)
}
