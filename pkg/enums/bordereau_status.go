package enums

import (
	"fmt"
	"strings"
)

// BordereauStatus tracks the lifecycle of a delivery manifest.
type BordereauStatus string

const (
	BordereauStatusPending   BordereauStatus = "pending"
	BordereauStatusValidated BordereauStatus = "validated"
	BordereauStatusAssigned  BordereauStatus = "assigned"
	BordereauStatusResolved  BordereauStatus = "resolved"
)

var validBordereauStatuses = []BordereauStatus{
	BordereauStatusPending,
	BordereauStatusValidated,
	BordereauStatusAssigned,
	BordereauStatusResolved,
}

var bordereauStatusAliases = map[string]BordereauStatus{
	"validé": BordereauStatusValidated,
	"valide": BordereauStatusValidated,
}

// String implements fmt.Stringer.
func (s BordereauStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known BordereauStatus.
func (s BordereauStatus) IsValid() bool {
	for _, candidate := range validBordereauStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseBordereauStatus converts raw input, including French labels, into a BordereauStatus.
func ParseBordereauStatus(value string) (BordereauStatus, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if status, ok := bordereauStatusAliases[normalized]; ok {
		return status, nil
	}
	for _, candidate := range validBordereauStatuses {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid bordereau status %q", value)
}
