package enums

import "fmt"

// MemberRole maps to the member_role enum in Postgres.
type MemberRole string

const (
	MemberRoleAdmin       MemberRole = "admin"
	MemberRoleManager     MemberRole = "manager"
	MemberRoleDelivery    MemberRole = "delivery"
	MemberRoleFournisseur MemberRole = "fournisseur"
)

var validMemberRoles = []MemberRole{
	MemberRoleAdmin,
	MemberRoleManager,
	MemberRoleDelivery,
	MemberRoleFournisseur,
}

// String implements fmt.Stringer.
func (r MemberRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known MemberRole.
func (r MemberRole) IsValid() bool {
	for _, candidate := range validMemberRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanAdministrate reports whether the role may resolve deposits and view fleet data.
func (r MemberRole) CanAdministrate() bool {
	return r == MemberRoleAdmin || r == MemberRoleManager
}

// ParseMemberRole converts raw input into a MemberRole.
func ParseMemberRole(value string) (MemberRole, error) {
	for _, candidate := range validMemberRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid member role %q", value)
}
