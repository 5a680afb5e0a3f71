package domain

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleCashier Role = "cashier"
	RoleKitchen Role = "kitchen"
	RoleWaiter  Role = "waiter"
	RoleBarista Role = "barista"
)

var AllRoles = []Role{RoleAdmin, RoleCashier, RoleKitchen, RoleWaiter, RoleBarista}

func ParseRole(s string) (Role, error) {
	v := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, r := range AllRoles {
		if r == v {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// DisplayName is the label shown on screens and in the activity log.
func (r Role) DisplayName() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	case RoleCashier:
		return "Cashier"
	case RoleKitchen:
		return "Kitchen"
	case RoleWaiter:
		return "Waiter"
	case RoleBarista:
		return "Barista"
	}
	return string(r)
}

// Session is an authenticated staff role.
type Session struct {
	Role      Role  `json:"role"`
	ExpiresAt int64 `json:"expiresAt"`
}
