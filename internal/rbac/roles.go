package rbac

// Role names. Keep these stable; they are part of auth contracts.
const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func IsKnownRole(role string) bool {
	return role == RoleAdmin || role == RoleCustomer
}
