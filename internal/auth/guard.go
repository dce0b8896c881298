package auth

import "tenantgate/internal/models"

// Guard names an authentication domain. Every authenticator operation takes
// the guard explicitly; it is never inferred from ambient state.
type Guard string

const (
	GuardSystem Guard = models.GuardSystem
	GuardTenant Guard = models.GuardTenant
)

func (g Guard) String() string { return string(g) }

func (g Guard) Valid() bool {
	return g == GuardSystem || g == GuardTenant
}

// ParseGuard validates a guard name from untrusted input.
func ParseGuard(s string) (Guard, bool) {
	g := Guard(s)
	return g, g.Valid()
}
