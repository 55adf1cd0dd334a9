package rbac

import (
	"context"
	"strings"
)

// Checker resolves role grants. Patterns are exact permissions, "*" or a
// prefix ending in "*" such as "form:*".
type Checker struct {
	RolePermissions map[string][]string
}

func NewChecker(rp map[string][]string) *Checker {
	if rp == nil {
		rp = RolePermissions
	}
	return &Checker{RolePermissions: rp}
}

func (c *Checker) Has(role, perm string) bool {
	for _, p := range c.RolePermissions[role] {
		if grants(p, perm) {
			return true
		}
	}
	return false
}

func (c *Checker) Any(role string, perms ...string) bool {
	for _, p := range perms {
		if c.Has(role, p) {
			return true
		}
	}
	return false
}

// CanManage reports whether subject, acting as role, may act on a form
// owned by owner: its own forms always, other people's only with
// PermFormManageAll.
func (c *Checker) CanManage(role, subject, owner string) bool {
	if subject != "" && subject == owner {
		return true
	}
	return c.Has(role, PermFormManageAll)
}

// OwnerScope is the owner filter for listing forms: "" (every owner) for
// roles with PermFormManageAll, the subject otherwise.
func (c *Checker) OwnerScope(role, subject string) string {
	if c.Has(role, PermFormManageAll) {
		return ""
	}
	return subject
}

func grants(pattern, perm string) bool {
	switch {
	case pattern == "*", pattern == perm:
		return true
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(perm, strings.TrimSuffix(pattern, "*"))
	}
	return false
}

type roleKey struct{}

func WithRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, roleKey{}, role)
}

// RoleFromContext returns the role set by WithRole, or "".
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(roleKey{}).(string)
	return role
}
