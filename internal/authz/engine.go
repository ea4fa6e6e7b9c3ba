package authz

import (
	"strings"

	"lending-system/internal/entities"
)

// Actor - пользователь текущего запроса. Передается в сервисы явно.
type Actor struct {
	UserID   uint64 `json:"user_id"`
	RoleCode string `json:"role_code"`
}

type Context struct {
	Actor             Actor
	Permissions       map[string]bool
	Target            interface{}
	CurrentPermission string
}

// NewContext собирает контекст проверки по роли актора.
func NewContext(actor Actor, target interface{}) Context {
	return Context{
		Actor:       actor,
		Permissions: PermissionsForRole(actor.RoleCode),
		Target:      target,
	}
}

func (c *Context) HasPermission(permission string) bool {
	if c.Permissions == nil {
		return false
	}
	return c.Permissions[permission]
}

func getAction(permission string) string {
	parts := strings.Split(permission, ":")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

// canAccessReservation - заявитель видит и отменяет только свои заявки.
func canAccessReservation(ctx Context, target *entities.Reservation) bool {
	isOwner := target.UserID == ctx.Actor.UserID

	switch getAction(ctx.CurrentPermission) {
	case "cancel":
		return isOwner
	case "view":
		if ctx.HasPermission(ScopeAll) {
			return true
		}
		return ctx.HasPermission(ScopeOwn) && isOwner
	}

	return ctx.HasPermission(ScopeAll)
}

// CanDo - единственная точка проверки прав в системе.
func CanDo(permission string, ctx Context) bool {
	ctx.CurrentPermission = permission

	if !ctx.HasPermission(permission) {
		return false
	}

	if ctx.Target == nil {
		return true
	}

	switch target := ctx.Target.(type) {
	case *entities.Reservation:
		return canAccessReservation(ctx, target)
	}

	return true
}

// Can - сокращение для проверки без цели.
func Can(actor Actor, permission string) bool {
	return CanDo(permission, NewContext(actor, nil))
}

// CanOn - проверка права на конкретный объект.
func CanOn(actor Actor, permission string, target interface{}) bool {
	return CanDo(permission, NewContext(actor, target))
}
