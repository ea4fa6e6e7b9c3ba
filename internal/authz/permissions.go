// internal/authz/permissions.go
package authz

import "lending-system/pkg/constants"

// --- СПИСОК ВСЕХ ПЕРМИШЕНОВ В СИСТЕМЕ ---

const (
	// Заявки (Reservations)
	ReservationsCreate = "reservations:create"
	ReservationsView   = "reservations:view"
	ReservationsCancel = "reservations:cancel"
	ReservationsDecide = "reservations:decide"
	ReservationsManage = "reservations:manage"

	// Инвентарь (устройства, стойки)
	InventoryView   = "inventory:view"
	InventoryManage = "inventory:manage"

	// Отчеты
	ReportsView = "reports:view"

	// Справочники
	CatalogsView = "catalogs:view"

	// Модификаторы Области (Scopes)
	ScopeOwn = "scope:own"
	ScopeAll = "scope:all"
)

// rolePermissions - статическая карта роль -> права.
var rolePermissions = map[string][]string{
	constants.RoleTeacher: {
		ReservationsCreate,
		ReservationsView,
		ReservationsCancel,
		CatalogsView,
		ScopeOwn,
	},
	constants.RoleSupervisor: {
		ReservationsView,
		InventoryView,
		CatalogsView,
		ScopeAll,
	},
	constants.RoleAdmin: {
		ReservationsView,
		ReservationsDecide,
		ReservationsManage,
		InventoryView,
		InventoryManage,
		ReportsView,
		CatalogsView,
		ScopeAll,
	},
}

// PermissionsForRole возвращает набор прав роли. Неизвестная роль - пустой набор.
func PermissionsForRole(roleCode string) map[string]bool {
	perms := make(map[string]bool, len(rolePermissions[roleCode]))
	for _, p := range rolePermissions[roleCode] {
		perms[p] = true
	}
	return perms
}
