package constants

// Коды статусов устройств. Сравнение всегда по коду.
const (
	EquipmentAvailable      = "AVAILABLE"
	EquipmentInUse          = "IN_USE"
	EquipmentMaintenance    = "MAINTENANCE"
	EquipmentDecommissioned = "DECOMMISSIONED"
)

var EquipmentStatusCodes = []string{
	EquipmentAvailable,
	EquipmentInUse,
	EquipmentMaintenance,
	EquipmentDecommissioned,
}

func IsEquipmentStatus(code string) bool {
	for _, s := range EquipmentStatusCodes {
		if s == code {
			return true
		}
	}
	return false
}

// Статусы стойки
const (
	RackAvailable   = "AVAILABLE"
	RackUnavailable = "UNAVAILABLE"
)
