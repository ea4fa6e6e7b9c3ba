package dto

import (
	"lending-system/internal/entities"

	"github.com/aarondl/null/v8"
)

type CreateDeviceDTO struct {
	Name         string      `json:"name" validate:"required,notblank,max=100"`
	SerialNumber string      `json:"serial_number" validate:"required,notblank,max=100"`
	Model        string      `json:"model" validate:"omitempty,max=100"`
	RackID       null.Uint64 `json:"rack_id" validate:"omitempty,gt=0"`
	StatusCode   string      `json:"status_code" validate:"omitempty,oneof=AVAILABLE MAINTENANCE"`
}

// UpdateDeviceDTO - полная замена карточки. rack_id = null снимает устройство со стойки.
type UpdateDeviceDTO struct {
	Name         string      `json:"name" validate:"required,notblank,max=100"`
	SerialNumber string      `json:"serial_number" validate:"required,notblank,max=100"`
	Model        string      `json:"model" validate:"omitempty,max=100"`
	RackID       null.Uint64 `json:"rack_id" validate:"omitempty,gt=0"`
	StatusCode   string      `json:"status_code" validate:"required,oneof=AVAILABLE IN_USE MAINTENANCE DECOMMISSIONED"`
}

type DeviceListDTO struct {
	Devices []entities.Device    `json:"devices"`
	Stats   entities.DeviceStats `json:"stats"`
}

type CreateRackDTO struct {
	Name               string `json:"name" validate:"required,notblank,max=100"`
	Location           string `json:"location" validate:"omitempty,max=200"`
	TotalCapacity      int    `json:"total_capacity" validate:"required,min=1,max=1000"`
	FunctionalCapacity int    `json:"functional_capacity" validate:"min=0,ltefield=TotalCapacity"`
	Status             string `json:"status" validate:"omitempty,oneof=AVAILABLE UNAVAILABLE"`
}

type UpdateRackDTO struct {
	Name               string `json:"name" validate:"required,notblank,max=100"`
	Location           string `json:"location" validate:"omitempty,max=200"`
	TotalCapacity      int    `json:"total_capacity" validate:"required,min=1,max=1000"`
	FunctionalCapacity int    `json:"functional_capacity" validate:"min=0,ltefield=TotalCapacity"`
	Status             string `json:"status" validate:"required,oneof=AVAILABLE UNAVAILABLE"`
}
