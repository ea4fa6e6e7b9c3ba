package entities

import "time"

type EquipmentStatus struct {
	ID   uint64 `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Rack - стойка хранения с фиксированной вместимостью.
// DeviceCount и AvailableCount заполняются при чтении.
type Rack struct {
	ID                 uint64    `json:"id"`
	Name               string    `json:"name"`
	Location           string    `json:"location"`
	TotalCapacity      int       `json:"total_capacity"`
	FunctionalCapacity int       `json:"functional_capacity"`
	Status             string    `json:"status"`
	DeviceCount        int       `json:"device_count"`
	AvailableCount     int       `json:"available_count"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Device struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	SerialNumber string    `json:"serial_number"`
	Model        string    `json:"model"`
	RackID       *uint64   `json:"rack_id"`
	RackName     *string   `json:"rack_name"`
	StatusID     uint64    `json:"status_id"`
	StatusCode   string    `json:"status_code"`
	StatusName   string    `json:"status_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type DeviceFilter struct {
	StatusCode string
	RackID     *uint64
	Search     string
	Limit      uint64
	Offset     uint64
	Sort       map[string]string
}

type DeviceStats struct {
	Total          int `json:"total"`
	Available      int `json:"available"`
	InUse          int `json:"in_use"`
	Maintenance    int `json:"maintenance"`
	Decommissioned int `json:"decommissioned"`
}
