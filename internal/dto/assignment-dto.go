package dto

type AssignDeviceDTO struct {
	DeviceID uint64 `json:"device_id" validate:"required,gt=0"`
}

type AssignRackDTO struct {
	RackID uint64 `json:"rack_id" validate:"required,gt=0"`
}

type AssignSupervisorDTO struct {
	SupervisorID uint64 `json:"supervisor_id" validate:"required,gt=0"`
}

type AssignResultDTO struct {
	Assigned int `json:"assigned"`
	Total    int `json:"total"`
	Quantity int `json:"quantity"`
}

type EvidenceUploadDTO struct {
	Type        string `form:"type" validate:"required,oneof=USAGE RETURN"`
	Description string `form:"description" validate:"omitempty,max=1000"`
}
