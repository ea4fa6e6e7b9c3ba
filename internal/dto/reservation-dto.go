package dto

import (
	"lending-system/internal/entities"

	"github.com/aarondl/null/v8"
)

type CreateReservationDTO struct {
	SubjectID       uint64 `json:"subject_id" validate:"required,gt=0"`
	ProgramID       uint64 `json:"program_id" validate:"required,gt=0"`
	RoomID          uint64 `json:"room_id" validate:"required,gt=0"`
	UsageDate       string `json:"usage_date" validate:"required,datetime=2006-01-02"`
	StartTime       string `json:"start_time" validate:"required,hhmm"`
	EndTime         string `json:"end_time" validate:"required,hhmm"`
	Quantity        int    `json:"quantity" validate:"required,min=1,max=100"`
	ResponsibleName string `json:"responsible_name" validate:"required,notblank,max=200"`
	ContactPhone    string `json:"contact_phone" validate:"required,phone10"`
}

type ReasonDTO struct {
	Reason string `json:"reason" validate:"required,notblank,max=1000"`
}

// UpdateManagementDTO - частичное обновление: пропущенные поля не меняются.
type UpdateManagementDTO struct {
	Notes      null.String `json:"notes" validate:"omitempty,max=2000"`
	HandoverAt null.Time   `json:"handover_at"`
	ReturnedAt null.Time   `json:"returned_at"`
}

type ReservationDTO struct {
	entities.Reservation
	CanCancel bool `json:"can_cancel"`
}

type ManagementDetailDTO struct {
	Reservation          entities.Reservation            `json:"reservation"`
	Devices              []entities.DeviceAssignment     `json:"devices"`
	Needed               int                             `json:"needed"`
	EligibleRacks        []entities.Rack                 `json:"eligible_racks"`
	Supervisors          []entities.SupervisorAssignment `json:"supervisors"`
	AvailableSupervisors []UserProfileDTO                `json:"available_supervisors"`
	Evidences            []entities.Evidence             `json:"evidences"`
}
