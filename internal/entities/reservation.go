package entities

import "time"

// Reservation - заявка преподавателя на N устройств для занятия.
// Поля с названиями связанных справочников заполняются только при чтении.
type Reservation struct {
	ID              uint64     `json:"id"`
	UserID          uint64     `json:"user_id"`
	SubjectID       uint64     `json:"subject_id"`
	ProgramID       uint64     `json:"program_id"`
	RoomID          uint64     `json:"room_id"`
	UsageDate       time.Time  `json:"usage_date"`
	StartTime       string     `json:"start_time"`
	EndTime         string     `json:"end_time"`
	Quantity        int        `json:"quantity"`
	Status          string     `json:"status"`
	ResponsibleName string     `json:"responsible_name"`
	ContactPhone    string     `json:"contact_phone"`
	RejectionReason *string    `json:"rejection_reason"`
	Notes           *string    `json:"notes"`
	HandoverAt      *time.Time `json:"handover_at"`
	ReturnedAt      *time.Time `json:"returned_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	RequesterName string `json:"requester_name,omitempty"`
	SubjectName   string `json:"subject_name,omitempty"`
	ProgramName   string `json:"program_name,omitempty"`
	RoomName      string `json:"room_name,omitempty"`
	BuildingName  string `json:"building_name,omitempty"`
	AssignedCount int    `json:"assigned_count"`
}

type ReservationFilter struct {
	Status   string
	UserID   *uint64
	DateFrom *time.Time
	DateTo   *time.Time
	Search   string
	Limit    uint64
	Offset   uint64
	Sort     map[string]string
}

type DeviceAssignment struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	DeviceID      uint64    `json:"device_id"`
	DeviceName    string    `json:"device_name"`
	SerialNumber  string    `json:"serial_number"`
	RackName      *string   `json:"rack_name"`
	CreatedAt     time.Time `json:"created_at"`
}

type SupervisorAssignment struct {
	ID             uint64    `json:"id"`
	ReservationID  uint64    `json:"reservation_id"`
	SupervisorID   uint64    `json:"supervisor_id"`
	SupervisorName string    `json:"supervisor_name"`
	CreatedAt      time.Time `json:"created_at"`
}

type Evidence struct {
	ID            uint64    `json:"id"`
	ReservationID uint64    `json:"reservation_id"`
	Type          string    `json:"type"`
	FilePath      string    `json:"file_path"`
	Description   *string   `json:"description"`
	CreatedAt     time.Time `json:"created_at"`
}

type AuditEntry struct {
	ReservationID uint64
	ActorID       uint64
	Event         string
	Payload       map[string]interface{}
}
