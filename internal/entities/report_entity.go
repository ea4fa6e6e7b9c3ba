package entities

import "time"

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MonthlyReport struct {
	Month                int          `json:"month"`
	Year                 int          `json:"year"`
	Total                int          `json:"total"`
	Pending              int          `json:"pending"`
	Approved             int          `json:"approved"`
	Rejected             int          `json:"rejected"`
	Finalized            int          `json:"finalized"`
	CancelledByRequester int          `json:"cancelled_by_requester"`
	DevicesRequested     int          `json:"devices_requested"`
	DevicesInUse         int          `json:"devices_in_use"`
	ByProgram            []NamedCount `json:"by_program"`
	TopRequesters        []NamedCount `json:"top_requesters"`
	TopRacks             []NamedCount `json:"top_racks"`
	Items                []ReportItem `json:"items"`
}

type ReportItem struct {
	ReservationID   uint64    `json:"reservation_id"`
	UsageDate       time.Time `json:"usage_date"`
	StartTime       string    `json:"start_time"`
	EndTime         string    `json:"end_time"`
	RequesterName   string    `json:"requester_name"`
	ProgramName     string    `json:"program_name"`
	SubjectName     string    `json:"subject_name"`
	BuildingName    string    `json:"building_name"`
	RoomName        string    `json:"room_name"`
	Quantity        int       `json:"quantity"`
	ResponsibleName string    `json:"responsible_name"`
	ContactPhone    string    `json:"contact_phone"`
	Status          string    `json:"status"`
}
