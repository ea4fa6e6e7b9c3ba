package entities

type Faculty struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type Program struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	FacultyID   uint64 `json:"faculty_id"`
	FacultyName string `json:"faculty_name"`
}

type Subject struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	ProgramID uint64 `json:"program_id"`
}

type Building struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

type Room struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	BuildingID uint64 `json:"building_id"`
}
