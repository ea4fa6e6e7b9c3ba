package seeders

import "lending-system/pkg/constants"

type roleSeed struct {
	Code string
	Name string
}

var rolesData = []roleSeed{
	{Code: constants.RoleAdmin, Name: "Администратор"},
	{Code: constants.RoleTeacher, Name: "Преподаватель"},
	{Code: constants.RoleSupervisor, Name: "Супервайзер"},
}

// facultyData: факультет -> программа -> предметы.
var facultyData = map[string]map[string][]string{
	"Facultad de Ciencias de la Ingeniería": {
		"Ingeniería de Software":   {"Programación I", "Bases de Datos", "Redes de Computadoras"},
		"Ingeniería en Telemática": {"Sistemas Operativos", "Comunicaciones Digitales"},
	},
	"Facultad de Ciencias Empresariales": {
		"Administración de Empresas": {"Contabilidad General", "Estadística"},
	},
}

// buildingData: корпус -> аудитории.
var buildingData = map[string][]string{
	"Bloque A": {"A-101", "A-102", "A-201"},
	"Bloque B": {"B-101", "B-202"},
}

type userSeed struct {
	FullName string
	Username string
	RoleCode string
}

var demoUsers = []userSeed{
	{FullName: "Administrador del Sistema", Username: "admin", RoleCode: constants.RoleAdmin},
	{FullName: "María López", Username: "mlopez", RoleCode: constants.RoleTeacher},
	{FullName: "Carlos Vera", Username: "cvera", RoleCode: constants.RoleTeacher},
	{FullName: "Ana Ruiz", Username: "aruiz", RoleCode: constants.RoleSupervisor},
}

type rackSeed struct {
	Name     string
	Location string
	Capacity int
	Devices  int
}

var rackData = []rackSeed{
	{Name: "Rack 1", Location: "Bloque A, planta baja", Capacity: 30, Devices: 25},
	{Name: "Rack 2", Location: "Bloque A, planta baja", Capacity: 30, Devices: 30},
	{Name: "Rack 3", Location: "Bloque B, laboratorio", Capacity: 20, Devices: 12},
}
