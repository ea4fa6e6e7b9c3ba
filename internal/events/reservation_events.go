package events

// Имена событий жизненного цикла заявки.
const (
	ReservationCreated   = "reservation.created"
	ReservationApproved  = "reservation.approved"
	ReservationRejected  = "reservation.rejected"
	ReservationCancelled = "reservation.cancelled"
	ReservationFinalized = "reservation.finalized"
	ReservationManaged   = "reservation.managed"
	DevicesAssigned      = "reservation.devices.assigned"
	DevicesUnassigned    = "reservation.devices.unassigned"
	SupervisorAssigned   = "reservation.supervisor.assigned"
	SupervisorUnassigned = "reservation.supervisor.unassigned"
	EvidenceUploaded     = "reservation.evidence.uploaded"
	EvidenceDeleted      = "reservation.evidence.deleted"
)

// ReservationEvent - любое изменение заявки, которое пишется в журнал аудита.
// Details содержит то, что важно именно для этого события (причина, устройства, файл).
type ReservationEvent struct {
	EventName     string
	ReservationID uint64
	ActorID       uint64
	Details       map[string]interface{}
}

func (e ReservationEvent) Name() string {
	return e.EventName
}

// AllReservationEvents - на что подписывается журнал аудита.
var AllReservationEvents = []string{
	ReservationCreated,
	ReservationApproved,
	ReservationRejected,
	ReservationCancelled,
	ReservationFinalized,
	ReservationManaged,
	DevicesAssigned,
	DevicesUnassigned,
	SupervisorAssigned,
	SupervisorUnassigned,
	EvidenceUploaded,
	EvidenceDeleted,
}
