package constants

// --- СТАТУСЫ ЗАЯВОК НА ОБОРУДОВАНИЕ (совпадают со значениями в БД) ---
const (
	ReservationPending   = "PENDING"
	ReservationApproved  = "APPROVED"
	ReservationRejected  = "REJECTED"
	ReservationFinalized = "FINALIZED"
)

var ReservationStatusNames = map[string]string{
	ReservationPending:   "На рассмотрении",
	ReservationApproved:  "Одобрена",
	ReservationRejected:  "Отклонена",
	ReservationFinalized: "Завершена",
}

// Разрешённые переходы. FINALIZED и REJECTED - конечные.
var reservationTransitions = map[string][]string{
	ReservationPending:  {ReservationApproved, ReservationRejected},
	ReservationApproved: {ReservationFinalized, ReservationRejected},
}

func IsReservationStatus(code string) bool {
	_, ok := ReservationStatusNames[code]
	return ok
}

func CanTransition(from, to string) bool {
	for _, s := range reservationTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func IsFinalReservationStatus(code string) bool {
	return code == ReservationRejected || code == ReservationFinalized
}
