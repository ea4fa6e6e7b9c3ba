package constants

//============== UPLOAD CONTEXTS ==============

// UploadContext определяет тип для контекстов загрузки файлов.
type UploadContext string

const (
	// UploadContextEvidencePhoto - фото выдачи/возврата оборудования.
	UploadContextEvidencePhoto UploadContext = "evidence_photo"
)

// String возвращает строковое представление контекста.
func (uc UploadContext) String() string {
	return string(uc)
}

//============== CACHE KEYS ==============

// Префиксы для ключей в Redis/кеше.
const (
	// Ключ, указывающий, что вход заблокирован из-за неудачных попыток.
	// Формат: lockout:<username> -> "locked"
	CacheKeyLockout = "lockout:%s"

	// Ключ для подсчета неудачных попыток входа.
	// Формат: login_attempts:<username> -> count
	CacheKeyLoginAttempts = "login_attempts:%s"
)

//============== EVIDENCE ==============

const (
	EvidenceTypeUsage  = "USAGE"
	EvidenceTypeReturn = "RETURN"
)

// CancellationPrefix добавляется к причине, когда заявитель сам отменяет заявку.
const CancellationPrefix = "[ОТМЕНЕНО ЗАЯВИТЕЛЕМ] "
