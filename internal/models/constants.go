package models

const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
	StatusFailed    = "FAILED"
)

const (
	// DefaultReclaimIntervalSeconds пауза между проходами ревизора броней
	DefaultReclaimIntervalSeconds = 30

	// DefaultBookingTTLMinutes сколько PENDING-бронь живет до освобождения мест
	DefaultBookingTTLMinutes = 2

	// DefaultSnapshotTTL время жизни кэша списка событий в секундах
	DefaultSnapshotTTL = 5

	// DefaultFlagCacheTTL время жизни кэша feature-флагов в секундах
	DefaultFlagCacheTTL = 60

	// DefaultRequestTimeoutSeconds лимит на обработку одного запроса
	DefaultRequestTimeoutSeconds = 10

	// DefaultModel модель по умолчанию, если флаг не задан
	DefaultModel = "claude-4-mini"
)
