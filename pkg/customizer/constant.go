package customizer

const (
	SAFETY_UPDATER_WORKER = 4
	SAFETY_BATCH_SIZE     = 512
	LOG_PROGRESS_EVERY    = 10000
)
