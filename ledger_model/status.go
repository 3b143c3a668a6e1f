package ledger_model

type ScheduleStatus string

const (
	ScheduleActive  ScheduleStatus = "active"
	SchedulePaused  ScheduleStatus = "paused"
	ScheduleExpired ScheduleStatus = "expired"
)

type ExecutionStatus string

const (
	ExecutionSuccess ExecutionStatus = "success"
	ExecutionFailed  ExecutionStatus = "failed"
	ExecutionPending ExecutionStatus = "pending"
	ExecutionSkipped ExecutionStatus = "skipped"
)
