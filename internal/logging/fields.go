package logging

// Shared structured-log field names so log consumers can rely on stable keys.
const (
	FieldComponent = "component"
	FieldJobID     = "job_id"
	FieldStatus    = "status"
	FieldDate      = "date"
	FieldFrame     = "frame"
	FieldTotal     = "total"
	FieldCompleted = "completed"
	FieldPath      = "path"
)
