package logging

const (
	// FieldComponent names the emitting component.
	FieldComponent = "component"
	// FieldEventType is a stable machine-readable label for the log line.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldErrorKind carries services.Kind of the logged error.
	FieldErrorKind = "error_kind"
	// FieldImpact describes the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldSessionID identifies the cracking session.
	FieldSessionID = "session_id"
	// FieldCorrelationID identifies a CLI invocation.
	FieldCorrelationID = "correlation_id"
	// FieldPID is the supervised child's process id.
	FieldPID = "pid"
)
