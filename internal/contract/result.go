package contract

// Status discriminates result payloads handed back to the calling layer.
type Status string

const (
	StatusOK         Status = "OK"
	StatusInfoNeeded Status = "INFO_NEEDED"
	StatusError      Status = "ERROR"
	StatusNoChange   Status = "NO_CHANGE"
	StatusAdapted    Status = "ADAPTED"
)

// Validation failure kinds. INFO_NEEDED marks a recoverable user-setup
// gap; INVALID_GENERATION marks a generated plan that failed the schema
// and must not be persisted.
const (
	KindInfoNeeded        = "INFO_NEEDED"
	KindInvalidGeneration = "INVALID_GENERATION"
)

// ValidationError is returned as a value, never raised: the caller
// renders it without a crash.
type ValidationError struct {
	Kind          string   `json:"kind"`
	MissingFields []string `json:"missing_fields,omitempty"`
	Message       string   `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}
