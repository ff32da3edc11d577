package pipeline

import "time"

// Outcome classifies how a single message ended.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeValidationFailed covers undecodable bodies and missing required fields.
	OutcomeValidationFailed
	// OutcomePersistenceFailed means the insert or commit failed and was rolled back.
	OutcomePersistenceFailed
	// OutcomeUnroutable means no handler exists for the topic.
	OutcomeUnroutable
	// OutcomeError is a panic recovered while handling the message.
	OutcomeError
)

// Metric status label values.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusError   = "error"
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidationFailed:
		return "validation_failed"
	case OutcomePersistenceFailed:
		return "persistence_failed"
	case OutcomeUnroutable:
		return "unroutable"
	case OutcomeError:
		return "error"
	default:
		return "unknown"
	}
}

// Status maps the outcome onto the processed-message counter label.
func (o Outcome) Status() string {
	switch o {
	case OutcomeSuccess:
		return StatusSuccess
	case OutcomeError:
		return StatusError
	default:
		return StatusFailed
	}
}

// Result is what a handler reports back for one message.
type Result struct {
	Outcome Outcome
	Err     error

	// RecordID is set once a record was built, even if the write failed.
	RecordID string

	// Duplicate means the record had already been committed by an earlier delivery.
	Duplicate bool
}

func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Observer receives the per-message and per-statement measurements.
// *telemetry.Metrics satisfies it.
type Observer interface {
	ObserveMessage(topic, status string, elapsed time.Duration)
	ObserveDBOperation(operation, status string)
}

type noopObserver struct{}

func (noopObserver) ObserveMessage(string, string, time.Duration) {}
func (noopObserver) ObserveDBOperation(string, string)            {}

func observerOrNoop(o Observer) Observer {
	if o == nil {
		return noopObserver{}
	}
	return o
}
