package session

import "time"

// Attempt is the append-only record of one scored item presentation.
// Immutable after write: controllers build one value per outcome and hand
// it to the store; nothing in this package mutates an Attempt afterward.
type Attempt struct {
	ID             string
	SessionID      string
	ItemID         string
	SelectedChoice *int // nil means skipped, treated as incorrect
	Correct        bool
	ResponseTimeMs int
	HintsUsed      int
	Timestamp      time.Time
	PrimarySubskill string

	ThetaBefore   float64
	ThetaAfter    float64
	PKnownBefore  float64
	PKnownAfter   float64
}

// Facade is the narrow external-facing interface a host UI drives either
// the diagnostic or the practice controller through. Both controllers
// implement it so a caller can hold either behind one type.
type Facade interface {
	Start() error
	SubmitAnswer(choice *int, responseTimeMs int) error
	Skip() error
	Cancel() error
	CurrentItem() (itemID string, ok bool)
	State() Status
}

// Status is the closed session state-machine value reported by a
// Facade's State method. Exactly one of the typed fields is meaningful,
// selected by Kind.
type Status struct {
	Kind StatusKind

	InProgress InProgressPayload
	Completed  CompletedPayload
	Errored    ErroredPayload
}

// StatusKind discriminates the Status variants.
type StatusKind string

const (
	StatusNotStarted StatusKind = "not_started"
	StatusInProgress StatusKind = "in_progress"
	StatusCompleted  StatusKind = "completed"
	StatusCancelled  StatusKind = "cancelled"
	StatusErrored    StatusKind = "errored"
)

// InProgressPayload is the payload of the InProgress status variant.
type InProgressPayload struct {
	QuestionNumber int
	Estimated      bool // whether enough items have been seen to trust theta
}

// CompletedPayload is the payload of the Completed status variant. Summary
// holds a diagnostic.Result or a practice.SessionStats depending on which
// controller produced it; the caller knows which from context.
type CompletedPayload struct {
	TotalItems int
	Summary    any
}

// ErroredPayload is the payload of the Errored status variant.
type ErroredPayload struct {
	Message string
}

func NotStarted() Status { return Status{Kind: StatusNotStarted} }

func InProgress(questionNumber int, estimated bool) Status {
	return Status{Kind: StatusInProgress, InProgress: InProgressPayload{QuestionNumber: questionNumber, Estimated: estimated}}
}

func Completed(totalItems int, summary any) Status {
	return Status{Kind: StatusCompleted, Completed: CompletedPayload{TotalItems: totalItems, Summary: summary}}
}

func Cancelled() Status { return Status{Kind: StatusCancelled} }

func Errored(message string) Status {
	return Status{Kind: StatusErrored, Errored: ErroredPayload{Message: message}}
}
