package dispatch

import (
	"fmt"

	"github.com/jask/clinicdesk/internal/records"
)

// Action is a quick action on a revealed card.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionView    Action = "view"
	ActionProcess Action = "process"
	ActionDetails Action = "details"
)

type Kind string

const (
	KindNavigate     Kind = "navigate"
	KindStatusChange Kind = "statusChange"
)

// Target names a host screen a navigate intent asks for.
type Target string

const (
	TargetProcessRequest     Target = "process-request"
	TargetViewReports        Target = "view-reports"
	TargetAppointmentDetails Target = "appointment-details"
)

// ParamRequestID is the params key carrying the record id of a navigate intent.
const ParamRequestID = "requestId"

// Intent is what the dispatcher hands to the host: either a screen to open or
// a status change that has already been applied to the store.
type Intent struct {
	Kind      Kind
	Target    Target
	Params    map[string]string
	ID        string
	NewStatus records.Status
}

func Navigate(target Target, requestID string) Intent {
	return Intent{Kind: KindNavigate, Target: target, Params: map[string]string{ParamRequestID: requestID}}
}

func StatusChange(id string, status records.Status) Intent {
	return Intent{Kind: KindStatusChange, ID: id, NewStatus: status}
}

// RequestID returns the record an intent refers to.
func (i Intent) RequestID() string {
	if i.Kind == KindNavigate {
		return i.Params[ParamRequestID]
	}
	return i.ID
}

func (i Intent) String() string {
	if i.Kind == KindNavigate {
		return fmt.Sprintf("navigate %s %s", i.Target, i.RequestID())
	}
	return fmt.Sprintf("statusChange %s -> %s", i.ID, i.NewStatus)
}

// Sink receives intents once the dispatcher has finished with them.
type Sink interface {
	Emit(Intent)
}

// SinkFunc adapts a plain function to Sink.
type SinkFunc func(Intent)

func (f SinkFunc) Emit(i Intent) { f(i) }
