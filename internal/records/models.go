package records

import (
	"fmt"
	"strings"
	"time"
)

// Status is the workflow state of a record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// Priority marks how urgently a lab request should be handled.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
)

// TestRequest is a lab order placed by a doctor for a patient.
type TestRequest struct {
	ID        string
	Patient   string
	Tests     []string
	Status    Status
	Priority  Priority
	Timestamp time.Time
	Doctor    string
	Hospital  string
}

func (r TestRequest) RecordID() string     { return r.ID }
func (r TestRequest) RecordStatus() Status { return r.Status }

// WithStatus returns a copy of r in the given status. Tests is shared with the
// receiver; nothing in this package mutates it after construction.
func (r TestRequest) WithStatus(s Status) TestRequest {
	r.Status = s
	return r
}

// Summary joins the ordered test names for single-line display.
func (r TestRequest) Summary() string {
	return strings.Join(r.Tests, ", ")
}

func (r TestRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: id required", ErrInvalidRecord)
	case strings.TrimSpace(r.Patient) == "":
		return fmt.Errorf("%w: patient required", ErrInvalidRecord)
	case len(r.Tests) == 0:
		return fmt.Errorf("%w: request %s has no tests", ErrInvalidRecord, r.ID)
	case !TestRequestLifecycle.Known(r.Status):
		return fmt.Errorf("%w: request %s has status %q", ErrInvalidRecord, r.ID, r.Status)
	case r.Priority != PriorityHigh && r.Priority != PriorityNormal:
		return fmt.Errorf("%w: request %s has priority %q", ErrInvalidRecord, r.ID, r.Priority)
	}
	return nil
}

// AppointmentRequest is a patient's request for a slot with a doctor.
type AppointmentRequest struct {
	ID            string
	PatientID     string
	PatientName   string
	Reason        string
	PreferredDate string
	PreferredTime string
	Status        Status
}

func (r AppointmentRequest) RecordID() string     { return r.ID }
func (r AppointmentRequest) RecordStatus() Status { return r.Status }

func (r AppointmentRequest) WithStatus(s Status) AppointmentRequest {
	r.Status = s
	return r
}

func (r AppointmentRequest) Validate() error {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return fmt.Errorf("%w: id required", ErrInvalidRecord)
	case strings.TrimSpace(r.PatientName) == "":
		return fmt.Errorf("%w: patient name required", ErrInvalidRecord)
	case !AppointmentRequestLifecycle.Known(r.Status):
		return fmt.Errorf("%w: appointment request %s has status %q", ErrInvalidRecord, r.ID, r.Status)
	}
	return nil
}
