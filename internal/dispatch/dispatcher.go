// Package dispatch turns card gestures into intents for the host.
package dispatch

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jask/clinicdesk/internal/records"
	"github.com/jask/clinicdesk/internal/swipe"
)

var ErrUnsupportedAction = errors.New("unsupported action")

// Dispatcher maps quick actions and row taps to store mutations or
// navigation intents. Every quick action closes the acted-on card.
type Dispatcher struct {
	appointments *records.Store[records.AppointmentRequest]
	tests        *records.Store[records.TestRequest]
	sink         Sink
	log          logrus.FieldLogger
}

func New(appointments *records.Store[records.AppointmentRequest], tests *records.Store[records.TestRequest], sink Sink, log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Dispatcher{appointments: appointments, tests: tests, sink: sink, log: log}
}

// Appointment applies approve or reject to an appointment request.
func (d *Dispatcher) Appointment(sel *swipe.Selection, id string, action Action) (Intent, error) {
	defer closeCard(sel, id)

	var status records.Status
	switch action {
	case ActionApprove:
		status = records.StatusApproved
	case ActionReject:
		status = records.StatusRejected
	default:
		return Intent{}, fmt.Errorf("%w: %s on appointment request", ErrUnsupportedAction, action)
	}
	if d.appointments == nil {
		return Intent{}, &records.NotFoundError{ID: id}
	}
	if err := d.appointments.SetStatus(id, status); err != nil {
		d.log.WithError(err).WithField("record_id", id).Warn("appointment decision failed")
		return Intent{}, err
	}
	return d.emit(StatusChange(id, status)), nil
}

// TestRequest handles view, process and details on a lab request. The store
// is not touched; the host decides what processing means.
func (d *Dispatcher) TestRequest(sel *swipe.Selection, id string, action Action) (Intent, error) {
	defer closeCard(sel, id)

	req, ok := d.testRequest(id)
	if !ok {
		return Intent{}, &records.NotFoundError{ID: id}
	}
	switch action {
	case ActionProcess:
		return d.emit(Navigate(TargetProcessRequest, id)), nil
	case ActionView:
		return d.emit(Navigate(TargetViewReports, id)), nil
	case ActionDetails:
		return d.emit(Navigate(defaultTarget(req), id)), nil
	default:
		return Intent{}, fmt.Errorf("%w: %s on test request", ErrUnsupportedAction, action)
	}
}

// TapTestRequest handles a tap on a test request row. A tap on an open card
// only closes it and reports ok=false.
func (d *Dispatcher) TapTestRequest(sel *swipe.Selection, id string) (Intent, bool, error) {
	if sel != nil && sel.Tap(id) {
		return Intent{}, false, nil
	}
	req, ok := d.testRequest(id)
	if !ok {
		return Intent{}, false, &records.NotFoundError{ID: id}
	}
	return d.emit(Navigate(defaultTarget(req), id)), true, nil
}

// TapAppointment handles a tap on an appointment request row.
func (d *Dispatcher) TapAppointment(sel *swipe.Selection, id string) (Intent, bool, error) {
	if sel != nil && sel.Tap(id) {
		return Intent{}, false, nil
	}
	if d.appointments == nil {
		return Intent{}, false, &records.NotFoundError{ID: id}
	}
	if _, ok := d.appointments.Get(id); !ok {
		return Intent{}, false, &records.NotFoundError{ID: id}
	}
	return d.emit(Navigate(TargetAppointmentDetails, id)), true, nil
}

func (d *Dispatcher) testRequest(id string) (records.TestRequest, bool) {
	if d.tests == nil {
		return records.TestRequest{}, false
	}
	return d.tests.Get(id)
}

func (d *Dispatcher) emit(i Intent) Intent {
	d.log.WithFields(logrus.Fields{"kind": i.Kind, "record_id": i.RequestID()}).Debug("intent emitted")
	if d.sink != nil {
		d.sink.Emit(i)
	}
	return i
}

// defaultTarget is where a tap leads: pending requests still need processing,
// anything else has reports to read.
func defaultTarget(r records.TestRequest) Target {
	if r.Status == records.StatusPending {
		return TargetProcessRequest
	}
	return TargetViewReports
}

func closeCard(sel *swipe.Selection, id string) {
	if sel != nil {
		sel.Close(id)
	}
}
