package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jask/clinicdesk/internal/database/repository"
	"github.com/jask/clinicdesk/internal/dispatch"
	"github.com/jask/clinicdesk/internal/logging"
	"github.com/jask/clinicdesk/internal/records"
)

// Worklist moves lab and appointment requests between sqlite and the
// in-memory stores the screens work on.
type Worklist struct {
	TestRequests        *repository.TestRequestRepo
	AppointmentRequests *repository.AppointmentRequestRepo
	Log                 *logging.Logger
}

const (
	kindTestRequest        = "test_request"
	kindAppointmentRequest = "appointment_request"
)

// LoadTestRequests returns a store over every valid stored test request.
// Invalid rows are logged and skipped.
func (w *Worklist) LoadTestRequests(ctx context.Context) (*records.Store[records.TestRequest], error) {
	rows, err := w.TestRequests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load test requests: %w", err)
	}
	items := make([]records.TestRequest, 0, len(rows))
	for _, row := range rows {
		r := records.TestRequest{
			ID:        row.ID,
			Patient:   row.Patient,
			Tests:     row.Tests,
			Status:    records.Status(row.Status),
			Priority:  records.Priority(row.Priority),
			Timestamp: row.RequestedAt,
			Doctor:    row.Doctor,
			Hospital:  row.Hospital,
		}
		if err := r.Validate(); err != nil {
			w.log().WithRecord(kindTestRequest, row.ID).WithError(err).Warn("skipping test request")
			continue
		}
		items = append(items, r)
	}
	return records.NewStore(records.TestRequestLifecycle, items...), nil
}

// LoadAppointmentRequests returns a store over every valid stored
// appointment request, decided ones included.
func (w *Worklist) LoadAppointmentRequests(ctx context.Context) (*records.Store[records.AppointmentRequest], error) {
	rows, err := w.AppointmentRequests.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load appointment requests: %w", err)
	}
	items := make([]records.AppointmentRequest, 0, len(rows))
	for _, row := range rows {
		r := records.AppointmentRequest{
			ID:            row.ID,
			PatientID:     row.PatientID,
			PatientName:   row.PatientName,
			Reason:        row.Reason,
			PreferredDate: row.PreferredDate,
			PreferredTime: row.PreferredTime,
			Status:        records.Status(row.Status),
		}
		if err := r.Validate(); err != nil {
			w.log().WithRecord(kindAppointmentRequest, row.ID).WithError(err).Warn("skipping appointment request")
			continue
		}
		items = append(items, r)
	}
	return records.NewStore(records.AppointmentRequestLifecycle, items...), nil
}

// ApplyIntent persists a status change the dispatcher already applied in
// memory. Navigation intents need no persistence.
func (w *Worklist) ApplyIntent(ctx context.Context, in dispatch.Intent) error {
	if in.Kind != dispatch.KindStatusChange {
		return nil
	}
	kind := kindTestRequest
	err := repository.ErrNotFound
	if records.AppointmentRequestLifecycle.Known(in.NewStatus) {
		kind = kindAppointmentRequest
		err = w.AppointmentRequests.UpdateStatus(ctx, in.ID, string(in.NewStatus))
	}
	if errors.Is(err, repository.ErrNotFound) && records.TestRequestLifecycle.Known(in.NewStatus) {
		kind = kindTestRequest
		err = w.TestRequests.UpdateStatus(ctx, in.ID, string(in.NewStatus))
	}
	entry := w.log().WithRecord(kind, in.ID).WithFields(logrus.Fields{"component": "worklist", "status": in.NewStatus})
	if err != nil {
		entry.WithError(err).Error("persist status change")
		if errors.Is(err, repository.ErrNotFound) {
			return &records.NotFoundError{ID: in.ID}
		}
		return fmt.Errorf("persist %s: %w", in, err)
	}
	entry.Info("status changed")
	return nil
}

func (w *Worklist) log() *logging.Logger {
	if w.Log == nil {
		return logging.Discard()
	}
	return w.Log
}
