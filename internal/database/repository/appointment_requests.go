package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// AppointmentRequestRepo handles patients' requests for a slot.
type AppointmentRequestRepo struct {
	db *sql.DB
}

func NewAppointmentRequestRepo(db *sql.DB) *AppointmentRequestRepo {
	return &AppointmentRequestRepo{db: db}
}

func (r *AppointmentRequestRepo) Upsert(ctx context.Context, a AppointmentRequest) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO appointment_requests(id, seq, patient_id, patient_name, reason, preferred_date, preferred_time, status, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 seq=excluded.seq, patient_id=excluded.patient_id, patient_name=excluded.patient_name, reason=excluded.reason,
	 preferred_date=excluded.preferred_date, preferred_time=excluded.preferred_time, status=excluded.status,
	 updated_at=CURRENT_TIMESTAMP;
	`, a.ID, a.Seq, a.PatientID, a.PatientName, a.Reason, a.PreferredDate, a.PreferredTime, a.Status)
	if err != nil {
		return fmt.Errorf("upsert appointment request %s: %w", a.ID, err)
	}
	return nil
}

func (r *AppointmentRequestRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE appointment_requests SET status = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return expectRow(res, "appointment request", id)
}

// List returns every request in insertion (seq) order, decided ones included.
func (r *AppointmentRequestRepo) List(ctx context.Context) ([]AppointmentRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, seq, COALESCE(patient_id, ''), patient_name, COALESCE(reason, ''),
	       COALESCE(preferred_date, ''), COALESCE(preferred_time, ''), status, updated_at
	FROM appointment_requests ORDER BY seq, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AppointmentRequest
	for rows.Next() {
		var a AppointmentRequest
		if err := rows.Scan(&a.ID, &a.Seq, &a.PatientID, &a.PatientName, &a.Reason, &a.PreferredDate, &a.PreferredTime, &a.Status, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
