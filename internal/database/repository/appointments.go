package repository

import (
	"context"
	"database/sql"
	"slices"
	"time"
)

// AppointmentRepo handles the doctor's booked schedule.
type AppointmentRepo struct {
	db *sql.DB
}

func NewAppointmentRepo(db *sql.DB) *AppointmentRepo { return &AppointmentRepo{db: db} }

func (r *AppointmentRepo) Upsert(ctx context.Context, a Appointment) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO appointments(id, patient_name, day, slot, visit_type, status) VALUES(?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
	 patient_name=excluded.patient_name, day=excluded.day, slot=excluded.slot,
	 visit_type=excluded.visit_type, status=excluded.status;
	`, a.ID, a.PatientName, dayOf(a.Day), a.Slot, a.VisitType, a.Status)
	return err
}

// ListForDay returns the appointments on day's calendar date ordered by slot time.
func (r *AppointmentRepo) ListForDay(ctx context.Context, day time.Time) ([]Appointment, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, patient_name, day, slot, COALESCE(visit_type, ''), status FROM appointments WHERE day = ? ORDER BY id`, dayOf(day))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.PatientName, &a.Day, &a.Slot, &a.VisitType, &a.Status); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sortBySlot(out)
	return out, nil
}

// CountConfirmedByDay returns one entry per calendar day in [from, to],
// zero-filled, counting confirmed appointments.
func (r *AppointmentRepo) CountConfirmedByDay(ctx context.Context, from, to time.Time) ([]DayCount, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT day, COUNT(*) FROM appointments
	WHERE status = 'confirmed' AND day >= ? AND day <= ?
	GROUP BY day`, dayOf(from), dayOf(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	byDay := map[string]int{}
	for rows.Next() {
		var d time.Time
		var n int
		if err := rows.Scan(&d, &n); err != nil {
			return nil, err
		}
		byDay[d.Format(time.DateOnly)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var out []DayCount
	for d := dayOf(from); !d.After(dayOf(to)); d = d.AddDate(0, 0, 1) {
		out = append(out, DayCount{Day: d, Count: byDay[d.Format(time.DateOnly)]})
	}
	return out, nil
}

// dayOf truncates t to midnight UTC of its calendar date.
func dayOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// sortBySlot orders "10:00 AM" style slots chronologically; unparseable
// slots sort last in their stored order.
func sortBySlot(items []Appointment) {
	slices.SortStableFunc(items, func(a, b Appointment) int {
		ta, errA := time.Parse("3:04 PM", a.Slot)
		tb, errB := time.Parse("3:04 PM", b.Slot)
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		}
		return ta.Compare(tb)
	})
}
