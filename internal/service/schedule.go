package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jask/clinicdesk/internal/database/repository"
)

// WeekDays is the span of the doctor's performance chart.
const WeekDays = 7

// Schedule reads the doctor's booked appointments.
type Schedule struct {
	Appointments *repository.AppointmentRepo
}

// Day summarises one calendar day of the schedule.
type Day struct {
	Appointments []repository.Appointment
	Confirmed    int
	Pending      int
}

// Today returns the appointments on now's calendar date.
func (s *Schedule) Today(ctx context.Context, now time.Time) (Day, error) {
	list, err := s.Appointments.ListForDay(ctx, now)
	if err != nil {
		return Day{}, fmt.Errorf("today's appointments: %w", err)
	}
	d := Day{Appointments: list}
	for _, a := range list {
		switch a.Status {
		case "confirmed":
			d.Confirmed++
		case "pending":
			d.Pending++
		}
	}
	return d, nil
}

// Week returns confirmed appointment counts for the WeekDays days ending on
// now's date, oldest first.
func (s *Schedule) Week(ctx context.Context, now time.Time) ([]repository.DayCount, error) {
	counts, err := s.Appointments.CountConfirmedByDay(ctx, now.AddDate(0, 0, -(WeekDays-1)), now)
	if err != nil {
		return nil, fmt.Errorf("weekly appointments: %w", err)
	}
	return counts, nil
}
