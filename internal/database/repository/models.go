package repository

import "time"

// Patient represents a patients row.
type Patient struct {
	ID         string
	Name       string
	DOB        string
	Gender     string
	BloodGroup *string
	Phone      *string
	Email      *string
	Address    *string
}

// TestRequest represents a test_requests row with its ordered tests.
type TestRequest struct {
	ID          string
	Seq         int
	Patient     string
	Tests       []string
	Status      string
	Priority    string
	RequestedAt time.Time
	Doctor      string
	Hospital    string
	UpdatedAt   time.Time
}

// AppointmentRequest represents an appointment_requests row.
type AppointmentRequest struct {
	ID            string
	Seq           int
	PatientID     string
	PatientName   string
	Reason        string
	PreferredDate string
	PreferredTime string
	Status        string
	UpdatedAt     time.Time
}

// Appointment is a booked slot on a doctor's schedule.
type Appointment struct {
	ID          string
	PatientName string
	Day         time.Time
	Slot        string
	VisitType   string
	Status      string
}

// Document is an entry on a patient's record timeline.
type Document struct {
	ID        string
	PatientID string
	Type      string
	Title     string
	FileType  string
	IssuedAt  time.Time
}

// DayCount is a per-day aggregate.
type DayCount struct {
	Day   time.Time
	Count int
}
