package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"

	"github.com/jask/clinicdesk/internal/database/repository"
)

//go:embed fixtures.toml
var fixturesTOML string

type fixtures struct {
	Patients []struct {
		Key        string `toml:"key"`
		Name       string `toml:"name"`
		DOB        string `toml:"dob"`
		Gender     string `toml:"gender"`
		BloodGroup string `toml:"blood_group"`
		Phone      string `toml:"phone"`
		Email      string `toml:"email"`
		Address    string `toml:"address"`
	} `toml:"patients"`
	Documents []struct {
		Key      string `toml:"key"`
		Patient  string `toml:"patient"`
		Type     string `toml:"type"`
		Title    string `toml:"title"`
		FileType string `toml:"file_type"`
		DaysAgo  int    `toml:"days_ago"`
	} `toml:"documents"`
	TestRequests []struct {
		Key      string   `toml:"key"`
		Patient  string   `toml:"patient"`
		Tests    []string `toml:"tests"`
		Priority string   `toml:"priority"`
		Status   string   `toml:"status"`
		HoursAgo int      `toml:"hours_ago"`
		Doctor   string   `toml:"doctor"`
		Hospital string   `toml:"hospital"`
	} `toml:"test_requests"`
	AppointmentRequests []struct {
		Key           string `toml:"key"`
		Patient       string `toml:"patient"`
		PatientName   string `toml:"patient_name"`
		Reason        string `toml:"reason"`
		PreferredDate string `toml:"preferred_date"`
		PreferredTime string `toml:"preferred_time"`
	} `toml:"appointment_requests"`
	Appointments []struct {
		Key         string `toml:"key"`
		PatientName string `toml:"patient_name"`
		Slot        string `toml:"slot"`
		VisitType   string `toml:"visit_type"`
		Status      string `toml:"status"`
		DaysAgo     int    `toml:"days_ago"`
	} `toml:"appointments"`
}

// SeedID derives the stable id of a fixture record.
func SeedID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(kind+":"+key)).String()
}

// SeedDefaults loads the mock worklists into a new database.
// It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) error {
	return seedAt(ctx, db, Now())
}

func seedAt(ctx context.Context, db *sql.DB, now time.Time) error {
	tests := repository.NewTestRequestRepo(db)
	n, err := tests.Count(ctx)
	if err == nil && n > 0 {
		return nil
	}

	var fx fixtures
	if _, err := toml.Decode(fixturesTOML, &fx); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	patients := repository.NewPatientRepo(db)
	for _, p := range fx.Patients {
		row := repository.Patient{
			ID:         SeedID("patient", p.Key),
			Name:       p.Name,
			DOB:        p.DOB,
			Gender:     p.Gender,
			BloodGroup: optional(p.BloodGroup),
			Phone:      optional(p.Phone),
			Email:      optional(p.Email),
			Address:    optional(p.Address),
		}
		if err := patients.Upsert(ctx, row); err != nil {
			return fmt.Errorf("seed patient %s: %w", p.Key, err)
		}
	}

	docs := repository.NewDocumentRepo(db)
	for _, d := range fx.Documents {
		row := repository.Document{
			ID:        SeedID("document", d.Key),
			PatientID: SeedID("patient", d.Patient),
			Type:      d.Type,
			Title:     d.Title,
			FileType:  d.FileType,
			IssuedAt:  now.AddDate(0, 0, -d.DaysAgo),
		}
		if err := docs.Upsert(ctx, row); err != nil {
			return fmt.Errorf("seed document %s: %w", d.Key, err)
		}
	}

	for i, t := range fx.TestRequests {
		row := repository.TestRequest{
			ID:          SeedID("test-request", t.Key),
			Seq:         i,
			Patient:     t.Patient,
			Tests:       t.Tests,
			Status:      t.Status,
			Priority:    t.Priority,
			RequestedAt: now.Add(-time.Duration(t.HoursAgo) * time.Hour),
			Doctor:      t.Doctor,
			Hospital:    t.Hospital,
		}
		if err := tests.Upsert(ctx, row); err != nil {
			return fmt.Errorf("seed test request %s: %w", t.Key, err)
		}
	}

	requests := repository.NewAppointmentRequestRepo(db)
	for i, a := range fx.AppointmentRequests {
		row := repository.AppointmentRequest{
			ID:            SeedID("appointment-request", a.Key),
			Seq:           i,
			PatientName:   a.PatientName,
			Reason:        a.Reason,
			PreferredDate: a.PreferredDate,
			PreferredTime: a.PreferredTime,
			Status:        "pending",
		}
		if a.Patient != "" {
			row.PatientID = SeedID("patient", a.Patient)
		}
		if err := requests.Upsert(ctx, row); err != nil {
			return fmt.Errorf("seed appointment request %s: %w", a.Key, err)
		}
	}

	appts := repository.NewAppointmentRepo(db)
	for _, a := range fx.Appointments {
		row := repository.Appointment{
			ID:          SeedID("appointment", a.Key),
			PatientName: a.PatientName,
			Day:         now.AddDate(0, 0, -a.DaysAgo),
			Slot:        a.Slot,
			VisitType:   a.VisitType,
			Status:      a.Status,
		}
		if err := appts.Upsert(ctx, row); err != nil {
			return fmt.Errorf("seed appointment %s: %w", a.Key, err)
		}
	}
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
