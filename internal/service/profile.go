package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jask/clinicdesk/internal/database/repository"
)

// dobLayout is how patient dates of birth are stored.
const dobLayout = "02/01/2006"

var ErrInvalidProfile = errors.New("invalid profile")

// ProfileService assembles the patient profile screen.
type ProfileService struct {
	Patients  *repository.PatientRepo
	Documents *repository.DocumentRepo
}

// Profile is a patient with their document timeline, newest first.
type Profile struct {
	Patient   repository.Patient
	Age       int
	HasAge    bool
	Documents []repository.Document
}

// Load returns the profile for id, or for the first stored patient when id
// is empty. A missing patient yields a nil profile.
func (s *ProfileService) Load(ctx context.Context, id string, now time.Time) (*Profile, error) {
	var (
		p   *repository.Patient
		err error
	)
	if id == "" {
		p, err = s.Patients.First(ctx)
	} else {
		p, err = s.Patients.Get(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("load patient: %w", err)
	}
	if p == nil {
		return nil, nil
	}
	docs, err := s.Documents.ListByPatient(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	age, ok := AgeOn(p.DOB, now)
	return &Profile{Patient: *p, Age: age, HasAge: ok, Documents: docs}, nil
}

// AgeOn returns the age in whole years on now for a dd/mm/yyyy birth date.
func AgeOn(dob string, now time.Time) (int, bool) {
	born, err := time.Parse(dobLayout, dob)
	if err != nil {
		return 0, false
	}
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

// PatientEdit is the editable part of a patient profile as typed into the
// edit form. Blank optional fields are cleared.
type PatientEdit struct {
	Name       string
	DOB        string
	Gender     string
	BloodGroup string
	Phone      string
	Email      string
	Address    string
}

// EditFor prefills an edit from the stored patient.
func EditFor(p repository.Patient) PatientEdit {
	return PatientEdit{
		Name:       p.Name,
		DOB:        p.DOB,
		Gender:     p.Gender,
		BloodGroup: deref(p.BloodGroup),
		Phone:      deref(p.Phone),
		Email:      deref(p.Email),
		Address:    deref(p.Address),
	}
}

// Update validates e and saves it over patient id.
func (s *ProfileService) Update(ctx context.Context, id string, e PatientEdit) error {
	p := repository.Patient{
		ID:         id,
		Name:       strings.TrimSpace(e.Name),
		DOB:        strings.TrimSpace(e.DOB),
		Gender:     strings.TrimSpace(e.Gender),
		BloodGroup: optional(e.BloodGroup),
		Phone:      optional(e.Phone),
		Email:      optional(e.Email),
		Address:    optional(e.Address),
	}
	if p.Name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidProfile)
	}
	if p.DOB != "" {
		if _, err := time.Parse(dobLayout, p.DOB); err != nil {
			return fmt.Errorf("%w: date of birth must be dd/mm/yyyy", ErrInvalidProfile)
		}
	}
	if err := s.Patients.Update(ctx, p); err != nil {
		return fmt.Errorf("update patient %s: %w", id, err)
	}
	return nil
}

func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
