package repository

import (
	"context"
	"database/sql"
)

// PatientRepo handles patient profiles.
type PatientRepo struct {
	db *sql.DB
}

func NewPatientRepo(db *sql.DB) *PatientRepo { return &PatientRepo{db: db} }

func (r *PatientRepo) Upsert(ctx context.Context, p Patient) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO patients(id, name, dob, gender, blood_group, phone, email, address) VALUES(?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET name=excluded.name, dob=excluded.dob, gender=excluded.gender,
	 blood_group=excluded.blood_group, phone=excluded.phone, email=excluded.email, address=excluded.address;
	`, p.ID, p.Name, p.DOB, p.Gender, p.BloodGroup, p.Phone, p.Email, p.Address)
	return err
}

// Update rewrites an existing patient's details. Unknown ids are ErrNotFound.
func (r *PatientRepo) Update(ctx context.Context, p Patient) error {
	res, err := r.db.ExecContext(ctx, `
	UPDATE patients SET name = ?, dob = NULLIF(?, ''), gender = NULLIF(?, ''), blood_group = ?, phone = ?, email = ?, address = ?
	WHERE id = ?
	`, p.Name, p.DOB, p.Gender, p.BloodGroup, p.Phone, p.Email, p.Address, p.ID)
	if err != nil {
		return err
	}
	return expectRow(res, "patient", p.ID)
}

// Get returns nil, nil when no patient has the id.
func (r *PatientRepo) Get(ctx context.Context, id string) (*Patient, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, COALESCE(dob, ''), COALESCE(gender, ''), blood_group, phone, email, address FROM patients WHERE id = ?`, id)
	p, err := scanPatient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// First returns the first patient by id, or nil on an empty table.
func (r *PatientRepo) First(ctx context.Context) (*Patient, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, COALESCE(dob, ''), COALESCE(gender, ''), blood_group, phone, email, address FROM patients ORDER BY id LIMIT 1`)
	p, err := scanPatient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPatient(row scanner) (Patient, error) {
	var p Patient
	var blood, phone, email, address sql.NullString
	if err := row.Scan(&p.ID, &p.Name, &p.DOB, &p.Gender, &blood, &phone, &email, &address); err != nil {
		return Patient{}, err
	}
	if blood.Valid {
		p.BloodGroup = &blood.String
	}
	if phone.Valid {
		p.Phone = &phone.String
	}
	if email.Valid {
		p.Email = &email.String
	}
	if address.Valid {
		p.Address = &address.String
	}
	return p, nil
}
