package repository

import (
	"context"
	"database/sql"
)

// DocumentRepo handles a patient's document timeline.
type DocumentRepo struct {
	db *sql.DB
}

func NewDocumentRepo(db *sql.DB) *DocumentRepo { return &DocumentRepo{db: db} }

func (r *DocumentRepo) Upsert(ctx context.Context, d Document) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO documents(id, patient_id, type, title, file_type, issued_at) VALUES(?, ?, ?, ?, NULLIF(?, ''), ?)
	ON CONFLICT(id) DO UPDATE SET patient_id=excluded.patient_id, type=excluded.type, title=excluded.title,
	 file_type=excluded.file_type, issued_at=excluded.issued_at;
	`, d.ID, d.PatientID, d.Type, d.Title, d.FileType, d.IssuedAt)
	return err
}

// ListByPatient returns the patient's documents, newest first.
func (r *DocumentRepo) ListByPatient(ctx context.Context, patientID string) ([]Document, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, patient_id, type, title, COALESCE(file_type, ''), issued_at FROM documents WHERE patient_id = ? ORDER BY issued_at DESC, id`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.PatientID, &d.Type, &d.Title, &d.FileType, &d.IssuedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
