package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// TestRequestRepo handles lab test requests.
type TestRequestRepo struct {
	db *sql.DB
}

func NewTestRequestRepo(db *sql.DB) *TestRequestRepo { return &TestRequestRepo{db: db} }

// Upsert writes the request and replaces its test list.
func (r *TestRequestRepo) Upsert(ctx context.Context, t TestRequest) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO test_requests(id, seq, patient, status, priority, requested_at, doctor, hospital, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 seq=excluded.seq, patient=excluded.patient, status=excluded.status, priority=excluded.priority,
	 requested_at=excluded.requested_at, doctor=excluded.doctor, hospital=excluded.hospital,
	 updated_at=CURRENT_TIMESTAMP;
	`, t.ID, t.Seq, t.Patient, t.Status, t.Priority, t.RequestedAt, t.Doctor, t.Hospital)
	if err != nil {
		return fmt.Errorf("upsert test request %s: %w", t.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM test_request_tests WHERE request_id = ?`, t.ID); err != nil {
		return err
	}
	for i, name := range t.Tests {
		if _, err := tx.ExecContext(ctx, `INSERT INTO test_request_tests(request_id, position, name) VALUES(?, ?, ?)`, t.ID, i, name); err != nil {
			return fmt.Errorf("insert test %q for %s: %w", name, t.ID, err)
		}
	}
	return tx.Commit()
}

func (r *TestRequestRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE test_requests SET status = ?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return expectRow(res, "test request", id)
}

// List returns every request in insertion (seq) order.
func (r *TestRequestRepo) List(ctx context.Context) ([]TestRequest, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, seq, patient, status, priority, requested_at, COALESCE(doctor, ''), COALESCE(hospital, ''), updated_at FROM test_requests ORDER BY seq, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TestRequest
	for rows.Next() {
		var t TestRequest
		if err := rows.Scan(&t.ID, &t.Seq, &t.Patient, &t.Status, &t.Priority, &t.RequestedAt, &t.Doctor, &t.Hospital, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tests, err := r.fetchTests(ctx)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Tests = tests[out[i].ID]
	}
	return out, nil
}

func (r *TestRequestRepo) fetchTests(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT request_id, name FROM test_request_tests ORDER BY request_id, position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string][]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		out[id] = append(out[id], name)
	}
	return out, rows.Err()
}

// Count returns the number of stored requests.
func (r *TestRequestRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM test_requests`).Scan(&n)
	return n, err
}

func expectRow(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %s: %w", kind, id, ErrNotFound)
	}
	return nil
}
