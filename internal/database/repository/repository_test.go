package repository_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/clinicdesk/internal/database"
	"github.com/jask/clinicdesk/internal/database/repository"
)

func setupRepoTest(t *testing.T) (*sql.DB, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, ctx
}

func TestTestRequestRepoUpsertReplacesTests(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	repo := repository.NewTestRequestRepo(db)
	at := time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Upsert(ctx, repository.TestRequest{
		ID: "b", Seq: 1, Patient: "Second", Tests: []string{"CBC"}, Status: "pending", Priority: "normal", RequestedAt: at,
	}))
	require.NoError(t, repo.Upsert(ctx, repository.TestRequest{
		ID: "a", Seq: 0, Patient: "First", Tests: []string{"Lipid", "TSH"}, Status: "pending", Priority: "high", RequestedAt: at,
	}))
	require.NoError(t, repo.Upsert(ctx, repository.TestRequest{
		ID: "a", Seq: 0, Patient: "First", Tests: []string{"HbA1c"}, Status: "pending", Priority: "high", RequestedAt: at,
	}))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "a", list[0].ID)
	require.Equal(t, []string{"HbA1c"}, list[0].Tests)
	require.Equal(t, "b", list[1].ID)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, n)
}

func TestTestRequestRepoRejectsUnknownStatus(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	repo := repository.NewTestRequestRepo(db)
	require.NoError(t, repo.Upsert(ctx, repository.TestRequest{
		ID: "a", Patient: "P", Tests: []string{"CBC"}, Status: "pending", Priority: "normal", RequestedAt: time.Now().UTC(),
	}))
	require.Error(t, repo.UpdateStatus(ctx, "a", "approved"))
}

func TestUpdateStatusMissingRow(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)

	err := repository.NewTestRequestRepo(db).UpdateStatus(ctx, "missing", "completed")
	require.ErrorIs(t, err, repository.ErrNotFound)

	err = repository.NewAppointmentRequestRepo(db).UpdateStatus(ctx, "missing", "approved")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAppointmentRequestRepoUpdateStatus(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	repo := repository.NewAppointmentRequestRepo(db)
	require.NoError(t, repo.Upsert(ctx, repository.AppointmentRequest{ID: "r1", PatientName: "Ann", Status: "pending"}))
	require.NoError(t, repo.UpdateStatus(ctx, "r1", "approved"))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "approved", list[0].Status)
}

func TestAppointmentRepoDayQueries(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	repo := repository.NewAppointmentRepo(db)
	day := time.Date(2026, 5, 20, 15, 30, 0, 0, time.UTC)

	for _, a := range []repository.Appointment{
		{ID: "1", PatientName: "Late", Day: day, Slot: "2:00 PM", Status: "confirmed"},
		{ID: "2", PatientName: "Early", Day: day, Slot: "9:15 AM", Status: "confirmed"},
		{ID: "3", PatientName: "Mid", Day: day, Slot: "11:30 AM", Status: "pending"},
		{ID: "4", PatientName: "Yesterday", Day: day.AddDate(0, 0, -1), Slot: "10:00 AM", Status: "confirmed"},
	} {
		require.NoError(t, repo.Upsert(ctx, a))
	}

	today, err := repo.ListForDay(ctx, day)
	require.NoError(t, err)
	require.Len(t, today, 3)
	require.Equal(t, []string{"Early", "Mid", "Late"}, []string{today[0].PatientName, today[1].PatientName, today[2].PatientName})

	counts, err := repo.CountConfirmedByDay(ctx, day.AddDate(0, 0, -2), day)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	require.Equal(t, 0, counts[0].Count)
	require.Equal(t, 1, counts[1].Count)
	require.Equal(t, 2, counts[2].Count)
}

func TestPatientAndDocuments(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	patients := repository.NewPatientRepo(db)
	docs := repository.NewDocumentRepo(db)

	missing, err := patients.First(ctx)
	require.NoError(t, err)
	require.Nil(t, missing)

	blood := "A-"
	require.NoError(t, patients.Upsert(ctx, repository.Patient{ID: "p1", Name: "Jane", DOB: "01/02/1980", BloodGroup: &blood}))
	got, err := patients.Get(ctx, "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "A-", *got.BloodGroup)
	require.Nil(t, got.Phone)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, docs.Upsert(ctx, repository.Document{ID: "d1", PatientID: "p1", Type: "report", Title: "Old", IssuedAt: base}))
	require.NoError(t, docs.Upsert(ctx, repository.Document{ID: "d2", PatientID: "p1", Type: "invoice", Title: "New", IssuedAt: base.AddDate(0, 1, 0)}))

	list, err := docs.ListByPatient(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "New", list[0].Title)

	require.Error(t, docs.Upsert(ctx, repository.Document{ID: "d3", PatientID: "nobody", Type: "report", Title: "x", IssuedAt: base}))
}

func TestPatientRepoUpdate(t *testing.T) {
	t.Parallel()
	db, ctx := setupRepoTest(t)
	patients := repository.NewPatientRepo(db)

	blood, phone := "O+", "555-0100"
	require.NoError(t, patients.Upsert(ctx, repository.Patient{ID: "p1", Name: "Jane", DOB: "01/02/1980", Gender: "Female", BloodGroup: &blood}))

	require.NoError(t, patients.Update(ctx, repository.Patient{ID: "p1", Name: "Jane Roe", DOB: "", Phone: &phone}))
	got, err := patients.Get(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "Jane Roe", got.Name)
	require.Empty(t, got.DOB)
	require.Empty(t, got.Gender)
	require.Nil(t, got.BloodGroup, "cleared optional fields are stored as NULL")
	require.Equal(t, "555-0100", *got.Phone)

	err = patients.Update(ctx, repository.Patient{ID: "nobody", Name: "X"})
	require.ErrorIs(t, err, repository.ErrNotFound)
}
