package tui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jask/clinicdesk/internal/config"
	"github.com/jask/clinicdesk/internal/database"
	"github.com/jask/clinicdesk/internal/database/repository"
	"github.com/jask/clinicdesk/internal/dispatch"
	"github.com/jask/clinicdesk/internal/records"
	"github.com/jask/clinicdesk/internal/service"
	"github.com/jask/clinicdesk/internal/theme"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func newTestApp(t *testing.T, role string) *App {
	t.Helper()
	cfg := config.Config{}
	cfg.UI.Role = role
	cfg.UI.Theme = "light"
	cfg.Swipe.UnitsPerCell = 10
	a := New(context.Background(), cfg, Deps{}, time.UTC)
	a.now = func() time.Time { return fixedNow }
	a.Update(worklistsMsg{
		tests: []records.TestRequest{
			{ID: "t1", Patient: "Robert Johnson", Tests: []string{"Complete Blood Count"}, Status: records.StatusPending, Priority: records.PriorityHigh, Timestamp: fixedNow.Add(-2 * time.Hour)},
			{ID: "t2", Patient: "Linda Martinez", Tests: []string{"Lipid Profile"}, Status: records.StatusPending, Priority: records.PriorityNormal, Timestamp: fixedNow.Add(-4 * time.Hour)},
			{ID: "t3", Patient: "Maria Garcia", Tests: []string{"HbA1c"}, Status: records.StatusCompleted, Priority: records.PriorityNormal, Timestamp: fixedNow.Add(-26 * time.Hour)},
		},
		appts: []records.AppointmentRequest{
			{ID: "r1", PatientName: "Sophia Turner", Reason: "Headaches", PreferredDate: "Friday", PreferredTime: "2:30 PM", Status: records.StatusPending},
			{ID: "r2", PatientName: "Liam Scott", Reason: "Annual physical", PreferredDate: "Monday", PreferredTime: "9:00 AM", Status: records.StatusPending},
		},
	})
	return a
}

// newSeededApp drives real services over a freshly seeded database.
func newSeededApp(t *testing.T, role string) *App {
	t.Helper()
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "clinic.db")
	require.NoError(t, database.RunMigrations(dbPath))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.SeedDefaults(ctx, db))

	cfg := config.Config{}
	cfg.UI.Role = role
	cfg.UI.Theme = "light"
	a := New(ctx, cfg, Deps{
		Worklist: &service.Worklist{
			TestRequests:        repository.NewTestRequestRepo(db),
			AppointmentRequests: repository.NewAppointmentRequestRepo(db),
		},
		Profile: &service.ProfileService{Patients: repository.NewPatientRepo(db), Documents: repository.NewDocumentRepo(db)},
	}, time.UTC)
	a.now = func() time.Time { return fixedNow }
	run(t, a, a.loadWorklists())
	run(t, a, a.loadProfile())
	return a
}

// run executes cmd and feeds the message it produces back into the app.
func run(t *testing.T, a *App, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	require.NotNil(t, cmd)
	msg := cmd()
	require.NotNil(t, msg)
	_, next := a.Update(msg)
	return next
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func press(a *App, msgs ...tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	for _, m := range msgs {
		_, cmd = a.Update(m)
	}
	return cmd
}

// settle runs frame ticks until the frame clock stops.
func settle(t *testing.T, a *App) {
	t.Helper()
	for i := 0; i < 1000 && a.ticking; i++ {
		a.Update(frameMsg(fixedNow))
	}
	require.False(t, a.ticking)
}

func TestLabRevealAndProcess(t *testing.T) {
	a := newTestApp(t, config.RoleLab)
	require.Equal(t, []string{"t1", "t2"}, a.visibleIDs())

	cmd := press(a, tea.KeyMsg{Type: tea.KeyLeft})
	require.NotNil(t, cmd)
	require.Equal(t, "t1", a.lab.sel.OpenID())
	settle(t, a)
	require.InDelta(t, -150, a.lab.sel.Offset("t1"), 0.001)

	press(a, runes("p"))
	require.Equal(t, screenDetail, a.screen)
	require.Equal(t, dispatch.TargetProcessRequest, a.detail.Target)
	require.Equal(t, "t1", a.detail.RequestID())
	require.False(t, a.lab.sel.IsOpen("t1"))
}

func TestLabTapOpensViewForCompleted(t *testing.T) {
	a := newTestApp(t, config.RoleLab)
	press(a, runes("f"))
	require.Equal(t, records.FilterCompleted, a.lab.filter)
	require.Equal(t, []string{"t3"}, a.visibleIDs())

	press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, screenDetail, a.screen)
	require.Equal(t, dispatch.TargetViewReports, a.detail.Target)

	press(a, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, screenHome, a.screen)
}

func TestLabFilterCycle(t *testing.T) {
	a := newTestApp(t, config.RoleLab)
	require.Equal(t, records.FilterPending, a.lab.filter)
	press(a, runes("f"))
	require.Equal(t, records.FilterCompleted, a.lab.filter)
	press(a, runes("f"))
	require.Equal(t, records.FilterAll, a.lab.filter)
	require.Len(t, a.visibleIDs(), 3)
	press(a, runes("f"))
	require.Equal(t, records.FilterPending, a.lab.filter)
}

func TestProcessScreenCompletesRequest(t *testing.T) {
	a := newTestApp(t, config.RoleLab)
	press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, dispatch.TargetProcessRequest, a.detail.Target)

	cmd := press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	require.Equal(t, screenHome, a.screen)
	r, ok := a.tests.Get("t1")
	require.True(t, ok)
	require.Equal(t, records.StatusCompleted, r.Status)
	require.Equal(t, 2, a.tests.CompletedCount())
	require.Equal(t, []string{"t2"}, a.visibleIDs())
}

func TestDoctorApproveFromKeyboard(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	require.Equal(t, []string{"r1", "r2"}, a.visibleIDs())

	cmd := press(a, runes("a"))
	require.NotNil(t, cmd)
	r, ok := a.appts.Get("r1")
	require.True(t, ok)
	require.Equal(t, records.StatusApproved, r.Status)
	require.Equal(t, []string{"r2"}, a.visibleIDs())
	require.Equal(t, 2, a.appts.TotalCount())

	press(a, persistedMsg{intent: dispatch.StatusChange("r1", records.StatusApproved)})
	require.Equal(t, "appointment approved", a.status)
	require.False(t, a.statusErr)
}

func TestDoctorUnsupportedActionSurfacesError(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	press(a, tea.KeyMsg{Type: tea.KeyLeft})
	press(a, runes("p"))
	require.True(t, a.statusErr)
	require.Equal(t, "action not available here", a.status)
	require.Empty(t, a.doctor.sel.OpenID())
}

func TestDoctorTapOpenCardOnlyCloses(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	press(a, tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, "r1", a.doctor.sel.OpenID())

	press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, screenHome, a.screen)
	require.Empty(t, a.doctor.sel.OpenID())

	press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, screenDetail, a.screen)
	require.Equal(t, dispatch.TargetAppointmentDetails, a.detail.Target)

	press(a, runes("x"))
	require.Equal(t, screenHome, a.screen)
	r, _ := a.appts.Get("r1")
	require.Equal(t, records.StatusRejected, r.Status)
}

func TestCursorMoveClosesRevealedCard(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	press(a, tea.KeyMsg{Type: tea.KeyLeft})
	press(a, tea.KeyMsg{Type: tea.KeyDown})
	require.Equal(t, 1, a.doctor.cursor)
	require.Empty(t, a.doctor.sel.OpenID())

	press(a, tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, "r2", a.doctor.sel.OpenID())
	press(a, tea.KeyMsg{Type: tea.KeyRight})
	require.Empty(t, a.doctor.sel.OpenID())
}

func TestSearchNarrowsList(t *testing.T) {
	a := newTestApp(t, config.RoleLab)
	press(a, runes("/"))
	require.True(t, a.searching)
	press(a, runes("l"), runes("i"), runes("n"), runes("d"))
	require.Equal(t, []string{"t2"}, a.visibleIDs())

	press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, a.searching)
	require.Equal(t, []string{"t2"}, a.visibleIDs())

	press(a, tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, []string{"t1", "t2"}, a.visibleIDs())
}

func TestMouseDragRevealsAndTapCloses(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	a.View()
	require.NotEmpty(t, a.hits)
	h := a.hits[0]
	require.Equal(t, "r1", h.id)

	press(a,
		tea.MouseMsg{X: 60, Y: h.top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 55, Y: h.top, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
	)
	require.InDelta(t, -50, a.doctor.sel.Offset("r1"), 0.001)
	press(a, tea.MouseMsg{X: 52, Y: h.top, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	require.InDelta(t, -80, a.doctor.sel.Offset("r1"), 0.001)

	press(a, tea.MouseMsg{X: 52, Y: h.top, Action: tea.MouseActionRelease})
	require.Equal(t, "r1", a.doctor.sel.OpenID())
	settle(t, a)

	press(a,
		tea.MouseMsg{X: 5, Y: h.top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 5, Y: h.top, Action: tea.MouseActionRelease},
	)
	require.Empty(t, a.doctor.sel.OpenID())
	require.Equal(t, screenHome, a.screen)
}

func TestMouseShortDragSettlesClosed(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	a.View()
	h := a.hits[1]
	press(a,
		tea.MouseMsg{X: 60, Y: h.top, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 55, Y: h.top, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 55, Y: h.top, Action: tea.MouseActionRelease},
	)
	require.Empty(t, a.doctor.sel.OpenID())
	require.Equal(t, 0.0, a.doctor.sel.RestOffset("r2"))
}

func TestMouseClickRevealedButton(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	press(a, tea.KeyMsg{Type: tea.KeyLeft})
	settle(t, a)
	a.View()
	h := a.hits[0]
	require.Len(t, h.buttons, 2)
	reject := h.buttons[1]
	require.Equal(t, dispatch.ActionReject, reject.action)

	press(a,
		tea.MouseMsg{X: reject.left, Y: h.top + 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: reject.left, Y: h.top + 1, Action: tea.MouseActionRelease},
	)
	r, _ := a.appts.Get("r1")
	require.Equal(t, records.StatusRejected, r.Status)
	require.Empty(t, a.doctor.sel.OpenID())
}

func TestRoleSwitchClosesCards(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	press(a, tea.KeyMsg{Type: tea.KeyLeft})
	cmd := press(a, runes("2"))
	require.NotNil(t, cmd)
	require.Equal(t, roleLab, a.role)
	require.Equal(t, roleLab, a.cfg.UI.Role)
	require.Empty(t, a.doctor.sel.OpenID())
}

func TestThemeToggle(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	require.Equal(t, theme.Light, a.deps.Theme.Mode())
	press(a, runes("t"))
	require.Equal(t, theme.Dark, a.deps.Theme.Mode())
	require.Contains(t, ansi.Strip(a.View()), "light")
}

func TestErrMsgShownInStatus(t *testing.T) {
	a := newTestApp(t, config.RoleDoctor)
	press(a, errMsg{&records.NotFoundError{ID: "gone"}})
	require.True(t, a.statusErr)
	require.Equal(t, "record no longer exists", a.status)
}

func TestViewRendersScreens(t *testing.T) {
	a := newTestApp(t, config.RoleLab)
	out := ansi.Strip(a.View())
	require.Contains(t, out, "Pending Tests")
	require.Contains(t, out, "Robert Johnson")
	require.Contains(t, out, "HIGH")
	require.Contains(t, out, "2 hours ago")
	require.NotContains(t, out, "Maria Garcia")

	press(a, runes("1"))
	press(a, scheduleMsg{
		today: service.Day{
			Appointments: []repository.Appointment{{ID: "a", PatientName: "Emma Wilson", Slot: "10:00 AM", VisitType: "Follow-up", Status: "confirmed"}},
			Confirmed:    1,
		},
		week: []repository.DayCount{
			{Day: fixedNow.AddDate(0, 0, -1), Count: 2},
			{Day: fixedNow, Count: 1},
		},
	})
	out = ansi.Strip(a.View())
	require.Contains(t, out, "Good Morning")
	require.Contains(t, out, "Emma Wilson")
	require.Contains(t, out, "Sophia Turner")
	require.Contains(t, out, "3 patients treated")

	press(a, runes("3"))
	press(a, profileMsg{profile: &service.Profile{
		Patient:   repository.Patient{ID: "p", Name: "John Doe", DOB: "15/05/1990", Gender: "Male"},
		Age:       35,
		HasAge:    true,
		Documents: []repository.Document{{ID: "d", Type: "report", Title: "Blood Work Report", IssuedAt: fixedNow}},
	}})
	out = ansi.Strip(a.View())
	require.Contains(t, out, "John Doe")
	require.Contains(t, out, "age 35")
	require.Contains(t, out, "Blood Work Report")
	require.Contains(t, out, "Mar 10, 2026")
}

func TestSlideOverRevealsRightEdge(t *testing.T) {
	card := strings.Repeat("c", 10)
	under := strings.Repeat("u", 10)
	require.Equal(t, card, slideOver(card, under, 10, 0))
	require.Equal(t, "ccccccccuu", slideOver(card, under, 10, 2))
	require.Equal(t, under, slideOver(card, under, 10, 10))
}

func TestActionStripZones(t *testing.T) {
	strip, zones := actionStrip([]button{
		{dispatch.ActionApprove, "Approve", theme.ColorApprove},
		{dispatch.ActionReject, "Reject", theme.ColorReject},
	}, 15, 40)
	require.Len(t, zones, 2)
	require.Equal(t, buttonZone{left: 25, right: 31, action: dispatch.ActionApprove}, zones[0])
	require.Equal(t, buttonZone{left: 32, right: 39, action: dispatch.ActionReject}, zones[1])
	require.Equal(t, 40, ansi.StringWidth(splitLines(strip)[0]))
	require.Len(t, splitLines(strip), cardHeight)
}

func TestAgo(t *testing.T) {
	require.Equal(t, "just now", ago(fixedNow, fixedNow))
	require.Equal(t, "1 hour ago", ago(fixedNow.Add(-time.Hour), fixedNow))
	require.Equal(t, "5 minutes ago", ago(fixedNow.Add(-5*time.Minute), fixedNow))
	require.Equal(t, "2 days ago", ago(fixedNow.Add(-49*time.Hour), fixedNow))
}

func TestProfileEditSavesAndReloads(t *testing.T) {
	a := newSeededApp(t, config.RolePatient)
	require.NotNil(t, a.profile)
	require.Equal(t, "John Doe", a.profile.Patient.Name)

	press(a, runes("e"))
	require.NotNil(t, a.form)
	require.Contains(t, ansi.Strip(a.View()), "Edit Profile")

	// global keys type into the form instead of switching screens
	press(a, tea.KeyMsg{Type: tea.KeyCtrlU}, runes("Jon Doe 1"))
	require.Equal(t, rolePatient, a.role)
	require.Equal(t, "Jon Doe 1", a.form.edit().Name)

	cmd := press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, a.form.saving)
	reload := run(t, a, cmd)
	require.Nil(t, a.form)
	require.Equal(t, "profile saved", a.status)
	run(t, a, reload)
	require.Equal(t, "Jon Doe 1", a.profile.Patient.Name)
	require.Len(t, a.profile.Documents, 3)
}

func TestProfileEditRejectsBadDateAndKeepsForm(t *testing.T) {
	a := newSeededApp(t, config.RolePatient)
	press(a, runes("e"), tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 1, a.form.focus)
	press(a, tea.KeyMsg{Type: tea.KeyCtrlU}, runes("1990-05-15"))

	run(t, a, press(a, tea.KeyMsg{Type: tea.KeyEnter}))
	require.NotNil(t, a.form, "a failed save leaves the form open")
	require.False(t, a.form.saving)
	require.True(t, a.statusErr)
	require.Contains(t, a.status, "dd/mm/yyyy")

	press(a, tea.KeyMsg{Type: tea.KeyEsc})
	require.Nil(t, a.form)
	require.Equal(t, "John Doe", a.profile.Patient.Name)
}

func TestDocumentDetailOverlay(t *testing.T) {
	a := newTestApp(t, config.RolePatient)
	a.width, a.height = 80, 40
	press(a, profileMsg{profile: &service.Profile{
		Patient: repository.Patient{ID: "p", Name: "John Doe"},
		Documents: []repository.Document{
			{ID: "d1", Type: "report", Title: "Blood Work Report", IssuedAt: fixedNow},
			{ID: "d2", Type: "prescription", Title: "Amoxicillin Prescription", FileType: "Image", IssuedAt: fixedNow.AddDate(0, 0, -7)},
		},
	}})

	press(a, runes("j"), runes("j"))
	require.Equal(t, 1, a.docCursor, "cursor stops at the last document")
	press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, a.docOpen)

	out := ansi.Strip(a.View())
	require.Contains(t, out, "Type: Prescription")
	require.Contains(t, out, "Date: Mar 3, 2026")
	require.Contains(t, out, "File type: Image")
	require.Contains(t, out, "esc close")
	require.Contains(t, out, "John Doe", "the profile stays visible around the box")

	press(a, tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, a.docOpen)
	require.NotContains(t, ansi.Strip(a.View()), "esc close")

	press(a, profileMsg{profile: nil})
	press(a, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, a.docOpen)
}

func TestOverlayAtKeepsBaseAroundBox(t *testing.T) {
	base := strings.Join([]string{"aaaaaaaaaa", "bbbbbbbbbb", "cccccccccc"}, "\n")
	out := overlayAt(base, "XY\nZW", 3, 1, 10, 3)
	require.Equal(t, []string{"aaaaaaaaaa", "bbbXYbbbbb", "cccZWccccc"}, splitLines(out))

	// rows past the base are dropped
	out = overlayAt(base, "1\n2\n3", 0, 2, 10, 3)
	require.Equal(t, []string{"aaaaaaaaaa", "bbbbbbbbbb", "1ccccccccc"}, splitLines(out))

	out = overlayCenter(base, "##", 10, 3)
	require.Equal(t, "bbbb##bbbb", splitLines(out)[1])
}

func TestFailedPersistReloadsWorklists(t *testing.T) {
	a := newSeededApp(t, config.RoleDoctor)
	id := database.SeedID("appointment-request", "req-sophia")
	require.Equal(t, 3, a.appts.PendingCount())

	// the store already moved on when the database refuses the change
	require.NoError(t, a.appts.SetStatus(id, records.StatusApproved))
	require.Equal(t, 2, a.appts.PendingCount())

	cmd := press(a, persistFailedMsg{
		intent: dispatch.StatusChange(id, records.StatusApproved),
		err:    errors.New("database is locked"),
	})
	require.True(t, a.statusErr)
	require.Equal(t, "error: database is locked", a.status)

	run(t, a, cmd)
	r, ok := a.appts.Get(id)
	require.True(t, ok)
	require.Equal(t, records.StatusPending, r.Status)
	require.Equal(t, 3, a.appts.PendingCount())
}

func TestPersistCmdReportsFailure(t *testing.T) {
	a := newSeededApp(t, config.RoleDoctor)
	msg := a.persistCmd(dispatch.StatusChange("gone", records.StatusApproved))()
	failed, ok := msg.(persistFailedMsg)
	require.True(t, ok)
	require.ErrorIs(t, failed.err, records.ErrNotFound)
	require.Equal(t, "gone", failed.intent.ID)
}
