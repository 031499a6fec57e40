package tui

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/jask/clinicdesk/internal/config"
	"github.com/jask/clinicdesk/internal/database/repository"
	"github.com/jask/clinicdesk/internal/dispatch"
	"github.com/jask/clinicdesk/internal/logging"
	"github.com/jask/clinicdesk/internal/records"
	"github.com/jask/clinicdesk/internal/service"
	"github.com/jask/clinicdesk/internal/swipe"
	"github.com/jask/clinicdesk/internal/theme"
)

const (
	roleDoctor  = config.RoleDoctor
	roleLab     = config.RoleLab
	rolePatient = config.RolePatient
)

// App ties together the three role home screens and the record detail
// screens they navigate to.
type App struct {
	ctx  context.Context
	cfg  config.Config
	deps Deps
	log  logrus.FieldLogger
	tz   *time.Location
	now  func() time.Time

	keys      keyMap
	help      help.Model
	search    textinput.Model
	searching bool

	role   string
	screen appScreen
	detail dispatch.Intent

	tests      *records.Store[records.TestRequest]
	appts      *records.Store[records.AppointmentRequest]
	dispatcher *dispatch.Dispatcher
	outbox     []dispatch.Intent

	lab    listState
	doctor listState

	today     service.Day
	week      []repository.DayCount
	profile   *service.Profile
	docCursor int
	docOpen   bool
	form      *profileForm

	status    string
	statusErr bool
	width     int
	height    int

	hits    []hitZone
	press   *pressState
	ticking bool
}

// Deps are the collaborators the App drives. Nil services are skipped.
type Deps struct {
	Worklist    *service.Worklist
	Schedule    *service.Schedule
	Profile     *service.ProfileService
	Maintenance *service.MaintenanceService
	Theme       *theme.Manager
	Log         *logging.Logger
}

type appScreen string

const (
	screenHome   appScreen = "home"
	screenDetail appScreen = "detail"
)

// listState is one swipeable worklist: its revealed-card state, the
// keyboard cursor and the active filter.
type listState struct {
	sel    *swipe.Selection
	cursor int
	filter records.Filter
}

func New(ctx context.Context, cfg config.Config, deps Deps, tz *time.Location) *App {
	if tz == nil {
		tz = time.Local
	}
	if deps.Log == nil {
		deps.Log = logging.Discard()
	}
	if deps.Theme == nil {
		mode, _ := theme.ParseMode(cfg.UI.Theme)
		deps.Theme = theme.NewManager(nil, mode, deps.Log.WithComponent("theme"))
	}
	swipeCfg := swipe.Config{
		MaxReveal:     cfg.Swipe.MaxReveal,
		OpenThreshold: cfg.Swipe.OpenThreshold,
		FPS:           cfg.Swipe.FPS,
	}

	search := textinput.New()
	search.Prompt = "search: "
	search.Placeholder = "patient name"
	search.CharLimit = 64

	a := &App{
		ctx:    ctx,
		cfg:    cfg,
		deps:   deps,
		log:    deps.Log.WithComponent("tui"),
		tz:     tz,
		now:    time.Now,
		keys:   newKeyMap(),
		help:   help.New(),
		search: search,
		role:   config.NormalizeRole(cfg.UI.Role),
		screen: screenHome,
		tests:  records.NewStore[records.TestRequest](records.TestRequestLifecycle),
		appts:  records.NewStore[records.AppointmentRequest](records.AppointmentRequestLifecycle),
		lab:    listState{sel: swipe.New(swipeCfg), filter: records.FilterPending},
		doctor: listState{sel: swipe.New(swipeCfg), filter: records.FilterPending},
	}
	a.dispatcher = dispatch.New(a.appts, a.tests, dispatch.SinkFunc(a.enqueue), deps.Log.WithComponent("dispatch"))
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadWorklists(), a.loadSchedule(), a.loadProfile())
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

type worklistsMsg struct {
	tests []records.TestRequest
	appts []records.AppointmentRequest
}

type scheduleMsg struct {
	today service.Day
	week  []repository.DayCount
}

type profileMsg struct{ profile *service.Profile }

type statusMsg string

type errMsg struct{ error }

type persistedMsg struct{ intent dispatch.Intent }

// persistFailedMsg reports an intent the database refused after the store
// already applied it.
type persistFailedMsg struct {
	intent dispatch.Intent
	err    error
}

type profileSavedMsg struct{ err error }

type resetDoneMsg struct{}

type frameMsg time.Time

func (a *App) loadWorklists() tea.Cmd {
	return func() tea.Msg {
		if a.deps.Worklist == nil {
			return nil
		}
		tests, err := a.deps.Worklist.LoadTestRequests(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		appts, err := a.deps.Worklist.LoadAppointmentRequests(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return worklistsMsg{tests: tests.Items(records.FilterAll), appts: appts.Items(records.FilterAll)}
	}
}

func (a *App) loadSchedule() tea.Cmd {
	return func() tea.Msg {
		if a.deps.Schedule == nil {
			return nil
		}
		now := a.now().In(a.tz)
		today, err := a.deps.Schedule.Today(a.ctx, now)
		if err != nil {
			return errMsg{err}
		}
		week, err := a.deps.Schedule.Week(a.ctx, now)
		if err != nil {
			return errMsg{err}
		}
		return scheduleMsg{today: today, week: week}
	}
}

func (a *App) loadProfile() tea.Cmd {
	return func() tea.Msg {
		if a.deps.Profile == nil {
			return nil
		}
		p, err := a.deps.Profile.Load(a.ctx, "", a.now().In(a.tz))
		if err != nil {
			return errMsg{err}
		}
		return profileMsg{profile: p}
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.help.Width = m.Width
	case tea.KeyMsg:
		if a.form != nil {
			return a, a.handleFormKey(m)
		}
		if a.searching {
			return a.handleSearchKey(m)
		}
		return a.handleKey(m)
	case tea.MouseMsg:
		return a, a.handleMouse(m)
	case frameMsg:
		moving := a.lab.sel.Step()
		if a.doctor.sel.Step() {
			moving = true
		}
		if !moving {
			a.ticking = false
			return a, nil
		}
		return a, a.frame()
	case worklistsMsg:
		a.tests.Replace(m.tests)
		a.appts.Replace(m.appts)
		a.clampCursors()
	case scheduleMsg:
		a.today = m.today
		a.week = m.week
	case profileMsg:
		a.profile = m.profile
		a.clampDocCursor()
	case profileSavedMsg:
		if m.err != nil {
			if a.form != nil {
				a.form.saving = false
			}
			a.setError(m.err)
			return a, nil
		}
		a.form = nil
		a.setStatus("profile saved")
		return a, a.loadProfile()
	case persistedMsg:
		a.setStatus(describeIntent(m.intent))
	case persistFailedMsg:
		a.setError(m.err)
		a.log.WithField("intent", m.intent.String()).Warn("reloading worklists after failed save")
		return a, a.loadWorklists()
	case resetDoneMsg:
		a.lab.sel.CloseAll()
		a.doctor.sel.CloseAll()
		a.setStatus("demo data restored")
		return a, tea.Batch(a.loadWorklists(), a.loadSchedule(), a.loadProfile())
	case statusMsg:
		a.setStatus(string(m))
	case errMsg:
		a.setError(m.error)
	}
	return a, nil
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(m, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(m, a.keys.Help):
		a.help.ShowAll = !a.help.ShowAll
		return a, nil
	case key.Matches(m, a.keys.Theme):
		if _, err := a.deps.Theme.Toggle(); err != nil {
			a.setError(fmt.Errorf("save theme: %w", err))
		}
		return a, nil
	case key.Matches(m, a.keys.Doctor):
		return a, a.switchRole(roleDoctor)
	case key.Matches(m, a.keys.Lab):
		return a, a.switchRole(roleLab)
	case key.Matches(m, a.keys.Patient):
		return a, a.switchRole(rolePatient)
	case key.Matches(m, a.keys.Reset):
		return a, a.resetCmd()
	}

	if a.screen == screenDetail {
		return a, a.handleDetailKey(m)
	}
	if a.role == rolePatient {
		return a, a.handleProfileKey(m)
	}

	list := a.activeList()
	if list == nil {
		return a, nil
	}
	ids := a.visibleIDs()
	id := ""
	if list.cursor < len(ids) {
		id = ids[list.cursor]
	}

	switch {
	case key.Matches(m, a.keys.Up):
		if list.cursor > 0 {
			list.cursor--
		}
		list.sel.CloseAll()
	case key.Matches(m, a.keys.Down):
		if list.cursor < len(ids)-1 {
			list.cursor++
		}
		list.sel.CloseAll()
	case key.Matches(m, a.keys.Search):
		a.searching = true
		return a, a.search.Focus()
	case key.Matches(m, a.keys.Back):
		if a.search.Value() != "" {
			a.search.SetValue("")
			a.clampCursors()
			return a, nil
		}
		list.sel.CloseAll()
	case key.Matches(m, a.keys.Filter):
		if a.role == roleLab {
			a.lab.filter = nextLabFilter(a.lab.filter)
			a.lab.cursor = 0
			a.lab.sel.CloseAll()
		}
	case id == "":
		return a, nil
	case key.Matches(m, a.keys.Reveal):
		list.sel.Open(id)
	case key.Matches(m, a.keys.Hide):
		list.sel.Close(id)
	case key.Matches(m, a.keys.Tap):
		return a, a.tap(id)
	case key.Matches(m, a.keys.Approve):
		return a, a.act(id, dispatch.ActionApprove)
	case key.Matches(m, a.keys.Reject):
		return a, a.act(id, dispatch.ActionReject)
	case key.Matches(m, a.keys.Process):
		return a, a.act(id, dispatch.ActionProcess)
	case key.Matches(m, a.keys.View):
		return a, a.act(id, dispatch.ActionView)
	}
	return a, a.animate()
}

func (a *App) handleSearchKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.Type {
	case tea.KeyEsc:
		a.search.SetValue("")
		fallthrough
	case tea.KeyEnter:
		a.searching = false
		a.search.Blur()
		a.clampCursors()
		return a, nil
	}
	var cmd tea.Cmd
	a.search, cmd = a.search.Update(m)
	a.clampCursors()
	return a, cmd
}

func (a *App) handleDetailKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Back):
		a.screen = screenHome
		return nil
	case a.detail.Target == dispatch.TargetAppointmentDetails && key.Matches(m, a.keys.Approve):
		return a.act(a.detail.RequestID(), dispatch.ActionApprove)
	case a.detail.Target == dispatch.TargetAppointmentDetails && key.Matches(m, a.keys.Reject):
		return a.act(a.detail.RequestID(), dispatch.ActionReject)
	case a.detail.Target == dispatch.TargetProcessRequest && key.Matches(m, a.keys.Tap):
		return a.completeTest(a.detail.RequestID())
	}
	return nil
}

// handleProfileKey moves through the document timeline, opens a document's
// details and starts editing the profile.
func (a *App) handleProfileKey(m tea.KeyMsg) tea.Cmd {
	if a.docOpen {
		if key.Matches(m, a.keys.Back) || key.Matches(m, a.keys.Tap) {
			a.docOpen = false
		}
		return nil
	}
	if a.profile == nil {
		return nil
	}
	switch {
	case key.Matches(m, a.keys.Up):
		if a.docCursor > 0 {
			a.docCursor--
		}
	case key.Matches(m, a.keys.Down):
		if a.docCursor < len(a.profile.Documents)-1 {
			a.docCursor++
		}
	case key.Matches(m, a.keys.Tap):
		a.docOpen = len(a.profile.Documents) > 0
	case key.Matches(m, a.keys.Edit):
		a.form = newProfileForm(a.profile.Patient)
		return textinput.Blink
	}
	return nil
}

func (a *App) handleFormKey(m tea.KeyMsg) tea.Cmd {
	if m.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	res, cmd := a.form.update(m)
	switch res {
	case formCancel:
		a.form = nil
		return nil
	case formSubmit:
		a.form.saving = true
		return a.saveProfileCmd(a.form.patientID, a.form.edit())
	}
	return cmd
}

func (a *App) selectedDocument() (repository.Document, bool) {
	if a.profile == nil || a.docCursor >= len(a.profile.Documents) {
		return repository.Document{}, false
	}
	return a.profile.Documents[a.docCursor], true
}

func (a *App) clampDocCursor() {
	n := 0
	if a.profile != nil {
		n = len(a.profile.Documents)
	}
	if a.docCursor >= n {
		a.docCursor = max(n-1, 0)
	}
	if n == 0 {
		a.docOpen = false
	}
}

func (a *App) switchRole(role string) tea.Cmd {
	a.lab.sel.CloseAll()
	a.doctor.sel.CloseAll()
	a.docOpen = false
	a.screen = screenHome
	a.press = nil
	if role == a.role {
		return a.animate()
	}
	a.role = role
	a.cfg.UI.Role = role
	return tea.Batch(a.animate(), a.saveRoleCmd(a.cfg))
}

func (a *App) activeList() *listState {
	switch a.role {
	case roleLab:
		return &a.lab
	case roleDoctor:
		return &a.doctor
	}
	return nil
}

func nextLabFilter(f records.Filter) records.Filter {
	switch f {
	case records.FilterPending:
		return records.FilterCompleted
	case records.FilterCompleted:
		return records.FilterAll
	default:
		return records.FilterPending
	}
}

// ---------------------------------------------------------------------------
// Dispatch
// ---------------------------------------------------------------------------

func (a *App) enqueue(i dispatch.Intent) {
	a.outbox = append(a.outbox, i)
}

// tap handles enter or a click on a card of the active list.
func (a *App) tap(id string) tea.Cmd {
	var err error
	switch a.role {
	case roleLab:
		_, _, err = a.dispatcher.TapTestRequest(a.lab.sel, id)
	case roleDoctor:
		_, _, err = a.dispatcher.TapAppointment(a.doctor.sel, id)
	}
	if err != nil {
		a.setError(err)
	}
	return tea.Batch(a.drain(), a.animate())
}

// act runs a quick action against the active list's record.
func (a *App) act(id string, action dispatch.Action) tea.Cmd {
	var err error
	switch a.role {
	case roleLab:
		_, err = a.dispatcher.TestRequest(a.lab.sel, id, action)
	case roleDoctor:
		_, err = a.dispatcher.Appointment(a.doctor.sel, id, action)
	default:
		return nil
	}
	if err != nil {
		a.setError(err)
	}
	a.clampCursors()
	return tea.Batch(a.drain(), a.animate())
}

// completeTest finishes a request from its process screen.
func (a *App) completeTest(id string) tea.Cmd {
	if err := a.tests.SetStatus(id, records.StatusCompleted); err != nil {
		a.setError(err)
		return nil
	}
	a.enqueue(dispatch.StatusChange(id, records.StatusCompleted))
	a.screen = screenHome
	a.clampCursors()
	return a.drain()
}

// drain turns emitted intents into screen changes and persistence commands.
func (a *App) drain() tea.Cmd {
	intents := a.outbox
	a.outbox = nil
	var cmds []tea.Cmd
	for _, in := range intents {
		switch in.Kind {
		case dispatch.KindNavigate:
			a.screen = screenDetail
			a.detail = in
		case dispatch.KindStatusChange:
			if a.screen == screenDetail && a.detail.RequestID() == in.ID {
				a.screen = screenHome
			}
			cmds = append(cmds, a.persistCmd(in))
		}
	}
	return tea.Batch(cmds...)
}

func (a *App) persistCmd(in dispatch.Intent) tea.Cmd {
	return func() tea.Msg {
		if a.deps.Worklist == nil {
			return persistedMsg{intent: in}
		}
		if err := a.deps.Worklist.ApplyIntent(a.ctx, in); err != nil {
			return persistFailedMsg{intent: in, err: err}
		}
		return persistedMsg{intent: in}
	}
}

func (a *App) saveProfileCmd(id string, e service.PatientEdit) tea.Cmd {
	return func() tea.Msg {
		if a.deps.Profile == nil {
			return profileSavedMsg{err: errors.New("profile editing unavailable")}
		}
		return profileSavedMsg{err: a.deps.Profile.Update(a.ctx, id, e)}
	}
}

func (a *App) saveRoleCmd(cfg config.Config) tea.Cmd {
	return func() tea.Msg {
		if err := config.Save(cfg); err != nil {
			a.log.WithError(err).Warn("save role")
			return errMsg{fmt.Errorf("save role: %w", err)}
		}
		return nil
	}
}

func (a *App) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if a.deps.Maintenance == nil {
			return statusMsg("reset unavailable")
		}
		if err := a.deps.Maintenance.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return resetDoneMsg{}
	}
}

func describeIntent(in dispatch.Intent) string {
	switch in.NewStatus {
	case records.StatusApproved:
		return "appointment approved"
	case records.StatusRejected:
		return "appointment rejected"
	case records.StatusCompleted:
		return "test marked completed"
	}
	return in.String()
}

// ---------------------------------------------------------------------------
// Animation
// ---------------------------------------------------------------------------

// animate starts the frame clock if a card is moving and it is not already
// running.
func (a *App) animate() tea.Cmd {
	if a.ticking || (!a.lab.sel.Animating() && !a.doctor.sel.Animating()) {
		return nil
	}
	a.ticking = true
	return a.frame()
}

func (a *App) frame() tea.Cmd {
	fps := a.lab.sel.Config().FPS
	return tea.Tick(time.Second/time.Duration(fps), func(t time.Time) tea.Msg {
		return frameMsg(t)
	})
}

// ---------------------------------------------------------------------------
// Views over the stores
// ---------------------------------------------------------------------------

func (a *App) visibleTests() []records.TestRequest {
	seq := a.tests.List(a.lab.filter)
	if q := a.search.Value(); q != "" {
		seq = records.Search(seq, q, func(r records.TestRequest) string { return r.Patient })
	}
	return slices.Collect(seq)
}

func (a *App) visibleAppointments() []records.AppointmentRequest {
	seq := a.appts.List(a.doctor.filter)
	if q := a.search.Value(); q != "" {
		seq = records.Search(seq, q, func(r records.AppointmentRequest) string { return r.PatientName })
	}
	return slices.Collect(seq)
}

func (a *App) visibleIDs() []string {
	var ids []string
	switch a.role {
	case roleLab:
		for _, r := range a.visibleTests() {
			ids = append(ids, r.ID)
		}
	case roleDoctor:
		for _, r := range a.visibleAppointments() {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

func (a *App) clampCursors() {
	if n := len(a.visibleTests()); a.lab.cursor >= n {
		a.lab.cursor = max(n-1, 0)
	}
	if n := len(a.visibleAppointments()); a.doctor.cursor >= n {
		a.doctor.cursor = max(n-1, 0)
	}
}

func (a *App) setStatus(s string) {
	a.status = s
	a.statusErr = false
}

func (a *App) setError(err error) {
	a.statusErr = true
	var nf *records.NotFoundError
	switch {
	case errors.As(err, &nf), errors.Is(err, repository.ErrNotFound):
		a.status = "record no longer exists"
	case errors.Is(err, service.ErrInvalidProfile):
		a.status = err.Error()
	case errors.Is(err, records.ErrInvalidTransition):
		a.status = "that change is not allowed"
	case errors.Is(err, dispatch.ErrUnsupportedAction):
		a.status = "action not available here"
	default:
		a.status = "error: " + err.Error()
	}
	a.log.WithError(err).Warn("ui error")
}
