package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jask/clinicdesk/internal/database/repository"
	"github.com/jask/clinicdesk/internal/dispatch"
	"github.com/jask/clinicdesk/internal/records"
	"github.com/jask/clinicdesk/internal/swipe"
	"github.com/jask/clinicdesk/internal/theme"
)

const (
	defaultWidth = 80
	maxWidth     = 100
	cardHeight   = 3
)

// page stacks rendered blocks and tracks the row each one starts on, so
// cards can record where the mouse will find them.
type page struct {
	blocks []string
	y      int
}

func (p *page) add(block string) {
	p.blocks = append(p.blocks, block)
	p.y += lipgloss.Height(block)
}

func (p *page) String() string { return strings.Join(p.blocks, "\n") }

func (a *App) View() string {
	st := a.deps.Theme.Styles()
	width := a.contentWidth()
	a.hits = a.hits[:0]

	p := &page{}
	p.add(a.renderHeader(st, width))
	p.add(a.renderNav(st))
	p.add("")

	if a.screen == screenDetail {
		p.add(a.renderDetail(st, width))
	} else {
		switch a.role {
		case roleLab:
			a.renderLab(p, st, width)
		case rolePatient:
			if a.form != nil {
				p.add(a.form.view(st, width))
			} else {
				a.renderProfile(p, st, width)
			}
		default:
			a.renderDoctor(p, st, width)
		}
	}

	p.add("")
	p.add(a.renderStatus(st, width))
	a.keys.role = a.role
	a.keys.detail = a.screen == screenDetail
	a.keys.document = a.docOpen
	if a.form == nil {
		p.add(a.help.View(a.keys))
	}

	out := p.String()
	if a.docOpen && a.role == rolePatient {
		if d, ok := a.selectedDocument(); ok {
			out = overlayCenter(out, a.renderDocument(st, width, d), width, lipgloss.Height(out))
		}
	}
	return out
}

func (a *App) contentWidth() int {
	w := a.width
	if w <= 0 {
		w = defaultWidth
	}
	return min(w, maxWidth)
}

// ---------------------------------------------------------------------------
// Chrome
// ---------------------------------------------------------------------------

func (a *App) renderHeader(st theme.Styles, width int) string {
	var greeting, name string
	switch a.role {
	case roleLab:
		greeting, name = "Welcome", "HealthCare Diagnostics"
	case rolePatient:
		greeting, name = "My Profile", "Patient"
		if a.profile != nil {
			name = a.profile.Patient.Name
		}
	default:
		greeting, name = greetingFor(a.now().In(a.tz)), "Dr. Sarah Johnson"
	}
	left := lipgloss.JoinVertical(lipgloss.Left, st.Greeting.Render(greeting), st.Title.Render(name))

	icon := "☾ dark"
	if a.deps.Theme.IsDark() {
		icon = "☀ light"
	}
	right := st.Muted.Render("[t] " + icon)
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, left, strings.Repeat(" ", gap), right)
}

func greetingFor(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good Morning"
	case h < 17:
		return "Good Afternoon"
	default:
		return "Good Evening"
	}
}

func (a *App) renderNav(st theme.Styles) string {
	tabs := []struct{ role, label string }{
		{roleDoctor, "1 Doctor"},
		{roleLab, "2 Lab"},
		{rolePatient, "3 Profile"},
	}
	parts := make([]string, 0, len(tabs))
	for _, t := range tabs {
		if t.role == a.role {
			parts = append(parts, st.NavActive.Render(t.label))
		} else {
			parts = append(parts, st.NavIdle.Render(t.label))
		}
	}
	return strings.Join(parts, " ")
}

func (a *App) renderStatus(st theme.Styles, width int) string {
	text := a.status
	if a.searching {
		return a.search.View()
	}
	if q := a.search.Value(); q != "" && text == "" {
		text = fmt.Sprintf("filtered by %q (esc to clear)", q)
	}
	if text == "" {
		return ""
	}
	style := st.Status
	if a.statusErr {
		style = st.StatusErr
	}
	return style.Width(width).Render(truncate(" "+text, width))
}

func renderStats(st theme.Styles, width int, stats ...stat) string {
	each := max(width/len(stats)-2, 12)
	cards := make([]string, 0, len(stats))
	for _, s := range stats {
		body := lipgloss.JoinVertical(lipgloss.Center,
			st.StatValue.Foreground(s.color).Render(s.value),
			st.Faint.Render(truncate(s.label, each-2)),
		)
		cards = append(cards, st.StatCard.Width(each).Render(body))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

type stat struct {
	label string
	value string
	color lipgloss.Color
}

// ---------------------------------------------------------------------------
// Home screens
// ---------------------------------------------------------------------------

func (a *App) renderLab(p *page, st theme.Styles, width int) {
	p.add(renderStats(st, width,
		stat{"Pending Tests", fmt.Sprint(a.tests.PendingCount()), theme.ColorPending},
		stat{"Completed", fmt.Sprint(a.tests.CompletedCount()), theme.ColorCompleted},
		stat{"Total", fmt.Sprint(a.tests.TotalCount()), theme.ColorInfo},
	))
	p.add("")
	p.add(st.Section.Render("Test Requests") + st.Muted.Render(" · "+filterLabel(a.lab.filter)+"  [f] filter"))

	items := a.visibleTests()
	if len(items) == 0 {
		p.add(st.Faint.Render("No test requests."))
		return
	}
	now := a.now()
	for i, r := range items {
		marker := ""
		if r.Priority == records.PriorityHigh {
			marker = lipgloss.NewStyle().Foreground(theme.ColorHigh).Bold(true).Render(" ● HIGH")
		}
		lines := [cardHeight]string{
			st.Title.Render(r.Patient) + marker,
			st.Faint.Render(r.Summary()),
			st.Muted.Render(ago(r.Timestamp, now)) + st.Faint.Render(" · "+statusLabel(r.Status)),
		}
		a.addCard(p, st, width, &a.lab, i, r.ID, lines, []button{
			{dispatch.ActionProcess, "Process", theme.ColorPending},
			{dispatch.ActionView, "View", theme.ColorInfo},
		})
	}
}

func (a *App) renderDoctor(p *page, st theme.Styles, width int) {
	p.add(renderStats(st, width,
		stat{"Pending Requests", fmt.Sprint(a.appts.PendingCount()), theme.ColorPending},
		stat{"Today's Appointments", fmt.Sprint(len(a.today.Appointments)), theme.ColorInfo},
		stat{"Confirmed", fmt.Sprint(a.today.Confirmed), theme.ColorCompleted},
	))
	p.add("")

	p.add(st.Section.Render("Today's Schedule"))
	if len(a.today.Appointments) == 0 {
		p.add(st.Faint.Render("Nothing booked today."))
	}
	for _, ap := range a.today.Appointments {
		badgeColor := theme.ColorCompleted
		if ap.Status != "confirmed" {
			badgeColor = theme.ColorPending
		}
		badge := st.Badge.Background(badgeColor).Render(ap.Status)
		left := st.Text.Render(initial(ap.PatientName)+"  "+ap.PatientName) + st.Faint.Render("  "+ap.Slot+" · "+ap.VisitType)
		gap := max(width-lipgloss.Width(left)-lipgloss.Width(badge), 1)
		p.add(left + strings.Repeat(" ", gap) + badge)
	}
	p.add("")

	p.add(st.Section.Render("Appointment Requests"))
	items := a.visibleAppointments()
	if len(items) == 0 {
		p.add(st.Faint.Render("No pending requests."))
	}
	for i, r := range items {
		lines := [cardHeight]string{
			st.Title.Render(r.PatientName),
			st.Faint.Render(r.Reason),
			st.Muted.Render(strings.TrimSpace(r.PreferredDate + " " + r.PreferredTime)),
		}
		a.addCard(p, st, width, &a.doctor, i, r.ID, lines, []button{
			{dispatch.ActionApprove, "Approve", theme.ColorApprove},
			{dispatch.ActionReject, "Reject", theme.ColorReject},
		})
	}
	p.add("")

	p.add(st.Section.Render("This Week's Performance") + st.Muted.Render(fmt.Sprintf("  %d patients treated", weekTotal(a.week))))
	p.add(renderWeekChart(a.week, width, st))
}

func (a *App) renderProfile(p *page, st theme.Styles, width int) {
	if a.profile == nil {
		p.add(st.Faint.Render("No patient profile."))
		return
	}
	pt := a.profile.Patient
	age := "N/A"
	if a.profile.HasAge {
		age = fmt.Sprint(a.profile.Age)
	}
	rows := []string{
		st.Title.Render(pt.Name) + st.Muted.Render("  age "+age),
		field(st, "Date of birth", pt.DOB),
		field(st, "Gender", pt.Gender),
	}
	for _, f := range []struct {
		label string
		value *string
	}{
		{"Blood group", pt.BloodGroup},
		{"Phone", pt.Phone},
		{"Email", pt.Email},
		{"Address", pt.Address},
	} {
		if f.value != nil {
			rows = append(rows, field(st, f.label, *f.value))
		}
	}
	card := st.StatCard.Align(lipgloss.Left).Width(width - 2).Render(strings.Join(rows, "\n"))
	p.add(card)
	p.add("")

	p.add(st.Section.Render("Medical Documents"))
	if len(a.profile.Documents) == 0 {
		p.add(st.Faint.Render("No documents yet."))
		return
	}
	for i, d := range a.profile.Documents {
		color := theme.DocumentColor(d.Type, st.Mode)
		glyph := lipgloss.NewStyle().Foreground(color).Bold(true).Render(theme.DocumentGlyph(d.Type))
		title := st.Text.Render(d.Title)
		marker := "  "
		if i == a.docCursor {
			title = st.Selected.Render(d.Title)
			marker = st.NavActive.Render("›") + " "
		}
		line := fmt.Sprintf("%s%s  %s %s", marker, glyph, title, st.Faint.Render(d.IssuedAt.In(a.tz).Format(a.dateFormat())))
		p.add(line)
		p.add("  " + lipgloss.NewStyle().Foreground(color).Render("│") + "  " + st.Muted.Render(d.Type))
	}
}

// renderDocument is the detail box shown over the profile for one document.
func (a *App) renderDocument(st theme.Styles, width int, d repository.Document) string {
	color := theme.DocumentColor(d.Type, st.Mode)
	glyph := lipgloss.NewStyle().Foreground(color).Bold(true).Render(theme.DocumentGlyph(d.Type))
	rows := []string{
		glyph + " " + st.Title.Render(d.Title),
		"",
		field(st, "Type", titleCase(d.Type)),
		field(st, "Date", d.IssuedAt.In(a.tz).Format(a.dateFormat())),
	}
	if d.FileType != "" {
		rows = append(rows, field(st, "File type", d.FileType))
	}
	rows = append(rows, "", st.Faint.Render("esc close"))
	box := st.StatCard.Align(lipgloss.Left).BorderForeground(color)
	return box.Width(min(width-8, 48)).Render(strings.Join(rows, "\n"))
}

func field(st theme.Styles, label, value string) string {
	return st.Faint.Render(label+": ") + st.Text.Render(value)
}

// ---------------------------------------------------------------------------
// Swipe cards
// ---------------------------------------------------------------------------

type button struct {
	action dispatch.Action
	label  string
	color  lipgloss.Color
}

// addCard renders one swipeable card and records its hit zone.
func (a *App) addCard(p *page, st theme.Styles, width int, list *listState, index int, id string, lines [cardHeight]string, buttons []button) {
	style := st.Card
	cursor := "  "
	if index == list.cursor && a.screen == screenHome {
		style = st.Selected
		cursor = lipgloss.NewStyle().Foreground(theme.ColorAccent).Render("▌ ")
	}
	body := make([]string, cardHeight)
	for i, l := range lines {
		prefix := "  "
		if i == 0 {
			prefix = cursor
		}
		body[i] = truncate(prefix+l, width-1)
	}
	card := style.Width(width).Render(strings.Join(body, "\n"))

	reveal := revealCells(list.sel, a.unitsPerCell(), width)
	strip, zones := actionStrip(buttons, reveal, width)
	shift := offsetCells(list.sel.Offset(id), a.unitsPerCell(), width)
	rendered := slideOver(card, strip, width, shift)

	h := hitZone{id: id, index: index, top: p.y, bottom: p.y + lipgloss.Height(rendered) - 1}
	if list.sel.IsOpen(id) {
		h.buttons = zones
	}
	a.hits = append(a.hits, h)
	p.add(rendered)
}

func revealCells(sel *swipe.Selection, unitsPerCell float64, width int) int {
	return min(int(math.Round(sel.Config().MaxReveal/unitsPerCell)), width)
}

func offsetCells(offset, unitsPerCell float64, width int) int {
	return min(int(math.Round(-offset/unitsPerCell)), width)
}

// actionStrip lays buttons out flush right across reveal cells.
func actionStrip(buttons []button, reveal, width int) (string, []buttonZone) {
	if reveal <= 0 || len(buttons) == 0 {
		return "", nil
	}
	each := reveal / len(buttons)
	left := width - reveal
	parts := make([]string, 0, len(buttons))
	zones := make([]buttonZone, 0, len(buttons))
	for i, b := range buttons {
		w := each
		if i == len(buttons)-1 {
			w = reveal - each*(len(buttons)-1)
		}
		parts = append(parts, lipgloss.NewStyle().
			Background(b.color).Foreground(theme.ColorOnAccent).Bold(true).
			Width(w).Height(cardHeight).
			Align(lipgloss.Center, lipgloss.Center).
			Render(truncate(b.label, w)))
		zones = append(zones, buttonZone{left: left, right: left + w - 1, action: b.action})
		left += w
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, parts...)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, row), zones
}

// ---------------------------------------------------------------------------
// Detail screens
// ---------------------------------------------------------------------------

func (a *App) renderDetail(st theme.Styles, width int) string {
	id := a.detail.RequestID()
	switch a.detail.Target {
	case dispatch.TargetAppointmentDetails:
		r, ok := a.appts.Get(id)
		if !ok {
			return st.Faint.Render("Request not found.")
		}
		rows := []string{
			st.Section.Render("Appointment Request"),
			"",
			st.Title.Render(r.PatientName),
			field(st, "Reason", r.Reason),
			field(st, "Preferred", strings.TrimSpace(r.PreferredDate+" "+r.PreferredTime)),
			field(st, "Status", statusLabel(r.Status)),
		}
		if r.Status == records.StatusPending {
			rows = append(rows, "", st.Muted.Render("[a] approve  [x] reject  [esc] back"))
		}
		return strings.Join(rows, "\n")

	case dispatch.TargetProcessRequest, dispatch.TargetViewReports:
		r, ok := a.tests.Get(id)
		if !ok {
			return st.Faint.Render("Request not found.")
		}
		title := "Process Request"
		if a.detail.Target == dispatch.TargetViewReports {
			title = "Test Report"
		}
		rows := []string{
			st.Section.Render(title),
			"",
			st.Title.Render(r.Patient),
			field(st, "Priority", string(r.Priority)),
			field(st, "Ordered by", r.Doctor),
			field(st, "Hospital", r.Hospital),
			field(st, "Requested", r.Timestamp.In(a.tz).Format(a.dateFormat()+" 3:04 PM")),
			field(st, "Status", statusLabel(r.Status)),
			"",
		}
		for _, t := range r.Tests {
			mark := st.Faint.Render("○ awaiting results")
			if r.Status == records.StatusCompleted {
				mark = lipgloss.NewStyle().Foreground(theme.ColorCompleted).Render("✓ result ready")
			}
			rows = append(rows, truncate("  "+st.Text.Render(t)+"  "+mark, width))
		}
		if a.detail.Target == dispatch.TargetProcessRequest && r.Status != records.StatusCompleted {
			rows = append(rows, "", st.Muted.Render("[enter] mark completed  [esc] back"))
		}
		return strings.Join(rows, "\n")
	}
	return st.Faint.Render(a.detail.String())
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

func (a *App) dateFormat() string {
	if a.cfg.UI.DateFormat != "" {
		return a.cfg.UI.DateFormat
	}
	return "Jan 2, 2006"
}

func filterLabel(f records.Filter) string {
	switch f {
	case records.FilterPending:
		return "pending"
	case records.FilterCompleted:
		return "completed"
	case records.FilterAll:
		return "all"
	}
	return string(f)
}

func statusLabel(s records.Status) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func initial(name string) string {
	for _, r := range name {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// ago renders t relative to now the way the worklists show request age.
func ago(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
