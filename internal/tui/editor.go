package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/clinicdesk/internal/database/repository"
	"github.com/jask/clinicdesk/internal/service"
	"github.com/jask/clinicdesk/internal/theme"
)

// profileForm edits a patient's details one text field at a time.
type profileForm struct {
	patientID string
	labels    []string
	inputs    []textinput.Model
	focus     int
	saving    bool
}

func newProfileForm(p repository.Patient) *profileForm {
	e := service.EditFor(p)
	fields := []struct{ label, value string }{
		{"Name", e.Name},
		{"Date of birth", e.DOB},
		{"Gender", e.Gender},
		{"Blood group", e.BloodGroup},
		{"Phone", e.Phone},
		{"Email", e.Email},
		{"Address", e.Address},
	}
	f := &profileForm{patientID: p.ID}
	for i, fd := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 128
		in.SetValue(fd.value)
		in.CursorEnd()
		if i == 0 {
			in.Focus()
		}
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, in)
	}
	f.inputs[1].Placeholder = "dd/mm/yyyy"
	return f
}

// edit collects the typed values in field order.
func (f *profileForm) edit() service.PatientEdit {
	v := func(i int) string { return f.inputs[i].Value() }
	return service.PatientEdit{
		Name:       v(0),
		DOB:        v(1),
		Gender:     v(2),
		BloodGroup: v(3),
		Phone:      v(4),
		Email:      v(5),
		Address:    v(6),
	}
}

func (f *profileForm) move(dir int) {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + dir + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

type formResult int

const (
	formEditing formResult = iota
	formSubmit
	formCancel
)

// update feeds a key to the form. Submit and cancel are left to the caller.
func (f *profileForm) update(m tea.KeyMsg) (formResult, tea.Cmd) {
	switch m.String() {
	case "esc":
		return formCancel, nil
	case "enter":
		if f.saving {
			return formEditing, nil
		}
		return formSubmit, nil
	case "tab", "down":
		f.move(1)
		return formEditing, nil
	case "shift+tab", "up":
		f.move(-1)
		return formEditing, nil
	}
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(m)
	return formEditing, cmd
}

func (f *profileForm) view(st theme.Styles, width int) string {
	labelWidth := 0
	for _, l := range f.labels {
		labelWidth = max(labelWidth, len(l))
	}
	lines := []string{st.Section.Render("Edit Profile"), ""}
	for i, in := range f.inputs {
		label := padRight(f.labels[i], labelWidth)
		in.Width = max(width-labelWidth-6, 10)
		if i == f.focus {
			lines = append(lines, st.NavActive.Render(label)+"  "+in.View())
		} else {
			lines = append(lines, st.Faint.Render(label)+"  "+in.View())
		}
	}
	lines = append(lines, "", st.Muted.Render("enter save  esc cancel  tab next field"))
	return strings.Join(lines, "\n")
}
