// ABOUTME: Add and edit form for motivation posts
// ABOUTME: Applies the shorter add rule or the longer edit rule before submitting

package motivationform

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
	"github.com/kabar-app/kabar/internal/validation"
)

// SubmitMsg carries validated text. ID is zero when adding.
type SubmitMsg struct {
	ID   int
	Text string
}

// CancelledMsg is sent when the user leaves the form
type CancelledMsg struct{}

// Form is the motivation editor model
type Form struct {
	id         int
	text       string
	form       *huh.Form
	err        string
	submitting bool
}

// New creates an add form
func New() *Form {
	return Edit(0, "")
}

// Edit creates an edit form for an existing motivation
func Edit(id int, text string) *Form {
	f := &Form{id: id, text: text}
	f.form = f.buildForm()
	return f
}

// Editing reports whether the form updates an existing motivation
func (f *Form) Editing() bool {
	return f.id != 0
}

// Submitting reports whether a request is running
func (f *Form) Submitting() bool {
	return f.submitting
}

// SetError re-enables the form and shows msg
func (f *Form) SetError(msg string) tea.Cmd {
	f.err = msg
	f.submitting = false
	f.form = f.buildForm()
	return f.form.Init()
}

func (f *Form) rules() any {
	if f.Editing() {
		return validation.MotivationUpdate{}
	}
	return validation.Motivation{}
}

func (f *Form) buildForm() *huh.Form {
	rule := validation.Rule(f.rules(), "motivation")
	title, desc, limit := "New motivation", "3 to 200 characters", 200
	if f.Editing() {
		title, desc, limit = "Edit motivation", "10 to 500 characters", 500
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Motivation").
				Description(desc).
				Placeholder("Write something that keeps you going...").
				CharLimit(limit).
				Lines(5).
				Value(&f.text).
				Validate(func(s string) error {
					return validation.Var("motivation", strings.TrimSpace(s), rule)
				}),
		).Title(title),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		if f.submitting {
			return f, nil
		}
		if key.String() == "esc" {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
		f.err = ""
	}
	if f.submitting {
		return f, nil
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}

	if f.form.State == huh.StateCompleted {
		return f, f.submit()
	}
	return f, cmd
}

func (f *Form) submit() tea.Cmd {
	var err error
	var text string
	if f.Editing() {
		form := validation.MotivationUpdate{Text: f.text}
		err = validation.Struct(&form)
		text = form.Text
	} else {
		form := validation.Motivation{Text: f.text}
		err = validation.Struct(&form)
		text = form.Text
	}
	if err != nil {
		return f.SetError(err.Error())
	}

	f.submitting = true
	out := SubmitMsg{ID: f.id, Text: text}
	return func() tea.Msg { return out }
}

// View implements tea.Model
func (f *Form) View() string {
	var b strings.Builder
	b.WriteString(f.form.View())
	if f.submitting {
		b.WriteString("\n")
		b.WriteString(styles.Meta.Render("Saving..."))
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + f.err))
	}
	return b.String()
}
