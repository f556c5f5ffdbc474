// ABOUTME: Sign-in and sign-up forms as a bubbletea model
// ABOUTME: Validates fields inline and blocks resubmission while a request is running

package authform

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
	"github.com/kabar-app/kabar/internal/validation"
)

// Mode selects which form is shown
type Mode int

const (
	ModeSignIn Mode = iota
	ModeSignUp
)

// String returns the string representation of a Mode
func (m Mode) String() string {
	switch m {
	case ModeSignIn:
		return "sign-in"
	case ModeSignUp:
		return "sign-up"
	default:
		return "unknown"
	}
}

// SubmitMsg carries a locally valid form. Only the field matching Mode is set.
type SubmitMsg struct {
	Mode   Mode
	SignIn validation.SignIn
	SignUp validation.SignUp
}

// CancelledMsg is sent when the user leaves the form
type CancelledMsg struct{}

// SwitchMsg asks to replace this form with the other mode
type SwitchMsg struct {
	To Mode
}

// Form is the authentication form model
type Form struct {
	mode       Mode
	form       *huh.Form
	spinner    spinner.Model
	submitting bool
	err        string
	width      int

	name         string
	email        string
	password     string
	confirmation string
}

// New creates a form in the given mode
func New(mode Mode) *Form {
	f := &Form{
		mode:    mode,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Subtitle)),
	}
	f.form = f.buildForm()
	return f
}

// Mode returns the form's mode
func (f *Form) Mode() Mode {
	return f.mode
}

// SetEmail prefills the email field
func (f *Form) SetEmail(email string) {
	f.email = email
	f.form = f.buildForm()
}

// Submitting reports whether a submitted request is still running
func (f *Form) Submitting() bool {
	return f.submitting
}

// SetError re-enables the form with the entered values and shows msg
func (f *Form) SetError(msg string) tea.Cmd {
	f.err = msg
	f.submitting = false
	f.form = f.buildForm()
	return f.form.Init()
}

func fieldRule(form any, name string) func(string) error {
	rule := validation.Rule(form, name)
	return func(s string) error {
		return validation.Var(name, strings.TrimSpace(s), rule)
	}
}

func secretRule(form any, name string) func(string) error {
	rule := validation.Rule(form, name)
	return func(s string) error {
		return validation.Var(name, s, rule)
	}
}

func (f *Form) buildForm() *huh.Form {
	var group *huh.Group
	switch f.mode {
	case ModeSignUp:
		form := validation.SignUp{}
		group = huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Placeholder("3 to 20 characters").
				CharLimit(20).
				Value(&f.name).
				Validate(fieldRule(form, "name")),
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&f.email).
				Validate(fieldRule(form, "email")),
			huh.NewInput().
				Title("Password").
				Description("At least 8 characters with upper and lower case, a digit and a symbol").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(secretRule(form, "password")),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&f.confirmation).
				Validate(f.validateConfirmation),
		).Title("Create an account")
	default:
		form := validation.SignIn{}
		group = huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Placeholder("you@example.com").
				Value(&f.email).
				Validate(fieldRule(form, "email")),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&f.password).
				Validate(secretRule(form, "password")),
		).Title("Sign in")
	}

	return huh.NewForm(group).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (f *Form) validateConfirmation(s string) error {
	if s == "" {
		return errors.New("confirmation is required")
	}
	if s != f.password {
		return errors.New("confirmation does not match")
	}
	return nil
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width

	case spinner.TickMsg:
		if !f.submitting {
			return f, nil
		}
		var cmd tea.Cmd
		f.spinner, cmd = f.spinner.Update(msg)
		return f, cmd

	case tea.KeyMsg:
		if f.submitting {
			// Input is locked until the request settles.
			return f, nil
		}
		switch msg.String() {
		case "esc":
			return f, func() tea.Msg { return CancelledMsg{} }
		case "ctrl+t":
			to := ModeSignUp
			if f.mode == ModeSignUp {
				to = ModeSignIn
			}
			return f, func() tea.Msg { return SwitchMsg{To: to} }
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

// submit validates the whole form and emits SubmitMsg when it passes
func (f *Form) submit() tea.Cmd {
	out := SubmitMsg{Mode: f.mode}
	var err error
	switch f.mode {
	case ModeSignUp:
		out.SignUp = validation.SignUp{
			Name:            f.name,
			Email:           f.email,
			Password:        f.password,
			ConfirmPassword: f.confirmation,
		}
		err = validation.Struct(&out.SignUp)
	default:
		out.SignIn = validation.SignIn{Email: f.email, Password: f.password}
		err = validation.Struct(&out.SignIn)
	}

	if err != nil {
		return f.SetError(err.Error())
	}

	f.submitting = true
	return tea.Batch(
		func() tea.Msg { return out },
		f.spinner.Tick,
	)
}

// View implements tea.Model
func (f *Form) View() string {
	var b strings.Builder

	b.WriteString(f.form.View())

	if f.submitting {
		label := "Signing in..."
		if f.mode == ModeSignUp {
			label = "Creating your account..."
		}
		b.WriteString("\n")
		b.WriteString(f.spinner.View() + " " + styles.Meta.Render(label))
	}

	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + f.err))
	}

	b.WriteString("\n\n")
	if f.mode == ModeSignUp {
		b.WriteString(styles.Meta.Render("Already have an account? ") + styles.KeyStyle.Render("ctrl+t") + styles.Meta.Render(" Sign in"))
	} else {
		b.WriteString(styles.Meta.Render("No account yet? ") + styles.KeyStyle.Render("ctrl+t") + styles.Meta.Render(" Sign up"))
	}

	return b.String()
}
