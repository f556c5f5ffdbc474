// ABOUTME: Welcome menu shown while signed out
// ABOUTME: Lets the user choose between signing in, creating an account, or quitting

package welcome

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

// Choice is an action picked from the welcome menu
type Choice int

const (
	ChoiceSignIn Choice = iota
	ChoiceSignUp
	ChoiceQuit
)

// String returns the string representation of a Choice
func (c Choice) String() string {
	switch c {
	case ChoiceSignIn:
		return "sign-in"
	case ChoiceSignUp:
		return "sign-up"
	case ChoiceQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// ChoiceMsg is sent when an option is confirmed
type ChoiceMsg struct {
	Choice Choice
}

type option struct {
	label string
	value Choice
}

// Menu is the welcome screen model
type Menu struct {
	options  []option
	selected Choice
	form     *huh.Form
	width    int
}

// New creates a new welcome menu
func New() *Menu {
	m := &Menu{
		options: []option{
			{label: "Sign in", value: ChoiceSignIn},
			{label: "Create an account", value: ChoiceSignUp},
			{label: "Quit", value: ChoiceQuit},
		},
		selected: ChoiceSignIn,
	}
	m.form = m.buildForm()
	return m
}

func (m *Menu) buildForm() *huh.Form {
	var options []huh.Option[Choice]
	for _, opt := range m.options {
		options = append(options, huh.NewOption(opt.label, opt.value))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[Choice]().
				Title("What would you like to do?").
				Options(options...).
				Value(&m.selected),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (m *Menu) Init() tea.Cmd {
	return m.form.Init()
}

// Update implements tea.Model
func (m *Menu) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = ws.Width
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		choice := m.selected
		// Rebuild so the menu is usable again if the user comes back.
		m.form = m.buildForm()
		return m, tea.Batch(func() tea.Msg { return ChoiceMsg{Choice: choice} }, m.form.Init())
	}

	return m, cmd
}

// View implements tea.Model
func (m *Menu) View() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render(icons.App.String() + " Kabar"))
	b.WriteString("\n")
	b.WriteString(styles.Subtitle.Render("News and daily motivation, in your terminal"))
	b.WriteString("\n\n")
	b.WriteString(m.form.View())
	return b.String()
}
